package routes

import (
	"net/http"

	"github.com/Rahnken/ReframeMe-backend/internal/handlers"
	"github.com/Rahnken/ReframeMe-backend/internal/middleware"
	"github.com/Rahnken/ReframeMe-backend/internal/services"
	"github.com/gin-gonic/gin"
)

// Services are the dependencies the router wires into handlers and middleware.
type Services struct {
	Auth   *services.AuthService
	Users  *services.UserService
	Goals  *services.GoalService
	Groups *services.GroupService

	// ResetLimiter throttles password reset requests per client IP. Nil disables it.
	ResetLimiter *middleware.RateLimiter
}

// New builds the gin engine with every API route registered.
func New(svc Services) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogging())

	authHandler := handlers.NewAuthHandler(svc.Auth)
	userHandler := handlers.NewUserHandler(svc.Users)
	goalHandler := handlers.NewGoalHandler(svc.Goals)
	groupHandler := handlers.NewGroupHandler(svc.Groups)

	requireAuth := middleware.RequireAuth(svc.Auth)
	goalAccess := middleware.RequireGoalAccess(svc.Goals)
	goalOwner := middleware.RequireGoalOwner(svc.Goals)
	groupMember := middleware.RequireGroupMember(svc.Groups)
	groupAdmin := middleware.RequireGroupAdmin(svc.Groups)

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "ReframeMe API is running",
		})
	})

	// Password reset routes (public)
	auth := r.Group("/auth")
	{
		resetRequest := []gin.HandlerFunc{authHandler.RequestPasswordReset}
		if svc.ResetLimiter != nil {
			resetRequest = append([]gin.HandlerFunc{middleware.RateLimit(svc.ResetLimiter)}, resetRequest...)
		}
		auth.POST("/password-reset-request", resetRequest...)
		auth.POST("/password-reset-confirm", authHandler.ConfirmPasswordReset)
	}

	user := r.Group("/user")
	{
		user.POST("/register", authHandler.Register)
		user.POST("/login", authHandler.Login)

		// Account routes (protected)
		account := user.Group("")
		account.Use(requireAuth)
		{
			account.GET("/me", authHandler.GetCurrentUser)
			account.GET("/userInfo", userHandler.GetProfile)
			account.PATCH("/userInfo", userHandler.UpdateProfile)
			account.PATCH("/email", authHandler.ChangeEmail)
			account.PATCH("/username", authHandler.ChangeUsername)
			account.PATCH("/password", authHandler.ChangePassword)
			account.GET("/notifications", userHandler.ListNotifications)
			account.PATCH("/notifications/mark-all-read", userHandler.MarkAllNotificationsRead)
			account.PATCH("/notifications/:notificationId/read", userHandler.MarkNotificationRead)
		}
	}

	// Goal routes (protected)
	goals := r.Group("/goals")
	goals.Use(requireAuth)
	{
		goals.GET("", goalHandler.ListGoals)
		goals.POST("/create", goalHandler.CreateGoal)
		goals.POST("/suggest", goalHandler.SuggestSmartFields)
		goals.GET("/:goal_id", goalAccess, goalHandler.GetGoal)
		goals.PATCH("/:goal_id/edit", goalOwner, goalHandler.UpdateGoal)
		goals.DELETE("/:goal_id/delete", goalOwner, goalHandler.DeleteGoal)

		goals.GET("/:goal_id/progress", goalAccess, goalHandler.ListProgress)
		goals.GET("/:goal_id/progress/week/:weekNumber", goalAccess, goalHandler.GetWeek)
		goals.POST("/:goal_id/progress/week", goalOwner, goalHandler.SaveWeek)
		goals.PUT("/:goal_id/progress/week/:weekNumber", goalOwner, goalHandler.UpdateWeek)
		goals.POST("/:goal_id/progress/batch", goalOwner, goalHandler.BatchUpdateProgress)
	}

	// Group routes (protected)
	groups := r.Group("/groups")
	groups.Use(requireAuth)
	{
		groups.GET("", groupHandler.ListGroups)
		groups.POST("/create", groupHandler.CreateGroup)
		groups.GET("/:groupId", groupMember, groupHandler.GetGroup)
		groups.PATCH("/:groupId", groupAdmin, groupHandler.UpdateGroup)
		groups.DELETE("/:groupId", groupAdmin, groupHandler.DeleteGroup)

		groups.POST("/:groupId/users", groupAdmin, groupHandler.AddMembers)
		groups.PUT("/:groupId/users", groupAdmin, groupHandler.SetMembers)
		groups.POST("/:groupId/users/:userId", groupAdmin, groupHandler.AddMember)
		groups.PATCH("/:groupId/users/:userId", groupAdmin, groupHandler.UpdateMemberRole)
		groups.DELETE("/:groupId/users/:userId", groupMember, groupHandler.RemoveMember)
	}

	return r
}
