package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/Rahnken/ReframeMe-backend/internal/dto"
	apierrors "github.com/Rahnken/ReframeMe-backend/internal/errors"
	"github.com/Rahnken/ReframeMe-backend/internal/middleware"
	"github.com/Rahnken/ReframeMe-backend/internal/services"
	"github.com/Rahnken/ReframeMe-backend/internal/utils"
	"github.com/gin-gonic/gin"
)

// UserHandler serves profile, settings and notification endpoints
type UserHandler struct {
	userService *services.UserService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// GetProfile returns the current user's profile with settings
func (h *UserHandler) GetProfile(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	profile, err := h.userService.GetProfile(userID)
	if err != nil {
		respondUserError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProfileDTO(*profile))
}

// UpdateProfile updates profile fields and settings
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	type SettingsRequest struct {
		Theme              *string `json:"theme" binding:"omitempty,max=20"`
		EmailNotifications *bool   `json:"emailNotifications"`
		WeekStartsOn       *string `json:"weekStartsOn" binding:"omitempty,max=10"`
	}
	type UpdateProfileRequest struct {
		FirstName    *string          `json:"firstName" binding:"omitempty,max=100"`
		LastName     *string          `json:"lastName" binding:"omitempty,max=100"`
		Country      *string          `json:"country" binding:"omitempty,max=100"`
		Timezone     *string          `json:"timezone" binding:"omitempty,max=64"`
		UserSettings *SettingsRequest `json:"userSettings"`
	}

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	input := services.UpdateProfileInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Country:   req.Country,
		Timezone:  req.Timezone,
	}
	if req.UserSettings != nil {
		input.Settings = &services.UpdateSettingsInput{
			Theme:              req.UserSettings.Theme,
			EmailNotifications: req.UserSettings.EmailNotifications,
			WeekStartsOn:       req.UserSettings.WeekStartsOn,
		}
	}

	profile, err := h.userService.UpdateProfile(userID, input)
	if err != nil {
		respondUserError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProfileDTO(*profile))
}

// ListNotifications returns the user's notifications, newest first
func (h *UserHandler) ListNotifications(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	params := utils.GetPaginationParams(c)
	notifications, total, err := h.userService.ListNotifications(userID, params)
	if err != nil {
		respondUserError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToNotificationListResponse(notifications, params.Page, params.Limit, total))
}

// MarkNotificationRead marks one notification as read
func (h *UserHandler) MarkNotificationRead(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	notification, err := h.userService.MarkNotificationRead(userID, c.Param("notificationId"))
	if err != nil {
		respondUserError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToNotificationDTO(*notification))
}

// MarkAllNotificationsRead marks every unread notification as read
func (h *UserHandler) MarkAllNotificationsRead(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	updated, err := h.userService.MarkAllNotificationsRead(userID)
	if err != nil {
		respondUserError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "All notifications marked as read",
		"updated": updated,
	})
}

func respondUserError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrProfileNotFound),
		errors.Is(err, services.ErrNotificationNotFound):
		apierrors.NotFound(c, err.Error())
	default:
		slog.Error("user operation failed", "error", err)
		apierrors.InternalError(c)
	}
}
