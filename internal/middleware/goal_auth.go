package middleware

import (
	"errors"
	"log/slog"

	"github.com/Rahnken/ReframeMe-backend/internal/constants"
	apierrors "github.com/Rahnken/ReframeMe-backend/internal/errors"
	"github.com/Rahnken/ReframeMe-backend/internal/models"
	"github.com/Rahnken/ReframeMe-backend/internal/services"
	"github.com/gin-gonic/gin"
)

// GoalAuthorizer loads a goal the user may access.
type GoalAuthorizer interface {
	Authorize(goalID, userID string, ownerOnly bool) (*models.Goal, error)
}

// RequireGoalAccess lets the owner and members of groups the goal is shared with through
func RequireGoalAccess(goals GoalAuthorizer) gin.HandlerFunc {
	return requireGoal(goals, false)
}

// RequireGoalOwner only lets the goal owner through
func RequireGoalOwner(goals GoalAuthorizer) gin.HandlerFunc {
	return requireGoal(goals, true)
}

func requireGoal(goals GoalAuthorizer, ownerOnly bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := GetUserID(c)
		if !exists {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		goal, err := goals.Authorize(c.Param("goal_id"), userID, ownerOnly)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrGoalNotFound):
				// 404 instead of 403 so goal existence is not leaked
				apierrors.NotFound(c, "Goal not found")
			case errors.Is(err, services.ErrNotGoalOwner):
				apierrors.Forbidden(c, "Only the goal owner can perform this action")
			default:
				slog.Error("failed to authorize goal access", "error", err, "goal_id", c.Param("goal_id"))
				apierrors.InternalError(c)
			}
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyGoal, goal)
		c.Next()
	}
}

// GetGoal retrieves the goal loaded by RequireGoalAccess or RequireGoalOwner
func GetGoal(c *gin.Context) (*models.Goal, bool) {
	value, exists := c.Get(constants.ContextKeyGoal)
	if !exists {
		return nil, false
	}
	goal, ok := value.(*models.Goal)
	return goal, ok && goal != nil
}
