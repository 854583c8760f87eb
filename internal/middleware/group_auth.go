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

// GroupAuthorizer loads a group and the caller's membership.
type GroupAuthorizer interface {
	Authorize(groupID, userID string, adminOnly bool) (*models.Group, *models.GroupUser, error)
}

// RequireGroupMember checks if the user is a member of the group
func RequireGroupMember(groups GroupAuthorizer) gin.HandlerFunc {
	return requireGroup(groups, false)
}

// RequireGroupAdmin checks if the user is an admin of the group
func RequireGroupAdmin(groups GroupAuthorizer) gin.HandlerFunc {
	return requireGroup(groups, true)
}

func requireGroup(groups GroupAuthorizer, adminOnly bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := GetUserID(c)
		if !exists {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		group, member, err := groups.Authorize(c.Param("groupId"), userID, adminOnly)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrGroupNotFound):
				// Return 404 instead of 403 to avoid leaking group existence
				apierrors.NotFound(c, "Group not found")
			case errors.Is(err, services.ErrNotGroupAdmin):
				apierrors.Forbidden(c, "Group admin privileges required")
			default:
				slog.Error("failed to authorize group access", "error", err, "group_id", c.Param("groupId"))
				apierrors.InternalError(c)
			}
			c.Abort()
			return
		}

		// Store group and membership in context
		c.Set(constants.ContextKeyGroup, group)
		c.Set(constants.ContextKeyGroupMember, member)
		c.Next()
	}
}

// GetGroup retrieves the group loaded by RequireGroupMember or RequireGroupAdmin
func GetGroup(c *gin.Context) (*models.Group, bool) {
	value, exists := c.Get(constants.ContextKeyGroup)
	if !exists {
		return nil, false
	}
	group, ok := value.(*models.Group)
	return group, ok && group != nil
}

// GetGroupMember retrieves the caller's membership of the group in the URL
func GetGroupMember(c *gin.Context) (*models.GroupUser, bool) {
	value, exists := c.Get(constants.ContextKeyGroupMember)
	if !exists {
		return nil, false
	}
	member, ok := value.(*models.GroupUser)
	return member, ok && member != nil
}
