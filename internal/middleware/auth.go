package middleware

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/Rahnken/ReframeMe-backend/internal/constants"
	apierrors "github.com/Rahnken/ReframeMe-backend/internal/errors"
	"github.com/Rahnken/ReframeMe-backend/internal/models"
	"github.com/Rahnken/ReframeMe-backend/internal/services"
	"github.com/gin-gonic/gin"
)

// Authenticator resolves a bearer token to a user.
type Authenticator interface {
	Authenticate(token string) (*models.User, error)
}

// RequireAuth checks the bearer token on every request. Missing or malformed
// headers, bad or expired tokens and unknown usernames all abort with 401.
func RequireAuth(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, constants.BearerPrefix) {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		token := strings.TrimSpace(strings.TrimPrefix(header, constants.BearerPrefix))
		if token == "" {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		user, err := auth.Authenticate(token)
		if err != nil {
			if !errors.Is(err, services.ErrInvalidToken) {
				slog.Error("failed to authenticate request", "error", err, "path", c.FullPath())
			}
			apierrors.Unauthorized(c, "Invalid or expired token")
			c.Abort()
			return
		}

		// Store user and ID in context for easy access in handlers
		c.Set(constants.ContextKeyUser, user)
		c.Set(constants.ContextKeyUserID, user.ID)
		c.Next()
	}
}

// GetUser retrieves the authenticated user from context
func GetUser(c *gin.Context) (*models.User, bool) {
	value, exists := c.Get(constants.ContextKeyUser)
	if !exists {
		return nil, false
	}
	user, ok := value.(*models.User)
	return user, ok && user != nil
}

// GetUserID retrieves the current user ID from context
func GetUserID(c *gin.Context) (string, bool) {
	userID := c.GetString(constants.ContextKeyUserID)
	return userID, userID != ""
}
