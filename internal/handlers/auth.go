package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/Rahnken/ReframeMe-backend/internal/constants"
	"github.com/Rahnken/ReframeMe-backend/internal/dto"
	apierrors "github.com/Rahnken/ReframeMe-backend/internal/errors"
	"github.com/Rahnken/ReframeMe-backend/internal/middleware"
	"github.com/Rahnken/ReframeMe-backend/internal/services"
	"github.com/gin-gonic/gin"
)

// AuthHandler coordinates authentication-related HTTP handlers.
type AuthHandler struct {
	authService *services.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Register creates a new account.
func (h *AuthHandler) Register(c *gin.Context) {
	type RegisterRequest struct {
		Username string `json:"username" binding:"required,min=3,max=50"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}

	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	user, err := h.authService.Register(services.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		respondAuthError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.RegisterResponse{
		User:    dto.ToUserDTO(*user),
		Message: "User registered successfully",
	})
}

// Login verifies credentials and issues a bearer token.
func (h *AuthHandler) Login(c *gin.Context) {
	type LoginRequest struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	result, err := h.authService.Login(services.LoginInput{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		respondAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, toTokenResponse(result))
}

// GetCurrentUser returns the authenticated user.
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	user, exists := middleware.GetUser(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

// ChangeEmail updates the email after checking the current password.
func (h *AuthHandler) ChangeEmail(c *gin.Context) {
	type ChangeEmailRequest struct {
		NewEmail        string `json:"newEmail" binding:"required,email"`
		CurrentPassword string `json:"currentPassword" binding:"required"`
	}

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	var req ChangeEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	result, err := h.authService.ChangeEmail(userID, req.NewEmail, req.CurrentPassword)
	if err != nil {
		respondAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, toTokenResponse(result))
}

// ChangeUsername updates the username after checking the current password.
func (h *AuthHandler) ChangeUsername(c *gin.Context) {
	type ChangeUsernameRequest struct {
		NewUsername     string `json:"newUsername" binding:"required,min=3,max=50"`
		CurrentPassword string `json:"currentPassword" binding:"required"`
	}

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	var req ChangeUsernameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	result, err := h.authService.ChangeUsername(userID, req.NewUsername, req.CurrentPassword)
	if err != nil {
		respondAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, toTokenResponse(result))
}

// ChangePassword sets a new password after checking the current one.
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	type ChangePasswordRequest struct {
		CurrentPassword string `json:"currentPassword" binding:"required"`
		NewPassword     string `json:"newPassword" binding:"required"`
	}

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	if err := h.authService.ChangePassword(userID, req.CurrentPassword, req.NewPassword); err != nil {
		respondAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Password updated successfully",
	})
}

// RequestPasswordReset emails a reset link. The response is the same whether or not the
// email belongs to an account.
func (h *AuthHandler) RequestPasswordReset(c *gin.Context) {
	type ResetRequest struct {
		Email string `json:"email" binding:"required,email"`
	}

	var req ResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	if err := h.authService.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		slog.Error("failed to process password reset request", "error", err)
		apierrors.InternalError(c)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "If an account with that email exists, a password reset link has been sent",
	})
}

// ConfirmPasswordReset sets a new password using a reset token.
func (h *AuthHandler) ConfirmPasswordReset(c *gin.Context) {
	type ConfirmRequest struct {
		Token       string `json:"token" binding:"required"`
		NewPassword string `json:"newPassword" binding:"required"`
	}

	var req ConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	if err := h.authService.ConfirmPasswordReset(req.Token, req.NewPassword); err != nil {
		respondAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Password has been reset successfully",
	})
}

func toTokenResponse(result *services.AuthResult) dto.TokenResponse {
	return dto.TokenResponse{
		Token:    result.Token,
		UserInfo: dto.ToUserDTO(*result.User),
	}
}

func respondAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrPasswordTooShort):
		apierrors.BadRequest(c, fmt.Sprintf("Password must be at least %d characters", constants.MinPasswordLength))
	case errors.Is(err, services.ErrUsernameRequired):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrUsernameTaken),
		errors.Is(err, services.ErrEmailTaken),
		errors.Is(err, services.ErrAccountExists):
		apierrors.ConflictWithCode(c, apierrors.ErrCodeAlreadyExists, err.Error())
	case errors.Is(err, services.ErrInvalidCredentials):
		apierrors.RespondWithError(c, http.StatusUnauthorized, apierrors.ErrCodeInvalidCredentials, err.Error())
	case errors.Is(err, services.ErrIncorrectPassword):
		apierrors.Unauthorized(c, err.Error())
	case errors.Is(err, services.ErrUserNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrInvalidResetToken),
		errors.Is(err, services.ErrResetTokenExpired),
		errors.Is(err, services.ErrResetTokenUsed):
		apierrors.RespondWithError(c, http.StatusBadRequest, apierrors.ErrCodeInvalidToken, err.Error())
	default:
		slog.Error("auth operation failed", "error", err)
		apierrors.InternalError(c)
	}
}
