package handlers

import (
	"net/http"
	"testing"

	"github.com/Rahnken/ReframeMe-backend/internal/constants"
	"github.com/Rahnken/ReframeMe-backend/internal/dto"
	"github.com/Rahnken/ReframeMe-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthHandler_Register(t *testing.T) {
	env := setupHandlerTestEnv(t)
	handler := NewAuthHandler(env.auth)

	payload := map[string]string{
		"username": "newuser",
		"email":    "NewUser@Example.com",
		"password": "supersecret",
	}
	c, w := testContext(http.MethodPost, "/user/register", payload, "")
	handler.Register(c)

	require.Equal(t, http.StatusCreated, w.Code)

	var response dto.RegisterResponse
	decode(t, w, &response)
	assert.Equal(t, "newuser", response.User.Username)
	assert.Equal(t, "newuser@example.com", response.User.Email)
	assert.NotEmpty(t, response.User.ID)
	assert.NotContains(t, w.Body.String(), "hashed")
}

func TestAuthHandler_RegisterDuplicate(t *testing.T) {
	env := setupHandlerTestEnv(t)
	handler := NewAuthHandler(env.auth)
	env.register(t, "taken")

	tests := []struct {
		name    string
		payload map[string]string
	}{
		{"username", map[string]string{"username": "taken", "email": "other@example.com", "password": "supersecret"}},
		{"email", map[string]string{"username": "other", "email": "taken@example.com", "password": "supersecret"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := testContext(http.MethodPost, "/user/register", tt.payload, "")
			handler.Register(c)
			assert.Equal(t, http.StatusConflict, w.Code)
		})
	}

	var count int64
	require.NoError(t, env.db.Model(&models.User{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestAuthHandler_RegisterStorageFailure(t *testing.T) {
	env := setupHandlerTestEnv(t)
	handler := NewAuthHandler(env.auth)
	require.NoError(t, env.db.Migrator().DropTable(&models.UserSettings{}))

	payload := map[string]string{
		"username": "alice",
		"email":    "a@a.com",
		"password": "pw123456",
	}
	c, w := testContext(http.MethodPost, "/user/register", payload, "")
	handler.Register(c)

	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"code":"INTERNAL_ERROR","message":"Internal server error"}`, w.Body.String())
	assert.NotContains(t, w.Body.String(), "user_settings")

	var count int64
	require.NoError(t, env.db.Model(&models.User{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestAuthHandler_RegisterInvalid(t *testing.T) {
	env := setupHandlerTestEnv(t)
	handler := NewAuthHandler(env.auth)

	tests := []struct {
		name    string
		payload map[string]string
	}{
		{"missing email", map[string]string{"username": "user", "password": "supersecret"}},
		{"bad email", map[string]string{"username": "user", "email": "nope", "password": "supersecret"}},
		{"short username", map[string]string{"username": "ab", "email": "ab@example.com", "password": "supersecret"}},
		{"short password", map[string]string{"username": "user", "email": "user@example.com", "password": "123"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := testContext(http.MethodPost, "/user/register", tt.payload, "")
			handler.Register(c)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestAuthHandler_Login(t *testing.T) {
	env := setupHandlerTestEnv(t)
	handler := NewAuthHandler(env.auth)
	env.register(t, "existing")

	c, w := testContext(http.MethodPost, "/user/login", map[string]string{
		"username": "existing",
		"password": "password123",
	}, "")
	handler.Login(c)

	require.Equal(t, http.StatusOK, w.Code)

	var response dto.TokenResponse
	decode(t, w, &response)
	assert.NotEmpty(t, response.Token)
	assert.Equal(t, "existing", response.UserInfo.Username)
	require.NotNil(t, response.UserInfo.LastLogin)
	assert.True(t, response.UserInfo.LastLogin.Equal(testNow))

	claims, err := env.auth.VerifyToken(response.Token)
	require.NoError(t, err)
	assert.Equal(t, response.UserInfo.ID, claims.Subject)
}

func TestAuthHandler_LoginFailures(t *testing.T) {
	env := setupHandlerTestEnv(t)
	handler := NewAuthHandler(env.auth)
	env.register(t, "existing")

	tests := []struct {
		name     string
		username string
		password string
		status   int
	}{
		{"wrong password", "existing", "wrongpassword", http.StatusUnauthorized},
		{"unknown user", "nobody", "password123", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := testContext(http.MethodPost, "/user/login", map[string]string{
				"username": tt.username,
				"password": tt.password,
			}, "")
			handler.Login(c)

			assert.Equal(t, tt.status, w.Code)
			assert.NotContains(t, w.Body.String(), "token")
		})
	}
}

func TestAuthHandler_GetCurrentUser(t *testing.T) {
	env := setupHandlerTestEnv(t)
	handler := NewAuthHandler(env.auth)
	user := env.register(t, "current-user")

	c, w := testContext(http.MethodGet, "/user/me", nil, user.ID)
	c.Set(constants.ContextKeyUser, user)
	handler.GetCurrentUser(c)

	require.Equal(t, http.StatusOK, w.Code)
	var response dto.UserDTO
	decode(t, w, &response)
	assert.Equal(t, user.ID, response.ID)

	c, w = testContext(http.MethodGet, "/user/me", nil, "")
	handler.GetCurrentUser(c)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandler_ChangeCredentials(t *testing.T) {
	env := setupHandlerTestEnv(t)
	handler := NewAuthHandler(env.auth)
	user := env.register(t, "alice")
	env.register(t, "bob")

	c, w := testContext(http.MethodPatch, "/user/username", map[string]string{
		"newUsername":     "alice2",
		"currentPassword": "wrongpassword",
	}, user.ID)
	handler.ChangeUsername(c)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	c, w = testContext(http.MethodPatch, "/user/email", map[string]string{
		"newEmail":        "bob@example.com",
		"currentPassword": "password123",
	}, user.ID)
	handler.ChangeEmail(c)
	assert.Equal(t, http.StatusConflict, w.Code)

	c, w = testContext(http.MethodPatch, "/user/username", map[string]string{
		"newUsername":     "alice2",
		"currentPassword": "password123",
	}, user.ID)
	handler.ChangeUsername(c)
	require.Equal(t, http.StatusOK, w.Code)

	var response dto.TokenResponse
	decode(t, w, &response)
	assert.Equal(t, "alice2", response.UserInfo.Username)
	assert.NotEmpty(t, response.Token)

	c, w = testContext(http.MethodPatch, "/user/password", map[string]string{
		"currentPassword": "password123",
		"newPassword":     "newpassword",
	}, user.ID)
	handler.ChangePassword(c)
	require.Equal(t, http.StatusOK, w.Code)

	c, w = testContext(http.MethodPost, "/user/login", map[string]string{
		"username": "alice2",
		"password": "newpassword",
	}, "")
	handler.Login(c)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthHandler_PasswordResetUnknownEmail(t *testing.T) {
	env := setupHandlerTestEnv(t)
	handler := NewAuthHandler(env.auth)

	c, w := testContext(http.MethodPost, "/auth/password-reset-request", map[string]string{
		"email": "ghost@example.com",
	}, "")
	handler.RequestPasswordReset(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var count int64
	require.NoError(t, env.db.Model(&models.PasswordResetToken{}).Count(&count).Error)
	assert.Zero(t, count)
	assert.Empty(t, env.mailer.tokens)
}

func TestAuthHandler_PasswordResetFlow(t *testing.T) {
	env := setupHandlerTestEnv(t)
	handler := NewAuthHandler(env.auth)
	env.register(t, "alice")

	c, w := testContext(http.MethodPost, "/auth/password-reset-request", map[string]string{
		"email": "alice@example.com",
	}, "")
	handler.RequestPasswordReset(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, env.mailer.tokens, 1)
	token := env.mailer.tokens[0]

	c, w = testContext(http.MethodPost, "/auth/password-reset-confirm", map[string]string{
		"token":       token,
		"newPassword": "123",
	}, "")
	handler.ConfirmPasswordReset(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	c, w = testContext(http.MethodPost, "/auth/password-reset-confirm", map[string]string{
		"token":       token,
		"newPassword": "brandnew",
	}, "")
	handler.ConfirmPasswordReset(c)
	require.Equal(t, http.StatusOK, w.Code)

	// Tokens are single use
	c, w = testContext(http.MethodPost, "/auth/password-reset-confirm", map[string]string{
		"token":       token,
		"newPassword": "another",
	}, "")
	handler.ConfirmPasswordReset(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_TOKEN")

	c, w = testContext(http.MethodPost, "/user/login", map[string]string{
		"username": "alice",
		"password": "brandnew",
	}, "")
	handler.Login(c)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthHandler_ConfirmUnknownToken(t *testing.T) {
	env := setupHandlerTestEnv(t)
	handler := NewAuthHandler(env.auth)

	c, w := testContext(http.MethodPost, "/auth/password-reset-confirm", map[string]string{
		"token":       "not-a-token",
		"newPassword": "brandnew",
	}, "")
	handler.ConfirmPasswordReset(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
