package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Rahnken/ReframeMe-backend/internal/constants"
	"github.com/Rahnken/ReframeMe-backend/internal/models"
	"github.com/Rahnken/ReframeMe-backend/internal/repository"
	"github.com/Rahnken/ReframeMe-backend/internal/services"
	"github.com/Rahnken/ReframeMe-backend/internal/testutil"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var testNow = time.Date(2025, time.March, 3, 9, 0, 0, 0, time.UTC)

type recordingMailer struct {
	tokens []string
}

func (m *recordingMailer) SendPasswordResetEmail(_ context.Context, _ string, token string) error {
	m.tokens = append(m.tokens, token)
	return nil
}

type handlerTestEnv struct {
	db     *gorm.DB
	mailer *recordingMailer
	auth   *services.AuthService
	users  *services.UserService
	goals  *services.GoalService
	groups *services.GroupService
}

func setupHandlerTestEnv(t *testing.T) handlerTestEnv {
	t.Helper()

	db := testutil.NewTestDB(t)
	now := func() time.Time { return testNow }
	mailer := &recordingMailer{}

	userRepo := repository.NewUserRepository(db)
	goalRepo := repository.NewGoalRepository(db)
	groupRepo := repository.NewGroupRepository(db)

	return handlerTestEnv{
		db:     db,
		mailer: mailer,
		auth: services.NewAuthService(userRepo, repository.NewPasswordResetRepository(db), mailer, services.AuthConfig{
			JWTSecret:   "test-secret",
			JWTExpiry:   time.Hour,
			ResetExpiry: 15 * time.Minute,
			BcryptCost:  bcrypt.MinCost,
			Now:         now,
		}),
		users:  services.NewUserService(userRepo, repository.NewNotificationRepository(db)),
		goals:  services.NewGoalService(goalRepo, groupRepo, nil, now),
		groups: services.NewGroupService(groupRepo, userRepo, now),
	}
}

func (env handlerTestEnv) register(t *testing.T, username string) *models.User {
	t.Helper()

	user, err := env.auth.Register(services.RegisterInput{
		Username: username,
		Email:    username + "@example.com",
		Password: "password123",
	})
	require.NoError(t, err)
	return user
}

// testContext builds a request context as RequireAuth would leave it. An empty userID
// leaves the request unauthenticated.
func testContext(method, url string, body interface{}, userID string) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	var req *http.Request
	if body != nil {
		payload, _ := json.Marshal(body)
		req = httptest.NewRequest(method, url, bytes.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, url, nil)
	}

	c, _ := gin.CreateTestContext(w)
	c.Request = req
	if userID != "" {
		c.Set(constants.ContextKeyUserID, userID)
	}
	return c, w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v))
}
