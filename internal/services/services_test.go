package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Rahnken/ReframeMe-backend/internal/models"
	"github.com/Rahnken/ReframeMe-backend/internal/repository"
	"github.com/Rahnken/ReframeMe-backend/internal/testutil"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// testClock is a settable clock shared by the services under test.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2025, time.March, 3, 9, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type sentEmail struct {
	to    string
	token string
}

type recordingMailer struct {
	sent []sentEmail
}

func (m *recordingMailer) SendPasswordResetEmail(_ context.Context, email, token string) error {
	m.sent = append(m.sent, sentEmail{to: email, token: token})
	return nil
}

type testEnv struct {
	db     *gorm.DB
	clock  *testClock
	mailer *recordingMailer
	auth   *AuthService
	users  *UserService
	goals  *GoalService
	groups *GroupService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testutil.NewTestDB(t)
	clock := newTestClock()
	mailer := &recordingMailer{}

	userRepo := repository.NewUserRepository(db)
	goalRepo := repository.NewGoalRepository(db)
	groupRepo := repository.NewGroupRepository(db)

	return &testEnv{
		db:     db,
		clock:  clock,
		mailer: mailer,
		auth: NewAuthService(userRepo, repository.NewPasswordResetRepository(db), mailer, AuthConfig{
			JWTSecret:   "test-secret",
			JWTExpiry:   time.Hour,
			ResetExpiry: 15 * time.Minute,
			BcryptCost:  bcrypt.MinCost,
			Now:         clock.Now,
		}),
		users:  NewUserService(userRepo, repository.NewNotificationRepository(db)),
		goals:  NewGoalService(goalRepo, groupRepo, nil, clock.Now),
		groups: NewGroupService(groupRepo, userRepo, clock.Now),
	}
}

func (e *testEnv) register(t *testing.T, username string) *models.User {
	t.Helper()

	user, err := e.auth.Register(RegisterInput{
		Username: username,
		Email:    username + "@example.com",
		Password: "password123",
	})
	require.NoError(t, err)
	return user
}
