package repository

import (
	"fmt"
	"testing"

	"github.com/Rahnken/ReframeMe-backend/internal/models"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func createTestUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()

	user := &models.User{
		Username:       username,
		Email:          fmt.Sprintf("%s@example.com", username),
		HashedPassword: "hashed",
	}
	require.NoError(t, NewUserRepository(db).Create(user))
	return user
}
