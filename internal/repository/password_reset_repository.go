package repository

import (
	"github.com/Rahnken/ReframeMe-backend/internal/models"
	"gorm.io/gorm"
)

// GormPasswordResetRepository is a GORM implementation of PasswordResetRepository
type GormPasswordResetRepository struct {
	db *gorm.DB
}

// NewPasswordResetRepository creates a new PasswordResetRepository
func NewPasswordResetRepository(db *gorm.DB) PasswordResetRepository {
	return &GormPasswordResetRepository{db: db}
}

// Replace deletes the user's unused tokens and stores a new one atomically
func (r *GormPasswordResetRepository) Replace(token *models.PasswordResetToken) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ? AND used = ?", token.UserID, false).
			Delete(&models.PasswordResetToken{}).Error; err != nil {
			return err
		}
		return tx.Omit("User").Create(token).Error
	})
}

// FindByToken finds a token by its value
func (r *GormPasswordResetRepository) FindByToken(token string) (*models.PasswordResetToken, error) {
	var resetToken models.PasswordResetToken
	if err := r.db.Where("token = ?", token).First(&resetToken).Error; err != nil {
		return nil, err
	}
	return &resetToken, nil
}

// Consume updates the user's password and marks the token used atomically.
// A token that was consumed concurrently yields ErrNotFound.
func (r *GormPasswordResetRepository) Consume(tokenID, userID, hashedPassword string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.PasswordResetToken{}).
			Where("id = ? AND used = ?", tokenID, false).
			Update("used", true)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}

		return tx.Model(&models.User{}).
			Where("id = ?", userID).
			Update("hashed_password", hashedPassword).Error
	})
}

// CountByUser counts all tokens issued to a user
func (r *GormPasswordResetRepository) CountByUser(userID string) (int64, error) {
	var count int64
	err := r.db.Model(&models.PasswordResetToken{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}
