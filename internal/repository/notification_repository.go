package repository

import (
	"github.com/Rahnken/ReframeMe-backend/internal/database"
	"github.com/Rahnken/ReframeMe-backend/internal/models"
	"github.com/Rahnken/ReframeMe-backend/internal/utils"
	"gorm.io/gorm"
)

// GormNotificationRepository is a GORM implementation of NotificationRepository
type GormNotificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository creates a new NotificationRepository
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &GormNotificationRepository{db: db}
}

// ListByUser lists a user's notifications newest first
func (r *GormNotificationRepository) ListByUser(userID string, params utils.PaginationParams) ([]models.Notification, int64, error) {
	var total int64
	if err := r.db.Model(&models.Notification{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var notifications []models.Notification
	err := r.db.Where("user_id = ?", userID).
		Scopes(database.Paginate(params)).
		Order("created_at DESC").
		Find(&notifications).Error
	if err != nil {
		return nil, 0, err
	}

	return notifications, total, nil
}

// MarkRead marks one of the user's notifications as read. Notifications owned
// by another user are reported as gorm.ErrRecordNotFound.
func (r *GormNotificationRepository) MarkRead(userID, notificationID string) (*models.Notification, error) {
	var notification models.Notification
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND user_id = ?", notificationID, userID).First(&notification).Error; err != nil {
			return err
		}
		notification.Read = true
		return tx.Model(&notification).Update("read", true).Error
	})
	if err != nil {
		return nil, err
	}
	return &notification, nil
}

// MarkAllRead marks every unread notification of the user as read
func (r *GormNotificationRepository) MarkAllRead(userID string) (int64, error) {
	result := r.db.Model(&models.Notification{}).
		Where("user_id = ?", userID).
		Where(map[string]interface{}{"read": false}).
		Update("read", true)
	return result.RowsAffected, result.Error
}
