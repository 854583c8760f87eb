package services

import (
	"errors"
	"fmt"

	"github.com/Rahnken/ReframeMe-backend/internal/models"
	"github.com/Rahnken/ReframeMe-backend/internal/repository"
	"github.com/Rahnken/ReframeMe-backend/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrProfileNotFound      = errors.New("profile not found")
	ErrNotificationNotFound = errors.New("notification not found")
)

// UserService handles profile, settings and notification business logic
type UserService struct {
	userRepo         repository.UserRepository
	notificationRepo repository.NotificationRepository
}

// NewUserService creates a new UserService
func NewUserService(userRepo repository.UserRepository, notificationRepo repository.NotificationRepository) *UserService {
	return &UserService{
		userRepo:         userRepo,
		notificationRepo: notificationRepo,
	}
}

// UpdateSettingsInput represents a partial settings update
type UpdateSettingsInput struct {
	Theme              *string
	EmailNotifications *bool
	WeekStartsOn       *string
}

// UpdateProfileInput represents a partial profile update
type UpdateProfileInput struct {
	FirstName *string
	LastName  *string
	Country   *string
	Timezone  *string
	Settings  *UpdateSettingsInput
}

// GetProfile returns the user's profile with settings
func (s *UserService) GetProfile(userID string) (*models.UserProfile, error) {
	profile, err := s.userRepo.FindProfile(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	return profile, nil
}

// UpdateProfile applies the non-nil fields of input to the user's profile and settings
func (s *UserService) UpdateProfile(userID string, input UpdateProfileInput) (*models.UserProfile, error) {
	profile, err := s.GetProfile(userID)
	if err != nil {
		return nil, err
	}

	if input.FirstName != nil {
		profile.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		profile.LastName = *input.LastName
	}
	if input.Country != nil {
		profile.Country = *input.Country
	}
	if input.Timezone != nil {
		profile.Timezone = *input.Timezone
	}
	if settings := input.Settings; settings != nil {
		if settings.Theme != nil {
			profile.UserSettings.Theme = *settings.Theme
		}
		if settings.EmailNotifications != nil {
			profile.UserSettings.EmailNotifications = *settings.EmailNotifications
		}
		if settings.WeekStartsOn != nil {
			profile.UserSettings.WeekStartsOn = *settings.WeekStartsOn
		}
	}

	if err := s.userRepo.UpdateProfile(profile); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return profile, nil
}

// ListNotifications returns a page of the user's notifications, newest first
func (s *UserService) ListNotifications(userID string, params utils.PaginationParams) ([]models.Notification, int64, error) {
	notifications, total, err := s.notificationRepo.ListByUser(userID, params)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list notifications: %w", err)
	}
	return notifications, total, nil
}

// MarkNotificationRead marks one of the user's notifications as read
func (s *UserService) MarkNotificationRead(userID, notificationID string) (*models.Notification, error) {
	notification, err := s.notificationRepo.MarkRead(userID, notificationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotificationNotFound
		}
		return nil, fmt.Errorf("failed to update notification: %w", err)
	}
	return notification, nil
}

// MarkAllNotificationsRead marks every unread notification of the user as read
func (s *UserService) MarkAllNotificationsRead(userID string) (int64, error) {
	count, err := s.notificationRepo.MarkAllRead(userID)
	if err != nil {
		return 0, fmt.Errorf("failed to update notifications: %w", err)
	}
	return count, nil
}
