package repository

import (
	"errors"
	"fmt"

	"github.com/Rahnken/ReframeMe-backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormUserRepository is a GORM implementation of UserRepository
type GormUserRepository struct {
	db *gorm.DB
}

var (
	// ErrCreateUser is returned when creating a user fails inside the registration transaction.
	ErrCreateUser = errors.New("user repository: create user failed")
	// ErrCreateProfile is returned when creating the profile or its settings fails inside the registration transaction.
	ErrCreateProfile = errors.New("user repository: create profile failed")
)

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &GormUserRepository{db: db}
}

// Create creates the user, an empty profile and default settings atomically.
// The wrapped error keeps the driver error so callers can detect gorm.ErrDuplicatedKey.
func (r *GormUserRepository) Create(user *models.User) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(user).Error; err != nil {
			return fmt.Errorf("%w: %w", ErrCreateUser, err)
		}

		user.Profile.UserID = user.ID
		if err := tx.Omit(clause.Associations).Create(&user.Profile).Error; err != nil {
			return fmt.Errorf("%w: %w", ErrCreateProfile, err)
		}

		settings := &user.Profile.UserSettings
		settings.ProfileID = user.Profile.ID
		if settings.Theme == "" {
			settings.Theme = "light"
		}
		if settings.WeekStartsOn == "" {
			settings.WeekStartsOn = "MONDAY"
		}
		settings.EmailNotifications = true
		if err := tx.Create(settings).Error; err != nil {
			return fmt.Errorf("%w: %w", ErrCreateProfile, err)
		}

		return nil
	})
}

// FindByID finds a user by ID
func (r *GormUserRepository) FindByID(id string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByUsername finds a user by username
func (r *GormUserRepository) FindByUsername(username string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByEmail finds a user by email
func (r *GormUserRepository) FindByEmail(email string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByIdentifiers returns the users whose ID or email is in identifiers
func (r *GormUserRepository) FindByIdentifiers(identifiers []string) ([]models.User, error) {
	var users []models.User
	if len(identifiers) == 0 {
		return users, nil
	}
	if err := r.db.Where("id IN ? OR email IN ?", identifiers, identifiers).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// FindProfile loads a user's profile with its settings
func (r *GormUserRepository) FindProfile(userID string) (*models.UserProfile, error) {
	var profile models.UserProfile
	if err := r.db.Preload("UserSettings").Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

// UpdateProfile saves profile fields and settings in one transaction
func (r *GormUserRepository) UpdateProfile(profile *models.UserProfile) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(profile).Error; err != nil {
			return err
		}
		return tx.Save(&profile.UserSettings).Error
	})
}

// UpdateFields updates the given columns of a user
func (r *GormUserRepository) UpdateFields(userID string, fields map[string]interface{}) error {
	return r.db.Model(&models.User{}).Where("id = ?", userID).Updates(fields).Error
}
