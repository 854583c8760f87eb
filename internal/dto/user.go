package dto

import (
	"time"

	"github.com/Rahnken/ReframeMe-backend/internal/models"
	"github.com/Rahnken/ReframeMe-backend/internal/utils"
)

// UserDTO represents a user in API responses
type UserDTO struct {
	ID        string     `json:"user_id"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	LastLogin *time.Time `json:"lastLogin"`
	CreatedAt time.Time  `json:"createdAt"`
}

// MemberUserDTO is the public part of a user shown to other group members
type MemberUserDTO struct {
	ID       string `json:"user_id"`
	Username string `json:"username"`
}

// TokenResponse is returned whenever a token is issued
type TokenResponse struct {
	Token    string  `json:"token"`
	UserInfo UserDTO `json:"userInfo"`
}

// RegisterResponse is returned after a successful registration
type RegisterResponse struct {
	User    UserDTO `json:"user"`
	Message string  `json:"message"`
}

// UserSettingsDTO represents user settings in API responses
type UserSettingsDTO struct {
	Theme              string `json:"theme"`
	EmailNotifications bool   `json:"emailNotifications"`
	WeekStartsOn       string `json:"weekStartsOn"`
}

// ProfileDTO represents a user profile in API responses
type ProfileDTO struct {
	UserID       string          `json:"user_id"`
	FirstName    string          `json:"firstName"`
	LastName     string          `json:"lastName"`
	Country      string          `json:"country"`
	Timezone     string          `json:"timezone"`
	UserSettings UserSettingsDTO `json:"userSettings"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// NotificationDTO represents a notification in API responses
type NotificationDTO struct {
	ID        string                  `json:"id"`
	Type      models.NotificationType `json:"type"`
	Title     string                  `json:"title"`
	Message   string                  `json:"message"`
	Data      map[string]interface{}  `json:"data"`
	Read      bool                    `json:"read"`
	CreatedAt time.Time               `json:"createdAt"`
}

// NotificationListResponse represents a page of notifications
type NotificationListResponse struct {
	Notifications []NotificationDTO        `json:"notifications"`
	Pagination    utils.PaginationResponse `json:"pagination"`
}

// Conversion functions

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		LastLogin: user.LastLogin,
		CreatedAt: user.CreatedAt,
	}
}

// ToMemberUserDTO converts a User model to MemberUserDTO
func ToMemberUserDTO(user models.User) MemberUserDTO {
	return MemberUserDTO{
		ID:       user.ID,
		Username: user.Username,
	}
}

// ToProfileDTO converts a UserProfile model to ProfileDTO
func ToProfileDTO(profile models.UserProfile) ProfileDTO {
	return ProfileDTO{
		UserID:    profile.UserID,
		FirstName: profile.FirstName,
		LastName:  profile.LastName,
		Country:   profile.Country,
		Timezone:  profile.Timezone,
		UserSettings: UserSettingsDTO{
			Theme:              profile.UserSettings.Theme,
			EmailNotifications: profile.UserSettings.EmailNotifications,
			WeekStartsOn:       profile.UserSettings.WeekStartsOn,
		},
		UpdatedAt: profile.UpdatedAt,
	}
}

// ToNotificationDTO converts a Notification model to NotificationDTO
func ToNotificationDTO(n models.Notification) NotificationDTO {
	data := map[string]interface{}(n.Data)
	if data == nil {
		data = map[string]interface{}{}
	}
	return NotificationDTO{
		ID:        n.ID,
		Type:      n.Type,
		Title:     n.Title,
		Message:   n.Message,
		Data:      data,
		Read:      n.Read,
		CreatedAt: n.CreatedAt,
	}
}

// ToNotificationListResponse converts a page of notifications
func ToNotificationListResponse(notifications []models.Notification, page, limit int, total int64) NotificationListResponse {
	items := make([]NotificationDTO, len(notifications))
	for i, n := range notifications {
		items[i] = ToNotificationDTO(n)
	}
	return NotificationListResponse{
		Notifications: items,
		Pagination: utils.PaginationResponse{
			Page:  page,
			Limit: limit,
			Total: total,
		},
	}
}
