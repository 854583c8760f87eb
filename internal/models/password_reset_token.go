package models

import (
	"time"

	"gorm.io/gorm"
)

type PasswordResetToken struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	Token     string    `gorm:"type:varchar(128);uniqueIndex;not null" json:"-"`
	UserID    string    `gorm:"type:varchar(36);index;not null" json:"user_id"`
	ExpiresAt time.Time `gorm:"not null" json:"expiresAt"`
	Used      bool      `gorm:"not null;default:false" json:"used"`
	CreatedAt time.Time `json:"createdAt"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (t *PasswordResetToken) BeforeCreate(tx *gorm.DB) error {
	t.ID = newID(t.ID)
	return nil
}

// IsExpired reports whether the token expired before now.
func (t *PasswordResetToken) IsExpired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}
