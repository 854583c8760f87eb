package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	ID             string     `gorm:"type:varchar(36);primaryKey" json:"user_id"`
	Username       string     `gorm:"type:varchar(50);uniqueIndex;not null" json:"username"`
	Email          string     `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	HashedPassword string     `gorm:"type:varchar(255);not null" json:"-"`
	LastLogin      *time.Time `json:"lastLogin"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`

	// Relations
	Profile UserProfile `gorm:"foreignKey:UserID" json:"profile,omitempty"`
	Goals   []Goal      `gorm:"foreignKey:UserID" json:"-"`
	Groups  []GroupUser `gorm:"foreignKey:UserID" json:"-"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	u.ID = newID(u.ID)
	return nil
}

type UserProfile struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID    string    `gorm:"type:varchar(36);uniqueIndex;not null" json:"user_id"`
	FirstName string    `gorm:"type:varchar(100)" json:"firstName"`
	LastName  string    `gorm:"type:varchar(100)" json:"lastName"`
	Country   string    `gorm:"type:varchar(100)" json:"country"`
	Timezone  string    `gorm:"type:varchar(64)" json:"timezone"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	UserSettings UserSettings `gorm:"foreignKey:ProfileID" json:"userSettings"`
}

func (p *UserProfile) BeforeCreate(tx *gorm.DB) error {
	p.ID = newID(p.ID)
	return nil
}

type UserSettings struct {
	ID                 string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	ProfileID          string    `gorm:"type:varchar(36);uniqueIndex;not null" json:"profile_id"`
	Theme              string    `gorm:"type:varchar(20);not null;default:'light'" json:"theme"`
	EmailNotifications bool      `gorm:"not null;default:true" json:"emailNotifications"`
	WeekStartsOn       string    `gorm:"type:varchar(10);not null;default:'MONDAY'" json:"weekStartsOn"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

func (s *UserSettings) BeforeCreate(tx *gorm.DB) error {
	s.ID = newID(s.ID)
	return nil
}
