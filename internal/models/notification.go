package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type NotificationType string

const (
	NotificationGroupAdded       NotificationType = "GROUP_ADDED"
	NotificationGroupRemoved     NotificationType = "GROUP_REMOVED"
	NotificationGroupRoleChanged NotificationType = "GROUP_ROLE_CHANGED"
)

type Notification struct {
	ID        string            `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID    string            `gorm:"type:varchar(36);index;not null" json:"user_id"`
	Type      NotificationType  `gorm:"type:varchar(40);not null" json:"type"`
	Title     string            `gorm:"type:varchar(255);not null" json:"title"`
	Message   string            `gorm:"type:text" json:"message"`
	Data      datatypes.JSONMap `json:"data"`
	Read      bool              `gorm:"not null;default:false" json:"read"`
	CreatedAt time.Time         `gorm:"index" json:"createdAt"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	n.ID = newID(n.ID)
	return nil
}
