package models

import (
	"time"

	"gorm.io/gorm"
)

type Group struct {
	ID          string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	Name        string    `gorm:"type:varchar(255);not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	// Relations
	Users       []GroupUser  `gorm:"foreignKey:GroupID" json:"users,omitempty"`
	SharedGoals []SharedGoal `gorm:"foreignKey:GroupID" json:"sharedGoals,omitempty"`
}

func (g *Group) BeforeCreate(tx *gorm.DB) error {
	g.ID = newID(g.ID)
	return nil
}

type GroupRole string

const (
	RoleAdmin  GroupRole = "ADMIN"
	RoleMember GroupRole = "MEMBER"
)

// Valid reports whether r is a known role.
func (r GroupRole) Valid() bool {
	return r == RoleAdmin || r == RoleMember
}

type GroupUser struct {
	GroupID  string    `gorm:"type:varchar(36);primaryKey" json:"group_id"`
	UserID   string    `gorm:"type:varchar(36);primaryKey" json:"user_id"`
	Role     GroupRole `gorm:"type:varchar(20);not null;default:'MEMBER'" json:"role"`
	JoinedAt time.Time `json:"joinedAt"`

	// Relations
	Group Group `gorm:"foreignKey:GroupID" json:"group,omitempty"`
	User  User  `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (GroupUser) TableName() string {
	return "group_users"
}

// SharedGoal makes a goal visible to the members of a group.
type SharedGoal struct {
	GoalID    string    `gorm:"type:varchar(36);primaryKey" json:"goal_id"`
	GroupID   string    `gorm:"type:varchar(36);primaryKey;index" json:"group_id"`
	CreatedAt time.Time `json:"createdAt"`
}
