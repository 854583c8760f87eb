package models

import (
	"time"

	"gorm.io/gorm"
)

type Goal struct {
	ID          string `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID      string `gorm:"type:varchar(36);index;not null" json:"user_id"`
	Title       string `gorm:"type:varchar(255);not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	IsPrivate   bool   `gorm:"not null;default:false" json:"isPrivate"`

	// SMART fields
	Specific   *string `gorm:"type:text" json:"specific"`
	Measurable *string `gorm:"type:text" json:"measurable"`
	Attainable *string `gorm:"type:text" json:"attainable"`
	Relevant   *string `gorm:"type:text" json:"relevant"`
	TimeBound  *string `gorm:"type:text" json:"timeBound"`

	// Cycle
	StartDate     time.Time `gorm:"not null" json:"startDate"`
	EndDate       time.Time `gorm:"not null" json:"endDate"`
	CycleDuration int       `gorm:"not null" json:"cycleDuration"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// Relations
	User        User           `gorm:"foreignKey:UserID" json:"-"`
	GoalWeeks   []GoalProgress `gorm:"foreignKey:GoalID" json:"goalWeeks"`
	SharedGoals []SharedGoal   `gorm:"foreignKey:GoalID" json:"sharedGoals"`
}

func (g *Goal) BeforeCreate(tx *gorm.DB) error {
	g.ID = newID(g.ID)
	return nil
}

// GoalProgress is one week of a goal's cycle. (goal_id, week_number) is unique.
type GoalProgress struct {
	ID              string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	GoalID          string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_goal_progress_goal_week" json:"goal_id"`
	WeekNumber      int       `gorm:"not null;uniqueIndex:idx_goal_progress_goal_week" json:"weekNumber"`
	TargetAmount    int       `gorm:"not null" json:"targetAmount"`
	CompletedAmount int       `gorm:"not null;default:0" json:"completedAmount"`
	Achieved        bool      `gorm:"not null;default:false" json:"achieved"`
	Notes           *string   `gorm:"type:text" json:"notes"`
	Feedback        *string   `gorm:"type:text" json:"feedback"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

func (GoalProgress) TableName() string {
	return "goal_progress"
}

func (p *GoalProgress) BeforeCreate(tx *gorm.DB) error {
	p.ID = newID(p.ID)
	return nil
}
