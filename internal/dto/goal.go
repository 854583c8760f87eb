package dto

import (
	"time"

	"github.com/Rahnken/ReframeMe-backend/internal/models"
	"github.com/Rahnken/ReframeMe-backend/internal/services"
)

// GoalProgressDTO represents one week of a goal in API responses
type GoalProgressDTO struct {
	ID              string    `json:"id"`
	GoalID          string    `json:"goalId"`
	WeekNumber      int       `json:"weekNumber"`
	TargetAmount    int       `json:"targetAmount"`
	CompletedAmount int       `json:"completedAmount"`
	Achieved        bool      `json:"achieved"`
	Notes           *string   `json:"notes"`
	Feedback        *string   `json:"feedback"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// SharedGoalDTO links a goal to a group
type SharedGoalDTO struct {
	GoalID  string `json:"goalId"`
	GroupID string `json:"groupId"`
}

// GoalDTO represents a goal with its derived cycle fields
type GoalDTO struct {
	ID            string            `json:"id"`
	UserID        string            `json:"userId"`
	Title         string            `json:"title"`
	Description   string            `json:"description"`
	IsPrivate     bool              `json:"isPrivate"`
	Specific      *string           `json:"specific"`
	Measurable    *string           `json:"measurable"`
	Attainable    *string           `json:"attainable"`
	Relevant      *string           `json:"relevant"`
	TimeBound     *string           `json:"timeBound"`
	StartDate     time.Time         `json:"startDate"`
	EndDate       time.Time         `json:"endDate"`
	CycleDuration int               `json:"cycleDuration"`
	CurrentWeek   int               `json:"currentWeek"`
	IsActive      bool              `json:"isActive"`
	DaysRemaining int               `json:"daysRemaining"`
	GoalWeeks     []GoalProgressDTO `json:"goalWeeks"`
	SharedGoals   []SharedGoalDTO   `json:"sharedGoals"`
	CreatedAt     time.Time         `json:"createdAt"`
	UpdatedAt     time.Time         `json:"updatedAt"`

	// UnresolvedGroups lists sharing targets the owner could not share to
	UnresolvedGroups []string `json:"unresolvedGroups,omitempty"`
}

// ProgressListResponse represents the weeks of a goal
type ProgressListResponse struct {
	GoalID string            `json:"goalId"`
	Weeks  []GoalProgressDTO `json:"weeks"`
}

// SmartSuggestionDTO represents AI generated SMART fields
type SmartSuggestionDTO struct {
	Specific            string `json:"specific"`
	Measurable          string `json:"measurable"`
	Attainable          string `json:"attainable"`
	Relevant            string `json:"relevant"`
	TimeBound           string `json:"timeBound"`
	WeeklyTrackingTotal int    `json:"weeklyTrackingTotal"`
}

// Conversion functions

// ToGoalProgressDTO converts a GoalProgress model to GoalProgressDTO
func ToGoalProgressDTO(p models.GoalProgress) GoalProgressDTO {
	return GoalProgressDTO{
		ID:              p.ID,
		GoalID:          p.GoalID,
		WeekNumber:      p.WeekNumber,
		TargetAmount:    p.TargetAmount,
		CompletedAmount: p.CompletedAmount,
		Achieved:        p.Achieved,
		Notes:           p.Notes,
		Feedback:        p.Feedback,
		UpdatedAt:       p.UpdatedAt,
	}
}

// ToGoalProgressDTOs converts a slice of weeks, never returning nil
func ToGoalProgressDTOs(weeks []models.GoalProgress) []GoalProgressDTO {
	items := make([]GoalProgressDTO, len(weeks))
	for i, week := range weeks {
		items[i] = ToGoalProgressDTO(week)
	}
	return items
}

// ToGoalDTO flattens a goal view into GoalDTO
func ToGoalDTO(view services.GoalView) GoalDTO {
	goal := view.Goal
	dto := GoalDTO{
		ID:            goal.ID,
		UserID:        goal.UserID,
		Title:         goal.Title,
		Description:   goal.Description,
		IsPrivate:     goal.IsPrivate,
		Specific:      goal.Specific,
		Measurable:    goal.Measurable,
		Attainable:    goal.Attainable,
		Relevant:      goal.Relevant,
		TimeBound:     goal.TimeBound,
		StartDate:     goal.StartDate,
		EndDate:       goal.EndDate,
		CycleDuration: goal.CycleDuration,
		CurrentWeek:   view.CurrentWeek,
		IsActive:      view.IsActive,
		DaysRemaining: view.DaysRemaining,
		GoalWeeks:     ToGoalProgressDTOs(goal.GoalWeeks),
		SharedGoals:   make([]SharedGoalDTO, len(goal.SharedGoals)),
		CreatedAt:     goal.CreatedAt,
		UpdatedAt:     goal.UpdatedAt,
	}
	for i, shared := range goal.SharedGoals {
		dto.SharedGoals[i] = SharedGoalDTO{GoalID: shared.GoalID, GroupID: shared.GroupID}
	}
	return dto
}

// ToGoalResultDTO converts a create or update result, including unresolved groups
func ToGoalResultDTO(result services.GoalResult) GoalDTO {
	dto := ToGoalDTO(result.GoalView)
	dto.UnresolvedGroups = result.Unresolved
	return dto
}

// ToGoalDTOs converts a slice of goal views
func ToGoalDTOs(views []services.GoalView) []GoalDTO {
	items := make([]GoalDTO, len(views))
	for i, view := range views {
		items[i] = ToGoalDTO(view)
	}
	return items
}

// ToSmartSuggestionDTO converts an AI suggestion
func ToSmartSuggestionDTO(s services.SmartSuggestion) SmartSuggestionDTO {
	return SmartSuggestionDTO{
		Specific:            s.Specific,
		Measurable:          s.Measurable,
		Attainable:          s.Attainable,
		Relevant:            s.Relevant,
		TimeBound:           s.TimeBound,
		WeeklyTrackingTotal: s.WeeklyTrackingTotal,
	}
}
