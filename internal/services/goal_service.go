package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Rahnken/ReframeMe-backend/internal/constants"
	"github.com/Rahnken/ReframeMe-backend/internal/cycle"
	"github.com/Rahnken/ReframeMe-backend/internal/models"
	"github.com/Rahnken/ReframeMe-backend/internal/repository"
	"github.com/Rahnken/ReframeMe-backend/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrGoalNotFound           = errors.New("goal not found")
	ErrNotGoalOwner           = errors.New("only the goal owner can perform this action")
	ErrTitleRequired          = errors.New("title is required")
	ErrInvalidDateRange       = errors.New("end date must not be before start date")
	ErrInvalidCycleDuration   = fmt.Errorf("cycle duration must be between 0 and %d weeks", constants.MaxCycleDuration)
	ErrInvalidTrackingTotal   = errors.New("weekly tracking total cannot be negative")
	ErrInvalidAmount          = errors.New("amounts cannot be negative")
	ErrWeekOutOfRange         = errors.New("week number is outside the goal cycle")
	ErrProgressNotFound       = errors.New("progress not found for this week")
	ErrNoWeeksProvided        = errors.New("at least one week is required")
	ErrAIServiceNotConfigured = errors.New("AI service is not configured")
)

// GoalService handles goal and weekly progress business logic
type GoalService struct {
	goalRepo  repository.GoalRepository
	groupRepo repository.GroupRepository
	aiService *AIService
	now       func() time.Time
}

// NewGoalService creates a new GoalService. now defaults to time.Now.
func NewGoalService(goalRepo repository.GoalRepository, groupRepo repository.GroupRepository, aiService *AIService, now func() time.Time) *GoalService {
	if now == nil {
		now = time.Now
	}
	return &GoalService{
		goalRepo:  goalRepo,
		groupRepo: groupRepo,
		aiService: aiService,
		now:       now,
	}
}

// GoalView is a goal with its derived cycle fields evaluated at read time.
type GoalView struct {
	Goal *models.Goal
	cycle.Derived
}

func (s *GoalService) view(goal *models.Goal) GoalView {
	return GoalView{
		Goal:    goal,
		Derived: cycle.Derive(goal.StartDate, goal.EndDate, goal.CycleDuration, s.now()),
	}
}

// SmartFields are the optional SMART breakdown of a goal.
type SmartFields struct {
	Specific   *string
	Measurable *string
	Attainable *string
	Relevant   *string
	TimeBound  *string
}

// CreateGoalInput represents input for creating a goal. A zero StartDate means today and a
// zero EndDate means StartDate plus the cycle length. A nil CycleDuration means the default
// cycle; zero creates a goal with no weeks.
type CreateGoalInput struct {
	UserID              string
	Title               string
	Description         string
	IsPrivate           bool
	WeeklyTrackingTotal int
	SharedToGroup       []string
	Smart               SmartFields
	StartDate           time.Time
	EndDate             time.Time
	CycleDuration       *int
}

// UpdateGoalInput represents a partial goal edit. Nil fields are left unchanged.
type UpdateGoalInput struct {
	Title               *string
	Description         *string
	IsPrivate           *bool
	WeeklyTrackingTotal *int
	SharedGroups        *[]string
	Smart               SmartFields
	StartDate           *time.Time
	EndDate             *time.Time
	CycleDuration       *int
}

// GoalResult is a goal view plus the sharing targets that could not be resolved.
type GoalResult struct {
	GoalView
	Unresolved []string
}

func validateCycleDuration(weeks int) error {
	if weeks < 0 || weeks > constants.MaxCycleDuration {
		return ErrInvalidCycleDuration
	}
	return nil
}

// resolveShareTargets keeps the groups the owner belongs to and reports the rest.
func (s *GoalService) resolveShareTargets(ownerID string, groupIDs []string) (valid, unresolved []string, err error) {
	target := utils.Unique(groupIDs)
	valid, err = s.groupRepo.MemberGroupIDs(ownerID, target)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to resolve groups: %w", err)
	}

	unresolved, _ = utils.DiffSets(valid, target)
	return orderLike(target, valid), unresolved, nil
}

// orderLike returns the members of subset in the order they appear in reference.
func orderLike(reference, subset []string) []string {
	keep := make(map[string]struct{}, len(subset))
	for _, v := range subset {
		keep[v] = struct{}{}
	}
	ordered := make([]string, 0, len(subset))
	for _, v := range reference {
		if _, ok := keep[v]; ok {
			ordered = append(ordered, v)
		}
	}
	return ordered
}

// CreateGoal creates a goal, generates its weekly schedule and shares it with the given groups
func (s *GoalService) CreateGoal(input CreateGoalInput) (*GoalResult, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}
	duration := constants.DefaultCycleDuration
	if input.CycleDuration != nil {
		duration = *input.CycleDuration
	}
	if err := validateCycleDuration(duration); err != nil {
		return nil, err
	}
	if input.WeeklyTrackingTotal < 0 {
		return nil, ErrInvalidTrackingTotal
	}
	start, end := input.StartDate.UTC(), input.EndDate.UTC()
	if start.IsZero() {
		y, m, d := s.now().UTC().Date()
		start = time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}
	if end.IsZero() {
		end = start.AddDate(0, 0, 7*duration)
	}
	if end.Before(start) {
		return nil, ErrInvalidDateRange
	}

	shareTo, unresolved, err := s.resolveShareTargets(input.UserID, input.SharedToGroup)
	if err != nil {
		return nil, err
	}

	goal := &models.Goal{
		UserID:        input.UserID,
		Title:         title,
		Description:   input.Description,
		IsPrivate:     input.IsPrivate,
		Specific:      input.Smart.Specific,
		Measurable:    input.Smart.Measurable,
		Attainable:    input.Smart.Attainable,
		Relevant:      input.Smart.Relevant,
		TimeBound:     input.Smart.TimeBound,
		StartDate:     start,
		EndDate:       end,
		CycleDuration: duration,
		GoalWeeks:     progressRows(cycle.WeeklySchedule(duration, input.WeeklyTrackingTotal)),
	}

	if err := s.goalRepo.Create(goal, shareTo); err != nil {
		return nil, fmt.Errorf("failed to create goal: %w", err)
	}

	return &GoalResult{GoalView: s.view(goal), Unresolved: unresolved}, nil
}

func progressRows(weeks []cycle.Week) []models.GoalProgress {
	rows := make([]models.GoalProgress, len(weeks))
	for i, w := range weeks {
		rows[i] = models.GoalProgress{
			WeekNumber:      w.WeekNumber,
			TargetAmount:    w.TargetAmount,
			CompletedAmount: w.CompletedAmount,
			Achieved:        w.Achieved,
			Notes:           w.Notes,
		}
	}
	return rows
}

// ListGoals returns the user's goals with derived fields
func (s *GoalService) ListGoals(userID string) ([]GoalView, error) {
	goals, err := s.goalRepo.ListByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list goals: %w", err)
	}

	views := make([]GoalView, len(goals))
	for i := range goals {
		views[i] = s.view(&goals[i])
	}
	return views, nil
}

// Authorize loads a goal for userID. Owners always pass. Members of a group the
// goal is shared with may read it unless it is private. Anyone else gets
// ErrGoalNotFound so goal existence is not leaked.
func (s *GoalService) Authorize(goalID, userID string, ownerOnly bool) (*models.Goal, error) {
	goal, err := s.goalRepo.FindByID(goalID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGoalNotFound
		}
		return nil, fmt.Errorf("failed to find goal: %w", err)
	}

	if goal.UserID == userID {
		return goal, nil
	}

	visible := false
	if !goal.IsPrivate {
		visible, err = s.goalRepo.IsVisibleToMember(goal.ID, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to check goal access: %w", err)
		}
	}

	switch {
	case !visible:
		return nil, ErrGoalNotFound
	case ownerOnly:
		return nil, ErrNotGoalOwner
	default:
		return goal, nil
	}
}

// GetGoal returns a goal with weeks, shared links and derived fields
func (s *GoalService) GetGoal(goalID string) (*GoalView, error) {
	goal, err := s.goalRepo.FindByID(goalID, "GoalWeeks", "SharedGoals")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGoalNotFound
		}
		return nil, fmt.Errorf("failed to find goal: %w", err)
	}

	view := s.view(goal)
	return &view, nil
}

// UpdateGoal applies a partial edit. Field, sharing and schedule changes are committed together.
func (s *GoalService) UpdateGoal(goalID string, input UpdateGoalInput) (*GoalResult, error) {
	goal, err := s.goalRepo.FindByID(goalID, "GoalWeeks")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGoalNotFound
		}
		return nil, fmt.Errorf("failed to find goal: %w", err)
	}

	update := repository.GoalUpdate{Fields: map[string]interface{}{}}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, ErrTitleRequired
		}
		update.Fields["title"] = title
	}
	if input.Description != nil {
		update.Fields["description"] = *input.Description
	}
	if input.IsPrivate != nil {
		update.Fields["is_private"] = *input.IsPrivate
	}
	setSmartFields(update.Fields, input.Smart)

	start, end := goal.StartDate, goal.EndDate
	if input.StartDate != nil {
		start = input.StartDate.UTC()
		update.Fields["start_date"] = start
	}
	if input.EndDate != nil {
		end = input.EndDate.UTC()
		update.Fields["end_date"] = end
	}
	if end.Before(start) {
		return nil, ErrInvalidDateRange
	}

	if input.WeeklyTrackingTotal != nil {
		if *input.WeeklyTrackingTotal < 0 {
			return nil, ErrInvalidTrackingTotal
		}
		update.TargetAmount = input.WeeklyTrackingTotal
	}

	if input.CycleDuration != nil && *input.CycleDuration != goal.CycleDuration {
		duration := *input.CycleDuration
		if err := validateCycleDuration(duration); err != nil {
			return nil, err
		}
		update.Fields["cycle_duration"] = duration

		if duration > goal.CycleDuration {
			update.AddWeeks = missingWeeks(goal, duration, growTarget(goal, input.WeeklyTrackingTotal))
		} else {
			update.DeleteAboveWeek = &duration
		}
	}

	var unresolved []string
	if input.SharedGroups != nil {
		var shareTo []string
		shareTo, unresolved, err = s.resolveShareTargets(goal.UserID, *input.SharedGroups)
		if err != nil {
			return nil, err
		}

		current, err := s.goalRepo.SharedGroupIDs(goal.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load shared groups: %w", err)
		}

		// Links to groups the owner has left are dropped even when resubmitted.
		update.ShareGroupIDs, update.UnshareGroupIDs = utils.DiffSets(current, shareTo)
	}

	if err := s.goalRepo.Update(goal.ID, update); err != nil {
		return nil, fmt.Errorf("failed to update goal: %w", err)
	}

	view, err := s.GetGoal(goal.ID)
	if err != nil {
		return nil, err
	}
	return &GoalResult{GoalView: *view, Unresolved: unresolved}, nil
}

func setSmartFields(fields map[string]interface{}, smart SmartFields) {
	if smart.Specific != nil {
		fields["specific"] = *smart.Specific
	}
	if smart.Measurable != nil {
		fields["measurable"] = *smart.Measurable
	}
	if smart.Attainable != nil {
		fields["attainable"] = *smart.Attainable
	}
	if smart.Relevant != nil {
		fields["relevant"] = *smart.Relevant
	}
	if smart.TimeBound != nil {
		fields["time_bound"] = *smart.TimeBound
	}
}

// growTarget picks the target for weeks appended when a cycle grows.
func growTarget(goal *models.Goal, weeklyTrackingTotal *int) int {
	if weeklyTrackingTotal != nil {
		return *weeklyTrackingTotal
	}
	if len(goal.GoalWeeks) > 0 {
		return goal.GoalWeeks[0].TargetAmount
	}
	return constants.DefaultWeekTarget
}

// missingWeeks generates the weeks of a duration-long schedule that the goal does not have yet.
func missingWeeks(goal *models.Goal, duration, target int) []models.GoalProgress {
	existing := make(map[int]struct{}, len(goal.GoalWeeks))
	for _, w := range goal.GoalWeeks {
		existing[w.WeekNumber] = struct{}{}
	}

	var weeks []cycle.Week
	for _, w := range cycle.WeeklySchedule(duration, target) {
		if _, ok := existing[w.WeekNumber]; !ok {
			weeks = append(weeks, w)
		}
	}
	return progressRows(weeks)
}

// DeleteGoal removes a goal with its progress and shared links
func (s *GoalService) DeleteGoal(goalID string) error {
	if err := s.goalRepo.Delete(goalID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrGoalNotFound
		}
		return fmt.Errorf("failed to delete goal: %w", err)
	}
	return nil
}

// SuggestSmartFields proposes SMART fields for a goal idea
func (s *GoalService) SuggestSmartFields(ctx context.Context, title, description string, cycleDuration int) (*SmartSuggestion, error) {
	if s.aiService == nil {
		return nil, ErrAIServiceNotConfigured
	}
	if strings.TrimSpace(title) == "" {
		return nil, ErrTitleRequired
	}
	if cycleDuration == 0 {
		cycleDuration = constants.DefaultCycleDuration
	}
	if err := validateCycleDuration(cycleDuration); err != nil {
		return nil, err
	}

	suggestion, err := s.aiService.SuggestSmartFields(ctx, title, description, cycleDuration)
	if err != nil {
		return nil, fmt.Errorf("failed to generate suggestions: %w", err)
	}
	return suggestion, nil
}

// Progress

func checkWeek(goal *models.Goal, weekNumber int) error {
	if weekNumber < 1 || weekNumber > goal.CycleDuration {
		return ErrWeekOutOfRange
	}
	return nil
}

func checkAmount(amount *int) error {
	if amount != nil && *amount < 0 {
		return ErrInvalidAmount
	}
	return nil
}

// ListProgress returns every week of the goal in order
func (s *GoalService) ListProgress(goal *models.Goal) ([]models.GoalProgress, error) {
	weeks, err := s.goalRepo.ListProgress(goal.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list progress: %w", err)
	}
	return weeks, nil
}

// GetWeek returns one week of the goal
func (s *GoalService) GetWeek(goal *models.Goal, weekNumber int) (*models.GoalProgress, error) {
	if err := checkWeek(goal, weekNumber); err != nil {
		return nil, err
	}

	progress, err := s.goalRepo.FindProgress(goal.ID, weekNumber)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProgressNotFound
		}
		return nil, fmt.Errorf("failed to find progress: %w", err)
	}
	return progress, nil
}

// SaveWeekInput records a week's outcome. Nil amounts keep their current or default value.
type SaveWeekInput struct {
	WeekNumber      int
	Achieved        bool
	Notes           *string
	CompletedAmount *int
	TargetAmount    *int
}

// SaveWeek creates or updates a week. created reports whether a new row was inserted.
func (s *GoalService) SaveWeek(goal *models.Goal, input SaveWeekInput) (progress *models.GoalProgress, created bool, err error) {
	if err := checkWeek(goal, input.WeekNumber); err != nil {
		return nil, false, err
	}
	if err := checkAmount(input.CompletedAmount); err != nil {
		return nil, false, err
	}
	if err := checkAmount(input.TargetAmount); err != nil {
		return nil, false, err
	}

	progress, err = s.goalRepo.FindProgress(goal.ID, input.WeekNumber)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		progress = &models.GoalProgress{
			GoalID:          goal.ID,
			WeekNumber:      input.WeekNumber,
			TargetAmount:    constants.DefaultWeekTarget,
			CompletedAmount: 0,
		}
		applyWeekInput(progress, input)

		err = s.goalRepo.CreateProgress(progress)
		if err == nil {
			return progress, true, nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, false, fmt.Errorf("failed to create progress: %w", err)
		}
		// Created concurrently; update that row instead.
		progress, err = s.goalRepo.FindProgress(goal.ID, input.WeekNumber)
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to find progress: %w", err)
	}

	applyWeekInput(progress, input)
	if err := s.goalRepo.SaveProgress(progress); err != nil {
		return nil, false, fmt.Errorf("failed to update progress: %w", err)
	}
	return progress, false, nil
}

func applyWeekInput(progress *models.GoalProgress, input SaveWeekInput) {
	progress.Achieved = input.Achieved
	if input.Notes != nil {
		progress.Notes = input.Notes
	}
	if input.CompletedAmount != nil {
		progress.CompletedAmount = *input.CompletedAmount
	}
	if input.TargetAmount != nil {
		progress.TargetAmount = *input.TargetAmount
	}
}

// UpdateWeekInput is a partial update of an existing week
type UpdateWeekInput struct {
	Achieved        *bool
	Notes           *string
	Feedback        *string
	CompletedAmount *int
	TargetAmount    *int
}

// UpdateWeek changes the given fields of an existing week
func (s *GoalService) UpdateWeek(goal *models.Goal, weekNumber int, input UpdateWeekInput) (*models.GoalProgress, error) {
	if err := checkAmount(input.CompletedAmount); err != nil {
		return nil, err
	}
	if err := checkAmount(input.TargetAmount); err != nil {
		return nil, err
	}

	progress, err := s.GetWeek(goal, weekNumber)
	if err != nil {
		return nil, err
	}

	if input.Achieved != nil {
		progress.Achieved = *input.Achieved
	}
	if input.Notes != nil {
		progress.Notes = input.Notes
	}
	if input.Feedback != nil {
		progress.Feedback = input.Feedback
	}
	if input.CompletedAmount != nil {
		progress.CompletedAmount = *input.CompletedAmount
	}
	if input.TargetAmount != nil {
		progress.TargetAmount = *input.TargetAmount
	}

	if err := s.goalRepo.SaveProgress(progress); err != nil {
		return nil, fmt.Errorf("failed to update progress: %w", err)
	}
	return progress, nil
}

// BatchWeekInput is one entry of a batch progress update
type BatchWeekInput struct {
	Achieved bool
	Notes    *string
}

// BatchUpsertProgress creates or updates several weeks atomically. New weeks get a
// target of 1 and a completed amount of 1 when achieved, otherwise 0.
func (s *GoalService) BatchUpsertProgress(goal *models.Goal, weeks map[int]BatchWeekInput) ([]models.GoalProgress, error) {
	if len(weeks) == 0 {
		return nil, ErrNoWeeksProvided
	}

	numbers := make([]int, 0, len(weeks))
	for weekNumber := range weeks {
		if err := checkWeek(goal, weekNumber); err != nil {
			return nil, err
		}
		numbers = append(numbers, weekNumber)
	}
	sort.Ints(numbers)

	rows := make([]models.GoalProgress, len(numbers))
	for i, weekNumber := range numbers {
		week := weeks[weekNumber]
		completed := 0
		if week.Achieved {
			completed = 1
		}
		rows[i] = models.GoalProgress{
			WeekNumber:      weekNumber,
			Achieved:        week.Achieved,
			Notes:           week.Notes,
			TargetAmount:    constants.DefaultWeekTarget,
			CompletedAmount: completed,
		}
	}

	saved, err := s.goalRepo.UpsertProgress(goal.ID, rows)
	if err != nil {
		return nil, fmt.Errorf("failed to save progress: %w", err)
	}
	return saved, nil
}
