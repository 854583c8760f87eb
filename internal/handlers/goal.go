package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/Rahnken/ReframeMe-backend/internal/constants"
	"github.com/Rahnken/ReframeMe-backend/internal/dto"
	apierrors "github.com/Rahnken/ReframeMe-backend/internal/errors"
	"github.com/Rahnken/ReframeMe-backend/internal/middleware"
	"github.com/Rahnken/ReframeMe-backend/internal/services"
	"github.com/Rahnken/ReframeMe-backend/internal/utils"
	"github.com/gin-gonic/gin"
)

type GoalHandler struct {
	goalService *services.GoalService
}

func NewGoalHandler(goalService *services.GoalService) *GoalHandler {
	return &GoalHandler{
		goalService: goalService,
	}
}

// smartRequest holds the optional SMART fields shared by create and edit
type smartRequest struct {
	Specific   *string `json:"specific"`
	Measurable *string `json:"measurable"`
	Attainable *string `json:"attainable"`
	Relevant   *string `json:"relevant"`
	TimeBound  *string `json:"timeBound"`
}

func (r smartRequest) toInput() services.SmartFields {
	return services.SmartFields{
		Specific:   r.Specific,
		Measurable: r.Measurable,
		Attainable: r.Attainable,
		Relevant:   r.Relevant,
		TimeBound:  r.TimeBound,
	}
}

// parseOptionalDate parses value when set, writing a 400 and returning false on bad input
func parseOptionalDate(c *gin.Context, field string, value *string) (*time.Time, bool) {
	if value == nil || *value == "" {
		return nil, true
	}
	t, err := utils.ParseDate(*value)
	if err != nil {
		apierrors.BadRequestWithDetails(c, "Invalid date", gin.H{"field": field})
		return nil, false
	}
	return &t, true
}

// ListGoals returns the current user's goals with their weeks and derived fields
func (h *GoalHandler) ListGoals(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	goals, err := h.goalService.ListGoals(userID)
	if err != nil {
		respondGoalError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToGoalDTOs(goals))
}

// CreateGoal creates a goal and its weekly schedule
func (h *GoalHandler) CreateGoal(c *gin.Context) {
	type CreateGoalRequest struct {
		smartRequest
		Title               string   `json:"title" binding:"required,max=255"`
		Description         string   `json:"description"`
		IsPrivate           bool     `json:"isPrivate"`
		WeeklyTrackingTotal *int     `json:"weeklyTrackingTotal"`
		SharedToGroup       []string `json:"sharedToGroup"`
		StartDate           *string  `json:"startDate"`
		EndDate             *string  `json:"endDate"`
		CycleDuration       *int     `json:"cycleDuration"`
	}

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	var req CreateGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	start, ok := parseOptionalDate(c, "startDate", req.StartDate)
	if !ok {
		return
	}
	end, ok := parseOptionalDate(c, "endDate", req.EndDate)
	if !ok {
		return
	}

	input := services.CreateGoalInput{
		UserID:              userID,
		Title:               req.Title,
		Description:         req.Description,
		IsPrivate:           req.IsPrivate,
		WeeklyTrackingTotal: constants.DefaultWeekTarget,
		SharedToGroup:       req.SharedToGroup,
		Smart:               req.smartRequest.toInput(),
		CycleDuration:       req.CycleDuration,
	}
	if req.WeeklyTrackingTotal != nil {
		input.WeeklyTrackingTotal = *req.WeeklyTrackingTotal
	}
	if start != nil {
		input.StartDate = *start
	}
	if end != nil {
		input.EndDate = *end
	}

	result, err := h.goalService.CreateGoal(input)
	if err != nil {
		respondGoalError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToGoalResultDTO(*result))
}

// GetGoal returns a goal loaded by RequireGoalAccess
func (h *GoalHandler) GetGoal(c *gin.Context) {
	goal, exists := middleware.GetGoal(c)
	if !exists {
		apierrors.NotFound(c, "Goal not found")
		return
	}

	view, err := h.goalService.GetGoal(goal.ID)
	if err != nil {
		respondGoalError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToGoalDTO(*view))
}

// UpdateGoal applies a partial edit to a goal
func (h *GoalHandler) UpdateGoal(c *gin.Context) {
	type UpdateGoalRequest struct {
		smartRequest
		Title               *string   `json:"title" binding:"omitempty,max=255"`
		Description         *string   `json:"description"`
		IsPrivate           *bool     `json:"isPrivate"`
		WeeklyTrackingTotal *int      `json:"weeklyTrackingTotal"`
		SharedGroups        *[]string `json:"sharedGroups"`
		StartDate           *string   `json:"startDate"`
		EndDate             *string   `json:"endDate"`
		CycleDuration       *int      `json:"cycleDuration"`
	}

	goal, exists := middleware.GetGoal(c)
	if !exists {
		apierrors.NotFound(c, "Goal not found")
		return
	}

	var req UpdateGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	start, ok := parseOptionalDate(c, "startDate", req.StartDate)
	if !ok {
		return
	}
	end, ok := parseOptionalDate(c, "endDate", req.EndDate)
	if !ok {
		return
	}

	result, err := h.goalService.UpdateGoal(goal.ID, services.UpdateGoalInput{
		Title:               req.Title,
		Description:         req.Description,
		IsPrivate:           req.IsPrivate,
		WeeklyTrackingTotal: req.WeeklyTrackingTotal,
		SharedGroups:        req.SharedGroups,
		Smart:               req.smartRequest.toInput(),
		StartDate:           start,
		EndDate:             end,
		CycleDuration:       req.CycleDuration,
	})
	if err != nil {
		respondGoalError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToGoalResultDTO(*result))
}

// DeleteGoal removes a goal with its weeks and sharing links
func (h *GoalHandler) DeleteGoal(c *gin.Context) {
	goal, exists := middleware.GetGoal(c)
	if !exists {
		apierrors.NotFound(c, "Goal not found")
		return
	}

	if err := h.goalService.DeleteGoal(goal.ID); err != nil {
		respondGoalError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Goal deleted successfully",
	})
}

// SuggestSmartFields asks the AI service for SMART fields for a goal idea
func (h *GoalHandler) SuggestSmartFields(c *gin.Context) {
	type SuggestRequest struct {
		Title         string `json:"title" binding:"required,max=255"`
		Description   string `json:"description" binding:"max=2000"`
		CycleDuration int    `json:"cycleDuration"`
	}

	var req SuggestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	suggestion, err := h.goalService.SuggestSmartFields(c.Request.Context(), req.Title, req.Description, req.CycleDuration)
	if err != nil {
		respondGoalError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToSmartSuggestionDTO(*suggestion))
}

// Progress

// ListProgress returns every week of the goal, ordered by week number
func (h *GoalHandler) ListProgress(c *gin.Context) {
	goal, exists := middleware.GetGoal(c)
	if !exists {
		apierrors.NotFound(c, "Goal not found")
		return
	}

	weeks, err := h.goalService.ListProgress(goal)
	if err != nil {
		respondGoalError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ProgressListResponse{
		GoalID: goal.ID,
		Weeks:  dto.ToGoalProgressDTOs(weeks),
	})
}

func weekParam(c *gin.Context) (int, bool) {
	weekNumber, err := strconv.Atoi(c.Param("weekNumber"))
	if err != nil {
		apierrors.BadRequest(c, "Invalid week number")
		return 0, false
	}
	return weekNumber, true
}

// GetWeek returns one week of the goal
func (h *GoalHandler) GetWeek(c *gin.Context) {
	goal, exists := middleware.GetGoal(c)
	if !exists {
		apierrors.NotFound(c, "Goal not found")
		return
	}

	weekNumber, ok := weekParam(c)
	if !ok {
		return
	}

	progress, err := h.goalService.GetWeek(goal, weekNumber)
	if err != nil {
		respondGoalError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToGoalProgressDTO(*progress))
}

// SaveWeek creates or updates a week. It answers 201 when a row was created.
func (h *GoalHandler) SaveWeek(c *gin.Context) {
	type SaveWeekRequest struct {
		WeekNumber      int     `json:"weekNumber" binding:"required"`
		Achieved        bool    `json:"achieved"`
		Notes           *string `json:"notes"`
		CompletedAmount *int    `json:"completedAmount"`
		TargetAmount    *int    `json:"targetAmount"`
	}

	goal, exists := middleware.GetGoal(c)
	if !exists {
		apierrors.NotFound(c, "Goal not found")
		return
	}

	var req SaveWeekRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	progress, created, err := h.goalService.SaveWeek(goal, services.SaveWeekInput{
		WeekNumber:      req.WeekNumber,
		Achieved:        req.Achieved,
		Notes:           req.Notes,
		CompletedAmount: req.CompletedAmount,
		TargetAmount:    req.TargetAmount,
	})
	if err != nil {
		respondGoalError(c, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, dto.ToGoalProgressDTO(*progress))
}

// UpdateWeek changes the given fields of an existing week
func (h *GoalHandler) UpdateWeek(c *gin.Context) {
	type UpdateWeekRequest struct {
		Achieved        *bool   `json:"achieved"`
		Notes           *string `json:"notes"`
		Feedback        *string `json:"feedback"`
		CompletedAmount *int    `json:"completedAmount"`
		TargetAmount    *int    `json:"targetAmount"`
	}

	goal, exists := middleware.GetGoal(c)
	if !exists {
		apierrors.NotFound(c, "Goal not found")
		return
	}

	weekNumber, ok := weekParam(c)
	if !ok {
		return
	}

	var req UpdateWeekRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	progress, err := h.goalService.UpdateWeek(goal, weekNumber, services.UpdateWeekInput{
		Achieved:        req.Achieved,
		Notes:           req.Notes,
		Feedback:        req.Feedback,
		CompletedAmount: req.CompletedAmount,
		TargetAmount:    req.TargetAmount,
	})
	if err != nil {
		respondGoalError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToGoalProgressDTO(*progress))
}

// BatchUpdateProgress upserts several weeks in one transaction.
// The body maps week numbers to {achieved, notes}.
func (h *GoalHandler) BatchUpdateProgress(c *gin.Context) {
	type WeekRequest struct {
		Achieved bool    `json:"achieved"`
		Notes    *string `json:"notes"`
	}
	type BatchRequest struct {
		WeekProgress map[string]WeekRequest `json:"weekProgress" binding:"required"`
	}

	goal, exists := middleware.GetGoal(c)
	if !exists {
		apierrors.NotFound(c, "Goal not found")
		return
	}

	var req BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	weeks := make(map[int]services.BatchWeekInput, len(req.WeekProgress))
	for key, week := range req.WeekProgress {
		weekNumber, err := strconv.Atoi(key)
		if err != nil {
			apierrors.BadRequestWithDetails(c, "Invalid week number", gin.H{"week": key})
			return
		}
		weeks[weekNumber] = services.BatchWeekInput{
			Achieved: week.Achieved,
			Notes:    week.Notes,
		}
	}

	progress, err := h.goalService.BatchUpsertProgress(goal, weeks)
	if err != nil {
		respondGoalError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ProgressListResponse{
		GoalID: goal.ID,
		Weeks:  dto.ToGoalProgressDTOs(progress),
	})
}

func respondGoalError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrGoalNotFound),
		errors.Is(err, services.ErrProgressNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrNotGoalOwner):
		apierrors.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrTitleRequired),
		errors.Is(err, services.ErrInvalidDateRange),
		errors.Is(err, services.ErrInvalidCycleDuration),
		errors.Is(err, services.ErrInvalidTrackingTotal),
		errors.Is(err, services.ErrInvalidAmount),
		errors.Is(err, services.ErrWeekOutOfRange),
		errors.Is(err, services.ErrNoWeeksProvided):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrAIServiceNotConfigured):
		apierrors.ServiceUnavailable(c, err.Error())
	default:
		slog.Error("goal operation failed", "error", err)
		apierrors.InternalError(c)
	}
}
