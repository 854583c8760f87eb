package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Rahnken/ReframeMe-backend/internal/constants"
	"github.com/Rahnken/ReframeMe-backend/internal/dto"
	"github.com/Rahnken/ReframeMe-backend/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (env handlerTestEnv) createGoal(t *testing.T, handler *GoalHandler, userID string, weeks, target int) dto.GoalDTO {
	t.Helper()

	c, w := testContext(http.MethodPost, "/goals/create", map[string]interface{}{
		"title":               "Run three times a week",
		"description":         "Cardio",
		"weeklyTrackingTotal": target,
		"cycleDuration":       weeks,
		"startDate":           "2025-02-24",
		"endDate":             "2025-05-19",
		"specific":            "Run 5k",
	}, userID)
	handler.CreateGoal(c)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var goal dto.GoalDTO
	decode(t, w, &goal)
	return goal
}

// goalContext loads the goal the way RequireGoalAccess does.
func (env handlerTestEnv) goalContext(t *testing.T, method, url string, body interface{}, userID, goalID string, params ...gin.Param) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()

	goal, err := env.goals.Authorize(goalID, userID, false)
	require.NoError(t, err)

	c, w := testContext(method, url, body, userID)
	c.Params = append(gin.Params{{Key: "goal_id", Value: goalID}}, params...)
	c.Set(constants.ContextKeyGoal, goal)
	return c, w
}

func TestGoalHandler_CreateGoal(t *testing.T) {
	env := setupHandlerTestEnv(t)
	handler := NewGoalHandler(env.goals)
	user := env.register(t, "alice")

	goal := env.createGoal(t, handler, user.ID, 12, 5)

	assert.Equal(t, "Run three times a week", goal.Title)
	assert.Equal(t, 12, goal.CycleDuration)
	require.Len(t, goal.GoalWeeks, 12)
	for i, week := range goal.GoalWeeks {
		assert.Equal(t, i+1, week.WeekNumber)
		assert.Equal(t, 5, week.TargetAmount)
		assert.Equal(t, 0, week.CompletedAmount)
		assert.False(t, week.Achieved)
	}
	require.NotNil(t, goal.Specific)
	assert.Equal(t, "Run 5k", *goal.Specific)

	// 2025-02-24 to 2025-03-03 09:00 is one week and nine hours in.
	assert.Equal(t, 2, goal.CurrentWeek)
	assert.True(t, goal.IsActive)
	assert.Equal(t, 77, goal.DaysRemaining)

	var rows int64
	require.NoError(t, env.db.Model(&models.GoalProgress{}).Where("goal_id = ?", goal.ID).Count(&rows).Error)
	assert.Equal(t, int64(12), rows)
}

func TestGoalHandler_CreateGoalInvalid(t *testing.T) {
	env := setupHandlerTestEnv(t)
	handler := NewGoalHandler(env.goals)
	user := env.register(t, "alice")

	tests := []struct {
		name    string
		payload map[string]interface{}
	}{
		{"missing title", map[string]interface{}{"cycleDuration": 12}},
		{"bad date", map[string]interface{}{"title": "Read", "startDate": "next tuesday"}},
		{"end before start", map[string]interface{}{"title": "Read", "startDate": "2025-03-10", "endDate": "2025-03-01"}},
		{"cycle too long", map[string]interface{}{"title": "Read", "cycleDuration": constants.MaxCycleDuration + 1}},
		{"negative cycle", map[string]interface{}{"title": "Read", "cycleDuration": -1}},
		{"negative tracking total", map[string]interface{}{"title": "Read", "weeklyTrackingTotal": -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := testContext(http.MethodPost, "/goals/create", tt.payload, user.ID)
			handler.CreateGoal(c)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}

	var count int64
	require.NoError(t, env.db.Model(&models.Goal{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestGoalHandler_CreateGoalZeroValues(t *testing.T) {
	env := setupHandlerTestEnv(t)
	handler := NewGoalHandler(env.goals)
	user := env.register(t, "alice")

	tests := []struct {
		name     string
		payload  map[string]interface{}
		duration int
		target   int
	}{
		{"zero cycle", map[string]interface{}{"title": "Someday", "weeklyTrackingTotal": 5, "cycleDuration": 0}, 0, 5},
		{"zero tracking total", map[string]interface{}{"title": "Rest", "weeklyTrackingTotal": 0, "cycleDuration": 12}, 12, 0},
		{"omitted cycle", map[string]interface{}{"title": "Read", "weeklyTrackingTotal": 2}, constants.DefaultCycleDuration, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := testContext(http.MethodPost, "/goals/create", tt.payload, user.ID)
			handler.CreateGoal(c)
			require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

			var goal dto.GoalDTO
			decode(t, w, &goal)
			assert.Equal(t, tt.duration, goal.CycleDuration)
			require.Len(t, goal.GoalWeeks, tt.duration)
			for _, week := range goal.GoalWeeks {
				assert.Equal(t, tt.target, week.TargetAmount)
			}

			var rows int64
			require.NoError(t, env.db.Model(&models.GoalProgress{}).Where("goal_id = ?", goal.ID).Count(&rows).Error)
			assert.Equal(t, int64(tt.duration), rows)
		})
	}
}

func TestGoalHandler_ListAndGet(t *testing.T) {
	env := setupHandlerTestEnv(t)
	handler := NewGoalHandler(env.goals)
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")
	goal := env.createGoal(t, handler, alice.ID, 4, 2)
	env.createGoal(t, handler, bob.ID, 4, 2)

	c, w := testContext(http.MethodGet, "/goals", nil, alice.ID)
	handler.ListGoals(c)
	require.Equal(t, http.StatusOK, w.Code)

	var goals []dto.GoalDTO
	decode(t, w, &goals)
	require.Len(t, goals, 1)
	assert.Equal(t, goal.ID, goals[0].ID)

	c, w = env.goalContext(t, http.MethodGet, "/goals/"+goal.ID, nil, alice.ID, goal.ID)
	handler.GetGoal(c)
	require.Equal(t, http.StatusOK, w.Code)

	var got dto.GoalDTO
	decode(t, w, &got)
	assert.Len(t, got.GoalWeeks, 4)
	assert.Equal(t, goal.ID, got.ID)
}

func TestGoalHandler_UpdateGoalResizesCycle(t *testing.T) {
	env := setupHandlerTestEnv(t)
	handler := NewGoalHandler(env.goals)
	user := env.register(t, "alice")
	goal := env.createGoal(t, handler, user.ID, 4, 3)

	c, w := env.goalContext(t, http.MethodPatch, "/goals/"+goal.ID+"/edit", map[string]interface{}{
		"title":         "Run four times a week",
		"cycleDuration": 6,
	}, user.ID, goal.ID)
	handler.UpdateGoal(c)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var updated dto.GoalDTO
	decode(t, w, &updated)
	assert.Equal(t, "Run four times a week", updated.Title)
	require.Len(t, updated.GoalWeeks, 6)
	assert.Equal(t, 3, updated.GoalWeeks[5].TargetAmount)

	c, w = env.goalContext(t, http.MethodPatch, "/goals/"+goal.ID+"/edit", map[string]interface{}{
		"cycleDuration": 2,
	}, user.ID, goal.ID)
	handler.UpdateGoal(c)
	require.Equal(t, http.StatusOK, w.Code)

	decode(t, w, &updated)
	assert.Len(t, updated.GoalWeeks, 2)
}

func TestGoalHandler_UpdateGoalReportsUnresolvedGroups(t *testing.T) {
	env := setupHandlerTestEnv(t)
	handler := NewGoalHandler(env.goals)
	user := env.register(t, "alice")
	goal := env.createGoal(t, handler, user.ID, 4, 1)
	group, err := env.groups.CreateGroup(user.ID, "Runners", "")
	require.NoError(t, err)

	c, w := env.goalContext(t, http.MethodPatch, "/goals/"+goal.ID+"/edit", map[string]interface{}{
		"sharedGroups": []string{group.ID, "missing-group"},
	}, user.ID, goal.ID)
	handler.UpdateGoal(c)
	require.Equal(t, http.StatusOK, w.Code)

	var updated dto.GoalDTO
	decode(t, w, &updated)
	require.Len(t, updated.SharedGoals, 1)
	assert.Equal(t, group.ID, updated.SharedGoals[0].GroupID)
	assert.Equal(t, []string{"missing-group"}, updated.UnresolvedGroups)
}

func TestGoalHandler_DeleteGoal(t *testing.T) {
	env := setupHandlerTestEnv(t)
	handler := NewGoalHandler(env.goals)
	user := env.register(t, "alice")
	goal := env.createGoal(t, handler, user.ID, 4, 1)

	c, w := env.goalContext(t, http.MethodDelete, "/goals/"+goal.ID+"/delete", nil, user.ID, goal.ID)
	handler.DeleteGoal(c)
	require.Equal(t, http.StatusOK, w.Code)

	var goals, weeks int64
	require.NoError(t, env.db.Model(&models.Goal{}).Count(&goals).Error)
	require.NoError(t, env.db.Model(&models.GoalProgress{}).Count(&weeks).Error)
	assert.Zero(t, goals)
	assert.Zero(t, weeks)
}

func TestGoalHandler_SuggestWithoutAI(t *testing.T) {
	env := setupHandlerTestEnv(t)
	handler := NewGoalHandler(env.goals)

	c, w := testContext(http.MethodPost, "/goals/suggest", map[string]string{"title": "Learn Go"}, "user-1")
	handler.SuggestSmartFields(c)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestGoalHandler_BatchOnEmptyGoal(t *testing.T) {
	env := setupHandlerTestEnv(t)
	handler := NewGoalHandler(env.goals)
	user := env.register(t, "alice")

	goal := &models.Goal{
		UserID:        user.ID,
		Title:         "Meditate",
		StartDate:     testNow,
		EndDate:       testNow.AddDate(0, 0, 84),
		CycleDuration: 12,
	}
	require.NoError(t, env.db.Create(goal).Error)

	c, w := env.goalContext(t, http.MethodPost, "/goals/"+goal.ID+"/progress/batch", map[string]interface{}{
		"weekProgress": map[string]interface{}{
			"1": map[string]interface{}{"achieved": true, "notes": "done"},
			"2": map[string]interface{}{"achieved": false},
		},
	}, user.ID, goal.ID)
	handler.BatchUpdateProgress(c)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var rows []models.GoalProgress
	require.NoError(t, env.db.Where("goal_id = ?", goal.ID).Order("week_number").Find(&rows).Error)
	require.Len(t, rows, 2)
	assert.True(t, rows[0].Achieved)
	assert.Equal(t, 1, rows[0].CompletedAmount)
	assert.Equal(t, 1, rows[0].TargetAmount)
	require.NotNil(t, rows[0].Notes)
	assert.Equal(t, "done", *rows[0].Notes)
	assert.False(t, rows[1].Achieved)
	assert.Equal(t, 0, rows[1].CompletedAmount)
}

func TestGoalHandler_BatchRejectsBadWeeks(t *testing.T) {
	env := setupHandlerTestEnv(t)
	handler := NewGoalHandler(env.goals)
	user := env.register(t, "alice")
	goal := env.createGoal(t, handler, user.ID, 4, 1)

	tests := []struct {
		name  string
		weeks map[string]interface{}
	}{
		{"not a number", map[string]interface{}{"first": map[string]bool{"achieved": true}}},
		{"outside cycle", map[string]interface{}{"1": map[string]bool{"achieved": true}, "5": map[string]bool{"achieved": true}}},
		{"empty", map[string]interface{}{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := env.goalContext(t, http.MethodPost, "/goals/"+goal.ID+"/progress/batch", map[string]interface{}{
				"weekProgress": tt.weeks,
			}, user.ID, goal.ID)
			handler.BatchUpdateProgress(c)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}

	// Nothing was written for the valid week in the rejected batch.
	var achieved int64
	require.NoError(t, env.db.Model(&models.GoalProgress{}).Where("goal_id = ? AND achieved = ?", goal.ID, true).Count(&achieved).Error)
	assert.Zero(t, achieved)
}

func TestGoalHandler_SaveWeek(t *testing.T) {
	env := setupHandlerTestEnv(t)
	handler := NewGoalHandler(env.goals)
	user := env.register(t, "alice")

	goal := &models.Goal{
		UserID:        user.ID,
		Title:         "Stretch",
		StartDate:     testNow,
		EndDate:       testNow.AddDate(0, 0, 28),
		CycleDuration: 4,
	}
	require.NoError(t, env.db.Create(goal).Error)

	save := func(body map[string]interface{}) (int, dto.GoalProgressDTO) {
		c, w := env.goalContext(t, http.MethodPost, "/goals/"+goal.ID+"/progress/week", body, user.ID, goal.ID)
		handler.SaveWeek(c)
		var progress dto.GoalProgressDTO
		if w.Code < 300 {
			decode(t, w, &progress)
		}
		return w.Code, progress
	}

	status, created := save(map[string]interface{}{"weekNumber": 2, "achieved": false, "completedAmount": 1})
	assert.Equal(t, http.StatusCreated, status)
	assert.Equal(t, constants.DefaultWeekTarget, created.TargetAmount)
	assert.Equal(t, 1, created.CompletedAmount)

	status, updated := save(map[string]interface{}{"weekNumber": 2, "achieved": true})
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, created.ID, updated.ID)
	assert.True(t, updated.Achieved)
	assert.Equal(t, 1, updated.CompletedAmount)

	status, _ = save(map[string]interface{}{"weekNumber": 9, "achieved": true})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestGoalHandler_WeekLookups(t *testing.T) {
	env := setupHandlerTestEnv(t)
	handler := NewGoalHandler(env.goals)
	user := env.register(t, "alice")
	goal := env.createGoal(t, handler, user.ID, 4, 2)

	tests := []struct {
		week   string
		status int
	}{
		{"3", http.StatusOK},
		{"abc", http.StatusBadRequest},
		{"9", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.week, func(t *testing.T) {
			c, w := env.goalContext(t, http.MethodGet, fmt.Sprintf("/goals/%s/progress/week/%s", goal.ID, tt.week), nil,
				user.ID, goal.ID, gin.Param{Key: "weekNumber", Value: tt.week})
			handler.GetWeek(c)
			assert.Equal(t, tt.status, w.Code)
		})
	}

	c, w := env.goalContext(t, http.MethodPut, "/goals/"+goal.ID+"/progress/week/3", map[string]interface{}{
		"completedAmount": 2,
		"feedback":        "Good week",
	}, user.ID, goal.ID, gin.Param{Key: "weekNumber", Value: "3"})
	handler.UpdateWeek(c)
	require.Equal(t, http.StatusOK, w.Code)

	var progress dto.GoalProgressDTO
	decode(t, w, &progress)
	assert.Equal(t, 2, progress.CompletedAmount)
	require.NotNil(t, progress.Feedback)
	assert.Equal(t, "Good week", *progress.Feedback)

	c, w = env.goalContext(t, http.MethodGet, "/goals/"+goal.ID+"/progress", nil, user.ID, goal.ID)
	handler.ListProgress(c)
	require.Equal(t, http.StatusOK, w.Code)

	var list dto.ProgressListResponse
	decode(t, w, &list)
	assert.Len(t, list.Weeks, 4)
}

func TestGoalHandler_WeekMissingRow(t *testing.T) {
	env := setupHandlerTestEnv(t)
	handler := NewGoalHandler(env.goals)
	user := env.register(t, "alice")

	goal := &models.Goal{
		UserID:        user.ID,
		Title:         "Journal",
		StartDate:     testNow,
		EndDate:       testNow.AddDate(0, 0, 28),
		CycleDuration: 4,
	}
	require.NoError(t, env.db.Create(goal).Error)

	c, w := env.goalContext(t, http.MethodGet, "/goals/"+goal.ID+"/progress/week/1", nil,
		user.ID, goal.ID, gin.Param{Key: "weekNumber", Value: "1"})
	handler.GetWeek(c)
	assert.Equal(t, http.StatusNotFound, w.Code)

	c, w = env.goalContext(t, http.MethodPut, "/goals/"+goal.ID+"/progress/week/1", map[string]interface{}{
		"achieved": true,
	}, user.ID, goal.ID, gin.Param{Key: "weekNumber", Value: "1"})
	handler.UpdateWeek(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
