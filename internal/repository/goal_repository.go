package repository

import (
	"fmt"

	"github.com/Rahnken/ReframeMe-backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormGoalRepository is a GORM implementation of GoalRepository
type GormGoalRepository struct {
	db *gorm.DB
}

// NewGoalRepository creates a new GoalRepository
func NewGoalRepository(db *gorm.DB) GoalRepository {
	return &GormGoalRepository{db: db}
}

func orderByWeek(db *gorm.DB) *gorm.DB {
	return db.Order("week_number ASC")
}

func sharedGoalRows(goalID string, groupIDs []string) []models.SharedGoal {
	rows := make([]models.SharedGoal, len(groupIDs))
	for i, groupID := range groupIDs {
		rows[i] = models.SharedGoal{GoalID: goalID, GroupID: groupID}
	}
	return rows
}

// Create creates a goal with its weeks and shared links in one transaction
func (r *GormGoalRepository) Create(goal *models.Goal, sharedGroupIDs []string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(goal).Error; err != nil {
			return fmt.Errorf("create goal: %w", err)
		}

		if len(goal.GoalWeeks) > 0 {
			for i := range goal.GoalWeeks {
				goal.GoalWeeks[i].GoalID = goal.ID
			}
			if err := tx.CreateInBatches(&goal.GoalWeeks, 100).Error; err != nil {
				return fmt.Errorf("create goal weeks: %w", err)
			}
		}

		goal.SharedGoals = sharedGoalRows(goal.ID, sharedGroupIDs)
		if len(goal.SharedGoals) > 0 {
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&goal.SharedGoals).Error; err != nil {
				return fmt.Errorf("share goal: %w", err)
			}
		}

		return nil
	})
}

// FindByID finds a goal by ID with optional preloading. GoalWeeks are ordered by week.
func (r *GormGoalRepository) FindByID(id string, preload ...string) (*models.Goal, error) {
	var goal models.Goal
	query := r.db
	for _, p := range preload {
		if p == "GoalWeeks" {
			query = query.Preload(p, orderByWeek)
			continue
		}
		query = query.Preload(p)
	}

	if err := query.Where("id = ?", id).First(&goal).Error; err != nil {
		return nil, err
	}
	return &goal, nil
}

// ListByUser lists a user's goals with ordered weeks and shared links
func (r *GormGoalRepository) ListByUser(userID string) ([]models.Goal, error) {
	var goals []models.Goal
	err := r.db.
		Preload("GoalWeeks", orderByWeek).
		Preload("SharedGoals").
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&goals).Error
	if err != nil {
		return nil, err
	}
	return goals, nil
}

// Update applies sharing, progress and field changes atomically
func (r *GormGoalRepository) Update(goalID string, update GoalUpdate) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if len(update.UnshareGroupIDs) > 0 {
			if err := tx.Where("goal_id = ? AND group_id IN ?", goalID, update.UnshareGroupIDs).
				Delete(&models.SharedGoal{}).Error; err != nil {
				return fmt.Errorf("unshare goal: %w", err)
			}
		}

		if len(update.ShareGroupIDs) > 0 {
			rows := sharedGoalRows(goalID, update.ShareGroupIDs)
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error; err != nil {
				return fmt.Errorf("share goal: %w", err)
			}
		}

		if update.DeleteAboveWeek != nil {
			if err := tx.Where("goal_id = ? AND week_number > ?", goalID, *update.DeleteAboveWeek).
				Delete(&models.GoalProgress{}).Error; err != nil {
				return fmt.Errorf("delete weeks: %w", err)
			}
		}

		if len(update.AddWeeks) > 0 {
			for i := range update.AddWeeks {
				update.AddWeeks[i].GoalID = goalID
			}
			if err := tx.Create(&update.AddWeeks).Error; err != nil {
				return fmt.Errorf("add weeks: %w", err)
			}
		}

		if update.TargetAmount != nil {
			if err := tx.Model(&models.GoalProgress{}).Where("goal_id = ?", goalID).
				Update("target_amount", *update.TargetAmount).Error; err != nil {
				return fmt.Errorf("update week targets: %w", err)
			}
		}

		if len(update.Fields) > 0 {
			if err := tx.Model(&models.Goal{}).Where("id = ?", goalID).Updates(update.Fields).Error; err != nil {
				return fmt.Errorf("update goal: %w", err)
			}
		}

		return nil
	})
}

// Delete removes shared links, progress rows and the goal atomically
func (r *GormGoalRepository) Delete(id string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("goal_id = ?", id).Delete(&models.SharedGoal{}).Error; err != nil {
			return err
		}

		if err := tx.Where("goal_id = ?", id).Delete(&models.GoalProgress{}).Error; err != nil {
			return err
		}

		result := tx.Where("id = ?", id).Delete(&models.Goal{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}

		return nil
	})
}

// SharedGroupIDs lists the groups a goal is shared with
func (r *GormGoalRepository) SharedGroupIDs(goalID string) ([]string, error) {
	var ids []string
	err := r.db.Model(&models.SharedGoal{}).
		Where("goal_id = ?", goalID).
		Order("created_at ASC").
		Pluck("group_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// IsVisibleToMember reports whether the goal is shared with a group the user belongs to
func (r *GormGoalRepository) IsVisibleToMember(goalID, userID string) (bool, error) {
	var count int64
	err := r.db.Model(&models.SharedGoal{}).
		Joins("JOIN group_users ON group_users.group_id = shared_goals.group_id").
		Where("shared_goals.goal_id = ? AND group_users.user_id = ?", goalID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListProgress returns every week of a goal ordered by week number
func (r *GormGoalRepository) ListProgress(goalID string) ([]models.GoalProgress, error) {
	var weeks []models.GoalProgress
	if err := r.db.Scopes(orderByWeek).Where("goal_id = ?", goalID).Find(&weeks).Error; err != nil {
		return nil, err
	}
	return weeks, nil
}

// FindProgress finds a single week
func (r *GormGoalRepository) FindProgress(goalID string, weekNumber int) (*models.GoalProgress, error) {
	var progress models.GoalProgress
	err := r.db.Where("goal_id = ? AND week_number = ?", goalID, weekNumber).First(&progress).Error
	if err != nil {
		return nil, err
	}
	return &progress, nil
}

// CreateProgress inserts a single week
func (r *GormGoalRepository) CreateProgress(progress *models.GoalProgress) error {
	return r.db.Create(progress).Error
}

// SaveProgress persists changes to an existing week
func (r *GormGoalRepository) SaveProgress(progress *models.GoalProgress) error {
	return r.db.Save(progress).Error
}

// UpsertProgress inserts or updates weeks keyed on (goal_id, week_number) in one
// transaction. Existing rows only have achieved, and notes when given, overwritten.
func (r *GormGoalRepository) UpsertProgress(goalID string, rows []models.GoalProgress) ([]models.GoalProgress, error) {
	weekNumbers := make([]int, len(rows))

	err := r.db.Transaction(func(tx *gorm.DB) error {
		for i := range rows {
			row := rows[i]
			row.GoalID = goalID
			weekNumbers[i] = row.WeekNumber

			updates := []string{"achieved", "updated_at"}
			if row.Notes != nil {
				updates = append(updates, "notes")
			}

			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "goal_id"}, {Name: "week_number"}},
				DoUpdates: clause.AssignmentColumns(updates),
			}).Create(&row).Error
			if err != nil {
				return fmt.Errorf("upsert week %d: %w", row.WeekNumber, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	var saved []models.GoalProgress
	if len(weekNumbers) == 0 {
		return saved, nil
	}
	err = r.db.Scopes(orderByWeek).
		Where("goal_id = ? AND week_number IN ?", goalID, weekNumbers).
		Find(&saved).Error
	if err != nil {
		return nil, err
	}
	return saved, nil
}
