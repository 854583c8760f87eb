package repository

import (
	"fmt"
	"time"

	"github.com/Rahnken/ReframeMe-backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormGroupRepository is a GORM implementation of GroupRepository
type GormGroupRepository struct {
	db *gorm.DB
}

// NewGroupRepository creates a new GroupRepository
func NewGroupRepository(db *gorm.DB) GroupRepository {
	return &GormGroupRepository{db: db}
}

// Create creates a group and its first admin in one transaction
func (r *GormGroupRepository) Create(group *models.Group, adminID string, now time.Time) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(group).Error; err != nil {
			return fmt.Errorf("create group: %w", err)
		}

		admin := models.GroupUser{
			GroupID:  group.ID,
			UserID:   adminID,
			Role:     models.RoleAdmin,
			JoinedAt: now,
		}
		if err := tx.Omit(clause.Associations).Create(&admin).Error; err != nil {
			return fmt.Errorf("create group admin: %w", err)
		}

		group.Users = []models.GroupUser{admin}
		return nil
	})
}

// FindByID finds a group by ID with optional preloading
func (r *GormGroupRepository) FindByID(id string, preload ...string) (*models.Group, error) {
	var group models.Group
	query := r.db
	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.Where("id = ?", id).First(&group).Error; err != nil {
		return nil, err
	}
	return &group, nil
}

// ListByUser lists the groups a user belongs to with members and shared goals
func (r *GormGroupRepository) ListByUser(userID string) ([]models.Group, error) {
	memberOf := r.db.Model(&models.GroupUser{}).Select("group_id").Where("user_id = ?", userID)

	var groups []models.Group
	err := r.db.
		Preload("Users.User").
		Preload("SharedGoals").
		Where("id IN (?)", memberOf).
		Order("created_at ASC").
		Find(&groups).Error
	if err != nil {
		return nil, err
	}
	return groups, nil
}

// UpdateFields updates the given columns of a group
func (r *GormGroupRepository) UpdateFields(groupID string, fields map[string]interface{}) error {
	return r.db.Model(&models.Group{}).Where("id = ?", groupID).Updates(fields).Error
}

// Delete removes shared links, memberships and the group atomically
func (r *GormGroupRepository) Delete(id string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("group_id = ?", id).Delete(&models.SharedGoal{}).Error; err != nil {
			return err
		}

		if err := tx.Where("group_id = ?", id).Delete(&models.GroupUser{}).Error; err != nil {
			return err
		}

		result := tx.Where("id = ?", id).Delete(&models.Group{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}

		return nil
	})
}

// FindMember finds a specific membership
func (r *GormGroupRepository) FindMember(groupID, userID string) (*models.GroupUser, error) {
	var member models.GroupUser
	if err := r.db.Where("group_id = ? AND user_id = ?", groupID, userID).First(&member).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

// ListMembers lists the memberships of a group with their users
func (r *GormGroupRepository) ListMembers(groupID string) ([]models.GroupUser, error) {
	var members []models.GroupUser
	err := r.db.Preload("User").
		Where("group_id = ?", groupID).
		Order("joined_at ASC").
		Find(&members).Error
	if err != nil {
		return nil, err
	}
	return members, nil
}

// MemberGroupIDs filters groupIDs to the ones userID belongs to
func (r *GormGroupRepository) MemberGroupIDs(userID string, groupIDs []string) ([]string, error) {
	var ids []string
	if len(groupIDs) == 0 {
		return ids, nil
	}
	err := r.db.Model(&models.GroupUser{}).
		Where("user_id = ? AND group_id IN ?", userID, groupIDs).
		Pluck("group_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// CountAdmins counts the admins of a group
func (r *GormGroupRepository) CountAdmins(groupID string) (int64, error) {
	var count int64
	err := r.db.Model(&models.GroupUser{}).
		Where("group_id = ? AND role = ?", groupID, models.RoleAdmin).
		Count(&count).Error
	return count, err
}

// ApplyMembership applies removals, additions, role changes and notifications atomically
func (r *GormGroupRepository) ApplyMembership(groupID string, change MembershipChange) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if len(change.Remove) > 0 {
			if err := tx.Where("group_id = ? AND user_id IN ?", groupID, change.Remove).
				Delete(&models.GroupUser{}).Error; err != nil {
				return fmt.Errorf("remove members: %w", err)
			}
		}

		if len(change.Add) > 0 {
			for i := range change.Add {
				change.Add[i].GroupID = groupID
			}
			if err := tx.Omit(clause.Associations).Create(&change.Add).Error; err != nil {
				return fmt.Errorf("add members: %w", err)
			}
		}

		for userID, role := range change.SetRoles {
			result := tx.Model(&models.GroupUser{}).
				Where("group_id = ? AND user_id = ?", groupID, userID).
				Update("role", role)
			if result.Error != nil {
				return fmt.Errorf("set role: %w", result.Error)
			}
			if result.RowsAffected == 0 {
				return ErrNotFound
			}
		}

		if len(change.Notifications) > 0 {
			if err := tx.Create(&change.Notifications).Error; err != nil {
				return fmt.Errorf("create notifications: %w", err)
			}
		}

		return nil
	})
}
