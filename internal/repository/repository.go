package repository

import (
	"errors"
	"time"

	"github.com/Rahnken/ReframeMe-backend/internal/models"
	"github.com/Rahnken/ReframeMe-backend/internal/utils"
)

// ErrNotFound is returned by update and delete methods when no row matched.
var ErrNotFound = errors.New("repository: record not found")

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a user together with an empty profile and default settings
	Create(user *models.User) error

	// FindByID finds a user by ID
	FindByID(id string) (*models.User, error)

	// FindByUsername finds a user by username
	FindByUsername(username string) (*models.User, error)

	// FindByEmail finds a user by email
	FindByEmail(email string) (*models.User, error)

	// FindByIdentifiers returns the users whose ID or email is in identifiers
	FindByIdentifiers(identifiers []string) ([]models.User, error)

	// FindProfile loads a user's profile with its settings
	FindProfile(userID string) (*models.UserProfile, error)

	// UpdateProfile saves profile fields and settings in one transaction
	UpdateProfile(profile *models.UserProfile) error

	// UpdateFields updates the given columns of a user
	UpdateFields(userID string, fields map[string]interface{}) error
}

// GoalUpdate describes every change applied by an edit in a single transaction.
type GoalUpdate struct {
	Fields map[string]interface{}

	// Progress changes
	AddWeeks        []models.GoalProgress
	DeleteAboveWeek *int
	TargetAmount    *int

	// Sharing changes
	ShareGroupIDs   []string
	UnshareGroupIDs []string
}

// GoalRepository defines the interface for goal and goal progress data access
type GoalRepository interface {
	// Create creates a goal with its weeks and shared links in one transaction
	Create(goal *models.Goal, sharedGroupIDs []string) error

	// FindByID finds a goal by ID with optional preloading
	FindByID(id string, preload ...string) (*models.Goal, error)

	// ListByUser lists a user's goals with ordered weeks and shared links
	ListByUser(userID string) ([]models.Goal, error)

	// Update applies a GoalUpdate atomically
	Update(goalID string, update GoalUpdate) error

	// Delete removes shared links, progress rows and the goal atomically
	Delete(id string) error

	// SharedGroupIDs lists the groups a goal is shared with
	SharedGroupIDs(goalID string) ([]string, error)

	// IsVisibleToMember reports whether the goal is shared with a group the user belongs to
	IsVisibleToMember(goalID, userID string) (bool, error)

	// ListProgress returns every week of a goal ordered by week number
	ListProgress(goalID string) ([]models.GoalProgress, error)

	// FindProgress finds a single week
	FindProgress(goalID string, weekNumber int) (*models.GoalProgress, error)

	// CreateProgress inserts a single week
	CreateProgress(progress *models.GoalProgress) error

	// SaveProgress persists changes to an existing week
	SaveProgress(progress *models.GoalProgress) error

	// UpsertProgress inserts or updates weeks keyed on (goal_id, week_number) in one transaction
	UpsertProgress(goalID string, rows []models.GoalProgress) ([]models.GoalProgress, error)
}

// GroupRepository defines the interface for group data access
type GroupRepository interface {
	// Create creates a group and its first admin
	Create(group *models.Group, adminID string, now time.Time) error

	// FindByID finds a group by ID with optional preloading
	FindByID(id string, preload ...string) (*models.Group, error)

	// ListByUser lists the groups a user belongs to with members and shared goals
	ListByUser(userID string) ([]models.Group, error)

	// UpdateFields updates the given columns of a group
	UpdateFields(groupID string, fields map[string]interface{}) error

	// Delete removes shared links, memberships and the group atomically
	Delete(id string) error

	// FindMember finds a specific membership
	FindMember(groupID, userID string) (*models.GroupUser, error)

	// ListMembers lists the memberships of a group with their users
	ListMembers(groupID string) ([]models.GroupUser, error)

	// MemberGroupIDs filters groupIDs to the ones userID belongs to
	MemberGroupIDs(userID string, groupIDs []string) ([]string, error)

	// CountAdmins counts the admins of a group
	CountAdmins(groupID string) (int64, error)

	// ApplyMembership applies a membership change and its notifications atomically
	ApplyMembership(groupID string, change MembershipChange) error
}

// MembershipChange is one batch of membership writes. Removals run before
// additions and role changes.
type MembershipChange struct {
	Remove        []string
	Add           []models.GroupUser
	SetRoles      map[string]models.GroupRole
	Notifications []models.Notification
}

// NotificationRepository defines the interface for notification data access
type NotificationRepository interface {
	// ListByUser lists a user's notifications newest first
	ListByUser(userID string, params utils.PaginationParams) ([]models.Notification, int64, error)

	// MarkRead marks one of the user's notifications as read
	MarkRead(userID, notificationID string) (*models.Notification, error)

	// MarkAllRead marks every unread notification of the user as read
	MarkAllRead(userID string) (int64, error)
}

// PasswordResetRepository defines the interface for password reset token data access
type PasswordResetRepository interface {
	// Replace deletes the user's unused tokens and stores a new one
	Replace(token *models.PasswordResetToken) error

	// FindByToken finds a token by its value
	FindByToken(token string) (*models.PasswordResetToken, error)

	// Consume updates the user's password and marks the token used atomically
	Consume(tokenID, userID, hashedPassword string) error

	// CountByUser counts all tokens issued to a user
	CountByUser(userID string) (int64, error)
}
