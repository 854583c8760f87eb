package constants

const (
	// ContextKeyUser holds the authenticated *models.User in the gin context.
	ContextKeyUser = "user"
	// ContextKeyUserID holds the authenticated user's ID in the gin context.
	ContextKeyUserID = "user_id"
	ContextKeyGoal   = "goal"
	ContextKeyGroup  = "group"
	// ContextKeyGroupMember holds the caller's GroupUser row for the group in the URL.
	ContextKeyGroupMember = "group_member"

	BearerPrefix = "Bearer "

	MinPasswordLength = 6

	// DefaultCycleDuration is the number of weeks used when a goal does not specify one.
	DefaultCycleDuration = 12
	MaxCycleDuration     = 104

	// DefaultWeekTarget is the target amount for progress rows created outside the schedule.
	DefaultWeekTarget = 1

	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100

	ResetTokenBytes = 32
)
