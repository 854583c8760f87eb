package dto

import (
	"time"

	"github.com/Rahnken/ReframeMe-backend/internal/models"
	"github.com/Rahnken/ReframeMe-backend/internal/services"
)

// GroupMemberDTO represents a group membership in API responses
type GroupMemberDTO struct {
	UserID   string           `json:"user_id"`
	Role     models.GroupRole `json:"role"`
	JoinedAt time.Time        `json:"joinedAt"`
	User     *MemberUserDTO   `json:"user,omitempty"`
}

// GroupDTO represents a group in API responses
type GroupDTO struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Users       []GroupMemberDTO `json:"users"`
	SharedGoals []SharedGoalDTO  `json:"sharedGoals"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

// MembershipResultDTO reports the outcome of a member set reconcile
type MembershipResultDTO struct {
	Added      []string         `json:"added"`
	Removed    []string         `json:"removed"`
	Unresolved []string         `json:"unresolved"`
	Members    []GroupMemberDTO `json:"members"`
}

// Conversion functions

// ToGroupMemberDTO converts a GroupUser model to GroupMemberDTO
func ToGroupMemberDTO(member models.GroupUser) GroupMemberDTO {
	dto := GroupMemberDTO{
		UserID:   member.UserID,
		Role:     member.Role,
		JoinedAt: member.JoinedAt,
	}

	// Include user if preloaded
	if member.User.ID != "" {
		user := ToMemberUserDTO(member.User)
		dto.User = &user
	}
	return dto
}

// ToGroupMemberDTOs converts a slice of memberships
func ToGroupMemberDTOs(members []models.GroupUser) []GroupMemberDTO {
	items := make([]GroupMemberDTO, len(members))
	for i, member := range members {
		items[i] = ToGroupMemberDTO(member)
	}
	return items
}

// ToGroupDTO converts a Group model to GroupDTO
func ToGroupDTO(group models.Group) GroupDTO {
	dto := GroupDTO{
		ID:          group.ID,
		Name:        group.Name,
		Description: group.Description,
		Users:       ToGroupMemberDTOs(group.Users),
		SharedGoals: make([]SharedGoalDTO, len(group.SharedGoals)),
		CreatedAt:   group.CreatedAt,
		UpdatedAt:   group.UpdatedAt,
	}
	for i, shared := range group.SharedGoals {
		dto.SharedGoals[i] = SharedGoalDTO{GoalID: shared.GoalID, GroupID: shared.GroupID}
	}
	return dto
}

// ToGroupDTOs converts a slice of groups
func ToGroupDTOs(groups []models.Group) []GroupDTO {
	items := make([]GroupDTO, len(groups))
	for i, group := range groups {
		items[i] = ToGroupDTO(group)
	}
	return items
}

// ToMembershipResultDTO converts a reconcile result
func ToMembershipResultDTO(result services.MembershipResult) MembershipResultDTO {
	return MembershipResultDTO{
		Added:      nonNil(result.Added),
		Removed:    nonNil(result.Removed),
		Unresolved: nonNil(result.Unresolved),
		Members:    ToGroupMemberDTOs(result.Members),
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
