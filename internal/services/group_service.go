package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Rahnken/ReframeMe-backend/internal/models"
	"github.com/Rahnken/ReframeMe-backend/internal/repository"
	"github.com/Rahnken/ReframeMe-backend/internal/utils"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrGroupNotFound      = errors.New("group not found")
	ErrGroupNameRequired  = errors.New("group name is required")
	ErrNotGroupAdmin      = errors.New("only group admins can perform this action")
	ErrInvalidRole        = errors.New("role must be ADMIN or MEMBER")
	ErrNoUsersProvided    = errors.New("at least one user is required")
	ErrAlreadyMember      = errors.New("user is already a member of the group")
	ErrMemberNotFound     = errors.New("user is not a member of the group")
	ErrLastAdmin          = errors.New("a group must keep at least one admin")
	ErrMemberUserNotFound = errors.New("one or more users do not exist")
)

// GroupService handles group and membership business logic
type GroupService struct {
	groupRepo repository.GroupRepository
	userRepo  repository.UserRepository
	now       func() time.Time
}

// NewGroupService creates a new GroupService. now defaults to time.Now.
func NewGroupService(groupRepo repository.GroupRepository, userRepo repository.UserRepository, now func() time.Time) *GroupService {
	if now == nil {
		now = time.Now
	}
	return &GroupService{
		groupRepo: groupRepo,
		userRepo:  userRepo,
		now:       now,
	}
}

// MemberInput is a user to add to a group with a role
type MemberInput struct {
	UserID string
	Role   models.GroupRole
}

// MembershipResult reports the outcome of replacing a group's member set.
type MembershipResult struct {
	Added      []string
	Removed    []string
	Unresolved []string
	Members    []models.GroupUser
}

// CreateGroup creates a group with the creator as its admin
func (s *GroupService) CreateGroup(userID, name, description string) (*models.Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrGroupNameRequired
	}

	group := &models.Group{Name: name, Description: description}
	if err := s.groupRepo.Create(group, userID, s.now()); err != nil {
		return nil, fmt.Errorf("failed to create group: %w", err)
	}
	return group, nil
}

// ListGroups returns the groups the user belongs to
func (s *GroupService) ListGroups(userID string) ([]models.Group, error) {
	groups, err := s.groupRepo.ListByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	return groups, nil
}

// GetGroup returns a group with its members and shared goals
func (s *GroupService) GetGroup(groupID string) (*models.Group, error) {
	group, err := s.groupRepo.FindByID(groupID, "Users.User", "SharedGoals")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, fmt.Errorf("failed to find group: %w", err)
	}
	return group, nil
}

// Authorize loads a group and the caller's membership. Non-members get
// ErrGroupNotFound; members without the admin role get ErrNotGroupAdmin when adminOnly.
func (s *GroupService) Authorize(groupID, userID string, adminOnly bool) (*models.Group, *models.GroupUser, error) {
	group, err := s.groupRepo.FindByID(groupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrGroupNotFound
		}
		return nil, nil, fmt.Errorf("failed to find group: %w", err)
	}

	member, err := s.groupRepo.FindMember(groupID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrGroupNotFound
		}
		return nil, nil, fmt.Errorf("failed to find membership: %w", err)
	}

	if adminOnly && member.Role != models.RoleAdmin {
		return nil, nil, ErrNotGroupAdmin
	}
	return group, member, nil
}

// UpdateGroup changes a group's name and description
func (s *GroupService) UpdateGroup(groupID string, name, description *string) (*models.Group, error) {
	fields := map[string]interface{}{}
	if name != nil {
		trimmed := strings.TrimSpace(*name)
		if trimmed == "" {
			return nil, ErrGroupNameRequired
		}
		fields["name"] = trimmed
	}
	if description != nil {
		fields["description"] = *description
	}

	if len(fields) > 0 {
		if err := s.groupRepo.UpdateFields(groupID, fields); err != nil {
			return nil, fmt.Errorf("failed to update group: %w", err)
		}
	}
	return s.GetGroup(groupID)
}

// DeleteGroup removes a group with its memberships and shared links
func (s *GroupService) DeleteGroup(groupID string) error {
	if err := s.groupRepo.Delete(groupID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrGroupNotFound
		}
		return fmt.Errorf("failed to delete group: %w", err)
	}
	return nil
}

func (s *GroupService) notification(userID string, kind models.NotificationType, group *models.Group, actorID string, role models.GroupRole) models.Notification {
	var title, message string
	switch kind {
	case models.NotificationGroupAdded:
		title = "Added to group"
		message = fmt.Sprintf("You were added to %s as %s", group.Name, strings.ToLower(string(role)))
	case models.NotificationGroupRemoved:
		title = "Removed from group"
		message = fmt.Sprintf("You were removed from %s", group.Name)
	case models.NotificationGroupRoleChanged:
		title = "Group role changed"
		message = fmt.Sprintf("Your role in %s is now %s", group.Name, strings.ToLower(string(role)))
	}

	data := datatypes.JSONMap{
		"groupId":   group.ID,
		"groupName": group.Name,
		"actorId":   actorID,
	}
	if role != "" {
		data["role"] = string(role)
	}

	return models.Notification{
		UserID:  userID,
		Type:    kind,
		Title:   title,
		Message: message,
		Data:    data,
	}
}

func (s *GroupService) applyMembership(groupID string, change repository.MembershipChange) error {
	if err := s.groupRepo.ApplyMembership(groupID, change); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return ErrMemberNotFound
		case errors.Is(err, gorm.ErrDuplicatedKey):
			return ErrAlreadyMember
		default:
			return fmt.Errorf("failed to update members: %w", err)
		}
	}
	return nil
}

// AddMembers adds existing users to a group with the given roles
func (s *GroupService) AddMembers(group *models.Group, actorID string, inputs []MemberInput) ([]models.GroupUser, error) {
	if len(inputs) == 0 {
		return nil, ErrNoUsersProvided
	}

	roles := make(map[string]models.GroupRole, len(inputs))
	ids := make([]string, 0, len(inputs))
	for _, input := range inputs {
		role := input.Role
		if role == "" {
			role = models.RoleMember
		}
		if !role.Valid() {
			return nil, ErrInvalidRole
		}
		if _, seen := roles[input.UserID]; !seen {
			ids = append(ids, input.UserID)
		}
		roles[input.UserID] = role
	}

	users, err := s.userRepo.FindByIdentifiers(ids)
	if err != nil {
		return nil, fmt.Errorf("failed to find users: %w", err)
	}
	found := make(map[string]struct{}, len(users))
	for _, u := range users {
		found[u.ID] = struct{}{}
	}
	for _, id := range ids {
		if _, ok := found[id]; !ok {
			return nil, ErrMemberUserNotFound
		}
	}

	current, err := s.groupRepo.ListMembers(group.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	for _, m := range current {
		if _, ok := roles[m.UserID]; ok {
			return nil, ErrAlreadyMember
		}
	}

	now := s.now()
	change := repository.MembershipChange{}
	for _, id := range ids {
		change.Add = append(change.Add, models.GroupUser{UserID: id, Role: roles[id], JoinedAt: now})
		change.Notifications = append(change.Notifications, s.notification(id, models.NotificationGroupAdded, group, actorID, roles[id]))
	}

	if err := s.applyMembership(group.ID, change); err != nil {
		return nil, err
	}
	return s.listMembers(group.ID)
}

func (s *GroupService) listMembers(groupID string) ([]models.GroupUser, error) {
	members, err := s.groupRepo.ListMembers(groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	return members, nil
}

// SetRole changes a member's role. The last admin cannot be demoted.
func (s *GroupService) SetRole(group *models.Group, actorID, userID string, role models.GroupRole) (*models.GroupUser, error) {
	if !role.Valid() {
		return nil, ErrInvalidRole
	}

	member, err := s.groupRepo.FindMember(group.ID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, fmt.Errorf("failed to find membership: %w", err)
	}

	if member.Role == role {
		return member, nil
	}

	if member.Role == models.RoleAdmin {
		admins, err := s.groupRepo.CountAdmins(group.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to count admins: %w", err)
		}
		if admins <= 1 {
			return nil, ErrLastAdmin
		}
	}

	change := repository.MembershipChange{
		SetRoles:      map[string]models.GroupRole{userID: role},
		Notifications: []models.Notification{s.notification(userID, models.NotificationGroupRoleChanged, group, actorID, role)},
	}
	if err := s.applyMembership(group.ID, change); err != nil {
		return nil, err
	}

	member.Role = role
	return member, nil
}

// RemoveMember removes userID from the group. Admins may remove anyone and
// members may remove themselves. The last admin cannot be removed.
func (s *GroupService) RemoveMember(group *models.Group, actor *models.GroupUser, userID string) error {
	if actor.Role != models.RoleAdmin && actor.UserID != userID {
		return ErrNotGroupAdmin
	}

	member, err := s.groupRepo.FindMember(group.ID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMemberNotFound
		}
		return fmt.Errorf("failed to find membership: %w", err)
	}

	if member.Role == models.RoleAdmin {
		admins, err := s.groupRepo.CountAdmins(group.ID)
		if err != nil {
			return fmt.Errorf("failed to count admins: %w", err)
		}
		if admins <= 1 {
			return ErrLastAdmin
		}
	}

	change := repository.MembershipChange{Remove: []string{userID}}
	if actor.UserID != userID {
		change.Notifications = []models.Notification{s.notification(userID, models.NotificationGroupRemoved, group, actor.UserID, "")}
	}
	return s.applyMembership(group.ID, change)
}

// SetMembers replaces the group's member set with the users named by
// identifiers (user IDs or emails). Removals are applied before additions in a
// single transaction, new members join as MEMBER, and identifiers that match no
// user are returned in Unresolved. Re-applying the same identifiers writes nothing.
func (s *GroupService) SetMembers(group *models.Group, actorID string, identifiers []string) (*MembershipResult, error) {
	normalized := make([]string, 0, len(identifiers))
	for _, identifier := range identifiers {
		if identifier = strings.ToLower(strings.TrimSpace(identifier)); identifier != "" {
			normalized = append(normalized, identifier)
		}
	}
	normalized = utils.Unique(normalized)

	users, err := s.userRepo.FindByIdentifiers(normalized)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve users: %w", err)
	}
	byIdentifier := make(map[string]string, len(users)*2)
	for _, u := range users {
		byIdentifier[u.ID] = u.ID
		byIdentifier[strings.ToLower(u.Email)] = u.ID
	}

	target := make([]string, 0, len(normalized))
	unresolved := make([]string, 0)
	for _, identifier := range normalized {
		if id, ok := byIdentifier[identifier]; ok {
			target = append(target, id)
		} else {
			unresolved = append(unresolved, identifier)
		}
	}
	target = utils.Unique(target)

	current, err := s.groupRepo.ListMembers(group.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	currentIDs := make([]string, len(current))
	roles := make(map[string]models.GroupRole, len(current))
	for i, m := range current {
		currentIDs[i] = m.UserID
		roles[m.UserID] = m.Role
	}

	toAdd, toRemove := utils.DiffSets(currentIDs, target)

	result := &MembershipResult{Added: toAdd, Removed: toRemove, Unresolved: unresolved}
	if len(toAdd) == 0 && len(toRemove) == 0 {
		result.Members = current
		return result, nil
	}

	removing := make(map[string]struct{}, len(toRemove))
	for _, id := range toRemove {
		removing[id] = struct{}{}
	}
	remainingAdmins := 0
	for _, m := range current {
		if _, gone := removing[m.UserID]; !gone && m.Role == models.RoleAdmin {
			remainingAdmins++
		}
	}
	if remainingAdmins == 0 {
		return nil, ErrLastAdmin
	}

	now := s.now()
	change := repository.MembershipChange{Remove: toRemove}
	for _, id := range toRemove {
		change.Notifications = append(change.Notifications, s.notification(id, models.NotificationGroupRemoved, group, actorID, ""))
	}
	for _, id := range toAdd {
		change.Add = append(change.Add, models.GroupUser{UserID: id, Role: models.RoleMember, JoinedAt: now})
		change.Notifications = append(change.Notifications, s.notification(id, models.NotificationGroupAdded, group, actorID, models.RoleMember))
	}

	if err := s.applyMembership(group.ID, change); err != nil {
		return nil, err
	}

	result.Members, err = s.listMembers(group.ID)
	if err != nil {
		return nil, err
	}
	return result, nil
}
