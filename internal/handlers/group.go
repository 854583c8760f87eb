package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/Rahnken/ReframeMe-backend/internal/dto"
	apierrors "github.com/Rahnken/ReframeMe-backend/internal/errors"
	"github.com/Rahnken/ReframeMe-backend/internal/middleware"
	"github.com/Rahnken/ReframeMe-backend/internal/models"
	"github.com/Rahnken/ReframeMe-backend/internal/services"
	"github.com/gin-gonic/gin"
)

type GroupHandler struct {
	groupService *services.GroupService
}

func NewGroupHandler(groupService *services.GroupService) *GroupHandler {
	return &GroupHandler{
		groupService: groupService,
	}
}

// CreateGroup creates a new group with the current user as admin
func (h *GroupHandler) CreateGroup(c *gin.Context) {
	type CreateGroupRequest struct {
		Name        string `json:"name" binding:"required,min=1,max=255"`
		Description string `json:"description"`
	}

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	var req CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	group, err := h.groupService.CreateGroup(userID, req.Name, req.Description)
	if err != nil {
		respondGroupError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToGroupDTO(*group))
}

// ListGroups returns all groups the user belongs to
func (h *GroupHandler) ListGroups(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	groups, err := h.groupService.ListGroups(userID)
	if err != nil {
		respondGroupError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToGroupDTOs(groups))
}

// GetGroup returns a group with members and shared goals
// Membership is already checked by RequireGroupMember middleware
func (h *GroupHandler) GetGroup(c *gin.Context) {
	group, exists := middleware.GetGroup(c)
	if !exists {
		apierrors.NotFound(c, "Group not found")
		return
	}

	full, err := h.groupService.GetGroup(group.ID)
	if err != nil {
		respondGroupError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToGroupDTO(*full))
}

// UpdateGroup changes the group's name or description
func (h *GroupHandler) UpdateGroup(c *gin.Context) {
	type UpdateGroupRequest struct {
		Name        *string `json:"name" binding:"omitempty,max=255"`
		Description *string `json:"description"`
	}

	group, exists := middleware.GetGroup(c)
	if !exists {
		apierrors.NotFound(c, "Group not found")
		return
	}

	var req UpdateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	updated, err := h.groupService.UpdateGroup(group.ID, req.Name, req.Description)
	if err != nil {
		respondGroupError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToGroupDTO(*updated))
}

// DeleteGroup removes the group, its memberships and sharing links
func (h *GroupHandler) DeleteGroup(c *gin.Context) {
	group, exists := middleware.GetGroup(c)
	if !exists {
		apierrors.NotFound(c, "Group not found")
		return
	}

	if err := h.groupService.DeleteGroup(group.ID); err != nil {
		respondGroupError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Group deleted successfully",
	})
}

// AddMembers adds several existing users to the group
func (h *GroupHandler) AddMembers(c *gin.Context) {
	type MemberRequest struct {
		UserID string           `json:"user_id" binding:"required"`
		Role   models.GroupRole `json:"role"`
	}
	type AddMembersRequest struct {
		Users []MemberRequest `json:"users" binding:"required,min=1,dive"`
	}

	group, exists := middleware.GetGroup(c)
	if !exists {
		apierrors.NotFound(c, "Group not found")
		return
	}
	actorID, _ := middleware.GetUserID(c)

	var req AddMembersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	inputs := make([]services.MemberInput, len(req.Users))
	for i, u := range req.Users {
		inputs[i] = services.MemberInput{UserID: u.UserID, Role: u.Role}
	}

	members, err := h.groupService.AddMembers(group, actorID, inputs)
	if err != nil {
		respondGroupError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"members": dto.ToGroupMemberDTOs(members),
	})
}

// AddMember adds one user to the group with an optional role
func (h *GroupHandler) AddMember(c *gin.Context) {
	type AddMemberRequest struct {
		Role models.GroupRole `json:"role"`
	}

	group, exists := middleware.GetGroup(c)
	if !exists {
		apierrors.NotFound(c, "Group not found")
		return
	}
	actorID, _ := middleware.GetUserID(c)

	var req AddMemberRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			apierrors.BadRequest(c, "Invalid request body")
			return
		}
	}

	members, err := h.groupService.AddMembers(group, actorID, []services.MemberInput{
		{UserID: c.Param("userId"), Role: req.Role},
	})
	if err != nil {
		respondGroupError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"members": dto.ToGroupMemberDTOs(members),
	})
}

// SetMembers replaces the group's member set with the given user IDs or emails
func (h *GroupHandler) SetMembers(c *gin.Context) {
	type SetMembersRequest struct {
		Members []string `json:"members" binding:"required"`
	}

	group, exists := middleware.GetGroup(c)
	if !exists {
		apierrors.NotFound(c, "Group not found")
		return
	}
	actorID, _ := middleware.GetUserID(c)

	var req SetMembersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	result, err := h.groupService.SetMembers(group, actorID, req.Members)
	if err != nil {
		respondGroupError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToMembershipResultDTO(*result))
}

// UpdateMemberRole changes a member's role
func (h *GroupHandler) UpdateMemberRole(c *gin.Context) {
	type UpdateRoleRequest struct {
		Role models.GroupRole `json:"role" binding:"required"`
	}

	group, exists := middleware.GetGroup(c)
	if !exists {
		apierrors.NotFound(c, "Group not found")
		return
	}
	actorID, _ := middleware.GetUserID(c)

	var req UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	member, err := h.groupService.SetRole(group, actorID, c.Param("userId"), req.Role)
	if err != nil {
		respondGroupError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToGroupMemberDTO(*member))
}

// RemoveMember removes a member from the group
// Admins can remove anyone, members can only remove themselves
func (h *GroupHandler) RemoveMember(c *gin.Context) {
	group, exists := middleware.GetGroup(c)
	if !exists {
		apierrors.NotFound(c, "Group not found")
		return
	}
	actor, exists := middleware.GetGroupMember(c)
	if !exists {
		apierrors.NotFound(c, "Group not found")
		return
	}

	if err := h.groupService.RemoveMember(group, actor, c.Param("userId")); err != nil {
		respondGroupError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Member removed successfully",
	})
}

func respondGroupError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrGroupNotFound),
		errors.Is(err, services.ErrMemberNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrNotGroupAdmin):
		apierrors.RespondWithError(c, http.StatusForbidden, apierrors.ErrCodeInsufficientPermissions, err.Error())
	case errors.Is(err, services.ErrGroupNameRequired),
		errors.Is(err, services.ErrInvalidRole),
		errors.Is(err, services.ErrNoUsersProvided),
		errors.Is(err, services.ErrMemberUserNotFound):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrAlreadyMember):
		apierrors.ConflictWithCode(c, apierrors.ErrCodeAlreadyExists, err.Error())
	case errors.Is(err, services.ErrLastAdmin):
		apierrors.ConflictWithCode(c, apierrors.ErrCodeInvalidOperation, err.Error())
	default:
		slog.Error("group operation failed", "error", err)
		apierrors.InternalError(c)
	}
}
