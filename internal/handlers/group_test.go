package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Rahnken/ReframeMe-backend/internal/constants"
	"github.com/Rahnken/ReframeMe-backend/internal/dto"
	"github.com/Rahnken/ReframeMe-backend/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// GroupHandlerTestSuite exercises the group endpoints with an admin, alice, who owns one group.
type GroupHandlerTestSuite struct {
	suite.Suite
	env     handlerTestEnv
	handler *GroupHandler
	alice   *models.User
	bob     *models.User
	carol   *models.User
	group   *models.Group
}

func (suite *GroupHandlerTestSuite) SetupTest() {
	suite.env = setupHandlerTestEnv(suite.T())
	suite.handler = NewGroupHandler(suite.env.groups)
	suite.alice = suite.env.register(suite.T(), "alice")
	suite.bob = suite.env.register(suite.T(), "bob")
	suite.carol = suite.env.register(suite.T(), "carol")

	group, err := suite.env.groups.CreateGroup(suite.alice.ID, "Runners", "Weekend runs")
	suite.Require().NoError(err)
	suite.group = group
}

// groupContext loads the group the way RequireGroupMember does.
func (suite *GroupHandlerTestSuite) groupContext(method, url string, body interface{}, userID string, params ...gin.Param) (*gin.Context, *httptest.ResponseRecorder) {
	group, member, err := suite.env.groups.Authorize(suite.group.ID, userID, false)
	suite.Require().NoError(err)

	c, w := testContext(method, url, body, userID)
	c.Params = append(gin.Params{{Key: "groupId", Value: suite.group.ID}}, params...)
	c.Set(constants.ContextKeyGroup, group)
	c.Set(constants.ContextKeyGroupMember, member)
	return c, w
}

func (suite *GroupHandlerTestSuite) setMembers(members ...string) dto.MembershipResultDTO {
	c, w := suite.groupContext(http.MethodPut, "/groups/"+suite.group.ID+"/users", map[string]interface{}{
		"members": members,
	}, suite.alice.ID)
	suite.handler.SetMembers(c)
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var result dto.MembershipResultDTO
	decode(suite.T(), w, &result)
	return result
}

func (suite *GroupHandlerTestSuite) TestCreateAndList() {
	c, w := testContext(http.MethodPost, "/groups/create", map[string]string{"name": "Readers"}, suite.bob.ID)
	suite.handler.CreateGroup(c)
	suite.Require().Equal(http.StatusCreated, w.Code)

	c, w = testContext(http.MethodGet, "/groups", nil, suite.bob.ID)
	suite.handler.ListGroups(c)
	suite.Require().Equal(http.StatusOK, w.Code)

	var groups []dto.GroupDTO
	decode(suite.T(), w, &groups)
	suite.Require().Len(groups, 1)
	suite.Equal("Readers", groups[0].Name)
	suite.Require().Len(groups[0].Users, 1)
	suite.Equal(models.RoleAdmin, groups[0].Users[0].Role)
}

func (suite *GroupHandlerTestSuite) TestCreateRequiresName() {
	c, w := testContext(http.MethodPost, "/groups/create", map[string]string{"name": ""}, suite.bob.ID)
	suite.handler.CreateGroup(c)
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *GroupHandlerTestSuite) TestSetMembersIsIdempotent() {
	first := suite.setMembers(suite.alice.ID, "BOB@example.com", "ghost@example.com")
	suite.Equal([]string{suite.bob.ID}, first.Added)
	suite.Empty(first.Removed)
	suite.Equal([]string{"ghost@example.com"}, first.Unresolved)
	suite.Len(first.Members, 2)

	var notifications int64
	suite.Require().NoError(suite.env.db.Model(&models.Notification{}).Count(&notifications).Error)
	suite.Equal(int64(1), notifications)

	second := suite.setMembers(suite.alice.ID, "bob@example.com", "ghost@example.com")
	suite.Empty(second.Added)
	suite.Empty(second.Removed)
	suite.Len(second.Members, 2)

	suite.Require().NoError(suite.env.db.Model(&models.Notification{}).Count(&notifications).Error)
	suite.Equal(int64(1), notifications, "an unchanged member set writes nothing")
}

func (suite *GroupHandlerTestSuite) TestSetMembersKeepsAnAdmin() {
	c, w := suite.groupContext(http.MethodPut, "/groups/"+suite.group.ID+"/users", map[string]interface{}{
		"members": []string{suite.bob.ID},
	}, suite.alice.ID)
	suite.handler.SetMembers(c)
	suite.Equal(http.StatusConflict, w.Code)
}

func (suite *GroupHandlerTestSuite) TestAddMembersAndRoles() {
	c, w := suite.groupContext(http.MethodPost, "/groups/"+suite.group.ID+"/users", map[string]interface{}{
		"users": []map[string]string{
			{"user_id": suite.bob.ID, "role": "MEMBER"},
			{"user_id": suite.carol.ID, "role": "ADMIN"},
		},
	}, suite.alice.ID)
	suite.handler.AddMembers(c)
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	// Adding an existing member conflicts
	c, w = suite.groupContext(http.MethodPost, "/groups/"+suite.group.ID+"/users/"+suite.bob.ID, nil,
		suite.alice.ID, gin.Param{Key: "userId", Value: suite.bob.ID})
	suite.handler.AddMember(c)
	suite.Equal(http.StatusConflict, w.Code)

	c, w = suite.groupContext(http.MethodPatch, "/groups/"+suite.group.ID+"/users/"+suite.bob.ID, map[string]string{"role": "ADMIN"},
		suite.alice.ID, gin.Param{Key: "userId", Value: suite.bob.ID})
	suite.handler.UpdateMemberRole(c)
	suite.Require().Equal(http.StatusOK, w.Code)

	var member dto.GroupMemberDTO
	decode(suite.T(), w, &member)
	suite.Equal(models.RoleAdmin, member.Role)

	c, w = suite.groupContext(http.MethodPatch, "/groups/"+suite.group.ID+"/users/"+suite.bob.ID, map[string]string{"role": "OWNER"},
		suite.alice.ID, gin.Param{Key: "userId", Value: suite.bob.ID})
	suite.handler.UpdateMemberRole(c)
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *GroupHandlerTestSuite) TestAddMembersUnknownUser() {
	c, w := suite.groupContext(http.MethodPost, "/groups/"+suite.group.ID+"/users", map[string]interface{}{
		"users": []map[string]string{{"user_id": "missing"}},
	}, suite.alice.ID)
	suite.handler.AddMembers(c)
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *GroupHandlerTestSuite) TestLastAdminCannotLeave() {
	c, w := suite.groupContext(http.MethodDelete, "/groups/"+suite.group.ID+"/users/"+suite.alice.ID, nil,
		suite.alice.ID, gin.Param{Key: "userId", Value: suite.alice.ID})
	suite.handler.RemoveMember(c)
	suite.Equal(http.StatusConflict, w.Code)

	c, w = suite.groupContext(http.MethodPatch, "/groups/"+suite.group.ID+"/users/"+suite.alice.ID, map[string]string{"role": "MEMBER"},
		suite.alice.ID, gin.Param{Key: "userId", Value: suite.alice.ID})
	suite.handler.UpdateMemberRole(c)
	suite.Equal(http.StatusConflict, w.Code)
}

func (suite *GroupHandlerTestSuite) TestMemberRemoval() {
	suite.setMembers(suite.alice.ID, suite.bob.ID, suite.carol.ID)

	// Members cannot remove others
	c, w := suite.groupContext(http.MethodDelete, "/groups/"+suite.group.ID+"/users/"+suite.carol.ID, nil,
		suite.bob.ID, gin.Param{Key: "userId", Value: suite.carol.ID})
	suite.handler.RemoveMember(c)
	suite.Equal(http.StatusForbidden, w.Code)

	// but can leave
	c, w = suite.groupContext(http.MethodDelete, "/groups/"+suite.group.ID+"/users/"+suite.bob.ID, nil,
		suite.bob.ID, gin.Param{Key: "userId", Value: suite.bob.ID})
	suite.handler.RemoveMember(c)
	suite.Equal(http.StatusOK, w.Code)

	c, w = suite.groupContext(http.MethodDelete, "/groups/"+suite.group.ID+"/users/"+suite.bob.ID, nil,
		suite.alice.ID, gin.Param{Key: "userId", Value: suite.bob.ID})
	suite.handler.RemoveMember(c)
	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *GroupHandlerTestSuite) TestUpdateGetDelete() {
	c, w := suite.groupContext(http.MethodPatch, "/groups/"+suite.group.ID, map[string]string{"name": "Trail Runners"}, suite.alice.ID)
	suite.handler.UpdateGroup(c)
	suite.Require().Equal(http.StatusOK, w.Code)

	c, w = suite.groupContext(http.MethodGet, "/groups/"+suite.group.ID, nil, suite.alice.ID)
	suite.handler.GetGroup(c)
	suite.Require().Equal(http.StatusOK, w.Code)

	var group dto.GroupDTO
	decode(suite.T(), w, &group)
	suite.Equal("Trail Runners", group.Name)
	suite.Equal("Weekend runs", group.Description)
	suite.Require().Len(group.Users, 1)
	suite.Require().NotNil(group.Users[0].User)
	suite.Equal("alice", group.Users[0].User.Username)

	c, w = suite.groupContext(http.MethodDelete, "/groups/"+suite.group.ID, nil, suite.alice.ID)
	suite.handler.DeleteGroup(c)
	suite.Require().Equal(http.StatusOK, w.Code)

	var groups, members int64
	suite.Require().NoError(suite.env.db.Model(&models.Group{}).Count(&groups).Error)
	suite.Require().NoError(suite.env.db.Model(&models.GroupUser{}).Count(&members).Error)
	suite.Zero(groups)
	suite.Zero(members)
}

func TestGroupHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(GroupHandlerTestSuite))
}

func TestGroupHandler_NoContext(t *testing.T) {
	env := setupHandlerTestEnv(t)
	handler := NewGroupHandler(env.groups)

	c, w := testContext(http.MethodGet, "/groups/x", nil, "user-1")
	handler.GetGroup(c)
	assert.Equal(t, http.StatusNotFound, w.Code)

	c, w = testContext(http.MethodGet, "/groups", nil, "")
	handler.ListGroups(c)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}
