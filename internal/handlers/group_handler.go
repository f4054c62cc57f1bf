package handlers

import (
	"net/http"
	"strconv"

	"github.com/dots-fit/dots-backend/internal/models"
	"github.com/dots-fit/dots-backend/internal/repositories"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// GroupHandler handles HTTP requests for group chats
type GroupHandler struct {
	groupRepository repositories.GroupRepository
	userRepository  repositories.UserRepository
}

// NewGroupHandler creates a new GroupHandler
func NewGroupHandler(groupRepo repositories.GroupRepository, userRepo repositories.UserRepository) *GroupHandler {
	return &GroupHandler{groupRepository: groupRepo, userRepository: userRepo}
}

// RegisterGroupRoutes registers group chat routes
func (h *GroupHandler) RegisterGroupRoutes(g *echo.Group) {
	g.POST("/groups", h.CreateGroup)
	g.GET("/groups", h.ListGroups)
	g.GET("/groups/:id", h.GetGroup)
	g.PUT("/groups/:id", h.UpdateGroup)
	g.POST("/groups/:id/members", h.AddMember)
	g.DELETE("/groups/:id/members/:userId", h.RemoveMember)
	g.DELETE("/groups/:id/members/me", h.LeaveGroup)
}

// CreateGroup creates a group chat with the current user as admin
func (h *GroupHandler) CreateGroup(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	var req models.CreateGroupRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	memberIDs := make([]uint, 0, len(req.MemberIDs))
	for _, id := range req.MemberIDs {
		if id == userID {
			continue
		}
		if _, err := h.userRepository.GetUserByID(id); err != nil {
			if err == gorm.ErrRecordNotFound {
				return echo.NewHTTPError(http.StatusBadRequest, "Unknown member user ID")
			}
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		memberIDs = append(memberIDs, id)
	}

	group := models.GroupChat{
		Name:        req.Name,
		Description: req.Description,
		AvatarURL:   req.AvatarURL,
		CreatedByID: userID,
	}
	if err := h.groupRepository.CreateGroup(&group, memberIDs); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusCreated, group)
}

// ListGroups retrieves the groups the current user belongs to
func (h *GroupHandler) ListGroups(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	groups, err := h.groupRepository.ListGroupsForUser(userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, groups)
}

// GetGroup retrieves a group with its member list; members only
func (h *GroupHandler) GetGroup(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	groupID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid group ID")
	}

	group, err := h.groupRepository.GetGroupByID(uint(groupID))
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Group not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	ok, err := h.groupRepository.IsMember(group.ID, userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if !ok {
		return echo.NewHTTPError(http.StatusForbidden, "Only members can view this group")
	}

	members, err := h.groupRepository.GetMembers(group.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, models.GroupDetail{GroupChat: *group, Members: members})
}

// UpdateGroup updates group metadata; admins only
func (h *GroupHandler) UpdateGroup(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	groupID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid group ID")
	}

	group, err := h.groupRepository.GetGroupByID(uint(groupID))
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Group not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	isAdmin, err := h.groupRepository.IsAdmin(group.ID, userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if !isAdmin {
		return echo.NewHTTPError(http.StatusForbidden, "Only admins can update this group")
	}

	var req models.UpdateGroupRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if req.Name != "" {
		group.Name = req.Name
	}
	if req.Description != nil {
		group.Description = *req.Description
	}
	if req.AvatarURL != nil {
		group.AvatarURL = *req.AvatarURL
	}

	if err := h.groupRepository.UpdateGroup(group); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, group)
}

// AddMember adds a user to the group; admins only
func (h *GroupHandler) AddMember(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	groupID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid group ID")
	}

	isAdmin, err := h.groupRepository.IsAdmin(uint(groupID), userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if !isAdmin {
		return echo.NewHTTPError(http.StatusForbidden, "Only admins can add members")
	}

	var req models.AddGroupMemberRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if _, err := h.userRepository.GetUserByID(req.UserID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	already, err := h.groupRepository.IsMember(uint(groupID), req.UserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if already {
		return echo.NewHTTPError(http.StatusConflict, "User is already a member")
	}

	if err := h.groupRepository.AddMember(uint(groupID), req.UserID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusCreated, map[string]string{"message": "Member added"})
}

// RemoveMember removes a user from the group; admins only
func (h *GroupHandler) RemoveMember(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	groupID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid group ID")
	}
	targetID, err := strconv.ParseUint(c.Param("userId"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}

	isAdmin, err := h.groupRepository.IsAdmin(uint(groupID), userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if !isAdmin {
		return echo.NewHTTPError(http.StatusForbidden, "Only admins can remove members")
	}

	if err := h.groupRepository.RemoveMember(uint(groupID), uint(targetID)); err != nil {
		if err == gorm.ErrRecordNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "User is not a member")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.NoContent(http.StatusNoContent)
}

// LeaveGroup removes the current user from the group
func (h *GroupHandler) LeaveGroup(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	groupID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid group ID")
	}

	if err := h.groupRepository.RemoveMember(uint(groupID), userID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Not a member of this group")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.NoContent(http.StatusNoContent)
}
