package handlers

import (
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/dots-fit/dots-backend/internal/models"
	"github.com/dots-fit/dots-backend/internal/repositories"
	"github.com/dots-fit/dots-backend/internal/ws"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// MessageHandler handles HTTP requests for direct, event and group chat
type MessageHandler struct {
	messageRepository repositories.MessageRepository
	userRepository    repositories.UserRepository
	eventRepository   repositories.EventRepository
	groupRepository   repositories.GroupRepository
	hub               *ws.Hub
}

// NewMessageHandler creates a new MessageHandler
func NewMessageHandler(
	messageRepo repositories.MessageRepository,
	userRepo repositories.UserRepository,
	eventRepo repositories.EventRepository,
	groupRepo repositories.GroupRepository,
	hub *ws.Hub,
) *MessageHandler {
	return &MessageHandler{
		messageRepository: messageRepo,
		userRepository:    userRepo,
		eventRepository:   eventRepo,
		groupRepository:   groupRepo,
		hub:               hub,
	}
}

// RegisterMessageRoutes registers messaging routes
func (h *MessageHandler) RegisterMessageRoutes(g *echo.Group) {
	g.POST("/messages", h.SendMessage)
	g.GET("/conversations", h.ListConversations)
	g.GET("/conversations/user/:id", h.GetDirectConversation)
	g.GET("/conversations/event/:id", h.GetEventConversation)
	g.GET("/conversations/group/:id", h.GetGroupConversation)
	g.PUT("/messages/:id/read", h.MarkMessageRead)
}

// wsEnvelope is the frame pushed to live connections
type wsEnvelope struct {
	Type    string                `json:"type"`
	Message *models.MessageDetail `json:"message,omitempty"`
}

// SendMessage persists a message and fans it out to online recipients.
// Exactly one of receiver_id, event_id, group_id must be set.
func (h *MessageHandler) SendMessage(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	var req models.CreateMessageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	targets := 0
	if req.ReceiverID != nil {
		targets++
	}
	if req.EventID != nil {
		targets++
	}
	if req.GroupID != nil {
		targets++
	}
	if targets != 1 {
		return echo.NewHTTPError(http.StatusBadRequest, "Exactly one of receiver_id, event_id or group_id must be set")
	}

	var recipients []uint
	switch {
	case req.ReceiverID != nil:
		if *req.ReceiverID == userID {
			return echo.NewHTTPError(http.StatusBadRequest, "Cannot message yourself")
		}
		if _, err := h.userRepository.GetUserByID(*req.ReceiverID); err != nil {
			if err == gorm.ErrRecordNotFound {
				return echo.NewHTTPError(http.StatusNotFound, "Receiver not found")
			}
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		recipients = []uint{*req.ReceiverID}
	case req.EventID != nil:
		ok, err := h.eventRepository.HasRSVP(*req.EventID, userID)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		if !ok {
			return echo.NewHTTPError(http.StatusForbidden, "Only event participants can post in the event chat")
		}
		ids, err := h.eventRepository.GetParticipantIDs(*req.EventID)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		recipients = withoutID(ids, userID)
	case req.GroupID != nil:
		ok, err := h.groupRepository.IsMember(*req.GroupID, userID)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		if !ok {
			return echo.NewHTTPError(http.StatusForbidden, "Only group members can post in the group chat")
		}
		ids, err := h.groupRepository.GetMemberIDs(*req.GroupID)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		recipients = withoutID(ids, userID)
	}

	msg := models.Message{
		SenderID:   userID,
		ReceiverID: req.ReceiverID,
		EventID:    req.EventID,
		GroupID:    req.GroupID,
		Content:    req.Content,
	}
	if err := h.messageRepository.CreateMessage(&msg); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	detail := models.MessageDetail{Message: msg}
	if sender, err := h.userRepository.GetUserByID(userID); err == nil {
		detail.Sender = sender.Compact()
	}

	h.hub.Broadcast(recipients, wsEnvelope{Type: "message", Message: &detail})

	return c.JSON(http.StatusCreated, detail)
}

// ListConversations returns the merged list of direct, event and group
// conversations the user participates in, newest activity first
func (h *MessageHandler) ListConversations(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	conversations := []models.Conversation{}

	partnerIDs, err := h.messageRepository.GetDirectPartnerIDs(userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	for _, partnerID := range partnerIDs {
		conv := models.Conversation{Type: "user", ID: partnerID}
		if partner, err := h.userRepository.GetUserByID(partnerID); err == nil {
			conv.Name = partner.Name
			conv.AvatarURL = partner.AvatarURL
		}
		if last, err := h.messageRepository.LastDirectMessage(userID, partnerID); err == nil && last != nil {
			conv.LastMessage = &models.LastMessage{
				Content:   last.Content,
				CreatedAt: last.CreatedAt.Format(time.RFC3339),
			}
		}
		if unread, err := h.messageRepository.CountUnreadFrom(partnerID, userID); err == nil {
			conv.UnreadCount = unread
		}
		conversations = append(conversations, conv)
	}

	eventIDs, err := h.eventRepository.GetEventIDsForUser(userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	messagedIDs, err := h.messageRepository.GetEventIDsWithMessages(userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	for _, id := range messagedIDs {
		if !containsID(eventIDs, id) {
			eventIDs = append(eventIDs, id)
		}
	}
	for _, eventID := range eventIDs {
		conv := models.Conversation{Type: "event", ID: eventID}
		if event, err := h.eventRepository.GetEventByID(eventID); err == nil {
			conv.Name = event.Title
			conv.AvatarURL = event.ImageURL
		}
		if count, err := h.eventRepository.CountRSVPs(eventID); err == nil {
			conv.MemberCount = count
		}
		if last, err := h.messageRepository.LastEventMessage(eventID); err == nil && last != nil {
			conv.LastMessage = &models.LastMessage{
				Content:   last.Content,
				CreatedAt: last.CreatedAt.Format(time.RFC3339),
			}
		}
		conversations = append(conversations, conv)
	}

	groups, err := h.groupRepository.ListGroupsForUser(userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	for _, group := range groups {
		conv := models.Conversation{Type: "group", ID: group.ID, Name: group.Name, AvatarURL: group.AvatarURL}
		if count, err := h.groupRepository.CountMembers(group.ID); err == nil {
			conv.MemberCount = count
		}
		if last, err := h.messageRepository.LastGroupMessage(group.ID); err == nil && last != nil {
			conv.LastMessage = &models.LastMessage{
				Content:   last.Content,
				CreatedAt: last.CreatedAt.Format(time.RFC3339),
			}
		}
		conversations = append(conversations, conv)
	}

	sort.SliceStable(conversations, func(i, j int) bool {
		return lastMessageTime(conversations[i]) > lastMessageTime(conversations[j])
	})

	return c.JSON(http.StatusOK, conversations)
}

// GetDirectConversation returns the message history with another user
func (h *MessageHandler) GetDirectConversation(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	partnerID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}

	messages, err := h.messageRepository.GetDirectConversation(userID, uint(partnerID))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, h.withSenders(messages))
}

// GetEventConversation returns the event chat history; participants only
func (h *MessageHandler) GetEventConversation(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	eventID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid event ID")
	}

	ok, err := h.eventRepository.HasRSVP(uint(eventID), userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if !ok {
		return echo.NewHTTPError(http.StatusForbidden, "Only event participants can read the event chat")
	}

	messages, err := h.messageRepository.GetEventMessages(uint(eventID))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, h.withSenders(messages))
}

// GetGroupConversation returns the group chat history; members only
func (h *MessageHandler) GetGroupConversation(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	groupID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid group ID")
	}

	ok, err := h.groupRepository.IsMember(uint(groupID), userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if !ok {
		return echo.NewHTTPError(http.StatusForbidden, "Only group members can read the group chat")
	}

	messages, err := h.messageRepository.GetGroupMessages(uint(groupID))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, h.withSenders(messages))
}

// MarkMessageRead marks a direct message as read; only its receiver may
// do this. The sender is notified over their live connection if online.
func (h *MessageHandler) MarkMessageRead(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	messageID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid message ID")
	}

	msg, err := h.messageRepository.GetMessageByID(uint(messageID))
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Message not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if err := h.messageRepository.MarkRead(uint(messageID), userID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return echo.NewHTTPError(http.StatusForbidden, "Only the receiver can mark a message read")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	msg.IsRead = true
	h.hub.SendToUser(msg.SenderID, wsEnvelope{Type: "read", Message: &models.MessageDetail{Message: *msg}})

	return c.JSON(http.StatusOK, msg)
}

func (h *MessageHandler) withSenders(messages []models.Message) []models.MessageDetail {
	details := make([]models.MessageDetail, 0, len(messages))
	senders := map[uint]models.UserCompact{}
	for _, msg := range messages {
		detail := models.MessageDetail{Message: msg}
		if cached, ok := senders[msg.SenderID]; ok {
			detail.Sender = cached
		} else if sender, err := h.userRepository.GetUserByID(msg.SenderID); err == nil {
			detail.Sender = sender.Compact()
			senders[msg.SenderID] = detail.Sender
		}
		details = append(details, detail)
	}
	return details
}

func lastMessageTime(conv models.Conversation) string {
	if conv.LastMessage == nil {
		return ""
	}
	return conv.LastMessage.CreatedAt
}

func containsID(ids []uint, id uint) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func withoutID(ids []uint, exclude uint) []uint {
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if id != exclude {
			out = append(out, id)
		}
	}
	return out
}
