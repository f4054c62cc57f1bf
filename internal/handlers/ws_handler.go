package handlers

import (
	"log"
	"net/http"

	"github.com/dots-fit/dots-backend/internal/middleware"
	"github.com/dots-fit/dots-backend/internal/models"
	"github.com/dots-fit/dots-backend/internal/repositories"
	"github.com/dots-fit/dots-backend/internal/ws"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Token auth happens before the upgrade; browser clients cannot set
	// custom headers on WebSocket requests
	CheckOrigin: func(r *http.Request) bool { return true },
}

// WSHandler upgrades authenticated clients to a live connection and feeds
// inbound frames through the same persistence path as the REST endpoints
type WSHandler struct {
	messageRepository repositories.MessageRepository
	userRepository    repositories.UserRepository
	eventRepository   repositories.EventRepository
	groupRepository   repositories.GroupRepository
	hub               *ws.Hub
}

// NewWSHandler creates a new WSHandler
func NewWSHandler(
	messageRepo repositories.MessageRepository,
	userRepo repositories.UserRepository,
	eventRepo repositories.EventRepository,
	groupRepo repositories.GroupRepository,
	hub *ws.Hub,
) *WSHandler {
	return &WSHandler{
		messageRepository: messageRepo,
		userRepository:    userRepo,
		eventRepository:   eventRepo,
		groupRepository:   groupRepo,
		hub:               hub,
	}
}

// RegisterWSRoutes registers the WebSocket endpoint. It authenticates via
// a token query parameter, so it is registered outside the JWT middleware
// group.
func (h *WSHandler) RegisterWSRoutes(e *echo.Echo) {
	e.GET("/ws", h.Serve)
}

// inboundFrame is what clients send over the socket
type inboundFrame struct {
	Type       string `json:"type"`
	ReceiverID *uint  `json:"receiver_id,omitempty"`
	EventID    *uint  `json:"event_id,omitempty"`
	GroupID    *uint  `json:"group_id,omitempty"`
	Content    string `json:"content,omitempty"`
	MessageID  uint   `json:"message_id,omitempty"`
}

// Serve upgrades the connection, registers it on the hub and runs the read
// loop until the client disconnects
func (h *WSHandler) Serve(c echo.Context) error {
	claims, err := middleware.ParseToken(c.QueryParam("token"))
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or missing token")
	}
	userID := claims.UserID

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	h.hub.Register(userID, conn)
	defer func() {
		h.hub.Unregister(userID, conn)
		conn.Close()
	}()

	for {
		var frame inboundFrame
		if err := conn.ReadJSON(&frame); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("websocket read error for user %d: %v", userID, err)
			}
			return nil
		}

		switch frame.Type {
		case "message":
			h.handleMessage(userID, frame, conn)
		case "read":
			h.handleRead(userID, frame)
		default:
			conn.WriteJSON(map[string]string{"type": "error", "error": "unknown frame type"})
		}
	}
}

func (h *WSHandler) handleMessage(senderID uint, frame inboundFrame, conn *websocket.Conn) {
	if frame.Content == "" {
		conn.WriteJSON(map[string]string{"type": "error", "error": "content is required"})
		return
	}

	targets := 0
	if frame.ReceiverID != nil {
		targets++
	}
	if frame.EventID != nil {
		targets++
	}
	if frame.GroupID != nil {
		targets++
	}
	if targets != 1 {
		conn.WriteJSON(map[string]string{"type": "error", "error": "exactly one of receiver_id, event_id or group_id must be set"})
		return
	}

	var recipients []uint
	switch {
	case frame.ReceiverID != nil:
		if *frame.ReceiverID == senderID {
			conn.WriteJSON(map[string]string{"type": "error", "error": "cannot message yourself"})
			return
		}
		recipients = []uint{*frame.ReceiverID}
	case frame.EventID != nil:
		ok, err := h.eventRepository.HasRSVP(*frame.EventID, senderID)
		if err != nil || !ok {
			conn.WriteJSON(map[string]string{"type": "error", "error": "not a participant of this event"})
			return
		}
		ids, err := h.eventRepository.GetParticipantIDs(*frame.EventID)
		if err != nil {
			log.Printf("websocket: participant lookup failed: %v", err)
			return
		}
		recipients = withoutID(ids, senderID)
	case frame.GroupID != nil:
		ok, err := h.groupRepository.IsMember(*frame.GroupID, senderID)
		if err != nil || !ok {
			conn.WriteJSON(map[string]string{"type": "error", "error": "not a member of this group"})
			return
		}
		ids, err := h.groupRepository.GetMemberIDs(*frame.GroupID)
		if err != nil {
			log.Printf("websocket: member lookup failed: %v", err)
			return
		}
		recipients = withoutID(ids, senderID)
	}

	msg := models.Message{
		SenderID:   senderID,
		ReceiverID: frame.ReceiverID,
		EventID:    frame.EventID,
		GroupID:    frame.GroupID,
		Content:    frame.Content,
	}
	if err := h.messageRepository.CreateMessage(&msg); err != nil {
		log.Printf("websocket: persist message failed: %v", err)
		conn.WriteJSON(map[string]string{"type": "error", "error": "message could not be saved"})
		return
	}

	detail := models.MessageDetail{Message: msg}
	if sender, err := h.userRepository.GetUserByID(senderID); err == nil {
		detail.Sender = sender.Compact()
	}

	// Echo to the sender so the client can reconcile the assigned id
	conn.WriteJSON(wsEnvelope{Type: "message", Message: &detail})
	h.hub.Broadcast(recipients, wsEnvelope{Type: "message", Message: &detail})
}

func (h *WSHandler) handleRead(userID uint, frame inboundFrame) {
	if frame.MessageID == 0 {
		return
	}
	msg, err := h.messageRepository.GetMessageByID(frame.MessageID)
	if err != nil {
		return
	}
	if err := h.messageRepository.MarkRead(frame.MessageID, userID); err != nil {
		return
	}
	msg.IsRead = true
	h.hub.SendToUser(msg.SenderID, wsEnvelope{Type: "read", Message: &models.MessageDetail{Message: *msg}})
}
