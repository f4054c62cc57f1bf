package models

import "gorm.io/gorm"

// Message is a chat message. Exactly one of ReceiverID (direct), EventID
// (event chat) or GroupID (group chat) is set.
type Message struct {
	gorm.Model `json:"-"`
	ID         uint   `json:"id" gorm:"primaryKey"`
	SenderID   uint   `json:"sender_id" gorm:"index;not null"`
	ReceiverID *uint  `json:"receiver_id,omitempty" gorm:"index"`
	EventID    *uint  `json:"event_id,omitempty" gorm:"index"`
	GroupID    *uint  `json:"group_id,omitempty" gorm:"index"`
	Content    string `json:"content" gorm:"type:text;not null"`
	IsRead     bool   `json:"is_read" gorm:"default:false"`
}

// CreateMessageRequest defines the request body for sending a message
type CreateMessageRequest struct {
	ReceiverID *uint  `json:"receiver_id,omitempty"`
	EventID    *uint  `json:"event_id,omitempty"`
	GroupID    *uint  `json:"group_id,omitempty"`
	Content    string `json:"content" validate:"required,min=1,max=2000"`
}

// MessageDetail is a message with the sender profile resolved
type MessageDetail struct {
	Message
	Sender UserCompact `json:"sender"`
}

// Conversation is one entry in the merged conversation list
type Conversation struct {
	Type        string       `json:"type"` // "user", "event" or "group"
	ID          uint         `json:"id"`
	Name        string       `json:"name"`
	AvatarURL   string       `json:"avatar_url,omitempty"`
	MemberCount int64        `json:"member_count,omitempty"`
	LastMessage *LastMessage `json:"last_message"`
	UnreadCount int64        `json:"unread_count"`
}

// LastMessage is the newest message preview inside a Conversation
type LastMessage struct {
	Content   string `json:"content,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}
