package models

import (
	"time"

	"gorm.io/gorm"
)

// Buddy status values
const (
	BuddyStatusPending  = "pending"
	BuddyStatusAccepted = "accepted"
	BuddyStatusRejected = "rejected"
)

// Buddy represents a buddy link between two users. User1 is always the
// requester and User2 the receiver; the pair itself is unordered, so at most
// one row may exist for any two users regardless of direction. That is
// enforced by checking both orderings before insert.
type Buddy struct {
	gorm.Model         `json:"-"`
	ID                 uint      `json:"id" gorm:"primaryKey"`
	User1ID            uint      `json:"user1_id" gorm:"index;uniqueIndex:idx_buddy_pair"`
	User2ID            uint      `json:"user2_id" gorm:"index;uniqueIndex:idx_buddy_pair"`
	CompatibilityScore float64   `json:"compatibility_score"`
	Status             string    `json:"status" gorm:"type:varchar(20);default:'pending'"`
	CreatedAt          time.Time `json:"created_at"`
}

// CreateBuddyRequest defines the request body for sending a buddy request
type CreateBuddyRequest struct {
	User2ID uint `json:"user2_id" validate:"required"`
}

// UpdateBuddyRequest defines the request body for accepting/rejecting a buddy request
type UpdateBuddyRequest struct {
	Status string `json:"status" validate:"required,oneof=accepted rejected"`
}

// BuddyDetail is a buddy link with both user profiles resolved
type BuddyDetail struct {
	Buddy
	User1 UserCompact `json:"user1"`
	User2 UserCompact `json:"user2"`
}
