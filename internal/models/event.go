package models

import (
	"time"

	"gorm.io/gorm"
)

// Event is a scheduled group activity hosted by a user
type Event struct {
	gorm.Model      `json:"-"`
	ID              uint       `json:"id" gorm:"primaryKey"`
	Title           string     `json:"title" gorm:"index;not null"`
	Description     string     `json:"description,omitempty"`
	SportID         uint       `json:"sport_id" gorm:"not null"`
	HostID          uint       `json:"host_id" gorm:"index;not null"`
	Location        string     `json:"location" gorm:"not null"`
	StartTime       time.Time  `json:"start_time" gorm:"index;not null"`
	EndTime         *time.Time `json:"end_time,omitempty"`
	MaxParticipants int        `json:"max_participants,omitempty"` // 0 means unlimited
	IsCancelled     bool       `json:"is_cancelled" gorm:"default:false"`
	ImageURL        string     `json:"image_url,omitempty"`
	Sport           Sport      `json:"sport" gorm:"foreignKey:SportID"`
}

// EventRSVP records a user's attendance intent for an event. Attended is
// flipped by the host after the event and feeds the activity-level factor
// of the compatibility score.
type EventRSVP struct {
	EventID  uint      `json:"event_id" gorm:"primaryKey;autoIncrement:false"`
	UserID   uint      `json:"user_id" gorm:"primaryKey;autoIncrement:false"`
	Attended bool      `json:"attended" gorm:"default:false"`
	RSVPAt   time.Time `json:"rsvp_at" gorm:"autoCreateTime"`
}

type CreateEventRequest struct {
	Title           string     `json:"title" validate:"required,min=3,max=100"`
	Description     string     `json:"description,omitempty" validate:"omitempty,max=2000"`
	SportID         uint       `json:"sport_id" validate:"required"`
	Location        string     `json:"location" validate:"required,max=100"`
	StartTime       time.Time  `json:"start_time" validate:"required"`
	EndTime         *time.Time `json:"end_time,omitempty"`
	MaxParticipants int        `json:"max_participants,omitempty" validate:"omitempty,min=2"`
}

type UpdateEventRequest struct {
	Title           string     `json:"title,omitempty" validate:"omitempty,min=3,max=100"`
	Description     *string    `json:"description,omitempty" validate:"omitempty,max=2000"`
	Location        string     `json:"location,omitempty" validate:"omitempty,max=100"`
	StartTime       *time.Time `json:"start_time,omitempty"`
	EndTime         *time.Time `json:"end_time,omitempty"`
	MaxParticipants *int       `json:"max_participants,omitempty"`
	IsCancelled     *bool      `json:"is_cancelled,omitempty"`
}

// MarkAttendanceRequest is the host's approval of who actually showed up
type MarkAttendanceRequest struct {
	UserID   uint `json:"user_id" validate:"required"`
	Attended bool `json:"attended"`
}

// EventResponse is an event with its participant count
type EventResponse struct {
	Event
	ParticipantCount int64 `json:"participant_count"`
}

// EventDetail is an event with host and participant profiles resolved
type EventDetail struct {
	Event
	ParticipantCount int64         `json:"participant_count"`
	Host             UserCompact   `json:"host"`
	Participants     []UserCompact `json:"participants"`
}
