package models

import (
	"time"

	"gorm.io/gorm"
)

// GroupChat is a named multi-user chat room
type GroupChat struct {
	gorm.Model  `json:"-"`
	ID          uint   `json:"id" gorm:"primaryKey"`
	Name        string `json:"name" gorm:"not null"`
	Description string `json:"description,omitempty"`
	AvatarURL   string `json:"avatar_url,omitempty"`
	CreatedByID uint   `json:"created_by_id" gorm:"not null"`
}

// GroupMember links a user into a group chat
type GroupMember struct {
	GroupID  uint      `json:"group_id" gorm:"primaryKey;autoIncrement:false"`
	UserID   uint      `json:"user_id" gorm:"primaryKey;autoIncrement:false"`
	IsAdmin  bool      `json:"is_admin" gorm:"default:false"`
	JoinedAt time.Time `json:"joined_at" gorm:"autoCreateTime"`
}

type CreateGroupRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=100"`
	Description string `json:"description,omitempty" validate:"omitempty,max=500"`
	AvatarURL   string `json:"avatar_url,omitempty" validate:"omitempty,url"`
	MemberIDs   []uint `json:"member_ids" validate:"required,min=1"`
}

type UpdateGroupRequest struct {
	Name        string  `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=500"`
	AvatarURL   *string `json:"avatar_url,omitempty" validate:"omitempty,url"`
}

type AddGroupMemberRequest struct {
	UserID uint `json:"user_id" validate:"required"`
}

// GroupMemberDetail is a member profile plus their admin flag
type GroupMemberDetail struct {
	UserCompact
	IsAdmin bool `json:"is_admin"`
}

// GroupDetail is a group with its member list resolved
type GroupDetail struct {
	GroupChat
	Members []GroupMemberDetail `json:"members"`
}
