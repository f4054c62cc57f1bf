package models

import (
	"github.com/golang-jwt/jwt/v4"
	"gorm.io/gorm"
)

type User struct {
	gorm.Model     `json:"-"`
	ID             uint    `json:"id" gorm:"primaryKey"`
	Name           string  `json:"name"`
	Email          string  `json:"email" gorm:"uniqueIndex"` // Ensure email is unique across all users
	Age            int     `json:"age,omitempty"`            // 0 means not provided
	Bio            string  `json:"bio,omitempty"`
	Location       string  `json:"location,omitempty"` // Free text, e.g. "Austin, TX"
	AvatarURL      string  `json:"avatar_url,omitempty"`
	Password       string  `json:"-"` // Store hashed password, ignore for JSON serialization
	FirebaseUID    string  `json:"firebase_uid,omitempty" gorm:"uniqueIndex"`
	IsActive       bool    `json:"is_active" gorm:"default:true"`
	IsDiscoverable bool    `json:"is_discoverable" gorm:"default:true"` // Hidden users never appear in buddy suggestions
	Sports         []Sport `json:"sports" gorm:"many2many:user_sports"`
	Goals          []Goal  `json:"goals" gorm:"many2many:user_goals"`
}

type CreateUserRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=50"`
	Email       string `json:"email" validate:"required,email"`
	Age         int    `json:"age" validate:"omitempty,min=13,max=120"`
	FirebaseUID string `json:"firebase_uid" validate:"required"` // Firebase UID provided by the client after Firebase Auth
}

type CreateLocalUserRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Age      int    `json:"age" validate:"omitempty,min=13,max=120"`
	Password string `json:"password" validate:"required,min=8"`
}

// UpdateUserRequest defines the request body for profile updates. SportIDs
// and GoalIDs, when present, replace the user's whole relationship set.
type UpdateUserRequest struct {
	Name     string  `json:"name,omitempty" validate:"omitempty,min=2,max=50"`
	Age      int     `json:"age,omitempty" validate:"omitempty,min=13,max=120"`
	Bio      *string `json:"bio,omitempty" validate:"omitempty,max=500"`
	Location *string `json:"location,omitempty" validate:"omitempty,max=100"`
	SportIDs *[]uint `json:"sport_ids,omitempty"`
	GoalIDs  *[]uint `json:"goal_ids,omitempty"`
}

// UserCompact is the short user representation embedded in other payloads
type UserCompact struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url,omitempty"`
	Location  string `json:"location,omitempty"`
}

// Compact returns the embeddable short form of the user
func (u *User) Compact() UserCompact {
	return UserCompact{ID: u.ID, Name: u.Name, AvatarURL: u.AvatarURL, Location: u.Location}
}

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims
type JwtCustomClaims struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}
