package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Post is a social feed post stored in MongoDB
type Post struct {
	ID         primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	UserID     uint               `json:"user_id" bson:"user_id"`
	Content    string             `json:"content" bson:"content"`
	ImageURL   string             `json:"image_url,omitempty" bson:"image_url,omitempty"`
	LikesCount int                `json:"likes_count" bson:"likes_count"`
	CreatedAt  time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at" bson:"updated_at"`
}

// CreatePostRequest defines the request body for creating a new post
type CreatePostRequest struct {
	Content  string `json:"content" validate:"required,min=1,max=1000"`
	ImageURL string `json:"image_url,omitempty" validate:"omitempty,url"`
}
