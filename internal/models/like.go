package models

import "gorm.io/gorm"

// Like represents a like on a post. PostID is the MongoDB ObjectID hex of
// the liked post. The unique index keeps one like per user per post.
type Like struct {
	gorm.Model `json:"-"`
	ID         uint   `json:"id" gorm:"primaryKey"`
	PostID     string `json:"post_id" gorm:"index;uniqueIndex:idx_post_user_like"`
	UserID     uint   `json:"user_id" gorm:"index;uniqueIndex:idx_post_user_like"`
}
