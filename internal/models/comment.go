package models

import (
	"time"

	"gorm.io/gorm"
)

// Comment represents a comment on a post. UserName is captured from the
// commenter's token at creation time and is intentionally not updated if the
// user later renames. Comments are immutable except for deletion.
type Comment struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Text      string         `gorm:"not null" json:"text"`
	UserName  string         `gorm:"not null" json:"user_name"`
	UserID    uint           `gorm:"not null;index" json:"user_id"`
	PostID    uint           `gorm:"not null;index" json:"post_id"`
	CreatedAt time.Time      `json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
