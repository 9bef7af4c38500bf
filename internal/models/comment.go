// Package models contains data structures for the application's domain models.
package models

import "time"

// Comment represents a reader's comment on a post.
// PostID is nullable in the schema; every handler that creates a
// comment sets it, so a detached comment never occurs in practice.
type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    *uint     `gorm:"index" json:"post_id,omitempty"`
	Post      *Post     `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"post,omitempty"`
	AuthorID  uint      `gorm:"not null;index" json:"author_id"`
	Author    User      `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"author"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	CreatedAt time.Time `json:"created_at"`
}
