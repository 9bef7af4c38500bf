// Package models contains data structures for the application's domain models.
package models

// Group represents a community that posts can be published under.
type Group struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Title       string `gorm:"not null" json:"title"`
	Slug        string `gorm:"uniqueIndex;not null" json:"slug"`
	Description string `gorm:"type:text" json:"description"`
	Posts       []Post `gorm:"foreignKey:GroupID;constraint:OnDelete:SET NULL" json:"posts,omitempty"`
}
