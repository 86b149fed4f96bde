package models

import (
	"gorm.io/gorm"
)

// User represents a user account in the system
type User struct {
	gorm.Model

	// Authentication fields
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`

	// Google OAuth fields
	GoogleID       *string `gorm:"uniqueIndex" json:"google_id,omitempty"`
	GoogleImageURL *string `json:"google_image_url,omitempty"`

	// Profile information
	Name *string `json:"name,omitempty"`

	// Account status
	IsActive bool `gorm:"default:true" json:"is_active"`

	// Bumped on logout and password change to invalidate outstanding tokens
	TokenVersion int `gorm:"default:0" json:"-"`

	// Relations
	Memberships []TeamMember      `gorm:"foreignKey:UserID" json:"memberships,omitempty"`
	Chats       []Chat            `gorm:"foreignKey:UserID" json:"chats,omitempty"`
	Files       []File            `gorm:"foreignKey:UserID" json:"files,omitempty"`
	Workflows   []WorkflowHistory `gorm:"foreignKey:UserID" json:"workflows,omitempty"`
}
