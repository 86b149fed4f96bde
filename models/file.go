package models

import "gorm.io/gorm"

// File is the metadata row for a document uploaded to the RAG service.
// The content itself lives upstream; FileID is the id the service issued.
type File struct {
	gorm.Model
	FileID   string `gorm:"not null;index" json:"file_id"`
	FileName string `gorm:"size:255;not null" json:"file_name"`
	FileType string `gorm:"size:50;not null;default:'pdf'" json:"file_type"`
	TeamID   uint   `gorm:"not null;index" json:"team_id"`
	UserID   uint   `gorm:"not null;index" json:"user_id"`

	// Relations
	Team Team `json:"-"`
	User User `json:"-"`
}
