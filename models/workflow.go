package models

import (
	"time"
)

// WorkflowHistory is the append-only log of one-shot generation calls.
// Input holds the raw prompt, or a JSON-encoded object for multi-field
// variants; Output holds the raw result string.
type WorkflowHistory struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	TeamID    uint      `gorm:"not null;index" json:"team_id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Input     string    `gorm:"not null" json:"input"`
	Output    string    `gorm:"not null" json:"output"`
	CreatedAt time.Time `json:"created_at"`

	// Relations
	Team Team `json:"-"`
	User User `json:"-"`
}
