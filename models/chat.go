package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	// DefaultChatTitle is replaced by the first user message
	DefaultChatTitle = "New Chat"

	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Chat is a multi-turn conversation owned by a team
type Chat struct {
	gorm.Model
	TeamID uint   `gorm:"not null;index" json:"team_id"`
	UserID uint   `gorm:"not null;index" json:"user_id"`
	Title  string `gorm:"size:255;not null;default:'New Chat'" json:"title"`

	// Relations
	Team     Team          `json:"-"`
	User     User          `json:"-"`
	Messages []ChatMessage `gorm:"foreignKey:ChatID;constraint:OnDelete:CASCADE" json:"messages,omitempty"`
}

// ChatMessage is one turn in a chat. Append-only, ordered by creation time.
type ChatMessage struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	ChatID    uint      `gorm:"not null;index" json:"chat_id"`
	Role      string    `gorm:"size:50;not null" json:"role"` // user, assistant
	Content   string    `gorm:"not null" json:"content"`
	CreatedAt time.Time `json:"created_at"`

	// Relations
	Chat Chat `json:"-"`
}
