package models

import (
	"time"

	"gorm.io/gorm"
)

// Team is the quota and billing unit. Every content entity (chat, file,
// workflow run) belongs to exactly one team.
type Team struct {
	gorm.Model
	Name string `gorm:"not null" json:"name"`

	// Stripe integration
	StripeCustomerID     *string `gorm:"uniqueIndex" json:"stripe_customer_id,omitempty"`
	StripeSubscriptionID *string `gorm:"uniqueIndex" json:"stripe_subscription_id,omitempty"`
	StripeProductID      *string `json:"stripe_product_id,omitempty"`
	PlanName             string  `gorm:"default:'Free'" json:"plan_name"`
	SubscriptionStatus   string  `json:"subscription_status"` // active, trialing, canceled, unpaid

	// Messages consumed this billing cycle. Incremented atomically, never
	// decremented in-process; the cycle reset is an operational concern.
	CurrentMessages int `gorm:"default:0" json:"current_messages"`

	// Relations
	Members   []TeamMember      `gorm:"foreignKey:TeamID" json:"members,omitempty"`
	Chats     []Chat            `gorm:"foreignKey:TeamID" json:"chats,omitempty"`
	Files     []File            `gorm:"foreignKey:TeamID" json:"files,omitempty"`
	Workflows []WorkflowHistory `gorm:"foreignKey:TeamID" json:"workflows,omitempty"`
}

// TeamMember represents team members and their roles
type TeamMember struct {
	gorm.Model
	TeamID uint `gorm:"not null;index" json:"team_id"`
	UserID uint `gorm:"not null;index" json:"user_id"`

	Role string `gorm:"default:'member'" json:"role"` // owner, member

	// Relations
	Team Team `json:"-"`
	User User `json:"-"`
}

// Invitation is a pending offer to join a team, delivered by email.
type Invitation struct {
	gorm.Model
	TeamID    uint   `gorm:"not null;index" json:"team_id"`
	Email     string `gorm:"not null" json:"email"`
	Role      string `gorm:"default:'member'" json:"role"`
	InvitedBy uint   `gorm:"not null" json:"invited_by"`
	Status    string `gorm:"default:'pending'" json:"status"` // pending, accepted, revoked

	// Relations
	Team Team `json:"-"`
}

// ActivityLog records notable team-scoped actions for the audit trail
type ActivityLog struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	TeamID    uint      `gorm:"not null;index" json:"team_id"`
	UserID    *uint     `json:"user_id,omitempty"`
	Action    string    `gorm:"not null" json:"action"`
	IPAddress string    `json:"ip_address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
