package utils

import (
	"errors"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"tutordesk/models"
)

// ErrTeamNotFound is returned when a quota check references an unknown team
var ErrTeamNotFound = errors.New("team not found")

// QuotaStatus is the result of a message-limit check for one team
type QuotaStatus struct {
	WithinLimit bool   `json:"within_limit"`
	Unlimited   bool   `json:"unlimited"`
	Remaining   int    `json:"remaining_messages"`
	TierName    string `json:"subscription_tier"`
}

// ResolveMessageLimit computes the effective monthly message limit for a
// team. A team with an active subscription whose Stripe product matches a
// configured tier gets that tier's limit; everything else falls back to the
// free tier. The returned limit may be models.UnlimitedMessages.
func ResolveMessageLimit(team *models.Team, tiers []models.Tier) (int, string) {
	free := models.FreeTier(tiers)

	if team.StripeSubscriptionID == nil || team.StripeProductID == nil {
		return free.MessageLimit, free.Name
	}

	tier, ok := models.FindTierByProduct(tiers, *team.StripeProductID)
	if !ok {
		return free.MessageLimit, free.Name
	}
	return tier.MessageLimit, tier.Name
}

// QuotaFor evaluates a team's quota against the tier list without touching
// the database. Remaining is limit minus consumed; the unlimited sentinel
// always satisfies the check.
func QuotaFor(team *models.Team, tiers []models.Tier) QuotaStatus {
	limit, tierName := ResolveMessageLimit(team, tiers)

	if limit == models.UnlimitedMessages {
		return QuotaStatus{
			WithinLimit: true,
			Unlimited:   true,
			Remaining:   0,
			TierName:    tierName,
		}
	}

	remaining := limit - team.CurrentMessages
	return QuotaStatus{
		WithinLimit: remaining > 0,
		Remaining:   remaining,
		TierName:    tierName,
	}
}

// CheckMessageLimit loads the team row and evaluates its quota
func CheckMessageLimit(db *gorm.DB, tiers []models.Tier, teamID uint) (QuotaStatus, error) {
	var team models.Team
	if err := db.First(&team, teamID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return QuotaStatus{}, ErrTeamNotFound
		}
		return QuotaStatus{}, err
	}
	return QuotaFor(&team, tiers), nil
}

// IncrementMessageCount adds n to the team's consumed-message counter as a
// single relative UPDATE. Concurrent increments for the same team must not
// lose updates, so the arithmetic happens in the database, never in Go.
func IncrementMessageCount(db *gorm.DB, teamID uint, n int) error {
	result := db.Model(&models.Team{}).
		Where("id = ?", teamID).
		UpdateColumn("current_messages", gorm.Expr("current_messages + ?", n))
	if result.Error != nil {
		logrus.WithFields(logrus.Fields{
			"team_id": teamID,
			"count":   n,
		}).WithError(result.Error).Error("failed to increment message count")
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTeamNotFound
	}
	return nil
}
