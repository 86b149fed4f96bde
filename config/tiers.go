package config

import "tutordesk/models"

// LoadTiers builds the static tier list. Product and price ids come from the
// environment so the same binary can point at test or live Stripe data. The
// returned slice is set once into config.Tiers and treated as immutable.
func LoadTiers() []models.Tier {
	return []models.Tier{
		{
			ID:           "free",
			Name:         "Free",
			Description:  "For individuals trying things out.",
			PriceMonthly: 0,
			Features: []string{
				"5 messages per month",
				"Basic features",
			},
			MessageLimit: 5,
		},
		{
			ID:           "starter",
			Name:         "Starter",
			Description:  "For small teams who need to collaborate.",
			PriceMonthly: 10,
			Features: []string{
				"100 messages per month",
				"All Free tier features",
				"Priority support",
			},
			MessageLimit:    100,
			StripeProductID: getEnv("TIER_STARTER_PRODUCT_ID", ""),
			StripePriceID:   getEnv("TIER_STARTER_PRICE_ID", ""),
		},
		{
			ID:           "pro",
			Name:         "Pro",
			Description:  "For large teams who need advanced features.",
			PriceMonthly: 30,
			Features: []string{
				"Unlimited messages",
				"All Starter tier features",
				"Dedicated account manager",
			},
			MessageLimit:    models.UnlimitedMessages,
			StripeProductID: getEnv("TIER_PRO_PRODUCT_ID", ""),
			StripePriceID:   getEnv("TIER_PRO_PRICE_ID", ""),
		},
	}
}
