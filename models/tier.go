package models

// UnlimitedMessages is the sentinel message limit for tiers with no cap
const UnlimitedMessages = -1

// Tier is a static subscription level. Tiers are configuration, not rows:
// they are loaded once at startup and never mutated afterwards. A team is
// matched to a tier by its Stripe product id.
type Tier struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	PriceMonthly int      `json:"price_monthly"` // in dollars, 0 for free
	Features     []string `json:"features"`
	MessageLimit int      `json:"message_limit"` // UnlimitedMessages means no cap

	StripeProductID string `json:"stripe_product_id"`
	StripePriceID   string `json:"stripe_price_id"`
}

// Unlimited reports whether the tier carries the no-cap sentinel
func (t Tier) Unlimited() bool {
	return t.MessageLimit == UnlimitedMessages
}

// FindTierByProduct returns the tier whose Stripe product id matches, if any
func FindTierByProduct(tiers []Tier, productID string) (Tier, bool) {
	if productID == "" {
		return Tier{}, false
	}
	for _, t := range tiers {
		if t.StripeProductID == productID {
			return t, true
		}
	}
	return Tier{}, false
}

// FreeTier returns the tier with a zero monthly price. The fallback limit
// for teams without an active subscription comes from here.
func FreeTier(tiers []Tier) Tier {
	for _, t := range tiers {
		if t.PriceMonthly == 0 {
			return t
		}
	}
	return Tier{ID: "free", Name: "Free", MessageLimit: 5}
}
