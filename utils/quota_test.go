package utils

import (
	"testing"

	"tutordesk/models"
)

func testTiers() []models.Tier {
	return []models.Tier{
		{ID: "free", Name: "Free", PriceMonthly: 0, MessageLimit: 5},
		{ID: "starter", Name: "Starter", PriceMonthly: 10, MessageLimit: 100, StripeProductID: "prod_starter"},
		{ID: "pro", Name: "Pro", PriceMonthly: 30, MessageLimit: models.UnlimitedMessages, StripeProductID: "prod_pro"},
	}
}

func strPtr(s string) *string { return &s }

func TestResolveMessageLimit(t *testing.T) {
	tiers := testTiers()

	cases := []struct {
		name      string
		team      models.Team
		wantLimit int
		wantTier  string
	}{
		{
			name:      "no subscription falls back to free",
			team:      models.Team{CurrentMessages: 0},
			wantLimit: 5,
			wantTier:  "Free",
		},
		{
			name: "starter product",
			team: models.Team{
				StripeSubscriptionID: strPtr("sub_1"),
				StripeProductID:      strPtr("prod_starter"),
			},
			wantLimit: 100,
			wantTier:  "Starter",
		},
		{
			name: "pro product is unlimited",
			team: models.Team{
				StripeSubscriptionID: strPtr("sub_2"),
				StripeProductID:      strPtr("prod_pro"),
			},
			wantLimit: models.UnlimitedMessages,
			wantTier:  "Pro",
		},
		{
			name: "unknown product falls back to free",
			team: models.Team{
				StripeSubscriptionID: strPtr("sub_3"),
				StripeProductID:      strPtr("prod_stale"),
			},
			wantLimit: 5,
			wantTier:  "Free",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			limit, tier := ResolveMessageLimit(&tc.team, tiers)
			if limit != tc.wantLimit || tier != tc.wantTier {
				t.Errorf("got (%d, %q), want (%d, %q)", limit, tier, tc.wantLimit, tc.wantTier)
			}
		})
	}
}

func TestQuotaForUnlimited(t *testing.T) {
	team := models.Team{
		StripeSubscriptionID: strPtr("sub_1"),
		StripeProductID:      strPtr("prod_pro"),
		CurrentMessages:      1_000_000,
	}

	status := QuotaFor(&team, testTiers())
	if !status.WithinLimit {
		t.Error("unlimited tier should always be within limit")
	}
	if !status.Unlimited {
		t.Error("expected Unlimited to be set")
	}
}

func TestQuotaForRemaining(t *testing.T) {
	cases := []struct {
		name          string
		consumed      int
		wantRemaining int
		wantWithin    bool
	}{
		{name: "fresh team", consumed: 0, wantRemaining: 5, wantWithin: true},
		{name: "one left", consumed: 4, wantRemaining: 1, wantWithin: true},
		{name: "exhausted", consumed: 5, wantRemaining: 0, wantWithin: false},
		{name: "over the cap", consumed: 7, wantRemaining: -2, wantWithin: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			team := models.Team{CurrentMessages: tc.consumed}
			status := QuotaFor(&team, testTiers())
			if status.Remaining != tc.wantRemaining {
				t.Errorf("Remaining = %d, want %d", status.Remaining, tc.wantRemaining)
			}
			if status.WithinLimit != tc.wantWithin {
				t.Errorf("WithinLimit = %v, want %v", status.WithinLimit, tc.wantWithin)
			}
			if status.Unlimited {
				t.Error("free tier must not report Unlimited")
			}
		})
	}
}

func TestFreeTierFallbackWithoutConfiguredTiers(t *testing.T) {
	team := models.Team{}
	status := QuotaFor(&team, nil)
	if status.Remaining != 5 {
		t.Errorf("Remaining = %d, want built-in free limit 5", status.Remaining)
	}
	if status.TierName != "Free" {
		t.Errorf("TierName = %q, want %q", status.TierName, "Free")
	}
}
