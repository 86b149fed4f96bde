package utils

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/customer"
	"github.com/stripe/stripe-go/v76/webhook"
	"gorm.io/gorm"

	"tutordesk/config"
	"tutordesk/models"
)

// ConstructStripeEvent securely constructs and verifies a Stripe webhook event
func ConstructStripeEvent(c *fiber.Ctx) (stripe.Event, error) {
	payload := c.Body()

	signature := c.Get("Stripe-Signature")
	if signature == "" {
		logrus.Error("Missing Stripe-Signature header")
		return stripe.Event{}, fiber.NewError(fiber.StatusBadRequest, "Missing Stripe-Signature header")
	}

	// Verify the webhook signature with tolerance for clock drift
	event, err := webhook.ConstructEventWithTolerance(
		payload,
		signature,
		config.AppConfig.StripeWebhookSecret,
		5*time.Minute,
	)
	if err != nil {
		logrus.WithError(err).Error("Failed to verify webhook signature")
		return stripe.Event{}, fiber.NewError(fiber.StatusBadRequest, "Invalid webhook signature")
	}

	logrus.WithFields(logrus.Fields{
		"event_id":   event.ID,
		"event_type": event.Type,
	}).Info("Stripe webhook event verified")

	return event, nil
}

// GetOrCreateStripeCustomer returns the team's Stripe customer id, creating
// the customer on first use and persisting the id on the team row.
func GetOrCreateStripeCustomer(db *gorm.DB, team *models.Team, ownerEmail string) (string, error) {
	if team.StripeCustomerID != nil {
		return *team.StripeCustomerID, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	params := &stripe.CustomerParams{
		Params: stripe.Params{Context: ctx},
		Email:  stripe.String(ownerEmail),
		Name:   stripe.String(team.Name),
		Metadata: map[string]string{
			"team_id": strconv.Itoa(int(team.ID)),
		},
	}

	cust, err := customer.New(params)
	if err != nil {
		return "", err
	}

	team.StripeCustomerID = &cust.ID
	if err := db.Model(team).Update("stripe_customer_id", cust.ID).Error; err != nil {
		return "", err
	}
	return cust.ID, nil
}

// ApplySubscriptionToTeam syncs a subscription event onto the owning team
// row: subscription id, product id, plan name, and status. A deleted or
// unpaid subscription drops the team back to the free tier.
func ApplySubscriptionToTeam(db *gorm.DB, tiers []models.Tier, sub *stripe.Subscription) error {
	if sub.Customer == nil {
		return errors.New("subscription has no customer")
	}

	var team models.Team
	if err := db.Where("stripe_customer_id = ?", sub.Customer.ID).First(&team).Error; err != nil {
		return err
	}

	updates := map[string]interface{}{
		"subscription_status": string(sub.Status),
	}

	switch sub.Status {
	case stripe.SubscriptionStatusActive, stripe.SubscriptionStatusTrialing:
		productID := subscriptionProductID(sub)
		planName := models.FreeTier(tiers).Name
		if tier, ok := models.FindTierByProduct(tiers, productID); ok {
			planName = tier.Name
		}
		updates["stripe_subscription_id"] = sub.ID
		updates["stripe_product_id"] = productID
		updates["plan_name"] = planName
	default:
		// canceled, unpaid, incomplete_expired: back to free
		updates["stripe_subscription_id"] = nil
		updates["stripe_product_id"] = nil
		updates["plan_name"] = models.FreeTier(tiers).Name
	}

	if err := db.Model(&team).Updates(updates).Error; err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"team_id":             team.ID,
		"subscription_id":     sub.ID,
		"subscription_status": sub.Status,
	}).Info("team subscription updated")
	return nil
}

func subscriptionProductID(sub *stripe.Subscription) string {
	if sub.Items == nil || len(sub.Items.Data) == 0 {
		return ""
	}
	price := sub.Items.Data[0].Price
	if price == nil || price.Product == nil {
		return ""
	}
	return price.Product.ID
}
