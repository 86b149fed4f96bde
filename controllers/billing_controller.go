package controller

import (
	"encoding/json"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/stripe/stripe-go/v76"
	portalsession "github.com/stripe/stripe-go/v76/billingportal/session"
	checkoutsession "github.com/stripe/stripe-go/v76/checkout/session"
	"github.com/stripe/stripe-go/v76/subscription"
	"gorm.io/gorm"

	"tutordesk/config"
	"tutordesk/models"
	"tutordesk/utils"
)

func InitStripe() {
	stripe.Key = config.AppConfig.StripeSecretKey
}

type BillingController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewBillingController(db *gorm.DB, logger *log.Logger) *BillingController {
	return &BillingController{
		DB:     db,
		Logger: logger,
	}
}

type CheckoutRequest struct {
	TierID string `json:"tier_id" validate:"required"`
}

// CreateCheckoutSession starts a subscription checkout for a paid tier and
// returns the hosted checkout URL.
func (bc *BillingController) CreateCheckoutSession(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	team := c.Locals("team").(*models.Team)

	var req CheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if err := utils.ValidateStruct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	var tier *models.Tier
	for i := range config.Tiers {
		if config.Tiers[i].ID == req.TierID {
			tier = &config.Tiers[i]
			break
		}
	}
	if tier == nil || tier.StripePriceID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unknown or non-purchasable tier",
		})
	}

	customerID, err := utils.GetOrCreateStripeCustomer(bc.DB, team, user.Email)
	if err != nil {
		bc.Logger.Printf("failed to resolve Stripe customer for team %d: %v", team.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to start checkout",
		})
	}

	params := &stripe.CheckoutSessionParams{
		Customer: stripe.String(customerID),
		Mode:     stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(tier.StripePriceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(config.AppConfig.AppBaseURL + "/dashboard?checkout=success"),
		CancelURL:  stripe.String(config.AppConfig.AppBaseURL + "/pricing?checkout=canceled"),
	}

	sess, err := checkoutsession.New(params)
	if err != nil {
		bc.Logger.Printf("failed to create checkout session for team %d: %v", team.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to start checkout",
		})
	}

	return c.JSON(fiber.Map{"url": sess.URL})
}

// CreateBillingPortal returns a Stripe billing portal URL for the team
func (bc *BillingController) CreateBillingPortal(c *fiber.Ctx) error {
	team := c.Locals("team").(*models.Team)

	if team.StripeCustomerID == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Team has no billing account",
		})
	}

	params := &stripe.BillingPortalSessionParams{
		Customer:  team.StripeCustomerID,
		ReturnURL: stripe.String(config.AppConfig.AppBaseURL + "/dashboard"),
	}

	sess, err := portalsession.New(params)
	if err != nil {
		bc.Logger.Printf("failed to create billing portal for team %d: %v", team.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to open billing portal",
		})
	}

	return c.JSON(fiber.Map{"url": sess.URL})
}

// HandleBillingWebhook processes subscription lifecycle events from Stripe.
// Signature verification happens before any payload field is trusted.
func (bc *BillingController) HandleBillingWebhook(c *fiber.Ctx) error {
	event, err := utils.ConstructStripeEvent(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid webhook payload",
		})
	}

	switch event.Type {
	case "checkout.session.completed":
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Error parsing checkout session",
			})
		}
		if sess.Subscription == nil {
			return c.SendStatus(fiber.StatusOK)
		}
		// The embedded subscription only carries an id; fetch the full object
		sub, err := subscription.Get(sess.Subscription.ID, nil)
		if err != nil {
			bc.Logger.Printf("failed to fetch subscription %s: %v", sess.Subscription.ID, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to fetch subscription",
			})
		}
		return bc.applySubscription(c, sub)

	case "customer.subscription.created",
		"customer.subscription.updated",
		"customer.subscription.deleted":
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Error parsing subscription",
			})
		}
		return bc.applySubscription(c, &sub)

	default:
		return c.SendStatus(fiber.StatusOK)
	}
}

func (bc *BillingController) applySubscription(c *fiber.Ctx, sub *stripe.Subscription) error {
	if err := utils.ApplySubscriptionToTeam(bc.DB, config.Tiers, sub); err != nil {
		bc.Logger.Printf("failed to apply subscription %s: %v", sub.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update team subscription",
		})
	}
	return c.SendStatus(fiber.StatusOK)
}
