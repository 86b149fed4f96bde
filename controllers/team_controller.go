package controller

import (
	"errors"
	"log"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"tutordesk/config"
	"tutordesk/models"
	"tutordesk/utils"
)

type TeamController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewTeamController(db *gorm.DB, logger *log.Logger) *TeamController {
	return &TeamController{
		DB:     db,
		Logger: logger,
	}
}

// GetTeamLimit reports the team's quota status for the upgrade banner. The
// team row is re-read so the counter reflects sends made since the session
// middleware loaded it.
func (tc *TeamController) GetTeamLimit(c *fiber.Ctx) error {
	team := c.Locals("team").(*models.Team)

	quota, err := utils.CheckMessageLimit(tc.DB, config.Tiers, team.ID)
	if err != nil {
		if errors.Is(err, utils.ErrTeamNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Team not found",
			})
		}
		tc.Logger.Printf("failed to check quota for team %d: %v", team.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch team limit",
		})
	}

	return c.JSON(fiber.Map{
		"unlimited":          quota.Unlimited,
		"remaining_messages": quota.Remaining,
		"subscription_tier":  quota.TierName,
	})
}

// GetTeam returns the team with its member list
func (tc *TeamController) GetTeam(c *fiber.Ctx) error {
	team := c.Locals("team").(*models.Team)

	var full models.Team
	if err := tc.DB.Preload("Members.User").First(&full, team.ID).Error; err != nil {
		tc.Logger.Printf("failed to load team %d: %v", team.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch team",
		})
	}

	return c.JSON(full)
}

type InviteMemberRequest struct {
	Email string `json:"email" validate:"required,email"`
	Role  string `json:"role" validate:"omitempty,oneof=owner member"`
}

// InviteMember creates a pending invitation and emails the invitee. Only
// team owners may invite.
func (tc *TeamController) InviteMember(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	team := c.Locals("team").(*models.Team)
	role := c.Locals("teamRole").(string)

	if role != "owner" {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Only team owners can invite members",
		})
	}

	var req InviteMemberRequest
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
	if req.Role == "" {
		req.Role = "member"
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	// One pending invitation per address per team
	var existing models.Invitation
	if err := tc.DB.Where("team_id = ? AND email = ? AND status = 'pending'", team.ID, req.Email).
		First(&existing).Error; err == nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "An invitation for this email is already pending",
		})
	}

	invitation := models.Invitation{
		TeamID:    team.ID,
		Email:     req.Email,
		Role:      req.Role,
		InvitedBy: user.ID,
		Status:    "pending",
	}
	if err := tc.DB.Create(&invitation).Error; err != nil {
		tc.Logger.Printf("failed to create invitation for team %d: %v", team.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create invitation",
		})
	}

	inviterName := user.Email
	if user.Name != nil && *user.Name != "" {
		inviterName = *user.Name
	}
	if err := utils.SendInvitationEmail(req.Email, team.Name, inviterName, req.Role, invitation.ID); err != nil {
		// The invitation row stands; mail delivery is best effort
		tc.Logger.Printf("failed to send invitation email to %s: %v", req.Email, err)
	}

	utils.LogActivity(tc.DB, team.ID, &user.ID, utils.ActivityInviteMember, c.IP())

	return c.Status(fiber.StatusCreated).JSON(invitation)
}

// AcceptInvitation moves the caller onto the inviting team. The invitation
// must be pending and addressed to the caller's email.
func (tc *TeamController) AcceptInvitation(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	invitationID, err := strconv.Atoi(c.Params("invitationId"))
	if err != nil || invitationID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid invitation ID",
		})
	}

	var invitation models.Invitation
	if err := tc.DB.Where("id = ? AND email = ? AND status = 'pending'", invitationID, strings.ToLower(user.Email)).
		First(&invitation).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Invitation not found",
		})
	}

	err = tc.DB.Transaction(func(tx *gorm.DB) error {
		// The user leaves their current team for the inviting one
		if err := tx.Where("user_id = ?", user.ID).Delete(&models.TeamMember{}).Error; err != nil {
			return err
		}
		membership := models.TeamMember{
			TeamID: invitation.TeamID,
			UserID: user.ID,
			Role:   invitation.Role,
		}
		if err := tx.Create(&membership).Error; err != nil {
			return err
		}
		return tx.Model(&invitation).Update("status", "accepted").Error
	})
	if err != nil {
		tc.Logger.Printf("failed to accept invitation %d: %v", invitation.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to accept invitation",
		})
	}

	utils.LogActivity(tc.DB, invitation.TeamID, &user.ID, utils.ActivityAcceptInvite, c.IP())

	return c.JSON(fiber.Map{"success": true, "team_id": invitation.TeamID})
}
