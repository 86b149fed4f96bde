package controller

import (
	"encoding/json"
	"log"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"tutordesk/config"
	"tutordesk/models"
	"tutordesk/utils"
)

type WorkflowController struct {
	DB     *gorm.DB
	Logger *log.Logger
	Tutor  *utils.AITutorClient
}

func NewWorkflowController(db *gorm.DB, tutor *utils.AITutorClient, logger *log.Logger) *WorkflowController {
	return &WorkflowController{
		DB:     db,
		Logger: logger,
		Tutor:  tutor,
	}
}

// RunWorkflowRequest accepts the free-form content variant or the ad
// generator variant (website + company). Exactly one applies per call.
type RunWorkflowRequest struct {
	Content string `json:"content"`
	Website string `json:"website"`
	Company string `json:"company"`
}

type adWorkflowInput struct {
	Website string `json:"website"`
	Company string `json:"company"`
}

// RunWorkflow executes a one-shot generation call. The upstream response is
// received in full before quota is consumed or history written; a failed
// call leaves both untouched.
func (wc *WorkflowController) RunWorkflow(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	team := c.Locals("team").(*models.Team)

	var req RunWorkflowRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	workflowID, payload, historyInput, err := resolveWorkflowInput(req)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	quota := utils.QuotaFor(team, config.Tiers)
	if !quota.WithinLimit {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error":              "Monthly message limit reached. Upgrade your plan for unlimited messages.",
			"remaining_messages": quota.Remaining,
		})
	}

	raw, err := wc.Tutor.RunWorkflow(c.Context(), workflowID, payload)
	if err != nil {
		return upstreamFailure(c, wc.Logger, "workflow run", err)
	}

	var data struct {
		Result string `json:"result"`
	}
	output := string(raw)
	if err := json.Unmarshal(raw, &data); err == nil && data.Result != "" {
		output = data.Result
	}

	// Upstream succeeded: consume quota, then log history
	if err := utils.IncrementMessageCount(wc.DB, team.ID, 1); err != nil {
		wc.Logger.Printf("failed to increment message count for team %d: %v", team.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal server error",
		})
	}

	history := models.WorkflowHistory{
		TeamID: team.ID,
		UserID: user.ID,
		Input:  historyInput,
		Output: output,
	}
	if err := wc.DB.Create(&history).Error; err != nil {
		wc.Logger.Printf("failed to save workflow history for team %d: %v", team.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal server error",
		})
	}

	return c.JSON(fiber.Map{
		"result": output,
		"parsed": utils.ParseWorkflowResult(output),
	})
}

// GetWorkflowHistory returns the team's recent workflow runs
func (wc *WorkflowController) GetWorkflowHistory(c *fiber.Ctx) error {
	team := c.Locals("team").(*models.Team)

	limit, err := strconv.Atoi(c.Query("limit", "10"))
	if err != nil || limit <= 0 || limit > 100 {
		limit = 10
	}

	var entries []models.WorkflowHistory
	if err := wc.DB.Where("team_id = ?", team.ID).
		Order("created_at DESC").
		Limit(limit).
		Find(&entries).Error; err != nil {
		wc.Logger.Printf("failed to fetch workflow history for team %d: %v", team.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch workflow history",
		})
	}

	return c.JSON(entries)
}

// resolveWorkflowInput picks the workflow and builds its payload plus the
// string recorded as history input. The ad variant is stored JSON-encoded.
func resolveWorkflowInput(req RunWorkflowRequest) (string, interface{}, string, error) {
	if req.Website != "" || req.Company != "" {
		if req.Website == "" || req.Company == "" {
			return "", nil, "", fiber.NewError(fiber.StatusBadRequest, "Both website and company are required")
		}
		input := adWorkflowInput{Website: req.Website, Company: req.Company}
		encoded, err := json.Marshal(input)
		if err != nil {
			return "", nil, "", err
		}
		return config.AppConfig.AdWorkflowID, input, string(encoded), nil
	}

	if req.Content == "" {
		return "", nil, "", fiber.NewError(fiber.StatusBadRequest, "Missing content parameter")
	}
	return config.AppConfig.WorkflowID, map[string]string{"content": req.Content}, req.Content, nil
}
