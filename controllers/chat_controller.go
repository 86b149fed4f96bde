package controller

import (
	"log"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"tutordesk/models"
	"tutordesk/utils"
)

type ChatController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewChatController(db *gorm.DB, logger *log.Logger) *ChatController {
	return &ChatController{
		DB:     db,
		Logger: logger,
	}
}

type ChatSummary struct {
	ID        uint   `json:"id"`
	Title     string `json:"title"`
	UpdatedAt string `json:"updated_at"`
}

// NewChat creates an empty chat for the caller's team
func (cc *ChatController) NewChat(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	team := c.Locals("team").(*models.Team)

	chat := models.Chat{
		TeamID: team.ID,
		UserID: user.ID,
		Title:  models.DefaultChatTitle,
	}
	if err := cc.DB.Create(&chat).Error; err != nil {
		cc.Logger.Printf("failed to create chat for team %d: %v", team.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create chat",
		})
	}

	return c.JSON(chat)
}

// GetChatHistory lists the team's chats, most recently updated first
func (cc *ChatController) GetChatHistory(c *fiber.Ctx) error {
	team := c.Locals("team").(*models.Team)

	var chats []models.Chat
	if err := cc.DB.Where("team_id = ?", team.ID).
		Order("updated_at DESC").
		Find(&chats).Error; err != nil {
		cc.Logger.Printf("failed to list chats for team %d: %v", team.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch chat history",
		})
	}

	return c.JSON(chats)
}

// DeleteChat removes a chat and, via the cascade, its messages
func (cc *ChatController) DeleteChat(c *fiber.Ctx) error {
	team := c.Locals("team").(*models.Team)

	chat, status, err := cc.findTeamChat(c, team.ID)
	if err != nil {
		return c.Status(status).JSON(fiber.Map{"error": err.Error()})
	}

	if err := cc.DB.Select("Messages").Delete(chat).Error; err != nil {
		cc.Logger.Printf("failed to delete chat %d: %v", chat.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete chat",
		})
	}

	user := c.Locals("user").(*models.User)
	utils.LogActivity(cc.DB, team.ID, &user.ID, utils.ActivityDeleteChat, c.IP())

	return c.JSON(fiber.Map{"success": true})
}

// GetChatMessages returns a chat's messages in creation order
func (cc *ChatController) GetChatMessages(c *fiber.Ctx) error {
	team := c.Locals("team").(*models.Team)

	chat, status, err := cc.findTeamChat(c, team.ID)
	if err != nil {
		return c.Status(status).JSON(fiber.Map{"error": err.Error()})
	}

	var messages []models.ChatMessage
	if err := cc.DB.Where("chat_id = ?", chat.ID).
		Order("created_at ASC").
		Find(&messages).Error; err != nil {
		cc.Logger.Printf("failed to fetch messages for chat %d: %v", chat.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch messages",
		})
	}

	return c.JSON(messages)
}

// findTeamChat parses the chatId param and checks team ownership. Chats of
// other teams are indistinguishable from missing ones.
func (cc *ChatController) findTeamChat(c *fiber.Ctx, teamID uint) (*models.Chat, int, error) {
	chatID, err := strconv.Atoi(c.Params("chatId"))
	if err != nil || chatID <= 0 {
		return nil, fiber.StatusBadRequest, fiber.NewError(fiber.StatusBadRequest, "Invalid chat ID")
	}

	var chat models.Chat
	if err := cc.DB.Where("id = ? AND team_id = ?", chatID, teamID).First(&chat).Error; err != nil {
		return nil, fiber.StatusNotFound, fiber.NewError(fiber.StatusNotFound, "Chat not found")
	}
	return &chat, fiber.StatusOK, nil
}
