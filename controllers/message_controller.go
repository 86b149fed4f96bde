package controller

import (
	"bufio"
	"context"
	"errors"
	"log"
	"strconv"

	"github.com/getsentry/sentry-go"
	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
	"gorm.io/gorm"

	"tutordesk/config"
	"tutordesk/models"
	"tutordesk/utils"
)

// titleMaxRunes bounds the auto-generated chat title
const titleMaxRunes = 30

type MessageController struct {
	DB     *gorm.DB
	Logger *log.Logger
	Tutor  *utils.AITutorClient
	RAG    *utils.RAGClient
}

func NewMessageController(db *gorm.DB, tutor *utils.AITutorClient, rag *utils.RAGClient, logger *log.Logger) *MessageController {
	return &MessageController{
		DB:     db,
		Logger: logger,
		Tutor:  tutor,
		RAG:    rag,
	}
}

type SendMessageRequest struct {
	Messages []utils.ChatTurn `json:"messages"`
	FileID   string           `json:"fileId"`
}

// SendMessage runs the full chat pipeline for one request: quota check,
// prompt build (document-grounded when a file is attached), upstream call,
// and the streamed relay back to the client. Quota is consumed and history
// written only once the upstream call has succeeded.
func (mc *MessageController) SendMessage(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	team := c.Locals("team").(*models.Team)

	chatID, err := strconv.Atoi(c.Params("chatId"))
	if err != nil || chatID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid chat ID",
		})
	}

	// Quota gate before any external work
	quota := utils.QuotaFor(team, config.Tiers)
	if !quota.WithinLimit {
		return c.Status(fiber.StatusPaymentRequired).JSON(fiber.Map{
			"error":              "Message limit reached",
			"remaining_messages": quota.Remaining,
		})
	}

	var chat models.Chat
	if err := mc.DB.Where("id = ? AND team_id = ?", chatID, team.ID).First(&chat).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Chat not found",
		})
	}

	var req SendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if len(req.Messages) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid message format",
		})
	}
	lastMessage := req.Messages[len(req.Messages)-1]
	if lastMessage.Role != models.RoleUser || lastMessage.Content == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid message format",
		})
	}

	// Build the outbound prompt: the last user message is replaced either
	// with the document-grounded template or the standard one.
	prompt, status, err := mc.buildPrompt(c.Context(), team.ID, req.FileID, lastMessage.Content)
	if err != nil {
		return c.Status(status).JSON(fiber.Map{"error": err.Error()})
	}

	outbound := make([]utils.ChatTurn, len(req.Messages))
	copy(outbound, req.Messages)
	outbound[len(outbound)-1] = utils.ChatTurn{Role: models.RoleUser, Content: prompt}

	// The stream outlives this handler, so the upstream call is anchored to
	// the background context; client disconnects cancel the relay instead.
	body, err := mc.Tutor.ChatStream(context.Background(), config.AppConfig.AITutorToken, outbound)
	if err != nil {
		return upstreamFailure(c, mc.Logger, "chat stream", err)
	}

	// Upstream accepted the request: record the user turn, title, and quota
	// before the relay starts.
	if err := mc.recordUserTurn(&chat, team.ID, lastMessage.Content); err != nil {
		body.Close()
		mc.Logger.Printf("failed to record user turn for chat %d: %v", chat.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to save message",
		})
	}

	relay := utils.NewStreamRelay(context.Background(), body)

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set("Connection", "keep-alive")

	chatRef := chat.ID
	userRef := user.ID
	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		for chunk := range relay.Chunks() {
			if _, err := w.Write(chunk); err != nil {
				relay.Cancel()
				drain(relay)
				return
			}
			if err := w.Flush(); err != nil {
				// Client went away: stop reading upstream
				relay.Cancel()
				drain(relay)
				return
			}
		}

		if err := relay.Err(); err != nil {
			// Failed mid-stream: nothing is persisted
			mc.Logger.Printf("stream relay failed for chat %d (user %d): %v", chatRef, userRef, err)
			sentry.CaptureException(err)
			return
		}

		cleaned := utils.CleanStreamResponse(relay.Text())
		if cleaned == "" {
			return
		}
		message := models.ChatMessage{
			ChatID:  chatRef,
			Role:    models.RoleAssistant,
			Content: cleaned,
		}
		if err := mc.DB.Create(&message).Error; err != nil {
			mc.Logger.Printf("failed to persist assistant message for chat %d: %v", chatRef, err)
			sentry.CaptureException(err)
		}
	}))

	return nil
}

// GetChatToken issues an opaque chatbot token from the upstream API. The
// response body is proxied verbatim.
func (mc *MessageController) GetChatToken(c *fiber.Ctx) error {
	body, err := mc.Tutor.IssueChatToken(c.Context(), config.AppConfig.ChatbotID, utils.NewSessionID())
	if err != nil {
		return upstreamFailure(c, mc.Logger, "token issuance", err)
	}

	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(body)
}

// buildPrompt resolves the outbound prompt text. With a file attached the
// file must belong to the requesting team and the retrieval service must
// return at least one chunk; there is no silent fallback to the plain path.
func (mc *MessageController) buildPrompt(ctx context.Context, teamID uint, fileID, query string) (string, int, error) {
	if fileID == "" {
		return utils.BuildStandardPrompt(query), fiber.StatusOK, nil
	}

	var file models.File
	if err := mc.DB.Where("file_id = ? AND team_id = ?", fileID, teamID).First(&file).Error; err != nil {
		return "", fiber.StatusNotFound, errors.New("File not found")
	}

	docs, err := mc.RAG.QueryEmbeddings(ctx, query, fileID)
	if err != nil {
		if errors.Is(err, utils.ErrNoRelevantContent) {
			return "", fiber.StatusNotFound, err
		}
		var upstream *utils.UpstreamError
		if errors.As(err, &upstream) {
			mc.Logger.Printf("RAG query failed for file %s: %v", fileID, err)
			return "", upstream.StatusCode, errors.New("Failed to process document query")
		}
		mc.Logger.Printf("RAG query failed for file %s: %v", fileID, err)
		return "", fiber.StatusInternalServerError, errors.New("Failed to process document query")
	}

	return utils.BuildDocumentPrompt(file.FileName, docs, query), fiber.StatusOK, nil
}

// recordUserTurn persists the user message, refreshes the chat timestamp,
// sets the title on first use, and consumes one quota unit.
func (mc *MessageController) recordUserTurn(chat *models.Chat, teamID uint, content string) error {
	err := mc.DB.Transaction(func(tx *gorm.DB) error {
		message := models.ChatMessage{
			ChatID:  chat.ID,
			Role:    models.RoleUser,
			Content: content,
		}
		if err := tx.Create(&message).Error; err != nil {
			return err
		}

		updates := map[string]interface{}{"updated_at": gorm.Expr("NOW()")}
		if chat.Title == models.DefaultChatTitle {
			updates["title"] = truncateTitle(content)
		}
		return tx.Model(chat).Updates(updates).Error
	})
	if err != nil {
		return err
	}

	return utils.IncrementMessageCount(mc.DB, teamID, 1)
}

func truncateTitle(content string) string {
	runes := []rune(content)
	if len(runes) <= titleMaxRunes {
		return content
	}
	return string(runes[:titleMaxRunes]) + "..."
}

// drain empties the relay channel after cancellation so the pump goroutine
// is never left blocked on a send.
func drain(relay *utils.StreamRelay) {
	for range relay.Chunks() {
	}
}

// upstreamFailure converts an external-service error into the client
// response, passing through the upstream status code when one is known.
func upstreamFailure(c *fiber.Ctx, logger *log.Logger, operation string, err error) error {
	var upstream *utils.UpstreamError
	if errors.As(err, &upstream) {
		logger.Printf("%s failed with status %d: %v", operation, upstream.StatusCode, err)
		message := upstream.Message
		if message == "" {
			message = "AI service returned an error"
		}
		return c.Status(upstream.StatusCode).JSON(fiber.Map{"error": message})
	}

	logger.Printf("%s failed: %v", operation, err)
	return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
		"error": "AI service is unavailable",
	})
}
