package routes

import (
	"log"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"gorm.io/gorm"

	"tutordesk/config"
	controller "tutordesk/controllers"
	"tutordesk/middleware"
	"tutordesk/utils"
)

func SetupAuthRoutes(app *fiber.App, db *gorm.DB) {
	// Auth routes group with logging middleware
	auth := app.Group("/auth", logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	// Public auth endpoints (no authentication required)
	auth.Post("/register", controller.Register)
	auth.Post("/login", controller.Login)
	auth.Post("/refresh", controller.RefreshToken)

	// Google OAuth routes
	auth.Get("/google", controller.GoogleOAuth)
	auth.Get("/google/callback", controller.GoogleOAuthCallback)

	// Protected auth endpoints (require valid JWT)
	protectedAuth := auth.Group("", middleware.Protected())
	protectedAuth.Post("/logout", controller.Logout)
	protectedAuth.Post("/change-password", controller.ChangePassword)
	protectedAuth.Get("/me", controller.GetCurrentUser)
}

func SetupAPIRoutes(app *fiber.App, db *gorm.DB) {
	// Shared upstream clients
	tutorClient := utils.NewAITutorClient(config.AppConfig.AITutorBaseURL, config.AppConfig.AITutorAPIKey)
	ragClient := utils.NewRAGClient(config.AppConfig.RAGBaseURL, config.AppConfig.RAGAPIKey)

	// Initialize controllers with their respective loggers
	chatController := controller.NewChatController(db, log.New(os.Stdout, "CHAT: ", log.LstdFlags))
	messageController := controller.NewMessageController(db, tutorClient, ragClient, log.New(os.Stdout, "MESSAGE: ", log.LstdFlags))
	fileController := controller.NewFileController(db, ragClient, log.New(os.Stdout, "FILE: ", log.LstdFlags))
	workflowController := controller.NewWorkflowController(db, tutorClient, log.New(os.Stdout, "WORKFLOW: ", log.LstdFlags))
	teamController := controller.NewTeamController(db, log.New(os.Stdout, "TEAM: ", log.LstdFlags))
	billingController := controller.NewBillingController(db, log.New(os.Stdout, "BILLING: ", log.LstdFlags))

	// Stripe webhook is signed, not session-authenticated
	app.Post("/billing/webhook", billingController.HandleBillingWebhook)

	// API group with versioning and protection
	api := app.Group("/api/v1", middleware.Protected(), middleware.WithTeam(), logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	// Chat routes
	chat := api.Group("/chat")
	chat.Post("/new", chatController.NewChat)
	chat.Get("/history", chatController.GetChatHistory)
	chat.Delete("/:chatId", chatController.DeleteChat)
	chat.Get("/:chatId/messages", chatController.GetChatMessages)
	chat.Post("/:chatId/message", middleware.MessageRateLimiter(), messageController.SendMessage)

	// File routes
	files := api.Group("/files")
	files.Post("/upload", fileController.UploadFile)
	files.Get("/", fileController.GetFiles)
	files.Delete("/:fileId", fileController.DeleteFile)

	// Workflow routes
	api.Post("/run", middleware.MessageRateLimiter(), workflowController.RunWorkflow)
	api.Get("/workflow/history", workflowController.GetWorkflowHistory)

	// Team routes
	team := api.Group("/team")
	team.Get("/", teamController.GetTeam)
	team.Get("/limit", teamController.GetTeamLimit)
	team.Post("/invite", teamController.InviteMember)
	team.Post("/invitations/:invitationId/accept", teamController.AcceptInvitation)

	// Chatbot token issuance
	api.Post("/token", messageController.GetChatToken)

	// Billing routes
	billing := api.Group("/billing")
	billing.Post("/checkout", billingController.CreateCheckoutSession)
	billing.Post("/portal", billingController.CreateBillingPortal)

	log.Println("API routes initialized successfully")
}

func SetupRoutes(app *fiber.App, db *gorm.DB) {
	// Initialize Stripe and Google OAuth
	controller.InitStripe()
	controller.InitGoogleOAuth()

	// Health check endpoints. Registered before the 404 fallback: fiber
	// matches handlers in registration order.
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "running",
			"version": "1.0.0",
		})
	})
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Setup auth routes
	SetupAuthRoutes(app, db)

	// Setup API routes
	SetupAPIRoutes(app, db)

	// Setup 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error":   "Not Found",
			"message": "The requested resource was not found",
		})
	})
}
