package controller

import (
	"log"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"tutordesk/models"
	"tutordesk/utils"
)

type FileController struct {
	DB     *gorm.DB
	Logger *log.Logger
	RAG    *utils.RAGClient
}

func NewFileController(db *gorm.DB, rag *utils.RAGClient, logger *log.Logger) *FileController {
	return &FileController{
		DB:     db,
		Logger: logger,
		RAG:    rag,
	}
}

// UploadFile validates the document locally, forwards it to the retrieval
// service, and records the issued file id. Validation failures never reach
// the external service.
func (fc *FileController) UploadFile(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	team := c.Locals("team").(*models.Team)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No file provided",
		})
	}

	if fileHeader.Header.Get("Content-Type") != "application/pdf" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid file type. Only PDF files are supported",
		})
	}
	if fileHeader.Size > utils.MaxUploadSize {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "File size exceeds maximum limit of 10MB",
		})
	}

	content, err := fileHeader.Open()
	if err != nil {
		fc.Logger.Printf("failed to open uploaded file: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to read uploaded file",
		})
	}
	defer content.Close()

	fileID, err := fc.RAG.UploadFile(c.Context(), fileHeader.Filename, content)
	if err != nil {
		return upstreamFailure(c, fc.Logger, "file upload", err)
	}

	file := models.File{
		FileID:   fileID,
		FileName: fileHeader.Filename,
		FileType: "pdf",
		TeamID:   team.ID,
		UserID:   user.ID,
	}
	if err := fc.DB.Create(&file).Error; err != nil {
		fc.Logger.Printf("failed to save file record for team %d: %v", team.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to save file",
		})
	}

	return c.JSON(fiber.Map{
		"id":         file.ID,
		"file_id":    file.FileID,
		"file_name":  file.FileName,
		"file_type":  file.FileType,
		"created_at": file.CreatedAt,
	})
}

// GetFiles lists the team's uploaded documents, newest first
func (fc *FileController) GetFiles(c *fiber.Ctx) error {
	team := c.Locals("team").(*models.Team)

	var files []models.File
	if err := fc.DB.Where("team_id = ?", team.ID).
		Order("created_at DESC").
		Find(&files).Error; err != nil {
		fc.Logger.Printf("failed to list files for team %d: %v", team.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch files",
		})
	}

	return c.JSON(files)
}

// DeleteFile removes the metadata row. The upstream copy is left to the
// retrieval service's own retention.
func (fc *FileController) DeleteFile(c *fiber.Ctx) error {
	team := c.Locals("team").(*models.Team)

	fileID, err := strconv.Atoi(c.Params("fileId"))
	if err != nil || fileID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid file ID",
		})
	}

	var file models.File
	if err := fc.DB.Where("id = ? AND team_id = ?", fileID, team.ID).First(&file).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "File not found",
		})
	}

	if err := fc.DB.Delete(&file).Error; err != nil {
		fc.Logger.Printf("failed to delete file %d: %v", file.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete file",
		})
	}

	user := c.Locals("user").(*models.User)
	utils.LogActivity(fc.DB, team.ID, &user.ID, utils.ActivityDeleteFile, c.IP())

	return c.JSON(fiber.Map{"success": true})
}
