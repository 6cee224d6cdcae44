package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"kanban/internal/config"
	"kanban/internal/database"
	"kanban/internal/platform/storage"
)

func UploadAttachment(c *fiber.Ctx) error {
	cfg := c.Locals("config").(*config.Config)
	db := c.Locals("db").(*gorm.DB)

	storageService := storage.NewService(cfg.Storage())

	taskID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid task ID"})
	}

	var task database.Task
	result := db.First(&task, "id = ?", taskID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Task not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	file, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Missing file"})
	}

	if !storageService.IsFileExtensionAllowed(file.Filename) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "File type not allowed"})
	}

	key := storageService.GenerateKeyName()
	if err := storageService.SaveFile(file, key, c); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	attachment := database.Attachment{
		TaskID:      task.ID,
		FileName:    file.Filename,
		StorageKey:  key,
		ContentType: file.Header.Get(fiber.HeaderContentType),
		Size:        file.Size,
	}
	if result := db.Create(&attachment); result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	return c.JSON(attachment)
}

func ListAttachments(c *fiber.Ctx) error {
	db := c.Locals("db").(*gorm.DB)

	taskID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid task ID"})
	}

	var task database.Task
	result := db.First(&task, "id = ?", taskID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Task not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	var attachments []database.Attachment
	result = db.Where("task_id = ?", task.ID).Order("id ASC").Find(&attachments)
	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	return c.JSON(attachments)
}

func DeleteAttachment(c *fiber.Ctx) error {
	cfg := c.Locals("config").(*config.Config)
	db := c.Locals("db").(*gorm.DB)

	storageService := storage.NewService(cfg.Storage())

	attachmentID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid attachment ID"})
	}

	var attachment database.Attachment
	result := db.First(&attachment, "id = ?", attachmentID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Attachment not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	// Best-effort: a dangling object in the bucket is preferable to a
	// row pointing at nothing.
	if err := storageService.DeleteFile(attachment.StorageKey); err != nil {
		log.Warnf("failed to delete stored file %s: %v", attachment.StorageKey, err)
	}

	if result := db.Delete(&attachment); result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	return c.SendStatus(fiber.StatusNoContent)
}
