package handlers

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"kanban/internal/database"
)

func GetCurrentUser(c *fiber.Ctx) error {
	user := c.Locals("user").(database.User)

	return c.JSON(user)
}

func ListUsers(c *fiber.Ctx) error {
	db := c.Locals("db").(*gorm.DB)

	var users []database.User
	result := db.Order("id ASC").Find(&users)
	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	return c.JSON(users)
}
