package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"kanban/internal/config"
	"kanban/internal/database"
)

type GroupUpdateInput struct {
	Name     *string `json:"name"`
	Position *int    `json:"position"`
}

func applyGroupUpdate(group *database.Group, in GroupUpdateInput) {
	if in.Name != nil {
		group.Name = *in.Name
	}
	if in.Position != nil {
		group.Position = *in.Position
	}
}

func CreateGroup(c *fiber.Ctx) error {
	db := c.Locals("db").(*gorm.DB)

	type GroupInput struct {
		Name     string `json:"name" validate:"required"`
		BoardID  uint   `json:"board_id" validate:"required"`
		Position *int   `json:"position"`
	}

	var input GroupInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid input"})
	}

	err := config.Validate.Struct(input)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	group := database.Group{
		Name:    input.Name,
		BoardID: input.BoardID,
	}
	if input.Position != nil {
		group.Position = *input.Position
	}

	if result := db.Create(&group); result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	return c.JSON(group)
}

func ListGroupsByBoard(c *fiber.Ctx) error {
	db := c.Locals("db").(*gorm.DB)

	boardID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid board ID"})
	}

	var groups []database.Group
	result := db.Where("board_id = ?", boardID).Order("position ASC").Find(&groups)
	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	return c.JSON(groups)
}

func UpdateGroup(c *fiber.Ctx) error {
	db := c.Locals("db").(*gorm.DB)

	groupID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid group ID"})
	}

	var input GroupUpdateInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid input"})
	}

	var group database.Group
	result := db.First(&group, "id = ?", groupID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Group not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	applyGroupUpdate(&group, input)

	if result := db.Save(&group); result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	return c.JSON(group)
}

// DeleteGroup removes a group; its tasks are detached (group_id set to
// NULL), not deleted.
func DeleteGroup(c *fiber.Ctx) error {
	db := c.Locals("db").(*gorm.DB)

	groupID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid group ID"})
	}

	var group database.Group
	result := db.First(&group, "id = ?", groupID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Group not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	if result := db.Delete(&group); result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	return c.SendStatus(fiber.StatusNoContent)
}
