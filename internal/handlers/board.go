package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"kanban/internal/config"
	"kanban/internal/database"
)

type BoardUpdateInput struct {
	Name *string `json:"name"`
}

func applyBoardUpdate(board *database.Board, in BoardUpdateInput) {
	if in.Name != nil {
		board.Name = *in.Name
	}
}

func CreateBoard(c *fiber.Ctx) error {
	db := c.Locals("db").(*gorm.DB)

	type BoardInput struct {
		Name string `json:"name" validate:"required"`
	}

	var input BoardInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid input"})
	}

	err := config.Validate.Struct(input)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	board := database.Board{Name: input.Name}
	if result := db.Create(&board); result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	return c.JSON(board)
}

func ListBoards(c *fiber.Ctx) error {
	db := c.Locals("db").(*gorm.DB)

	var boards []database.Board
	if result := db.Order("id ASC").Find(&boards); result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	return c.JSON(boards)
}

func UpdateBoard(c *fiber.Ctx) error {
	db := c.Locals("db").(*gorm.DB)

	boardID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid board ID"})
	}

	var input BoardUpdateInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid input"})
	}

	var board database.Board
	result := db.First(&board, "id = ?", boardID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Board not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	applyBoardUpdate(&board, input)

	if result := db.Save(&board); result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	return c.JSON(board)
}

// DeleteBoard removes a board; its groups and tasks go with it through
// the cascade constraints.
func DeleteBoard(c *fiber.Ctx) error {
	db := c.Locals("db").(*gorm.DB)

	boardID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid board ID"})
	}

	var board database.Board
	result := db.First(&board, "id = ?", boardID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Board not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	if result := db.Delete(&board); result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	return c.SendStatus(fiber.StatusNoContent)
}
