package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"kanban/internal/config"
	"kanban/internal/database"
)

type TaskUpdateInput struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	BoardID     *uint   `json:"board_id"`
	GroupID     *uint   `json:"group_id"`
	StatusID    *uint   `json:"status_id"`
	Position    *int    `json:"position"`
}

// TaskMoveInput is the restricted update used by the move endpoint.
type TaskMoveInput struct {
	BoardID  *uint `json:"board_id"`
	GroupID  *uint `json:"group_id"`
	Position *int  `json:"position"`
}

func applyTaskUpdate(task *database.Task, in TaskUpdateInput) {
	if in.Title != nil {
		task.Title = *in.Title
	}
	if in.Description != nil {
		task.Description = in.Description
	}
	if in.BoardID != nil {
		task.BoardID = *in.BoardID
	}
	if in.GroupID != nil {
		task.GroupID = in.GroupID
	}
	if in.StatusID != nil {
		task.StatusID = in.StatusID
	}
	if in.Position != nil {
		task.Position = *in.Position
	}
}

func applyTaskMove(task *database.Task, in TaskMoveInput) {
	if in.BoardID != nil {
		task.BoardID = *in.BoardID
	}
	if in.GroupID != nil {
		task.GroupID = in.GroupID
	}
	if in.Position != nil {
		task.Position = *in.Position
	}
}

func CreateTask(c *fiber.Ctx) error {
	db := c.Locals("db").(*gorm.DB)

	type TaskInput struct {
		Title       string  `json:"title" validate:"required"`
		Description *string `json:"description"`
		BoardID     uint    `json:"board_id" validate:"required"`
		GroupID     *uint   `json:"group_id"`
		StatusID    *uint   `json:"status_id"`
		Position    *int    `json:"position"`
	}

	var input TaskInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid input"})
	}

	err := config.Validate.Struct(input)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	task := database.Task{
		Title:       input.Title,
		Description: input.Description,
		BoardID:     input.BoardID,
		GroupID:     input.GroupID,
		StatusID:    input.StatusID,
	}
	if input.Position != nil {
		task.Position = *input.Position
	}

	if result := db.Create(&task); result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	return c.JSON(task)
}

// ListTasksByBoard lists all tasks on a board: ungrouped tasks first,
// then by position, then by id as a stable tie-break.
func ListTasksByBoard(c *fiber.Ctx) error {
	db := c.Locals("db").(*gorm.DB)

	boardID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid board ID"})
	}

	var tasks []database.Task
	result := db.Where("board_id = ?", boardID).
		Order("group_id ASC NULLS FIRST, position ASC, id ASC").
		Find(&tasks)
	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	return c.JSON(tasks)
}

func ListTasksByGroup(c *fiber.Ctx) error {
	db := c.Locals("db").(*gorm.DB)

	groupID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid group ID"})
	}

	var tasks []database.Task
	result := db.Where("group_id = ?", groupID).
		Order("position ASC, id ASC").
		Find(&tasks)
	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	return c.JSON(tasks)
}

func UpdateTask(c *fiber.Ctx) error {
	db := c.Locals("db").(*gorm.DB)

	taskID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid task ID"})
	}

	var input TaskUpdateInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid input"})
	}

	var task database.Task
	result := db.First(&task, "id = ?", taskID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Task not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	applyTaskUpdate(&task, input)

	if result := db.Save(&task); result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	return c.JSON(task)
}

func MoveTask(c *fiber.Ctx) error {
	db := c.Locals("db").(*gorm.DB)

	taskID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid task ID"})
	}

	var input TaskMoveInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid input"})
	}

	var task database.Task
	result := db.First(&task, "id = ?", taskID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Task not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	applyTaskMove(&task, input)

	if result := db.Save(&task); result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	return c.JSON(task)
}

func DeleteTask(c *fiber.Ctx) error {
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

	if result := db.Delete(&task); result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	return c.SendStatus(fiber.StatusNoContent)
}
