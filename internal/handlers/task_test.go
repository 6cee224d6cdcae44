package handlers

import (
	"testing"

	"kanban/internal/database"
)

func uintPtr(v uint) *uint    { return &v }
func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }

func TestApplyTaskUpdatePartial(t *testing.T) {
	group := uintPtr(2)
	task := database.Task{
		ID:       1,
		Title:    "Write report",
		BoardID:  1,
		GroupID:  group,
		Position: 3,
	}

	// Only the title is present; everything else must stay untouched.
	applyTaskUpdate(&task, TaskUpdateInput{Title: strPtr("Write summary")})

	if task.Title != "Write summary" {
		t.Errorf("title = %q; want %q", task.Title, "Write summary")
	}
	if task.Position != 3 {
		t.Errorf("position = %d; want 3", task.Position)
	}
	if task.GroupID == nil || *task.GroupID != 2 {
		t.Errorf("group = %v; want 2", task.GroupID)
	}
	if task.BoardID != 1 {
		t.Errorf("board = %d; want 1", task.BoardID)
	}
}

func TestApplyTaskUpdateExplicitZero(t *testing.T) {
	task := database.Task{ID: 1, Title: "Write report", Position: 5}

	// An explicit zero is present and must be applied, not skipped.
	applyTaskUpdate(&task, TaskUpdateInput{Position: intPtr(0)})

	if task.Position != 0 {
		t.Errorf("position = %d; want 0", task.Position)
	}

	applyTaskUpdate(&task, TaskUpdateInput{Description: strPtr("")})
	if task.Description == nil || *task.Description != "" {
		t.Errorf("description = %v; want empty string", task.Description)
	}
}

func TestApplyTaskUpdateAllFields(t *testing.T) {
	task := database.Task{ID: 1, Title: "Old", BoardID: 1}

	applyTaskUpdate(&task, TaskUpdateInput{
		Title:       strPtr("New"),
		Description: strPtr("details"),
		BoardID:     uintPtr(2),
		GroupID:     uintPtr(3),
		StatusID:    uintPtr(4),
		Position:    intPtr(7),
	})

	if task.Title != "New" || task.BoardID != 2 || task.Position != 7 {
		t.Errorf("unexpected task after update: %+v", task)
	}
	if task.Description == nil || *task.Description != "details" {
		t.Errorf("description = %v; want details", task.Description)
	}
	if task.GroupID == nil || *task.GroupID != 3 {
		t.Errorf("group = %v; want 3", task.GroupID)
	}
	if task.StatusID == nil || *task.StatusID != 4 {
		t.Errorf("status = %v; want 4", task.StatusID)
	}
}

func TestApplyTaskMove(t *testing.T) {
	task := database.Task{
		ID:       1,
		Title:    "Write report",
		BoardID:  1,
		Position: 3,
	}

	applyTaskMove(&task, TaskMoveInput{GroupID: uintPtr(5), Position: intPtr(0)})

	if task.GroupID == nil || *task.GroupID != 5 {
		t.Errorf("group = %v; want 5", task.GroupID)
	}
	if task.Position != 0 {
		t.Errorf("position = %d; want 0", task.Position)
	}
	if task.BoardID != 1 {
		t.Errorf("board = %d; want board untouched", task.BoardID)
	}
	if task.Title != "Write report" {
		t.Errorf("title = %q; want title untouched", task.Title)
	}
}

func TestApplyGroupUpdatePartial(t *testing.T) {
	group := database.Group{ID: 1, Name: "Backlog", BoardID: 1, Position: 2}

	applyGroupUpdate(&group, GroupUpdateInput{Position: intPtr(0)})

	if group.Position != 0 {
		t.Errorf("position = %d; want 0", group.Position)
	}
	if group.Name != "Backlog" {
		t.Errorf("name = %q; want name untouched", group.Name)
	}
}

func TestApplyBoardUpdatePartial(t *testing.T) {
	board := database.Board{ID: 1, Name: "Roadmap"}

	applyBoardUpdate(&board, BoardUpdateInput{})
	if board.Name != "Roadmap" {
		t.Errorf("name = %q; want name untouched", board.Name)
	}

	applyBoardUpdate(&board, BoardUpdateInput{Name: strPtr("Planning")})
	if board.Name != "Planning" {
		t.Errorf("name = %q; want Planning", board.Name)
	}
}
