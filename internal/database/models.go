package database

import (
	"time"
)

// User represents a user account in the system
type User struct {
	ID           uint   `json:"id" gorm:"primaryKey"`
	Email        string `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash string `json:"-" gorm:"not null"`
	IsActive     bool   `json:"is_active" gorm:"default:true"`
	IsVerified   bool   `json:"is_verified" gorm:"default:false"`

	// FailedLoginCount and LockoutUntil are kept in the schema for a future
	// durable lockout; the in-memory guard is authoritative at runtime.
	FailedLoginCount int        `json:"-" gorm:"default:0"`
	LockoutUntil     *time.Time `json:"-"`

	// RefreshTokenID holds the jti of the single currently valid refresh
	// token. A refresh presenting any other jti is rejected.
	RefreshTokenID *string `json:"-"`
}

func (u *User) TableName() string {
	return "users"
}

type Board struct {
	ID   uint   `json:"id" gorm:"primaryKey"`
	Name string `json:"name" gorm:"not null"`

	Groups []Group `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	Tasks  []Task  `json:"-" gorm:"constraint:OnDelete:CASCADE"`
}

func (b *Board) TableName() string {
	return "boards"
}

type Group struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	Name     string `json:"name" gorm:"not null"`
	BoardID  uint   `json:"board_id" gorm:"not null;index"`
	Position int    `json:"position" gorm:"default:0"`

	// Deleting a group detaches its tasks instead of removing them.
	Tasks []Task `json:"-" gorm:"constraint:OnDelete:SET NULL"`
}

func (g *Group) TableName() string {
	return "groups"
}

type Task struct {
	ID          uint    `json:"id" gorm:"primaryKey"`
	Title       string  `json:"title" gorm:"not null"`
	Description *string `json:"description"`
	BoardID     uint    `json:"board_id" gorm:"not null;index"`
	GroupID     *uint   `json:"group_id" gorm:"index"`
	StatusID    *uint   `json:"status_id"`
	Position    int     `json:"position" gorm:"default:0"`
}

func (t *Task) TableName() string {
	return "tasks"
}

type Attachment struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	TaskID      uint      `json:"task_id" gorm:"not null;index"`
	Task        Task      `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	FileName    string    `json:"file_name" gorm:"not null"`
	StorageKey  string    `json:"-" gorm:"uniqueIndex;not null"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	CreatedAt   time.Time `json:"created_at"`
}

func (a *Attachment) TableName() string {
	return "attachments"
}
