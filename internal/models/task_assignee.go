package models

import "time"

// TaskAssignee links a user to a task they are expected to act on.
// IsCompleted tracks that individual sign-off, independent of the task status.
type TaskAssignee struct {
	TaskID      uint64    `gorm:"primarykey" json:"task_id"`
	UserID      uint64    `gorm:"primarykey" json:"user_id"`
	IsCompleted bool      `gorm:"not null;default:false" json:"is_completed"`
	CreatedAt   time.Time `json:"created_at"`

	// Relations
	Task Task `gorm:"foreignKey:TaskID" json:"task,omitempty"`
	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
