package models

import "time"

type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
)

type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
	TaskPriorityUrgent TaskPriority = "urgent"
)

// Task rows are soft-deleted via IsDeleted rather than removed; history rows
// keep referencing them after deletion.
type Task struct {
	ID           uint64       `gorm:"primarykey" json:"id"`
	Title        string       `gorm:"not null" json:"title"`
	Description  string       `gorm:"type:text" json:"description"`
	TeamID       *uint64      `gorm:"index" json:"team_id"`
	CreatorID    uint64       `gorm:"not null" json:"creator_id"`
	ParentTaskID *uint64      `gorm:"index" json:"parent_task_id"`
	Status       TaskStatus   `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	Priority     TaskPriority `gorm:"type:varchar(20);not null;default:'medium'" json:"priority"`
	DueDate      *time.Time   `json:"due_date"`
	CompletedAt  *time.Time   `json:"completed_at"`
	IsDeleted    bool         `gorm:"not null;default:false" json:"-"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`

	// Relations
	Creator    User           `gorm:"foreignKey:CreatorID" json:"creator,omitempty"`
	Team       *Team          `gorm:"foreignKey:TeamID" json:"team,omitempty"`
	ParentTask *Task          `gorm:"foreignKey:ParentTaskID" json:"parent_task,omitempty"`
	Subtasks   []Task         `gorm:"foreignKey:ParentTaskID" json:"subtasks,omitempty"`
	Assignees  []TaskAssignee `gorm:"foreignKey:TaskID" json:"assignees,omitempty"`
	Followers  []TaskFollower `gorm:"foreignKey:TaskID" json:"followers,omitempty"`
}

// HasAssignee reports whether userID appears in the loaded assignee list.
func (t *Task) HasAssignee(userID uint64) bool {
	for _, a := range t.Assignees {
		if a.UserID == userID {
			return true
		}
	}
	return false
}

// HasFollower reports whether userID appears in the loaded follower list.
func (t *Task) HasFollower(userID uint64) bool {
	for _, f := range t.Followers {
		if f.UserID == userID {
			return true
		}
	}
	return false
}
