package models

import "time"

type HistoryActionType string

const (
	HistoryCreated         HistoryActionType = "created"
	HistoryUpdated         HistoryActionType = "updated"
	HistoryStatusChanged   HistoryActionType = "status_changed"
	HistoryAssigneeAdded   HistoryActionType = "assignee_added"
	HistoryAssigneeRemoved HistoryActionType = "assignee_removed"
	HistoryFollowerAdded   HistoryActionType = "follower_added"
	HistoryFollowerRemoved HistoryActionType = "follower_removed"
	HistoryCommentAdded    HistoryActionType = "comment_added"
	HistoryCompleted       HistoryActionType = "completed"
)

// TaskHistory is the append-only audit trail for a task. Rows are never
// updated or deleted, including when the task itself is soft-deleted.
type TaskHistory struct {
	ID          uint64            `gorm:"primarykey" json:"id"`
	TaskID      uint64            `gorm:"not null;index" json:"task_id"`
	UserID      uint64            `gorm:"not null" json:"user_id"`
	ActionType  HistoryActionType `gorm:"type:varchar(30);not null" json:"action_type"`
	OldValue    JSONMap           `gorm:"type:text" json:"old_value,omitempty"`
	NewValue    JSONMap           `gorm:"type:text" json:"new_value,omitempty"`
	Description string            `gorm:"type:text;not null" json:"description"`
	CreatedAt   time.Time         `json:"created_at"`

	// Relations
	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
