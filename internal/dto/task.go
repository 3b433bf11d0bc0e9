package dto

import (
	"time"

	"github.com/taskflow/taskflow-api/internal/models"
	"github.com/taskflow/taskflow-api/internal/services"
	"github.com/taskflow/taskflow-api/internal/utils"
)

// TaskAssigneeDTO represents an assignee, with their individual sign-off flag
type TaskAssigneeDTO struct {
	UserID      uint64   `json:"user_id"`
	IsCompleted bool     `json:"is_completed"`
	User        *UserDTO `json:"user,omitempty"`
}

// TaskFollowerDTO represents a follower in API responses
type TaskFollowerDTO struct {
	UserID uint64   `json:"user_id"`
	User   *UserDTO `json:"user,omitempty"`
}

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID           uint64              `json:"id"`
	Title        string              `json:"title"`
	Description  string              `json:"description"`
	TeamID       *uint64             `json:"team_id"`
	CreatorID    uint64              `json:"creator_id"`
	ParentTaskID *uint64             `json:"parent_task_id"`
	Status       models.TaskStatus   `json:"status"`
	Priority     models.TaskPriority `json:"priority"`
	DueDate      *time.Time          `json:"due_date"`
	CompletedAt  *time.Time          `json:"completed_at"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
	Creator      *UserDTO            `json:"creator,omitempty"`
	Team         *TeamDTO            `json:"team,omitempty"`
	Assignees    []TaskAssigneeDTO   `json:"assignees,omitempty"`
	Followers    []TaskFollowerDTO   `json:"followers,omitempty"`
}

// TaskListItemDTO represents a task in list responses, with subtask counters
type TaskListItemDTO struct {
	TaskDTO
	SubtasksCount          int64 `json:"subtasks_count"`
	CompletedSubtasksCount int64 `json:"completed_subtasks_count"`
}

// TaskListResponse represents a paginated list of tasks
type TaskListResponse struct {
	Items []TaskListItemDTO        `json:"items"`
	Meta  utils.PaginationResponse `json:"meta"`
}

// HistoryEntryDTO represents one audit-trail entry
type HistoryEntryDTO struct {
	ID          uint64                   `json:"id"`
	TaskID      uint64                   `json:"task_id"`
	UserID      uint64                   `json:"user_id"`
	ActionType  models.HistoryActionType `json:"action_type"`
	OldValue    models.JSONMap           `json:"old_value,omitempty"`
	NewValue    models.JSONMap           `json:"new_value,omitempty"`
	Description string                   `json:"description"`
	CreatedAt   time.Time                `json:"created_at"`
	User        *UserDTO                 `json:"user,omitempty"`
}

// CommentDTO represents a comment in API responses
type CommentDTO struct {
	ID        uint64    `json:"id"`
	TaskID    uint64    `json:"task_id"`
	UserID    uint64    `json:"user_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	User      *UserDTO  `json:"user,omitempty"`
}

// Conversion functions

// ToTaskDTO converts a Task model to TaskDTO
func ToTaskDTO(task models.Task) TaskDTO {
	d := TaskDTO{
		ID:           task.ID,
		Title:        task.Title,
		Description:  task.Description,
		TeamID:       task.TeamID,
		CreatorID:    task.CreatorID,
		ParentTaskID: task.ParentTaskID,
		Status:       task.Status,
		Priority:     task.Priority,
		DueDate:      task.DueDate,
		CompletedAt:  task.CompletedAt,
		CreatedAt:    task.CreatedAt,
		UpdatedAt:    task.UpdatedAt,
	}

	if task.Creator.ID != 0 {
		creator := ToUserDTO(task.Creator)
		d.Creator = &creator
	}
	if task.Team != nil && task.Team.ID != 0 {
		team := ToTeamDTO(*task.Team)
		d.Team = &team
	}
	if len(task.Assignees) > 0 {
		d.Assignees = make([]TaskAssigneeDTO, len(task.Assignees))
		for i, a := range task.Assignees {
			d.Assignees[i] = TaskAssigneeDTO{
				UserID:      a.UserID,
				IsCompleted: a.IsCompleted,
			}
			if a.User.ID != 0 {
				user := ToUserDTO(a.User)
				d.Assignees[i].User = &user
			}
		}
	}
	if len(task.Followers) > 0 {
		d.Followers = make([]TaskFollowerDTO, len(task.Followers))
		for i, f := range task.Followers {
			d.Followers[i] = TaskFollowerDTO{UserID: f.UserID}
			if f.User.ID != 0 {
				user := ToUserDTO(f.User)
				d.Followers[i].User = &user
			}
		}
	}

	return d
}

// ToTaskListResponse converts annotated tasks to a paginated response
func ToTaskListResponse(items []services.TaskWithCounts, page, limit int, total int64) TaskListResponse {
	dtos := make([]TaskListItemDTO, len(items))
	for i, item := range items {
		dtos[i] = TaskListItemDTO{
			TaskDTO:                ToTaskDTO(item.Task),
			SubtasksCount:          item.SubtasksCount,
			CompletedSubtasksCount: item.CompletedSubtasksCount,
		}
	}

	return TaskListResponse{
		Items: dtos,
		Meta:  utils.NewPaginationResponse(page, limit, total),
	}
}

// ToHistoryEntryDTO converts a TaskHistory model to HistoryEntryDTO
func ToHistoryEntryDTO(entry models.TaskHistory) HistoryEntryDTO {
	d := HistoryEntryDTO{
		ID:          entry.ID,
		TaskID:      entry.TaskID,
		UserID:      entry.UserID,
		ActionType:  entry.ActionType,
		OldValue:    entry.OldValue,
		NewValue:    entry.NewValue,
		Description: entry.Description,
		CreatedAt:   entry.CreatedAt,
	}
	if entry.User.ID != 0 {
		user := ToUserDTO(entry.User)
		d.User = &user
	}
	return d
}

// ToCommentDTO converts a Comment model to CommentDTO
func ToCommentDTO(comment models.Comment) CommentDTO {
	d := CommentDTO{
		ID:        comment.ID,
		TaskID:    comment.TaskID,
		UserID:    comment.UserID,
		Content:   comment.Content,
		CreatedAt: comment.CreatedAt,
		UpdatedAt: comment.UpdatedAt,
	}
	if comment.User.ID != 0 {
		user := ToUserDTO(comment.User)
		d.User = &user
	}
	return d
}
