package services

import (
	"fmt"
	"log"

	"github.com/taskflow/taskflow-api/internal/events"
	"github.com/taskflow/taskflow-api/internal/models"
	"github.com/taskflow/taskflow-api/internal/repository"
)

// HistoryService appends and reads the task audit trail. It is fed entirely
// through the event bus; the lifecycle code never calls it directly, and an
// append failure is logged without reaching the mutating caller.
type HistoryService struct {
	historyRepo repository.HistoryRepository
}

// NewHistoryService creates a new HistoryService
func NewHistoryService(historyRepo repository.HistoryRepository) *HistoryService {
	return &HistoryService{historyRepo: historyRepo}
}

// GetTaskHistory returns a task's history entries, newest first
func (s *HistoryService) GetTaskHistory(taskID uint64) ([]models.TaskHistory, error) {
	entries, err := s.historyRepo.FindByTaskID(taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch task history: %w", err)
	}
	return entries, nil
}

// RegisterListeners subscribes the history handlers. Each event type maps to
// exactly one history entry.
func (s *HistoryService) RegisterListeners(bus *events.Bus) {
	bus.Subscribe(events.TaskCreated, func(payload interface{}) {
		e, ok := payload.(events.TaskCreatedEvent)
		if !ok {
			return
		}
		s.append(&models.TaskHistory{
			TaskID:      e.TaskID,
			UserID:      e.UserID,
			ActionType:  models.HistoryCreated,
			Description: fmt.Sprintf("Task %q was created", e.Title),
		})
	})

	bus.Subscribe(events.TaskUpdated, func(payload interface{}) {
		e, ok := payload.(events.TaskUpdatedEvent)
		if !ok {
			return
		}
		s.append(&models.TaskHistory{
			TaskID:      e.TaskID,
			UserID:      e.UserID,
			ActionType:  models.HistoryUpdated,
			Description: e.Changes,
		})
	})

	bus.Subscribe(events.TaskStatusMoved, func(payload interface{}) {
		e, ok := payload.(events.TaskStatusChangedEvent)
		if !ok {
			return
		}
		s.append(&models.TaskHistory{
			TaskID:      e.TaskID,
			UserID:      e.UserID,
			ActionType:  models.HistoryStatusChanged,
			OldValue:    models.JSONMap{"status": e.OldStatus},
			NewValue:    models.JSONMap{"status": e.NewStatus},
			Description: fmt.Sprintf("Status changed from %s to %s", e.OldStatus, e.NewStatus),
		})
	})

	bus.Subscribe(events.TaskCompleted, func(payload interface{}) {
		e, ok := payload.(events.TaskCompletedEvent)
		if !ok {
			return
		}
		description := "Task completed by user"
		if e.IsAutoComplete {
			description = "Task auto-completed (all subtasks completed)"
		}
		s.append(&models.TaskHistory{
			TaskID:      e.TaskID,
			UserID:      e.UserID,
			ActionType:  models.HistoryCompleted,
			Description: description,
		})
	})

	bus.Subscribe(events.AssigneeAdded, func(payload interface{}) {
		e, ok := payload.(events.TaskAssigneeEvent)
		if !ok {
			return
		}
		s.append(&models.TaskHistory{
			TaskID:      e.TaskID,
			UserID:      e.UserID,
			ActionType:  models.HistoryAssigneeAdded,
			NewValue:    models.JSONMap{"assigneeId": e.AssigneeID},
			Description: "Assignee added",
		})
	})

	bus.Subscribe(events.AssigneeRemoved, func(payload interface{}) {
		e, ok := payload.(events.TaskAssigneeEvent)
		if !ok {
			return
		}
		s.append(&models.TaskHistory{
			TaskID:      e.TaskID,
			UserID:      e.UserID,
			ActionType:  models.HistoryAssigneeRemoved,
			OldValue:    models.JSONMap{"assigneeId": e.AssigneeID},
			Description: "Assignee removed",
		})
	})

	bus.Subscribe(events.FollowerAdded, func(payload interface{}) {
		e, ok := payload.(events.TaskFollowerEvent)
		if !ok {
			return
		}
		s.append(&models.TaskHistory{
			TaskID:      e.TaskID,
			UserID:      e.UserID,
			ActionType:  models.HistoryFollowerAdded,
			NewValue:    models.JSONMap{"followerId": e.FollowerID},
			Description: "Follower added",
		})
	})

	bus.Subscribe(events.FollowerRemoved, func(payload interface{}) {
		e, ok := payload.(events.TaskFollowerEvent)
		if !ok {
			return
		}
		s.append(&models.TaskHistory{
			TaskID:      e.TaskID,
			UserID:      e.UserID,
			ActionType:  models.HistoryFollowerRemoved,
			OldValue:    models.JSONMap{"followerId": e.FollowerID},
			Description: "Follower removed",
		})
	})

	bus.Subscribe(events.CommentAdded, func(payload interface{}) {
		e, ok := payload.(events.TaskCommentEvent)
		if !ok {
			return
		}
		s.append(&models.TaskHistory{
			TaskID:      e.TaskID,
			UserID:      e.UserID,
			ActionType:  models.HistoryCommentAdded,
			NewValue:    models.JSONMap{"commentId": e.CommentID, "content": e.Content},
			Description: "Comment added",
		})
	})
}

// append writes one history row. History is diagnostic, not authoritative, so
// failures are logged and swallowed.
func (s *HistoryService) append(entry *models.TaskHistory) {
	if err := s.historyRepo.Create(entry); err != nil {
		log.Printf("failed to record task history for task %d: %v", entry.TaskID, err)
	}
}
