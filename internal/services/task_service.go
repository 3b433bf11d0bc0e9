package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/taskflow/taskflow-api/internal/events"
	"github.com/taskflow/taskflow-api/internal/models"
	"github.com/taskflow/taskflow-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrTaskNotFound   = errors.New("task not found")
	ErrNotTeamMember  = errors.New("user is not a member of the team")
	ErrTitleRequired  = errors.New("title is required")
	ErrParentNotFound = errors.New("parent task not found")
)

// taskRelations is the standard preload set for a fully-hydrated task.
var taskRelations = []string{
	"Creator", "Team", "ParentTask",
	"Assignees", "Assignees.User",
	"Followers", "Followers.User",
}

// TaskService owns the task lifecycle: create, update, delete, complete with
// its cascades, and assignee/follower management. Every mutation publishes a
// domain event; history tracking happens in the subscribers, never here.
type TaskService struct {
	taskRepo repository.TaskRepository
	teamRepo repository.TeamRepository
	auth     *TaskAuthorizer
	bus      *events.Bus
}

// NewTaskService creates a new TaskService
func NewTaskService(taskRepo repository.TaskRepository, teamRepo repository.TeamRepository, auth *TaskAuthorizer, bus *events.Bus) *TaskService {
	return &TaskService{
		taskRepo: taskRepo,
		teamRepo: teamRepo,
		auth:     auth,
		bus:      bus,
	}
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	Title        string
	Description  string
	TeamID       *uint64
	ParentTaskID *uint64
	Priority     models.TaskPriority
	DueDate      *time.Time
	AssigneeIDs  []uint64
	FollowerIDs  []uint64
}

// UpdateTaskInput represents input for updating a task. Nil fields are left
// untouched.
type UpdateTaskInput struct {
	Title        *string
	Description  *string
	Status       *models.TaskStatus
	Priority     *models.TaskPriority
	DueDate      *time.Time
	ClearDueDate bool
}

// TaskWithCounts pairs a task with its aggregated subtask counters for lists.
type TaskWithCounts struct {
	models.Task
	SubtasksCount          int64 `json:"subtasks_count"`
	CompletedSubtasksCount int64 `json:"completed_subtasks_count"`
}

// GetTask returns a non-deleted task with all relations loaded
func (s *TaskService) GetTask(taskID uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID, taskRelations...)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return task, nil
}

// GetTaskForUser returns a task after asserting view permission.
func (s *TaskService) GetTaskForUser(actorID, taskID uint64) (*models.Task, error) {
	task, err := s.GetTask(taskID)
	if err != nil {
		return nil, err
	}
	if err := s.auth.AssertCanView(task, actorID); err != nil {
		return nil, err
	}
	return task, nil
}

// List returns top-level tasks matching the filter, each annotated with its
// subtask counts from a single grouped aggregation.
func (s *TaskService) List(filter repository.TaskFilter) ([]TaskWithCounts, int64, error) {
	tasks, total, err := s.taskRepo.List(filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}

	items := make([]TaskWithCounts, len(tasks))
	taskIDs := make([]uint64, len(tasks))
	for i, task := range tasks {
		items[i] = TaskWithCounts{Task: task}
		taskIDs[i] = task.ID
	}

	counts, err := s.taskRepo.SubtaskCountsByParent(taskIDs)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count subtasks: %w", err)
	}
	for i := range items {
		c := counts[items[i].ID]
		items[i].SubtasksCount = c.Total
		items[i].CompletedSubtasksCount = c.Completed
	}

	return items, total, nil
}

// GetSubtasks returns the direct non-deleted children of a task
func (s *TaskService) GetSubtasks(taskID uint64) ([]models.Task, error) {
	subtasks, err := s.taskRepo.FindSubtasks(taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch subtasks: %w", err)
	}
	return subtasks, nil
}

// Create persists a new task together with its requested assignee and
// follower rows. The inserts are deliberately not wrapped in one transaction:
// the first failing row surfaces its error and earlier rows remain.
func (s *TaskService) Create(actorID uint64, input CreateTaskInput) (*models.Task, error) {
	if input.Title == "" {
		return nil, ErrTitleRequired
	}

	if input.TeamID != nil {
		if err := s.ensureTeamMember(*input.TeamID, actorID); err != nil {
			return nil, err
		}
	}

	if input.ParentTaskID != nil {
		if _, err := s.taskRepo.FindByID(*input.ParentTaskID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrParentNotFound
			}
			return nil, fmt.Errorf("failed to find parent task: %w", err)
		}
	}

	if input.Priority == "" {
		input.Priority = models.TaskPriorityMedium
	}

	task := &models.Task{
		Title:        input.Title,
		Description:  input.Description,
		TeamID:       input.TeamID,
		CreatorID:    actorID,
		ParentTaskID: input.ParentTaskID,
		Status:       models.TaskStatusPending,
		Priority:     input.Priority,
		DueDate:      input.DueDate,
	}

	if err := s.taskRepo.Create(task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	for _, assigneeID := range input.AssigneeIDs {
		if err := s.taskRepo.AddAssignee(task.ID, assigneeID); err != nil {
			return nil, fmt.Errorf("failed to add assignee %d: %w", assigneeID, err)
		}
	}
	for _, followerID := range input.FollowerIDs {
		if err := s.taskRepo.AddFollower(task.ID, followerID); err != nil {
			return nil, fmt.Errorf("failed to add follower %d: %w", followerID, err)
		}
	}

	s.bus.Publish(events.TaskCreated, events.TaskCreatedEvent{
		TaskID: task.ID,
		UserID: actorID,
		Title:  task.Title,
	})

	return s.GetTask(task.ID)
}

// Update applies a partial update. A status change publishes a status-changed
// event; any other changed fields publish one aggregated updated event. The
// two are mutually exclusive per call.
func (s *TaskService) Update(actorID, taskID uint64, input UpdateTaskInput) (*models.Task, error) {
	task, err := s.GetTask(taskID)
	if err != nil {
		return nil, err
	}

	if err := s.auth.AssertCanEdit(task, actorID); err != nil {
		return nil, err
	}

	oldStatus := task.Status
	statusChanged := false
	var changes []string

	if input.Title != nil && *input.Title != task.Title {
		if *input.Title == "" {
			return nil, ErrTitleRequired
		}
		changes = append(changes, fmt.Sprintf("title changed from %q to %q", task.Title, *input.Title))
		task.Title = *input.Title
	}
	if input.Description != nil && *input.Description != task.Description {
		changes = append(changes, "description updated")
		task.Description = *input.Description
	}
	if input.Status != nil && *input.Status != task.Status {
		statusChanged = true
		changes = append(changes, fmt.Sprintf("status changed from %s to %s", task.Status, *input.Status))
		task.Status = *input.Status
	}
	if input.Priority != nil && *input.Priority != task.Priority {
		changes = append(changes, fmt.Sprintf("priority changed from %s to %s", task.Priority, *input.Priority))
		task.Priority = *input.Priority
	}
	if input.ClearDueDate {
		if task.DueDate != nil {
			changes = append(changes, "due date cleared")
		}
		task.DueDate = nil
	} else if input.DueDate != nil {
		if task.DueDate == nil || !task.DueDate.Equal(*input.DueDate) {
			changes = append(changes, "due date changed")
		}
		task.DueDate = input.DueDate
	}

	// completedAt tracks the status transition exactly
	if statusChanged {
		if task.Status == models.TaskStatusCompleted {
			now := time.Now()
			task.CompletedAt = &now
		} else {
			task.CompletedAt = nil
		}
	}

	if err := s.taskRepo.Save(task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	if statusChanged {
		s.bus.Publish(events.TaskStatusMoved, events.TaskStatusChangedEvent{
			TaskID:    taskID,
			UserID:    actorID,
			OldStatus: string(oldStatus),
			NewStatus: string(task.Status),
		})
	} else if len(changes) > 0 {
		s.bus.Publish(events.TaskUpdated, events.TaskUpdatedEvent{
			TaskID:  taskID,
			UserID:  actorID,
			Changes: strings.Join(changes, ", "),
		})
	}

	return s.GetTask(taskID)
}

// Delete soft-deletes a task. No event is emitted; deletions are not part of
// the history trail.
func (s *TaskService) Delete(actorID, taskID uint64) error {
	task, err := s.GetTask(taskID)
	if err != nil {
		return err
	}

	if err := s.auth.AssertCanDelete(task, actorID); err != nil {
		return err
	}

	if err := s.taskRepo.MarkDeleted(taskID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	return nil
}

// Complete records the actor's sign-off and, once every assignee has signed
// off (trivially so with zero or one assignee), transitions the task to
// completed. The last assignee to finish triggers the actual completion.
func (s *TaskService) Complete(actorID, taskID uint64, completeSubtasks bool) (*models.Task, error) {
	task, err := s.GetTask(taskID)
	if err != nil {
		return nil, err
	}

	if err := s.auth.AssertCanEdit(task, actorID); err != nil {
		return nil, err
	}

	if task.HasAssignee(actorID) {
		if err := s.taskRepo.MarkAssigneeCompleted(taskID, actorID); err != nil {
			return nil, fmt.Errorf("failed to mark assignee completion: %w", err)
		}
	}

	if len(task.Assignees) > 1 {
		// The actor's own flag counts even though it was loaded before the
		// update above.
		allCompleted := true
		for _, a := range task.Assignees {
			if !a.IsCompleted && a.UserID != actorID {
				allCompleted = false
				break
			}
		}
		if !allCompleted {
			return s.GetTask(taskID)
		}
	}

	if err := s.taskRepo.SetCompleted(taskID, time.Now()); err != nil {
		return nil, fmt.Errorf("failed to complete task: %w", err)
	}

	if completeSubtasks {
		// Force-complete direct children; the per-assignee gate does not
		// apply to a cascade and no event fires per subtask.
		subtasks, err := s.taskRepo.FindSubtasks(taskID)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch subtasks: %w", err)
		}
		for _, subtask := range subtasks {
			if subtask.Status == models.TaskStatusCompleted {
				continue
			}
			if err := s.taskRepo.SetCompleted(subtask.ID, time.Now()); err != nil {
				return nil, fmt.Errorf("failed to complete subtask %d: %w", subtask.ID, err)
			}
		}
	}

	s.bus.Publish(events.TaskCompleted, events.TaskCompletedEvent{
		TaskID:         taskID,
		UserID:         actorID,
		IsAutoComplete: false,
	})

	if task.ParentTaskID != nil {
		if err := s.checkParentTaskCompletion(*task.ParentTaskID, actorID); err != nil {
			return nil, err
		}
	}

	return s.GetTask(taskID)
}

// checkParentTaskCompletion auto-completes the parent when every one of its
// direct non-deleted subtasks is completed. A parent with no subtasks is
// never auto-completed. The check does not ripple further up on its own.
func (s *TaskService) checkParentTaskCompletion(parentTaskID, actorID uint64) error {
	subtasks, err := s.taskRepo.FindSubtasks(parentTaskID)
	if err != nil {
		return fmt.Errorf("failed to fetch subtasks: %w", err)
	}
	if len(subtasks) == 0 {
		return nil
	}

	for _, subtask := range subtasks {
		if subtask.Status != models.TaskStatusCompleted {
			return nil
		}
	}

	if err := s.taskRepo.SetCompleted(parentTaskID, time.Now()); err != nil {
		return fmt.Errorf("failed to auto-complete parent task: %w", err)
	}

	s.bus.Publish(events.TaskCompleted, events.TaskCompletedEvent{
		TaskID:         parentTaskID,
		UserID:         actorID,
		IsAutoComplete: true,
	})

	return nil
}

// AddAssignee adds an assignee to a task. Requires edit permission.
func (s *TaskService) AddAssignee(actorID, taskID, assigneeID uint64) error {
	task, err := s.GetTask(taskID)
	if err != nil {
		return err
	}

	if err := s.auth.AssertCanEdit(task, actorID); err != nil {
		return err
	}

	if err := s.taskRepo.AddAssignee(taskID, assigneeID); err != nil {
		return fmt.Errorf("failed to add assignee: %w", err)
	}

	s.bus.Publish(events.AssigneeAdded, events.TaskAssigneeEvent{
		TaskID:     taskID,
		UserID:     actorID,
		AssigneeID: assigneeID,
	})

	return nil
}

// RemoveAssignee removes an assignee from a task. Requires edit permission.
func (s *TaskService) RemoveAssignee(actorID, taskID, assigneeID uint64) error {
	task, err := s.GetTask(taskID)
	if err != nil {
		return err
	}

	if err := s.auth.AssertCanEdit(task, actorID); err != nil {
		return err
	}

	if err := s.taskRepo.RemoveAssignee(taskID, assigneeID); err != nil {
		return fmt.Errorf("failed to remove assignee: %w", err)
	}

	s.bus.Publish(events.AssigneeRemoved, events.TaskAssigneeEvent{
		TaskID:     taskID,
		UserID:     actorID,
		AssigneeID: assigneeID,
	})

	return nil
}

// AddFollower adds a follower to a task. Any authenticated user may follow;
// only task existence is checked.
func (s *TaskService) AddFollower(actorID, taskID, followerID uint64) error {
	if _, err := s.GetTask(taskID); err != nil {
		return err
	}

	if err := s.taskRepo.AddFollower(taskID, followerID); err != nil {
		return fmt.Errorf("failed to add follower: %w", err)
	}

	s.bus.Publish(events.FollowerAdded, events.TaskFollowerEvent{
		TaskID:     taskID,
		UserID:     actorID,
		FollowerID: followerID,
	})

	return nil
}

// RemoveFollower removes a follower from a task.
func (s *TaskService) RemoveFollower(actorID, taskID, followerID uint64) error {
	if _, err := s.GetTask(taskID); err != nil {
		return err
	}

	if err := s.taskRepo.RemoveFollower(taskID, followerID); err != nil {
		return fmt.Errorf("failed to remove follower: %w", err)
	}

	s.bus.Publish(events.FollowerRemoved, events.TaskFollowerEvent{
		TaskID:     taskID,
		UserID:     actorID,
		FollowerID: followerID,
	})

	return nil
}

// ensureTeamMember verifies that a user holds any membership in a team
func (s *TaskService) ensureTeamMember(teamID, userID uint64) error {
	_, err := s.teamRepo.FindMember(teamID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotTeamMember
		}
		return fmt.Errorf("failed to verify team membership: %w", err)
	}
	return nil
}
