package repository

import (
	"time"

	"github.com/taskflow/taskflow-api/internal/models"
)

// TaskView is a caller-relative filter preset applied before explicit filters.
type TaskView string

const (
	ViewAll       TaskView = "all"
	ViewMyTasks   TaskView = "my_tasks"
	ViewAssigned  TaskView = "assigned"
	ViewFollowing TaskView = "following"
	ViewCompleted TaskView = "completed"
)

// TaskFilter holds filtering, sorting and pagination options for listing tasks.
// Filters compose with AND semantics on top of the view preset.
type TaskFilter struct {
	UserID     uint64
	View       TaskView
	TeamID     *uint64
	Status     *models.TaskStatus
	CreatorID  *uint64
	AssigneeID *uint64
	DateField  string
	StartDate  *time.Time
	EndDate    *time.Time
	SortBy     string
	SortOrder  string
	Page       int
	PageSize   int
}

// SubtaskCounts aggregates direct-subtask totals for one parent task.
type SubtaskCounts struct {
	Total     int64
	Completed int64
}

// TaskRepository defines the interface for task data access. All reads
// exclude soft-deleted rows.
type TaskRepository interface {
	Create(task *models.Task) error

	// FindByID finds a non-deleted task by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Task, error)

	// FindSubtasks returns the direct non-deleted children, oldest first
	FindSubtasks(parentTaskID uint64) ([]models.Task, error)

	// List retrieves top-level tasks matching the filter, plus the total count
	List(filter TaskFilter) ([]models.Task, int64, error)

	// SubtaskCountsByParent aggregates subtask totals for a page of parents
	// in one grouped query
	SubtaskCountsByParent(parentTaskIDs []uint64) (map[uint64]SubtaskCounts, error)

	// Save persists all fields of an already-loaded task
	Save(task *models.Task) error

	// MarkDeleted soft-deletes a task
	MarkDeleted(id uint64) error

	// SetCompleted transitions a task to completed at the given time
	SetCompleted(id uint64, completedAt time.Time) error

	AddAssignee(taskID, userID uint64) error
	RemoveAssignee(taskID, userID uint64) error
	FindAssignee(taskID, userID uint64) (*models.TaskAssignee, error)

	// MarkAssigneeCompleted sets the individual sign-off flag
	MarkAssigneeCompleted(taskID, userID uint64) error

	AddFollower(taskID, userID uint64) error
	RemoveFollower(taskID, userID uint64) error
}

// TeamRepository defines the interface for team data access
type TeamRepository interface {
	// CreateWithOwner creates a team and its owner membership in one transaction
	CreateWithOwner(team *models.Team, member *models.TeamMember) error

	FindByID(id uint64) (*models.Team, error)
	Save(team *models.Team) error

	AddMember(member *models.TeamMember) error
	RemoveMember(teamID, userID uint64) error
	FindMember(teamID, userID uint64) (*models.TeamMember, error)
	ListMembers(teamID uint64) ([]models.TeamMember, error)

	// ListMembershipsByUserID lists every team membership a user holds
	ListMembershipsByUserID(userID uint64) ([]models.TeamMember, error)
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	Create(user *models.User) error
	FindByID(id uint64) (*models.User, error)
	FindByEmail(email string) (*models.User, error)
	Save(user *models.User) error
}

// CommentRepository defines the interface for comment data access
type CommentRepository interface {
	Create(comment *models.Comment) error
	FindByID(id uint64) (*models.Comment, error)

	// FindByTaskID returns a task's comments, oldest first
	FindByTaskID(taskID uint64) ([]models.Comment, error)

	Save(comment *models.Comment) error
	Delete(id uint64) error
}

// HistoryRepository defines the interface for the append-only audit trail
type HistoryRepository interface {
	Create(entry *models.TaskHistory) error

	// FindByTaskID returns a task's history, newest first
	FindByTaskID(taskID uint64) ([]models.TaskHistory, error)
}
