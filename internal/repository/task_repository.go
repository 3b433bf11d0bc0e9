package repository

import (
	"time"

	"github.com/taskflow/taskflow-api/internal/database"
	"github.com/taskflow/taskflow-api/internal/models"
	"github.com/taskflow/taskflow-api/internal/utils"
	"gorm.io/gorm"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// dateColumns maps the API date-field names to task columns.
var dateColumns = map[string]string{
	"createdAt":   "tasks.created_at",
	"dueDate":     "tasks.due_date",
	"completedAt": "tasks.completed_at",
	"updatedAt":   "tasks.updated_at",
}

// sortColumns maps the API sort keys to order-by columns.
var sortColumns = map[string]string{
	"id":        "tasks.id",
	"createdAt": "tasks.created_at",
	"dueDate":   "tasks.due_date",
	"creator":   "users.name",
}

// Create creates a new task
func (r *GormTaskRepository) Create(task *models.Task) error {
	return r.db.Create(task).Error
}

// FindByID finds a non-deleted task by ID with optional preloading
func (r *GormTaskRepository) FindByID(id uint64, preload ...string) (*models.Task, error) {
	var task models.Task
	query := r.db.Where("is_deleted = ?", false)

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&task, id).Error; err != nil {
		return nil, err
	}

	return &task, nil
}

// FindSubtasks returns the direct non-deleted children, oldest first
func (r *GormTaskRepository) FindSubtasks(parentTaskID uint64) ([]models.Task, error) {
	var subtasks []models.Task
	err := r.db.
		Where("parent_task_id = ? AND is_deleted = ?", parentTaskID, false).
		Preload("Creator").
		Preload("Assignees").
		Preload("Assignees.User").
		Order("created_at ASC").
		Find(&subtasks).Error
	if err != nil {
		return nil, err
	}
	return subtasks, nil
}

// List retrieves top-level tasks matching the filter, plus the total count
func (r *GormTaskRepository) List(filter TaskFilter) ([]models.Task, int64, error) {
	var tasks []models.Task

	query := r.db.Model(&models.Task{}).
		Where("tasks.is_deleted = ?", false).
		Where("tasks.parent_task_id IS NULL")

	if filter.TeamID != nil {
		query = query.Where("tasks.team_id = ?", *filter.TeamID)
	}

	query = r.applyViewFilter(query, filter.View, filter.UserID)

	if filter.Status != nil {
		query = query.Where("tasks.status = ?", *filter.Status)
	}
	if filter.CreatorID != nil {
		query = query.Where("tasks.creator_id = ?", *filter.CreatorID)
	}
	if filter.AssigneeID != nil {
		query = query.Where("EXISTS (?)", r.assigneeExists(*filter.AssigneeID))
	}

	dateColumn, ok := dateColumns[filter.DateField]
	if !ok {
		dateColumn = "tasks.created_at"
	}
	if filter.StartDate != nil {
		query = query.Where(dateColumn+" >= ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		query = query.Where(dateColumn+" <= ?", *filter.EndDate)
	}

	// Creator-name sorting needs the users table in scope
	sortColumn, ok := sortColumns[filter.SortBy]
	if !ok {
		sortColumn = "tasks.created_at"
	}
	if sortColumn == "users.name" {
		query = query.Joins("JOIN users ON users.id = tasks.creator_id")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	direction := "DESC"
	if filter.SortOrder == "asc" {
		direction = "ASC"
	}
	listQuery := query.Order(sortColumn + " " + direction)

	if filter.Page > 0 && filter.PageSize > 0 {
		listQuery = listQuery.Scopes(database.Paginate(utils.PaginationParams{
			Page:   filter.Page,
			Limit:  filter.PageSize,
			Offset: (filter.Page - 1) * filter.PageSize,
		}))
	}

	err := listQuery.
		Preload("Creator").
		Preload("Assignees").
		Preload("Assignees.User").
		Preload("Followers").
		Find(&tasks).Error
	if err != nil {
		return nil, 0, err
	}

	return tasks, total, nil
}

func (r *GormTaskRepository) applyViewFilter(query *gorm.DB, view TaskView, userID uint64) *gorm.DB {
	switch view {
	case ViewMyTasks:
		return query.Where("tasks.creator_id = ?", userID)
	case ViewAssigned:
		return query.Where("EXISTS (?)", r.assigneeExists(userID))
	case ViewFollowing:
		return query.Where("EXISTS (?)", r.followerExists(userID))
	case ViewCompleted:
		return query.Where("tasks.status = ?", models.TaskStatusCompleted)
	default:
		// Tasks where the user is creator, assignee, or follower
		return query.Where("tasks.creator_id = ? OR EXISTS (?) OR EXISTS (?)",
			userID, r.assigneeExists(userID), r.followerExists(userID))
	}
}

func (r *GormTaskRepository) assigneeExists(userID uint64) *gorm.DB {
	return r.db.Model(&models.TaskAssignee{}).
		Select("1").
		Where("task_assignees.task_id = tasks.id").
		Where("task_assignees.user_id = ?", userID)
}

func (r *GormTaskRepository) followerExists(userID uint64) *gorm.DB {
	return r.db.Model(&models.TaskFollower{}).
		Select("1").
		Where("task_followers.task_id = tasks.id").
		Where("task_followers.user_id = ?", userID)
}

// SubtaskCountsByParent aggregates subtask totals for a page of parents in one
// grouped query instead of one query per task.
func (r *GormTaskRepository) SubtaskCountsByParent(parentTaskIDs []uint64) (map[uint64]SubtaskCounts, error) {
	counts := make(map[uint64]SubtaskCounts, len(parentTaskIDs))
	if len(parentTaskIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		ParentTaskID uint64
		Total        int64
		Completed    int64
	}

	err := r.db.Model(&models.Task{}).
		Select("parent_task_id, COUNT(*) AS total, SUM(CASE WHEN status = ? THEN 1 ELSE 0 END) AS completed",
			models.TaskStatusCompleted).
		Where("parent_task_id IN ?", parentTaskIDs).
		Where("is_deleted = ?", false).
		Group("parent_task_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		counts[row.ParentTaskID] = SubtaskCounts{Total: row.Total, Completed: row.Completed}
	}

	return counts, nil
}

// Save persists all fields of an already-loaded task
func (r *GormTaskRepository) Save(task *models.Task) error {
	return r.db.Save(task).Error
}

// MarkDeleted soft-deletes a task. Assignee and follower rows stay in place;
// every read path filters on is_deleted.
func (r *GormTaskRepository) MarkDeleted(id uint64) error {
	return r.db.Model(&models.Task{}).
		Where("id = ?", id).
		Update("is_deleted", true).Error
}

// SetCompleted transitions a task to completed at the given time
func (r *GormTaskRepository) SetCompleted(id uint64, completedAt time.Time) error {
	return r.db.Model(&models.Task{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":       models.TaskStatusCompleted,
			"completed_at": completedAt,
		}).Error
}

// AddAssignee creates an assignment row
func (r *GormTaskRepository) AddAssignee(taskID, userID uint64) error {
	return r.db.Create(&models.TaskAssignee{TaskID: taskID, UserID: userID}).Error
}

// RemoveAssignee deletes an assignment row
func (r *GormTaskRepository) RemoveAssignee(taskID, userID uint64) error {
	return r.db.Where("task_id = ? AND user_id = ?", taskID, userID).
		Delete(&models.TaskAssignee{}).Error
}

// FindAssignee finds a specific assignment row
func (r *GormTaskRepository) FindAssignee(taskID, userID uint64) (*models.TaskAssignee, error) {
	var assignee models.TaskAssignee
	if err := r.db.Where("task_id = ? AND user_id = ?", taskID, userID).
		First(&assignee).Error; err != nil {
		return nil, err
	}
	return &assignee, nil
}

// MarkAssigneeCompleted sets the individual sign-off flag
func (r *GormTaskRepository) MarkAssigneeCompleted(taskID, userID uint64) error {
	return r.db.Model(&models.TaskAssignee{}).
		Where("task_id = ? AND user_id = ?", taskID, userID).
		Update("is_completed", true).Error
}

// AddFollower creates a follower row
func (r *GormTaskRepository) AddFollower(taskID, userID uint64) error {
	return r.db.Create(&models.TaskFollower{TaskID: taskID, UserID: userID}).Error
}

// RemoveFollower deletes a follower row
func (r *GormTaskRepository) RemoveFollower(taskID, userID uint64) error {
	return r.db.Where("task_id = ? AND user_id = ?", taskID, userID).
		Delete(&models.TaskFollower{}).Error
}
