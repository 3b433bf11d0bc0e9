package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	apierrors "github.com/taskflow/taskflow-api/internal/errors"
	"github.com/taskflow/taskflow-api/internal/dto"
	"github.com/taskflow/taskflow-api/internal/middleware"
	"github.com/taskflow/taskflow-api/internal/models"
	"github.com/taskflow/taskflow-api/internal/repository"
	"github.com/taskflow/taskflow-api/internal/services"
	"github.com/taskflow/taskflow-api/internal/utils"
)

type TaskHandler struct {
	taskService    *services.TaskService
	historyService *services.HistoryService
}

func NewTaskHandler(taskService *services.TaskService, historyService *services.HistoryService) *TaskHandler {
	return &TaskHandler{
		taskService:    taskService,
		historyService: historyService,
	}
}

var validStatuses = map[models.TaskStatus]bool{
	models.TaskStatusPending:    true,
	models.TaskStatusInProgress: true,
	models.TaskStatusCompleted:  true,
}

var validPriorities = map[models.TaskPriority]bool{
	models.TaskPriorityLow:    true,
	models.TaskPriorityMedium: true,
	models.TaskPriorityHigh:   true,
	models.TaskPriorityUrgent: true,
}

// ListTasks returns the caller's filtered, paginated task list
func (h *TaskHandler) ListTasks(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	params := utils.GetPaginationParams(c)
	filter := repository.TaskFilter{
		UserID:    userID,
		View:      repository.TaskView(c.DefaultQuery("view", string(repository.ViewAll))),
		DateField: c.DefaultQuery("date_field", "createdAt"),
		SortBy:    c.DefaultQuery("sort_by", "createdAt"),
		SortOrder: c.DefaultQuery("sort_order", "desc"),
		Page:      params.Page,
		PageSize:  params.Limit,
	}

	if teamIDStr := c.Query("team_id"); teamIDStr != "" {
		teamID, err := strconv.ParseUint(teamIDStr, 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid team_id")
			return
		}
		filter.TeamID = &teamID
	}
	if statusStr := c.Query("status"); statusStr != "" {
		status := models.TaskStatus(statusStr)
		if !validStatuses[status] {
			apierrors.BadRequest(c, "Invalid status")
			return
		}
		filter.Status = &status
	}
	if creatorStr := c.Query("creator_id"); creatorStr != "" {
		creatorID, err := strconv.ParseUint(creatorStr, 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid creator_id")
			return
		}
		filter.CreatorID = &creatorID
	}
	if assigneeStr := c.Query("assignee_id"); assigneeStr != "" {
		assigneeID, err := strconv.ParseUint(assigneeStr, 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid assignee_id")
			return
		}
		filter.AssigneeID = &assigneeID
	}
	if startStr := c.Query("start_date"); startStr != "" {
		start, err := parseDate(startStr)
		if err != nil {
			apierrors.BadRequest(c, "Invalid start_date")
			return
		}
		filter.StartDate = &start
	}
	if endStr := c.Query("end_date"); endStr != "" {
		end, err := parseDate(endStr)
		if err != nil {
			apierrors.BadRequest(c, "Invalid end_date")
			return
		}
		filter.EndDate = &end
	}

	items, total, err := h.taskService.List(filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	apierrors.Respond(c, http.StatusOK, dto.ToTaskListResponse(items, params.Page, params.Limit, total))
}

// GetTask returns a single task with relations
func (h *TaskHandler) GetTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	taskID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	task, err := h.taskService.GetTaskForUser(userID, taskID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	apierrors.Respond(c, http.StatusOK, dto.ToTaskDTO(*task))
}

// CreateTaskRequest is the create payload, shared by the subtask route
type CreateTaskRequest struct {
	Title        string     `json:"title" binding:"required"`
	Description  string     `json:"description"`
	TeamID       *uint64    `json:"team_id"`
	ParentTaskID *uint64    `json:"parent_task_id"`
	Priority     string     `json:"priority"`
	DueDate      *time.Time `json:"due_date"`
	AssigneeIDs  []uint64   `json:"assignee_ids"`
	FollowerIDs  []uint64   `json:"follower_ids"`
}

// CreateTask creates a new task
func (h *TaskHandler) CreateTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	priority := models.TaskPriority(req.Priority)
	if req.Priority != "" && !validPriorities[priority] {
		apierrors.BadRequest(c, "Invalid priority")
		return
	}

	task, err := h.taskService.Create(userID, services.CreateTaskInput{
		Title:        req.Title,
		Description:  req.Description,
		TeamID:       req.TeamID,
		ParentTaskID: req.ParentTaskID,
		Priority:     priority,
		DueDate:      req.DueDate,
		AssigneeIDs:  req.AssigneeIDs,
		FollowerIDs:  req.FollowerIDs,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	apierrors.Respond(c, http.StatusCreated, dto.ToTaskDTO(*task))
}

// CreateSubtask creates a task parented to the route task
func (h *TaskHandler) CreateSubtask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	parentID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	priority := models.TaskPriority(req.Priority)
	if req.Priority != "" && !validPriorities[priority] {
		apierrors.BadRequest(c, "Invalid priority")
		return
	}

	task, err := h.taskService.Create(userID, services.CreateTaskInput{
		Title:        req.Title,
		Description:  req.Description,
		TeamID:       req.TeamID,
		ParentTaskID: &parentID,
		Priority:     priority,
		DueDate:      req.DueDate,
		AssigneeIDs:  req.AssigneeIDs,
		FollowerIDs:  req.FollowerIDs,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	apierrors.Respond(c, http.StatusCreated, dto.ToTaskDTO(*task))
}

// UpdateTask applies a partial update
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	taskID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	// Raw parse so a null due_date is distinguishable from an absent one
	var raw map[string]any
	if err := c.ShouldBindJSON(&raw); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	input := services.UpdateTaskInput{}
	if v, ok := raw["title"]; ok {
		s, ok := v.(string)
		if !ok {
			apierrors.BadRequest(c, "Invalid title")
			return
		}
		input.Title = &s
	}
	if v, ok := raw["description"]; ok {
		s, ok := v.(string)
		if !ok {
			apierrors.BadRequest(c, "Invalid description")
			return
		}
		input.Description = &s
	}
	if v, ok := raw["status"]; ok {
		s, _ := v.(string)
		status := models.TaskStatus(s)
		if !validStatuses[status] {
			apierrors.BadRequest(c, "Invalid status")
			return
		}
		input.Status = &status
	}
	if v, ok := raw["priority"]; ok {
		s, _ := v.(string)
		priority := models.TaskPriority(s)
		if !validPriorities[priority] {
			apierrors.BadRequest(c, "Invalid priority")
			return
		}
		input.Priority = &priority
	}
	if v, ok := raw["due_date"]; ok {
		if v == nil {
			input.ClearDueDate = true
		} else if s, ok := v.(string); ok {
			parsed, err := parseDate(s)
			if err != nil {
				apierrors.BadRequest(c, "Invalid due_date")
				return
			}
			input.DueDate = &parsed
		} else {
			apierrors.BadRequest(c, "Invalid due_date")
			return
		}
	}

	task, err := h.taskService.Update(userID, taskID, input)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	apierrors.Respond(c, http.StatusOK, dto.ToTaskDTO(*task))
}

// DeleteTask soft-deletes a task
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	taskID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.taskService.Delete(userID, taskID); err != nil {
		respondServiceError(c, err)
		return
	}

	apierrors.Respond(c, http.StatusOK, gin.H{"message": "Task deleted successfully"})
}

// CompleteTask records the caller's completion, optionally cascading to
// subtasks via ?complete_subtasks=true
func (h *TaskHandler) CompleteTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	taskID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	completeSubtasks := c.DefaultQuery("complete_subtasks", "false") == "true"

	task, err := h.taskService.Complete(userID, taskID, completeSubtasks)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	apierrors.Respond(c, http.StatusOK, dto.ToTaskDTO(*task))
}

// GetSubtasks returns the direct children of a task
func (h *TaskHandler) GetSubtasks(c *gin.Context) {
	taskID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	subtasks, err := h.taskService.GetSubtasks(taskID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	items := make([]dto.TaskDTO, len(subtasks))
	for i, s := range subtasks {
		items[i] = dto.ToTaskDTO(s)
	}
	apierrors.Respond(c, http.StatusOK, items)
}

// AddAssignee adds an assignee to a task
func (h *TaskHandler) AddAssignee(c *gin.Context) {
	h.assigneeOp(c, h.taskService.AddAssignee, "Assignee added")
}

// RemoveAssignee removes an assignee from a task
func (h *TaskHandler) RemoveAssignee(c *gin.Context) {
	h.assigneeOp(c, h.taskService.RemoveAssignee, "Assignee removed")
}

// AddFollower adds a follower; no edit permission required
func (h *TaskHandler) AddFollower(c *gin.Context) {
	h.assigneeOp(c, h.taskService.AddFollower, "Follower added")
}

// RemoveFollower removes a follower
func (h *TaskHandler) RemoveFollower(c *gin.Context) {
	h.assigneeOp(c, h.taskService.RemoveFollower, "Follower removed")
}

func (h *TaskHandler) assigneeOp(c *gin.Context, op func(actorID, taskID, subjectID uint64) error, message string) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	taskID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	subjectID, ok := parseIDParam(c, "user_id")
	if !ok {
		return
	}

	if err := op(userID, taskID, subjectID); err != nil {
		respondServiceError(c, err)
		return
	}

	apierrors.Respond(c, http.StatusOK, gin.H{"message": message})
}

// GetTaskHistory returns the task's audit trail, newest first
func (h *TaskHandler) GetTaskHistory(c *gin.Context) {
	taskID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	entries, err := h.historyService.GetTaskHistory(taskID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	items := make([]dto.HistoryEntryDTO, len(entries))
	for i, e := range entries {
		items[i] = dto.ToHistoryEntryDTO(e)
	}
	apierrors.Respond(c, http.StatusOK, items)
}

// parseIDParam parses a numeric URL parameter, responding 400 on failure.
func parseIDParam(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid "+name)
		return 0, false
	}
	return id, true
}

// parseDate accepts RFC3339 timestamps and plain dates.
func parseDate(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", value)
}
