package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"github.com/taskflow/taskflow-api/internal/database"
	"github.com/taskflow/taskflow-api/internal/events"
	"github.com/taskflow/taskflow-api/internal/models"
	"github.com/taskflow/taskflow-api/internal/repository"
	"github.com/taskflow/taskflow-api/internal/services"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// TaskHandlerTestSuite defines the test suite for TaskHandler
type TaskHandlerTestSuite struct {
	suite.Suite
	db      *gorm.DB
	bus     *events.Bus
	handler *TaskHandler
}

// SetupTest runs before each test
func (suite *TaskHandlerTestSuite) SetupTest() {
	var err error

	// Create in-memory SQLite database
	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	suite.Require().NoError(err)

	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.SetMaxOpenConns(1)

	// Run migrations
	err = suite.db.AutoMigrate(
		&models.User{},
		&models.Team{},
		&models.TeamMember{},
		&models.Task{},
		&models.TaskAssignee{},
		&models.TaskFollower{},
		&models.Comment{},
		&models.TaskHistory{},
	)
	suite.Require().NoError(err)

	// Set the test DB as the default database
	database.SetDB(suite.db)

	taskRepo := repository.NewTaskRepository(suite.db)
	teamRepo := repository.NewTeamRepository(suite.db)
	historyRepo := repository.NewHistoryRepository(suite.db)

	suite.bus = events.NewBus()
	taskService := services.NewTaskService(taskRepo, teamRepo, services.NewTaskAuthorizer(teamRepo), suite.bus)
	historyService := services.NewHistoryService(historyRepo)
	historyService.RegisterListeners(suite.bus)

	suite.handler = NewTaskHandler(taskService, historyService)

	// Set Gin to test mode
	gin.SetMode(gin.TestMode)
}

// TearDownTest runs after each test
func (suite *TaskHandlerTestSuite) TearDownTest() {
	suite.bus.Wait()
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

// Helper functions to create test data

func (suite *TaskHandlerTestSuite) createTestUser(email string) *models.User {
	user := &models.User{
		Email:        email,
		PasswordHash: "hashedpassword",
		Name:         email,
	}
	suite.db.Create(user)
	return user
}

func (suite *TaskHandlerTestSuite) createTestTask(title string, creatorID uint64) *models.Task {
	task := &models.Task{
		Title:     title,
		CreatorID: creatorID,
		Status:    models.TaskStatusPending,
		Priority:  models.TaskPriorityMedium,
	}
	suite.db.Create(task)
	return task
}

// Helper function to create authenticated context
func (suite *TaskHandlerTestSuite) createAuthContext(method, url string, body []byte, userID uint64) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, url, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, url, nil)
	}

	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Set("user_id", userID)

	return c, w
}

// envelope unwraps the uniform success envelope
func (suite *TaskHandlerTestSuite) envelope(w *httptest.ResponseRecorder) map[string]interface{} {
	var response map[string]interface{}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	suite.Require().Equal(true, response["success"])
	return response
}

// TestListTasks_Success tests successful task listing
func (suite *TaskHandlerTestSuite) TestListTasks_Success() {
	user := suite.createTestUser("test@example.com")
	task := suite.createTestTask("Test Task", user.ID)

	c, w := suite.createAuthContext("GET", "/api/tasks", nil, user.ID)

	suite.handler.ListTasks(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	response := suite.envelope(w)
	data := response["data"].(map[string]interface{})
	assert.Contains(suite.T(), data, "items")
	assert.Contains(suite.T(), data, "meta")

	items := data["items"].([]interface{})
	suite.Require().Len(items, 1)
	firstTask := items[0].(map[string]interface{})
	assert.Equal(suite.T(), task.Title, firstTask["title"])
	assert.Equal(suite.T(), float64(0), firstTask["subtasks_count"])
}

// TestListTasks_Unauthorized tests listing without authentication
func (suite *TaskHandlerTestSuite) TestListTasks_Unauthorized() {
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/tasks", nil)
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	suite.handler.ListTasks(c)

	assert.Equal(suite.T(), http.StatusUnauthorized, w.Code)
}

// TestListTasks_InvalidStatus tests listing with a bad status filter
func (suite *TaskHandlerTestSuite) TestListTasks_InvalidStatus() {
	user := suite.createTestUser("test@example.com")

	c, w := suite.createAuthContext("GET", "/api/tasks", nil, user.ID)
	c.Request.URL.RawQuery = "status=nonsense"

	suite.handler.ListTasks(c)

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

// TestGetTask_Success tests successful task retrieval
func (suite *TaskHandlerTestSuite) TestGetTask_Success() {
	user := suite.createTestUser("test@example.com")
	task := suite.createTestTask("Test Task", user.ID)

	c, w := suite.createAuthContext("GET", "/api/tasks/1", nil, user.ID)
	c.Params = gin.Params{{Key: "id", Value: "1"}}

	suite.handler.GetTask(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	response := suite.envelope(w)
	data := response["data"].(map[string]interface{})
	assert.Equal(suite.T(), task.Title, data["title"])
}

// TestGetTask_AccessDenied tests retrieval by an unrelated user
func (suite *TaskHandlerTestSuite) TestGetTask_AccessDenied() {
	creator := suite.createTestUser("creator@example.com")
	stranger := suite.createTestUser("stranger@example.com")
	suite.createTestTask("Private Task", creator.ID)

	c, w := suite.createAuthContext("GET", "/api/tasks/1", nil, stranger.ID)
	c.Params = gin.Params{{Key: "id", Value: "1"}}

	suite.handler.GetTask(c)

	assert.Equal(suite.T(), http.StatusForbidden, w.Code)

	var response map[string]interface{}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	errObj := response["error"].(map[string]interface{})
	assert.Equal(suite.T(), "TASK_ACCESS_DENIED", errObj["code"])
}

// TestGetTask_NotFound tests retrieval of a missing task
func (suite *TaskHandlerTestSuite) TestGetTask_NotFound() {
	user := suite.createTestUser("test@example.com")

	c, w := suite.createAuthContext("GET", "/api/tasks/99", nil, user.ID)
	c.Params = gin.Params{{Key: "id", Value: "99"}}

	suite.handler.GetTask(c)

	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
}

// TestCreateTask_Success tests successful task creation
func (suite *TaskHandlerTestSuite) TestCreateTask_Success() {
	user := suite.createTestUser("test@example.com")

	requestBody := map[string]interface{}{
		"title":       "New Task",
		"description": "Task Description",
	}
	body, _ := json.Marshal(requestBody)

	c, w := suite.createAuthContext("POST", "/api/tasks", body, user.ID)

	suite.handler.CreateTask(c)

	assert.Equal(suite.T(), http.StatusCreated, w.Code)

	response := suite.envelope(w)
	data := response["data"].(map[string]interface{})
	assert.Equal(suite.T(), "New Task", data["title"])
	assert.Equal(suite.T(), "pending", data["status"])
	assert.Equal(suite.T(), "medium", data["priority"])
}

// TestCreateTask_MissingTitle tests task creation without a title
func (suite *TaskHandlerTestSuite) TestCreateTask_MissingTitle() {
	user := suite.createTestUser("test@example.com")

	body, _ := json.Marshal(map[string]interface{}{"description": "No title"})

	c, w := suite.createAuthContext("POST", "/api/tasks", body, user.ID)

	suite.handler.CreateTask(c)

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

// TestUpdateTask_NullDueDate tests updating due_date to null
func (suite *TaskHandlerTestSuite) TestUpdateTask_NullDueDate() {
	user := suite.createTestUser("test@example.com")
	task := suite.createTestTask("Task with Due Date", user.ID)
	dueDate := time.Now().Add(24 * time.Hour)
	suite.db.Model(task).Update("due_date", dueDate)

	body := []byte(`{"due_date": null}`)

	c, w := suite.createAuthContext("PATCH", "/api/tasks/1", body, user.ID)
	c.Params = gin.Params{{Key: "id", Value: "1"}}

	suite.handler.UpdateTask(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	response := suite.envelope(w)
	data := response["data"].(map[string]interface{})
	assert.Nil(suite.T(), data["due_date"])
}

// TestUpdateTask_InvalidStatus tests updating to an unknown status
func (suite *TaskHandlerTestSuite) TestUpdateTask_InvalidStatus() {
	user := suite.createTestUser("test@example.com")
	suite.createTestTask("Task", user.ID)

	body := []byte(`{"status": "archived"}`)

	c, w := suite.createAuthContext("PATCH", "/api/tasks/1", body, user.ID)
	c.Params = gin.Params{{Key: "id", Value: "1"}}

	suite.handler.UpdateTask(c)

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

// TestDeleteTask_NotCreator tests task deletion by an assignee
func (suite *TaskHandlerTestSuite) TestDeleteTask_NotCreator() {
	creator := suite.createTestUser("creator@example.com")
	assignee := suite.createTestUser("assignee@example.com")
	task := suite.createTestTask("Task to Delete", creator.ID)
	suite.db.Create(&models.TaskAssignee{TaskID: task.ID, UserID: assignee.ID})

	c, w := suite.createAuthContext("DELETE", "/api/tasks/1", nil, assignee.ID)
	c.Params = gin.Params{{Key: "id", Value: "1"}}

	suite.handler.DeleteTask(c)

	assert.Equal(suite.T(), http.StatusForbidden, w.Code)

	var response map[string]interface{}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	errObj := response["error"].(map[string]interface{})
	assert.Equal(suite.T(), "TASK_DELETE_DENIED", errObj["code"])
}

// TestDeleteTask_Success tests successful soft deletion
func (suite *TaskHandlerTestSuite) TestDeleteTask_Success() {
	user := suite.createTestUser("test@example.com")
	task := suite.createTestTask("Task to Delete", user.ID)

	c, w := suite.createAuthContext("DELETE", "/api/tasks/1", nil, user.ID)
	c.Params = gin.Params{{Key: "id", Value: "1"}}

	suite.handler.DeleteTask(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var deleted models.Task
	suite.Require().NoError(suite.db.First(&deleted, task.ID).Error)
	assert.True(suite.T(), deleted.IsDeleted)
}

// TestCompleteTask_WithSubtaskCascade tests completing with the cascade flag
func (suite *TaskHandlerTestSuite) TestCompleteTask_WithSubtaskCascade() {
	user := suite.createTestUser("test@example.com")
	parent := suite.createTestTask("Parent", user.ID)
	sub := &models.Task{Title: "Sub", CreatorID: user.ID, ParentTaskID: &parent.ID}
	suite.db.Create(sub)

	c, w := suite.createAuthContext("POST", "/api/tasks/1/complete", nil, user.ID)
	c.Params = gin.Params{{Key: "id", Value: "1"}}
	c.Request.URL.RawQuery = "complete_subtasks=true"

	suite.handler.CompleteTask(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	response := suite.envelope(w)
	data := response["data"].(map[string]interface{})
	assert.Equal(suite.T(), "completed", data["status"])

	var reloaded models.Task
	suite.Require().NoError(suite.db.First(&reloaded, sub.ID).Error)
	assert.Equal(suite.T(), models.TaskStatusCompleted, reloaded.Status)
}

// TestGetTaskHistory_NewestFirst tests the history endpoint ordering
func (suite *TaskHandlerTestSuite) TestGetTaskHistory_NewestFirst() {
	user := suite.createTestUser("test@example.com")
	task := suite.createTestTask("Task", user.ID)
	suite.db.Create(&models.TaskHistory{TaskID: task.ID, UserID: user.ID, ActionType: models.HistoryCreated, Description: "Task \"Task\" was created"})
	suite.db.Create(&models.TaskHistory{TaskID: task.ID, UserID: user.ID, ActionType: models.HistoryCompleted, Description: "Task completed by user"})

	c, w := suite.createAuthContext("GET", "/api/tasks/1/history", nil, user.ID)
	c.Params = gin.Params{{Key: "id", Value: "1"}}

	suite.handler.GetTaskHistory(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	response := suite.envelope(w)
	entries := response["data"].([]interface{})
	suite.Require().Len(entries, 2)
	first := entries[0].(map[string]interface{})
	assert.Equal(suite.T(), "Task completed by user", first["description"])
}

// TestAddAssignee_Success tests adding an assignee via the handler
func (suite *TaskHandlerTestSuite) TestAddAssignee_Success() {
	creator := suite.createTestUser("creator@example.com")
	assignee := suite.createTestUser("assignee@example.com")
	task := suite.createTestTask("Task", creator.ID)

	c, w := suite.createAuthContext("POST", "/api/tasks/1/assignees/2", nil, creator.ID)
	c.Params = gin.Params{{Key: "id", Value: "1"}, {Key: "user_id", Value: "2"}}

	suite.handler.AddAssignee(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var row models.TaskAssignee
	err := suite.db.Where("task_id = ? AND user_id = ?", task.ID, assignee.ID).First(&row).Error
	assert.NoError(suite.T(), err)
}

// TestSuite runs the test suite
func TestTaskHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(TaskHandlerTestSuite))
}
