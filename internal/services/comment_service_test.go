package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"github.com/taskflow/taskflow-api/internal/events"
	"github.com/taskflow/taskflow-api/internal/models"
	"github.com/taskflow/taskflow-api/internal/repository"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// CommentServiceTestSuite defines the test suite for CommentService
type CommentServiceTestSuite struct {
	suite.Suite
	db             *gorm.DB
	bus            *events.Bus
	service        *CommentService
	historyService *HistoryService
}

// SetupTest runs before each test
func (suite *CommentServiceTestSuite) SetupTest() {
	var err error

	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	suite.Require().NoError(err)

	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.SetMaxOpenConns(1)

	err = suite.db.AutoMigrate(
		&models.User{},
		&models.Task{},
		&models.Comment{},
		&models.TaskHistory{},
	)
	suite.Require().NoError(err)

	suite.bus = events.NewBus()
	suite.service = NewCommentService(
		repository.NewCommentRepository(suite.db),
		repository.NewTaskRepository(suite.db),
		suite.bus,
	)
	suite.historyService = NewHistoryService(repository.NewHistoryRepository(suite.db))
	suite.historyService.RegisterListeners(suite.bus)
}

// TearDownTest runs after each test
func (suite *CommentServiceTestSuite) TearDownTest() {
	suite.bus.Wait()
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

func (suite *CommentServiceTestSuite) createTestUser(email string) *models.User {
	user := &models.User{Email: email, PasswordHash: "hashedpassword", Name: email}
	suite.db.Create(user)
	return user
}

func (suite *CommentServiceTestSuite) createTestTask(title string, creatorID uint64) *models.Task {
	task := &models.Task{
		Title:     title,
		CreatorID: creatorID,
		Status:    models.TaskStatusPending,
		Priority:  models.TaskPriorityMedium,
	}
	suite.db.Create(task)
	return task
}

func (suite *CommentServiceTestSuite) TestCreate_RecordsHistory() {
	user := suite.createTestUser("author@example.com")
	task := suite.createTestTask("Task", user.ID)

	comment, err := suite.service.Create(user.ID, task.ID, "Looks good")
	suite.Require().NoError(err)
	assert.Equal(suite.T(), "Looks good", comment.Content)

	suite.bus.Wait()
	entries, err := suite.historyService.GetTaskHistory(task.ID)
	suite.Require().NoError(err)
	suite.Require().Len(entries, 1)
	assert.Equal(suite.T(), models.HistoryCommentAdded, entries[0].ActionType)
	assert.Equal(suite.T(), "Comment added", entries[0].Description)
}

func (suite *CommentServiceTestSuite) TestCreate_ContentRequired() {
	user := suite.createTestUser("author@example.com")
	task := suite.createTestTask("Task", user.ID)

	_, err := suite.service.Create(user.ID, task.ID, "")
	assert.ErrorIs(suite.T(), err, ErrContentRequired)
}

func (suite *CommentServiceTestSuite) TestCreate_TaskNotFound() {
	user := suite.createTestUser("author@example.com")

	_, err := suite.service.Create(user.ID, 9999, "Orphan comment")
	assert.ErrorIs(suite.T(), err, ErrTaskNotFound)
}

func (suite *CommentServiceTestSuite) TestUpdate_AuthorOnly() {
	author := suite.createTestUser("author@example.com")
	other := suite.createTestUser("other@example.com")
	task := suite.createTestTask("Task", author.ID)

	comment, err := suite.service.Create(author.ID, task.ID, "First draft")
	suite.Require().NoError(err)

	_, err = suite.service.Update(other.ID, comment.ID, "Rewritten")
	assert.ErrorIs(suite.T(), err, ErrCommentEditDenied)

	updated, err := suite.service.Update(author.ID, comment.ID, "Second draft")
	suite.Require().NoError(err)
	assert.Equal(suite.T(), "Second draft", updated.Content)
}

func (suite *CommentServiceTestSuite) TestDelete_AuthorOnly() {
	author := suite.createTestUser("author@example.com")
	other := suite.createTestUser("other@example.com")
	task := suite.createTestTask("Task", author.ID)

	comment, err := suite.service.Create(author.ID, task.ID, "To be removed")
	suite.Require().NoError(err)

	err = suite.service.Delete(other.ID, comment.ID)
	assert.ErrorIs(suite.T(), err, ErrCommentEditDenied)

	suite.Require().NoError(suite.service.Delete(author.ID, comment.ID))

	_, err = suite.service.Update(author.ID, comment.ID, "Too late")
	assert.ErrorIs(suite.T(), err, ErrCommentNotFound)
}

func (suite *CommentServiceTestSuite) TestListByTask_OldestFirst() {
	user := suite.createTestUser("author@example.com")
	task := suite.createTestTask("Task", user.ID)

	first, err := suite.service.Create(user.ID, task.ID, "First")
	suite.Require().NoError(err)
	second, err := suite.service.Create(user.ID, task.ID, "Second")
	suite.Require().NoError(err)

	comments, err := suite.service.ListByTask(task.ID)
	suite.Require().NoError(err)
	suite.Require().Len(comments, 2)
	assert.Equal(suite.T(), first.ID, comments[0].ID)
	assert.Equal(suite.T(), second.ID, comments[1].ID)
}

// TestCommentServiceTestSuite runs the test suite
func TestCommentServiceTestSuite(t *testing.T) {
	suite.Run(t, new(CommentServiceTestSuite))
}
