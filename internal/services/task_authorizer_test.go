package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"github.com/taskflow/taskflow-api/internal/models"
	"github.com/taskflow/taskflow-api/internal/repository"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// TaskAuthorizerTestSuite defines the test suite for TaskAuthorizer
type TaskAuthorizerTestSuite struct {
	suite.Suite
	db         *gorm.DB
	authorizer *TaskAuthorizer

	creator  *models.User
	assignee *models.User
	follower *models.User
	admin    *models.User
	member   *models.User
	outsider *models.User
	team     *models.Team
	teamTask *models.Task
	soloTask *models.Task
}

// SetupTest runs before each test
func (suite *TaskAuthorizerTestSuite) SetupTest() {
	var err error

	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	suite.Require().NoError(err)

	err = suite.db.AutoMigrate(
		&models.User{},
		&models.Team{},
		&models.TeamMember{},
		&models.Task{},
		&models.TaskAssignee{},
		&models.TaskFollower{},
	)
	suite.Require().NoError(err)

	suite.authorizer = NewTaskAuthorizer(repository.NewTeamRepository(suite.db))

	suite.creator = suite.createUser("creator@example.com")
	suite.assignee = suite.createUser("assignee@example.com")
	suite.follower = suite.createUser("follower@example.com")
	suite.admin = suite.createUser("admin@example.com")
	suite.member = suite.createUser("member@example.com")
	suite.outsider = suite.createUser("outsider@example.com")

	suite.team = &models.Team{Name: "Team", OwnerID: suite.creator.ID}
	suite.db.Create(suite.team)
	suite.db.Create(&models.TeamMember{TeamID: suite.team.ID, UserID: suite.creator.ID, Role: models.RoleOwner})
	suite.db.Create(&models.TeamMember{TeamID: suite.team.ID, UserID: suite.admin.ID, Role: models.RoleAdmin})
	suite.db.Create(&models.TeamMember{TeamID: suite.team.ID, UserID: suite.member.ID, Role: models.RoleMember})

	suite.teamTask = &models.Task{Title: "Team task", CreatorID: suite.creator.ID, TeamID: &suite.team.ID}
	suite.db.Create(suite.teamTask)
	suite.soloTask = &models.Task{Title: "Personal task", CreatorID: suite.creator.ID}
	suite.db.Create(suite.soloTask)

	suite.db.Create(&models.TaskAssignee{TaskID: suite.teamTask.ID, UserID: suite.assignee.ID})
	suite.db.Create(&models.TaskFollower{TaskID: suite.teamTask.ID, UserID: suite.follower.ID})

	// Reload with the relations the authorizer inspects
	suite.Require().NoError(suite.db.Preload("Assignees").Preload("Followers").First(suite.teamTask, suite.teamTask.ID).Error)
}

// TearDownTest runs after each test
func (suite *TaskAuthorizerTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

func (suite *TaskAuthorizerTestSuite) createUser(email string) *models.User {
	user := &models.User{Email: email, PasswordHash: "hashedpassword", Name: email}
	suite.db.Create(user)
	return user
}

func (suite *TaskAuthorizerTestSuite) TestCanView() {
	cases := []struct {
		name   string
		userID uint64
		want   bool
	}{
		{"creator", suite.creator.ID, true},
		{"assignee", suite.assignee.ID, true},
		{"follower", suite.follower.ID, true},
		{"team admin", suite.admin.ID, true},
		{"plain member", suite.member.ID, true},
		{"outsider", suite.outsider.ID, false},
	}

	for _, tc := range cases {
		ok, err := suite.authorizer.CanView(suite.teamTask, tc.userID)
		assert.NoError(suite.T(), err, tc.name)
		assert.Equal(suite.T(), tc.want, ok, tc.name)
	}
}

func (suite *TaskAuthorizerTestSuite) TestCanEdit() {
	cases := []struct {
		name   string
		userID uint64
		want   bool
	}{
		{"creator", suite.creator.ID, true},
		{"assignee", suite.assignee.ID, true},
		{"follower", suite.follower.ID, false},
		{"team admin", suite.admin.ID, true},
		{"plain member", suite.member.ID, false},
		{"outsider", suite.outsider.ID, false},
	}

	for _, tc := range cases {
		ok, err := suite.authorizer.CanEdit(suite.teamTask, tc.userID)
		assert.NoError(suite.T(), err, tc.name)
		assert.Equal(suite.T(), tc.want, ok, tc.name)
	}
}

func (suite *TaskAuthorizerTestSuite) TestCanDelete() {
	cases := []struct {
		name   string
		userID uint64
		want   bool
	}{
		{"creator", suite.creator.ID, true},
		{"assignee", suite.assignee.ID, false},
		{"follower", suite.follower.ID, false},
		{"team admin", suite.admin.ID, true},
		{"plain member", suite.member.ID, false},
		{"outsider", suite.outsider.ID, false},
	}

	for _, tc := range cases {
		ok, err := suite.authorizer.CanDelete(suite.teamTask, tc.userID)
		assert.NoError(suite.T(), err, tc.name)
		assert.Equal(suite.T(), tc.want, ok, tc.name)
	}
}

func (suite *TaskAuthorizerTestSuite) TestPersonalTaskHasNoTeamFallback() {
	// A team admin holds no rights over a personal task
	ok, err := suite.authorizer.CanView(suite.soloTask, suite.admin.ID)
	assert.NoError(suite.T(), err)
	assert.False(suite.T(), ok)
}

func (suite *TaskAuthorizerTestSuite) TestAssertVariantsReturnSentinels() {
	assert.ErrorIs(suite.T(), suite.authorizer.AssertCanView(suite.teamTask, suite.outsider.ID), ErrTaskViewDenied)
	assert.ErrorIs(suite.T(), suite.authorizer.AssertCanEdit(suite.teamTask, suite.member.ID), ErrTaskEditDenied)
	assert.ErrorIs(suite.T(), suite.authorizer.AssertCanDelete(suite.teamTask, suite.assignee.ID), ErrTaskDeleteDenied)
}

// TestTaskAuthorizerTestSuite runs the test suite
func TestTaskAuthorizerTestSuite(t *testing.T) {
	suite.Run(t, new(TaskAuthorizerTestSuite))
}
