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

// TeamServiceTestSuite defines the test suite for TeamService
type TeamServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	service *TeamService
}

// SetupTest runs before each test
func (suite *TeamServiceTestSuite) SetupTest() {
	var err error

	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	suite.Require().NoError(err)

	err = suite.db.AutoMigrate(
		&models.User{},
		&models.Team{},
		&models.TeamMember{},
	)
	suite.Require().NoError(err)

	suite.service = NewTeamService(repository.NewTeamRepository(suite.db))
}

// TearDownTest runs after each test
func (suite *TeamServiceTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

func (suite *TeamServiceTestSuite) createTestUser(email string) *models.User {
	user := &models.User{Email: email, PasswordHash: "hashedpassword", Name: email}
	suite.db.Create(user)
	return user
}

func (suite *TeamServiceTestSuite) TestCreate_OwnerMembership() {
	owner := suite.createTestUser("owner@example.com")

	team, err := suite.service.Create(owner.ID, CreateTeamInput{Name: "Engineering"})
	suite.Require().NoError(err)

	assert.Equal(suite.T(), owner.ID, team.OwnerID)

	var member models.TeamMember
	suite.Require().NoError(suite.db.Where("team_id = ? AND user_id = ?", team.ID, owner.ID).First(&member).Error)
	assert.Equal(suite.T(), models.RoleOwner, member.Role)
}

func (suite *TeamServiceTestSuite) TestCreate_NameRequired() {
	owner := suite.createTestUser("owner@example.com")

	_, err := suite.service.Create(owner.ID, CreateTeamInput{Name: ""})
	assert.ErrorIs(suite.T(), err, ErrTeamNameRequired)
}

func (suite *TeamServiceTestSuite) TestAddMember_DefaultRole() {
	owner := suite.createTestUser("owner@example.com")
	joiner := suite.createTestUser("joiner@example.com")
	team, err := suite.service.Create(owner.ID, CreateTeamInput{Name: "Engineering"})
	suite.Require().NoError(err)

	member, err := suite.service.AddMember(owner.ID, team.ID, joiner.ID, "")
	suite.Require().NoError(err)
	assert.Equal(suite.T(), models.RoleMember, member.Role)
}

func (suite *TeamServiceTestSuite) TestAddMember_Duplicate() {
	owner := suite.createTestUser("owner@example.com")
	joiner := suite.createTestUser("joiner@example.com")
	team, err := suite.service.Create(owner.ID, CreateTeamInput{Name: "Engineering"})
	suite.Require().NoError(err)

	_, err = suite.service.AddMember(owner.ID, team.ID, joiner.ID, "")
	suite.Require().NoError(err)

	_, err = suite.service.AddMember(owner.ID, team.ID, joiner.ID, "")
	assert.ErrorIs(suite.T(), err, ErrAlreadyTeamMember)
}

func (suite *TeamServiceTestSuite) TestAddMember_RequiresManageRights() {
	owner := suite.createTestUser("owner@example.com")
	member := suite.createTestUser("member@example.com")
	joiner := suite.createTestUser("joiner@example.com")
	team, err := suite.service.Create(owner.ID, CreateTeamInput{Name: "Engineering"})
	suite.Require().NoError(err)

	_, err = suite.service.AddMember(owner.ID, team.ID, member.ID, models.RoleMember)
	suite.Require().NoError(err)

	// A plain member cannot add others
	_, err = suite.service.AddMember(member.ID, team.ID, joiner.ID, "")
	assert.ErrorIs(suite.T(), err, ErrNotTeamAdmin)
}

func (suite *TeamServiceTestSuite) TestRemoveMember_OwnerProtected() {
	owner := suite.createTestUser("owner@example.com")
	admin := suite.createTestUser("admin@example.com")
	team, err := suite.service.Create(owner.ID, CreateTeamInput{Name: "Engineering"})
	suite.Require().NoError(err)

	_, err = suite.service.AddMember(owner.ID, team.ID, admin.ID, models.RoleAdmin)
	suite.Require().NoError(err)

	err = suite.service.RemoveMember(admin.ID, team.ID, owner.ID)
	assert.ErrorIs(suite.T(), err, ErrCannotRemoveOwner)
}

func (suite *TeamServiceTestSuite) TestRemoveMember_Success() {
	owner := suite.createTestUser("owner@example.com")
	member := suite.createTestUser("member@example.com")
	team, err := suite.service.Create(owner.ID, CreateTeamInput{Name: "Engineering"})
	suite.Require().NoError(err)

	_, err = suite.service.AddMember(owner.ID, team.ID, member.ID, "")
	suite.Require().NoError(err)

	suite.Require().NoError(suite.service.RemoveMember(owner.ID, team.ID, member.ID))

	isMember, err := suite.service.IsTeamMember(team.ID, member.ID)
	suite.Require().NoError(err)
	assert.False(suite.T(), isMember)
}

func (suite *TeamServiceTestSuite) TestListUserTeams() {
	owner := suite.createTestUser("owner@example.com")
	other := suite.createTestUser("other@example.com")
	team1, err := suite.service.Create(owner.ID, CreateTeamInput{Name: "Alpha"})
	suite.Require().NoError(err)
	_, err = suite.service.Create(other.ID, CreateTeamInput{Name: "Beta"})
	suite.Require().NoError(err)

	teams, err := suite.service.ListUserTeams(owner.ID)
	suite.Require().NoError(err)
	suite.Require().Len(teams, 1)
	assert.Equal(suite.T(), team1.ID, teams[0].ID)
}

// TestTeamServiceTestSuite runs the test suite
func TestTeamServiceTestSuite(t *testing.T) {
	suite.Run(t, new(TeamServiceTestSuite))
}
