package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/taskflow/taskflow-api/internal/models"
	"github.com/taskflow/taskflow-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrTeamNotFound      = errors.New("team not found")
	ErrNotTeamAdmin      = errors.New("only a team owner or admin can perform this action")
	ErrAlreadyTeamMember = errors.New("user is already a member of the team")
	ErrCannotRemoveOwner = errors.New("cannot remove the team owner")
	ErrTeamNameRequired  = errors.New("team name is required")
)

// TeamService handles team lifecycle and membership management.
type TeamService struct {
	teamRepo repository.TeamRepository
}

// NewTeamService creates a new TeamService
func NewTeamService(teamRepo repository.TeamRepository) *TeamService {
	return &TeamService{teamRepo: teamRepo}
}

// CreateTeamInput represents input for creating a team
type CreateTeamInput struct {
	Name        string
	Description string
}

// Create makes a team with the creating user as its owner member.
func (s *TeamService) Create(actorID uint64, input CreateTeamInput) (*models.Team, error) {
	if input.Name == "" {
		return nil, ErrTeamNameRequired
	}

	team := &models.Team{
		Name:        input.Name,
		Description: input.Description,
		OwnerID:     actorID,
	}
	member := &models.TeamMember{
		Role:     models.RoleOwner,
		JoinedAt: time.Now(),
	}

	if err := s.teamRepo.CreateWithOwner(team, member); err != nil {
		return nil, fmt.Errorf("failed to create team: %w", err)
	}

	return s.GetTeam(team.ID)
}

// GetTeam returns a team with its owner and members
func (s *TeamService) GetTeam(teamID uint64) (*models.Team, error) {
	team, err := s.teamRepo.FindByID(teamID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to find team: %w", err)
	}
	return team, nil
}

// ListUserTeams returns every team the user belongs to
func (s *TeamService) ListUserTeams(userID uint64) ([]models.Team, error) {
	memberships, err := s.teamRepo.ListMembershipsByUserID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch memberships: %w", err)
	}

	teams := make([]models.Team, 0, len(memberships))
	for _, m := range memberships {
		teams = append(teams, m.Team)
	}
	return teams, nil
}

// Update changes a team's name or description. Admin or owner only.
func (s *TeamService) Update(actorID, teamID uint64, input CreateTeamInput) (*models.Team, error) {
	team, err := s.GetTeam(teamID)
	if err != nil {
		return nil, err
	}

	if err := s.assertCanManage(teamID, actorID); err != nil {
		return nil, err
	}

	if input.Name != "" {
		team.Name = input.Name
	}
	if input.Description != "" {
		team.Description = input.Description
	}

	if err := s.teamRepo.Save(team); err != nil {
		return nil, fmt.Errorf("failed to update team: %w", err)
	}

	return s.GetTeam(teamID)
}

// AddMember adds a user to a team. Admin or owner only; duplicate memberships
// are rejected.
func (s *TeamService) AddMember(actorID, teamID, userID uint64, role models.TeamRole) (*models.TeamMember, error) {
	if _, err := s.GetTeam(teamID); err != nil {
		return nil, err
	}

	if err := s.assertCanManage(teamID, actorID); err != nil {
		return nil, err
	}

	if _, err := s.teamRepo.FindMember(teamID, userID); err == nil {
		return nil, ErrAlreadyTeamMember
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check membership: %w", err)
	}

	if role == "" {
		role = models.RoleMember
	}

	member := &models.TeamMember{
		TeamID:   teamID,
		UserID:   userID,
		Role:     role,
		JoinedAt: time.Now(),
	}
	if err := s.teamRepo.AddMember(member); err != nil {
		return nil, fmt.Errorf("failed to add member: %w", err)
	}

	return member, nil
}

// RemoveMember removes a user from a team. The owner's membership cannot be
// removed while they remain the owner.
func (s *TeamService) RemoveMember(actorID, teamID, userID uint64) error {
	team, err := s.GetTeam(teamID)
	if err != nil {
		return err
	}

	if err := s.assertCanManage(teamID, actorID); err != nil {
		return err
	}

	if team.OwnerID == userID {
		return ErrCannotRemoveOwner
	}

	if err := s.teamRepo.RemoveMember(teamID, userID); err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}

	return nil
}

// ListMembers returns a team's members with their users loaded
func (s *TeamService) ListMembers(teamID uint64) ([]models.TeamMember, error) {
	members, err := s.teamRepo.ListMembers(teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch members: %w", err)
	}
	return members, nil
}

// IsTeamMember reports whether the user holds any membership in the team.
func (s *TeamService) IsTeamMember(teamID, userID uint64) (bool, error) {
	_, err := s.teamRepo.FindMember(teamID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check membership: %w", err)
	}
	return true, nil
}

func (s *TeamService) assertCanManage(teamID, userID uint64) error {
	member, err := s.teamRepo.FindMember(teamID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotTeamAdmin
		}
		return fmt.Errorf("failed to check membership: %w", err)
	}
	if !member.Role.CanManageTeam() {
		return ErrNotTeamAdmin
	}
	return nil
}
