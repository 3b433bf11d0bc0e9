package services

import (
	"errors"
	"fmt"

	"github.com/taskflow/taskflow-api/internal/models"
	"github.com/taskflow/taskflow-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrTaskViewDenied   = errors.New("user does not have permission to access this task")
	ErrTaskEditDenied   = errors.New("user does not have permission to edit this task")
	ErrTaskDeleteDenied = errors.New("user does not have permission to delete this task")
)

// TaskAuthorizer centralizes task permission decisions. Every method takes a
// task loaded with its assignee and follower lists; membership is resolved
// against the team store only when the task belongs to a team, so personal
// tasks never gain a team fallback.
type TaskAuthorizer struct {
	teamRepo repository.TeamRepository
}

// NewTaskAuthorizer creates a new TaskAuthorizer
func NewTaskAuthorizer(teamRepo repository.TeamRepository) *TaskAuthorizer {
	return &TaskAuthorizer{teamRepo: teamRepo}
}

// CanView reports whether the user may view the task.
// Creator, assignee, follower, or any team member can view.
func (a *TaskAuthorizer) CanView(task *models.Task, userID uint64) (bool, error) {
	if task.CreatorID == userID {
		return true, nil
	}
	if task.HasAssignee(userID) || task.HasFollower(userID) {
		return true, nil
	}

	if task.TeamID != nil {
		membership, err := a.findMembership(*task.TeamID, userID)
		if err != nil {
			return false, err
		}
		if membership != nil {
			return true, nil
		}
	}

	return false, nil
}

// CanEdit reports whether the user may edit the task.
// Creator, assignee, or team admin/owner can edit; a plain member cannot.
func (a *TaskAuthorizer) CanEdit(task *models.Task, userID uint64) (bool, error) {
	if task.CreatorID == userID {
		return true, nil
	}
	if task.HasAssignee(userID) {
		return true, nil
	}

	if task.TeamID != nil {
		membership, err := a.findMembership(*task.TeamID, userID)
		if err != nil {
			return false, err
		}
		if membership != nil && membership.Role != models.RoleMember {
			return true, nil
		}
	}

	return false, nil
}

// CanDelete reports whether the user may delete the task.
// Creator or team admin/owner can delete; being an assignee is not enough.
func (a *TaskAuthorizer) CanDelete(task *models.Task, userID uint64) (bool, error) {
	if task.CreatorID == userID {
		return true, nil
	}

	if task.TeamID != nil {
		membership, err := a.findMembership(*task.TeamID, userID)
		if err != nil {
			return false, err
		}
		if membership != nil && membership.Role != models.RoleMember {
			return true, nil
		}
	}

	return false, nil
}

// AssertCanView returns ErrTaskViewDenied when CanView is false.
func (a *TaskAuthorizer) AssertCanView(task *models.Task, userID uint64) error {
	ok, err := a.CanView(task, userID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrTaskViewDenied
	}
	return nil
}

// AssertCanEdit returns ErrTaskEditDenied when CanEdit is false.
func (a *TaskAuthorizer) AssertCanEdit(task *models.Task, userID uint64) error {
	ok, err := a.CanEdit(task, userID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrTaskEditDenied
	}
	return nil
}

// AssertCanDelete returns ErrTaskDeleteDenied when CanDelete is false.
func (a *TaskAuthorizer) AssertCanDelete(task *models.Task, userID uint64) error {
	ok, err := a.CanDelete(task, userID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrTaskDeleteDenied
	}
	return nil
}

// findMembership resolves a team membership, mapping "no row" to nil.
func (a *TaskAuthorizer) findMembership(teamID, userID uint64) (*models.TeamMember, error) {
	membership, err := a.teamRepo.FindMember(teamID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to resolve team membership: %w", err)
	}
	return membership, nil
}
