package services

import (
	"errors"
	"fmt"

	"github.com/taskflow/taskflow-api/internal/events"
	"github.com/taskflow/taskflow-api/internal/models"
	"github.com/taskflow/taskflow-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrCommentNotFound   = errors.New("comment not found")
	ErrCommentEditDenied = errors.New("only the comment author can modify it")
	ErrContentRequired   = errors.New("content is required")
)

// CommentService handles task comments. Comments are author-owned: only the
// author may edit or delete one.
type CommentService struct {
	commentRepo repository.CommentRepository
	taskRepo    repository.TaskRepository
	bus         *events.Bus
}

// NewCommentService creates a new CommentService
func NewCommentService(commentRepo repository.CommentRepository, taskRepo repository.TaskRepository, bus *events.Bus) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		taskRepo:    taskRepo,
		bus:         bus,
	}
}

// ListByTask returns a task's comments, oldest first
func (s *CommentService) ListByTask(taskID uint64) ([]models.Comment, error) {
	comments, err := s.commentRepo.FindByTaskID(taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch comments: %w", err)
	}
	return comments, nil
}

// Create adds a comment to an existing task and publishes the comment event.
func (s *CommentService) Create(actorID, taskID uint64, content string) (*models.Comment, error) {
	if content == "" {
		return nil, ErrContentRequired
	}

	if _, err := s.taskRepo.FindByID(taskID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	comment := &models.Comment{
		TaskID:  taskID,
		UserID:  actorID,
		Content: content,
	}
	if err := s.commentRepo.Create(comment); err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}

	s.bus.Publish(events.CommentAdded, events.TaskCommentEvent{
		TaskID:    taskID,
		UserID:    actorID,
		CommentID: comment.ID,
		Content:   comment.Content,
	})

	return comment, nil
}

// Update edits a comment's content. Author only.
func (s *CommentService) Update(actorID, commentID uint64, content string) (*models.Comment, error) {
	if content == "" {
		return nil, ErrContentRequired
	}

	comment, err := s.findByID(commentID)
	if err != nil {
		return nil, err
	}
	if comment.UserID != actorID {
		return nil, ErrCommentEditDenied
	}

	comment.Content = content
	if err := s.commentRepo.Save(comment); err != nil {
		return nil, fmt.Errorf("failed to update comment: %w", err)
	}

	return comment, nil
}

// Delete removes a comment. Author only.
func (s *CommentService) Delete(actorID, commentID uint64) error {
	comment, err := s.findByID(commentID)
	if err != nil {
		return err
	}
	if comment.UserID != actorID {
		return ErrCommentEditDenied
	}

	if err := s.commentRepo.Delete(commentID); err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}

	return nil
}

func (s *CommentService) findByID(commentID uint64) (*models.Comment, error) {
	comment, err := s.commentRepo.FindByID(commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, fmt.Errorf("failed to find comment: %w", err)
	}
	return comment, nil
}
