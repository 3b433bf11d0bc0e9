package repository

import (
	"github.com/taskflow/taskflow-api/internal/models"
	"gorm.io/gorm"
)

// GormHistoryRepository is a GORM implementation of HistoryRepository
type GormHistoryRepository struct {
	db *gorm.DB
}

// NewHistoryRepository creates a new HistoryRepository
func NewHistoryRepository(db *gorm.DB) HistoryRepository {
	return &GormHistoryRepository{db: db}
}

// Create appends a history entry. Entries are never updated or deleted.
func (r *GormHistoryRepository) Create(entry *models.TaskHistory) error {
	return r.db.Create(entry).Error
}

// FindByTaskID returns a task's history, newest first. The id tiebreak keeps
// ordering stable when entries share a timestamp.
func (r *GormHistoryRepository) FindByTaskID(taskID uint64) ([]models.TaskHistory, error) {
	var entries []models.TaskHistory
	err := r.db.Preload("User").
		Where("task_id = ?", taskID).
		Order("created_at DESC, id DESC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}
