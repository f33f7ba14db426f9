package tasks

import (
	"context"
	"time"

	"gorm.io/gorm"

	"sampahku/internal/models"
)

// TaskStore persists the scheduled task queue and its run history
type TaskStore interface {
	DueTasks(ctx context.Context, now time.Time) ([]models.ScheduledTask, error)
	UpdateTask(ctx context.Context, task models.ScheduledTask, updates map[string]interface{}) error
	RecordHistory(ctx context.Context, history *models.ScheduledTaskHistory) error
	CreateTask(ctx context.Context, task *models.ScheduledTask) error
}

// GormTaskStore keeps the queue in Postgres
type GormTaskStore struct {
	db *gorm.DB
}

func NewGormTaskStore(db *gorm.DB) *GormTaskStore {
	return &GormTaskStore{db: db}
}

// DueTasks returns active tasks whose due time has passed, oldest first
func (s *GormTaskStore) DueTasks(ctx context.Context, now time.Time) ([]models.ScheduledTask, error) {
	var pending []models.ScheduledTask
	err := s.db.WithContext(ctx).
		Where("status = ? AND due <= ?", models.ScheduledTaskStatusActive, now).
		Order("due asc").
		Find(&pending).Error
	return pending, err
}

func (s *GormTaskStore) UpdateTask(ctx context.Context, task models.ScheduledTask, updates map[string]interface{}) error {
	return s.db.WithContext(ctx).Model(&task).Updates(updates).Error
}

func (s *GormTaskStore) RecordHistory(ctx context.Context, history *models.ScheduledTaskHistory) error {
	return s.db.WithContext(ctx).Create(history).Error
}

func (s *GormTaskStore) CreateTask(ctx context.Context, task *models.ScheduledTask) error {
	return s.db.WithContext(ctx).Create(task).Error
}
