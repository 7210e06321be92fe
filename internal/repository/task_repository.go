package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"taskmanager/internal/model"
)

// ListQuery holds the already-validated list directives.
type ListQuery struct {
	Completed  *bool
	SortColumn string
	Descending bool
	Offset     int
	Limit      int
}

type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// Create adds a new task to the database
func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	return nil
}

// GetByID retrieves a task by its ID
func (r *TaskRepository) GetByID(ctx context.Context, id uint) (*model.Task, error) {
	var task model.Task
	result := r.db.WithContext(ctx).First(&task, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", result.Error)
	}
	return &task, nil
}

// List returns one page of tasks and the total number matching the filter.
// Count and page are read in the same transaction.
func (r *TaskRepository) List(ctx context.Context, q ListQuery) ([]model.Task, int64, error) {
	var (
		tasks []model.Task
		total int64
	)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Task{}).Scopes(completedFilter(q.Completed)).Count(&total).Error; err != nil {
			return err
		}

		return tx.Scopes(completedFilter(q.Completed)).
			Order(clause.OrderByColumn{Column: clause.Column{Name: q.SortColumn}, Desc: q.Descending}).
			Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}}).
			Offset(q.Offset).
			Limit(q.Limit).
			Find(&tasks).Error
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, total, nil
}

// Update loads the task, lets mutate change it and saves the result, all in
// one transaction. An error from mutate rolls back and is returned as is.
func (r *TaskRepository) Update(ctx context.Context, id uint, mutate func(*model.Task) error) (*model.Task, error) {
	var task model.Task

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&task, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTaskNotFound
			}
			return fmt.Errorf("failed to find task: %w", err)
		}

		if err := mutate(&task); err != nil {
			return err
		}

		if err := tx.Save(&task).Error; err != nil {
			return fmt.Errorf("failed to update task: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// Delete removes a task by its ID
func (r *TaskRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&model.Task{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete task: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

func completedFilter(completed *bool) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if completed == nil {
			return db
		}
		return db.Where("completed = ?", *completed)
	}
}
