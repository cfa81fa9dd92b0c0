package repositories

import (
	"context"
	"errors"

	"blog-todo/internal/models"
	"blog-todo/internal/monitoring"

	"gorm.io/gorm"
)

const tasksTable = "tasks"

// TaskRepository defines the storage operations for to-do tasks.
type TaskRepository interface {
	List(ctx context.Context) ([]models.Task, error)
	Get(ctx context.Context, id uint) (models.Task, error)
	Create(ctx context.Context, task *models.Task) error
	Update(ctx context.Context, task *models.Task) error
	Delete(ctx context.Context, id uint) error
}

type taskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &taskRepository{db: db}
}

// List returns open tasks before done ones; within each group dated tasks
// come first, soonest due date first.
func (r *taskRepository) List(ctx context.Context) ([]models.Task, error) {
	defer monitoring.TrackQuery("list", tasksTable)()

	var tasks []models.Task
	err := r.db.WithContext(ctx).
		Order("done ASC").
		Order("due_date IS NULL ASC").
		Order("due_date ASC").
		Order("id ASC").
		Find(&tasks).Error
	return tasks, err
}

func (r *taskRepository) Get(ctx context.Context, id uint) (models.Task, error) {
	defer monitoring.TrackQuery("get", tasksTable)()

	var task models.Task
	if err := r.db.WithContext(ctx).First(&task, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return task, models.NotFound("task", id)
		}
		return task, err
	}
	return task, nil
}

func (r *taskRepository) Create(ctx context.Context, task *models.Task) error {
	defer monitoring.TrackQuery("create", tasksTable)()

	task.ID = 0
	return r.db.WithContext(ctx).Create(task).Error
}

// Update overwrites every editable column, so nil Notes or DueDate clear the
// stored value.
func (r *taskRepository) Update(ctx context.Context, task *models.Task) error {
	defer monitoring.TrackQuery("update", tasksTable)()

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Task
		if err := tx.First(&existing, task.ID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NotFound("task", task.ID)
			}
			return err
		}

		err := tx.Model(&existing).
			Select("title", "notes", "due_date", "done").
			Updates(models.Task{
				Title:   task.Title,
				Notes:   task.Notes,
				DueDate: task.DueDate,
				Done:    task.Done,
			}).Error
		if err != nil {
			return err
		}
		task.CreatedAt = existing.CreatedAt
		return nil
	})
}

func (r *taskRepository) Delete(ctx context.Context, id uint) error {
	defer monitoring.TrackQuery("delete", tasksTable)()

	result := r.db.WithContext(ctx).Delete(&models.Task{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return models.NotFound("task", id)
	}
	return nil
}
