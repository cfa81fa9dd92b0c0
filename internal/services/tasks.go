package services

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"blog-todo/internal/models"
	"blog-todo/internal/repositories"
)

const (
	MsgTitleRequired  = "Title is required."
	MsgInvalidDueDate = "Due date must be in YYYY-MM-DD format."
)

// TaskInput carries task fields as submitted by the HTML form. Done is set
// by the handler from the checkbox value.
type TaskInput struct {
	Title   string `form:"title"`
	Notes   string `form:"notes"`
	DueDate string `form:"due_date"`
	Done    bool   `form:"-"`
}

type TaskService interface {
	ListTasks(ctx context.Context) ([]models.Task, error)
	GetTask(ctx context.Context, id uint) (models.Task, error)
	CreateTask(ctx context.Context, in TaskInput) (models.Task, error)
	UpdateTask(ctx context.Context, id uint, in TaskInput) (models.Task, error)
	DeleteTask(ctx context.Context, id uint) error
}

type TaskServiceImpl struct {
	repo repositories.TaskRepository
	log  *slog.Logger
}

func NewTaskService(repo repositories.TaskRepository, log *slog.Logger) *TaskServiceImpl {
	return &TaskServiceImpl{repo: repo, log: log}
}

// Apply validates the input and writes it onto task. task is left untouched
// when validation fails.
func (in TaskInput) Apply(task *models.Task) error {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return models.NewValidationError("title", MsgTitleRequired)
	}
	if err := checkLength("title", title, models.TaskTitleMaxLen); err != nil {
		return err
	}

	var due *time.Time
	if raw := strings.TrimSpace(in.DueDate); raw != "" {
		parsed, err := time.Parse(models.DateLayout, raw)
		if err != nil {
			return models.NewValidationError("due_date", MsgInvalidDueDate)
		}
		due = &parsed
	}

	var notes *string
	if trimmed := strings.TrimSpace(in.Notes); trimmed != "" {
		notes = &trimmed
	}

	task.Title = title
	task.Notes = notes
	task.DueDate = due
	task.Done = in.Done
	return nil
}

func (s *TaskServiceImpl) ListTasks(ctx context.Context) ([]models.Task, error) {
	return s.repo.List(ctx)
}

func (s *TaskServiceImpl) GetTask(ctx context.Context, id uint) (models.Task, error) {
	return s.repo.Get(ctx, id)
}

func (s *TaskServiceImpl) CreateTask(ctx context.Context, in TaskInput) (models.Task, error) {
	var task models.Task
	if err := in.Apply(&task); err != nil {
		return task, err
	}
	if err := s.repo.Create(ctx, &task); err != nil {
		return task, err
	}

	s.log.InfoContext(ctx, "task created", slog.Uint64("task_id", uint64(task.ID)))
	return task, nil
}

// UpdateTask overwrites every field; a missing task is reported before any
// validation error and an invalid input leaves the stored row unchanged.
func (s *TaskServiceImpl) UpdateTask(ctx context.Context, id uint, in TaskInput) (models.Task, error) {
	task, err := s.repo.Get(ctx, id)
	if err != nil {
		return task, err
	}

	if err := in.Apply(&task); err != nil {
		return task, err
	}
	if err := s.repo.Update(ctx, &task); err != nil {
		return task, err
	}
	return task, nil
}

func (s *TaskServiceImpl) DeleteTask(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.InfoContext(ctx, "task deleted", slog.Uint64("task_id", uint64(id)))
	return nil
}
