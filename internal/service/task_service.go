package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Tomlord1122/todo-web/internal/domain"
	"github.com/Tomlord1122/todo-web/internal/logger"
	"github.com/Tomlord1122/todo-web/internal/repository"
)

// TaskService defines the operations for managing tasks.
type TaskService interface {
	// CreateTask stores a new, not yet completed task stamped with the
	// current time.
	CreateTask(ctx context.Context, description string) (*domain.Task, error)

	// ListTasks returns every task in creation order.
	ListTasks(ctx context.Context) ([]domain.Task, error)

	GetTask(ctx context.Context, id uint) (*domain.Task, error)

	// SetCompleted updates the completion flag of an existing task.
	SetCompleted(ctx context.Context, id uint, completed bool) (*domain.Task, error)

	// DeleteTask removes a task. Deleting a missing task succeeds.
	DeleteTask(ctx context.Context, id uint) error
}

// Option customises a task service.
type Option func(*taskService)

// WithClock overrides the time source used for created_at.
func WithClock(now func() time.Time) Option {
	return func(s *taskService) {
		s.now = now
	}
}

// WithLogger sets the logger used for persistence failures.
func WithLogger(log *zap.Logger) Option {
	return func(s *taskService) {
		s.logger = log
	}
}

type taskService struct {
	repo   repository.TaskRepository
	now    func() time.Time
	logger *zap.Logger
}

// NewTaskService creates a TaskService backed by repo.
func NewTaskService(repo repository.TaskRepository, opts ...Option) TaskService {
	s := &taskService{
		repo:   repo,
		now:    time.Now,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *taskService) CreateTask(ctx context.Context, description string) (*domain.Task, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, domain.ErrEmptyTask
	}

	task := &domain.Task{
		Task:      description,
		Completed: false,
		CreatedAt: s.now(),
	}
	if err := s.repo.Create(ctx, task); err != nil {
		return nil, s.internal(ctx, "failed to create task", err)
	}
	return task, nil
}

func (s *taskService) ListTasks(ctx context.Context) ([]domain.Task, error) {
	tasks, err := s.repo.List(ctx)
	if err != nil {
		return nil, s.internal(ctx, "failed to list tasks", err)
	}
	return tasks, nil
}

func (s *taskService) GetTask(ctx context.Context, id uint) (*domain.Task, error) {
	task, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if domain.IsDomainError(err, domain.ErrCodeNotFound) {
			return nil, err
		}
		return nil, s.internal(ctx, "failed to retrieve task", err, zap.Uint("task_id", id))
	}
	return task, nil
}

func (s *taskService) SetCompleted(ctx context.Context, id uint, completed bool) (*domain.Task, error) {
	task, err := s.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.repo.SetCompleted(ctx, id, completed); err != nil {
		if domain.IsDomainError(err, domain.ErrCodeNotFound) {
			return nil, err
		}
		return nil, s.internal(ctx, "failed to update task", err, zap.Uint("task_id", id))
	}
	task.Completed = completed
	return task, nil
}

func (s *taskService) DeleteTask(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return s.internal(ctx, "failed to delete task", err, zap.Uint("task_id", id))
	}
	return nil
}

func (s *taskService) internal(ctx context.Context, msg string, err error, fields ...zap.Field) error {
	logger.WithRequestID(ctx, s.logger).Error(msg, append(fields, zap.Error(err))...)
	return domain.WrapError(domain.ErrCodeInternal, msg, err)
}
