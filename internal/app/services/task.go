package services

import (
	"context"
	"log/slog"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/kalpovskii/taskboard/internal/app/models"
	"github.com/kalpovskii/taskboard/internal/app/ordering"
	"github.com/kalpovskii/taskboard/internal/app/repositories"
	"golang.org/x/sync/singleflight"
)

const (
	defaultTaskTTL     = 60 * time.Second
	defaultTaskListTTL = 15 * time.Second
)

// EventPublisher receives an event after every successful mutation.
type EventPublisher interface {
	Publish(ctx context.Context, event models.TaskEvent) error
}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, models.TaskEvent) error { return nil }

type Option func(*TaskService)

func WithEvents(p EventPublisher) Option {
	return func(s *TaskService) { s.events = p }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *TaskService) { s.log = l }
}

func WithCacheTTL(task, list time.Duration) Option {
	return func(s *TaskService) {
		s.taskTTL = task
		s.listTTL = list
	}
}

type TaskService struct {
	repo    repositories.TaskRepository
	cache   repositories.TaskCache
	events  EventPublisher
	log     *slog.Logger
	lists   singleflight.Group
	taskTTL time.Duration
	listTTL time.Duration
	now     func() time.Time

	// generation advances on every successful write. A read loaded under an
	// older generation is returned to its callers but never cached. cacheMu
	// orders cache fills against invalidation.
	generation atomic.Uint64
	cacheMu    sync.Mutex
}

func NewTaskService(repo repositories.TaskRepository, cache repositories.TaskCache, opts ...Option) *TaskService {
	if cache == nil {
		cache = repositories.NoopTaskCache{}
	}
	s := &TaskService{
		repo:    repo,
		cache:   cache,
		events:  noopPublisher{},
		log:     slog.Default(),
		taskTTL: defaultTaskTTL,
		listTTL: defaultTaskListTTL,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns every task ordered by sortBy/sortOrder. The default field is
// ordered by the store; other fields are sorted in memory.
func (s *TaskService) List(ctx context.Context, sortBy, sortOrder string) ([]models.Task, error) {
	q := ordering.ParseQuery(sortBy, sortOrder)
	key := q.Key()
	gen := s.generation.Load()

	if tasks, err := s.cache.GetTaskList(ctx, key); err != nil {
		s.log.DebugContext(ctx, "task list cache read failed", slog.String("key", key), slog.Any("error", err))
	} else if tasks != nil {
		return tasks, nil
	}

	// Callers arriving after a write start a new flight instead of joining one
	// that may have read the store before the write. The load outlives any
	// single caller's cancellation since others may be waiting on it.
	flight := key + "@" + strconv.FormatUint(gen, 10)
	v, err, _ := s.lists.Do(flight, func() (any, error) {
		return s.resolve(context.WithoutCancel(ctx), q)
	})
	if err != nil {
		return nil, err
	}
	tasks := v.([]models.Task)

	s.cacheList(ctx, key, gen, tasks)
	return tasks, nil
}

func (s *TaskService) cacheList(ctx context.Context, key string, gen uint64, tasks []models.Task) {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()

	if s.generation.Load() != gen {
		return
	}
	if err := s.cache.SetTaskList(ctx, key, tasks, s.listTTL); err != nil {
		s.log.DebugContext(ctx, "task list cache write failed", slog.String("key", key), slog.Any("error", err))
	}
}

func (s *TaskService) resolve(ctx context.Context, q ordering.Query) ([]models.Task, error) {
	if q.Field.Persisted {
		tasks, err := s.repo.List(ctx, &repositories.Order{
			Column: q.Field.Column,
			Desc:   q.Direction == models.SortDesc,
		})
		if err != nil {
			return nil, storeError("list tasks", err)
		}
		return tasks, nil
	}

	tasks, err := s.repo.List(ctx, nil)
	if err != nil {
		return nil, storeError("list tasks", err)
	}
	return ordering.Sort(tasks, q.Field, q.Direction), nil
}

func (s *TaskService) Get(ctx context.Context, rawID string) (*models.Task, error) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, ErrNotFound
	}

	gen := s.generation.Load()
	if task, err := s.cache.GetTask(ctx, id.String()); err == nil && task != nil {
		return task, nil
	}

	task, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, storeError("get task", err)
	}

	s.cacheTask(ctx, gen, task)
	return task, nil
}

func (s *TaskService) Create(ctx context.Context, in models.CreateTaskInput) (*models.Task, error) {
	if err := validate.StructCtx(ctx, in); err != nil {
		return nil, fromValidator(err)
	}

	task := &models.Task{
		Title:  in.Title,
		Status: models.StatusPending,
	}
	if in.Status != nil {
		task.Status = *in.Status
	}
	if v := in.Description.Value; v != nil && *v != "" {
		task.Description = v
	}
	if v := in.DueDate.Value; v != nil && *v != "" {
		due, _ := ParseDueDate(*v)
		task.DueDate = &due
	}

	if err := s.repo.Create(ctx, task); err != nil {
		return nil, storeError("create task", err)
	}

	s.afterWrite(ctx, models.TaskCreated, task)
	s.cacheTask(ctx, s.generation.Load(), task)
	return task, nil
}

// Update applies the fields present in the input. An empty or null dueDate
// clears the due date; a null description clears it, an empty one is ignored.
func (s *TaskService) Update(ctx context.Context, rawID string, in models.UpdateTaskInput) (*models.Task, error) {
	if err := validate.StructCtx(ctx, in); err != nil {
		return nil, fromValidator(err)
	}

	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, ErrNotFound
	}

	patch := buildPatch(in)
	if patch.Empty() {
		task, err := s.repo.Get(ctx, id)
		if err != nil {
			return nil, storeError("get task", err)
		}
		return task, nil
	}

	task, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return nil, storeError("update task", err)
	}

	s.afterWrite(ctx, models.TaskUpdated, task)
	return task, nil
}

func buildPatch(in models.UpdateTaskInput) models.TaskPatch {
	patch := models.TaskPatch{
		Title:  in.Title,
		Status: in.Status,
	}

	if in.Description.Set {
		switch v := in.Description.Value; {
		case v == nil:
			patch.SetDescription = true
		case *v != "":
			patch.SetDescription = true
			patch.Description = v
		}
	}

	if in.DueDate.Set {
		patch.SetDueDate = true
		if v := in.DueDate.Value; v != nil && *v != "" {
			due, _ := ParseDueDate(*v)
			patch.DueDate = &due
		}
	}

	return patch
}

func (s *TaskService) Delete(ctx context.Context, rawID string) error {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return ErrNotFound
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return storeError("delete task", err)
	}

	s.afterWrite(ctx, models.TaskDeleted, &models.Task{ID: id})
	return nil
}

func (s *TaskService) cacheTask(ctx context.Context, gen uint64, task *models.Task) {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()

	if s.generation.Load() != gen {
		return
	}
	_ = s.cache.SetTask(ctx, task, s.taskTTL)
}

// afterWrite drops stale cache entries and publishes the event. Neither step
// can fail the request.
func (s *TaskService) afterWrite(ctx context.Context, action models.TaskAction, task *models.Task) {
	ctx = context.WithoutCancel(ctx)

	s.cacheMu.Lock()
	s.generation.Add(1)
	if err := s.cache.DeleteTask(ctx, task.ID.String()); err != nil {
		s.log.WarnContext(ctx, "task cache invalidation failed", slog.String("id", task.ID.String()), slog.Any("error", err))
	}
	if err := s.cache.DeleteTaskLists(ctx); err != nil {
		s.log.WarnContext(ctx, "task list cache invalidation failed", slog.Any("error", err))
	}
	s.cacheMu.Unlock()

	event := models.TaskEvent{
		Action: action,
		TaskID: task.ID,
		Title:  task.Title,
		At:     s.now().UTC(),
	}
	if err := s.events.Publish(ctx, event); err != nil {
		s.log.WarnContext(ctx, "task event publish failed", slog.String("action", string(action)), slog.Any("error", err))
	}
}
