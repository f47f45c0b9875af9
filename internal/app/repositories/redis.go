package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/kalpovskii/taskboard/internal/app/models"
	"github.com/redis/go-redis/v9"
)

type TaskCache interface {
	GetTask(ctx context.Context, id string) (*models.Task, error)
	SetTask(ctx context.Context, task *models.Task, ttl time.Duration) error

	// Lists are cached per sort key, e.g. "status:asc".
	GetTaskList(ctx context.Context, key string) ([]models.Task, error)
	SetTaskList(ctx context.Context, key string, tasks []models.Task, ttl time.Duration) error

	DeleteTask(ctx context.Context, id string) error
	DeleteTaskLists(ctx context.Context) error
}

type RedisTaskRepository struct {
	rdb *redis.Client
}

func NewRedisTaskRepository(rdb *redis.Client) *RedisTaskRepository {
	return &RedisTaskRepository{rdb: rdb}
}

func taskKey(id string) string {
	return "task:" + id
}

// every ordered list lives in one hash so a mutation can drop them all at once
const taskListsKey = "tasks:lists"

func (r *RedisTaskRepository) GetTask(ctx context.Context, id string) (*models.Task, error) {
	val, err := r.rdb.Get(ctx, taskKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil // cache miss
	}
	if err != nil {
		return nil, err
	}

	var task models.Task
	if err := json.Unmarshal(val, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *RedisTaskRepository) SetTask(ctx context.Context, task *models.Task, ttl time.Duration) error {
	data, err := json.Marshal(task)
	if err != nil {
		return err
	}
	return r.rdb.Set(ctx, taskKey(task.ID.String()), data, ttl).Err()
}

func (r *RedisTaskRepository) DeleteTask(ctx context.Context, id string) error {
	return r.rdb.Del(ctx, taskKey(id)).Err()
}

func (r *RedisTaskRepository) DeleteTaskLists(ctx context.Context) error {
	return r.rdb.Del(ctx, taskListsKey).Err()
}

func (r *RedisTaskRepository) GetTaskList(ctx context.Context, key string) ([]models.Task, error) {
	val, err := r.rdb.HGet(ctx, taskListsKey, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var tasks []models.Task
	if err := json.Unmarshal(val, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *RedisTaskRepository) SetTaskList(ctx context.Context, key string, tasks []models.Task, ttl time.Duration) error {
	data, err := json.Marshal(tasks)
	if err != nil {
		return err
	}

	// the hash expires as a whole; a newer list extends it, which is bounded
	// by the invalidation on every write
	pipe := r.rdb.TxPipeline()
	pipe.HSet(ctx, taskListsKey, key, data)
	pipe.Expire(ctx, taskListsKey, ttl)
	_, err = pipe.Exec(ctx)
	return err
}

func (r *RedisTaskRepository) Close() error {
	return r.rdb.Close()
}

// NoopTaskCache is used when no Redis address is configured.
type NoopTaskCache struct{}

func (NoopTaskCache) GetTask(context.Context, string) (*models.Task, error) { return nil, nil }

func (NoopTaskCache) SetTask(context.Context, *models.Task, time.Duration) error { return nil }

func (NoopTaskCache) GetTaskList(context.Context, string) ([]models.Task, error) { return nil, nil }

func (NoopTaskCache) SetTaskList(context.Context, string, []models.Task, time.Duration) error {
	return nil
}

func (NoopTaskCache) DeleteTask(context.Context, string) error { return nil }

func (NoopTaskCache) DeleteTaskLists(context.Context) error { return nil }
