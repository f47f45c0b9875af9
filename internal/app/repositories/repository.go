package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/kalpovskii/taskboard/internal/app/models"
)

var ErrNotFound = errors.New("task not found")

// Order asks the store to order rows by Column. Ties are broken by id in the
// same direction so the result is total.
type Order struct {
	Column string
	Desc   bool
}

type TaskRepository interface {
	Create(ctx context.Context, task *models.Task) error
	// List returns every task. A nil order leaves the row order to the store.
	List(ctx context.Context, order *Order) ([]models.Task, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Task, error)
	Update(ctx context.Context, id uuid.UUID, patch models.TaskPatch) (*models.Task, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Close() error
}
