package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/kalpovskii/taskboard/internal/app/models"
	_ "github.com/lib/pq"
)

const postgresSchema = `
	CREATE TABLE IF NOT EXISTS tasks (
		id UUID PRIMARY KEY,
		title VARCHAR(100) NOT NULL,
		description VARCHAR(500),
		due_date TIMESTAMPTZ,
		status TEXT NOT NULL DEFAULT 'PENDING'
			CHECK (status IN ('PENDING', 'IN_PROGRESS', 'COMPLETED')),
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	)
`

var taskColumns = []string{"id", "title", "description", "due_date", "status", "created_at", "updated_at"}

type PostgresTaskRepo struct {
	db *sql.DB
	sb sq.StatementBuilderType
}

func NewPostgresTaskRepo(ctx context.Context, dsn string) (*PostgresTaskRepo, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to reach postgres: %w", err)
	}

	if _, err := db.ExecContext(ctx, postgresSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate tasks table: %w", err)
	}

	return &PostgresTaskRepo{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}, nil
}

func (r *PostgresTaskRepo) Create(ctx context.Context, task *models.Task) error {
	now := time.Now().UTC()
	task.ID = uuid.New()
	task.CreatedAt = now
	task.UpdatedAt = now
	if task.Status == "" {
		task.Status = models.StatusPending
	}

	query, args, err := r.sb.Insert("tasks").
		Columns(taskColumns...).
		Values(task.ID, task.Title, task.Description, task.DueDate, task.Status, task.CreatedAt, task.UpdatedAt).
		ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, query, args...)
	return err
}

func (r *PostgresTaskRepo) List(ctx context.Context, order *Order) ([]models.Task, error) {
	q := r.sb.Select(taskColumns...).From("tasks")
	if order != nil {
		dir := "ASC"
		if order.Desc {
			dir = "DESC"
		}
		q = q.OrderBy(order.Column+" "+dir, "id "+dir)
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

// Ids are passed as strings: squirrel expands array values such as
// uuid.UUID into IN lists.
func (r *PostgresTaskRepo) Get(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	query, args, err := r.sb.Select(taskColumns...).From("tasks").Where(sq.Eq{"id": id.String()}).ToSql()
	if err != nil {
		return nil, err
	}

	t, err := scanTask(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return t, err
}

func (r *PostgresTaskRepo) Update(ctx context.Context, id uuid.UUID, patch models.TaskPatch) (*models.Task, error) {
	q := r.sb.Update("tasks").Set("updated_at", time.Now().UTC())
	if patch.Title != nil {
		q = q.Set("title", *patch.Title)
	}
	if patch.SetDescription {
		q = q.Set("description", patch.Description)
	}
	if patch.SetDueDate {
		q = q.Set("due_date", patch.DueDate)
	}
	if patch.Status != nil {
		q = q.Set("status", *patch.Status)
	}

	query, args, err := q.Where(sq.Eq{"id": id.String()}).Suffix("RETURNING " + strings.Join(taskColumns, ", ")).ToSql()
	if err != nil {
		return nil, err
	}

	t, err := scanTask(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return t, err
}

func (r *PostgresTaskRepo) Delete(ctx context.Context, id uuid.UUID) error {
	query, args, err := r.sb.Delete("tasks").Where(sq.Eq{"id": id.String()}).ToSql()
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresTaskRepo) Close() error {
	return r.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*models.Task, error) {
	var (
		t           models.Task
		description sql.NullString
		dueDate     sql.NullTime
	)
	if err := row.Scan(&t.ID, &t.Title, &description, &dueDate, &t.Status, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	if description.Valid {
		t.Description = &description.String
	}
	if dueDate.Valid {
		d := dueDate.Time.UTC()
		t.DueDate = &d
	}
	t.CreatedAt = t.CreatedAt.UTC()
	t.UpdatedAt = t.UpdatedAt.UTC()
	return &t, nil
}
