package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kalpovskii/taskboard/internal/app/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// taskRecord is the gorm row shape of a task.
type taskRecord struct {
	ID          string     `gorm:"primaryKey;size:36"`
	Title       string     `gorm:"size:100;not null"`
	Description *string    `gorm:"size:500"`
	DueDate     *time.Time `gorm:"index"`
	Status      string     `gorm:"size:16;not null;default:PENDING"`
	CreatedAt   time.Time  `gorm:"not null;index"`
	UpdatedAt   time.Time  `gorm:"not null"`
}

func (taskRecord) TableName() string {
	return "tasks"
}

func (r taskRecord) toModel() (models.Task, error) {
	id, err := uuid.Parse(r.ID)
	if err != nil {
		return models.Task{}, fmt.Errorf("corrupt task id %q: %w", r.ID, err)
	}
	t := models.Task{
		ID:          id,
		Title:       r.Title,
		Description: r.Description,
		Status:      models.Status(r.Status),
		CreatedAt:   r.CreatedAt.UTC(),
		UpdatedAt:   r.UpdatedAt.UTC(),
	}
	if r.DueDate != nil {
		d := r.DueDate.UTC()
		t.DueDate = &d
	}
	return t, nil
}

// GormTaskRepo stores tasks through gorm. It backs the sqlite driver.
type GormTaskRepo struct {
	db *gorm.DB
}

// OpenSQLite opens (or creates) a sqlite database at path and migrates it.
// Use ":memory:" for a throwaway database.
func OpenSQLite(path string, debug bool) (*GormTaskRepo, error) {
	logLevel := logger.Silent
	if debug {
		logLevel = logger.Info
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	if path == ":memory:" {
		// every pooled connection would otherwise get its own empty database
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	return NewGormTaskRepo(db)
}

func NewGormTaskRepo(db *gorm.DB) (*GormTaskRepo, error) {
	if err := db.AutoMigrate(&taskRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate tasks table: %w", err)
	}
	return &GormTaskRepo{db: db}, nil
}

func (r *GormTaskRepo) Create(ctx context.Context, task *models.Task) error {
	now := time.Now().UTC()
	task.ID = uuid.New()
	task.CreatedAt = now
	task.UpdatedAt = now
	if task.Status == "" {
		task.Status = models.StatusPending
	}

	rec := taskRecord{
		ID:          task.ID.String(),
		Title:       task.Title,
		Description: task.Description,
		DueDate:     task.DueDate,
		Status:      string(task.Status),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return r.db.WithContext(ctx).Create(&rec).Error
}

func (r *GormTaskRepo) List(ctx context.Context, order *Order) ([]models.Task, error) {
	q := r.db.WithContext(ctx)
	if order != nil {
		q = q.Order(clause.OrderByColumn{Column: clause.Column{Name: order.Column}, Desc: order.Desc}).
			Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}, Desc: order.Desc})
	}

	var recs []taskRecord
	if err := q.Find(&recs).Error; err != nil {
		return nil, err
	}

	tasks := make([]models.Task, 0, len(recs))
	for _, rec := range recs {
		t, err := rec.toModel()
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

func (r *GormTaskRepo) Get(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	var rec taskRecord
	if err := r.db.WithContext(ctx).First(&rec, "id = ?", id.String()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	t, err := rec.toModel()
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *GormTaskRepo) Update(ctx context.Context, id uuid.UUID, patch models.TaskPatch) (*models.Task, error) {
	// a map keeps nil values, so cleared columns are written as NULL
	updates := map[string]any{"updated_at": time.Now().UTC()}
	if patch.Title != nil {
		updates["title"] = *patch.Title
	}
	if patch.SetDescription {
		updates["description"] = patch.Description
	}
	if patch.SetDueDate {
		updates["due_date"] = patch.DueDate
	}
	if patch.Status != nil {
		updates["status"] = string(*patch.Status)
	}

	res := r.db.WithContext(ctx).Model(&taskRecord{}).Where("id = ?", id.String()).Updates(updates)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return r.Get(ctx, id)
}

func (r *GormTaskRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&taskRecord{}, "id = ?", id.String())
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormTaskRepo) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
