package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/kalpovskii/taskboard/internal/app/models"
)

func setupTestRepo(t *testing.T) *GormTaskRepo {
	t.Helper()

	repo, err := OpenSQLite(":memory:", false)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func strPtr(s string) *string { return &s }

func TestGormTaskRepo_Create(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	task := &models.Task{Title: "Write report", Description: strPtr("quarterly")}
	if err := repo.Create(ctx, task); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if task.ID == uuid.Nil {
		t.Error("expected generated id")
	}
	if task.Status != models.StatusPending {
		t.Errorf("expected default status PENDING, got %s", task.Status)
	}
	if task.CreatedAt.IsZero() || task.UpdatedAt.IsZero() {
		t.Error("expected timestamps to be set")
	}

	found, err := repo.Get(ctx, task.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if found.Title != "Write report" || found.Description == nil || *found.Description != "quarterly" {
		t.Errorf("unexpected task: %+v", found)
	}
	if found.DueDate != nil {
		t.Errorf("expected nil due date, got %v", found.DueDate)
	}
}

func TestGormTaskRepo_Get(t *testing.T) {
	repo := setupTestRepo(t)

	_, err := repo.Get(context.Background(), uuid.New())
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestGormTaskRepo_ListOrdered(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	var created []uuid.UUID
	for i, offset := range []time.Duration{2 * time.Hour, 0, time.Hour} {
		task := &models.Task{Title: string(rune('A' + i))}
		if err := repo.Create(ctx, task); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		err := repo.db.Model(&taskRecord{}).Where("id = ?", task.ID.String()).
			Update("created_at", base.Add(offset)).Error
		if err != nil {
			t.Fatalf("failed to backdate task: %v", err)
		}
		created = append(created, task.ID)
	}

	t.Run("desc", func(t *testing.T) {
		tasks, err := repo.List(ctx, &Order{Column: "created_at", Desc: true})
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		want := []uuid.UUID{created[0], created[2], created[1]}
		for i, id := range want {
			if tasks[i].ID != id {
				t.Fatalf("position %d: expected %s, got %s", i, id, tasks[i].ID)
			}
		}
	})

	t.Run("asc", func(t *testing.T) {
		tasks, err := repo.List(ctx, &Order{Column: "created_at"})
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		want := []uuid.UUID{created[1], created[2], created[0]}
		for i, id := range want {
			if tasks[i].ID != id {
				t.Fatalf("position %d: expected %s, got %s", i, id, tasks[i].ID)
			}
		}
	})

	t.Run("unordered returns everything", func(t *testing.T) {
		tasks, err := repo.List(ctx, nil)
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if len(tasks) != 3 {
			t.Errorf("expected 3 tasks, got %d", len(tasks))
		}
	})
}

func TestGormTaskRepo_ListEmpty(t *testing.T) {
	repo := setupTestRepo(t)

	tasks, err := repo.List(context.Background(), nil)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if tasks == nil || len(tasks) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", tasks)
	}
}

func TestGormTaskRepo_Update(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	due := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	task := &models.Task{Title: "Original", Description: strPtr("desc"), DueDate: &due}
	if err := repo.Create(ctx, task); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	t.Run("partial fields", func(t *testing.T) {
		status := models.StatusInProgress
		updated, err := repo.Update(ctx, task.ID, models.TaskPatch{Title: strPtr("Renamed"), Status: &status})
		if err != nil {
			t.Fatalf("Update() error = %v", err)
		}
		if updated.Title != "Renamed" || updated.Status != models.StatusInProgress {
			t.Errorf("unexpected task: %+v", updated)
		}
		if updated.Description == nil || *updated.Description != "desc" {
			t.Errorf("description should be untouched, got %v", updated.Description)
		}
		if updated.DueDate == nil || !updated.DueDate.Equal(due) {
			t.Errorf("due date should be untouched, got %v", updated.DueDate)
		}
	})

	t.Run("clear nullable columns", func(t *testing.T) {
		updated, err := repo.Update(ctx, task.ID, models.TaskPatch{SetDueDate: true, SetDescription: true})
		if err != nil {
			t.Fatalf("Update() error = %v", err)
		}
		if updated.DueDate != nil || updated.Description != nil {
			t.Errorf("expected cleared fields, got %+v", updated)
		}
	})

	t.Run("missing task", func(t *testing.T) {
		_, err := repo.Update(ctx, uuid.New(), models.TaskPatch{Title: strPtr("x")})
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestGormTaskRepo_Delete(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	task := &models.Task{Title: "Disposable"}
	if err := repo.Create(ctx, task); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := repo.Delete(ctx, task.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := repo.Delete(ctx, task.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete: expected ErrNotFound, got %v", err)
	}
	if _, err := repo.Get(ctx, task.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("get after delete: expected ErrNotFound, got %v", err)
	}
}
