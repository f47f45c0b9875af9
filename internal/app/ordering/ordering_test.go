package ordering

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/kalpovskii/taskboard/internal/app/models"
)

func date(s string) *time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return &t
}

func idOf(n byte) uuid.UUID {
	var id uuid.UUID
	id[15] = n
	return id
}

func ids(tasks []models.Task) []uuid.UUID {
	out := make([]uuid.UUID, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}

func dueDateFixture() []models.Task {
	return []models.Task{
		{ID: idOf(1), DueDate: date("2024-01-01"), Status: models.StatusInProgress},
		{ID: idOf(2), DueDate: date("2023-12-01"), Status: models.StatusPending},
		{ID: idOf(3), DueDate: date("2024-03-01"), Status: models.StatusCompleted},
		{ID: idOf(4), DueDate: nil, Status: models.StatusInProgress},
	}
}

func TestSort_DueDate(t *testing.T) {
	field, _ := Lookup(models.SortByDueDate)

	t.Run("asc puts earliest first and nulls last", func(t *testing.T) {
		got := ids(Sort(dueDateFixture(), field, models.SortAsc))
		want := []uuid.UUID{idOf(2), idOf(1), idOf(3), idOf(4)}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("unexpected order (-want +got):\n%s", diff)
		}
	})

	t.Run("desc puts latest first and nulls still last", func(t *testing.T) {
		got := ids(Sort(dueDateFixture(), field, models.SortDesc))
		want := []uuid.UUID{idOf(3), idOf(1), idOf(2), idOf(4)}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("unexpected order (-want +got):\n%s", diff)
		}
	})

	t.Run("scenario from four tasks", func(t *testing.T) {
		in := []models.Task{
			{ID: idOf(10), DueDate: date("2024-01-01")},
			{ID: idOf(11)},
			{ID: idOf(12), DueDate: date("2024-03-01")},
			{ID: idOf(13), DueDate: date("2023-12-01")},
		}
		got := ids(Sort(in, field, models.SortAsc))
		want := []uuid.UUID{idOf(13), idOf(10), idOf(12), idOf(11)}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("unexpected order (-want +got):\n%s", diff)
		}
	})

	t.Run("null due dates keep input order", func(t *testing.T) {
		in := []models.Task{
			{ID: idOf(5)},
			{ID: idOf(1), DueDate: date("2024-01-01")},
			{ID: idOf(3)},
			{ID: idOf(2)},
		}
		for _, dir := range []models.SortOrder{models.SortAsc, models.SortDesc} {
			got := ids(Sort(in, field, dir))
			want := []uuid.UUID{idOf(1), idOf(5), idOf(3), idOf(2)}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("%s: unexpected order (-want +got):\n%s", dir, diff)
			}
		}
	})

	t.Run("monotonic timestamps", func(t *testing.T) {
		asc := Sort(dueDateFixture(), field, models.SortAsc)
		desc := Sort(dueDateFixture(), field, models.SortDesc)
		for i := 1; i < 3; i++ {
			if asc[i].DueDate.Before(*asc[i-1].DueDate) {
				t.Errorf("asc: %v before %v", asc[i].DueDate, asc[i-1].DueDate)
			}
			if desc[i].DueDate.After(*desc[i-1].DueDate) {
				t.Errorf("desc: %v after %v", desc[i].DueDate, desc[i-1].DueDate)
			}
		}
	})
}

func TestSort_Status(t *testing.T) {
	field, _ := Lookup(models.SortByStatus)

	statuses := func(tasks []models.Task) []models.Status {
		out := make([]models.Status, len(tasks))
		for i, t := range tasks {
			out[i] = t.Status
		}
		return out
	}

	in := []models.Task{
		{ID: idOf(1), Status: models.StatusInProgress},
		{ID: idOf(2), Status: models.StatusPending},
		{ID: idOf(3), Status: models.StatusCompleted},
	}

	t.Run("asc follows workflow rank", func(t *testing.T) {
		got := statuses(Sort(in, field, models.SortAsc))
		want := []models.Status{models.StatusPending, models.StatusInProgress, models.StatusCompleted}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("unexpected order (-want +got):\n%s", diff)
		}
	})

	t.Run("desc reverses rank", func(t *testing.T) {
		got := statuses(Sort(in, field, models.SortDesc))
		want := []models.Status{models.StatusCompleted, models.StatusInProgress, models.StatusPending}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("unexpected order (-want +got):\n%s", diff)
		}
	})

	t.Run("equal statuses are stable", func(t *testing.T) {
		in := []models.Task{
			{ID: idOf(1), Status: models.StatusCompleted},
			{ID: idOf(2), Status: models.StatusPending},
			{ID: idOf(3), Status: models.StatusCompleted},
			{ID: idOf(4), Status: models.StatusPending},
		}
		got := ids(Sort(in, field, models.SortDesc))
		want := []uuid.UUID{idOf(1), idOf(3), idOf(2), idOf(4)}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("unexpected order (-want +got):\n%s", diff)
		}
	})
}

func TestSort_DoesNotMutateInput(t *testing.T) {
	field, _ := Lookup(models.SortByDueDate)
	in := dueDateFixture()
	before := ids(in)

	_ = Sort(in, field, models.SortAsc)

	if diff := cmp.Diff(before, ids(in)); diff != "" {
		t.Errorf("input was reordered (-want +got):\n%s", diff)
	}
}

func TestSort_Empty(t *testing.T) {
	field, _ := Lookup(models.SortByStatus)
	got := Sort(nil, field, models.SortAsc)
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", got)
	}
}

func TestSort_CreatedAt(t *testing.T) {
	field, _ := Lookup(models.SortByCreatedAt)
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	in := []models.Task{
		{ID: idOf(1), CreatedAt: base},
		{ID: idOf(2), CreatedAt: base.Add(time.Hour)},
		{ID: idOf(3), CreatedAt: base.Add(-time.Hour)},
	}

	got := ids(Sort(in, field, models.SortDesc))
	want := []uuid.UUID{idOf(2), idOf(1), idOf(3)}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("unexpected order (-want +got):\n%s", diff)
	}
}

func TestParseQuery(t *testing.T) {
	tests := []struct {
		name      string
		sortBy    string
		sortOrder string
		wantField models.SortField
		wantDir   models.SortOrder
	}{
		{"defaults", "", "", models.SortByCreatedAt, models.SortDesc},
		{"unknown field", "title", "", models.SortByCreatedAt, models.SortDesc},
		{"createdAt asc", "createdAt", "asc", models.SortByCreatedAt, models.SortAsc},
		{"status default", "status", "", models.SortByStatus, models.SortAsc},
		{"dueDate desc", "dueDate", "desc", models.SortByDueDate, models.SortDesc},
		{"bad order", "dueDate", "sideways", models.SortByDueDate, models.SortAsc},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := ParseQuery(tt.sortBy, tt.sortOrder)
			if q.Field.Name != tt.wantField || q.Direction != tt.wantDir {
				t.Errorf("ParseQuery(%q, %q) = %s, want %s:%s", tt.sortBy, tt.sortOrder, q.Key(), tt.wantField, tt.wantDir)
			}
		})
	}
}

func TestRegistry(t *testing.T) {
	for _, name := range []models.SortField{models.SortByCreatedAt, models.SortByStatus, models.SortByDueDate} {
		f, ok := Lookup(name)
		if !ok {
			t.Fatalf("field %q not registered", name)
		}
		if f.Persisted != (name == DefaultField) {
			t.Errorf("field %q: Persisted = %v", name, f.Persisted)
		}
		if f.Persisted && f.Column == "" {
			t.Errorf("field %q: persisted without column", name)
		}
	}
}
