// Package ordering decides how a task list is ordered for a requested sort field.
package ordering

import (
	"bytes"
	"cmp"

	"github.com/kalpovskii/taskboard/internal/app/models"
)

// Compare reports the relative order of a and b for the given direction.
type Compare func(a, b *models.Task, dir models.SortOrder) int

// Field describes one sortable field.
type Field struct {
	Name models.SortField
	// Column is the storage column when Persisted is true.
	Column string
	// Persisted fields are ordered by the store; the rest are sorted in memory.
	Persisted bool
	Compare   Compare
}

// DefaultField is used when no valid sort field is requested.
const DefaultField = models.SortByCreatedAt

var registry = map[models.SortField]Field{
	models.SortByCreatedAt: {
		Name:      models.SortByCreatedAt,
		Column:    "created_at",
		Persisted: true,
		Compare:   compareCreatedAt,
	},
	models.SortByStatus: {
		Name:    models.SortByStatus,
		Compare: compareStatus,
	},
	models.SortByDueDate: {
		Name:    models.SortByDueDate,
		Compare: compareDueDate,
	},
}

// Lookup returns the registered field with the given name.
func Lookup(name models.SortField) (Field, bool) {
	f, ok := registry[name]
	return f, ok
}

func directed(c int, dir models.SortOrder) int {
	if dir == models.SortDesc {
		return -c
	}
	return c
}

func compareStatus(a, b *models.Task, dir models.SortOrder) int {
	return directed(cmp.Compare(a.Status.Rank(), b.Status.Rank()), dir)
}

// compareDueDate keeps tasks without a due date after every dated task,
// whatever the direction.
func compareDueDate(a, b *models.Task, dir models.SortOrder) int {
	switch {
	case a.DueDate == nil && b.DueDate == nil:
		return 0
	case a.DueDate == nil:
		return 1
	case b.DueDate == nil:
		return -1
	}
	return directed(a.DueDate.Compare(*b.DueDate), dir)
}

func compareCreatedAt(a, b *models.Task, dir models.SortOrder) int {
	c := a.CreatedAt.Compare(b.CreatedAt)
	if c == 0 {
		c = bytes.Compare(a.ID[:], b.ID[:])
	}
	return directed(c, dir)
}
