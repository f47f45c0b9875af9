package ordering

import (
	"slices"

	"github.com/kalpovskii/taskboard/internal/app/models"
)

// Sort returns a stably sorted copy of tasks. The input slice is left untouched.
func Sort(tasks []models.Task, field Field, dir models.SortOrder) []models.Task {
	sorted := slices.Clone(tasks)
	if sorted == nil {
		sorted = []models.Task{}
	}
	slices.SortStableFunc(sorted, func(a, b models.Task) int {
		return field.Compare(&a, &b, dir)
	})
	return sorted
}
