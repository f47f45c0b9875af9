package ordering

import "github.com/kalpovskii/taskboard/internal/app/models"

// Query is a resolved sort request.
type Query struct {
	Field     Field
	Direction models.SortOrder
}

// ParseQuery resolves raw sortBy/sortOrder parameters. Unknown or missing
// fields fall back to createdAt. A missing or unknown direction is desc for
// createdAt and asc for every other field.
func ParseQuery(sortBy, sortOrder string) Query {
	field, ok := Lookup(models.SortField(sortBy))
	if !ok {
		field = registry[DefaultField]
	}

	dir := models.SortOrder(sortOrder)
	if !dir.Valid() {
		dir = DefaultDirection(field.Name)
	}

	return Query{Field: field, Direction: dir}
}

func DefaultDirection(name models.SortField) models.SortOrder {
	if name == DefaultField {
		return models.SortDesc
	}
	return models.SortAsc
}

// Key identifies the query in caches, e.g. "dueDate:asc".
func (q Query) Key() string {
	return string(q.Field.Name) + ":" + string(q.Direction)
}
