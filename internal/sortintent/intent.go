// Package sortintent holds the client-side sort state: which field the task
// list is ordered by and in which direction, and how a toggle moves it.
package sortintent

import (
	"net/url"

	"github.com/kalpovskii/taskboard/internal/app/models"
)

const (
	paramSortBy    = "sortBy"
	paramSortOrder = "sortOrder"
)

// Intent is the requested ordering. The zero value is the cleared state,
// in which the server's default ordering applies.
type Intent struct {
	Field models.SortField `schema:"sortBy,omitempty"`
	Order models.SortOrder `schema:"sortOrder,omitempty"`
}

func (i Intent) Cleared() bool {
	return i.Field == ""
}

// Toggle returns the state following a toggle of field. Each field cycles
// asc, desc, cleared; switching to another field restarts at asc.
func Toggle(current Intent, field models.SortField) Intent {
	switch {
	case current.Field != field:
		return Intent{Field: field, Order: models.SortAsc}
	case current.Order == models.SortAsc:
		return Intent{Field: field, Order: models.SortDesc}
	default:
		return Intent{}
	}
}

// Query returns the parameters to send with a list request. A cleared
// intent sends nothing.
func (i Intent) Query() url.Values {
	q := url.Values{}
	if i.Cleared() {
		return q
	}
	// Intent has only string fields, which the encoder always accepts.
	_ = encoder.Encode(i, q)
	return q
}

func (i Intent) String() string {
	if i.Cleared() {
		return "default"
	}
	if i.Order == "" {
		return string(i.Field)
	}
	return string(i.Field) + " " + string(i.Order)
}

// normalize drops values the server would not understand. An unknown field
// clears the intent; an unknown order is left for the server to default.
func normalize(i Intent) Intent {
	if !i.Field.Valid() {
		return Intent{}
	}
	if !i.Order.Valid() {
		i.Order = ""
	}
	return i
}
