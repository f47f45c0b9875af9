package models

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending    Status = "PENDING"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
)

// statusRank orders statuses by workflow priority, not alphabetically.
var statusRank = map[Status]int{
	StatusPending:    1,
	StatusInProgress: 2,
	StatusCompleted:  3,
}

func (s Status) Valid() bool {
	_, ok := statusRank[s]
	return ok
}

// Rank returns the workflow priority of s. Unknown statuses rank after all known ones.
func (s Status) Rank() int {
	if r, ok := statusRank[s]; ok {
		return r
	}
	return len(statusRank) + 1
}

type Task struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	DueDate     *time.Time `json:"dueDate"`
	Status      Status     `json:"status"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// TaskPatch is a normalized partial update. Set* flags distinguish
// "clear the value" from "leave it alone" for nullable columns.
type TaskPatch struct {
	Title          *string
	SetDescription bool
	Description    *string
	SetDueDate     bool
	DueDate        *time.Time
	Status         *Status
}

func (p TaskPatch) Empty() bool {
	return p.Title == nil && !p.SetDescription && !p.SetDueDate && p.Status == nil
}
