package models

import (
	"time"

	"github.com/google/uuid"
)

type TaskAction string

const (
	TaskCreated TaskAction = "task.created"
	TaskUpdated TaskAction = "task.updated"
	TaskDeleted TaskAction = "task.deleted"
)

// TaskEvent is published after every successful mutation.
type TaskEvent struct {
	Action TaskAction `json:"action"`
	TaskID uuid.UUID  `json:"taskId"`
	Title  string     `json:"title,omitempty"`
	At     time.Time  `json:"at"`
}
