package models

import (
	"bytes"
	"encoding/json"
)

// Nullable records whether a JSON key was present and whether it held null.
type Nullable[T any] struct {
	Set   bool
	Value *T
}

func NullableOf[T any](v T) Nullable[T] {
	return Nullable[T]{Set: true, Value: &v}
}

func (n *Nullable[T]) UnmarshalJSON(data []byte) error {
	n.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		n.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	n.Value = &v
	return nil
}

func (n Nullable[T]) MarshalJSON() ([]byte, error) {
	if n.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*n.Value)
}

type CreateTaskInput struct {
	Title       string           `json:"title" validate:"required,max=100"`
	Description Nullable[string] `json:"description,omitzero" validate:"omitempty,max=500"`
	DueDate     Nullable[string] `json:"dueDate,omitzero" validate:"omitempty,duedate"`
	Status      *Status          `json:"status,omitempty" validate:"omitnil,oneof=PENDING IN_PROGRESS COMPLETED"`
}

type UpdateTaskInput struct {
	Title       *string          `json:"title,omitempty" validate:"omitnil,min=1,max=100"`
	Description Nullable[string] `json:"description,omitzero" validate:"omitempty,max=500"`
	DueDate     Nullable[string] `json:"dueDate,omitzero" validate:"omitempty,duedate"`
	Status      *Status          `json:"status,omitempty" validate:"omitnil,oneof=PENDING IN_PROGRESS COMPLETED"`
}
