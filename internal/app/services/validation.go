package services

import (
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kalpovskii/taskboard/internal/app/models"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	// nullable strings validate as their value; null and absent look like ""
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		n := field.Interface().(models.Nullable[string])
		if n.Value == nil {
			return ""
		}
		return *n.Value
	}, models.Nullable[string]{})

	if err := v.RegisterValidation("duedate", func(fl validator.FieldLevel) bool {
		_, err := ParseDueDate(fl.Field().String())
		return err == nil
	}); err != nil {
		panic(err)
	}

	return v
}

var dueDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	time.DateOnly,
}

// ParseDueDate accepts RFC 3339 timestamps, local date-times without a zone
// (read as UTC) and plain dates.
func ParseDueDate(s string) (time.Time, error) {
	var err error
	for _, layout := range dueDateLayouts {
		var t time.Time
		if t, err = time.Parse(layout, strings.TrimSpace(s)); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, err
}
