package services

import (
	"strings"
	"unicode/utf8"

	"blog-todo/internal/models"
)

func checkLength(field, value string, max int) error {
	if utf8.RuneCountInString(value) > max {
		return models.NewValidationError(field, "%s must be at most %d characters", field, max)
	}
	return nil
}

// trimPatch trims a supplied field. Absent fields stay nil; supplied fields
// must not be blank. max <= 0 disables the length check.
func trimPatch(field string, value *string, max int) (*string, error) {
	if value == nil {
		return nil, nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil, models.NewValidationError(field, "%s must not be blank", field)
	}
	if max > 0 {
		if err := checkLength(field, trimmed, max); err != nil {
			return nil, err
		}
	}
	return &trimmed, nil
}
