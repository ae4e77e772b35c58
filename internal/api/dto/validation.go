package dto

import (
	"strings"
)

// FieldError describes one rejected input field.
type FieldError struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

// ValidationErrors is returned when a payload is malformed. It is rendered as the 422 detail.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return "validation failed"
	}

	parts := make([]string, 0, len(v))
	for _, fieldErr := range v {
		parts = append(parts, strings.Join(fieldErr.Loc, ".")+": "+fieldErr.Msg)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func bodyFieldError(field, msg, errType string) FieldError {
	loc := []string{"body"}
	if field != "" {
		loc = append(loc, field)
	}
	return FieldError{Loc: loc, Msg: msg, Type: errType}
}
