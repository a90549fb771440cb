package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrValidation is matched by every ValidationError.
var ErrValidation = errors.New("validation failed")

// ValidationError reports invalid user input caught before any request.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// Invalid creates a ValidationError.
func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// Validate checks a debate creation form.
func (n NewDebate) Validate() error {
	switch {
	case strings.TrimSpace(n.Title) == "":
		return Invalid("title", "is required")
	case strings.TrimSpace(n.Description) == "":
		return Invalid("description", "is required")
	case strings.TrimSpace(n.Category) == "":
		return Invalid("category", "is required")
	case n.Duration <= 0:
		return Invalid("duration", "please enter a valid duration")
	}
	return nil
}

// ParseTags splits a comma separated tag list, dropping blanks.
func ParseTags(s string) []string {
	var tags []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
