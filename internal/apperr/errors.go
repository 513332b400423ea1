// Package apperr defines the sentinel errors shared by the service and transport layers.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrAlreadyExists   = errors.New("already exists")
	ErrEmptyInput      = errors.New("empty input")
	ErrTooShort        = errors.New("input too short")
	ErrUnsupportedType = errors.New("unsupported file type")
)

// TooShortError reports text that has fewer words than a summary needs.
type TooShortError struct {
	WordCount int
	MinWords  int
}

func (e *TooShortError) Error() string {
	return fmt.Sprintf("need at least %d words, got %d", e.MinWords, e.WordCount)
}

// Unwrap lets errors.Is match ErrTooShort.
func (e *TooShortError) Unwrap() error { return ErrTooShort }
