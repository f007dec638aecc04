package catalog

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUninitialized is returned when the catalog or the similarity matrix has not been loaded.
	ErrUninitialized = errors.New("movie model is not loaded")
	// ErrNotFound is returned when a title is absent from the catalog.
	ErrNotFound = errors.New("movie not found")
)

// NotFoundError describes a failed title lookup. Examples holds a few catalog titles the caller
// can show as a hint.
type NotFoundError struct {
	Title    string
	Examples []string
}

func (e *NotFoundError) Error() string {
	if len(e.Examples) == 0 {
		return fmt.Sprintf("movie %q not found", e.Title)
	}
	return fmt.Sprintf("movie %q not found, try one of: %s", e.Title, strings.Join(e.Examples, ", "))
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }
