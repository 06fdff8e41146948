package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned by blob stores when the key does not exist.
	ErrNotFound = errors.New("object not found")

	// ErrMissingScans is returned when a job lacks a previous scan to compare against.
	ErrMissingScans = errors.New("job needs a current and a previous scan")
)

// ListingError means the local job folder could not be enumerated.
type ListingError struct {
	Folder string
	Err    error
}

func (e *ListingError) Error() string {
	return fmt.Sprintf("list %s: %v", e.Folder, e.Err)
}

func (e *ListingError) Unwrap() error { return e.Err }

// TransferError is a single failed upload or download.
type TransferError struct {
	Op   string
	Key  string
	Path string
	Err  error
}

func (e *TransferError) Error() string {
	return fmt.Sprintf("%s %s (%s): %v", e.Op, e.Key, e.Path, e.Err)
}

func (e *TransferError) Unwrap() error { return e.Err }

// DirectoryError means a local working directory could not be created.
type DirectoryError struct {
	Path string
	Err  error
}

func (e *DirectoryError) Error() string {
	return fmt.Sprintf("create directory %s: %v", e.Path, e.Err)
}

func (e *DirectoryError) Unwrap() error { return e.Err }

// IsNotFound reports whether err wraps ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
