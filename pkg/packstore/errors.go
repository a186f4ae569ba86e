package packstore

import (
	"errors"
	"fmt"
)

// Error types
var (
	// ErrDirectoryUnavailable indicates a directory could not be created or
	// is not writable (permissions, or a regular file blocking the path).
	ErrDirectoryUnavailable = errors.New("directory unavailable")

	// ErrCopyFailed indicates a tree or file copy could not complete: the
	// source was unreadable or the destination could not be prepared.
	ErrCopyFailed = errors.New("copy failed")
)

// StorageError wraps a failed storage operation with the operation name and
// the path it was acting on.
type StorageError struct {
	Op   string
	Path string
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage operation %s failed for %s: %v", e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
