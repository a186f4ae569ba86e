package packstore

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// ensureDirectory guarantees that dir exists, is a directory, and is
// writable, creating missing ancestors first. It is idempotent and returns
// ErrDirectoryUnavailable (wrapped) when a regular file blocks the path or
// permissions forbid creation or writing.
func (s *store) ensureDirectory(dir string) error {
	// The ascent terminates at the filesystem root or an empty path, both
	// assumed ready (the storage root itself is created by New).
	if dir == "" || dir == "." || dir == "/" || dir == filepath.Dir(dir) {
		return nil
	}

	info, err := s.fs.Stat(dir)
	switch {
	case err == nil:
		if !info.IsDir() {
			s.log.Warn("path is blocked by a regular file", "path", dir)
			return &StorageError{Op: "ensure_directory", Path: dir,
				Err: fmt.Errorf("%w: blocked by a regular file", ErrDirectoryUnavailable)}
		}
		if err := s.writable(dir); err != nil {
			s.log.Warn("directory is not writable", "path", dir, "error", err)
			return &StorageError{Op: "ensure_directory", Path: dir, Err: err}
		}
		return nil

	case isNotExist(err):
		if err := s.ensureDirectory(filepath.Dir(dir)); err != nil {
			return err
		}
		if err := s.fs.Mkdir(dir, 0o755); err != nil && !isExist(err) {
			s.log.Warn("cannot create directory", "path", dir, "error", err)
			return &StorageError{Op: "ensure_directory", Path: dir,
				Err: fmt.Errorf("%w: %w", ErrDirectoryUnavailable, err)}
		}
		return nil

	default:
		return &StorageError{Op: "ensure_directory", Path: dir,
			Err: fmt.Errorf("%w: %w", ErrDirectoryUnavailable, err)}
	}
}

// writable probes an existing directory by creating and removing a
// throwaway file. The filesystem interface offers no access check, so an
// actual write is the only reliable test.
func (s *store) writable(dir string) error {
	probe := filepath.Join(dir, ".write-probe-"+uuid.NewString())
	f, err := s.fs.OpenFile(probe, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDirectoryUnavailable, err)
	}
	f.Close()
	if err := s.fs.Remove(probe); err != nil {
		s.log.Warn("cannot remove write probe", "path", probe, "error", err)
	}
	return nil
}
