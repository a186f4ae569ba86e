package packstore

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"

	"github.com/spf13/afero"
)

// treeExclusions are entry names never replicated by copyTree. The set is
// fixed: version-control metadata has no business inside a stored package.
// "." and ".." never appear in directory listings and need no entry.
var treeExclusions = map[string]struct{}{
	".git":       {},
	".gitignore": {},
}

// copyTree recursively copies every file and subdirectory from src into
// dst, preserving relative structure and skipping excluded names. It
// overlays: pre-existing unrelated files at dst are left alone. Callers
// needing replace semantics delete dst first.
func (s *store) copyTree(src, dst string) error {
	if err := s.ensureDirectory(dst); err != nil {
		return &StorageError{Op: "copy_tree", Path: dst,
			Err: fmt.Errorf("%w: %w", ErrCopyFailed, err)}
	}

	entries, err := afero.ReadDir(s.fs, src)
	if err != nil {
		return &StorageError{Op: "copy_tree", Path: src,
			Err: fmt.Errorf("%w: cannot list source: %w", ErrCopyFailed, err)}
	}

	for _, entry := range entries {
		if _, skip := treeExclusions[entry.Name()]; skip {
			continue
		}
		from := filepath.Join(src, entry.Name())
		to := filepath.Join(dst, entry.Name())
		if entry.IsDir() {
			if err := s.copyTree(from, to); err != nil {
				return err
			}
			continue
		}
		if err := s.copyFile(from, to); err != nil {
			return err
		}
	}
	return nil
}

// copyFile copies a single file, truncating any existing destination.
func (s *store) copyFile(src, dst string) error {
	in, err := s.fs.Open(src)
	if err != nil {
		return &StorageError{Op: "copy_file", Path: src,
			Err: fmt.Errorf("%w: %w", ErrCopyFailed, err)}
	}
	defer in.Close()

	out, err := s.fs.Create(dst)
	if err != nil {
		return &StorageError{Op: "copy_file", Path: dst,
			Err: fmt.Errorf("%w: %w", ErrCopyFailed, err)}
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return &StorageError{Op: "copy_file", Path: dst,
			Err: fmt.Errorf("%w: %w", ErrCopyFailed, err)}
	}
	if err := out.Close(); err != nil {
		return &StorageError{Op: "copy_file", Path: dst,
			Err: fmt.Errorf("%w: %w", ErrCopyFailed, err)}
	}
	return nil
}

// deleteTree removes path and everything beneath it. A missing path is a
// silent no-op; a non-empty tree is not an error.
func (s *store) deleteTree(path string) error {
	if err := s.fs.RemoveAll(path); err != nil && !isNotExist(err) {
		return &StorageError{Op: "delete_tree", Path: path, Err: err}
	}
	return nil
}

func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

func isExist(err error) bool {
	return errors.Is(err, fs.ErrExist)
}
