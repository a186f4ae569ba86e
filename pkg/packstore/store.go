package packstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/afero"
)

// store implements the Storage interface over an afero filesystem.
type store struct {
	fs   afero.Fs
	root string
	log  *slog.Logger
}

// Option represents a functional option for configuring the store.
type Option func(*store)

// WithFilesystem sets the filesystem the store operates on. Defaults to the
// real OS filesystem; tests use afero.NewMemMapFs().
func WithFilesystem(fs afero.Fs) Option {
	return func(s *store) {
		s.fs = fs
	}
}

// WithLogger sets the logger used for non-fatal diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(s *store) {
		s.log = logger
	}
}

// New creates a storage layer rooted at the given base path, creating the
// root directory if it does not exist.
func New(root string, opts ...Option) (Storage, error) {
	if root == "" {
		return nil, errors.New("storage root is required")
	}

	s := &store{
		fs:   afero.NewOsFs(),
		root: root,
		log:  slog.Default(),
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(s)
	}

	if err := s.fs.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create storage root: %w", err)
	}

	return s, nil
}

// LibraryPath returns the directory holding the given library version.
func (s *store) LibraryPath(lib LibraryKey) string {
	return filepath.Join(s.root, LibrariesDir, lib.FolderName())
}

// ContentPath returns the directory holding the given content instance.
func (s *store) ContentPath(contentID string) string {
	return filepath.Join(s.root, ContentDir, contentID)
}

func (s *store) exportPath(filename string) string {
	return filepath.Join(s.root, ExportsDir, filename)
}

// TempPath returns a fresh path under temp/. The caller creates it.
func (s *store) TempPath() string {
	return filepath.Join(s.root, TempDir, "h5p-"+uuid.NewString())
}

func (s *store) SaveLibrary(ctx context.Context, sourceDir string, lib LibraryKey) error {
	if err := lib.Validate(); err != nil {
		return err
	}

	// Delete-then-copy so files from a previous version never survive.
	dest := s.LibraryPath(lib)
	if err := s.deleteTree(dest); err != nil {
		return err
	}
	return s.copyTree(sourceDir, dest)
}

func (s *store) DeleteLibrary(ctx context.Context, lib LibraryKey) error {
	if err := lib.Validate(); err != nil {
		return err
	}
	return s.deleteTree(s.LibraryPath(lib))
}

func (s *store) ExportLibrary(ctx context.Context, lib LibraryKey, targetDir string) error {
	if err := lib.Validate(); err != nil {
		return err
	}
	return s.copyTree(s.LibraryPath(lib), filepath.Join(targetDir, lib.FolderName()))
}

func (s *store) SaveContent(ctx context.Context, sourceDir, contentID string) error {
	if err := validateID("content id", contentID); err != nil {
		return err
	}

	dest := s.ContentPath(contentID)
	if err := s.deleteTree(dest); err != nil {
		return err
	}
	return s.copyTree(sourceDir, dest)
}

func (s *store) DeleteContent(ctx context.Context, contentID string) error {
	if err := validateID("content id", contentID); err != nil {
		return err
	}
	return s.deleteTree(s.ContentPath(contentID))
}

func (s *store) CloneContent(ctx context.Context, contentID, newContentID string) error {
	if err := validateID("content id", contentID); err != nil {
		return err
	}
	if err := validateID("content id", newContentID); err != nil {
		return err
	}
	return s.copyTree(s.ContentPath(contentID), s.ContentPath(newContentID))
}

func (s *store) ExportContent(ctx context.Context, contentID, targetDir string) error {
	if err := validateID("content id", contentID); err != nil {
		return err
	}

	source := s.ContentPath(contentID)
	exists, err := afero.DirExists(s.fs, source)
	if err != nil {
		return &StorageError{Op: "export_content", Path: source, Err: fmt.Errorf("%w: %w", ErrCopyFailed, err)}
	}
	if !exists {
		// Content stored without files still exports an empty folder.
		return s.ensureDirectory(targetDir)
	}
	return s.copyTree(source, targetDir)
}

func (s *store) SaveExport(ctx context.Context, sourceFile, filename string) error {
	if err := validateID("export filename", filename); err != nil {
		return err
	}

	if err := s.DeleteExport(ctx, filename); err != nil {
		return err
	}
	if err := s.ensureDirectory(filepath.Join(s.root, ExportsDir)); err != nil {
		return &StorageError{Op: "save_export", Path: filename, Err: fmt.Errorf("%w: %w", ErrCopyFailed, err)}
	}
	return s.copyFile(sourceFile, s.exportPath(filename))
}

func (s *store) DeleteExport(ctx context.Context, filename string) error {
	if err := validateID("export filename", filename); err != nil {
		return err
	}

	if err := s.fs.Remove(s.exportPath(filename)); err != nil && !isNotExist(err) {
		return &StorageError{Op: "delete_export", Path: filename, Err: err}
	}
	return nil
}

func (s *store) HasExport(ctx context.Context, filename string) bool {
	if err := validateID("export filename", filename); err != nil {
		return false
	}
	exists, err := afero.Exists(s.fs, s.exportPath(filename))
	return err == nil && exists
}

// validateID rejects identifiers that cannot safely name a path segment.
func validateID(kind, id string) error {
	if id == "" {
		return fmt.Errorf("%s is required", kind)
	}
	// "." would resolve to the parent subtree itself and turn a per-entity
	// delete into a wipe of every entity.
	if id == "." || strings.ContainsAny(id, "/\\") || strings.Contains(id, "..") {
		return fmt.Errorf("%s %q is not filesystem-safe", kind, id)
	}
	return nil
}
