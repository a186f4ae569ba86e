package packstore

import (
	"context"
)

// Storage defines the interface for the content-package storage layer.
//
// All operations are synchronous, blocking filesystem calls and are safe to
// invoke from any number of goroutines, but no cross-operation locking is
// provided: callers must serialize saves per identifier. Concurrent
// aggregations for the same fingerprint compute the same bytes and may
// overwrite each other harmlessly.
type Storage interface {
	// Library operations. Save replaces any existing tree (delete-then-copy).
	SaveLibrary(ctx context.Context, sourceDir string, lib LibraryKey) error
	DeleteLibrary(ctx context.Context, lib LibraryKey) error
	ExportLibrary(ctx context.Context, lib LibraryKey, targetDir string) error

	// Content operations. Save replaces any existing tree (delete-then-copy).
	SaveContent(ctx context.Context, sourceDir, contentID string) error
	DeleteContent(ctx context.Context, contentID string) error
	CloneContent(ctx context.Context, contentID, newContentID string) error
	ExportContent(ctx context.Context, contentID, targetDir string) error

	// Export artifact operations (single files under exports/).
	SaveExport(ctx context.Context, sourceFile, filename string) error
	DeleteExport(ctx context.Context, filename string) error
	HasExport(ctx context.Context, filename string) bool

	// Cached-asset operations. GetCachedAssets returns nil on a miss.
	CacheAssets(ctx context.Context, bundle *AssetBundle, key string) (*CachedAssetSet, error)
	GetCachedAssets(ctx context.Context, key string) *CachedAssetSet
	DeleteCachedAssets(ctx context.Context, keys ...string) error

	// TempPath returns a fresh, collision-resistant path under temp/.
	// The directory is not created.
	TempPath() string

	// Path helpers for callers that serve files directly.
	LibraryPath(lib LibraryKey) string
	ContentPath(contentID string) string
}
