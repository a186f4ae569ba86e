package packstore

import (
	"context"
	"path/filepath"
)

// GetCachedAssets looks up the aggregate pair for a fingerprint. A hit
// requires both files to exist: exactly one present means an interrupted
// aggregation, and serving half an asset set would break the consumer, so
// it is reported as a miss. Returns nil on a miss.
func (s *store) GetCachedAssets(ctx context.Context, key string) *CachedAssetSet {
	if err := validateID("fingerprint", key); err != nil {
		return nil
	}

	jsPath, cssPath := cachedAssetPaths(key)
	if !s.fileExists(jsPath) || !s.fileExists(cssPath) {
		return nil
	}

	return &CachedAssetSet{
		Key:     key,
		Scripts: Asset{Path: jsPath},
		Styles:  Asset{Path: cssPath},
	}
}

// DeleteCachedAssets removes both aggregate files for each fingerprint.
// Missing files are expected and silent.
func (s *store) DeleteCachedAssets(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		if err := validateID("fingerprint", key); err != nil {
			return err
		}
		jsPath, cssPath := cachedAssetPaths(key)
		for _, p := range []string{jsPath, cssPath} {
			if err := s.fs.Remove(filepath.Join(s.root, p)); err != nil && !isNotExist(err) {
				return &StorageError{Op: "delete_cached_assets", Path: p, Err: err}
			}
		}
	}
	return nil
}

func (s *store) fileExists(relPath string) bool {
	info, err := s.fs.Stat(filepath.Join(s.root, relPath))
	return err == nil && !info.IsDir()
}
