package packstore

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"regexp"

	"github.com/spf13/afero"
)

// cssURLPattern matches url(...) references, in any case, with optional
// single or double quotes. Known limits, accepted by design: it does not
// catch @import without url(), values spanning lines, or escaped quotes.
var cssURLPattern = regexp.MustCompile(`(?i)url\(['"]?([^'")]+)['"]?\)`)

var traversalMarker = []byte("../")

// CacheAssets aggregates the bundle into the two cachedassets files for the
// given fingerprint, then rewrites the bundle in place so each asset type
// holds exactly one aggregate entry.
func (s *store) CacheAssets(ctx context.Context, bundle *AssetBundle, key string) (*CachedAssetSet, error) {
	if err := validateID("fingerprint", key); err != nil {
		return nil, err
	}

	set, err := s.aggregate(*bundle, key)
	if err != nil {
		return nil, err
	}

	bundle.Scripts = []Asset{set.Scripts}
	bundle.Styles = []Asset{set.Styles}
	return set, nil
}

// aggregate concatenates the bundle's sources into <key>.js and <key>.css
// under cachedassets/. Input order is preserved verbatim; it encodes load
// order. Both outputs are always written, even when one type has no input
// assets, so the cache index's both-files rule holds for every completed
// aggregation.
func (s *store) aggregate(bundle AssetBundle, key string) (*CachedAssetSet, error) {
	cacheDir := filepath.Join(s.root, CachedAssetsDir)
	if err := s.ensureDirectory(cacheDir); err != nil {
		return nil, &StorageError{Op: "cache_assets", Path: cacheDir,
			Err: fmt.Errorf("%w: %w", ErrCopyFailed, err)}
	}

	var js bytes.Buffer
	for _, asset := range bundle.Scripts {
		content, err := s.readAsset(asset)
		if err != nil {
			return nil, err
		}
		js.Write(content)
		js.WriteString(";\n")
	}

	var css bytes.Buffer
	for _, asset := range bundle.Styles {
		content, err := s.readAsset(asset)
		if err != nil {
			return nil, err
		}
		css.Write(rewriteStyleURLs(content, asset.Dir()))
		css.WriteByte('\n')
	}

	jsPath, cssPath := cachedAssetPaths(key)
	if err := s.writeAggregate(jsPath, js.Bytes()); err != nil {
		return nil, err
	}
	if err := s.writeAggregate(cssPath, css.Bytes()); err != nil {
		return nil, err
	}

	// Per-asset version metadata is discarded once merged.
	return &CachedAssetSet{
		Key:     key,
		Scripts: Asset{Path: jsPath},
		Styles:  Asset{Path: cssPath},
	}, nil
}

func (s *store) readAsset(asset Asset) ([]byte, error) {
	content, err := afero.ReadFile(s.fs, filepath.Join(s.root, asset.Path))
	if err != nil {
		return nil, &StorageError{Op: "cache_assets", Path: asset.Path,
			Err: fmt.Errorf("%w: %w", ErrCopyFailed, err)}
	}
	return content, nil
}

func (s *store) writeAggregate(relPath string, data []byte) error {
	if err := afero.WriteFile(s.fs, filepath.Join(s.root, relPath), data, 0o644); err != nil {
		return &StorageError{Op: "cache_assets", Path: relPath,
			Err: fmt.Errorf("%w: %w", ErrCopyFailed, err)}
	}
	return nil
}

// rewriteStyleURLs adjusts relative url(...) references in stylesheet
// content so they still resolve from the aggregate file, which lives one
// directory level away from the storage root. Only references beginning
// with a parent-traversal marker are rewritten: they get prefixed with
// "../" plus the asset's own directory. Everything else is left untouched.
func rewriteStyleURLs(content []byte, assetDir string) []byte {
	return cssURLPattern.ReplaceAllFunc(content, func(match []byte) []byte {
		ref := cssURLPattern.FindSubmatch(match)[1]
		if !bytes.HasPrefix(ref, traversalMarker) {
			return match
		}
		return []byte(`url("../` + assetDir + string(ref) + `")`)
	})
}
