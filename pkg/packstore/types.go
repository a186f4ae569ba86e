package packstore

import (
	"fmt"
	"path"
	"strings"
)

// AssetType is the domain type for aggregatable asset kinds.
type AssetType string

// Asset type constants (typed).
const (
	AssetTypeScripts AssetType = "scripts"
	AssetTypeStyles  AssetType = "styles"
)

// Well-known subtree names under the storage root. The layout is a fixed
// convention; no path outside these subtrees is ever touched.
const (
	LibrariesDir    = "libraries"
	ContentDir      = "content"
	ExportsDir      = "exports"
	CachedAssetsDir = "cachedassets"
	TempDir         = "temp"
)

// LibraryKey identifies a versioned library. Its folder name rendering is
// injective over valid keys: two distinct keys never share a directory.
type LibraryKey struct {
	Name         string `json:"name"`
	MajorVersion int    `json:"major_version"`
	MinorVersion int    `json:"minor_version"`
}

// FolderName returns the canonical directory segment for the library,
// "name-major.minor".
func (k LibraryKey) FolderName() string {
	return fmt.Sprintf("%s-%d.%d", k.Name, k.MajorVersion, k.MinorVersion)
}

// Validate reports whether the key can safely name a directory segment.
func (k LibraryKey) Validate() error {
	if k.Name == "" {
		return fmt.Errorf("library name is required")
	}
	if k.Name == "." || strings.ContainsAny(k.Name, "/\\") || strings.Contains(k.Name, "..") {
		return fmt.Errorf("library name %q is not filesystem-safe", k.Name)
	}
	if k.MajorVersion < 0 || k.MinorVersion < 0 {
		return fmt.Errorf("library version %d.%d is negative", k.MajorVersion, k.MinorVersion)
	}
	return nil
}

// Asset is a single aggregatable source file. Path is relative to the
// storage root. Version carries caller-supplied cache-busting metadata and
// is intentionally emptied once assets are merged into an aggregate.
type Asset struct {
	Path    string `json:"path"`
	Version string `json:"version,omitempty"`
}

// Dir returns the asset's containing directory relative to the storage
// root, with a trailing slash, or "" when the asset sits at the root.
// Stylesheet URL rewriting resolves traversal references against it.
func (a Asset) Dir() string {
	dir := path.Dir(a.Path)
	if dir == "." || dir == "/" {
		return ""
	}
	return dir + "/"
}

// AssetBundle groups the assets to aggregate, per type, in load order.
// Order is significant: it encodes the dependency order chosen by the
// caller and is preserved verbatim in the aggregate output.
type AssetBundle struct {
	Scripts []Asset `json:"scripts,omitempty"`
	Styles  []Asset `json:"styles,omitempty"`
}

// CachedAssetSet is the pair of aggregate files produced for one
// fingerprint. Both assets carry empty version tags: per-asset version
// metadata is discarded once merged.
type CachedAssetSet struct {
	Key     string `json:"key"`
	Scripts Asset  `json:"scripts"`
	Styles  Asset  `json:"styles"`
}

// cachedAssetPaths returns the two aggregate paths for a fingerprint,
// relative to the storage root.
func cachedAssetPaths(key string) (js, css string) {
	return path.Join(CachedAssetsDir, key+".js"), path.Join(CachedAssetsDir, key+".css")
}
