package packstore

import (
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// AssetSetFingerprint computes a stable fingerprint over the exact set and
// order of assets in the bundle. The same bundle always yields the same
// fingerprint, so aggregate output is pure content-addressed caching.
// Callers with their own fingerprinting scheme may bypass this helper; the
// store treats the key as opaque.
func AssetSetFingerprint(bundle AssetBundle) string {
	h := xxhash.New()
	for _, asset := range bundle.Scripts {
		h.WriteString(asset.Path)
		h.WriteString(":")
		h.WriteString(asset.Version)
		h.WriteString(",")
	}
	h.WriteString(";")
	for _, asset := range bundle.Styles {
		h.WriteString(asset.Path)
		h.WriteString(":")
		h.WriteString(asset.Version)
		h.WriteString(",")
	}
	return strconv.FormatUint(h.Sum64(), 16)
}
