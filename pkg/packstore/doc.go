// Package packstore provides the on-disk storage layer for a
// content-packaging system: versioned library directories, content-instance
// directories, single-file export artifacts, and a derived-asset cache that
// concatenates script and stylesheet sources into two aggregate files per
// fingerprint.
//
// The package exposes a single Storage interface backed by a configurable
// filesystem (afero.Fs), so the same code runs against the real disk in
// production and an in-memory filesystem in tests. Save operations for
// libraries and content are delete-then-copy: the destination tree is always
// a byte-for-byte replica of the source, never a merge.
//
// Cache Coherence
//
// Aggregate files exist in pairs. A fingerprint is cached only when both the
// .js and .css aggregates are present on disk; a lookup that finds exactly
// one treats the entry as absent. There is no metadata record — existence on
// disk is the source of truth.
package packstore
