package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/edupack/packstore/pkg/packstore"
)

// StorageHandler exposes the storage layer over HTTP. It is a thin
// pass-through: identifiers arrive already validated by the registry that
// owns them, and the handler only maps storage results to status codes.
type StorageHandler struct {
	storage packstore.Storage
	logger  *slog.Logger
}

// NewStorageHandler creates a new storage handler.
func NewStorageHandler(storage packstore.Storage, logger *slog.Logger) *StorageHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &StorageHandler{storage: storage, logger: logger}
}

// Routes returns the routes for the storage service.
func (h *StorageHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/libraries", h.SaveLibrary)
	r.Delete("/libraries/{name}/{major}/{minor}", h.DeleteLibrary)
	r.Post("/libraries/{name}/{major}/{minor}/export", h.ExportLibrary)

	r.Post("/content/{id}", h.SaveContent)
	r.Delete("/content/{id}", h.DeleteContent)
	r.Post("/content/{id}/clone", h.CloneContent)
	r.Post("/content/{id}/export", h.ExportContent)

	r.Post("/exports", h.SaveExport)
	r.Get("/exports/{filename}", h.HasExport)
	r.Delete("/exports/{filename}", h.DeleteExport)

	r.Post("/cachedassets/{key}", h.CacheAssets)
	r.Get("/cachedassets/{key}", h.GetCachedAssets)
	r.Delete("/cachedassets", h.DeleteCachedAssets)

	r.Get("/temp-path", h.TempPath)

	return r
}

// SaveLibraryRequest is the request body for saving a library.
type SaveLibraryRequest struct {
	Name         string `json:"name"`
	MajorVersion int    `json:"major_version"`
	MinorVersion int    `json:"minor_version"`
	SourceDir    string `json:"source_dir"`
}

// SaveLibrary stores a library tree, replacing any previous version with the
// same name and major.minor.
func (h *StorageHandler) SaveLibrary(w http.ResponseWriter, r *http.Request) {
	var req SaveLibraryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	lib := packstore.LibraryKey{
		Name:         req.Name,
		MajorVersion: req.MajorVersion,
		MinorVersion: req.MinorVersion,
	}
	if err := h.storage.SaveLibrary(r.Context(), req.SourceDir, lib); err != nil {
		h.renderStorageError(w, r, "save library", err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, map[string]string{"path": h.storage.LibraryPath(lib)})
}

func (h *StorageHandler) DeleteLibrary(w http.ResponseWriter, r *http.Request) {
	lib, ok := h.libraryKeyFromURL(w, r)
	if !ok {
		return
	}

	if err := h.storage.DeleteLibrary(r.Context(), lib); err != nil {
		h.renderStorageError(w, r, "delete library", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ExportTargetRequest names the directory an export lands in.
type ExportTargetRequest struct {
	TargetDir string `json:"target_dir"`
}

func (h *StorageHandler) ExportLibrary(w http.ResponseWriter, r *http.Request) {
	lib, ok := h.libraryKeyFromURL(w, r)
	if !ok {
		return
	}

	var req ExportTargetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.storage.ExportLibrary(r.Context(), lib, req.TargetDir); err != nil {
		h.renderStorageError(w, r, "export library", err)
		return
	}
	render.JSON(w, r, map[string]string{"target_dir": req.TargetDir})
}

// SaveContentRequest is the request body for saving a content instance.
type SaveContentRequest struct {
	SourceDir string `json:"source_dir"`
}

func (h *StorageHandler) SaveContent(w http.ResponseWriter, r *http.Request) {
	var req SaveContentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.storage.SaveContent(r.Context(), req.SourceDir, id); err != nil {
		h.renderStorageError(w, r, "save content", err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, map[string]string{"path": h.storage.ContentPath(id)})
}

func (h *StorageHandler) DeleteContent(w http.ResponseWriter, r *http.Request) {
	if err := h.storage.DeleteContent(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.renderStorageError(w, r, "delete content", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CloneContentRequest is the request body for cloning a content instance.
type CloneContentRequest struct {
	NewID string `json:"new_id"`
}

func (h *StorageHandler) CloneContent(w http.ResponseWriter, r *http.Request) {
	var req CloneContentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.storage.CloneContent(r.Context(), chi.URLParam(r, "id"), req.NewID); err != nil {
		h.renderStorageError(w, r, "clone content", err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, map[string]string{"path": h.storage.ContentPath(req.NewID)})
}

func (h *StorageHandler) ExportContent(w http.ResponseWriter, r *http.Request) {
	var req ExportTargetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.storage.ExportContent(r.Context(), chi.URLParam(r, "id"), req.TargetDir); err != nil {
		h.renderStorageError(w, r, "export content", err)
		return
	}
	render.JSON(w, r, map[string]string{"target_dir": req.TargetDir})
}

// SaveExportRequest is the request body for storing an export artifact.
type SaveExportRequest struct {
	SourceFile string `json:"source_file"`
	Filename   string `json:"filename"`
}

func (h *StorageHandler) SaveExport(w http.ResponseWriter, r *http.Request) {
	var req SaveExportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	// Export filenames often come from user-facing titles; fold them into
	// a storable form instead of rejecting them outright.
	filename := packstore.SanitizeExportFilename(req.Filename)
	if err := h.storage.SaveExport(r.Context(), req.SourceFile, filename); err != nil {
		h.renderStorageError(w, r, "save export", err)
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, map[string]string{"filename": filename})
}

func (h *StorageHandler) HasExport(w http.ResponseWriter, r *http.Request) {
	filename := chi.URLParam(r, "filename")
	if !h.storage.HasExport(r.Context(), filename) {
		http.Error(w, "Export not found", http.StatusNotFound)
		return
	}
	render.JSON(w, r, map[string]string{"filename": filename})
}

func (h *StorageHandler) DeleteExport(w http.ResponseWriter, r *http.Request) {
	if err := h.storage.DeleteExport(r.Context(), chi.URLParam(r, "filename")); err != nil {
		h.renderStorageError(w, r, "delete export", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CacheAssetsResponse carries the aggregate entry plus the rewritten bundle.
type CacheAssetsResponse struct {
	Set    *packstore.CachedAssetSet `json:"set"`
	Bundle packstore.AssetBundle     `json:"bundle"`
}

func (h *StorageHandler) CacheAssets(w http.ResponseWriter, r *http.Request) {
	var bundle packstore.AssetBundle
	if err := json.NewDecoder(r.Body).Decode(&bundle); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	key := chi.URLParam(r, "key")
	set, err := h.storage.CacheAssets(r.Context(), &bundle, key)
	if err != nil {
		h.renderStorageError(w, r, "cache assets", err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, CacheAssetsResponse{Set: set, Bundle: bundle})
}

func (h *StorageHandler) GetCachedAssets(w http.ResponseWriter, r *http.Request) {
	set := h.storage.GetCachedAssets(r.Context(), chi.URLParam(r, "key"))
	if set == nil {
		http.Error(w, "Cache miss", http.StatusNotFound)
		return
	}
	render.JSON(w, r, set)
}

// DeleteCachedAssetsRequest lists the fingerprints to invalidate.
type DeleteCachedAssetsRequest struct {
	Keys []string `json:"keys"`
}

func (h *StorageHandler) DeleteCachedAssets(w http.ResponseWriter, r *http.Request) {
	var req DeleteCachedAssetsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.storage.DeleteCachedAssets(r.Context(), req.Keys...); err != nil {
		h.renderStorageError(w, r, "delete cached assets", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *StorageHandler) TempPath(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]string{"path": h.storage.TempPath()})
}

func (h *StorageHandler) libraryKeyFromURL(w http.ResponseWriter, r *http.Request) (packstore.LibraryKey, bool) {
	major, err := strconv.Atoi(chi.URLParam(r, "major"))
	if err != nil {
		http.Error(w, "Invalid major version", http.StatusBadRequest)
		return packstore.LibraryKey{}, false
	}
	minor, err := strconv.Atoi(chi.URLParam(r, "minor"))
	if err != nil {
		http.Error(w, "Invalid minor version", http.StatusBadRequest)
		return packstore.LibraryKey{}, false
	}
	return packstore.LibraryKey{
		Name:         chi.URLParam(r, "name"),
		MajorVersion: major,
		MinorVersion: minor,
	}, true
}

func (h *StorageHandler) renderStorageError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, packstore.ErrCopyFailed), errors.Is(err, packstore.ErrDirectoryUnavailable):
		h.logger.Error("storage operation failed", "op", op, "error", err)
		http.Error(w, "Storage operation failed", http.StatusInternalServerError)
	default:
		h.logger.Warn("rejected storage request", "op", op, "error", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
	}
}
