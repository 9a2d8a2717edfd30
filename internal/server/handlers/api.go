package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/3leaps/pagecrate/pkg/mirror"
	"github.com/3leaps/pagecrate/pkg/namespace"
	"github.com/3leaps/pagecrate/pkg/notion"
)

// API serves the JSON management endpoints.
type API struct {
	Mirror *mirror.Mirror
	Logger *zap.Logger
}

// FileView is the JSON projection of a file entry.
type FileView struct {
	ID           string    `json:"id"`
	Key          string    `json:"key"`
	Size         int64     `json:"size"`
	ETag         string    `json:"etag"`
	LastModified time.Time `json:"last_modified"`
	SourceURL    string    `json:"source_url"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// FolderView is the JSON projection of a folder entry.
type FolderView struct {
	ID           string    `json:"id"`
	Key          string    `json:"key"`
	LastModified time.Time `json:"last_modified"`
}

func fileView(obj namespace.ObjectSummary) FileView {
	return FileView{
		ID:           obj.EntityID,
		Key:          obj.Key,
		Size:         obj.Size,
		ETag:         obj.ETag,
		LastModified: obj.LastModified,
		SourceURL:    obj.SourceURL,
		ExpiresAt:    obj.ExpiresAt,
	}
}

func folderView(obj namespace.ObjectSummary) FolderView {
	return FolderView{
		ID:           obj.EntityID,
		Key:          obj.Key,
		LastModified: obj.LastModified,
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// SetRootID handles GET /api/notion/id?id=: validates the identifier
// against the upstream source and makes it the active crawl root.
func (h *API) SetRootID(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("id")
	if raw == "" {
		writeJSONError(w, http.StatusBadRequest, "missing id parameter")
		return
	}

	id, kind, err := h.Mirror.SetRoot(r.Context(), raw)
	if err != nil {
		if notion.IsUnresolvable(err) {
			writeJSONError(w, http.StatusBadRequest, "identifier could not be resolved")
			return
		}
		h.Logger.Error("failed to set root", zap.String("id", raw), zap.Error(err))
		writeJSONError(w, http.StatusBadGateway, "upstream error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"id":   id,
		"kind": kind.String(),
	})
}

// Refresh handles POST /api/refresh (and its GET alias): rebuilds the
// active root's snapshot.
func (h *API) Refresh(w http.ResponseWriter, r *http.Request) {
	snap, err := h.Mirror.Refresh(r.Context())
	if err != nil {
		if errors.Is(err, mirror.ErrNoActiveRoot) {
			writeJSONError(w, http.StatusBadRequest, "no active root identifier")
			return
		}
		h.Logger.Error("refresh failed", zap.Error(err))
		writeJSONError(w, http.StatusBadGateway, "refresh failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"root": snap.RootID(),
		"keys": snap.Len(),
	})
}

// ensure loads a fresh snapshot for read endpoints, falling back to
// the published one when no root is set.
func (h *API) ensure(r *http.Request) (*namespace.Snapshot, error) {
	snap, err := h.Mirror.Ensure(r.Context())
	if err == nil {
		return snap, nil
	}
	if errors.Is(err, mirror.ErrNoActiveRoot) {
		return h.Mirror.Snapshot(), nil
	}
	return nil, err
}

// Files handles GET /api/files.
func (h *API) Files(w http.ResponseWriter, r *http.Request) {
	snap, err := h.ensure(r)
	if err != nil {
		h.Logger.Error("failed to build namespace", zap.Error(err))
		writeJSONError(w, http.StatusBadGateway, "failed to build namespace")
		return
	}

	views := make([]FileView, 0)
	for _, obj := range snap.Files() {
		views = append(views, fileView(obj))
	}
	writeJSON(w, http.StatusOK, map[string]any{"files": views})
}

// Folders handles GET /api/folders.
func (h *API) Folders(w http.ResponseWriter, r *http.Request) {
	snap, err := h.ensure(r)
	if err != nil {
		h.Logger.Error("failed to build namespace", zap.Error(err))
		writeJSONError(w, http.StatusBadGateway, "failed to build namespace")
		return
	}

	views := make([]FolderView, 0)
	for _, obj := range snap.Folders() {
		views = append(views, folderView(obj))
	}
	writeJSON(w, http.StatusOK, map[string]any{"folders": views})
}

// FileByID handles GET /api/file/{id}.
func (h *API) FileByID(w http.ResponseWriter, r *http.Request) {
	h.byID(w, r, false)
}

// FolderByID handles GET /api/folder/{id}.
func (h *API) FolderByID(w http.ResponseWriter, r *http.Request) {
	h.byID(w, r, true)
}

func (h *API) byID(w http.ResponseWriter, r *http.Request, wantFolder bool) {
	raw := chi.URLParam(r, "id")
	id, err := notion.NormalizeID(raw)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "identifier could not be resolved")
		return
	}

	snap, err := h.ensure(r)
	if err != nil {
		h.Logger.Error("failed to build namespace", zap.Error(err))
		writeJSONError(w, http.StatusBadGateway, "failed to build namespace")
		return
	}

	obj, ok := snap.FindByEntityID(id)
	if !ok || obj.IsFolder != wantFolder {
		writeJSONError(w, http.StatusNotFound, "not found")
		return
	}

	if wantFolder {
		writeJSON(w, http.StatusOK, folderView(obj))
		return
	}
	writeJSON(w, http.StatusOK, fileView(obj))
}
