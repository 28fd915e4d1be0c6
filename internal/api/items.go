package api

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"

	"github.com/erazemk/najdeno/internal/imaging"
	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/store"
)

// ItemsHandler serves one collection of reports, lost or found.
type ItemsHandler struct {
	DB     *sql.DB
	Kind   string
	Photos *imaging.Processor
}

type createItemRequest struct {
	Name        string `json:"name"`
	Description string `json:"desc"`
	Date        string `json:"date"`
	Location    string `json:"location"`
}

// List handles GET /api/{lost,found}?q=term.
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := store.ListItems(r.Context(), h.DB, h.Kind, r.URL.Query().Get("q"))
	if err != nil {
		slog.Error("failed to list items", "kind", h.Kind, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list items")
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// Create handles POST /api/{lost,found}.
func (h *ItemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createItemRequest
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	item, err := store.CreateItem(r.Context(), h.DB, model.NewItemInput{
		Kind:        h.Kind,
		Name:        req.Name,
		Description: req.Description,
		Date:        req.Date,
		Location:    req.Location,
	})
	if errors.Is(err, model.ErrInvalidItem) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		slog.Error("failed to create item", "kind", h.Kind, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create item")
		return
	}

	slog.Info("item reported", "user", userName(r), "kind", item.Kind, "id", item.ID, "name", item.Name)
	writeJSON(w, http.StatusCreated, item)
}

// Get handles GET /api/{lost,found}/{id}.
func (h *ItemsHandler) Get(w http.ResponseWriter, r *http.Request) {
	item, err := store.GetItem(r.Context(), h.DB, h.Kind, r.PathValue("id"))
	if err != nil {
		slog.Error("failed to get item", "kind", h.Kind, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get item")
		return
	}
	if item == nil {
		writeError(w, http.StatusNotFound, "item not found")
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// Delete handles DELETE /api/{lost,found}/{id}.
func (h *ItemsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	err := store.DeleteItem(r.Context(), h.DB, h.Kind, id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "item not found")
		return
	}
	if err != nil {
		slog.Error("failed to delete item", "kind", h.Kind, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete item")
		return
	}

	slog.Info("item removed", "user", userName(r), "kind", h.Kind, "id", id)
	writeJSON(w, http.StatusOK, map[string]string{"message": "item removed"})
}

// UploadPhoto handles PUT /api/{lost,found}/{id}/photo.
func (h *ItemsHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	r.Body = http.MaxBytesReader(w, r.Body, imaging.MaxUploadSize)
	if err := r.ParseMultipartForm(imaging.MaxUploadSize); err != nil {
		writeError(w, http.StatusBadRequest, "file too large or invalid multipart form")
		return
	}

	file, _, err := r.FormFile("photo")
	if err != nil {
		writeError(w, http.StatusBadRequest, "photo file required")
		return
	}
	defer file.Close()

	photo, err := h.Photos.Process(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	err = store.SetItemPhoto(r.Context(), h.DB, h.Kind, id, photo.Data, photo.MIME)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "item not found")
		return
	}
	if err != nil {
		slog.Error("failed to save photo", "kind", h.Kind, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save photo")
		return
	}

	slog.Info("item photo uploaded", "user", userName(r), "kind", h.Kind, "id", id, "width", photo.Width, "height", photo.Height)
	writeJSON(w, http.StatusOK, map[string]string{"message": "photo uploaded"})
}

// GetPhoto handles GET /api/{lost,found}/{id}/photo.
func (h *ItemsHandler) GetPhoto(w http.ResponseWriter, r *http.Request) {
	data, mime, err := store.GetItemPhoto(r.Context(), h.DB, h.Kind, r.PathValue("id"))
	if err != nil {
		slog.Error("failed to get photo", "kind", h.Kind, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get photo")
		return
	}
	if data == nil {
		writeError(w, http.StatusNotFound, "no photo")
		return
	}
	writePhoto(w, r, data, mime)
}

// writePhoto serves photo bytes with a content ETag so browsers can revalidate.
func writePhoto(w http.ResponseWriter, r *http.Request, data []byte, mime string) {
	etag := imaging.ETag(data)
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "private, max-age=3600")
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", mime)
	w.Header().Set("X-Content-Type-Options", "nosniff")
	if _, err := w.Write(data); err != nil {
		slog.Error("failed to write photo response", "error", err)
	}
}

func userName(r *http.Request) string {
	if claims := GetClaims(r.Context()); claims != nil {
		return claims.Username
	}
	return ""
}
