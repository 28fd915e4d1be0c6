package web

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"time"

	"github.com/erazemk/najdeno/internal/board"
	"github.com/erazemk/najdeno/internal/imaging"
	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/store"
)

// Board views.
const (
	ViewAll     = "all"
	ViewLost    = "lost"
	ViewFound   = "found"
	ViewMatches = "matches"
)

var views = []string{ViewAll, ViewLost, ViewFound, ViewMatches}

type boardPage struct {
	PageData
	View       string
	Views      []string
	Search     string
	Today      string
	IsAdmin    bool
	Lost       []model.Item
	Found      []model.Item
	LostCount  int
	FoundCount int
	Matches    []model.Match

	ShowLost    bool
	ShowFound   bool
	ShowMatches bool
}

// BoardPage handles GET /. The search narrows the two lists only; matches
// are always computed over the full board.
func (s *Server) BoardPage(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
	ctx := r.Context()

	view := r.URL.Query().Get("view")
	if !slices.Contains(views, view) {
		view = ViewAll
	}
	search := r.URL.Query().Get("q")

	page := &boardPage{
		PageData:    PageData{Title: "Board", User: claims, Error: r.URL.Query().Get("error")},
		View:        view,
		Views:       views,
		Search:      search,
		Today:       time.Now().Format(model.DateLayout),
		IsAdmin:     model.RoleAtLeast(claims.Role, model.RoleAdmin),
		ShowLost:    view == ViewAll || view == ViewLost,
		ShowFound:   view == ViewAll || view == ViewFound,
		ShowMatches: view == ViewAll || view == ViewMatches,
	}

	var err error
	if page.Lost, err = store.ListItems(ctx, s.DB, model.KindLost, search); err != nil {
		slog.Error("failed to list lost items", "error", err)
	}
	if page.Found, err = store.ListItems(ctx, s.DB, model.KindFound, search); err != nil {
		slog.Error("failed to list found items", "error", err)
	}
	if page.LostCount, page.FoundCount, err = store.CountItems(ctx, s.DB); err != nil {
		slog.Error("failed to count items", "error", err)
	}
	if page.Matches, err = board.Matches(ctx, s.DB, s.Policy); err != nil {
		slog.Error("failed to find matches", "error", err)
	}

	s.Templates.Render(w, "board.html", page)
}

// ItemCreateSubmit handles POST /items.
func (s *Server) ItemCreateSubmit(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())

	item, err := store.CreateItem(r.Context(), s.DB, model.NewItemInput{
		Kind:        r.FormValue("kind"),
		Name:        r.FormValue("name"),
		Description: r.FormValue("desc"),
		Date:        r.FormValue("date"),
		Location:    r.FormValue("location"),
	})
	if errors.Is(err, model.ErrInvalidItem) {
		redirectWithError(w, r, "Please fill in all required fields (type, name, date, location).")
		return
	}
	if err != nil {
		slog.Error("failed to create item", "error", err)
		http.Error(w, "failed to save item", http.StatusInternalServerError)
		return
	}

	slog.Info("item reported", "user", claims.Username, "kind", item.Kind, "id", item.ID, "name", item.Name)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// ItemDeleteSubmit handles POST /items/{kind}/{id}/delete.
func (s *Server) ItemDeleteSubmit(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
	if !model.RoleAtLeast(claims.Role, model.RoleAdmin) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	kind, id := r.PathValue("kind"), r.PathValue("id")
	if !model.ValidKind(kind) {
		http.NotFound(w, r)
		return
	}

	err := store.DeleteItem(r.Context(), s.DB, kind, id)
	if errors.Is(err, store.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		slog.Error("failed to delete item", "error", err)
		http.Error(w, "failed to remove item", http.StatusInternalServerError)
		return
	}

	slog.Info("item removed", "user", claims.Username, "kind", kind, "id", id)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// ItemPhotoSubmit handles POST /items/{kind}/{id}/photo.
func (s *Server) ItemPhotoSubmit(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
	kind, id := r.PathValue("kind"), r.PathValue("id")
	if !model.ValidKind(kind) {
		http.NotFound(w, r)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, imaging.MaxUploadSize)
	if err := r.ParseMultipartForm(imaging.MaxUploadSize); err != nil {
		redirectWithError(w, r, "The photo is too large.")
		return
	}

	file, _, err := r.FormFile("photo")
	if err != nil {
		redirectWithError(w, r, "Choose a photo to upload.")
		return
	}
	defer file.Close()

	photo, err := s.Photos.Process(file)
	if err != nil {
		redirectWithError(w, r, "Only JPEG and PNG photos are accepted.")
		return
	}

	err = store.SetItemPhoto(r.Context(), s.DB, kind, id, photo.Data, photo.MIME)
	if errors.Is(err, store.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		slog.Error("failed to save photo", "error", err)
		http.Error(w, "failed to save photo", http.StatusInternalServerError)
		return
	}

	slog.Info("item photo uploaded", "user", claims.Username, "kind", kind, "id", id)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// ItemPhotoGet handles GET /items/{kind}/{id}/photo.
func (s *Server) ItemPhotoGet(w http.ResponseWriter, r *http.Request) {
	kind, id := r.PathValue("kind"), r.PathValue("id")

	data, mime, err := store.GetItemPhoto(r.Context(), s.DB, kind, id)
	if err != nil {
		slog.Error("failed to get photo", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if data == nil {
		http.NotFound(w, r)
		return
	}

	etag := imaging.ETag(data)
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "private, max-age=3600")
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", mime)
	w.Header().Set("Content-Disposition", "inline")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	if _, err := w.Write(data); err != nil {
		slog.Error("failed to write photo response", "error", err)
	}
}

func redirectWithError(w http.ResponseWriter, r *http.Request, msg string) {
	http.Redirect(w, r, "/?error="+url.QueryEscape(msg), http.StatusSeeOther)
}
