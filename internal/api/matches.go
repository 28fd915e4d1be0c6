package api

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"

	"github.com/erazemk/najdeno/internal/board"
	"github.com/erazemk/najdeno/internal/matching"
	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/store"
)

// MatchesHandler serves the ranked candidate matches and board-wide data.
type MatchesHandler struct {
	DB     *sql.DB
	Policy matching.Policy
}

type matchesResponse struct {
	Count     int           `json:"count"`
	Threshold float64       `json:"threshold"`
	MaxScore  float64       `json:"max_score"`
	Matches   []model.Match `json:"matches"`
}

// List handles GET /api/matches.
func (h *MatchesHandler) List(w http.ResponseWriter, r *http.Request) {
	matches, err := board.Matches(r.Context(), h.DB, h.Policy)
	if err != nil {
		slog.Error("failed to find matches", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to find matches")
		return
	}

	writeJSON(w, http.StatusOK, matchesResponse{
		Count:     len(matches),
		Threshold: h.Policy.Threshold,
		MaxScore:  h.Policy.MaxScore(),
		Matches:   matches,
	})
}

// Summary handles GET /api/summary.
func (h *MatchesHandler) Summary(w http.ResponseWriter, r *http.Request) {
	sum, err := board.Summarize(r.Context(), h.DB, h.Policy)
	if err != nil {
		slog.Error("failed to summarize board", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to summarize board")
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

// Export handles GET /api/export.
func (h *MatchesHandler) Export(w http.ResponseWriter, r *http.Request) {
	b, err := store.Export(r.Context(), h.DB)
	if err != nil {
		slog.Error("failed to export board", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to export board")
		return
	}
	w.Header().Set("Content-Disposition", `attachment; filename="najdeno-board.json"`)
	writeJSON(w, http.StatusOK, b)
}

// Import handles POST /api/import.
func (h *MatchesHandler) Import(w http.ResponseWriter, r *http.Request) {
	var b model.Board
	if err := readJSON(w, r, &b); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := store.Import(r.Context(), h.DB, &b)
	if errors.Is(err, model.ErrInvalidItem) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		slog.Error("failed to import board", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to import board")
		return
	}

	slog.Info("board imported", "user", userName(r), "imported", res.Imported, "skipped", res.Skipped)
	writeJSON(w, http.StatusOK, res)
}
