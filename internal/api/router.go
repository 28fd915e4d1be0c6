package api

import (
	"database/sql"
	"net/http"

	"github.com/erazemk/najdeno/internal/auth"
	"github.com/erazemk/najdeno/internal/imaging"
	"github.com/erazemk/najdeno/internal/matching"
	"github.com/erazemk/najdeno/internal/model"
)

// Options carries the collaborators shared by all API handlers.
type Options struct {
	Signer *auth.Signer
	Policy matching.Policy
	Photos *imaging.Processor
}

// NewRouter creates the API router with all endpoints registered.
func NewRouter(db *sql.DB, opts Options) http.Handler {
	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: db, Signer: opts.Signer}
	matchesHandler := &MatchesHandler{DB: db, Policy: opts.Policy}

	authMW := AuthMiddleware(opts.Signer, db)
	requireAdmin := RequireRole(model.RoleAdmin)

	// Public: login.
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)

	// Authenticated routes.
	mux.Handle("POST /api/auth/logout", authMW(http.HandlerFunc(authHandler.Logout)))
	mux.Handle("PUT /api/auth/password", authMW(http.HandlerFunc(authHandler.ChangePassword)))

	// Reports: file and read (all roles), remove (admin).
	for _, kind := range []string{model.KindLost, model.KindFound} {
		h := &ItemsHandler{DB: db, Kind: kind, Photos: opts.Photos}
		base := "/api/" + kind

		mux.Handle("GET "+base, authMW(http.HandlerFunc(h.List)))
		mux.Handle("POST "+base, authMW(http.HandlerFunc(h.Create)))
		mux.Handle("GET "+base+"/{id}", authMW(http.HandlerFunc(h.Get)))
		mux.Handle("DELETE "+base+"/{id}", authMW(requireAdmin(http.HandlerFunc(h.Delete))))
		mux.Handle("PUT "+base+"/{id}/photo", authMW(http.HandlerFunc(h.UploadPhoto)))
		mux.Handle("GET "+base+"/{id}/photo", authMW(http.HandlerFunc(h.GetPhoto)))
	}

	// Matches and board-wide views.
	mux.Handle("GET /api/matches", authMW(http.HandlerFunc(matchesHandler.List)))
	mux.Handle("GET /api/summary", authMW(http.HandlerFunc(matchesHandler.Summary)))
	mux.Handle("GET /api/export", authMW(http.HandlerFunc(matchesHandler.Export)))
	mux.Handle("POST /api/import", authMW(requireAdmin(http.HandlerFunc(matchesHandler.Import))))

	return mux
}
