package main

import (
	"context"
	"crypto/rand"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/klauspost/compress/gzhttp"
	"golang.org/x/crypto/bcrypt"

	"github.com/erazemk/najdeno/internal/api"
	"github.com/erazemk/najdeno/internal/auth"
	"github.com/erazemk/najdeno/internal/config"
	"github.com/erazemk/najdeno/internal/db"
	"github.com/erazemk/najdeno/internal/imaging"
	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/store"
	"github.com/erazemk/najdeno/internal/web"
)

// openDatabase opens the database at path, creating it together with an
// admin account if it does not exist yet, and brings the schema up to date.
// The generated password is written to w.
func openDatabase(path, adminUser string, w io.Writer) (*sql.DB, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		password, err := initDatabase(path, adminUser)
		if err != nil {
			return nil, fmt.Errorf("initializing database: %w", err)
		}
		printInitResult(w, path, adminUser, password)
	}

	database, err := db.Open(path)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(database); err != nil {
		database.Close()
		return nil, fmt.Errorf("migrating database: %w", err)
	}

	slog.Info("database ready", "path", path)
	return database, nil
}

// initDatabase creates a new database with the schema and an admin account,
// and returns the admin's generated password. A half-created file is removed.
func initDatabase(path, adminUsername string) (string, error) {
	database, err := db.Open(path)
	if err != nil {
		return "", err
	}
	defer database.Close()

	password, err := createAccount(database, adminUsername, model.RoleAdmin)
	if err == nil {
		err = db.Migrate(database)
	}
	if err != nil {
		database.Close()
		os.Remove(path)
		return "", err
	}
	return password, nil
}

// createAccount ensures the schema exists and creates a user with a
// generated password.
func createAccount(database *sql.DB, username, role string) (string, error) {
	if err := db.EnsureSchema(database); err != nil {
		return "", err
	}

	password, err := generatePassword(16)
	if err != nil {
		return "", fmt.Errorf("generating password: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	if _, err := store.CreateUser(context.Background(), database, username, string(hash), role); err != nil {
		return "", err
	}
	return password, nil
}

// printInitResult reports the first-run admin account.
func printInitResult(w io.Writer, dbPath, username, password string) {
	fmt.Fprintf(w, `Database created: %s

Admin account created:
  Username: %s
  Password: %s

Save this password, it cannot be recovered.
The admin can change it after logging in.

`, dbPath, username, password)
}

// generatePassword creates a random password of the given length.
func generatePassword(length int) (string, error) {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%&*"
	result := make([]byte, length)
	for i := range result {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		result[i] = charset[n.Int64()]
	}
	return string(result), nil
}

// newHandler builds the combined API and web handler with access logging
// and response compression.
func newHandler(database *sql.DB, cfg *config.Config) (http.Handler, error) {
	secret, err := store.GetJWTSecret(context.Background(), database)
	if err != nil {
		return nil, fmt.Errorf("loading JWT secret: %w", err)
	}

	signer := auth.NewSigner(secret, time.Duration(cfg.Server.SessionTTL))
	photos := imaging.NewProcessor(cfg.Photos.MaxDimension, cfg.Photos.JPEGQuality)

	apiRouter := api.NewRouter(database, api.Options{
		Signer: signer,
		Policy: cfg.Match,
		Photos: photos,
	})
	webRouter, err := web.NewRouter(database, signer, cfg.Match, photos)
	if err != nil {
		return nil, fmt.Errorf("setting up web router: %w", err)
	}

	// API routes take priority, web routes handle the rest.
	mux := http.NewServeMux()
	mux.Handle("/api/", apiRouter)
	mux.Handle("/", webRouter)

	return api.LoggingMiddleware(gzhttp.GzipHandler(mux)), nil
}

func serve(database *sql.DB, cfg *config.Config) error {
	handler, err := newHandler(database, cfg)
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-quit
		slog.Info("shutdown signal received", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			slog.Error("server forced to shutdown", "error", err)
		}
	}()

	slog.Info("server started", "addr", cfg.Server.Addr,
		"threshold", cfg.Match.Threshold, "max_score", cfg.Match.MaxScore())
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}

	slog.Info("server stopped, closing database")
	return nil
}
