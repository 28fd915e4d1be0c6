package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/erazemk/najdeno/internal/config"
	"github.com/erazemk/najdeno/internal/db"
	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/store"
)

func TestGeneratePassword(t *testing.T) {
	a, err := generatePassword(16)
	if err != nil {
		t.Fatalf("generatePassword: %v", err)
	}
	if len(a) != 16 {
		t.Errorf("expected 16 characters, got %d", len(a))
	}
	b, _ := generatePassword(16)
	if a == b {
		t.Error("expected two different passwords")
	}
	if err := model.ValidatePassword(a); err != nil {
		t.Errorf("generated password rejected: %v", err)
	}
}

func TestLoadConfigFlagsOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "najdeno.yaml")
	if err := os.WriteFile(path, []byte("server:\n  addr: \":9000\"\n  db: file.sqlite3\nmatch:\n  threshold: 0.5\n"), 0644); err != nil {
		t.Fatal(err)
	}

	var opts options
	fs := newFlagSet(&opts)
	if err := fs.Parse([]string{"--config", path, "-d", "flag.sqlite3", "match"}); err != nil {
		t.Fatalf("Parse: %v", err)
	}

	cfg, err := loadConfig(fs, &opts)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Server.DB != "flag.sqlite3" {
		t.Errorf("expected flag to override db, got %q", cfg.Server.DB)
	}
	if cfg.Server.Addr != ":9000" {
		t.Errorf("expected addr from file, got %q", cfg.Server.Addr)
	}
	if cfg.Match.Threshold != 0.5 {
		t.Errorf("expected threshold from file, got %v", cfg.Match.Threshold)
	}
	if fs.Arg(0) != "match" {
		t.Errorf("expected command argument, got %v", fs.Args())
	}
}

func TestOpenDatabaseCreatesAdmin(t *testing.T) {
	path := filepath.Join(t.TempDir(), "najdeno.sqlite3")

	var banner bytes.Buffer
	database, err := openDatabase(path, "Admin", &banner)
	if err != nil {
		t.Fatalf("openDatabase: %v", err)
	}
	defer database.Close()

	if !strings.Contains(banner.String(), "Username: Admin") {
		t.Errorf("expected first-run banner, got %q", banner.String())
	}

	user, err := store.GetUserByUsername(context.Background(), database, "Admin")
	if err != nil || user == nil {
		t.Fatalf("expected admin account, got %v, %v", user, err)
	}
	if user.Role != model.RoleAdmin {
		t.Errorf("expected admin role, got %q", user.Role)
	}
}

func TestExportOnFreshDatabaseKeepsStdoutClean(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fresh.sqlite3")

	var stdout, stderr bytes.Buffer
	if err := run([]string{"--db", path, "export"}, &stdout, &stderr); err != nil {
		t.Fatalf("run export: %v", err)
	}

	var b model.Board
	if err := json.Unmarshal(stdout.Bytes(), &b); err != nil {
		t.Fatalf("export output is not board JSON: %v\n%s", err, stdout.String())
	}
	if len(b.LostItems) != 0 || len(b.FoundItems) != 0 {
		t.Errorf("expected an empty board, got %+v", b)
	}
	if !strings.Contains(stderr.String(), "Password: ") {
		t.Errorf("expected first-run banner on stderr, got %q", stderr.String())
	}
}

func TestAddUser(t *testing.T) {
	database := db.NewTestDB(t)
	var out bytes.Buffer

	if err := addUser(database, &out, "volunteer", model.RoleUser); err != nil {
		t.Fatalf("addUser: %v", err)
	}
	if !strings.Contains(out.String(), "Password: ") {
		t.Errorf("expected password in output, got %q", out.String())
	}

	if err := addUser(database, &out, "Volunteer", model.RoleUser); !errors.Is(err, store.ErrUserExists) {
		t.Errorf("expected duplicate user to fail with ErrUserExists, got %v", err)
	}
	if err := addUser(database, &out, "other", "owner"); !errors.Is(err, model.ErrInvalidUser) {
		t.Errorf("expected invalid role to fail with ErrInvalidUser, got %v", err)
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	src := db.NewTestDB(t)
	for _, in := range []model.NewItemInput{
		{Kind: model.KindLost, Name: "Blue Backpack", Date: "2024-01-01", Location: "Library"},
		{Kind: model.KindFound, Name: "Blue Backpack", Date: "2024-01-02", Location: "Library"},
	} {
		if _, err := store.CreateItem(ctx, src, in); err != nil {
			t.Fatalf("CreateItem: %v", err)
		}
	}

	path := filepath.Join(t.TempDir(), "board.json")
	if err := exportBoard(src, nil, path); err != nil {
		t.Fatalf("exportBoard: %v", err)
	}

	dst := db.NewTestDB(t)
	var out bytes.Buffer
	if err := importBoard(dst, &out, path); err != nil {
		t.Fatalf("importBoard: %v", err)
	}
	if !strings.Contains(out.String(), "Imported 2 reports, skipped 0") {
		t.Errorf("unexpected import output %q", out.String())
	}

	out.Reset()
	if err := importBoard(dst, &out, path); err != nil {
		t.Fatalf("second importBoard: %v", err)
	}
	if !strings.Contains(out.String(), "Imported 0 reports, skipped 2") {
		t.Errorf("expected re-import to skip everything, got %q", out.String())
	}

	out.Reset()
	if err := printMatches(dst, &out, config.Default().Match); err != nil {
		t.Fatalf("printMatches: %v", err)
	}
	if !strings.Contains(out.String(), " 70%") || !strings.Contains(out.String(), "1 potential match.") {
		t.Errorf("unexpected match output %q", out.String())
	}
}

func TestPrintMatchesEmpty(t *testing.T) {
	var out bytes.Buffer
	if err := printMatches(db.NewTestDB(t), &out, config.Default().Match); err != nil {
		t.Fatalf("printMatches: %v", err)
	}
	if out.String() != "No potential matches.\n" {
		t.Errorf("unexpected output %q", out.String())
	}
}

func TestHandlerServesBoardAndAPI(t *testing.T) {
	handler, err := newHandler(db.NewTestDB(t), config.Default())
	if err != nil {
		t.Fatalf("newHandler: %v", err)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/api/lost", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected API to require auth, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/login", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("expected login page, got %d", rec.Code)
	}
}
