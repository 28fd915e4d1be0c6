package web

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/erazemk/najdeno/internal/auth"
	"github.com/erazemk/najdeno/internal/db"
	"github.com/erazemk/najdeno/internal/imaging"
	"github.com/erazemk/najdeno/internal/matching"
	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/store"
)

type webEnv struct {
	handler http.Handler
	db      *sql.DB
	signer  *auth.Signer
}

func setupWeb(t *testing.T) *webEnv {
	t.Helper()
	database := db.NewTestDB(t)
	signer := auth.NewSigner("web-test-secret", 0)
	handler, err := NewRouter(database, signer, matching.DefaultPolicy(), imaging.NewProcessor(0, 0))
	if err != nil {
		t.Fatalf("NewRouter: %v", err)
	}
	return &webEnv{handler: handler, db: database, signer: signer}
}

func (e *webEnv) session(t *testing.T, username, role string) *http.Cookie {
	t.Helper()
	hash, _ := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.MinCost)
	user, err := store.CreateUser(context.Background(), e.db, username, string(hash), role)
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	token, err := e.signer.Issue(user.ID, user.Username, user.Role)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	return &http.Cookie{Name: cookieName, Value: token}
}

func (e *webEnv) serve(req *http.Request, cookie *http.Cookie) *httptest.ResponseRecorder {
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func postForm(path string, form url.Values) *http.Request {
	req := httptest.NewRequest("POST", path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestBoardRequiresLogin(t *testing.T) {
	env := setupWeb(t)

	rec := env.serve(httptest.NewRequest("GET", "/", nil), nil)
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/login" {
		t.Errorf("expected redirect to /login, got %d %q", rec.Code, rec.Header().Get("Location"))
	}
}

func TestLoginSetsCookie(t *testing.T) {
	env := setupWeb(t)
	env.session(t, "admin", model.RoleAdmin)

	rec := env.serve(postForm("/login", url.Values{"username": {"admin"}, "password": {"password"}}), nil)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect after login, got %d", rec.Code)
	}
	var found bool
	for _, c := range rec.Result().Cookies() {
		if c.Name == cookieName && c.Value != "" {
			found = true
		}
	}
	if !found {
		t.Error("expected session cookie")
	}

	rec = env.serve(postForm("/login", url.Values{"username": {"admin"}, "password": {"nope"}}), nil)
	if !strings.Contains(rec.Body.String(), "Wrong username or password.") {
		t.Error("expected login error message")
	}
}

func TestBoardShowsReportsAndMatches(t *testing.T) {
	env := setupWeb(t)
	cookie := env.session(t, "admin", model.RoleAdmin)

	reports := []url.Values{
		{"kind": {"lost"}, "name": {"Blue Backpack"}, "desc": {"has laptop"}, "date": {"2024-01-01"}, "location": {"Library"}},
		{"kind": {"found"}, "name": {"Blue Backpack"}, "date": {"2024-01-02"}, "location": {"Library"}},
		{"kind": {"found"}, "name": {"Green Umbrella"}, "date": {"2024-01-03"}, "location": {"Park"}},
	}
	for _, form := range reports {
		rec := env.serve(postForm("/items", form), cookie)
		if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/" {
			t.Fatalf("expected redirect to board, got %d %q", rec.Code, rec.Header().Get("Location"))
		}
	}

	rec := env.serve(httptest.NewRequest("GET", "/", nil), cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{"Blue Backpack", "Green Umbrella", "Match strength: 70%", "has laptop"} {
		if !strings.Contains(body, want) {
			t.Errorf("board missing %q", want)
		}
	}

	// Search narrows the lists but not the matches.
	rec = env.serve(httptest.NewRequest("GET", "/?q=umbrella", nil), cookie)
	body = rec.Body.String()
	if !strings.Contains(body, "No lost items match your search.") {
		t.Error("search should hide non-matching lost reports")
	}
	if !strings.Contains(body, "Match strength: 70%") {
		t.Error("matches should ignore the search")
	}

	// The lost view hides the matches panel.
	rec = env.serve(httptest.NewRequest("GET", "/?view=lost", nil), cookie)
	if strings.Contains(rec.Body.String(), "Match strength") {
		t.Error("lost view should not show matches")
	}
}

func TestCreateInvalidRedirectsWithError(t *testing.T) {
	env := setupWeb(t)
	cookie := env.session(t, "admin", model.RoleAdmin)

	rec := env.serve(postForm("/items", url.Values{"kind": {"lost"}, "name": {"Keys"}}), cookie)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); !strings.HasPrefix(loc, "/?error=") {
		t.Errorf("expected error redirect, got %q", loc)
	}

	lost, _, _ := store.CountItems(context.Background(), env.db)
	if lost != 0 {
		t.Errorf("expected no items stored, got %d", lost)
	}
}

func TestDeleteRequiresAdmin(t *testing.T) {
	env := setupWeb(t)
	admin := env.session(t, "admin", model.RoleAdmin)
	user := env.session(t, "volunteer", model.RoleUser)

	item, err := store.CreateItem(context.Background(), env.db, model.NewItemInput{
		Kind: model.KindFound, Name: "Keys", Date: "2024-01-01", Location: "Gym",
	})
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}
	path := "/items/found/" + item.ID + "/delete"

	rec := env.serve(postForm(path, nil), user)
	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403 for user, got %d", rec.Code)
	}

	rec = env.serve(postForm("/items/lost/"+item.ID+"/delete", nil), admin)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for wrong collection, got %d", rec.Code)
	}

	rec = env.serve(postForm(path, nil), admin)
	if rec.Code != http.StatusSeeOther {
		t.Errorf("expected redirect after delete, got %d", rec.Code)
	}

	_, found, _ := store.CountItems(context.Background(), env.db)
	if found != 0 {
		t.Errorf("expected found collection empty, got %d", found)
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	env := setupWeb(t)
	cookie := env.session(t, "admin", model.RoleAdmin)

	rec := env.serve(postForm("/logout", nil), cookie)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect, got %d", rec.Code)
	}

	rec = env.serve(httptest.NewRequest("GET", "/", nil), cookie)
	if rec.Header().Get("Location") != "/login" {
		t.Errorf("expected revoked session to be sent to login, got %d %q", rec.Code, rec.Header().Get("Location"))
	}
}

func TestSettingsChangesPassword(t *testing.T) {
	env := setupWeb(t)
	cookie := env.session(t, "admin", model.RoleAdmin)

	rec := env.serve(postForm("/settings", url.Values{"current_password": {"password"}, "new_password": {"short"}}), cookie)
	if !strings.Contains(rec.Body.String(), "at least 8 characters") {
		t.Error("expected short password to be rejected")
	}

	rec = env.serve(postForm("/settings", url.Values{"current_password": {"wrong-one"}, "new_password": {"new-password"}}), cookie)
	if !strings.Contains(rec.Body.String(), "current password is incorrect") {
		t.Error("expected wrong current password to be rejected")
	}

	rec = env.serve(postForm("/settings", url.Values{"current_password": {"password"}, "new_password": {"new-password"}}), cookie)
	if !strings.Contains(rec.Body.String(), "Password updated.") {
		t.Fatal("expected password change to succeed")
	}

	user, _ := store.GetUserByUsername(context.Background(), env.db, "admin")
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("new-password")); err != nil {
		t.Error("expected stored hash to match the new password")
	}
}
