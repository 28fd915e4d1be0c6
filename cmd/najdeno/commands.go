package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/dustin/go-humanize"

	"github.com/erazemk/najdeno/internal/board"
	"github.com/erazemk/najdeno/internal/matching"
	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/store"
)

// addUser creates an account with a generated password and prints it.
func addUser(database *sql.DB, w io.Writer, username, role string) error {
	password, err := createAccount(database, username, role)
	if err != nil {
		return fmt.Errorf("adding %s: %w", username, err)
	}

	slog.Info("user created", "user", username, "role", role)
	fmt.Fprintf(w, "Username: %s\nRole:     %s\nPassword: %s\n", username, role, password)
	return nil
}

// exportBoard writes the board JSON to path, or to w when path is empty.
func exportBoard(database *sql.DB, w io.Writer, path string) error {
	b, err := store.Export(context.Background(), database)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding board: %w", err)
	}
	data = append(data, '\n')

	if path == "" {
		_, err := w.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing export: %w", err)
	}

	slog.Info("board exported", "path", path, "lost", len(b.LostItems), "found", len(b.FoundItems),
		"size", humanize.Bytes(uint64(len(data))))
	return nil
}

// importBoard merges a board JSON file into the database.
func importBoard(database *sql.DB, w io.Writer, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading import: %w", err)
	}

	var b model.Board
	if err := json.Unmarshal(data, &b); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}

	res, err := store.Import(context.Background(), database, &b)
	if err != nil {
		return err
	}

	slog.Info("board imported", "path", path, "imported", res.Imported, "skipped", res.Skipped)
	fmt.Fprintf(w, "Imported %d reports, skipped %d already present.\n", res.Imported, res.Skipped)
	return nil
}

// printMatches prints every potential match, strongest first.
func printMatches(database *sql.DB, w io.Writer, policy matching.Policy) error {
	matches, err := board.Matches(context.Background(), database, policy)
	if err != nil {
		return err
	}

	if len(matches) == 0 {
		fmt.Fprintln(w, "No potential matches.")
		return nil
	}

	for _, m := range matches {
		fmt.Fprintf(w, "%3d%%  lost %q (%s, %s)  <->  found %q (%s, %s)\n",
			m.Percent(),
			m.Lost.Name, m.Lost.Location, m.Lost.Date,
			m.Found.Name, m.Found.Location, m.Found.Date)
	}
	fmt.Fprintf(w, "%s potential %s.\n", humanize.Comma(int64(len(matches))), plural(len(matches), "match", "matches"))
	return nil
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
