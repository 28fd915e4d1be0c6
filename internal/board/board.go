// Package board joins the record store with the matcher: it reads a
// snapshot of both collections and ranks the candidate pairs.
package board

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/najdeno/internal/matching"
	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/store"
)

// Summary holds the counts shown on the board badges.
type Summary struct {
	Lost    int `json:"lost"`
	Found   int `json:"found"`
	Matches int `json:"matches"`
}

// Matches ranks every lost report against every found report currently
// stored. Nothing is cached: each call rescans both collections.
func Matches(ctx context.Context, db *sql.DB, policy matching.Policy) ([]model.Match, error) {
	lost, found, err := store.Snapshot(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("finding matches: %w", err)
	}
	return matching.FindMatches(lost, found, policy), nil
}

// Summarize counts both collections and the current matches.
func Summarize(ctx context.Context, db *sql.DB, policy matching.Policy) (*Summary, error) {
	lost, found, err := store.Snapshot(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("summarizing board: %w", err)
	}
	return &Summary{
		Lost:    len(lost),
		Found:   len(found),
		Matches: len(matching.FindMatches(lost, found, policy)),
	}, nil
}
