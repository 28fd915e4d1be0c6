package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// A session is a signed token; logging out remembers its id until the token
// would have expired anyway, after which signature verification rejects it
// on its own.

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// EndSession logs out the session with token id jti. Ending a session twice
// is not an error. Logouts of already expired tokens are forgotten in the
// same transaction.
func EndSession(ctx context.Context, db *sql.DB, jti string, expiresAt time.Time) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("ending session: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO ended_sessions (jti, expires_at) VALUES (?, ?)
		 ON CONFLICT (jti) DO NOTHING`,
		jti, expiresAt.Unix(),
	); err != nil {
		return fmt.Errorf("ending session: %w", err)
	}
	if _, err := pruneEndedSessions(ctx, tx, time.Now()); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("ending session: %w", err)
	}
	return nil
}

// SessionEnded reports whether the session with token id jti has logged out.
func SessionEnded(ctx context.Context, db *sql.DB, jti string) (bool, error) {
	var ended bool
	err := db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM ended_sessions WHERE jti = ?)`, jti,
	).Scan(&ended)
	if err != nil {
		return false, fmt.Errorf("checking session %s: %w", jti, err)
	}
	return ended, nil
}

// PruneEndedSessions forgets logouts of tokens that expired before now and
// returns how many were dropped.
func PruneEndedSessions(ctx context.Context, db *sql.DB, now time.Time) (int64, error) {
	return pruneEndedSessions(ctx, db, now)
}

func pruneEndedSessions(ctx context.Context, db execer, now time.Time) (int64, error) {
	result, err := db.ExecContext(ctx,
		`DELETE FROM ended_sessions WHERE expires_at < ?`, now.Unix(),
	)
	if err != nil {
		return 0, fmt.Errorf("pruning ended sessions: %w", err)
	}
	return result.RowsAffected()
}
