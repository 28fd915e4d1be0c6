package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/erazemk/najdeno/internal/model"
)

// ErrNotFound is returned when a mutation targets a report that does not exist.
var ErrNotFound = errors.New("not found")

const itemColumns = `id, kind, name, description, date, location, photo IS NOT NULL, created_at`

// NewItemID returns a fresh report id: a millisecond timestamp followed by
// random bits, so ids sort by creation time.
func NewItemID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generating item id: %w", err)
	}
	return id.String(), nil
}

// CreateItem validates and stores a new lost or found report.
func CreateItem(ctx context.Context, db *sql.DB, in model.NewItemInput) (*model.Item, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	id, err := NewItemID()
	if err != nil {
		return nil, err
	}

	_, err = db.ExecContext(ctx,
		`INSERT INTO items (kind, id, name, description, date, location) VALUES (?, ?, ?, ?, ?, ?)`,
		in.Kind, id, in.Name, in.Description, in.Date, in.Location,
	)
	if err != nil {
		return nil, fmt.Errorf("creating item: %w", err)
	}

	return GetItem(ctx, db, in.Kind, id)
}

// GetItem returns a report by kind and id, or nil if there is none.
func GetItem(ctx context.Context, db *sql.DB, kind, id string) (*model.Item, error) {
	item := &model.Item{}
	err := db.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM items WHERE kind = ? AND id = ?`, kind, id,
	).Scan(&item.ID, &item.Kind, &item.Name, &item.Description, &item.Date, &item.Location, &item.HasPhoto, &item.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}
	return item, nil
}

// ListItems returns the reports of one kind for display, newest date first.
// A non-empty search keeps only reports whose name, description or location
// contains it, ignoring case. The term is used as typed, surrounding spaces
// included.
func ListItems(ctx context.Context, db *sql.DB, kind, search string) ([]model.Item, error) {
	items, err := queryItems(ctx, db,
		`SELECT `+itemColumns+` FROM items WHERE kind = ? ORDER BY date DESC, seq`, kind,
	)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}

	term := strings.ToLower(search)
	if term == "" {
		return items, nil
	}

	filtered := items[:0]
	for _, it := range items {
		if matchesSearch(it, term) {
			filtered = append(filtered, it)
		}
	}
	return filtered, nil
}

// matchesSearch reports whether a lowercased term occurs in any text field.
func matchesSearch(it model.Item, term string) bool {
	return strings.Contains(strings.ToLower(it.Name), term) ||
		strings.Contains(strings.ToLower(it.Description), term) ||
		strings.Contains(strings.ToLower(it.Location), term)
}

// Snapshot returns both collections in the order the reports were filed.
// This is the input handed to the matcher. Both come from one statement, so
// a concurrent create or delete is either fully in the snapshot or not at all.
func Snapshot(ctx context.Context, db *sql.DB) (lost, found []model.Item, err error) {
	items, err := queryItems(ctx, db, `SELECT `+itemColumns+` FROM items ORDER BY seq`)
	if err != nil {
		return nil, nil, fmt.Errorf("reading board snapshot: %w", err)
	}

	lost, found = []model.Item{}, []model.Item{}
	for _, it := range items {
		switch it.Kind {
		case model.KindLost:
			lost = append(lost, it)
		case model.KindFound:
			found = append(found, it)
		}
	}
	return lost, found, nil
}

// CountItems returns the number of lost and found reports.
func CountItems(ctx context.Context, db *sql.DB) (lost, found int, err error) {
	err = db.QueryRowContext(ctx,
		`SELECT
		     COALESCE(SUM(kind = 'lost'), 0),
		     COALESCE(SUM(kind = 'found'), 0)
		 FROM items`,
	).Scan(&lost, &found)
	if err != nil {
		return 0, 0, fmt.Errorf("counting items: %w", err)
	}
	return lost, found, nil
}

// DeleteItem removes one report from the given collection. Reports with the
// same id in the other collection are not touched.
func DeleteItem(ctx context.Context, db *sql.DB, kind, id string) error {
	result, err := db.ExecContext(ctx,
		`DELETE FROM items WHERE kind = ? AND id = ?`, kind, id,
	)
	if err != nil {
		return fmt.Errorf("deleting item: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting item: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("deleting %s item %s: %w", kind, id, ErrNotFound)
	}
	return nil
}

// SetItemPhoto stores a processed photo for a report.
func SetItemPhoto(ctx context.Context, db *sql.DB, kind, id string, photo []byte, mime string) error {
	result, err := db.ExecContext(ctx,
		`UPDATE items SET photo = ?, photo_mime = ? WHERE kind = ? AND id = ?`,
		photo, mime, kind, id,
	)
	if err != nil {
		return fmt.Errorf("setting item photo: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("setting item photo: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("setting photo of %s item %s: %w", kind, id, ErrNotFound)
	}
	return nil
}

// GetItemPhoto returns a report's photo and its MIME type. A missing report
// or a report without a photo yields nil data.
func GetItemPhoto(ctx context.Context, db *sql.DB, kind, id string) ([]byte, string, error) {
	var photo []byte
	var mime sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT photo, photo_mime FROM items WHERE kind = ? AND id = ?`, kind, id,
	).Scan(&photo, &mime)
	if err == sql.ErrNoRows {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("getting item photo: %w", err)
	}
	return photo, mime.String, nil
}

func queryItems(ctx context.Context, db *sql.DB, query string, args ...any) ([]model.Item, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []model.Item{}
	for rows.Next() {
		var item model.Item
		if err := rows.Scan(&item.ID, &item.Kind, &item.Name, &item.Description, &item.Date, &item.Location, &item.HasPhoto, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
