package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/najdeno/internal/model"
)

// Export returns both collections in filing order.
func Export(ctx context.Context, db *sql.DB) (*model.Board, error) {
	lost, found, err := Snapshot(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("exporting board: %w", err)
	}

	board := &model.Board{
		LostItems:  make([]model.BoardRecord, 0, len(lost)),
		FoundItems: make([]model.BoardRecord, 0, len(found)),
	}
	for _, it := range lost {
		board.LostItems = append(board.LostItems, it.ToRecord())
	}
	for _, it := range found {
		board.FoundItems = append(board.FoundItems, it.ToRecord())
	}
	return board, nil
}

// Import adds every record of board in a single transaction. Records whose
// id already exists in their collection are skipped; a record missing a
// required field aborts the whole import.
func Import(ctx context.Context, db *sql.DB, board *model.Board) (*model.ImportResult, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("starting import: %w", err)
	}
	defer tx.Rollback()

	result := &model.ImportResult{}
	collections := []struct {
		kind    string
		records []model.BoardRecord
	}{
		{model.KindLost, board.LostItems},
		{model.KindFound, board.FoundItems},
	}

	for _, c := range collections {
		for i, rec := range c.records {
			in := model.NewItemInput{
				Kind:        c.kind,
				Name:        rec.Name,
				Description: rec.Desc,
				Date:        rec.Date,
				Location:    rec.Location,
			}
			if err := in.Validate(); err != nil {
				return nil, fmt.Errorf("%s item %d: %w", c.kind, i, err)
			}

			id := rec.ID
			if id == "" {
				if id, err = NewItemID(); err != nil {
					return nil, err
				}
			}

			res, err := tx.ExecContext(ctx,
				`INSERT OR IGNORE INTO items (kind, id, name, description, date, location) VALUES (?, ?, ?, ?, ?, ?)`,
				c.kind, id, in.Name, in.Description, in.Date, in.Location,
			)
			if err != nil {
				return nil, fmt.Errorf("importing %s item %s: %w", c.kind, id, err)
			}
			n, err := res.RowsAffected()
			if err != nil {
				return nil, fmt.Errorf("importing %s item %s: %w", c.kind, id, err)
			}
			if n == 0 {
				result.Skipped++
			} else {
				result.Imported++
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing import: %w", err)
	}
	return result, nil
}
