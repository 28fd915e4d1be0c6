package store

import (
	"context"
	"errors"
	"testing"

	"github.com/erazemk/najdeno/internal/db"
	"github.com/erazemk/najdeno/internal/model"
)

func TestImportAndExport(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	board := &model.Board{
		LostItems: []model.BoardRecord{
			{ID: "1704067200000-ab12", Name: "Blue Backpack", Desc: "has laptop", Date: "2024-01-01", Location: "Library"},
			{Name: "Scarf", Date: "2024-01-03", Location: "Hall"},
		},
		FoundItems: []model.BoardRecord{
			{ID: "1704067200000-ab12", Name: "Blue Backpack", Desc: "no description", Date: "2024-01-02", Location: "Library"},
		},
	}

	res, err := Import(ctx, database, board)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if res.Imported != 3 || res.Skipped != 0 {
		t.Errorf("expected 3 imported, 0 skipped, got %+v", res)
	}

	// Importing again skips records whose ids already exist.
	res, err = Import(ctx, database, &model.Board{LostItems: board.LostItems[:1]})
	if err != nil {
		t.Fatalf("second Import: %v", err)
	}
	if res.Imported != 0 || res.Skipped != 1 {
		t.Errorf("expected 0 imported, 1 skipped, got %+v", res)
	}

	out, err := Export(ctx, database)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if len(out.LostItems) != 2 || len(out.FoundItems) != 1 {
		t.Fatalf("unexpected export sizes: %d lost, %d found", len(out.LostItems), len(out.FoundItems))
	}
	if out.LostItems[0].ID != "1704067200000-ab12" {
		t.Errorf("expected imported id to be kept, got %q", out.LostItems[0].ID)
	}
	if out.LostItems[1].ID == "" {
		t.Error("expected id to be generated for record without one")
	}
	if out.LostItems[1].Desc != model.DefaultDescription {
		t.Errorf("expected default description, got %q", out.LostItems[1].Desc)
	}
}

func TestImportInvalidRecordRollsBack(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	board := &model.Board{
		LostItems: []model.BoardRecord{
			{Name: "Good", Date: "2024-01-01", Location: "Hall"},
			{Name: "No location", Date: "2024-01-01"},
		},
	}

	_, err := Import(ctx, database, board)
	if !errors.Is(err, model.ErrInvalidItem) {
		t.Fatalf("expected ErrInvalidItem, got %v", err)
	}

	nLost, _, _ := CountItems(ctx, database)
	if nLost != 0 {
		t.Errorf("expected rollback to leave no items, got %d", nLost)
	}
}
