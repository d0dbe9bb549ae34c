package csvimport

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/labsys/chemstock/internal/db"
	"github.com/labsys/chemstock/internal/store"
)

func TestImport(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	csv := `Name,Amount,Unit,Location,Notes
Ethanol,2.5,L,Flammables Cabinet,96%
Sodium chloride,500,g,Shelf A,
Acetone,1,L,Flammables Cabinet,
`
	result, err := Import(ctx, database, strings.NewReader(csv))
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if result.Imported != 3 {
		t.Errorf("expected 3 imported, got %d", result.Imported)
	}
	if len(result.Errors) != 0 {
		t.Errorf("unexpected row errors: %v", result.Errors)
	}

	chems, _ := store.ListChemicals(ctx, database, "")
	if len(chems) != 3 {
		t.Fatalf("expected 3 chemicals, got %d", len(chems))
	}
	if chems[1].Name != "Ethanol" || chems[1].Amount != 2.5 || chems[1].Notes != "96%" {
		t.Errorf("unexpected record: %+v", chems[1])
	}
}

func TestImportConverges(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	csv := "Name,Amount,Unit,Location\nEthanol,2.5,L,Cabinet\n"

	Import(ctx, database, strings.NewReader(csv))
	Import(ctx, database, strings.NewReader(csv))

	chems, _ := store.ListChemicals(ctx, database, "")
	if len(chems) != 1 {
		t.Errorf("re-import duplicated rows: got %d records", len(chems))
	}
}

func TestImportHeaderCaseInsensitive(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	csv := "name, AMOUNT ,Unit,location\nEthanol,1,L,Cabinet\n"
	result, err := Import(ctx, database, strings.NewReader(csv))
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if result.Imported != 1 {
		t.Errorf("expected 1 imported, got %d", result.Imported)
	}
}

func TestImportBadHeader(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	_, err := Import(ctx, database, strings.NewReader("Name,Quantity\nEthanol,1\n"))
	if !errors.Is(err, ErrBadHeader) {
		t.Errorf("expected ErrBadHeader, got %v", err)
	}
}

func TestImportCollectsRowErrors(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	csv := `Name,Amount,Unit,Location
Ethanol,2.5,L,Cabinet
Acetone,not-a-number,L,Cabinet
,1,g,Shelf
Methanol,3,L,Cabinet
`
	result, err := Import(ctx, database, strings.NewReader(csv))
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if result.Imported != 2 {
		t.Errorf("expected 2 imported, got %d", result.Imported)
	}
	if len(result.Errors) != 2 {
		t.Fatalf("expected 2 row errors, got %v", result.Errors)
	}
	if !strings.Contains(result.Errors[0], "line 3") {
		t.Errorf("expected line number in error, got %q", result.Errors[0])
	}

	// Good rows still landed.
	chems, _ := store.ListChemicals(ctx, database, "")
	if len(chems) != 2 {
		t.Errorf("expected 2 chemicals, got %d", len(chems))
	}
}
