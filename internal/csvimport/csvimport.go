// Package csvimport implements bulk inventory import from the CSV sheet
// format the lab already uses: Name,Amount,Unit,Location,Notes.
package csvimport

import (
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/labsys/chemstock/internal/store"
)

// Result reports the outcome of a bulk import.
type Result struct {
	Imported int      `json:"imported"`
	Errors   []string `json:"errors,omitempty"`
}

// ErrBadHeader means the CSV is missing required columns.
var ErrBadHeader = errors.New("CSV must contain columns: Name, Amount, Unit, Location")

// Import reads a CSV stream and feeds each row through the chemical upsert,
// so re-importing the same sheet converges instead of duplicating. Row-level
// problems are collected in the result; only header or storage failures abort.
func Import(ctx context.Context, db *sql.DB, r io.Reader) (*Result, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}

	cols := map[string]int{}
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"name", "amount", "unit", "location"} {
		if _, ok := cols[required]; !ok {
			return nil, ErrBadHeader
		}
	}

	result := &Result{}
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: malformed row", line))
			continue
		}

		field := func(name string) string {
			i, ok := cols[name]
			if !ok || i >= len(record) {
				return ""
			}
			return record[i]
		}

		amount, err := strconv.ParseFloat(strings.TrimSpace(field("amount")), 64)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: invalid amount", line))
			continue
		}

		_, err = store.UpsertChemical(ctx, db,
			field("name"), amount, field("unit"), field("location"), field("notes"))
		if err != nil {
			if errors.Is(err, store.ErrValidation) {
				result.Errors = append(result.Errors, fmt.Sprintf("line %d: %v", line, err))
				continue
			}
			return nil, fmt.Errorf("importing line %d: %w", line, err)
		}
		result.Imported++
	}

	return result, nil
}
