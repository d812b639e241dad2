// Package normalize coerces loosely-typed source rows into canonical
// records. A malformed field in a single row is never an error: currency and
// count fields get default substitutions, rows without an addressable title
// are dropped. The only failure here is structural — a required column
// missing from the source schema entirely.
package normalize

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/seenimoa/reeltally/internal/source"
	"github.com/seenimoa/reeltally/pkg/models"
)

// requiredColumns must be present in the source schema. Their absence is a
// configuration error, not a per-row problem.
var requiredColumns = []string{"date", "title", "revenue"}

// MissingColumnError reports a structurally required column absent from the
// source schema. It is fatal and aborts the run before any sink I/O.
type MissingColumnError struct {
	Column string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("missing expected column: %s", e.Column)
}

// Records normalizes a raw table into canonical records. Per-row defects are
// absorbed: unparseable revenue becomes 0, an unparseable theater count
// becomes "not reported", rows with an empty title or an unparseable date
// are dropped. Row order is preserved.
func Records(tbl *source.Table) ([]models.Record, error) {
	for _, col := range requiredColumns {
		if !tbl.HasColumn(col) {
			return nil, &MissingColumnError{Column: col}
		}
	}

	records := make([]models.Record, 0, len(tbl.Rows))
	for _, row := range tbl.Rows {
		if rec, ok := record(row); ok {
			records = append(records, rec)
		}
	}
	return records, nil
}

// record normalizes a single row. ok=false means the row carries no
// addressable observation and is dropped.
func record(row source.RawRow) (models.Record, bool) {
	title := strings.TrimSpace(row["title"])
	if title == "" {
		return models.Record{}, false
	}

	date, err := time.Parse(models.DateLayout, strings.TrimSpace(row["date"]))
	if err != nil {
		return models.Record{}, false
	}

	rec := models.Record{
		Date:        date,
		Title:       title,
		Revenue:     Currency(row["revenue"]),
		Distributor: strings.TrimSpace(row["distributor"]),
	}
	rec.Theaters, rec.HasTheaters = Count(row["theaters"])
	return rec, true
}

// Currency parses a currency string into a non-negative float. Currency
// symbols and thousands separators are stripped; the decimal separator is a
// period. Anything unparseable — empty, "-", "N/A", footnote markers, NaN,
// infinities — normalizes to 0, as do negative amounts.
func Currency(s string) float64 {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

// Count parses a non-negative integer with optional thousands separators.
// ok=false marks the value as "not reported" — deliberately distinct from
// zero, which would mean "playing in zero theaters".
func Count(s string) (int, bool) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0, false
	}

	// Sources sometimes report counts as floats ("1500.0").
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0, false
	}
	return int(v), true
}
