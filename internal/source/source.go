// Package source obtains raw per-title revenue rows for one calendar year,
// either from the bulk revenues dataset or by scraping a live page one day
// at a time. Rows come out loosely typed; the normalize package turns them
// into canonical records.
package source

import (
	"context"
	"fmt"
	"time"
)

// RawRow is one loosely-typed observation row. Keys are source column names,
// lowercased and trimmed at the boundary so lookups are case and whitespace
// insensitive.
type RawRow map[string]string

// Table is a raw result set: the column names present in the source schema
// plus one RawRow per observation.
type Table struct {
	Columns []string
	Rows    []RawRow
}

// HasColumn reports whether the source schema contains the given column.
func (t *Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Source supplies raw rows covering a calendar year.
type Source interface {
	// Name returns the human-readable name of this source.
	Name() string

	// Fetch returns every observation row for the given year. The call is
	// all-or-nothing: a permanently unfetchable day fails the whole year,
	// never a silent gap.
	Fetch(ctx context.Context, year int) (*Table, error)

	// Ping verifies the source endpoint is reachable.
	Ping(ctx context.Context) error
}

// FetchError reports a single day's fetch that failed permanently after all
// retry attempts were exhausted. It aborts the run: output for the requested
// range would be untrustworthy with a day missing.
type FetchError struct {
	Date     time.Time
	Attempts int
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s failed after %d attempts: %v", e.Date.Format("2006-01-02"), e.Attempts, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }
