// Package models defines the canonical data shapes shared across the
// application: the per-day revenue observation and the derived leaderboard.
package models

import (
	"strconv"
	"strings"
	"time"
)

// DateLayout is the wire format for dates in the ledger's date column.
const DateLayout = "2006-01-02"

// Record is one title's revenue observation for one calendar day.
// A Record that came through the normalizer never carries NaN, Inf, or a
// negative revenue; absent theater counts are marked, not zeroed.
type Record struct {
	Date        time.Time
	Title       string
	Revenue     float64
	Theaters    int // meaningful only when HasTheaters
	HasTheaters bool
	Distributor string
}

// DateString returns the record date in ledger format.
func (r Record) DateString() string {
	return r.Date.Format(DateLayout)
}

// Row renders the record as a ledger row in the fixed column order
// [date, title, revenue, theaters, distributor]. A missing theater count
// becomes an empty cell so "not reported" stays distinct from zero.
func (r Record) Row() []string {
	theaters := ""
	if r.HasTheaters {
		theaters = strconv.Itoa(r.Theaters)
	}
	return []string{
		r.DateString(),
		r.Title,
		FormatRevenue(r.Revenue),
		theaters,
		r.Distributor,
	}
}

// RecordFromRow parses a ledger row back into a Record. Returns ok=false for
// rows whose date cell does not parse (the header row, for one).
func RecordFromRow(cells []string) (Record, bool) {
	if len(cells) < 3 {
		return Record{}, false
	}
	date, err := time.Parse(DateLayout, strings.TrimSpace(cells[0]))
	if err != nil {
		return Record{}, false
	}
	rec := Record{
		Date:  date,
		Title: cells[1],
	}
	if v, err := strconv.ParseFloat(strings.TrimSpace(cells[2]), 64); err == nil {
		rec.Revenue = v
	}
	if len(cells) > 3 {
		if n, err := strconv.Atoi(strings.TrimSpace(cells[3])); err == nil {
			rec.Theaters = n
			rec.HasTheaters = true
		}
	}
	if len(cells) > 4 {
		rec.Distributor = cells[4]
	}
	return rec, true
}

// FormatRevenue renders a revenue value without trailing zeros, so 1234.5
// stays "1234.5" and whole amounts stay integers.
func FormatRevenue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
