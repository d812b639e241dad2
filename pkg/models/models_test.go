package models

import (
	"testing"
	"time"
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		t.Fatalf("parse date %q: %v", s, err)
	}
	return d
}

func TestRecordRow(t *testing.T) {
	rec := Record{
		Date:        mustDate(t, "2026-03-15"),
		Title:       "Some Movie",
		Revenue:     1234.5,
		Theaters:    1500,
		HasTheaters: true,
		Distributor: "Acme Pictures",
	}

	row := rec.Row()
	want := []string{"2026-03-15", "Some Movie", "1234.5", "1500", "Acme Pictures"}
	if len(row) != len(want) {
		t.Fatalf("row length: got %d, want %d", len(row), len(want))
	}
	for i := range want {
		if row[i] != want[i] {
			t.Errorf("row[%d]: got %q, want %q", i, row[i], want[i])
		}
	}
}

func TestRecordRowAbsentTheaters(t *testing.T) {
	rec := Record{
		Date:    mustDate(t, "2026-03-15"),
		Title:   "Some Movie",
		Revenue: 100,
	}

	if got := rec.Row()[3]; got != "" {
		t.Errorf("absent theater count should render empty, got %q", got)
	}
}

func TestRecordFromRow(t *testing.T) {
	rec, ok := RecordFromRow([]string{"2026-03-15", "Some Movie", "1234.5", "1500", "Acme"})
	if !ok {
		t.Fatal("expected row to parse")
	}
	if rec.Title != "Some Movie" || rec.Revenue != 1234.5 {
		t.Errorf("got %+v", rec)
	}
	if !rec.HasTheaters || rec.Theaters != 1500 {
		t.Errorf("theaters: got %d (has=%v), want 1500", rec.Theaters, rec.HasTheaters)
	}
	if rec.Distributor != "Acme" {
		t.Errorf("distributor: got %q", rec.Distributor)
	}
}

func TestRecordFromRowEmptyTheaters(t *testing.T) {
	rec, ok := RecordFromRow([]string{"2026-03-15", "Some Movie", "100", "", ""})
	if !ok {
		t.Fatal("expected row to parse")
	}
	if rec.HasTheaters {
		t.Error("empty theater cell should stay absent")
	}
}

func TestRecordFromRowRejectsHeader(t *testing.T) {
	if _, ok := RecordFromRow([]string{"date", "title", "revenue", "theaters", "distributor"}); ok {
		t.Error("header row should not parse as a record")
	}
}

func TestRecordRoundTrip(t *testing.T) {
	orig := Record{
		Date:        mustDate(t, "2026-07-04"),
		Title:       "Holiday Opener",
		Revenue:     9876543.21,
		Theaters:    4200,
		HasTheaters: true,
		Distributor: "Indie Co",
	}

	parsed, ok := RecordFromRow(orig.Row())
	if !ok {
		t.Fatal("round trip failed to parse")
	}
	if parsed != orig {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", parsed, orig)
	}
}

func TestFormatRevenue(t *testing.T) {
	tests := []struct {
		input    float64
		expected string
	}{
		{0, "0"},
		{1234.5, "1234.5"},
		{1000000, "1000000"},
		{0.01, "0.01"},
	}
	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := FormatRevenue(tt.input); got != tt.expected {
				t.Errorf("FormatRevenue(%v) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}
