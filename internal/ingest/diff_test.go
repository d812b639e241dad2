package ingest

import (
	"testing"
	"time"

	"github.com/seenimoa/reeltally/pkg/models"
)

func day(s string) time.Time {
	d, err := time.Parse(models.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return d
}

func recOn(date, title string) models.Record {
	return models.Record{Date: day(date), Title: title, Revenue: 1}
}

func TestNewSinceNoWatermark(t *testing.T) {
	candidates := []models.Record{
		recOn("2026-01-03", "B"),
		recOn("2026-01-01", "A"),
	}

	fresh := NewSince(candidates, time.Time{}, false)
	if len(fresh) != 2 {
		t.Fatalf("without a watermark every candidate is new, got %d", len(fresh))
	}
}

func TestNewSinceStrictlyNewer(t *testing.T) {
	mark := day("2026-01-02")
	candidates := []models.Record{
		recOn("2026-01-01", "Old"),
		recOn("2026-01-02", "AtMark"),
		recOn("2026-01-03", "New"),
	}

	fresh := NewSince(candidates, mark, true)
	if len(fresh) != 1 {
		t.Fatalf("got %d records, want 1", len(fresh))
	}
	if fresh[0].Title != "New" {
		t.Errorf("got %q, want the strictly newer record", fresh[0].Title)
	}
}

func TestNewSinceEqualDateNeverReappended(t *testing.T) {
	mark := day("2026-01-02")
	fresh := NewSince([]models.Record{recOn("2026-01-02", "Same Day")}, mark, true)
	if len(fresh) != 0 {
		t.Errorf("records at the watermark date are already present, got %d", len(fresh))
	}
}

func TestNewSinceSortedByDateThenTitle(t *testing.T) {
	candidates := []models.Record{
		recOn("2026-01-05", "Zeta"),
		recOn("2026-01-04", "Beta"),
		recOn("2026-01-05", "Alpha"),
		recOn("2026-01-04", "Alpha"),
	}

	fresh := NewSince(candidates, time.Time{}, false)
	want := []struct{ date, title string }{
		{"2026-01-04", "Alpha"},
		{"2026-01-04", "Beta"},
		{"2026-01-05", "Alpha"},
		{"2026-01-05", "Zeta"},
	}
	if len(fresh) != len(want) {
		t.Fatalf("got %d records, want %d", len(fresh), len(want))
	}
	for i, w := range want {
		if fresh[i].DateString() != w.date || fresh[i].Title != w.title {
			t.Errorf("position %d: got (%s, %s), want (%s, %s)",
				i, fresh[i].DateString(), fresh[i].Title, w.date, w.title)
		}
	}
}

func TestNewSincePreservesDuplicates(t *testing.T) {
	// The ledger does not deduplicate by title within a run; only the
	// watermark boundary is exactly-once.
	candidates := []models.Record{
		recOn("2026-01-04", "Twin"),
		recOn("2026-01-04", "Twin"),
	}

	fresh := NewSince(candidates, time.Time{}, false)
	if len(fresh) != 2 {
		t.Errorf("legitimate repeats must survive, got %d", len(fresh))
	}
}
