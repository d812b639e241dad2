package ingest

import (
	"context"
	"fmt"
	"log"

	"github.com/seenimoa/reeltally/internal/board"
	"github.com/seenimoa/reeltally/internal/ledger"
	"github.com/seenimoa/reeltally/internal/normalize"
	"github.com/seenimoa/reeltally/internal/source"
	"github.com/seenimoa/reeltally/pkg/models"
)

// Runner executes one synchronization pass for a single year against a
// single ledger. Runs against the same ledger must be serialized externally:
// the watermark read and the appends that follow are not guarded by any
// lock. A run either completes or aborts; appends committed before an abort
// stay in place and the next run resumes after them.
type Runner struct {
	Source source.Source
	Store  ledger.TabStore
	RawTab string

	// BatchSize bounds how many rows go into one append call. Batches are
	// written in sorted order, so the date column stays monotonic even if
	// a later batch fails.
	BatchSize int

	Board *board.Publisher
	Limit int // ranked rows kept for publication
}

// Summary reports what one run did.
type Summary struct {
	Year      int
	Watermark string // "none" or the resume date
	NewRows   int    // rows appended by this run
	TotalRows int    // data rows for the target year after the run
}

func (s *Summary) String() string {
	return fmt.Sprintf("year=%d watermark=%s new_rows=%d total_rows=%d",
		s.Year, s.Watermark, s.NewRows, s.TotalRows)
}

// Run performs one full pass: ensure header → watermark → fetch → normalize
// → diff → batched appends → aggregate → publish. The leaderboard is only
// touched after every append has succeeded; no partial ranking is ever
// published.
func (r *Runner) Run(ctx context.Context, year int, rebuild bool) (*Summary, error) {
	batch := r.BatchSize
	if batch <= 0 {
		batch = 500
	}

	if rebuild {
		if err := r.Store.Rewrite(ctx, r.RawTab, [][]string{ledger.Header}); err != nil {
			return nil, &ledger.SinkError{Op: "rebuild raw tab", Tab: r.RawTab, Err: err}
		}
		log.Printf("ingest: raw tab %q cleared for full rebuild", r.RawTab)
	} else {
		if err := r.Store.EnsureHeader(ctx, r.RawTab, ledger.Header); err != nil {
			return nil, &ledger.SinkError{Op: "ensure header", Tab: r.RawTab, Err: err}
		}
	}

	mark, haveMark, err := ledger.Watermark(ctx, r.Store, r.RawTab)
	if err != nil {
		return nil, err
	}

	summary := &Summary{Year: year, Watermark: "none"}
	if haveMark {
		summary.Watermark = mark.Format(models.DateLayout)
	}

	tbl, err := r.Source.Fetch(ctx, year)
	if err != nil {
		return nil, err
	}

	candidates, err := normalize.Records(tbl)
	if err != nil {
		return nil, err
	}

	fresh := NewSince(candidates, mark, haveMark)
	for start := 0; start < len(fresh); start += batch {
		end := start + batch
		if end > len(fresh) {
			end = len(fresh)
		}
		rows := make([][]string, 0, end-start)
		for _, rec := range fresh[start:end] {
			rows = append(rows, rec.Row())
		}
		if err := r.Store.AppendRows(ctx, r.RawTab, rows); err != nil {
			return nil, &ledger.SinkError{Op: "append", Tab: r.RawTab, Err: err}
		}
	}
	summary.NewRows = len(fresh)

	// Aggregate over the year's full ledger contents, not the delta: a new
	// day's rows can reorder any title. The ledger can carry earlier years
	// after a rollover; standings never mix them.
	records, err := ledger.Records(ctx, r.Store, r.RawTab)
	if err != nil {
		return nil, err
	}
	records = forYear(records, year)
	summary.TotalRows = len(records)

	standings := board.Compute(records, r.Limit)
	if err := r.Board.Publish(ctx, year, standings); err != nil {
		return nil, err
	}

	log.Printf("ingest: %s", summary)
	return summary, nil
}

// Republish recomputes the leaderboard from the current ledger contents
// without touching any source. Used when only the derived view needs a
// rebuild.
func (r *Runner) Republish(ctx context.Context, year int) (*Summary, error) {
	records, err := ledger.Records(ctx, r.Store, r.RawTab)
	if err != nil {
		return nil, err
	}
	records = forYear(records, year)

	standings := board.Compute(records, r.Limit)
	if err := r.Board.Publish(ctx, year, standings); err != nil {
		return nil, err
	}

	return &Summary{Year: year, Watermark: "unchanged", TotalRows: len(records)}, nil
}

// forYear keeps only the records dated inside the target calendar year.
func forYear(records []models.Record, year int) []models.Record {
	kept := make([]models.Record, 0, len(records))
	for _, rec := range records {
		if rec.Date.Year() == year {
			kept = append(kept, rec)
		}
	}
	return kept
}
