package ledger

import (
	"context"
	"strings"
	"time"

	"github.com/seenimoa/reeltally/pkg/models"
)

// Watermark returns the most recent ingested date of tab: the date cell of
// its last row. ok=false means the tab holds no data rows yet, or the last
// value does not parse as a date — either way the caller must treat the
// ledger as empty and resynchronize from scratch rather than silently
// ingest nothing.
//
// Reading only the last row instead of scanning for the maximum is valid
// because the tab's date column is append-ordered (see TabStore).
func Watermark(ctx context.Context, st TabStore, tab string) (time.Time, bool, error) {
	dates, err := st.ColumnValues(ctx, tab, 0)
	if err != nil {
		return time.Time{}, false, &SinkError{Op: "read date column", Tab: tab, Err: err}
	}
	if len(dates) <= 1 {
		// Empty, or header only.
		return time.Time{}, false, nil
	}

	last := strings.TrimSpace(dates[len(dates)-1])
	d, err := time.Parse(models.DateLayout, last)
	if err != nil {
		return time.Time{}, false, nil
	}
	return d, true, nil
}

// Records parses the data rows of tab back into canonical records, skipping
// the header and any row whose date cell does not parse.
func Records(ctx context.Context, st TabStore, tab string) ([]models.Record, error) {
	rows, err := st.Rows(ctx, tab)
	if err != nil {
		return nil, &SinkError{Op: "read rows", Tab: tab, Err: err}
	}

	records := make([]models.Record, 0, len(rows))
	for _, cells := range rows {
		if rec, ok := models.RecordFromRow(cells); ok {
			records = append(records, rec)
		}
	}
	return records, nil
}
