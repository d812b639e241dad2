// Package ledger persists the append-only revenue ledger and the published
// leaderboard in a sheet-like tabular store addressed by tab name.
package ledger

import (
	"context"
	"fmt"
)

// Header is the fixed column order of the raw ledger tab.
var Header = []string{"date", "title", "revenue", "theaters", "distributor"}

// TabStore is a tabular sink holding ordered rows of string cells per tab.
//
// Implementations must preserve append order: AppendRows adds rows strictly
// after all existing rows, and Rows/ColumnValues read them back in that
// order. The watermark shortcut in this package — last row instead of a full
// max scan — is only valid under that invariant, which also assumes a single
// writer. If concurrent writers are ever introduced, Watermark must become a
// full scan for the true maximum date.
type TabStore interface {
	// EnsureHeader writes hdr as the first row of tab if the tab is empty.
	// An existing first row, whatever its contents, is left alone.
	EnsureHeader(ctx context.Context, tab string, hdr []string) error

	// Rows returns every row of tab, header included, in append order.
	Rows(ctx context.Context, tab string) ([][]string, error)

	// ColumnValues returns the idx-th cell (0-based) of every row of tab,
	// in append order. Rows too short for idx contribute an empty string.
	ColumnValues(ctx context.Context, tab string, idx int) ([]string, error)

	// AppendRows appends rows after the current last row of tab, in the
	// given order. Never overwrites.
	AppendRows(ctx context.Context, tab string, rows [][]string) error

	// Rewrite clears tab and writes rows as its complete new contents.
	// Used only for full rebuilds and leaderboard publication.
	Rewrite(ctx context.Context, tab string, rows [][]string) error
}

// SinkError wraps a failed operation against the store. Writes are not
// retried: rows appended before the failure stay committed, and the next
// run's watermark read resumes after the last successful append.
type SinkError struct {
	Op  string
	Tab string
	Err error
}

func (e *SinkError) Error() string {
	return fmt.Sprintf("ledger %s on tab %q: %v", e.Op, e.Tab, e.Err)
}

func (e *SinkError) Unwrap() error { return e.Err }
