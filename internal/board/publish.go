package board

import (
	"context"
	"fmt"
	"strconv"

	"github.com/seenimoa/reeltally/internal/ledger"
	"github.com/seenimoa/reeltally/pkg/models"
)

// Publisher rewrites the leaderboard tab from scratch on every publication;
// the tab is never appended to incrementally.
type Publisher struct {
	Store ledger.TabStore
	Tab   string
}

// Publish writes the standings for the given year. Layout: a title line with
// the year and tie-break policy, a winner line, a [Rank, Title, Revenue]
// header, then the ranked rows. An empty year publishes a single "no data
// yet" title line instead of failing over a missing winner.
func (p *Publisher) Publish(ctx context.Context, year int, s Standings) error {
	rows := Layout(year, s)
	if err := p.Store.Rewrite(ctx, p.Tab, rows); err != nil {
		return &ledger.SinkError{Op: "publish leaderboard", Tab: p.Tab, Err: err}
	}
	return nil
}

// Layout renders standings into sheet rows.
func Layout(year int, s Standings) [][]string {
	if !s.HasData {
		return [][]string{
			{fmt.Sprintf("Leaderboard %d (no data yet)", year)},
		}
	}

	rows := [][]string{
		{fmt.Sprintf("Leaderboard %d (calendar revenue, tie-break: alphabetic)", year)},
		{},
		{"Winner (current):", s.Winner.Title, models.FormatRevenue(s.Winner.Revenue)},
		{},
		{"Rank", "Title", "Revenue"},
	}
	for _, e := range s.Entries {
		rows = append(rows, []string{
			strconv.Itoa(e.Rank),
			e.Title,
			models.FormatRevenue(e.Revenue),
		})
	}
	return rows
}
