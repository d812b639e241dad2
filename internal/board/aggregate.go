// Package board derives the ranked leaderboard from ledger records. The
// leaderboard is always a full recomputation over the year's complete record
// set: one new day of data can move any title's rank.
package board

import (
	"sort"

	"github.com/seenimoa/reeltally/pkg/models"
)

// DefaultLimit is the number of ranked rows kept for publication.
const DefaultLimit = 50

// Standings is a computed leaderboard. HasData distinguishes "no records for
// the year" from a winner with zero revenue.
type Standings struct {
	Entries []models.LeaderboardEntry
	Winner  models.LeaderboardEntry // valid only when HasData
	HasData bool
}

// Compute groups records by exact title, sums revenue per group, and ranks
// descending by total. Ties are broken by ascending title, compared
// byte-wise — case-sensitive on purpose: the tie-break must stay total and
// stable across runs, and changing the collation would change published
// rankings. Ranks are 1-based and contiguous; at most limit entries are
// kept (DefaultLimit when limit is not positive).
func Compute(records []models.Record, limit int) Standings {
	if limit <= 0 {
		limit = DefaultLimit
	}

	totals := make(map[string]float64)
	for _, rec := range records {
		totals[rec.Title] += rec.Revenue
	}
	if len(totals) == 0 {
		return Standings{}
	}

	entries := make([]models.LeaderboardEntry, 0, len(totals))
	for title, revenue := range totals {
		entries = append(entries, models.LeaderboardEntry{Title: title, Revenue: revenue})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Revenue != entries[j].Revenue {
			return entries[i].Revenue > entries[j].Revenue
		}
		return entries[i].Title < entries[j].Title
	})

	for i := range entries {
		entries[i].Rank = i + 1
	}

	winner := entries[0]
	if len(entries) > limit {
		entries = entries[:limit]
	}

	return Standings{Entries: entries, Winner: winner, HasData: true}
}
