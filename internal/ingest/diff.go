// Package ingest runs one synchronization pass: read the ledger watermark,
// fetch and normalize the year's candidate rows, append only the strictly
// newer ones, then recompute and republish the leaderboard.
package ingest

import (
	"sort"
	"time"

	"github.com/seenimoa/reeltally/pkg/models"
)

// NewSince returns the candidates strictly newer than the watermark, sorted
// ascending by (date, title). Records dated exactly at the watermark are
// assumed already ingested and are never re-appended — the exactly-once
// guarantee here is per day, not per record. With no watermark (haveMark
// false) every candidate is new.
//
// The sort keeps the ledger's date column monotonic after the append, which
// is what makes the last-row watermark read valid on the next run.
func NewSince(candidates []models.Record, watermark time.Time, haveMark bool) []models.Record {
	fresh := make([]models.Record, 0, len(candidates))
	for _, rec := range candidates {
		if !haveMark || rec.Date.After(watermark) {
			fresh = append(fresh, rec)
		}
	}

	sort.SliceStable(fresh, func(i, j int) bool {
		if !fresh[i].Date.Equal(fresh[j].Date) {
			return fresh[i].Date.Before(fresh[j].Date)
		}
		return fresh[i].Title < fresh[j].Title
	})
	return fresh
}
