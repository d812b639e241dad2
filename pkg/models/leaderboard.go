package models

// LeaderboardEntry is one ranked line of the yearly leaderboard.
// Ranks are 1-based and contiguous; no rank is ever shared, because ties on
// revenue are broken by title before ranks are assigned.
type LeaderboardEntry struct {
	Rank    int
	Title   string
	Revenue float64
}
