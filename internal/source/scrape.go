package source

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/seenimoa/reeltally/internal/infra"
	"github.com/seenimoa/reeltally/pkg/models"
)

// scrapeColumns is the canonical column contract the scraper emits. The date
// comes from the requested day, the rest from the selected table.
var scrapeColumns = []string{"date", "title", "revenue", "theaters", "distributor"}

// ScrapeOptions parameterizes the daily scraper's retry and politeness
// behavior. Zero values fall back to conservative defaults.
type ScrapeOptions struct {
	MaxAttempts int           // attempts per day before the run aborts
	Backoff     infra.Backoff // pause schedule between retries
	Delay       time.Duration // politeness pause after each successful fetch
	RatePerSec  int           // hard request-rate bound, retries included
	Now         func() time.Time
}

// DailyScraper fetches per-title revenue rows one calendar day at a time
// from a live page. Days are fetched strictly sequentially in ascending date
// order; only dates before "today" are requested, since the current day's
// page is still mutating upstream.
type DailyScraper struct {
	baseURL     string
	maxAttempts int
	backoff     infra.Backoff
	delay       time.Duration
	limiter     *infra.RateLimiter
	now         func() time.Time
}

// NewDailyScraper creates a scraper rooted at baseURL; day pages live at
// baseURL/YYYY-MM-DD/.
func NewDailyScraper(baseURL string, opts ScrapeOptions) *DailyScraper {
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = 4
	}
	if opts.Backoff.Base == 0 {
		opts.Backoff = infra.Backoff{Base: 2 * time.Second, Max: 30 * time.Second}
	}
	if opts.Delay == 0 {
		opts.Delay = time.Second
	}
	if opts.RatePerSec < 1 {
		opts.RatePerSec = 2
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &DailyScraper{
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		maxAttempts: opts.MaxAttempts,
		backoff:     opts.Backoff,
		delay:       opts.Delay,
		limiter:     infra.NewRateLimiter(opts.RatePerSec, time.Second),
		now:         opts.Now,
	}
}

// Name returns the source name.
func (s *DailyScraper) Name() string { return "daily scrape" }

// Ping verifies the scrape endpoint is reachable.
func (s *DailyScraper) Ping(ctx context.Context) error {
	return infra.DoHead(ctx, s.baseURL)
}

// Fetch retrieves every already-complete day of the given year, in ascending
// date order. A day that stays unfetchable through all retries fails the
// whole year with a *FetchError: a gap in the range would make every number
// downstream untrustworthy.
func (s *DailyScraper) Fetch(ctx context.Context, year int) (*Table, error) {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)

	// Clamp to yesterday.
	today := s.now().UTC().Truncate(24 * time.Hour)
	if yesterday := today.AddDate(0, 0, -1); end.After(yesterday) {
		end = yesterday
	}

	tbl := &Table{Columns: scrapeColumns}
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		rows, err := s.fetchDay(ctx, d)
		if err != nil {
			return nil, err
		}
		tbl.Rows = append(tbl.Rows, rows...)
	}
	return tbl, nil
}

// fetchDay fetches and parses one day's page, retrying transient failures
// with a capped, non-decreasing backoff.
func (s *DailyScraper) fetchDay(ctx context.Context, date time.Time) ([]RawRow, error) {
	url := fmt.Sprintf("%s/%s/", s.baseURL, date.Format(models.DateLayout))

	var lastErr error
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		if attempt > 1 {
			log.Printf("scrape: %s attempt %d/%d after error: %v",
				date.Format(models.DateLayout), attempt, s.maxAttempts, lastErr)
			if err := s.backoff.Sleep(ctx, attempt-1); err != nil {
				return nil, err
			}
		}

		if err := s.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		rows, err := s.requestDay(ctx, url, date)
		if err == nil {
			// Politeness pause after every successful fetch, not only
			// after failures.
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(s.delay):
			}
			return rows, nil
		}
		lastErr = err
	}

	return nil, &FetchError{Date: date, Attempts: s.maxAttempts, Err: lastErr}
}

// requestDay performs a single request/parse cycle for one day.
func (s *DailyScraper) requestDay(ctx context.Context, url string, date time.Time) ([]RawRow, error) {
	body, _, err := infra.DoGet(ctx, url, map[string]string{
		"Accept": "text/html",
	})
	if err != nil {
		return nil, err
	}
	defer body.Close()

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", url, err)
	}

	tbl, cols, ok := dayTable(doc)
	if !ok {
		// An unexpected page shape is transient from the caller's point
		// of view and goes through the same retry policy.
		return nil, fmt.Errorf("no table with release and daily revenue columns on %s", url)
	}

	return extractRows(tbl, cols, date), nil
}

// dayTable selects, among the page's candidate tables, the one whose header
// set contains both a release/title concept and a daily revenue concept.
func dayTable(doc *goquery.Document) (*goquery.Selection, map[string]int, bool) {
	var found *goquery.Selection
	var cols map[string]int

	doc.Find("table").EachWithBreak(func(_ int, tbl *goquery.Selection) bool {
		c := classifyHeaders(tableHeaders(tbl))
		_, hasTitle := c["title"]
		_, hasRevenue := c["revenue"]
		if hasTitle && hasRevenue {
			found, cols = tbl, c
			return false
		}
		return true
	})

	return found, cols, found != nil
}

// tableHeaders returns the first row's cell texts, lowercased and trimmed.
func tableHeaders(tbl *goquery.Selection) []string {
	var headers []string
	tbl.Find("tr").First().Find("th, td").Each(func(_ int, cell *goquery.Selection) {
		headers = append(headers, strings.ToLower(strings.TrimSpace(cell.Text())))
	})
	return headers
}

// classifyHeaders maps canonical column names to header positions. The first
// header matching a concept wins.
func classifyHeaders(headers []string) map[string]int {
	cols := make(map[string]int)
	assign := func(name string, idx int) {
		if _, taken := cols[name]; !taken {
			cols[name] = idx
		}
	}
	for i, h := range headers {
		switch {
		case strings.Contains(h, "release") || strings.Contains(h, "title"):
			assign("title", i)
		case strings.Contains(h, "daily") || strings.Contains(h, "revenue") || h == "gross":
			assign("revenue", i)
		case strings.Contains(h, "theater"):
			assign("theaters", i)
		case strings.Contains(h, "distributor"):
			assign("distributor", i)
		}
	}
	return cols
}

// extractRows reads the selected table's data rows into RawRows carrying the
// canonical column names plus the day's date.
func extractRows(tbl *goquery.Selection, cols map[string]int, date time.Time) []RawRow {
	var rows []RawRow
	tbl.Find("tr").Each(func(i int, tr *goquery.Selection) {
		if i == 0 {
			return // header row
		}
		cells := tr.Find("td")
		if cells.Length() == 0 {
			return
		}
		row := RawRow{"date": date.Format(models.DateLayout)}
		for name, idx := range cols {
			if idx < cells.Length() {
				row[name] = strings.TrimSpace(cells.Eq(idx).Text())
			}
		}
		rows = append(rows, row)
	})
	return rows
}
