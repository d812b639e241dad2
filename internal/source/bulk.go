package source

import (
	"bufio"
	"compress/gzip"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/seenimoa/reeltally/internal/infra"
	"github.com/seenimoa/reeltally/pkg/models"
)

// BulkDataset fetches the gzipped CSV dataset covering many years and filters
// it locally to the requested year. One download per process: the parsed
// table is cached so a sync followed by a leaderboard rebuild reuses it.
type BulkDataset struct {
	url   string
	cache *infra.Cache
}

// NewBulkDataset creates a bulk dataset source for the given URL.
func NewBulkDataset(url string) *BulkDataset {
	return &BulkDataset{
		url:   url,
		cache: infra.NewCache(30 * time.Minute),
	}
}

// Name returns the source name.
func (b *BulkDataset) Name() string { return "bulk dataset" }

// Ping verifies the dataset URL is reachable without downloading it.
func (b *BulkDataset) Ping(ctx context.Context) error {
	return infra.DoHead(ctx, b.url)
}

// Fetch downloads the dataset and returns the rows whose date falls in the
// given year. Rows with unparseable dates are dropped: they cannot be
// assigned to any year.
func (b *BulkDataset) Fetch(ctx context.Context, year int) (*Table, error) {
	cacheKey := fmt.Sprintf("bulk:%s:%d", b.url, year)
	if cached, ok := b.cache.Get(cacheKey); ok {
		return cached.(*Table), nil
	}

	body, _, err := infra.DoGet(ctx, b.url, map[string]string{
		"Accept": "text/csv, application/gzip, */*",
	})
	if err != nil {
		return nil, fmt.Errorf("download dataset: %w", err)
	}
	defer body.Close()

	tbl, err := readCSV(body, year)
	if err != nil {
		return nil, err
	}

	b.cache.Set(cacheKey, tbl)
	return tbl, nil
}

// readCSV parses the (possibly gzipped) CSV stream into a Table, keeping only
// rows of the requested year.
func readCSV(r io.Reader, year int) (*Table, error) {
	br := bufio.NewReader(r)

	// The release asset is gzipped, but sniff the magic bytes so a plain
	// CSV served by a mirror still works.
	if magic, err := br.Peek(2); err == nil && len(magic) == 2 && magic[0] == 0x1f && magic[1] == 0x8b {
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("open gzip stream: %w", err)
		}
		defer gz.Close()
		return parseCSV(gz, year)
	}
	return parseCSV(br, year)
}

func parseCSV(r io.Reader, year int) (*Table, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1 // variable fields

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read dataset header: %w", err)
	}

	columns := make([]string, len(header))
	for i, h := range header {
		columns[i] = strings.ToLower(strings.TrimSpace(h))
	}

	dateIdx := -1
	for i, c := range columns {
		if c == "date" {
			dateIdx = i
			break
		}
	}

	tbl := &Table{Columns: columns}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read dataset row: %w", err)
		}

		// Year filter happens here, before the row is materialized.
		if dateIdx >= 0 {
			if dateIdx >= len(record) {
				continue
			}
			d, err := time.Parse(models.DateLayout, strings.TrimSpace(record[dateIdx]))
			if err != nil || d.Year() != year {
				continue
			}
		}

		row := make(RawRow, len(columns))
		for i, c := range columns {
			if i < len(record) {
				row[c] = record[i]
			}
		}
		tbl.Rows = append(tbl.Rows, row)
	}

	return tbl, nil
}
