package source

import (
	"bytes"
	"compress/gzip"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

const datasetCSV = `Date,Title,Revenue,Theaters,Distributor
2025-12-31,Last Year,999,100,Old Co
2026-01-01,Movie A,"$1,234.50",1500,Acme
2026-01-02,Movie B,200,,
not-a-date,Broken Row,5,,
2026-01-03,Movie A,300,1400,Acme
`

func gzipBytes(t *testing.T, data string) []byte {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if _, err := gz.Write([]byte(data)); err != nil {
		t.Fatal(err)
	}
	if err := gz.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestBulkFetchGzipped(t *testing.T) {
	payload := gzipBytes(t, datasetCSV)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(payload)
	}))
	defer srv.Close()

	tbl, err := NewBulkDataset(srv.URL).Fetch(context.Background(), 2026)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	// Header lowercased, schema intact.
	for _, col := range []string{"date", "title", "revenue", "theaters", "distributor"} {
		if !tbl.HasColumn(col) {
			t.Errorf("missing column %q in %v", col, tbl.Columns)
		}
	}

	// Year filter: 2025 row and the unparseable-date row are gone.
	if len(tbl.Rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(tbl.Rows))
	}
	if tbl.Rows[0]["title"] != "Movie A" || tbl.Rows[0]["revenue"] != "$1,234.50" {
		t.Errorf("first row: %v", tbl.Rows[0])
	}
}

func TestBulkFetchPlainCSV(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(datasetCSV))
	}))
	defer srv.Close()

	tbl, err := NewBulkDataset(srv.URL).Fetch(context.Background(), 2026)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(tbl.Rows) != 3 {
		t.Errorf("got %d rows, want 3", len(tbl.Rows))
	}
}

func TestBulkFetchCachesDownload(t *testing.T) {
	payload := gzipBytes(t, datasetCSV)
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Write(payload)
	}))
	defer srv.Close()

	b := NewBulkDataset(srv.URL)
	ctx := context.Background()
	if _, err := b.Fetch(ctx, 2026); err != nil {
		t.Fatal(err)
	}
	if _, err := b.Fetch(ctx, 2026); err != nil {
		t.Fatal(err)
	}
	if hits != 1 {
		t.Errorf("dataset downloaded %d times, want 1", hits)
	}
}

func TestBulkFetchHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	if _, err := NewBulkDataset(srv.URL).Fetch(context.Background(), 2026); err == nil {
		t.Error("expected error for HTTP 404")
	}
}

func TestBulkPing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	if err := NewBulkDataset(srv.URL).Ping(context.Background()); err != nil {
		t.Errorf("Ping: %v", err)
	}
}
