package ledger

import (
	"context"
	"testing"
)

func TestWatermarkEmptyTab(t *testing.T) {
	st := NewMemStore()
	_, ok, err := Watermark(context.Background(), st, "raw")
	if err != nil {
		t.Fatalf("Watermark: %v", err)
	}
	if ok {
		t.Error("empty tab should have no watermark")
	}
}

func TestWatermarkHeaderOnly(t *testing.T) {
	st := NewMemStore()
	ctx := context.Background()
	if err := st.EnsureHeader(ctx, "raw", Header); err != nil {
		t.Fatal(err)
	}

	_, ok, err := Watermark(ctx, st, "raw")
	if err != nil {
		t.Fatalf("Watermark: %v", err)
	}
	if ok {
		t.Error("header-only tab should have no watermark")
	}
}

func TestWatermarkReadsLastRow(t *testing.T) {
	st := NewMemStore()
	ctx := context.Background()
	st.EnsureHeader(ctx, "raw", Header)
	st.AppendRows(ctx, "raw", [][]string{
		{"2026-01-01", "Movie A", "100", "", ""},
		{"2026-01-02", "Movie B", "200", "", ""},
		{"2026-01-03", "Movie C", "300", "", ""},
	})

	mark, ok, err := Watermark(ctx, st, "raw")
	if err != nil {
		t.Fatalf("Watermark: %v", err)
	}
	if !ok {
		t.Fatal("expected a watermark")
	}
	if got := mark.Format("2006-01-02"); got != "2026-01-03" {
		t.Errorf("watermark = %s, want 2026-01-03", got)
	}
}

func TestWatermarkUnparseableLastDate(t *testing.T) {
	st := NewMemStore()
	ctx := context.Background()
	st.EnsureHeader(ctx, "raw", Header)
	st.AppendRows(ctx, "raw", [][]string{
		{"2026-01-01", "Movie A", "100", "", ""},
		{"garbage", "Movie B", "200", "", ""},
	})

	_, ok, err := Watermark(ctx, st, "raw")
	if err != nil {
		t.Fatalf("Watermark: %v", err)
	}
	if ok {
		t.Error("unparseable last date must force a full resync, not a partial one")
	}
}

func TestRecordsSkipsHeader(t *testing.T) {
	st := NewMemStore()
	ctx := context.Background()
	st.EnsureHeader(ctx, "raw", Header)
	st.AppendRows(ctx, "raw", [][]string{
		{"2026-01-01", "Movie A", "100.5", "1200", "Acme"},
		{"2026-01-02", "Movie B", "200", "", ""},
	})

	recs, err := Records(ctx, st, "raw")
	if err != nil {
		t.Fatalf("Records: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("got %d records, want 2", len(recs))
	}
	if recs[0].Title != "Movie A" || recs[0].Revenue != 100.5 {
		t.Errorf("first record: %+v", recs[0])
	}
	if recs[1].HasTheaters {
		t.Error("empty theater cell should stay absent")
	}
}
