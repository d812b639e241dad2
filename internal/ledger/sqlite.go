package ledger

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"regexp"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements TabStore on a single SQLite database file. Each tab
// is a physical table; each sheet row is one DB row holding a JSON-encoded
// cell array, keyed by an autoincrement position so append order is read
// order.
type SQLiteStore struct {
	db *sql.DB
}

// tabName restricts tab identifiers to names that are safe to splice into
// SQL.
var tabName = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]*$`)

// OpenSQLite opens (or creates) the store at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open ledger %s: %w", path, err)
	}

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 10000",
		"PRAGMA synchronous = NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply %q: %w", pragma, err)
		}
	}

	return &SQLiteStore{db: db}, nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error { return s.db.Close() }

// ensureTab validates the tab name and creates its table on first use.
func (s *SQLiteStore) ensureTab(ctx context.Context, tab string) error {
	if !tabName.MatchString(tab) {
		return fmt.Errorf("invalid tab name %q", tab)
	}
	_, err := s.db.ExecContext(ctx, fmt.Sprintf(
		`CREATE TABLE IF NOT EXISTS tab_%s (pos INTEGER PRIMARY KEY AUTOINCREMENT, cells TEXT NOT NULL)`, tab))
	if err != nil {
		return fmt.Errorf("create tab %q: %w", tab, err)
	}
	return nil
}

// EnsureHeader writes hdr as the first row of tab if the tab is empty.
func (s *SQLiteStore) EnsureHeader(ctx context.Context, tab string, hdr []string) error {
	if err := s.ensureTab(ctx, tab); err != nil {
		return err
	}

	var n int
	if err := s.db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT COUNT(*) FROM tab_%s`, tab)).Scan(&n); err != nil {
		return fmt.Errorf("count tab %q: %w", tab, err)
	}
	if n > 0 {
		return nil
	}
	return s.AppendRows(ctx, tab, [][]string{hdr})
}

// Rows returns every row of tab in append order.
func (s *SQLiteStore) Rows(ctx context.Context, tab string) ([][]string, error) {
	if err := s.ensureTab(ctx, tab); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf(`SELECT cells FROM tab_%s ORDER BY pos`, tab))
	if err != nil {
		return nil, fmt.Errorf("read tab %q: %w", tab, err)
	}
	defer rows.Close()

	var out [][]string
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan tab %q: %w", tab, err)
		}
		var cells []string
		if err := json.Unmarshal([]byte(raw), &cells); err != nil {
			return nil, fmt.Errorf("decode row in tab %q: %w", tab, err)
		}
		out = append(out, cells)
	}
	return out, rows.Err()
}

// ColumnValues returns the idx-th cell of every row of tab.
func (s *SQLiteStore) ColumnValues(ctx context.Context, tab string, idx int) ([]string, error) {
	rows, err := s.Rows(ctx, tab)
	if err != nil {
		return nil, err
	}
	col := make([]string, len(rows))
	for i, cells := range rows {
		if idx < len(cells) {
			col[i] = cells[idx]
		}
	}
	return col, nil
}

// AppendRows appends rows after the current last row of tab, all in one
// transaction.
func (s *SQLiteStore) AppendRows(ctx context.Context, tab string, rows [][]string) error {
	if len(rows) == 0 {
		return nil
	}
	if err := s.ensureTab(ctx, tab); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin append to tab %q: %w", tab, err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		fmt.Sprintf(`INSERT INTO tab_%s (cells) VALUES (?)`, tab))
	if err != nil {
		return fmt.Errorf("prepare append to tab %q: %w", tab, err)
	}
	defer stmt.Close()

	for _, cells := range rows {
		raw, err := json.Marshal(cells)
		if err != nil {
			return fmt.Errorf("encode row for tab %q: %w", tab, err)
		}
		if _, err := stmt.ExecContext(ctx, string(raw)); err != nil {
			return fmt.Errorf("append to tab %q: %w", tab, err)
		}
	}

	return tx.Commit()
}

// Rewrite clears tab and writes rows as its complete new contents.
func (s *SQLiteStore) Rewrite(ctx context.Context, tab string, rows [][]string) error {
	if err := s.ensureTab(ctx, tab); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin rewrite of tab %q: %w", tab, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, fmt.Sprintf(`DELETE FROM tab_%s`, tab)); err != nil {
		return fmt.Errorf("clear tab %q: %w", tab, err)
	}

	for _, cells := range rows {
		raw, err := json.Marshal(cells)
		if err != nil {
			return fmt.Errorf("encode row for tab %q: %w", tab, err)
		}
		if _, err := tx.ExecContext(ctx,
			fmt.Sprintf(`INSERT INTO tab_%s (cells) VALUES (?)`, tab), string(raw)); err != nil {
			return fmt.Errorf("rewrite tab %q: %w", tab, err)
		}
	}

	return tx.Commit()
}
