package ledger

import (
	"context"
	"sync"
)

// MemStore is an in-memory TabStore used in tests and as a scratch target.
// FailAppend and FailRewrite, when set, are returned by the corresponding
// write before any mutation, to exercise sink-failure paths.
type MemStore struct {
	mu          sync.Mutex
	tabs        map[string][][]string
	FailAppend  error
	FailRewrite error
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{tabs: make(map[string][][]string)}
}

// EnsureHeader writes hdr as the first row of tab if the tab is empty.
func (m *MemStore) EnsureHeader(_ context.Context, tab string, hdr []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.tabs[tab]) == 0 {
		m.tabs[tab] = [][]string{append([]string(nil), hdr...)}
	}
	return nil
}

// Rows returns every row of tab in append order.
func (m *MemStore) Rows(_ context.Context, tab string) ([][]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rows := make([][]string, len(m.tabs[tab]))
	for i, r := range m.tabs[tab] {
		rows[i] = append([]string(nil), r...)
	}
	return rows, nil
}

// ColumnValues returns the idx-th cell of every row of tab.
func (m *MemStore) ColumnValues(_ context.Context, tab string, idx int) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	col := make([]string, len(m.tabs[tab]))
	for i, cells := range m.tabs[tab] {
		if idx < len(cells) {
			col[i] = cells[idx]
		}
	}
	return col, nil
}

// AppendRows appends rows after the current last row of tab.
func (m *MemStore) AppendRows(_ context.Context, tab string, rows [][]string) error {
	if m.FailAppend != nil {
		return m.FailAppend
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range rows {
		m.tabs[tab] = append(m.tabs[tab], append([]string(nil), r...))
	}
	return nil
}

// Rewrite clears tab and writes rows as its complete new contents.
func (m *MemStore) Rewrite(_ context.Context, tab string, rows [][]string) error {
	if m.FailRewrite != nil {
		return m.FailRewrite
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	fresh := make([][]string, 0, len(rows))
	for _, r := range rows {
		fresh = append(fresh, append([]string(nil), r...))
	}
	m.tabs[tab] = fresh
	return nil
}
