package tabstore

import (
	"context"
	"sync"

	"github.com/cohortpulse/cohortpulse/internal/contract"
	"github.com/cohortpulse/cohortpulse/schema"
)

// Memory is an in-process tabular store. It backs the memory backend and
// doubles as the test double for everything that talks to a store.
type Memory struct {
	mu   sync.Mutex
	tabs map[string][][]string
}

var _ contract.TabularStore = (*Memory)(nil)

// NewMemory returns an empty in-process store.
func NewMemory() *Memory {
	return &Memory{tabs: make(map[string][][]string)}
}

// ReadAll returns a copy of every row of a tab including the header row.
func (m *Memory) ReadAll(_ context.Context, tab string) ([][]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	grid := m.tabs[tab]
	out := make([][]string, len(grid))
	for i, row := range grid {
		out[i] = append([]string(nil), row...)
	}
	return out, nil
}

// UpsertRows merges rows into a tab keyed by the given column indexes.
func (m *Memory) UpsertRows(_ context.Context, tab string, keyColumns []int, rows [][]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tabs[tab] = MergeRows(m.tabs[tab], keyColumns, rows)
	return nil
}

// ClearAndWrite replaces the entire tab with the given header and rows.
func (m *Memory) ClearAndWrite(_ context.Context, tab string, headers []string, rows [][]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	grid := make([][]string, 0, len(rows)+1)
	grid = append(grid, headers)
	grid = append(grid, rows...)
	m.tabs[tab] = grid
	return nil
}

// EnsureTab creates the tab with a header row when it is empty.
func (m *Memory) EnsureTab(_ context.Context, tab string, headers []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.tabs[tab]) == 0 {
		m.tabs[tab] = [][]string{headers}
	}
	return nil
}

// ReadConfig returns the Config tab as a key-value map.
func (m *Memory) ReadConfig(ctx context.Context) (map[string]string, error) {
	return readConfigRows(ctx, m, schema.TabConfig)
}

// WriteConfigValue updates or appends a single Config tab entry.
func (m *Memory) WriteConfigValue(ctx context.Context, key, value string) error {
	return m.UpsertRows(ctx, schema.TabConfig, []int{0}, [][]string{{key, value}})
}

// Close is a no-op for the in-process store.
func (m *Memory) Close() error { return nil }
