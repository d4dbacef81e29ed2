// Package ledger reads and writes the Daily Raw Metrics tab: the append-only
// record of per-learner per-day activity that every aggregation runs over.
package ledger

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/cohortpulse/cohortpulse/internal/contract"
	"github.com/cohortpulse/cohortpulse/schema"
)

// Key columns of the daily tab: username and date.
var dayKeyColumns = []int{0, 1}

// RowToCells renders a daily row in the 13-column tab layout.
func RowToCells(row schema.DailyRow) []string {
	return []string{
		row.Username,
		row.Date,
		strconv.Itoa(row.Commits),
		strconv.Itoa(row.PRsOpened),
		strconv.Itoa(row.PRsMerged),
		strconv.Itoa(row.IssuesOpened),
		strconv.Itoa(row.IssueComments),
		strconv.Itoa(row.ReviewCommentsGiven),
		strconv.Itoa(row.LinesAdded),
		strconv.Itoa(row.LinesDeleted),
		formatFloat(row.AvgMergeTime),
		formatFloat(row.RejectionRate),
		row.LastUpdated,
	}
}

// CellsToRow parses one tab row back into a daily row. Malformed numeric
// cells read as zero so one bad row never poisons an aggregation.
func CellsToRow(cells []string) (schema.DailyRow, error) {
	if len(cells) < 2 || cells[0] == "" || cells[1] == "" {
		return schema.DailyRow{}, fmt.Errorf("daily row needs at least username and date, got %d cells", len(cells))
	}
	return schema.DailyRow{
		Username:            cells[0],
		Date:                cells[1],
		Commits:             cellInt(cells, 2),
		PRsOpened:           cellInt(cells, 3),
		PRsMerged:           cellInt(cells, 4),
		IssuesOpened:        cellInt(cells, 5),
		IssueComments:       cellInt(cells, 6),
		ReviewCommentsGiven: cellInt(cells, 7),
		LinesAdded:          cellInt(cells, 8),
		LinesDeleted:        cellInt(cells, 9),
		AvgMergeTime:        cellFloat(cells, 10),
		RejectionRate:       cellFloat(cells, 11),
		LastUpdated:         cell(cells, 12),
	}, nil
}

// UpsertDayRows merges daily rows into the ledger keyed by username and date,
// then restores the canonical sort order.
func UpsertDayRows(ctx context.Context, store contract.TabularStore, rows []schema.DailyRow) error {
	if len(rows) == 0 {
		return nil
	}
	if err := store.EnsureTab(ctx, schema.TabRawMetrics, schema.DailyHeaders); err != nil {
		return err
	}
	cells := make([][]string, len(rows))
	for i, row := range rows {
		cells[i] = RowToCells(row)
	}
	if err := store.UpsertRows(ctx, schema.TabRawMetrics, dayKeyColumns, cells); err != nil {
		return err
	}
	return SortTab(ctx, store)
}

// SortTab rewrites the ledger in canonical order: date descending with
// username ascending (case-insensitive) as tiebreak. Two stable passes,
// secondary key first, so the secondary order survives within equal dates.
// Rows too short to carry both key cells (trimmed by the Sheets values API or
// hand-edited) sort last instead of panicking.
func SortTab(ctx context.Context, store contract.TabularStore) error {
	grid, err := store.ReadAll(ctx, schema.TabRawMetrics)
	if err != nil {
		return err
	}
	if len(grid) < 3 {
		return nil // nothing to reorder
	}
	hasKeys := func(row []string) bool { return len(row) > 1 }
	data := grid[1:]
	sort.SliceStable(data, func(i, j int) bool {
		if !hasKeys(data[i]) || !hasKeys(data[j]) {
			return hasKeys(data[i])
		}
		return strings.ToLower(data[i][0]) < strings.ToLower(data[j][0])
	})
	sort.SliceStable(data, func(i, j int) bool {
		if !hasKeys(data[i]) || !hasKeys(data[j]) {
			return hasKeys(data[i])
		}
		return data[i][1] > data[j][1] // date descending
	})
	return store.ClearAndWrite(ctx, schema.TabRawMetrics, grid[0], data)
}

// ReadAllRows returns every parseable ledger row. Rows that cannot be parsed
// are skipped.
func ReadAllRows(ctx context.Context, store contract.TabularStore) ([]schema.DailyRow, error) {
	grid, err := store.ReadAll(ctx, schema.TabRawMetrics)
	if err != nil {
		return nil, err
	}
	var rows []schema.DailyRow
	for i, cells := range grid {
		if i == 0 {
			continue
		}
		row, err := CellsToRow(cells)
		if err != nil {
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// ReadRange returns ledger rows whose date falls within [start, end], both
// inclusive, in YYYY-MM-DD form. Lexicographic comparison is date order.
func ReadRange(ctx context.Context, store contract.TabularStore, start, end string) ([]schema.DailyRow, error) {
	all, err := ReadAllRows(ctx, store)
	if err != nil {
		return nil, err
	}
	var rows []schema.DailyRow
	for _, row := range all {
		if row.Date >= start && row.Date <= end {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

// formatFloat renders a derived value with up to two decimals, trimming
// trailing zeros so whole numbers read clean.
func formatFloat(v float64) string {
	s := strconv.FormatFloat(v, 'f', 2, 64)
	s = strings.TrimRight(s, "0")
	return strings.TrimRight(s, ".")
}

func cell(cells []string, idx int) string {
	if idx < len(cells) {
		return cells[idx]
	}
	return ""
}

func cellInt(cells []string, idx int) int {
	n, err := strconv.Atoi(strings.TrimSpace(cell(cells, idx)))
	if err != nil {
		return 0
	}
	return n
}

func cellFloat(cells []string, idx int) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(cell(cells, idx)), 64)
	if err != nil {
		return 0
	}
	return f
}
