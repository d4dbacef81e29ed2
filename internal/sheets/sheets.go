// Package sheets implements the tabular store contract against the Google
// Sheets API, which is the default production backend.
package sheets

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/cohortpulse/cohortpulse/internal/contract"
	"github.com/cohortpulse/cohortpulse/internal/tabstore"
	"github.com/cohortpulse/cohortpulse/schema"
)

// Store is a Google Sheets backed tabular store. One spreadsheet holds all
// tabs; tab titles map one-to-one to store tab names.
type Store struct {
	svc     *sheetsapi.Service
	sheetID string

	mu     sync.Mutex
	titles map[string]bool // known tab titles, refreshed lazily
}

var _ contract.TabularStore = (*Store)(nil)

// ClientOptionsFromEnv resolves service account credentials from the
// environment. GOOGLE_APPLICATION_CREDENTIALS_JSON may hold either inline
// JSON or a file path; GOOGLE_APPLICATION_CREDENTIALS is the fallback. An
// empty result defers to application default credentials.
func ClientOptionsFromEnv() []option.ClientOption {
	creds := strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS_JSON"))
	if creds == "" {
		creds = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}
	if creds == "" {
		return nil
	}
	if strings.HasPrefix(creds, "{") {
		return []option.ClientOption{option.WithCredentialsJSON([]byte(creds))}
	}
	return []option.ClientOption{option.WithCredentialsFile(creds)}
}

// Open connects to the spreadsheet and verifies it is reachable.
func Open(ctx context.Context, sheetID string) (*Store, error) {
	opts := append(ClientOptionsFromEnv(), option.WithScopes(sheetsapi.SpreadsheetsScope))
	svc, err := sheetsapi.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets client: %w", err)
	}
	store := &Store{svc: svc, sheetID: sheetID, titles: make(map[string]bool)}
	if err := store.refreshTitles(ctx); err != nil {
		return nil, fmt.Errorf("failed to open spreadsheet %s: %w", sheetID, err)
	}
	return store, nil
}

// ReadAll returns every row of a tab including the header row. A tab that
// does not exist in the spreadsheet reads as empty.
func (s *Store) ReadAll(ctx context.Context, tab string) ([][]string, error) {
	ok, err := s.hasTab(ctx, tab)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	resp, err := s.svc.Spreadsheets.Values.Get(s.sheetID, quoteTab(tab)).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read tab %q: %w", tab, err)
	}
	grid := make([][]string, 0, len(resp.Values))
	for _, row := range resp.Values {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = fmt.Sprint(v)
		}
		grid = append(grid, cells)
	}
	return grid, nil
}

// UpsertRows merges rows into a tab keyed by the given column indexes. The
// whole tab is read once, merged in memory and written back in one batch so
// per-row quota cost stays flat.
func (s *Store) UpsertRows(ctx context.Context, tab string, keyColumns []int, rows [][]string) error {
	existing, err := s.ReadAll(ctx, tab)
	if err != nil {
		return err
	}
	merged := tabstore.MergeRows(existing, keyColumns, rows)
	return s.writeAll(ctx, tab, merged)
}

// ClearAndWrite replaces the entire tab with the given header and rows.
func (s *Store) ClearAndWrite(ctx context.Context, tab string, headers []string, rows [][]string) error {
	if err := s.addTabIfMissing(ctx, tab); err != nil {
		return err
	}
	grid := make([][]string, 0, len(rows)+1)
	grid = append(grid, headers)
	grid = append(grid, rows...)
	return s.writeAll(ctx, tab, grid)
}

// EnsureTab creates the tab and its header row when missing or empty.
func (s *Store) EnsureTab(ctx context.Context, tab string, headers []string) error {
	if err := s.addTabIfMissing(ctx, tab); err != nil {
		return err
	}
	existing, err := s.ReadAll(ctx, tab)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}
	return s.writeAll(ctx, tab, [][]string{headers})
}

// ReadConfig returns the Config tab as a key-value map, skipping the header.
func (s *Store) ReadConfig(ctx context.Context) (map[string]string, error) {
	grid, err := s.ReadAll(ctx, schema.TabConfig)
	if err != nil {
		return nil, err
	}
	config := make(map[string]string)
	for i, row := range grid {
		if i == 0 || len(row) < 2 {
			continue
		}
		config[row[0]] = row[1]
	}
	return config, nil
}

// WriteConfigValue updates or appends a single Config tab entry.
func (s *Store) WriteConfigValue(ctx context.Context, key, value string) error {
	return s.UpsertRows(ctx, schema.TabConfig, []int{0}, [][]string{{key, value}})
}

// Close is a no-op; the sheets client holds no persistent connection.
func (s *Store) Close() error { return nil }

// writeAll clears the tab and writes the full grid in one update call.
func (s *Store) writeAll(ctx context.Context, tab string, grid [][]string) error {
	if err := s.addTabIfMissing(ctx, tab); err != nil {
		return err
	}
	if _, err := s.svc.Spreadsheets.Values.Clear(s.sheetID, quoteTab(tab), &sheetsapi.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to clear tab %q: %w", tab, err)
	}
	if len(grid) == 0 {
		return nil
	}
	values := make([][]any, len(grid))
	for i, row := range grid {
		cells := make([]any, len(row))
		for j, c := range row {
			cells[j] = c
		}
		values[i] = cells
	}
	_, err := s.svc.Spreadsheets.Values.
		Update(s.sheetID, quoteTab(tab)+"!A1", &sheetsapi.ValueRange{Values: values}).
		ValueInputOption("RAW").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to write tab %q: %w", tab, err)
	}
	return nil
}

func (s *Store) hasTab(ctx context.Context, tab string) (bool, error) {
	s.mu.Lock()
	known := s.titles[tab]
	s.mu.Unlock()
	if known {
		return true, nil
	}
	if err := s.refreshTitles(ctx); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.titles[tab], nil
}

func (s *Store) addTabIfMissing(ctx context.Context, tab string) error {
	ok, err := s.hasTab(ctx, tab)
	if err != nil || ok {
		return err
	}
	req := &sheetsapi.BatchUpdateSpreadsheetRequest{
		Requests: []*sheetsapi.Request{{
			AddSheet: &sheetsapi.AddSheetRequest{
				Properties: &sheetsapi.SheetProperties{Title: tab},
			},
		}},
	}
	if _, err := s.svc.Spreadsheets.BatchUpdate(s.sheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to create tab %q: %w", tab, err)
	}
	s.mu.Lock()
	s.titles[tab] = true
	s.mu.Unlock()
	return nil
}

func (s *Store) refreshTitles(ctx context.Context) error {
	meta, err := s.svc.Spreadsheets.Get(s.sheetID).Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.titles = make(map[string]bool, len(meta.Sheets))
	for _, sheet := range meta.Sheets {
		if sheet.Properties != nil {
			s.titles[sheet.Properties.Title] = true
		}
	}
	return nil
}

// quoteTab wraps a tab title in single quotes for A1 notation.
func quoteTab(tab string) string {
	return "'" + strings.ReplaceAll(tab, "'", "''") + "'"
}
