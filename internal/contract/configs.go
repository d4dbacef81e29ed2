package contract

import (
	"fmt"
	"strings"
	"time"

	"github.com/cohortpulse/cohortpulse/schema"
)

// Default values for configuration.
const (
	DefaultResultLimit   = 50
	MaxResultLimit       = 1000
	DefaultPrecision     = 1
	DefaultBackfillSleep = 2 // seconds between backfilled days
)

// DateTimeFormat is the default timestamp representation.
var DateTimeFormat = time.RFC3339

// Config holds the validated runtime configuration for a run.
type Config struct {
	GitHubToken string
	SheetID     string

	StoreBackend schema.StoreBackend
	StoreConnect string

	// Date is the target day for daily/poll runs (UTC, YYYY-MM-DD).
	Date string

	// StartDate/EndDate bound backfills and custom leaderboard queries.
	StartDate string
	EndDate   string

	BackfillSleep time.Duration

	BaseRepos []string // optional override of the Config tab value

	Output      schema.OutputMode
	OutputFile  string
	Precision   int
	ResultLimit int
	UseColors   bool
	Width       int // terminal width override (0 = auto-detect)
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	GitHubToken string `mapstructure:"github-token"`
	SheetID     string `mapstructure:"sheet-id"`

	StoreBackend string `mapstructure:"store-backend"`
	StoreConnect string `mapstructure:"store-connect"`

	Date      string `mapstructure:"date"`
	Start     string `mapstructure:"start"`
	End       string `mapstructure:"end"`
	Sleep     int    `mapstructure:"sleep"`
	BaseRepos string `mapstructure:"base-repos"`

	Output     string `mapstructure:"output"`
	OutputFile string `mapstructure:"output-file"`
	Precision  int    `mapstructure:"precision"`
	Limit      int    `mapstructure:"limit"`
	Color      string `mapstructure:"color"`
	Width      int    `mapstructure:"width"`
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and populates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	cfg.GitHubToken = strings.TrimSpace(input.GitHubToken)
	cfg.SheetID = strings.TrimSpace(input.SheetID)
	cfg.StoreConnect = input.StoreConnect
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width

	// --- Store backend ---
	cfg.StoreBackend = schema.StoreBackend(strings.ToLower(input.StoreBackend))
	if _, ok := schema.ValidStoreBackends[cfg.StoreBackend]; !ok {
		return fmt.Errorf("invalid store backend '%s'. must be sheets, sqlite, mysql, postgresql, memory", input.StoreBackend)
	}
	if cfg.StoreBackend == schema.SheetsBackend && cfg.SheetID == "" {
		return fmt.Errorf("sheet-id is required when using the %s backend", schema.SheetsBackend)
	}
	if err := ValidateStoreConnect(cfg.StoreBackend, cfg.StoreConnect); err != nil {
		return err
	}

	// --- Result limit ---
	if input.Limit <= 0 || input.Limit > MaxResultLimit {
		return fmt.Errorf("limit must be greater than 0 and cannot exceed %d (received %d)", MaxResultLimit, input.Limit)
	}
	cfg.ResultLimit = input.Limit

	// --- Precision and output ---
	if input.Precision < 1 || input.Precision > 2 {
		return fmt.Errorf("precision must be 1 or 2 (received %d)", input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json", input.Output)
	}

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	// --- Dates ---
	today := time.Now().UTC().Format(schema.DateFormat)
	cfg.Date = today
	if input.Date != "" {
		if _, err := time.Parse(schema.DateFormat, input.Date); err != nil {
			return fmt.Errorf("invalid date '%s'. must be YYYY-MM-DD: %v", input.Date, err)
		}
		cfg.Date = input.Date
	}
	if input.Start != "" {
		if _, err := time.Parse(schema.DateFormat, input.Start); err != nil {
			return fmt.Errorf("invalid start date '%s'. must be YYYY-MM-DD: %v", input.Start, err)
		}
		cfg.StartDate = input.Start
	}
	cfg.EndDate = today
	if input.End != "" {
		if _, err := time.Parse(schema.DateFormat, input.End); err != nil {
			return fmt.Errorf("invalid end date '%s'. must be YYYY-MM-DD: %v", input.End, err)
		}
		cfg.EndDate = input.End
	}
	if cfg.StartDate != "" && cfg.StartDate > cfg.EndDate {
		return fmt.Errorf("start date (%s) cannot be after end date (%s)", cfg.StartDate, cfg.EndDate)
	}

	// --- Backfill sleep ---
	sleep := input.Sleep
	if sleep < 0 {
		return fmt.Errorf("sleep must not be negative (received %d)", sleep)
	}
	cfg.BackfillSleep = time.Duration(sleep) * time.Second

	// --- Base repo override ---
	cfg.BaseRepos = nil
	if input.BaseRepos != "" {
		for _, part := range strings.Split(input.BaseRepos, ",") {
			repo := strings.TrimSpace(part)
			if repo == "" {
				continue
			}
			if !strings.Contains(repo, "/") {
				return fmt.Errorf("invalid base repo '%s'. must be owner/name", repo)
			}
			cfg.BaseRepos = append(cfg.BaseRepos, repo)
		}
	}

	return nil
}

// ValidateStoreConnect validates the connection string for SQL-backed stores.
func ValidateStoreConnect(backend schema.StoreBackend, connStr string) error {
	switch backend {
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("store-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("store-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") && !strings.HasPrefix(connStr, "postgres://") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' or be a postgres:// URL")
		}
	}
	return nil
}

// ParseBoolString interprets yes/no style flag values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "true", "1", "on", "":
		return true, nil
	case "no", "false", "0", "off":
		return false, nil
	}
	return false, fmt.Errorf("expected yes/no/true/false/1/0, got %q", s)
}
