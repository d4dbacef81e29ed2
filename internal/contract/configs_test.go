package contract

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cohortpulse/cohortpulse/schema"
)

func validInput() *ConfigRawInput {
	return &ConfigRawInput{
		StoreBackend: "memory",
		Output:       "text",
		Precision:    1,
		Limit:        DefaultResultLimit,
		Color:        "yes",
	}
}

func TestProcessAndValidate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*ConfigRawInput)
		expectError string
	}{
		{
			name:   "valid minimal config",
			mutate: func(in *ConfigRawInput) {},
		},
		{
			name:        "invalid store backend",
			mutate:      func(in *ConfigRawInput) { in.StoreBackend = "oracle" },
			expectError: "invalid store backend",
		},
		{
			name:        "sheets backend requires sheet id",
			mutate:      func(in *ConfigRawInput) { in.StoreBackend = "sheets" },
			expectError: "sheet-id is required",
		},
		{
			name: "sheets backend with sheet id",
			mutate: func(in *ConfigRawInput) {
				in.StoreBackend = "sheets"
				in.SheetID = "abc123"
			},
		},
		{
			name:        "zero limit rejected",
			mutate:      func(in *ConfigRawInput) { in.Limit = 0 },
			expectError: "limit must be greater than 0",
		},
		{
			name:        "limit above maximum rejected",
			mutate:      func(in *ConfigRawInput) { in.Limit = MaxResultLimit + 1 },
			expectError: "limit must be greater than 0",
		},
		{
			name:        "precision out of range",
			mutate:      func(in *ConfigRawInput) { in.Precision = 3 },
			expectError: "precision must be 1 or 2",
		},
		{
			name:        "invalid output mode",
			mutate:      func(in *ConfigRawInput) { in.Output = "xml" },
			expectError: "invalid output format",
		},
		{
			name:        "invalid color value",
			mutate:      func(in *ConfigRawInput) { in.Color = "maybe" },
			expectError: "invalid --color value",
		},
		{
			name:        "malformed date",
			mutate:      func(in *ConfigRawInput) { in.Date = "03/02/2026" },
			expectError: "invalid date",
		},
		{
			name: "start after end rejected",
			mutate: func(in *ConfigRawInput) {
				in.Start = "2026-03-10"
				in.End = "2026-03-01"
			},
			expectError: "cannot be after end date",
		},
		{
			name:        "negative sleep rejected",
			mutate:      func(in *ConfigRawInput) { in.Sleep = -1 },
			expectError: "sleep must not be negative",
		},
		{
			name:        "base repo without slash rejected",
			mutate:      func(in *ConfigRawInput) { in.BaseRepos = "justaname" },
			expectError: "invalid base repo",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validInput()
			tt.mutate(input)

			var cfg Config
			err := ProcessAndValidate(&cfg, input)
			if tt.expectError != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectError)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestProcessAndValidatePopulatesConfig(t *testing.T) {
	input := validInput()
	input.GitHubToken = "  token  "
	input.Date = "2026-03-02"
	input.Start = "2026-02-23"
	input.End = "2026-03-02"
	input.Sleep = 3
	input.BaseRepos = "school/alpha, school/beta"
	input.Color = "no"

	var cfg Config
	require.NoError(t, ProcessAndValidate(&cfg, input))

	assert.Equal(t, "token", cfg.GitHubToken)
	assert.Equal(t, schema.MemoryBackend, cfg.StoreBackend)
	assert.Equal(t, "2026-03-02", cfg.Date)
	assert.Equal(t, "2026-02-23", cfg.StartDate)
	assert.Equal(t, "2026-03-02", cfg.EndDate)
	assert.Equal(t, 3*time.Second, cfg.BackfillSleep)
	assert.Equal(t, []string{"school/alpha", "school/beta"}, cfg.BaseRepos)
	assert.False(t, cfg.UseColors)
}

func TestProcessAndValidateDefaultsEndDateToToday(t *testing.T) {
	input := validInput()

	var cfg Config
	require.NoError(t, ProcessAndValidate(&cfg, input))

	today := time.Now().UTC().Format(schema.DateFormat)
	assert.Equal(t, today, cfg.Date)
	assert.Equal(t, today, cfg.EndDate)
	assert.Empty(t, cfg.StartDate)
}

func TestValidateStoreConnect(t *testing.T) {
	tests := []struct {
		name        string
		backend     schema.StoreBackend
		connStr     string
		expectError bool
	}{
		{"mysql needs connection string", schema.MySQLBackend, "", true},
		{"mysql needs tcp host", schema.MySQLBackend, "user:pass@localhost/db", true},
		{"mysql valid", schema.MySQLBackend, "user:pass@tcp(localhost:3306)/db", false},
		{"postgres needs connection string", schema.PostgreSQLBackend, "", true},
		{"postgres needs host", schema.PostgreSQLBackend, "dbname=x", true},
		{"postgres keyword form valid", schema.PostgreSQLBackend, "host=localhost dbname=x", false},
		{"postgres url form valid", schema.PostgreSQLBackend, "postgres://localhost/x", false},
		{"sqlite needs nothing", schema.SQLiteBackend, "", false},
		{"memory needs nothing", schema.MemoryBackend, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStoreConnect(tt.backend, tt.connStr)
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestParseBoolString(t *testing.T) {
	for _, s := range []string{"yes", "true", "1", "on", "", "YES"} {
		v, err := ParseBoolString(s)
		require.NoError(t, err, s)
		assert.True(t, v, s)
	}
	for _, s := range []string{"no", "false", "0", "off", "No"} {
		v, err := ParseBoolString(s)
		require.NoError(t, err, s)
		assert.False(t, v, s)
	}
	_, err := ParseBoolString("maybe")
	assert.Error(t, err)
}
