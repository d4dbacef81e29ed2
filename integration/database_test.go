//go:build database

package integration

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/cohortpulse/cohortpulse/internal/ledger"
	"github.com/cohortpulse/cohortpulse/internal/tabstore"
	"github.com/cohortpulse/cohortpulse/schema"
)

// TestCohortpulseWithMySQL runs the store-only commands against a MySQL
// backend and round-trips ledger rows through the same database.
func TestCohortpulseWithMySQL(t *testing.T) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "mysql:8",
		ExposedPorts: []string{"3306:3306/tcp"},
		Env: map[string]string{
			"MYSQL_ROOT_PASSWORD": "secret123",
			"MYSQL_DATABASE":      "cohortpulse",
		},
		WaitingFor: wait.ForLog("port: 3306  MySQL Community Server").WithStartupTimeout(30 * time.Second),
	}
	mysqlC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = mysqlC.Terminate(ctx) }()

	host, err := mysqlC.Host(ctx)
	require.NoError(t, err)
	port, err := mysqlC.MappedPort(ctx, "3306")
	require.NoError(t, err)

	connStr := fmt.Sprintf("root:secret123@tcp(%s:%s)/cohortpulse?parseTime=true", host, port.Port())

	_ = os.Setenv("COHORTPULSE_STORE_BACKEND", "mysql")
	_ = os.Setenv("COHORTPULSE_STORE_CONNECT", connStr)
	defer func() { _ = os.Unsetenv("COHORTPULSE_STORE_BACKEND") }()
	defer func() { _ = os.Unsetenv("COHORTPULSE_STORE_CONNECT") }()

	_, err = runCommand(t, t.TempDir(), "leaderboard")
	require.NoError(t, err)

	_, err = runCommand(t, t.TempDir(), "alerts")
	require.NoError(t, err)

	verifyLedgerRoundTrip(t, ctx, schema.MySQLBackend, connStr)
}

// TestCohortpulseWithPostgres runs the same checks against PostgreSQL.
func TestCohortpulseWithPostgres(t *testing.T) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:18-alpine",
		ExposedPorts: []string{"5432:5432/tcp"},
		Env: map[string]string{
			"POSTGRES_HOST_AUTH_METHOD": "trust",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").WithStartupTimeout(30 * time.Second),
	}
	pgC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = pgC.Terminate(ctx) }()
	time.Sleep(5 * time.Second)

	host, err := pgC.Host(ctx)
	require.NoError(t, err)
	port, err := pgC.MappedPort(ctx, "5432")
	require.NoError(t, err)

	connStr := fmt.Sprintf("host=%s port=%s user=postgres dbname=postgres", host, port.Port())

	_ = os.Setenv("COHORTPULSE_STORE_BACKEND", "postgresql")
	_ = os.Setenv("COHORTPULSE_STORE_CONNECT", connStr)
	defer func() { _ = os.Unsetenv("COHORTPULSE_STORE_BACKEND") }()
	defer func() { _ = os.Unsetenv("COHORTPULSE_STORE_CONNECT") }()

	_, err = runCommand(t, t.TempDir(), "leaderboard")
	require.NoError(t, err)

	_, err = runCommand(t, t.TempDir(), "alerts")
	require.NoError(t, err)

	verifyLedgerRoundTrip(t, ctx, schema.PostgreSQLBackend, connStr)
}

// verifyLedgerRoundTrip writes daily rows through the SQL store and reads
// them back, confirming upsert semantics survive the backend.
func verifyLedgerRoundTrip(t *testing.T, ctx context.Context, backend schema.StoreBackend, connStr string) {
	store, err := tabstore.Open(backend, connStr)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	rows := []schema.DailyRow{
		{Username: "amy", Date: "2026-03-01", Commits: 2, LinesAdded: 30, LastUpdated: "2026-03-01T20:00:00Z"},
		{Username: "ben", Date: "2026-03-01", Commits: 1, LastUpdated: "2026-03-01T20:00:00Z"},
	}
	require.NoError(t, ledger.UpsertDayRows(ctx, store, rows))

	// Re-upserting the same key overwrites instead of appending.
	rows[0].Commits = 5
	require.NoError(t, ledger.UpsertDayRows(ctx, store, rows[:1]))

	got, err := ledger.ReadAllRows(ctx, store)
	require.NoError(t, err)
	require.Len(t, got, 2)
	byUser := map[string]schema.DailyRow{got[0].Username: got[0], got[1].Username: got[1]}
	assert.Equal(t, 5, byUser["amy"].Commits)
	assert.Equal(t, 1, byUser["ben"].Commits)
}
