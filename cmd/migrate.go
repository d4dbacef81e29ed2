package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cohortpulse/cohortpulse/internal/contract"
	"github.com/cohortpulse/cohortpulse/internal/tabstore"
	"github.com/cohortpulse/cohortpulse/schema"
)

// migrateCmd runs database migrations for SQL store backends.
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run store schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions for SQL store backends.

Commands that open a SQL store migrate it to the latest version
automatically; this command exists for explicit control:
- Preparing a fresh database before the first run
- Rolling back schema changes
- Testing new features on specific schema versions

Only the sqlite, mysql, and postgresql backends have schemas to migrate.

Examples:
  # Migrate to latest version (default)
  cohortpulse migrate --store-backend sqlite --store-connect pulse.db

  # Rollback to initial state
  cohortpulse migrate --store-backend sqlite --store-connect pulse.db --target-version 0`,
	PreRunE: func(_ *cobra.Command, _ []string) error {
		backend := schema.StoreBackend(viper.GetString("store-backend"))
		connStr := viper.GetString("store-connect")
		if err := contract.ValidateStoreConnect(backend, connStr); err != nil {
			return err
		}
		cfg.StoreBackend = backend
		cfg.StoreConnect = connStr
		return nil
	},
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		if err := tabstore.MigrateTo(cfg.StoreBackend, cfg.StoreConnect, targetVersion); err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
	},
}
