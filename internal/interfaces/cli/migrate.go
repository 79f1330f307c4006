package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/turtacn/HSCode-Intelligence/internal/infrastructure/database/postgres"
	"github.com/turtacn/HSCode-Intelligence/pkg/errors"
)

type migrateOptions struct {
	path        string
	databaseURL string
}

// NewMigrateCmd creates the `hscode migrate` command group for managing
// database schema migrations.
func NewMigrateCmd() *cobra.Command {
	opts := &migrateOptions{}

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database schema migrations",
		Long: `Manage the PostgreSQL schema using versioned migration files.

The database connection is taken from the loaded configuration unless
--database-url is given explicitly.`,
	}

	cmd.PersistentFlags().StringVar(&opts.path, "path", "migrations", "directory containing migration files")
	cmd.PersistentFlags().StringVar(&opts.databaseURL, "database-url", "", "database URL override (postgres://...)")

	cmd.AddCommand(newMigrateUpCmd(opts))
	cmd.AddCommand(newMigrateDownCmd(opts))
	cmd.AddCommand(newMigrateStatusCmd(opts))
	cmd.AddCommand(newMigrateForceCmd(opts))

	return cmd
}

func newMigrateUpCmd(opts *migrateOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dbURL, err := resolveDatabaseURL(cmd, opts)
			if err != nil {
				return err
			}
			if err := postgres.RunMigrations(dbURL, sourceURL(opts.path)); err != nil {
				return err
			}
			cmd.Println("migrations applied")
			return nil
		},
	}
}

func newMigrateDownCmd(opts *migrateOptions) *cobra.Command {
	var steps int

	cmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dbURL, err := resolveDatabaseURL(cmd, opts)
			if err != nil {
				return err
			}
			if err := postgres.RollbackMigrations(dbURL, sourceURL(opts.path), steps); err != nil {
				return err
			}
			cmd.Printf("rolled back %d migration(s)\n", steps)
			return nil
		},
	}

	cmd.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")
	return cmd
}

func newMigrateStatusCmd(opts *migrateOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the current migration version",
		RunE: func(cmd *cobra.Command, args []string) error {
			dbURL, err := resolveDatabaseURL(cmd, opts)
			if err != nil {
				return err
			}
			version, dirty, err := postgres.MigrationStatus(dbURL, sourceURL(opts.path))
			if err != nil {
				return err
			}
			if version == 0 {
				cmd.Println("no migrations applied")
				return nil
			}
			state := "clean"
			if dirty {
				state = "dirty"
			}
			cmd.Printf("version: %d (%s)\n", version, state)
			return nil
		},
	}
}

func newMigrateForceCmd(opts *migrateOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "force <version>",
		Short: "Force the migration version without running migrations",
		Long: `Force the recorded migration version. Use this to recover from a
dirty migration state after manually fixing the schema.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var version int
			if _, err := fmt.Sscanf(args[0], "%d", &version); err != nil {
				return errors.InvalidParam(fmt.Sprintf("invalid version %q", args[0]))
			}
			dbURL, err := resolveDatabaseURL(cmd, opts)
			if err != nil {
				return err
			}
			if err := postgres.ForceMigrationVersion(dbURL, sourceURL(opts.path), version); err != nil {
				return err
			}
			cmd.Printf("forced version to %d\n", version)
			return nil
		},
	}
}

// resolveDatabaseURL prefers the --database-url flag and falls back to the
// connection settings in the loaded configuration.
func resolveDatabaseURL(cmd *cobra.Command, opts *migrateOptions) (string, error) {
	if opts.databaseURL != "" {
		return opts.databaseURL, nil
	}
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return "", err
	}
	if cliCtx.Config == nil {
		return "", errors.InvalidState("no configuration loaded; pass --database-url")
	}
	return postgres.BuildDSN(cliCtx.Config.Database), nil
}

// sourceURL converts a local directory path into a golang-migrate source URL.
func sourceURL(path string) string {
	if strings.Contains(path, "://") {
		return path
	}
	return "file://" + path
}

//Personal.AI order the ending
