package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/password-manager-in-go/pkg/db"
)

// dbMigrateCmd represents the db migrate command
var dbMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create and/or upgrade the database schema",
	Long: `Create and/or upgrade the database schema.

This command runs all pending database migrations. The migrations are
embedded in the binary; use --path to run them from a directory instead.

Example:
  passmgrctl db migrate
  passmgrctl db migrate --path db/migrations`,
	Run: func(cmd *cobra.Command, args []string) {
		path, _ := cmd.Flags().GetString("path")

		if err := runMigrations(path); err != nil {
			fmt.Fprintf(os.Stderr, "Migration failed: %v\n", err)
			os.Exit(1)
		}
	},
}

var dbMigrateDownCmd = &cobra.Command{
	Use:   "down [steps]",
	Short: "Rollback database migrations",
	Long: `Rollback database migrations.

This command rolls back the specified number of migrations (default: 1).

Example:
  passmgrctl db down      # Rollback 1 migration
  passmgrctl db down 2    # Rollback 2 migrations`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		path, _ := cmd.Flags().GetString("path")

		steps := 1
		if len(args) > 0 {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				fmt.Fprintf(os.Stderr, "Invalid steps %q: %v\n", args[0], err)
				os.Exit(1)
			}
			steps = n
		}

		if err := runMigrationsDown(path, steps); err != nil {
			fmt.Fprintf(os.Stderr, "Rollback failed: %v\n", err)
			os.Exit(1)
		}
	},
}

var dbMigrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show current migration version",
	Long:  `Show the current database migration version.`,
	Run: func(cmd *cobra.Command, args []string) {
		path, _ := cmd.Flags().GetString("path")

		if err := showMigrationStatus(path); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to get status: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	dbCmd.AddCommand(dbMigrateCmd)
	dbCmd.AddCommand(dbMigrateDownCmd)
	dbCmd.AddCommand(dbMigrateStatusCmd)
	dbCmd.PersistentFlags().String("path", "", "Read migrations from this directory instead of the embedded files")
}

func runMigrations(path string) error {
	m, err := db.NewMigrator(db.URL(), path)
	if err != nil {
		return err
	}
	defer func() { _ = m.Close() }()

	applied, err := m.Up()
	if err != nil {
		return err
	}
	if !applied {
		fmt.Println("No migrations to run - database is up to date")
		return nil
	}

	version, _, _ := m.Version()
	fmt.Printf("Migrated to version: %d\n", version)
	return nil
}

func runMigrationsDown(path string, steps int) error {
	m, err := db.NewMigrator(db.URL(), path)
	if err != nil {
		return err
	}
	defer func() { _ = m.Close() }()

	fmt.Printf("Rolling back %d migration(s)...\n", steps)

	if err := m.Down(steps); err != nil {
		return err
	}

	version, _, err := m.Version()
	if errors.Is(err, db.ErrNoVersion) {
		fmt.Println("All migrations rolled back")
		return nil
	}
	fmt.Printf("Rolled back to version: %d\n", version)
	return nil
}

func showMigrationStatus(path string) error {
	m, err := db.NewMigrator(db.URL(), path)
	if err != nil {
		return err
	}
	defer func() { _ = m.Close() }()

	version, dirty, err := m.Version()
	if err != nil {
		if errors.Is(err, db.ErrNoVersion) {
			fmt.Println("No migrations have been applied yet")
			return nil
		}
		return err
	}

	fmt.Printf("Current version: %d\n", version)
	if dirty {
		fmt.Println("Warning: Database is in a dirty state")
	}
	return nil
}
