package cmd

import (
	"fmt"
	"io"
	"sort"

	"github.com/killallgit/wortschatz-api/internal/database"
	"github.com/spf13/cobra"
)

// migrateCmd represents the migrate command
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the library schema",
	Long: `Manage the database tables of the Wortschatz API.

The server migrates on startup; these subcommands run the same step
by hand or inspect the result.

Available subcommands:
  up      - Create or update the transcript and vocabulary tables
  down    - Drop every table (requires --yes)
  status  - Show which tables exist`,
}

// migrateUpCmd applies the schema
var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Create or update tables",
	RunE:  runMigrateUp,
}

// migrateDownCmd drops the schema
var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Drop all tables",
	Long: `Drop the transcript and vocabulary tables.

All stored transcripts and vocabulary words are lost. Audio files in
the library directory are left on disk.`,
	RunE: runMigrateDown,
}

// migrateStatusCmd shows table status
var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show table status",
	RunE:  runMigrateStatus,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateDownCmd)
	migrateCmd.AddCommand(migrateStatusCmd)

	migrateDownCmd.Flags().Bool("yes", false, "confirm dropping all tables")
	migrateCmd.PersistentFlags().Bool("dry-run", false, "show what would be done without making changes")
}

// openDatabase loads config and connects
func openDatabase(cmd *cobra.Command) (*database.DB, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	db, err := database.Initialize(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return db, nil
}

func runMigrateUp(cmd *cobra.Command, args []string) error {
	db, err := openDatabase(cmd)
	if err != nil {
		return err
	}
	defer db.Close()
	return migrateUp(cmd.OutOrStdout(), db, dryRun(cmd))
}

func runMigrateDown(cmd *cobra.Command, args []string) error {
	confirmed, _ := cmd.Flags().GetBool("yes")
	if !confirmed && !dryRun(cmd) {
		return fmt.Errorf("refusing to drop tables without --yes")
	}

	db, err := openDatabase(cmd)
	if err != nil {
		return err
	}
	defer db.Close()
	return migrateDown(cmd.OutOrStdout(), db, dryRun(cmd))
}

func runMigrateStatus(cmd *cobra.Command, args []string) error {
	db, err := openDatabase(cmd)
	if err != nil {
		return err
	}
	defer db.Close()
	printStatus(cmd.OutOrStdout(), db)
	return nil
}

func dryRun(cmd *cobra.Command) bool {
	v, _ := cmd.Flags().GetBool("dry-run")
	return v
}

func migrateUp(out io.Writer, db *database.DB, dry bool) error {
	if dry {
		fmt.Fprintln(out, "Dry run mode - no changes will be made")
		printStatus(out, db)
		return nil
	}
	if err := db.Migrate(); err != nil {
		return err
	}
	fmt.Fprintln(out, "Migrations applied")
	printStatus(out, db)
	return nil
}

func migrateDown(out io.Writer, db *database.DB, dry bool) error {
	if dry {
		fmt.Fprintln(out, "Dry run mode - no changes will be made")
		printStatus(out, db)
		return nil
	}
	if err := db.DropAll(); err != nil {
		return err
	}
	fmt.Fprintln(out, "All tables dropped")
	return nil
}

func printStatus(out io.Writer, db *database.DB) {
	status := db.TableStatus()
	names := make([]string, 0, len(status))
	for name := range status {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		state := "missing"
		if status[name] {
			state = "present"
		}
		fmt.Fprintf(out, "  %-20s %s\n", name, state)
	}
}
