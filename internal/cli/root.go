package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const rootLong = `sheetload reads the first worksheet of a spreadsheet, creates or widens a
table to hold its columns, and inserts every complete row in parallel batches.

Rows go to an embedded SQLite file unless a PostgreSQL server is configured
with --host, --port, --database, --user and --password (all five required).

Exit Codes:
  0  - Success
  1  - General error
  2  - CLI usage error (invalid arguments or flags)
  3  - Panic or unexpected system error
  10 - Invalid configuration or empty header row
  11 - Database connection failed
  12 - Table could not be created or altered
  13 - One or more batches failed to insert
  14 - Input missing, empty or unreadable`

var rootCmd = newRootCommand()

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "sheetload",
		Short:        "Load spreadsheet rows into a database table",
		Long:         rootLong,
		SilenceUsage: true,
	}
	// No shorthand, so -h stays free for --host.
	cmd.PersistentFlags().Bool("help", false, "Help for sheetload")
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output for all commands")

	cmd.AddCommand(newImportCommand())
	cmd.AddCommand(newVersionCommand())
	return cmd
}

// Execute runs the root command
func Execute() error {
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		printVersionInfo(os.Stdout)
		return nil
	}
	return rootCmd.Execute()
}

// getVerboseFlag safely retrieves the verbose flag value
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to get verbose flag: %v\n", err)
		return false
	}
	return verbose
}
