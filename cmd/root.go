/*
Copyright © 2023 dimas maulana dimasmaulana0305@gmail.com
*/

// Package cmd provides command-line interface commands for edmcli
package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/dimasma0305/edmcli/internal/log"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "edmcli",
	Short: "Bulk member management for EDM mailing groups",
	Long: `edmcli - command-line admin for EDM member groups

Import members from spreadsheets, browse and edit them page by page,
and manage the groups they belong to.

Features:
  • Spreadsheet import with per-row validation and retry
  • Paginated, filterable member listing
  • Inline status, email and mobile edits
  • Group management`,
	Example: `  # Create .edm/conf.yaml
  edmcli init --url https://edm.example.com/api

  # Import a sheet into group 3
  edmcli member import members.xlsx --group 3

  # Browse members interactively
  edmcli member browse

  # List groups
  edmcli group list`,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		// Enable debug mode if flag is set
		if debug, _ := cmd.Flags().GetBool("debug"); debug {
			log.SetDebugMode(true)
			log.Debug("Debug mode enabled")
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	// Add debug flag to root command
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
}
