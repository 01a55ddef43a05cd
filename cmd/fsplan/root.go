package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "fsplan",
	Short: "A filesystem mutation planning and execution tool",
	Long: `fsplan separates planning from execution for filesystem mutations.
Plans declare a sequence of operations (copy, move, create, delete, symlink)
in YAML; fsplan validates and applies them under a chosen execution policy,
including a transactional mode that rolls back on failure.`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(newApplyCommand())
	rootCmd.AddCommand(newValidateCommand())
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("fsplan version %s (commit: %s, built: %s)\n", version, commit, date)
	},
}
