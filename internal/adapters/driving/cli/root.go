// Package cli provides the command-line interface for the vault
// service.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/XtremePossibility/sitemonkeys-ai-system/internal/logger"
)

var (
	verbose    bool
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "sitemonkeys",
	Short: "SiteMonkeys business validation vault service",
	Long: `Serves chat completions grounded in the SiteMonkeys business
intelligence vault. The vault is assembled from Google Drive, cached
in a key-value store, and injected into every completion as the
system prompt.`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to TOML config file")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
