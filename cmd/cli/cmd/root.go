// Package cmd provides the CLI commands for cleanquote.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"cleanquote/internal/config"
	"cleanquote/internal/logging"
)

// Version is set at build time with -ldflags "-X cleanquote/cmd/cli/cmd.Version=..."
var Version = "0.1.0"

var (
	cfgFile string
	verbose bool

	cfg *config.Config
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "cleanquote",
	Short: "Quote recurring building-cleaning services",
	Long: `cleanquote prices photovoltaic, stairwell, glass and maintenance cleaning
from an administrator-maintained configuration, adds travel fees per city
and serves the result over HTTP.

Examples:
  cleanquote serve
  cleanquote quote request.json
  echo '{"service_category":"pv","pv_modules_count":15}' | cleanquote quote
  cleanquote validate pricing.hcl
  cleanquote export xlsx -o pricelist.xlsx`,
	SilenceUsage:      true,
	PersistentPreRunE: initConfig,
}

// Execute runs the CLI
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file, JSON or YAML (default: built-in defaults)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")

	rootCmd.AddCommand(versionCmd)
}

func initConfig(cmd *cobra.Command, args []string) error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}

	loaded, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	cfg = loaded

	// Initialize logging
	if verbose {
		cfg.Logging.Level = "debug"
	}
	if err := logging.Initialize(cfg.Logging); err != nil {
		return fmt.Errorf("initializing logging: %w", err)
	}
	return nil
}

// versionCmd prints version information
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "cleanquote version %s\n", Version)
	},
}
