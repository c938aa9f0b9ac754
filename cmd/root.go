// =============================================================================
// SEPA Direct Debit Builder - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. The root command is
// the base command that all other commands are attached to.
//
// COBRA CLI STRUCTURE:
//   rootCmd (sepadd)
//   ├── buildCmd    (sepadd build)
//   ├── validateCmd (sepadd validate)
//   ├── verifyCmd   (sepadd verify)
//   └── versionCmd  (sepadd version)
//
// CONFIGURATION:
//   The root command is responsible for:
//   1. Setting up global flags (--config, --verbose)
//   2. Loading the main configuration for subcommands
//   3. Setting up logging
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/sepa-direct-debit/internal/config"
	"github.com/ginjaninja78/sepa-direct-debit/internal/observability"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the main configuration file.
// This can be overridden using the --config flag.
var cfgFile string

// verbose forces debug logging regardless of log_level.
var verbose bool

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "sepadd",
	Short: "SEPA Direct Debit Builder - Turn payment exports into pain.008 files",
	Long: `SEPA Direct Debit Builder reads payment exports (CSV or XLSX) from the
input directory and writes SEPA Direct Debit initiation files in the
pain.008.001.02 or pain.008.001.03 format, one per export.

Key Features:
  - One creditor profile per creditor, matched to files by name
  - Batching by sequence type and collection date
  - IBAN, BIC, amount and date validation per payment
  - Optional XSD validation through xmllint
  - Concurrent processing and automatic file archival

Example Usage:
  sepadd build                            # Process all files in the input directory
  sepadd build --config ./club.yaml       # Use a custom configuration file
  sepadd validate                         # Validate profiles without processing
  sepadd verify output/club.xml           # Check a document against its schema`,

	SilenceUsage:  true,
	SilenceErrors: true,

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"config.yaml",
		"Path to the main configuration file",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable debug logging",
	)
}

// loadEnvironment loads the main configuration and installs the logger it
// describes as the slog default.
func loadEnvironment() (*config.MainConfig, *slog.Logger, error) {
	mainConfig, err := config.LoadMainConfig(cfgFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load main config: %w", err)
	}

	level := mainConfig.LogLevel
	if verbose {
		level = "debug"
	}

	logger := observability.InitLogger(observability.LogConfig{
		Level:  level,
		Format: mainConfig.LogFormat,
	})

	logger.Debug("configuration loaded", "config", cfgFile)

	return mainConfig, logger, nil
}
