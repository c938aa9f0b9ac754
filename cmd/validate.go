// =============================================================================
// SEPA Direct Debit Builder - Validate Command
// =============================================================================
//
// This file defines the 'validate' command, which loads every creditor
// profile and reports configuration problems without processing any file.
//
// COMMAND USAGE:
//   sepadd validate
//
// =============================================================================

package cmd

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/sepa-direct-debit/internal/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate creditor profiles without processing files",
	Long: `The validate command loads the main configuration and every creditor
profile, then checks each profile: the creditor block must be accepted by the
document engine, file patterns must be valid globs, and every required
payment field must be mapped to a column or a static value.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		mainConfig, logger, err := loadEnvironment()
		if err != nil {
			return err
		}
		return runValidate(mainConfig, logger, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

// runValidate prints the problems of every profile and fails when any
// profile has one.
func runValidate(mainConfig *config.MainConfig, logger *slog.Logger, out io.Writer) error {
	profiles, err := config.LoadProfiles(mainConfig.ProfilesDir)
	if err != nil {
		return fmt.Errorf("failed to load creditor profiles: %w", err)
	}

	if len(profiles) == 0 {
		return fmt.Errorf("no creditor profiles found in %s", mainConfig.ProfilesDir)
	}

	invalid := 0
	for _, profile := range profiles {
		problems := profile.Validate()
		if len(problems) == 0 {
			fmt.Fprintf(out, "  ✓ %s (%s)\n", profile.ProfileCode, profile.ProfileName)
			continue
		}

		invalid++
		fmt.Fprintf(out, "  ✗ %s (%s)\n", profile.ProfileCode, profile.ProfileName)
		for _, problem := range problems {
			fmt.Fprintf(out, "      - %v\n", problem)
		}
		logger.Debug("profile invalid", "profile", profile.ProfileCode, "problems", len(problems))
	}

	if invalid > 0 {
		return fmt.Errorf("%d of %d profile(s) invalid", invalid, len(profiles))
	}

	fmt.Fprintf(out, "All %d profile(s) are valid\n", len(profiles))
	return nil
}
