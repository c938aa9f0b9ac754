// =============================================================================
// SEPA Direct Debit Builder - Version Command
// =============================================================================
//
// This file defines the 'version' command, which displays the application
// version and build information.
//
// COMMAND USAGE:
//   sepadd version
//
// OUTPUT:
//   SEPA Direct Debit Builder
//   Version:    1.0.0
//   Build Date: 2024-01-01
//   Go Version: go1.24.0
//   Schemas:    pain.008.001.02, pain.008.001.03
//
// =============================================================================

package cmd

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/sepa-direct-debit/pkg/sepadd"
)

// These variables are set at build time using ldflags.
// Example build command:
//   go build -ldflags "-X 'github.com/ginjaninja78/sepa-direct-debit/cmd.Version=1.0.0'"

// Version is the application version.
var Version = "1.0.0"

// BuildDate is the date the application was built.
var BuildDate = "unknown"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Display the application version",
	Long:  `Display the application version, build date, Go runtime version and supported schemas.`,
	Run: func(cmd *cobra.Command, args []string) {
		schemas := []string{
			strings.TrimSuffix(sepadd.SchemaFile(sepadd.Version2), ".xsd"),
			strings.TrimSuffix(sepadd.SchemaFile(sepadd.Version3), ".xsd"),
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "SEPA Direct Debit Builder")
		fmt.Fprintf(out, "Version:    %s\n", Version)
		fmt.Fprintf(out, "Build Date: %s\n", BuildDate)
		fmt.Fprintf(out, "Go Version: %s\n", runtime.Version())
		fmt.Fprintf(out, "Schemas:    %s\n", strings.Join(schemas, ", "))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
