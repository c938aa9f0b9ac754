// =============================================================================
// SEPA Direct Debit Builder - Verify Command
// =============================================================================
//
// This file defines the 'verify' command, which checks an existing pain.008
// file against the matching XSD through xmllint.
//
// COMMAND USAGE:
//   sepadd verify <file.xml> [--schema-version 2|3]
//
// Without --schema-version the version is taken from the document's
// namespace.
//
// =============================================================================

package cmd

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/sepa-direct-debit/internal/xsd"
	"github.com/ginjaninja78/sepa-direct-debit/pkg/sepadd"
)

var schemaVersion int

var verifyCmd = &cobra.Command{
	Use:   "verify <file.xml>",
	Short: "Check a pain.008 file against its XSD",
	Args:  cobra.ExactArgs(1),

	RunE: func(cmd *cobra.Command, args []string) error {
		mainConfig, logger, err := loadEnvironment()
		if err != nil {
			return err
		}

		validator := xsd.NewXMLLint(mainConfig.XMLLintPath, logger)
		return runVerify(cmd.Context(), validator, mainConfig.SchemaDir, args[0], schemaVersion, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(verifyCmd)

	verifyCmd.Flags().IntVar(
		&schemaVersion,
		"schema-version",
		0,
		"pain.008 version (2 or 3); detected from the namespace when omitted",
	)
}

// runVerify validates one document file and fails when it does not match.
func runVerify(ctx context.Context, validator xsd.Validator, schemaDir, path string, version int, out io.Writer) error {
	document, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read document: %w", err)
	}

	if version == 0 {
		version = detectVersion(document)
	}
	if version != sepadd.Version2 && version != sepadd.Version3 {
		return fmt.Errorf("unsupported schema version %d", version)
	}

	schemaPath := filepath.Join(schemaDir, sepadd.SchemaFile(version))

	result, err := validator.Validate(ctx, document, schemaPath)
	if err != nil {
		return err
	}

	if !result.Valid {
		fmt.Fprintf(out, "%s does not match %s:\n", path, filepath.Base(schemaPath))
		for _, problem := range result.Problems {
			fmt.Fprintf(out, "  %s\n", problem)
		}
		return fmt.Errorf("%s is invalid", filepath.Base(path))
	}

	fmt.Fprintf(out, "%s matches %s\n", path, filepath.Base(schemaPath))
	return nil
}

// detectVersion returns the pain.008 version whose namespace the document
// declares, or the default version.
func detectVersion(document []byte) int {
	for _, version := range []int{sepadd.Version3, sepadd.Version2} {
		if bytes.Contains(document, []byte(`"`+sepadd.Namespace(version)+`"`)) {
			return version
		}
	}
	return sepadd.DefaultVersion
}
