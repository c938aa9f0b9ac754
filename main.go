// =============================================================================
// SEPA Direct Debit Builder - Main Entry Point
// =============================================================================
//
// This is the main entry point for the sepadd CLI application. It delegates
// command execution to the cmd package.
//
// USAGE:
//   sepadd build       - Build pain.008 files from the input directory
//   sepadd validate    - Validate creditor profiles without processing
//   sepadd verify      - Check a pain.008 file against its XSD
//   sepadd version     - Display the application version
//
// ARCHITECTURE:
//   - cmd/           : CLI command definitions (Cobra)
//   - internal/      : Parsers, converter pipeline, config, validation
//   - pkg/sepadd     : The pain.008 document engine
//   - pkg/utils      : File management and reports
//   - profiles/      : Creditor profiles (YAML)
//   - schemas/       : pain.008 XSD files
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/sepa-direct-debit/cmd"
)

func main() {
	cmd.Execute()
}
