// =============================================================================
// SEPA Direct Debit Builder - Shared Types
// =============================================================================
//
// This package contains shared types used across multiple modules to avoid
// import cycles. Types defined here are used by:
//   - csvparser
//   - xlsxparser
//   - converter
//
// =============================================================================

package types

// =============================================================================
// INPUT TABLE TYPES
// =============================================================================

// Table is a parsed payment file: one header per column and one Row per
// non-empty data line.
type Table struct {
	// SourceFile is the path of the file the table was read from.
	SourceFile string

	// Headers contains the column headers. Multi-line headers are already
	// merged, and empty headers are named Column_N.
	Headers []string

	// Rows contains the data rows in file order.
	Rows []Row
}

// Row is a single data line of a payment file.
type Row struct {
	// Number is the line (CSV) or row (XLSX) number in the source file,
	// starting at 1. Used for error reporting.
	Number int

	// Fields maps a column header to its trimmed cell value. Missing
	// trailing cells are present as empty strings.
	Fields map[string]string
}

// =============================================================================
// ROW ERRORS
// =============================================================================

// RowError records a row that could not be turned into a payment.
type RowError struct {
	// Row is the source row number.
	Row int `json:"row" yaml:"row"`

	// Field is the payment field that was rejected, when known.
	Field string `json:"field,omitempty" yaml:"field,omitempty"`

	// Message is a human-readable reason.
	Message string `json:"message" yaml:"message"`
}
