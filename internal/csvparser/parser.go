// =============================================================================
// SEPA Direct Debit Builder - CSV Parser Module
// =============================================================================
//
// This module is responsible for parsing CSV payment exports. Membership and
// billing systems export collections in many shapes, so the parser handles:
//   - Different delimiters (comma, semicolon, pipe, tab)
//   - Multi-line headers
//   - Custom data start rows
//   - Legacy single-byte encodings (ISO-8859-1, ISO-8859-15, Windows-1252)
//   - Quoted fields with embedded delimiters
//
// The result is a types.Table. Every row keeps its line number so that a
// rejected payment can be traced back to the source file.
//
// =============================================================================

package csvparser

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/ginjaninja78/sepa-direct-debit/internal/config"
	"github.com/ginjaninja78/sepa-direct-debit/internal/types"
)

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// ParseFile reads a CSV file and returns the parsed table.
//
// PARAMETERS:
//   - filePath: The path to the CSV file.
//   - settings: The CSV parsing settings from the creditor profile.
//
// RETURNS:
//   - The parsed table.
//   - An error if the file cannot be read or parsed.
func ParseFile(filePath string, settings config.CSVSettings) (*types.Table, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	table, err := Parse(file, settings)
	if err != nil {
		return nil, err
	}

	table.SourceFile = filePath
	return table, nil
}

// Parse reads CSV data from r.
//
// PARSING PROCESS:
//  1. Decode the input to UTF-8 according to the configured encoding
//  2. Configure the CSV reader with the configured delimiter
//  3. Read and merge header rows (for multi-line headers)
//  4. Read data rows starting from the configured data start row
//  5. Convert each row to a map of header -> value
func Parse(r io.Reader, settings config.CSVSettings) (*types.Table, error) {
	decoder, err := Decoder(settings.Encoding)
	if err != nil {
		return nil, err
	}

	csvReader := csv.NewReader(transform.NewReader(bufio.NewReader(r), decoder.NewDecoder()))
	configureReader(csvReader, settings)

	allRows, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}

	if len(allRows) == 0 {
		return nil, fmt.Errorf("CSV file is empty")
	}

	headers, err := extractHeaders(allRows, settings.HeaderRows)
	if err != nil {
		return nil, fmt.Errorf("failed to extract headers: %w", err)
	}

	startIndex := settings.DataStartRow - 1
	if startIndex < settings.HeaderRows {
		startIndex = settings.HeaderRows
	}

	return &types.Table{
		Headers: headers,
		Rows:    extractDataRows(allRows, headers, startIndex),
	}, nil
}

// Decoder returns the text encoding for an encoding name. An empty name
// means UTF-8. A UTF-8 byte order mark is removed.
func Decoder(name string) (encoding.Encoding, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "", "UTF-8", "UTF8":
		return unicode.UTF8BOM, nil
	case "ISO-8859-1", "LATIN1", "LATIN-1":
		return charmap.ISO8859_1, nil
	case "ISO-8859-15", "LATIN9", "LATIN-9":
		return charmap.ISO8859_15, nil
	case "WINDOWS-1252", "CP1252":
		return charmap.Windows1252, nil
	default:
		return nil, fmt.Errorf("unsupported encoding %q", name)
	}
}

// configureReader configures the CSV reader based on the settings.
func configureReader(reader *csv.Reader, settings config.CSVSettings) {
	switch settings.Delimiter {
	case "\\t", "\t", "tab", "TAB":
		reader.Comma = '\t'
	case "|", "pipe", "PIPE":
		reader.Comma = '|'
	case ";", "semicolon":
		reader.Comma = ';'
	default:
		if len(settings.Delimiter) > 0 {
			reader.Comma = rune(settings.Delimiter[0])
		} else {
			reader.Comma = ','
		}
	}

	// Exports often have ragged trailing columns.
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
}

// extractHeaders extracts and merges headers from the CSV.
//
// MULTI-LINE HEADER HANDLING:
//
//	Row 1: "Debtor", "", "Mandate", ""
//	Row 2: "Name", "IBAN", "Id", "Date"
//	Result: "Debtor Name", "IBAN", "Mandate Id", "Date"
func extractHeaders(allRows [][]string, headerRows int) ([]string, error) {
	if headerRows <= 0 {
		return nil, fmt.Errorf("header_rows must be at least 1")
	}

	if len(allRows) < headerRows {
		return nil, fmt.Errorf("file has fewer rows than header_rows setting")
	}

	if headerRows == 1 {
		return cleanHeaders(allRows[0]), nil
	}

	maxCols := 0
	for i := 0; i < headerRows; i++ {
		maxCols = max(maxCols, len(allRows[i]))
	}

	headers := make([]string, maxCols)
	for col := 0; col < maxCols; col++ {
		var parts []string

		for row := 0; row < headerRows; row++ {
			if col < len(allRows[row]) {
				if value := strings.TrimSpace(allRows[row][col]); value != "" {
					parts = append(parts, value)
				}
			}
		}

		headers[col] = strings.Join(parts, " ")
	}

	return cleanHeaders(headers), nil
}

// cleanHeaders trims headers and names empty ones after their column.
func cleanHeaders(headers []string) []string {
	cleaned := make([]string, len(headers))

	for i, header := range headers {
		header = strings.TrimSpace(header)
		if header == "" {
			header = fmt.Sprintf("Column_%d", i+1)
		}
		cleaned[i] = header
	}

	return cleaned
}

// extractDataRows converts rows from startIndex on to types.Row values.
// Empty rows are skipped but still counted for line numbers.
func extractDataRows(allRows [][]string, headers []string, startIndex int) []types.Row {
	if startIndex >= len(allRows) {
		return []types.Row{}
	}

	dataRows := make([]types.Row, 0, len(allRows)-startIndex)

	for rowIndex := startIndex; rowIndex < len(allRows); rowIndex++ {
		row := allRows[rowIndex]

		if isRowEmpty(row) {
			continue
		}

		dataRows = append(dataRows, types.Row{
			Number: rowIndex + 1,
			Fields: rowFields(headers, row),
		})
	}

	return dataRows
}

func rowFields(headers []string, row []string) map[string]string {
	fields := make(map[string]string, len(headers))
	for i, header := range headers {
		if i < len(row) {
			fields[header] = strings.TrimSpace(row[i])
		} else {
			fields[header] = ""
		}
	}
	return fields
}

// isRowEmpty checks if a row contains only empty values.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
