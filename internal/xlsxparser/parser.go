// =============================================================================
// SEPA Direct Debit Builder - XLSX Payment Parser
// =============================================================================
//
// This module reads payment lists kept as Excel workbooks. One worksheet
// holds one payment per row below a header row:
//
//   | Holder     | IBAN               | Cents | Date       | Mandate | Signed     |
//   |------------|--------------------|-------|------------|---------|------------|
//   | Jan Jansen | NL91ABNA0417164300 | 1000  | 2024-01-10 | M-1     | 2023-12-01 |
//
// Cells are read as displayed, so dates formatted as yyyy-mm-dd arrive as
// ISO dates. The result is the same types.Table the CSV parser produces.
//
// =============================================================================

package xlsxparser

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/sepa-direct-debit/internal/config"
	"github.com/ginjaninja78/sepa-direct-debit/internal/types"
)

// ParseFile reads the payment sheet of an XLSX workbook.
//
// PARAMETERS:
//   - filePath: The path to the XLSX file.
//   - settings: The XLSX settings from the creditor profile.
//
// RETURNS:
//   - The parsed table.
//   - An error if the workbook cannot be opened or the sheet is missing.
func ParseFile(filePath string, settings config.XLSXSettings) (*types.Table, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	table, err := parseSheet(f, settings)
	if err != nil {
		return nil, err
	}

	table.SourceFile = filePath
	return table, nil
}

// SheetName resolves the configured sheet, falling back to the first one.
func SheetName(f *excelize.File, settings config.XLSXSettings) (string, error) {
	if settings.Sheet == "" {
		sheetName := f.GetSheetName(0)
		if sheetName == "" {
			return "", fmt.Errorf("workbook has no sheets")
		}
		return sheetName, nil
	}

	index, err := f.GetSheetIndex(settings.Sheet)
	if err != nil {
		return "", fmt.Errorf("failed to look up sheet %q: %w", settings.Sheet, err)
	}
	if index < 0 {
		return "", fmt.Errorf("sheet %q does not exist", settings.Sheet)
	}

	return settings.Sheet, nil
}

// parseSheet parses the payment sheet of an open workbook.
func parseSheet(f *excelize.File, settings config.XLSXSettings) (*types.Table, error) {
	sheetName, err := SheetName(f, settings)
	if err != nil {
		return nil, err
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}

	headerIndex := max(settings.HeaderRow, 1) - 1
	if headerIndex >= len(rows) {
		return nil, fmt.Errorf("sheet %q has no header row %d", sheetName, headerIndex+1)
	}

	// GetRows skips blank trailing cells, so the header row can be shorter
	// than the data rows below it.
	width := 0
	for _, row := range rows[headerIndex:] {
		width = max(width, len(row))
	}
	headerRow := make([]string, width)
	copy(headerRow, rows[headerIndex])
	headers := cleanHeaders(headerRow)

	startIndex := settings.DataStartRow - 1
	if startIndex <= headerIndex {
		startIndex = headerIndex + 1
	}

	table := &types.Table{
		Headers: headers,
		Rows:    []types.Row{},
	}

	for i := startIndex; i < len(rows); i++ {
		row := rows[i]

		if len(row) == 0 || isRowEmpty(row) {
			continue
		}

		fields := make(map[string]string, len(headers))
		for col, header := range headers {
			if col < len(row) {
				fields[header] = strings.TrimSpace(row[col])
			} else {
				fields[header] = ""
			}
		}

		table.Rows = append(table.Rows, types.Row{Number: i + 1, Fields: fields})
	}

	return table, nil
}

// cleanHeaders trims headers and names empty ones after their column letter.
func cleanHeaders(headers []string) []string {
	cleaned := make([]string, len(headers))

	for i, header := range headers {
		header = strings.TrimSpace(header)
		if header == "" {
			name, err := excelize.ColumnNumberToName(i + 1)
			if err != nil {
				name = fmt.Sprint(i + 1)
			}
			header = "Column_" + name
		}
		cleaned[i] = header
	}

	return cleaned
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
