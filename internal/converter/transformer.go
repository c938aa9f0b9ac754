// =============================================================================
// SEPA Direct Debit Builder - Transformation Engine
// =============================================================================
//
// This module cleans column values from payment exports before they are
// mapped onto payments. Exports rarely match what the engine accepts:
// IBANs arrive with spaces, amounts in euros with a decimal comma, dates
// in local formats, and sequence types under in-house codes.
//
// TRANSFORMATION TYPES:
//   - String manipulations (trim, case conversion, replace, substring)
//   - Identifier cleanup (remove_spaces, extract_digits, pad_zeros_to_length)
//   - Amount conversion (decimal_to_cents)
//   - Date conversion (format_date)
//   - Lookup table replacements ("Eerste" -> "FRST")
//   - Fallbacks for empty cells
//
// Each creditor profile defines its own rules in transformation_rules.
//
// =============================================================================

package converter

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/sepa-direct-debit/internal/config"
)

var (
	digitsPattern     = regexp.MustCompile(`\d+`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// =============================================================================
// TRANSFORMER
// =============================================================================

// Transformer handles column value transformations.
type Transformer struct {
	rules []config.TransformationRule
}

// NewTransformer creates a new Transformer with the given rules.
func NewTransformer(rules []config.TransformationRule) *Transformer {
	return &Transformer{
		rules: rules,
	}
}

// Transform applies every rule for column to value, in order.
//
// PARAMETERS:
//   - column: The input column header.
//   - value: The current cell value.
//   - allFields: All cells of the current row (for if_empty_use_field).
func (t *Transformer) Transform(column, value string, allFields map[string]string) (string, error) {
	result := value

	for _, rule := range t.rules {
		if rule.Field != column {
			continue
		}

		for _, action := range rule.Actions {
			var err error
			result, err = ApplyTransformation(result, action, allFields)
			if err != nil {
				return "", fmt.Errorf("transformation '%s' failed: %w", action.Type, err)
			}
		}
	}

	return result, nil
}

// TransformRow returns a copy of fields with every rule applied. Rules see
// the original row, so the order of columns does not matter.
func (t *Transformer) TransformRow(fields map[string]string) (map[string]string, error) {
	transformed := make(map[string]string, len(fields))

	for column, value := range fields {
		result, err := t.Transform(column, value, fields)
		if err != nil {
			return nil, &FieldError{Column: column, Err: err}
		}
		transformed[column] = result
	}

	return transformed, nil
}

// FieldError reports the column whose transformation failed.
type FieldError struct {
	Column string
	Err    error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("column '%s': %v", e.Column, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// =============================================================================
// TRANSFORMATION FUNCTIONS
// =============================================================================

// ApplyTransformation applies a single transformation action.
//
// PARAMETERS:
//   - value: The current value.
//   - action: The transformation action to apply.
//   - allFields: All cells in the current row.
//
// RETURNS:
//   - The transformed value.
//   - An error if the transformation fails or is unknown.
func ApplyTransformation(value string, action config.TransformationAction, allFields map[string]string) (string, error) {
	switch action.Type {

	// =========================================================================
	// STRING MANIPULATIONS
	// =========================================================================

	case "trim":
		return strings.TrimSpace(value), nil

	case "uppercase":
		return strings.ToUpper(value), nil

	case "lowercase":
		return strings.ToLower(value), nil

	case "replace":
		// EXAMPLE:
		//   Input: "Contributie 2024/01"
		//   Action: replace with find "/" and value "-"
		//   Output: "Contributie 2024-01"
		if action.Find == "" {
			return value, nil
		}
		return strings.ReplaceAll(value, action.Find, action.Value), nil

	case "regex_replace":
		if action.Find == "" {
			return value, nil
		}
		re, err := regexp.Compile(action.Find)
		if err != nil {
			return "", fmt.Errorf("invalid regex pattern: %w", err)
		}
		return re.ReplaceAllString(value, action.Value), nil

	case "substring":
		// VALUE FORMAT: "start:length", counted in characters.
		// EXAMPLE:
		//   Input: "INV-2024-0001"
		//   Action: substring with value "4:4"
		//   Output: "2024"
		return substring(value, action.Value)

	case "normalize_whitespace":
		return strings.TrimSpace(whitespacePattern.ReplaceAllString(value, " ")), nil

	// =========================================================================
	// IDENTIFIER CLEANUP
	// =========================================================================

	case "remove_spaces":
		// EXAMPLE:
		//   Input: "NL91 ABNA 0417 1643 00"
		//   Output: "NL91ABNA0417164300"
		return strings.Map(func(r rune) rune {
			if unicode.IsSpace(r) {
				return -1
			}
			return r
		}, value), nil

	case "extract_digits":
		return strings.Join(digitsPattern.FindAllString(value, -1), ""), nil

	case "pad_zeros_to_length":
		targetLength, err := strconv.Atoi(action.Value)
		if err != nil || targetLength <= 0 {
			return "", fmt.Errorf("invalid length %q", action.Value)
		}
		return PadLeft(value, targetLength, '0'), nil

	// =========================================================================
	// AMOUNTS AND DATES
	// =========================================================================

	case "decimal_to_cents":
		// EXAMPLE:
		//   Input: "1.234,50" or "1,234.50" or "1234.5"
		//   Output: "123450"
		if strings.TrimSpace(value) == "" {
			return value, nil
		}
		return DecimalToCents(value)

	case "format_date":
		// Find is the input layout and Value the output layout, both as Go
		// time layouts. Values that do not parse are left unchanged and
		// rejected later by date validation.
		//
		// EXAMPLE:
		//   Input: "15-01-2024"
		//   Action: format_date with find "02-01-2006" and value "2006-01-02"
		//   Output: "2024-01-15"
		t, err := time.Parse(action.Find, strings.TrimSpace(value))
		if err != nil {
			return value, nil
		}
		return t.Format(action.Value), nil

	// =========================================================================
	// LOOKUP TABLE REPLACEMENTS
	// =========================================================================

	case "lookup":
		// EXAMPLE:
		//   Input: "Eerste"
		//   Action: lookup with lookup_table {"Eerste": "FRST", "Herhaald": "RCUR"}
		//   Output: "FRST"
		if replacement, exists := action.LookupTable[value]; exists {
			return replacement, nil
		}
		return value, nil

	case "lookup_with_default":
		if replacement, exists := action.LookupTable[value]; exists {
			return replacement, nil
		}
		return action.Value, nil

	// =========================================================================
	// EMPTY VALUE FALLBACKS
	// =========================================================================

	case "if_empty_use_default":
		if strings.TrimSpace(value) == "" {
			return action.Value, nil
		}
		return value, nil

	case "if_empty_use_field":
		// VALUE: The column to use.
		if strings.TrimSpace(value) == "" {
			if otherValue, exists := allFields[action.Value]; exists {
				return otherValue, nil
			}
		}
		return value, nil

	default:
		return "", fmt.Errorf("unknown transformation type: %s", action.Type)
	}
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// DecimalToCents converts a decimal amount in major units to minor units.
// Both "." and "," are accepted as the decimal separator. When both occur,
// the last one is the decimal separator and the other groups thousands.
func DecimalToCents(value string) (string, error) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(value), " ", "")

	lastDot := strings.LastIndex(cleaned, ".")
	lastComma := strings.LastIndex(cleaned, ",")

	switch {
	case lastDot >= 0 && lastComma >= 0 && lastComma > lastDot:
		cleaned = strings.ReplaceAll(cleaned, ".", "")
		cleaned = strings.Replace(cleaned, ",", ".", 1)
	case lastDot >= 0 && lastComma >= 0:
		cleaned = strings.ReplaceAll(cleaned, ",", "")
	case lastComma >= 0:
		cleaned = strings.Replace(cleaned, ",", ".", 1)
	}

	amount, err := decimal.NewFromString(cleaned)
	if err != nil {
		return "", fmt.Errorf("%q is not a decimal amount", value)
	}

	if amount.IsNegative() {
		return "", fmt.Errorf("%q is negative", value)
	}

	cents := amount.Shift(2)
	if !cents.Equal(cents.Truncate(0)) {
		return "", fmt.Errorf("%q has more than two decimal places", value)
	}

	return cents.StringFixed(0), nil
}

// substring keeps length characters starting at start. A missing length
// keeps the rest of the value.
func substring(value, bounds string) (string, error) {
	startText, lengthText, hasLength := strings.Cut(bounds, ":")

	start, err := strconv.Atoi(strings.TrimSpace(startText))
	if err != nil || start < 0 {
		return "", fmt.Errorf("invalid substring %q", bounds)
	}

	runes := []rune(value)
	if start >= len(runes) {
		return "", nil
	}
	runes = runes[start:]

	if hasLength {
		length, err := strconv.Atoi(strings.TrimSpace(lengthText))
		if err != nil || length < 0 {
			return "", fmt.Errorf("invalid substring %q", bounds)
		}
		runes = runes[:min(length, len(runes))]
	}

	return string(runes), nil
}

// PadLeft pads a string with a character on the left to reach the target length.
func PadLeft(s string, length int, padChar rune) string {
	count := len([]rune(s))
	if count >= length {
		return s
	}
	return strings.Repeat(string(padChar), length-count) + s
}
