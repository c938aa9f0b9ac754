package converter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/sepa-direct-debit/internal/config"
)

func TestApplyTransformation(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		action   config.TransformationAction
		expected string
	}{
		{"trim", "  Jan  ", config.TransformationAction{Type: "trim"}, "Jan"},
		{"uppercase", "nl91abna", config.TransformationAction{Type: "uppercase"}, "NL91ABNA"},
		{"lowercase", "ABC", config.TransformationAction{Type: "lowercase"}, "abc"},
		{"replace", "2024/01", config.TransformationAction{Type: "replace", Find: "/", Value: "-"}, "2024-01"},
		{"replace without find", "2024/01", config.TransformationAction{Type: "replace", Value: "-"}, "2024/01"},
		{"regex_replace", "INV 001", config.TransformationAction{Type: "regex_replace", Find: `\s+`, Value: "-"}, "INV-001"},
		{"substring", "INV-2024-0001", config.TransformationAction{Type: "substring", Value: "4:4"}, "2024"},
		{"substring rest", "INV-2024", config.TransformationAction{Type: "substring", Value: "4"}, "2024"},
		{"substring runes", "Zoë Müller", config.TransformationAction{Type: "substring", Value: "0:3"}, "Zoë"},
		{"substring past end", "abc", config.TransformationAction{Type: "substring", Value: "5:2"}, ""},
		{"normalize_whitespace", " a \t b  c ", config.TransformationAction{Type: "normalize_whitespace"}, "a b c"},
		{"remove_spaces", "NL91 ABNA 0417 1643 00", config.TransformationAction{Type: "remove_spaces"}, "NL91ABNA0417164300"},
		{"extract_digits", "M-12/34", config.TransformationAction{Type: "extract_digits"}, "1234"},
		{"pad_zeros_to_length", "42", config.TransformationAction{Type: "pad_zeros_to_length", Value: "5"}, "00042"},
		{"decimal_to_cents", "12,50", config.TransformationAction{Type: "decimal_to_cents"}, "1250"},
		{"decimal_to_cents empty", "", config.TransformationAction{Type: "decimal_to_cents"}, ""},
		{"format_date", "15-01-2024", config.TransformationAction{Type: "format_date", Find: "02-01-2006", Value: "2006-01-02"}, "2024-01-15"},
		{"format_date unparsable", "soon", config.TransformationAction{Type: "format_date", Find: "02-01-2006", Value: "2006-01-02"}, "soon"},
		{"lookup", "Eerste", config.TransformationAction{Type: "lookup", LookupTable: map[string]string{"Eerste": "FRST"}}, "FRST"},
		{"lookup miss", "Other", config.TransformationAction{Type: "lookup", LookupTable: map[string]string{"Eerste": "FRST"}}, "Other"},
		{"lookup_with_default", "Other", config.TransformationAction{Type: "lookup_with_default", Value: "RCUR", LookupTable: map[string]string{"Eerste": "FRST"}}, "RCUR"},
		{"if_empty_use_default", " ", config.TransformationAction{Type: "if_empty_use_default", Value: "Contributie"}, "Contributie"},
		{"if_empty_use_default set", "Lesgeld", config.TransformationAction{Type: "if_empty_use_default", Value: "Contributie"}, "Lesgeld"},
		{"if_empty_use_field", "", config.TransformationAction{Type: "if_empty_use_field", Value: "Parent"}, "Mr. Jansen"},
	}

	row := map[string]string{"Parent": "Mr. Jansen"}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ApplyTransformation(tt.value, tt.action, row)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestApplyTransformation_Errors(t *testing.T) {
	tests := []struct {
		name   string
		value  string
		action config.TransformationAction
	}{
		{"unknown", "x", config.TransformationAction{Type: "prepend_string"}},
		{"bad regex", "x", config.TransformationAction{Type: "regex_replace", Find: "("}},
		{"bad length", "x", config.TransformationAction{Type: "pad_zeros_to_length", Value: "many"}},
		{"bad substring", "x", config.TransformationAction{Type: "substring", Value: "a:b"}},
		{"bad amount", "ten", config.TransformationAction{Type: "decimal_to_cents"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ApplyTransformation(tt.value, tt.action, nil)
			assert.Error(t, err)
		})
	}
}

func TestDecimalToCents(t *testing.T) {
	tests := []struct {
		value    string
		expected string
	}{
		{"12.50", "1250"},
		{"12,5", "1250"},
		{"0,07", "7"},
		{"10", "1000"},
		{"1.234,56", "123456"},
		{"1,234.56", "123456"},
		{" 1 234,00 ", "123400"},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			cents, err := DecimalToCents(tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, cents)
		})
	}
}

func TestDecimalToCents_Errors(t *testing.T) {
	_, err := DecimalToCents("-1,00")
	assert.ErrorContains(t, err, "is negative")

	_, err = DecimalToCents("1,005")
	assert.ErrorContains(t, err, "more than two decimal places")

	_, err = DecimalToCents("EUR 5")
	assert.ErrorContains(t, err, "is not a decimal amount")
}

func TestTransformer_RulesApplyInOrder(t *testing.T) {
	transformer := NewTransformer([]config.TransformationRule{
		{Field: "IBAN", Actions: []config.TransformationAction{{Type: "remove_spaces"}}},
		{Field: "IBAN", Actions: []config.TransformationAction{{Type: "uppercase"}}},
		{Field: "Name", Actions: []config.TransformationAction{{Type: "trim"}}},
	})

	result, err := transformer.Transform("IBAN", "nl91 abna 0417 1643 00", nil)
	require.NoError(t, err)
	assert.Equal(t, "NL91ABNA0417164300", result)

	result, err = transformer.Transform("Other", " untouched ", nil)
	require.NoError(t, err)
	assert.Equal(t, " untouched ", result)
}

func TestTransformer_TransformRow(t *testing.T) {
	transformer := NewTransformer([]config.TransformationRule{
		{Field: "Name", Actions: []config.TransformationAction{{Type: "if_empty_use_field", Value: "Parent"}}},
		{Field: "Parent", Actions: []config.TransformationAction{{Type: "uppercase"}}},
	})

	original := map[string]string{"Name": "", "Parent": "Jansen"}
	transformed, err := transformer.TransformRow(original)
	require.NoError(t, err)

	// Rules read the original row, not values transformed by other rules.
	assert.Equal(t, "Jansen", transformed["Name"])
	assert.Equal(t, "JANSEN", transformed["Parent"])
	assert.Equal(t, "", original["Name"])
}

func TestTransformer_TransformRowError(t *testing.T) {
	transformer := NewTransformer([]config.TransformationRule{
		{Field: "Amount", Actions: []config.TransformationAction{{Type: "decimal_to_cents"}}},
	})

	_, err := transformer.TransformRow(map[string]string{"Amount": "ten"})

	var fieldErr *FieldError
	require.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, "Amount", fieldErr.Column)
	assert.Contains(t, err.Error(), "column 'Amount': transformation 'decimal_to_cents' failed")
}

func TestPadLeft(t *testing.T) {
	assert.Equal(t, "007", PadLeft("7", 3, '0'))
	assert.Equal(t, "1234", PadLeft("1234", 3, '0'))
	assert.Equal(t, "0ë", PadLeft("ë", 2, '0'))
}
