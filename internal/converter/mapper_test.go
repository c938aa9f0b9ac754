package converter

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ginjaninja78/sepa-direct-debit/internal/config"
	"github.com/ginjaninja78/sepa-direct-debit/pkg/sepadd"
)

func TestMapper_Payment(t *testing.T) {
	mapper := NewMapper(&config.CreditorProfile{
		ColumnMapping: map[string]string{
			"name":        "Holder",
			"IBAN":        "IBAN",
			"BIC":         "BIC",
			"amount":      "Cents",
			"description": "Text",
		},
		StaticFields: []config.StaticField{
			{Field: "type", Value: "RCUR"},
			{Field: "description", Value: "Membership"},
			{Field: "collection_date", Value: "2024-02-01"},
		},
	})

	payment := mapper.Payment(map[string]string{
		"Holder": "Jan",
		"IBAN":   "NL91ABNA0417164300",
		"BIC":    " ",
		"Cents":  "1000",
		"Text":   "",
		"Other":  "ignored",
	})

	assert.Equal(t, sepadd.Payment{
		Name:           "Jan",
		IBAN:           "NL91ABNA0417164300",
		Amount:         "1000",
		Type:           "RCUR",
		CollectionDate: "2024-02-01",
		Description:    "Membership",
	}, payment)
}
