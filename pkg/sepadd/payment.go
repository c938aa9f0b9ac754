package sepadd

import (
	"github.com/ginjaninja78/sepa-direct-debit/internal/validation"
)

// Sequence types.
const (
	SeqFirst     = "FRST"
	SeqRecurring = "RCUR"
	SeqFinal     = "FNAL"
	SeqOneOff    = "OOFF"
)

// Payment is one direct debit collection from a debtor.
type Payment struct {
	// Name is the debtor name.
	Name string

	IBAN string
	BIC  string

	// Amount is a string of digits in minor units: "1000" is 10.00.
	Amount string

	// Type is the sequence type: FRST, RCUR, FNAL or OOFF.
	Type string

	// CollectionDate is the requested collection date, YYYY-MM-DD.
	CollectionDate string

	MandateID string

	// MandateDate is the signature date, YYYY-MM-DD, not after today.
	MandateDate string

	// Description is the unstructured remittance information.
	Description string

	// EndToEndID is generated from the creditor name when empty.
	EndToEndID string
}

var paymentRequired = []string{
	"name",
	"IBAN",
	"amount",
	"type",
	"collection_date",
	"mandate_id",
	"mandate_date",
	"description",
}

func paymentChecks(v *validation.Validator) []validation.Check {
	return []validation.Check{
		{Field: "IBAN", Fn: v.IBAN},
		{Field: "BIC", Fn: v.BIC},
		{Field: "amount", Fn: validation.ValidateAmount},
		{Field: "collection_date", Fn: validation.ValidateDate},
		{Field: "mandate_date", Fn: v.MandateDate},
		{Field: "type", Fn: validation.ValidateSequenceType},
		{Field: "end_to_end_id", Fn: validation.ValidateEndToEndID},
		{Field: "name", Fn: validation.ValidateText},
		{Field: "mandate_id", Fn: validation.ValidateText},
		{Field: "description", Fn: validation.ValidateText},
		{Field: "end_to_end_id", Fn: validation.ValidateText},
	}
}

func (p Payment) fields() validation.Fields {
	fields := validation.Fields{
		"name":            p.Name,
		"IBAN":            p.IBAN,
		"amount":          p.Amount,
		"type":            p.Type,
		"collection_date": p.CollectionDate,
		"mandate_id":      p.MandateID,
		"mandate_date":    p.MandateDate,
		"description":     p.Description,
	}
	if p.BIC != "" {
		fields["BIC"] = p.BIC
	}
	if p.EndToEndID != "" {
		fields["end_to_end_id"] = p.EndToEndID
	}
	return fields
}
