package converter

import (
	"strings"

	"github.com/ginjaninja78/sepa-direct-debit/internal/config"
	"github.com/ginjaninja78/sepa-direct-debit/pkg/sepadd"
)

// Mapper turns transformed rows into payments using a profile's column
// mapping and static fields.
type Mapper struct {
	columns map[string]string
	statics map[string]string
}

// NewMapper creates a Mapper for a profile.
func NewMapper(profile *config.CreditorProfile) *Mapper {
	statics := make(map[string]string, len(profile.StaticFields))
	for _, field := range profile.StaticFields {
		statics[field.Field] = field.Value
	}

	return &Mapper{
		columns: profile.ColumnMapping,
		statics: statics,
	}
}

// value resolves one payment field. A static value fills in when the field
// has no column or the cell is empty.
func (m *Mapper) value(field string, fields map[string]string) string {
	if column, ok := m.columns[field]; ok {
		if value := strings.TrimSpace(fields[column]); value != "" {
			return value
		}
	}
	return m.statics[field]
}

// Payment builds the payment for one row.
func (m *Mapper) Payment(fields map[string]string) sepadd.Payment {
	return sepadd.Payment{
		Name:           m.value("name", fields),
		IBAN:           m.value("IBAN", fields),
		BIC:            m.value("BIC", fields),
		Amount:         m.value("amount", fields),
		Type:           m.value("type", fields),
		CollectionDate: m.value("collection_date", fields),
		MandateID:      m.value("mandate_id", fields),
		MandateDate:    m.value("mandate_date", fields),
		Description:    m.value("description", fields),
		EndToEndID:     m.value("end_to_end_id", fields),
	}
}
