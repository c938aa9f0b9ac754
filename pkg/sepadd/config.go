package sepadd

import (
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/ginjaninja78/sepa-direct-debit/internal/validation"
	"github.com/ginjaninja78/sepa-direct-debit/internal/xsd"
)

// Supported pain.008 schema versions.
const (
	Version2 = 2
	Version3 = 3

	DefaultVersion = Version2
)

const xsiNamespace = "http://www.w3.org/2001/XMLSchema-instance"

// Config identifies the creditor and selects the output flavour. It is
// validated once by New and never changes afterwards.
type Config struct {
	// Name is the creditor name. It is used for the initiating party, the
	// creditor, the scheme id name, and as the prefix of generated ids.
	Name string

	IBAN string

	// BIC is optional. Without it the creditor agent is written as
	// Othr/Id NOTPROVIDED.
	BIC string

	Currency   string
	CreditorID string

	// Batch groups payments into one block per (sequence type, collection
	// date) instead of one block per payment.
	Batch bool

	// Version selects pain.008.001.02 or pain.008.001.03. Zero means 2.
	Version int

	// DisableValidation skips the IBAN and BIC checks.
	DisableValidation bool
}

var configRequired = []string{"name", "IBAN", "batch", "creditor_id", "currency"}

func configChecks(v *validation.Validator) []validation.Check {
	return []validation.Check{
		{Field: "IBAN", Fn: v.IBAN},
		{Field: "BIC", Fn: v.BIC},
		{Field: "currency", Fn: validation.ValidateCurrency},
		{Field: "version", Fn: validation.ValidateVersion},
		{Field: "name", Fn: validation.ValidateText},
		{Field: "creditor_id", Fn: validation.ValidateText},
	}
}

// fields exposes the config to the generic validation passes. Optional
// fields are only present when set.
func (c Config) fields() validation.Fields {
	fields := validation.Fields{
		"name":        c.Name,
		"IBAN":        c.IBAN,
		"batch":       strconv.FormatBool(c.Batch),
		"creditor_id": c.CreditorID,
		"currency":    c.Currency,
	}
	if c.BIC != "" {
		fields["BIC"] = c.BIC
	}
	if c.Version != 0 {
		fields["version"] = strconv.Itoa(c.Version)
	}
	return fields
}

func (c Config) version() int {
	if c.Version == 0 {
		return DefaultVersion
	}
	return c.Version
}

// Namespace returns the pain.008 namespace URI for a schema version.
func Namespace(version int) string {
	if version == 0 {
		version = DefaultVersion
	}
	return fmt.Sprintf("urn:iso:std:iso:20022:tech:xsd:pain.008.001.%02d", version)
}

// SchemaFile returns the XSD file name for a schema version.
func SchemaFile(version int) string {
	if version == 0 {
		version = DefaultVersion
	}
	return fmt.Sprintf("pain.008.001.%02d.xsd", version)
}

// bicElementName is the agent identifier element for a schema version.
func bicElementName(version int) string {
	if version == Version3 {
		return "BICFI"
	}
	return "BIC"
}

// =============================================================================
// OPTIONS
// =============================================================================

// Option customizes a Document.
type Option func(*Document)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Document) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithClock sets the time source used for ids, the creation timestamp and
// the mandate date check.
func WithClock(now func() time.Time) Option {
	return func(d *Document) {
		if now != nil {
			d.now = now
		}
	}
}

// WithRandom sets the source of the random integers hashed into generated
// ids.
func WithRandom(random func() uint64) Option {
	return func(d *Document) {
		if random != nil {
			d.random = random
		}
	}
}

// WithSchemaValidator sets the facility used by Validate and the directory
// holding the pain.008 XSD files.
func WithSchemaValidator(validator xsd.Validator, schemaDir string) Option {
	return func(d *Document) {
		d.schemas = validator
		d.schemaDir = schemaDir
	}
}
