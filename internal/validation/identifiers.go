package validation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// DateLayout is the ISO calendar date layout used throughout the document.
const DateLayout = "2006-01-02"

// MaxEndToEndIDLength is the maximum length of an end-to-end identifier.
const MaxEndToEndIDLength = 35

var (
	ibanPattern     = regexp.MustCompile(`^[A-Z]{2}[0-9]{2}[A-Za-z0-9]{1,30}$`)
	bicPattern      = regexp.MustCompile(`^[A-Za-z]{6}[A-Za-z0-9]{2}([A-Za-z0-9]{3})?$`)
	currencyPattern = regexp.MustCompile(`^[A-Z]{3}$`)
	digitsPattern   = regexp.MustCompile(`^[0-9]+$`)
)

// SequenceTypes lists the accepted direct debit sequence types.
var SequenceTypes = []string{"FRST", "RCUR", "FNAL", "OOFF"}

// =============================================================================
// IBAN
// =============================================================================

// ValidateIBAN checks the IBAN shape and its ISO 7064 MOD-97-10 checksum.
func ValidateIBAN(iban string) string {
	if !ibanPattern.MatchString(iban) {
		return fmt.Sprintf("%s is not a well-formed IBAN", iban)
	}

	if mod97(ibanDigits(iban)) != 1 {
		return fmt.Sprintf("%s has an invalid checksum", iban)
	}

	return ""
}

// ibanDigits moves the country code and check digits to the end and maps
// every letter to its two-digit value (A=10 ... Z=35).
func ibanDigits(iban string) string {
	rearranged := strings.ToUpper(iban[4:] + iban[:4])

	var builder strings.Builder
	builder.Grow(len(rearranged) * 2)

	for _, r := range rearranged {
		switch {
		case r >= '0' && r <= '9':
			builder.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			builder.WriteString(strconv.Itoa(int(r-'A') + 10))
		}
	}

	return builder.String()
}

// mod97 reduces a decimal digit string modulo 97 without big integers.
// The first chunk is nine digits; every following chunk is the previous
// remainder concatenated with up to seven more digits.
func mod97(digits string) int {
	chunk := min(9, len(digits))
	remainder := atoiDigits(digits[:chunk]) % 97
	digits = digits[chunk:]

	for len(digits) > 0 {
		chunk = min(7, len(digits))
		remainder = atoiDigits(strconv.Itoa(remainder)+digits[:chunk]) % 97
		digits = digits[chunk:]
	}

	return remainder
}

// atoiDigits converts at most nine or ten ASCII digits to an int.
func atoiDigits(s string) int {
	n := 0
	for i := 0; i < len(s); i++ {
		n = n*10 + int(s[i]-'0')
	}
	return n
}

// =============================================================================
// BIC / CURRENCY / AMOUNT
// =============================================================================

// ValidateBIC checks an 8 or 11 character bank identifier code.
func ValidateBIC(bic string) string {
	if !bicPattern.MatchString(bic) {
		return fmt.Sprintf("%s is not a valid BIC", bic)
	}
	return ""
}

// ValidateCurrency checks an ISO 4217 currency code shape.
func ValidateCurrency(code string) string {
	if !currencyPattern.MatchString(code) {
		return fmt.Sprintf("%s is not a valid currency code: must be exactly 3 uppercase letters", code)
	}
	return ""
}

// ValidateAmount checks that an amount is a non-negative integer number of
// minor units (cents).
func ValidateAmount(amount string) string {
	if !digitsPattern.MatchString(amount) {
		return fmt.Sprintf("%s is not an amount in cents", amount)
	}
	return ""
}

// =============================================================================
// DATES
// =============================================================================

// ValidateDate checks for a strict YYYY-MM-DD calendar date.
func ValidateDate(date string) string {
	if _, err := time.Parse(DateLayout, date); err != nil {
		return fmt.Sprintf("%s is not a valid ISO date", date)
	}
	return ""
}

// ValidateMandateDate checks a mandate signature date. The date may be today
// or earlier, never later than the calendar day of now.
func ValidateMandateDate(date string, now time.Time) string {
	signed, err := time.Parse(DateLayout, date)
	if err != nil {
		return fmt.Sprintf("%s is not a valid ISO date", date)
	}

	today, _ := time.Parse(DateLayout, now.Format(DateLayout))
	if signed.After(today) {
		return fmt.Sprintf("mandate date %s must not be later than the current day %s", date, today.Format(DateLayout))
	}

	return ""
}

// =============================================================================
// SEQUENCE TYPE / END-TO-END ID / VERSION
// =============================================================================

// ValidateSequenceType checks the direct debit sequence type.
func ValidateSequenceType(seqType string) string {
	for _, known := range SequenceTypes {
		if seqType == known {
			return ""
		}
	}
	return fmt.Sprintf("%s is not a valid SEPA direct debit transaction type", seqType)
}

// ValidateEndToEndID checks that an end-to-end identifier is ASCII and fits
// in 35 characters.
func ValidateEndToEndID(id string) string {
	for i := 0; i < len(id); i++ {
		if id[i] >= utf8.RuneSelf {
			return fmt.Sprintf("%s is not ASCII", id)
		}
	}

	if len(id) > MaxEndToEndIDLength {
		return fmt.Sprintf("%s is longer than %d characters", id, MaxEndToEndIDLength)
	}

	return ""
}

// ValidateText checks that free text is valid UTF-8 made only of characters
// XML 1.0 allows in a document.
func ValidateText(text string) string {
	if !utf8.ValidString(text) {
		return fmt.Sprintf("%q is not valid UTF-8", text)
	}

	for _, r := range text {
		if !isXMLChar(r) {
			return fmt.Sprintf("%q contains %U, which is not allowed in XML", text, r)
		}
	}

	return ""
}

// isXMLChar reports whether r matches the XML 1.0 Char production.
func isXMLChar(r rune) bool {
	return r == 0x09 || r == 0x0A || r == 0x0D ||
		r >= 0x20 && r <= 0xD7FF ||
		r >= 0xE000 && r <= 0xFFFD ||
		r >= 0x10000 && r <= 0x10FFFF
}

// ValidateVersion checks the pain.008 schema version selector.
func ValidateVersion(version string) string {
	switch version {
	case "2", "3":
		return ""
	default:
		return fmt.Sprintf("%s is not a supported pain.008 version: must be 2 or 3", version)
	}
}

// =============================================================================
// VALIDATOR
// =============================================================================

// Options configures a Validator.
type Options struct {
	// SkipIdentifiers disables the IBAN and BIC checks.
	SkipIdentifiers bool

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// Validator exposes the identifier checks as CheckFuncs bound to a set of
// options.
type Validator struct {
	options Options
}

// NewValidator creates a Validator.
func NewValidator(options Options) *Validator {
	if options.Now == nil {
		options.Now = time.Now
	}
	return &Validator{options: options}
}

// IBAN validates an IBAN unless identifier validation is disabled.
func (v *Validator) IBAN(iban string) string {
	if v.options.SkipIdentifiers {
		return ""
	}
	return ValidateIBAN(iban)
}

// BIC validates a BIC unless identifier validation is disabled.
func (v *Validator) BIC(bic string) string {
	if v.options.SkipIdentifiers {
		return ""
	}
	return ValidateBIC(bic)
}

// MandateDate validates a mandate signature date against the current day.
func (v *Validator) MandateDate(date string) string {
	return ValidateMandateDate(date, v.options.Now())
}
