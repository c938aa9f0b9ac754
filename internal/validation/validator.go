// =============================================================================
// SEPA Direct Debit Builder - Validation Engine
// =============================================================================
//
// This module runs the two validation passes applied to every creditor
// configuration and every payment before anything touches the document:
//   1. Presence: every required field exists and is non-empty
//   2. Rules: every field that has an identifier check passes it
//
// Both passes walk their field lists in declaration order and stop at the
// first failure, so the caller always learns about exactly one field.
//
// The identifier checks themselves live in identifiers.go.
//
// =============================================================================

package validation

import (
	"fmt"
	"strings"
)

// =============================================================================
// VALIDATION ERROR TYPES
// =============================================================================

// Rule names reported in ValidationError.Rule.
const (
	RuleMissing = "missing"
	RuleEmpty   = "empty"
	RuleFormat  = "format"
)

// ValidationError describes the first field that failed validation.
type ValidationError struct {
	// Field is the name of the field that failed validation.
	Field string

	// Value is the actual value that failed validation.
	Value string

	// Rule is the validation rule that was violated.
	Rule string

	// Message is a human-readable reason.
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

// =============================================================================
// FIELD SETS
// =============================================================================

// Fields is a set of named string values. A field that is not in the map is
// treated as absent; a field that maps to "" is present but empty.
type Fields map[string]string

// CheckFunc validates a single value. It returns an empty string when the
// value is valid and a descriptive reason otherwise.
type CheckFunc func(value string) string

// Check binds a CheckFunc to a field name.
type Check struct {
	Field string
	Fn    CheckFunc
}

// =============================================================================
// VALIDATION PASSES
// =============================================================================

// RequireFields confirms that every field named in required is present and
// non-empty. Fields are examined in order; the first failure is returned.
func RequireFields(fields Fields, required []string) *ValidationError {
	for _, name := range required {
		value, ok := fields[name]
		if !ok {
			return &ValidationError{
				Field:   name,
				Rule:    RuleMissing,
				Message: "does not exist",
			}
		}

		if strings.TrimSpace(value) == "" {
			return &ValidationError{
				Field:   name,
				Value:   value,
				Rule:    RuleEmpty,
				Message: "is empty",
			}
		}
	}

	return nil
}

// RunChecks applies each check whose field is present and non-empty.
// Optional fields that were not supplied are skipped.
func RunChecks(fields Fields, checks []Check) *ValidationError {
	for _, check := range checks {
		value, ok := fields[check.Field]
		if !ok || value == "" {
			continue
		}

		if reason := check.Fn(value); reason != "" {
			return &ValidationError{
				Field:   check.Field,
				Value:   value,
				Rule:    RuleFormat,
				Message: "does not validate: " + reason,
			}
		}
	}

	return nil
}

// Validate runs RequireFields followed by RunChecks.
func Validate(fields Fields, required []string, checks []Check) *ValidationError {
	if err := RequireFields(fields, required); err != nil {
		return err
	}
	return RunChecks(fields, checks)
}
