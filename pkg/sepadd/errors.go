package sepadd

import (
	"errors"
	"fmt"

	"github.com/ginjaninja78/sepa-direct-debit/internal/validation"
)

// Sentinel errors. Use errors.Is to classify an error returned by the
// engine, and errors.As with *ConfigError or *PaymentError for details.
var (
	ErrInvalidConfig      = errors.New("invalid config")
	ErrPaymentRejected    = errors.New("payment rejected")
	ErrNodeNotFound       = errors.New("path matches no node")
	ErrAmbiguousPath      = errors.New("path matches more than one node")
	ErrNoSchemaValidator  = errors.New("no schema validator configured")
	ErrControlSumOverflow = errors.New("control sum overflows")
)

// ConfigError reports the first configuration field that failed validation.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%v: %s %s", ErrInvalidConfig, e.Field, e.Reason)
}

func (e *ConfigError) Unwrap() error {
	return ErrInvalidConfig
}

// PaymentError reports the first payment field that failed validation.
type PaymentError struct {
	Field  string
	Reason string
}

func (e *PaymentError) Error() string {
	return fmt.Sprintf("%v: %s %s", ErrPaymentRejected, e.Field, e.Reason)
}

func (e *PaymentError) Unwrap() error {
	return ErrPaymentRejected
}

func configError(err *validation.ValidationError) error {
	return &ConfigError{Field: err.Field, Reason: err.Message}
}

func paymentError(err *validation.ValidationError) error {
	return &PaymentError{Field: err.Field, Reason: err.Message}
}
