package sepadd

import (
	"fmt"
	"math"
	"strconv"

	"github.com/shopspring/decimal"
)

// IntToDecimal renders an amount in minor units with exactly two fractional
// digits: 1000 becomes "10.00", 5 becomes "0.05".
func IntToDecimal(minor int64) string {
	return decimal.New(minor, -2).StringFixed(2)
}

// DecimalToInt parses a decimal amount back into minor units. It rejects
// values with more than two fractional digits and values outside int64.
func DecimalToInt(amount string) (int64, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", amount, err)
	}

	minor := d.Shift(2)
	if !minor.IsInteger() {
		return 0, fmt.Errorf("invalid amount %q: more than two fractional digits", amount)
	}

	if minor.GreaterThan(decimal.NewFromInt(math.MaxInt64)) || minor.LessThan(decimal.NewFromInt(math.MinInt64)) {
		return 0, fmt.Errorf("invalid amount %q: out of range", amount)
	}

	return minor.IntPart(), nil
}

// parseMinorUnits converts a validated digit string to an integer amount.
func parseMinorUnits(amount string) (int64, error) {
	minor, err := strconv.ParseInt(amount, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s is out of range", amount)
	}
	return minor, nil
}

// addMinorUnits adds two non-negative amounts, failing instead of wrapping.
func addMinorUnits(a, b int64) (int64, error) {
	if b > math.MaxInt64-a {
		return 0, ErrControlSumOverflow
	}
	return a + b, nil
}
