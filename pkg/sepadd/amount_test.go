package sepadd

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntToDecimal(t *testing.T) {
	tests := []struct {
		minor    int64
		expected string
	}{
		{0, "0.00"},
		{5, "0.05"},
		{50, "0.50"},
		{100, "1.00"},
		{1000, "10.00"},
		{123456789, "1234567.89"},
		{math.MaxInt64, "92233720368547758.07"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, IntToDecimal(tt.minor))
	}
}

func TestDecimalToInt(t *testing.T) {
	tests := []struct {
		amount   string
		expected int64
	}{
		{"0.00", 0},
		{"0.05", 5},
		{"10.00", 1000},
		{"10", 1000},
		{"10.5", 1050},
		{"92233720368547758.07", math.MaxInt64},
	}

	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			minor, err := DecimalToInt(tt.amount)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, minor)
		})
	}
}

func TestDecimalToInt_Errors(t *testing.T) {
	for _, amount := range []string{"", "abc", "1.005", "92233720368547758.08"} {
		t.Run(amount, func(t *testing.T) {
			_, err := DecimalToInt(amount)
			assert.Error(t, err)
		})
	}
}

func TestAmountRoundTrip(t *testing.T) {
	values := []int64{0, 1, 9, 10, 99, 100, 101, 999999, math.MaxInt64}

	r := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 1000; i++ {
		values = append(values, r.Int64N(math.MaxInt64))
	}

	for _, n := range values {
		minor, err := DecimalToInt(IntToDecimal(n))
		require.NoError(t, err)
		require.Equal(t, n, minor)
	}
}

func TestAddMinorUnits(t *testing.T) {
	sum, err := addMinorUnits(1000, 250)
	require.NoError(t, err)
	assert.Equal(t, int64(1250), sum)

	_, err = addMinorUnits(math.MaxInt64, 1)
	assert.ErrorIs(t, err, ErrControlSumOverflow)
}
