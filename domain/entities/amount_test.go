package entities

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMulDiv(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		a        uint64
		num      uint64
		den      uint64
		expected uint64
		ceil     uint64
	}{
		{name: "exact", a: 100, num: 10000, den: 10000, expected: 100, ceil: 100},
		{name: "rounds down", a: 10, num: 10000, den: 11000, expected: 9, ceil: 10},
		{name: "zero numerator", a: 0, num: 5, den: 3, expected: 0, ceil: 0},
		{name: "one unit remainder", a: 7, num: 1, den: 2, expected: 3, ceil: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			floor, err := MulDiv(NewAmount(tt.a), NewAmount(tt.num), NewAmount(tt.den))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, floor.Uint64())

			ceil, err := MulDivCeil(NewAmount(tt.a), NewAmount(tt.num), NewAmount(tt.den))
			require.NoError(t, err)
			assert.Equal(t, tt.ceil, ceil.Uint64())
		})
	}
}

func TestMulDiv_DivisionByZero(t *testing.T) {
	_, err := MulDiv(NewAmount(1), NewAmount(1), Amount{})
	assert.Error(t, err)
}

func TestAddAmount_Overflow(t *testing.T) {
	max, err := ParseAmount("115792089237316195423570985008687907853269984665640564039457584007913129639935")
	require.NoError(t, err)

	_, err = AddAmount(max, NewAmount(1))
	assert.True(t, errors.Is(err, ErrAmountOverflow))
}

func TestSaturatingSub(t *testing.T) {
	diff := SaturatingSub(NewAmount(10), NewAmount(4))
	assert.Equal(t, uint64(6), diff.Uint64())

	sat := SaturatingSub(NewAmount(4), NewAmount(10))
	assert.True(t, sat.IsZero())
}

func TestParseAmount(t *testing.T) {
	a, err := ParseAmount("1000000")
	require.NoError(t, err)
	assert.Equal(t, STX(1), a)

	_, err = ParseAmount("-5")
	assert.Error(t, err)

	_, err = ParseAmount("abc")
	assert.Error(t, err)
}

func TestFormatSTX(t *testing.T) {
	t.Parallel()

	tests := []struct {
		micro    uint64
		expected string
	}{
		{micro: 0, expected: "0"},
		{micro: 9_900_000, expected: "9.9"},
		{micro: 100_000_000, expected: "100"},
		{micro: 1, expected: "0.000001"},
		{micro: 1_250_000, expected: "1.25"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, FormatSTX(NewAmount(tt.micro)))
	}
}
