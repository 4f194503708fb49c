package entities

import (
	"fmt"

	"github.com/holiman/uint256"
)

// Amount is an unsigned quantity in the smallest currency unit (micro-STX).
// It is a value type, so copying a struct copies its amounts.
type Amount = uint256.Int

const (
	// BasisPoints is the denominator for ratios and fees
	BasisPoints uint64 = 10000

	// MicroSTXPerSTX is the number of smallest units in one STX
	MicroSTXPerSTX uint64 = 1_000_000
)

// ErrAmountOverflow is returned when an arithmetic result does not fit in 256 bits
var ErrAmountOverflow = fmt.Errorf("amount overflow")

// NewAmount creates an amount from a uint64
func NewAmount(v uint64) Amount {
	return *uint256.NewInt(v)
}

// STX converts whole STX into micro-STX
func STX(v uint64) Amount {
	return NewAmount(v * MicroSTXPerSTX)
}

// ParseAmount parses a base-10 amount string
func ParseAmount(s string) (Amount, error) {
	var a uint256.Int
	if err := a.SetFromDecimal(s); err != nil {
		return a, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return a, nil
}

// AddAmount returns a + b
func AddAmount(a, b Amount) (Amount, error) {
	var z uint256.Int
	if _, overflow := z.AddOverflow(&a, &b); overflow {
		return z, ErrAmountOverflow
	}
	return z, nil
}

// SaturatingSub returns a - b, or zero if b > a
func SaturatingSub(a, b Amount) Amount {
	if b.Gt(&a) {
		return Amount{}
	}
	var z uint256.Int
	z.Sub(&a, &b)
	return z
}

// MinAmount returns the smaller of a and b
func MinAmount(a, b Amount) Amount {
	if a.Lt(&b) {
		return a
	}
	return b
}

// MulDiv returns floor(a * num / den). den must be non-zero.
func MulDiv(a, num, den Amount) (Amount, error) {
	if den.IsZero() {
		return Amount{}, fmt.Errorf("division by zero")
	}
	var z uint256.Int
	if _, overflow := z.MulDivOverflow(&a, &num, &den); overflow {
		return z, ErrAmountOverflow
	}
	return z, nil
}

// MulDivCeil returns ceil(a * num / den). den must be non-zero.
func MulDivCeil(a, num, den Amount) (Amount, error) {
	q, err := MulDiv(a, num, den)
	if err != nil {
		return q, err
	}
	// q*den < a*num means there was a remainder
	var back, prod uint256.Int
	back.Mul(&q, &den)
	if _, overflow := prod.MulOverflow(&a, &num); overflow {
		return q, ErrAmountOverflow
	}
	if back.Lt(&prod) {
		return AddAmount(q, NewAmount(1))
	}
	return q, nil
}

// FormatSTX renders micro-STX as a decimal STX string, e.g. "9.9"
func FormatSTX(a Amount) string {
	var whole, frac uint256.Int
	unit := NewAmount(MicroSTXPerSTX)
	whole.Div(&a, &unit)
	frac.Mod(&a, &unit)
	if frac.IsZero() {
		return whole.Dec()
	}
	s := fmt.Sprintf("%06d", frac.Uint64())
	for len(s) > 0 && s[len(s)-1] == '0' {
		s = s[:len(s)-1]
	}
	return whole.Dec() + "." + s
}
