// Package units holds the integer arithmetic used for fractional property units
// and loan amounts. Values are decimal.Decimal restricted to whole numbers in the
// signed 128-bit range.
package units

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// BasisPoints is the denominator for bps rates (fees, APY).
const BasisPoints = 10_000

// SecondsPerDay converts loan durations and the repayment grace window.
const SecondsPerDay = 86_400

var (
	maxAmount = decimal.NewFromBigInt(new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 127), big.NewInt(1)), 0)
	minAmount = decimal.NewFromBigInt(new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 127)), 0)
	bpsDenom  = decimal.NewFromInt(BasisPoints)
)

// Max returns the largest representable amount (2^127 - 1).
func Max() decimal.Decimal { return maxAmount }

// Valid reports whether a is a whole number inside the signed 128-bit range.
func Valid(a decimal.Decimal) bool {
	return a.IsInteger() && a.GreaterThanOrEqual(minAmount) && a.LessThanOrEqual(maxAmount)
}

// Positive reports whether a is valid and strictly greater than zero.
func Positive(a decimal.Decimal) bool { return Valid(a) && a.IsPositive() }

// Quo divides and truncates toward zero. b must not be zero.
func Quo(a, b decimal.Decimal) decimal.Decimal {
	q, _ := a.QuoRem(b, 0)
	return q
}

// MulDiv returns a*b/c truncated toward zero, without intermediate overflow.
func MulDiv(a, b, c decimal.Decimal) decimal.Decimal {
	return Quo(a.Mul(b), c)
}

// Bps applies a basis-point rate: floor(a * bps / 10000) for non-negative a.
func Bps(a decimal.Decimal, bps uint32) decimal.Decimal {
	if bps == 0 {
		return decimal.Zero
	}
	return MulDiv(a, decimal.NewFromInt(int64(bps)), bpsDenom)
}

// Parse reads a base-10 integer amount; it rejects fractions and out-of-range values.
func Parse(s string) (decimal.Decimal, bool) {
	d, err := decimal.NewFromString(s)
	if err != nil || !Valid(d) {
		return decimal.Zero, false
	}
	return d, true
}
