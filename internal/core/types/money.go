// Package types provides common type aliases and utilities.
package types

import (
	"math"

	"github.com/shopspring/decimal"
)

// Money represents a monetary value in rupees with full precision.
// Uses decimal.Decimal to avoid floating-point errors in GST arithmetic.
type Money = decimal.Decimal

// NewMoney creates a Money value from a float.
// WARNING: Use NewMoneyFromString for precise values.
func NewMoney(f float64) Money {
	return decimal.NewFromFloat(f)
}

// NewMoneyFromString creates a Money value from a string.
// This is the preferred method for monetary values.
func NewMoneyFromString(s string) (Money, error) {
	return decimal.NewFromString(s)
}

// MustMoney creates a Money value from a string, panics on error.
// Use only for constants.
func MustMoney(s string) Money {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Zero returns zero Money value.
func Zero() Money {
	return decimal.Zero
}

// RoundPaise rounds a Money value to 2 decimal places, half away from zero.
// Every derived monetary field is rounded at the point of computation so
// displayed values and aggregated totals are reproducible across recomputes.
func RoundPaise(m Money) Money {
	return m.Round(2)
}

// RoundRupee rounds a Money value to a whole rupee, half away from zero.
// Used for the invoice grand total; the difference is the round-off amount.
func RoundRupee(m Money) Money {
	return m.Round(0)
}

// Percent applies pct/100 to base. The result is not rounded; callers round
// at the point they store the value.
func Percent(base, pct Money) Money {
	return base.Mul(pct).Div(decimal.NewFromInt(100))
}

// ClampMoney degrades invalid numeric input to zero: negative values, NaN
// and infinities coming from free-form form fields all become 0.
// A billing flow must never block data entry on a bad keystroke.
func ClampMoney(f float64) Money {
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return decimal.Zero
	}
	return decimal.NewFromFloat(f)
}

// ClampPercent behaves like ClampMoney but additionally caps at 100,
// for discount percentages.
func ClampPercent(f float64) Money {
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return decimal.Zero
	}
	if f > 100 {
		return decimal.NewFromInt(100)
	}
	return decimal.NewFromFloat(f)
}

// Quantity is a whole-unit stock count. Pharmacy stock moves in indivisible
// units (strips, bottles, packs), so no fractional scale is needed.
type Quantity int64

// ClampQuantity degrades negative counts to zero.
func ClampQuantity(v int64) Quantity {
	if v < 0 {
		return 0
	}
	return Quantity(v)
}

func (q Quantity) Int64() int64 { return int64(q) }

func (q Quantity) IsZero() bool { return q == 0 }

func (q Quantity) IsPositive() bool { return q > 0 }

func (q Quantity) IsNegative() bool { return q < 0 }

func (q Quantity) Neg() Quantity { return -q }

// Money converts the count to a decimal for price arithmetic.
func (q Quantity) Money() Money {
	return decimal.NewFromInt(int64(q))
}
