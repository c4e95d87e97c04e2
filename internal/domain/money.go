package domain

import (
	"fmt"
	"math"
)

// Cents represents monetary values in cents (1/100 of a dollar).
// Using cents avoids floating-point precision issues while providing
// type safety for monetary operations throughout the system.
type Cents int64

// MilliCents represents monetary values in thousandths of a cent.
// Sub-cent precision is required for per-line transformation pricing,
// which bills fractions of a cent per line.
type MilliCents int64

const (
	// CentsPerDollar represents the number of cents in a dollar.
	CentsPerDollar = 100

	// MilliCentsPerCent represents the number of milli-cents in a cent.
	MilliCentsPerCent = 1000
)

// String formats cents as a dollar amount (e.g., 150 → "$1.50").
func (c Cents) String() string { return fmt.Sprintf("$%.2f", float64(c)/CentsPerDollar) }

// IsZero returns true if the amount is zero.
func (c Cents) IsZero() bool { return c == 0 }

// Add returns the sum of two cent amounts.
func (c Cents) Add(x Cents) Cents { return c + x }

// Cents converts milli-cents to whole cents, rounding half away from zero.
func (m MilliCents) Cents() Cents {
	return Cents(math.Round(float64(m) / MilliCentsPerCent))
}

// Add returns the sum of two milli-cent amounts.
func (m MilliCents) Add(x MilliCents) MilliCents { return m + x }
