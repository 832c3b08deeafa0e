// Package pricing computes booking totals in exact decimal arithmetic.
package pricing

import (
	"errors"
	"math"

	"gotrip/internal/models"

	"github.com/shopspring/decimal"
)

// MinorUnits is the number of decimal places kept for every supported currency.
const MinorUnits = 2

// MaxAmount is the largest amount a NUMERIC(12,2) column holds.
const MaxAmount = 9999999999.99

var (
	ErrNegativePrice  = errors.New("unit price must not be negative")
	ErrInvalidPrice   = errors.New("unit price must be a finite number")
	ErrInvalidUnits   = errors.New("units must be at least 1")
	ErrAmountTooLarge = errors.New("amount must not exceed 9999999999.99")
)

var maxAmount = decimal.RequireFromString("9999999999.99")

// Total returns unitPrice × units rounded half-up to the currency minor unit.
func Total(unitPrice float64, units int) (float64, error) {
	if math.IsNaN(unitPrice) || math.IsInf(unitPrice, 0) {
		return 0, ErrInvalidPrice
	}
	if unitPrice < 0 {
		return 0, ErrNegativePrice
	}
	if units < 1 {
		return 0, ErrInvalidUnits
	}

	// NewFromFloat reads the shortest decimal form, so 0.1 is exactly 1/10.
	total := decimal.NewFromFloat(unitPrice).
		Mul(decimal.NewFromInt(int64(units))).
		Round(MinorUnits)
	if total.GreaterThan(maxAmount) {
		return 0, ErrAmountTooLarge
	}
	return total.InexactFloat64(), nil
}

// Round rounds a non-negative amount half-up to the currency minor unit.
func Round(amount float64) (float64, error) {
	return Total(amount, 1)
}

// Units returns the number of billing units for a booking of the given shape.
// Day and night rates bill per day of the stay, person rates per traveler.
func Units(unit models.PriceUnit, durationDays, travelers int) int {
	if unit == models.PerPerson {
		return travelers
	}
	return durationDays
}
