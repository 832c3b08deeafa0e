package pricing

import (
	"math"
	"testing"

	"gotrip/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTotal(t *testing.T) {
	tests := []struct {
		name      string
		unitPrice float64
		units     int
		want      float64
	}{
		{"daily rate", 100, 3, 300},
		{"zero price", 0, 5, 0},
		{"binary fraction", 0.1, 3, 0.3},
		{"cents", 19.99, 7, 139.93},
		{"half up", 0.005, 1, 0.01},
		{"half up on product", 1.125, 2, 2.25},
		{"sub-cent rounds up", 33.335, 1, 33.34},
		{"sub-cent rounds down", 33.334, 1, 33.33},
		{"large", 12500.5, 30, 375015},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Total(tt.unitPrice, tt.units)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTotalRejectsInvalidInput(t *testing.T) {
	_, err := Total(-1, 1)
	assert.ErrorIs(t, err, ErrNegativePrice)

	_, err = Total(math.NaN(), 1)
	assert.ErrorIs(t, err, ErrInvalidPrice)

	_, err = Total(math.Inf(1), 1)
	assert.ErrorIs(t, err, ErrInvalidPrice)

	_, err = Total(10, 0)
	assert.ErrorIs(t, err, ErrInvalidUnits)

	_, err = Total(10, -2)
	assert.ErrorIs(t, err, ErrInvalidUnits)
}

func TestTotalRejectsUnstorableAmounts(t *testing.T) {
	tests := []struct {
		name      string
		unitPrice float64
		units     int
	}{
		{"huge price", 1e308, 2},
		{"max float", math.MaxFloat64, 365},
		{"over column", 1e11, 1},
		{"product over column", 5e9, 3},
		{"rounds over column", 9999999999.995, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Total(tt.unitPrice, tt.units)
			assert.ErrorIs(t, err, ErrAmountTooLarge)
			assert.Zero(t, got)
		})
	}

	got, err := Total(MaxAmount, 1)
	require.NoError(t, err)
	assert.Equal(t, MaxAmount, got)

	_, err = Round(1e11)
	assert.ErrorIs(t, err, ErrAmountTooLarge)
}

func TestTotalMatchesWholeCentProducts(t *testing.T) {
	// Prices expressed in whole cents must multiply exactly.
	for cents := 0; cents <= 50000; cents += 137 {
		price := float64(cents) / 100
		for units := 1; units <= 30; units++ {
			got, err := Total(price, units)
			require.NoError(t, err)
			assert.Equal(t, float64(cents*units)/100, got, "price=%v units=%d", price, units)
		}
	}
}

func TestTotalIsNonNegative(t *testing.T) {
	for _, price := range []float64{0, 0.001, 0.004, 1, 99.999} {
		got, err := Total(price, 1)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, got, 0.0)
	}
}

func TestUnits(t *testing.T) {
	assert.Equal(t, 3, Units(models.PerDay, 3, 2))
	assert.Equal(t, 4, Units(models.PerNight, 4, 1))
	assert.Equal(t, 2, Units(models.PerPerson, 7, 2))
}

func TestRound(t *testing.T) {
	got, err := Round(1499.995)
	require.NoError(t, err)
	assert.Equal(t, 1500.0, got)
}
