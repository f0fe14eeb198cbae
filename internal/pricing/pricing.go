package pricing

import (
	"math"

	"github.com/example/drt-dispatch/internal/models"
)

const (
	discountCapRatio = 0.3  // MU points can cover at most 30% of the subtotal
	earnRatio        = 0.05 // 5% of the final fare comes back as points
)

// Rate is the per-mode fare parameters.
type Rate struct {
	PerKm   int `yaml:"per_km"`   // KRW per km
	MinFare int `yaml:"min_fare"` // fare floor in KRW
}

// Table holds all pricing parameters. Unknown modes fall back to the
// default rate and unknown tiers to 1.0, by policy rather than error.
type Table struct {
	Rates       map[string]Rate    `yaml:"rates"`
	Tiers       map[string]float64 `yaml:"tiers"`
	DefaultRate Rate               `yaml:"default_rate"`
	Currency    string             `yaml:"currency"`
}

// DefaultTable returns the built-in KRW rate card.
func DefaultTable() *Table {
	return &Table{
		Rates: map[string]Rate{
			"drt":    {PerKm: 900, MinFare: 1200},
			"taxi":   {PerKm: 1050, MinFare: 1200},
			"bus":    {PerKm: 100, MinFare: 1500},
			"ktx":    {PerKm: 90, MinFare: 15000},
			"boat":   {PerKm: 1200, MinFare: 1200},
			"subway": {PerKm: 80, MinFare: 1200},
		},
		Tiers: map[string]float64{
			"normal": 1.0,
			"peak":   1.2,
			"night":  1.15,
			"off":    0.9,
		},
		DefaultRate: Rate{PerKm: 900, MinFare: 1200},
		Currency:    "KRW",
	}
}

// Calculate produces the fare breakdown for one trip. Passenger count is
// accepted but never scales the fare: one fare per dispatch regardless of
// headcount.
func (t *Table) Calculate(distanceKm float64, mode, tier string, availablePoints, passengers int) models.PriceBreakdown {
	rate, ok := t.Rates[mode]
	if !ok {
		rate = t.DefaultRate
	}
	mult, ok := t.Tiers[tier]
	if !ok {
		mult = 1.0
	}

	distanceFare := int(math.Round(distanceKm * float64(rate.PerKm)))
	timeSurcharge := int(math.Round(float64(distanceFare) * (mult - 1)))
	subtotal := distanceFare + timeSurcharge
	if subtotal < rate.MinFare {
		subtotal = rate.MinFare
	}

	maxDiscount := int(math.Round(float64(subtotal) * discountCapRatio))
	discount := availablePoints
	if discount > maxDiscount {
		discount = maxDiscount
	}
	if discount < 0 {
		discount = 0
	}

	final := subtotal - discount

	return models.PriceBreakdown{
		BaseFare:        rate.MinFare,
		DistanceFare:    distanceFare,
		TimeSurcharge:   timeSurcharge,
		TimeMultiplier:  mult,
		Subtotal:        subtotal,
		MUPointDiscount: discount,
		FinalFare:       final,
		MUPointEarn:     int(math.Round(float64(final) * earnRatio)),
		Currency:        t.Currency,
	}
}
