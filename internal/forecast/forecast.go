package forecast

import (
	"fmt"
	"math"

	"github.com/example/drt-dispatch/internal/models"
)

const (
	weekdayConfidence = 0.88
	weekendConfidence = 0.75
)

// Predict estimates near-term demand for each location at the given hour of
// day (0-23) and day of week (0=Sunday..6=Saturday). Output order matches
// input order. Pure function; inputs are trusted.
func Predict(hour, dayOfWeek int, locations []models.Location) []models.DemandForecast {
	weekend := dayOfWeek == 0 || dayOfWeek == 6
	mult := multiplier(hour, weekend)
	confidence := weekdayConfidence
	if weekend {
		confidence = weekendConfidence
	}
	slot := timeSlot(hour)

	out := make([]models.DemandForecast, 0, len(locations))
	for _, loc := range locations {
		out = append(out, models.DemandForecast{
			Coord:           loc.Coord,
			Label:           loc.Label,
			PredictedDemand: int(math.Round(float64(loc.BaseDemand) * mult)),
			TimeSlot:        slot,
			Confidence:      confidence,
		})
	}
	return out
}

// multiplier applies the first matching time-of-day rule.
func multiplier(hour int, weekend bool) float64 {
	switch {
	case !weekend && hour >= 7 && hour <= 9:
		return 2.2 // morning commute peak
	case !weekend && hour >= 17 && hour <= 20:
		return 1.9 // evening commute peak
	case hour >= 12 && hour <= 13:
		return 1.4 // lunch hour, any day
	case weekend && hour >= 10 && hour <= 18:
		return 1.5 // weekend daytime
	case hour >= 22 || hour <= 5:
		return 0.3 // late night
	default:
		return 1.0
	}
}

func timeSlot(hour int) string {
	return fmt.Sprintf("%02d:00-%02d:00", hour, hour+1)
}
