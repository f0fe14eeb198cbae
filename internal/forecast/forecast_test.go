package forecast

import (
	"testing"

	"github.com/example/drt-dispatch/internal/models"
)

func locs(base int) []models.Location {
	return []models.Location{
		{Coord: models.Coord{Lat: 36.032, Lng: 129.365}, Label: "Pohang Station", BaseDemand: base},
	}
}

func TestWeekdayMorningPeak(t *testing.T) {
	out := Predict(8, 2, locs(8)) // Tuesday 08:00
	if len(out) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(out))
	}
	f := out[0]
	if f.PredictedDemand != 18 { // round(8 * 2.2)
		t.Fatalf("expected 18, got %d", f.PredictedDemand)
	}
	if f.Confidence != 0.88 {
		t.Fatalf("expected weekday confidence 0.88, got %f", f.Confidence)
	}
	if f.TimeSlot != "08:00-09:00" {
		t.Fatalf("bad time slot %q", f.TimeSlot)
	}
}

func TestWeekendMorningNotPeak(t *testing.T) {
	// Sunday 08:00 misses both commute peaks and the weekend-daytime window.
	out := Predict(8, 0, locs(10))
	if out[0].PredictedDemand != 10 {
		t.Fatalf("expected baseline 10, got %d", out[0].PredictedDemand)
	}
	if out[0].Confidence != 0.75 {
		t.Fatalf("expected weekend confidence, got %f", out[0].Confidence)
	}
}

func TestLunchHourAppliesOnWeekends(t *testing.T) {
	out := Predict(12, 6, locs(10)) // Saturday lunch beats the weekend-daytime rule
	if out[0].PredictedDemand != 14 {
		t.Fatalf("expected 14, got %d", out[0].PredictedDemand)
	}
}

func TestWeekendDaytime(t *testing.T) {
	out := Predict(15, 6, locs(10))
	if out[0].PredictedDemand != 15 {
		t.Fatalf("expected 15, got %d", out[0].PredictedDemand)
	}
}

func TestLateNight(t *testing.T) {
	for _, hour := range []int{23, 0, 5} {
		out := Predict(hour, 3, locs(10))
		if out[0].PredictedDemand != 3 {
			t.Fatalf("hour %d: expected 3, got %d", hour, out[0].PredictedDemand)
		}
	}
}

func TestMultiplierOrdering(t *testing.T) {
	peak := Predict(8, 2, locs(100))[0].PredictedDemand
	plain := Predict(15, 2, locs(100))[0].PredictedDemand
	night := Predict(23, 2, locs(100))[0].PredictedDemand
	if !(peak > plain && plain > night) {
		t.Fatalf("expected peak > off-peak > late night, got %d %d %d", peak, plain, night)
	}
}

func TestOrderPreserved(t *testing.T) {
	in := []models.Location{
		{Label: "A", BaseDemand: 1},
		{Label: "B", BaseDemand: 2},
		{Label: "C", BaseDemand: 3},
	}
	out := Predict(15, 2, in)
	for i, f := range out {
		if f.Label != in[i].Label {
			t.Fatalf("order not preserved at %d: %s", i, f.Label)
		}
	}
}
