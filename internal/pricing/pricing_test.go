package pricing

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNormalDRTFare(t *testing.T) {
	got := DefaultTable().Calculate(15, "drt", "normal", 0, 1)
	if got.DistanceFare != 13500 {
		t.Fatalf("distance fare: expected 13500, got %d", got.DistanceFare)
	}
	if got.TimeSurcharge != 0 {
		t.Fatalf("surcharge: expected 0, got %d", got.TimeSurcharge)
	}
	if got.Subtotal != 13500 || got.FinalFare != 13500 {
		t.Fatalf("subtotal/final: %d/%d", got.Subtotal, got.FinalFare)
	}
	if got.MUPointDiscount != 0 {
		t.Fatalf("discount: expected 0, got %d", got.MUPointDiscount)
	}
	if got.MUPointEarn != 675 {
		t.Fatalf("earn: expected 675, got %d", got.MUPointEarn)
	}
	if got.Currency != "KRW" {
		t.Fatalf("currency: %s", got.Currency)
	}
}

func TestDiscountCappedAt30Percent(t *testing.T) {
	got := DefaultTable().Calculate(15, "drt", "normal", 5000, 1)
	if got.MUPointDiscount != 4050 { // round(0.3 * 13500), below the 5000 available
		t.Fatalf("discount: expected 4050, got %d", got.MUPointDiscount)
	}
	if got.FinalFare != 9450 {
		t.Fatalf("final: expected 9450, got %d", got.FinalFare)
	}
	if got.MUPointEarn != 473 { // round(9450 * 0.05)
		t.Fatalf("earn: expected 473, got %d", got.MUPointEarn)
	}
}

func TestDiscountLimitedByBalance(t *testing.T) {
	got := DefaultTable().Calculate(15, "drt", "normal", 1000, 1)
	if got.MUPointDiscount != 1000 {
		t.Fatalf("discount: expected the full 1000 points, got %d", got.MUPointDiscount)
	}
	if got.FinalFare != 12500 {
		t.Fatalf("final: expected 12500, got %d", got.FinalFare)
	}
}

func TestFinalFareNeverNegative(t *testing.T) {
	got := DefaultTable().Calculate(0.1, "bus", "off", 100000, 1)
	if got.FinalFare < 0 {
		t.Fatalf("final fare went negative: %d", got.FinalFare)
	}
	if got.MUPointDiscount > got.Subtotal {
		t.Fatalf("discount %d exceeds subtotal %d", got.MUPointDiscount, got.Subtotal)
	}
}

func TestMinimumFareFloors(t *testing.T) {
	if got := DefaultTable().Calculate(1, "bus", "normal", 0, 1); got.Subtotal != 1500 {
		t.Fatalf("bus floor: expected 1500, got %d", got.Subtotal)
	}
	if got := DefaultTable().Calculate(10, "ktx", "normal", 0, 1); got.Subtotal != 15000 {
		t.Fatalf("ktx floor: expected 15000, got %d", got.Subtotal)
	}
	if got := DefaultTable().Calculate(0.5, "taxi", "normal", 0, 1); got.Subtotal != 1200 {
		t.Fatalf("taxi floor: expected 1200, got %d", got.Subtotal)
	}
}

func TestOffPeakDiscountTier(t *testing.T) {
	got := DefaultTable().Calculate(20, "taxi", "off", 0, 1)
	if got.TimeSurcharge >= 0 {
		t.Fatalf("off-peak surcharge should be negative, got %d", got.TimeSurcharge)
	}
	if got.Subtotal != got.DistanceFare+got.TimeSurcharge {
		t.Fatalf("subtotal mismatch: %+v", got)
	}
}

func TestUnknownModeAndTierFallBack(t *testing.T) {
	got := DefaultTable().Calculate(10, "hoverboard", "rush", 0, 1)
	if got.DistanceFare != 9000 { // default 900/km
		t.Fatalf("expected default rate, got %d", got.DistanceFare)
	}
	if got.TimeMultiplier != 1.0 {
		t.Fatalf("expected default tier multiplier, got %f", got.TimeMultiplier)
	}
}

func TestPassengerCountDoesNotScaleFare(t *testing.T) {
	one := DefaultTable().Calculate(15, "drt", "normal", 0, 1)
	four := DefaultTable().Calculate(15, "drt", "normal", 0, 4)
	if one.FinalFare != four.FinalFare {
		t.Fatalf("single fare regardless of headcount: %d vs %d", one.FinalFare, four.FinalFare)
	}
}

func TestLoadTableMergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rates.yaml")
	body := "rates:\n  drt:\n    per_km: 1000\ntiers:\n  peak: 1.5\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	table, err := LoadTable(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if table.Rates["drt"].PerKm != 1000 || table.Rates["drt"].MinFare != 1200 {
		t.Fatalf("drt override wrong: %+v", table.Rates["drt"])
	}
	if table.Rates["taxi"].PerKm != 1050 {
		t.Fatalf("untouched mode changed: %+v", table.Rates["taxi"])
	}
	if table.Tiers["peak"] != 1.5 || table.Tiers["night"] != 1.15 {
		t.Fatalf("tier merge wrong: %+v", table.Tiers)
	}
}

func TestLoadTableMissingFile(t *testing.T) {
	if _, err := LoadTable(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
