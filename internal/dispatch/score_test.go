package dispatch

import (
	"testing"

	"github.com/example/drt-dispatch/internal/models"
)

func baseRequest(priority models.Priority, passengers int) models.DispatchRequest {
	return models.DispatchRequest{
		Pickup:     models.Coord{Lat: 36.032, Lng: 129.365},
		Dropoff:    models.Coord{Lat: 35.988, Lng: 129.420},
		Passengers: passengers,
		Priority:   priority,
	}
}

func TestScoreCapacityInfeasibleSentinel(t *testing.T) {
	v := models.Vehicle{ID: "MB-001", Status: models.StatusAvailable, Capacity: 4, CurrentPassengers: 3}
	got := Score(v, baseRequest(models.PriorityNearest, 2), 1.0)
	if got > ScoreInfeasible {
		t.Fatalf("expected sentinel score, got %f", got)
	}
}

func TestScoreNearestPrefersCloser(t *testing.T) {
	v := models.Vehicle{ID: "MB-001", Status: models.StatusAvailable, Capacity: 4}
	req := baseRequest(models.PriorityNearest, 1)
	near := Score(v, req, 0.2)
	far := Score(v, req, 3.0)
	if near <= far {
		t.Fatalf("near=%f should beat far=%f", near, far)
	}
}

func TestScoreNearestAtZeroDistance(t *testing.T) {
	v := models.Vehicle{ID: "MB-001", Status: models.StatusAvailable, Capacity: 4}
	got := Score(v, baseRequest(models.PriorityNearest, 1), 0)
	// 100 - 0 + 20/0.1 = 300; the +0.1 keeps the bonus finite.
	if got != 300 {
		t.Fatalf("expected 300, got %f", got)
	}
}

func TestScoreFastestUsesDefaultCruiseSpeed(t *testing.T) {
	stopped := models.Vehicle{ID: "A", Status: models.StatusAvailable, Capacity: 4, Speed: 0}
	moving := models.Vehicle{ID: "B", Status: models.StatusAvailable, Capacity: 4, Speed: 30}
	req := baseRequest(models.PriorityFastest, 1)
	if s1, s2 := Score(stopped, req, 1), Score(moving, req, 1); s1 != s2 {
		t.Fatalf("stopped vehicle should score with 30km/h default: %f vs %f", s1, s2)
	}
}

func TestScoreEcoBonusOnlyForEV(t *testing.T) {
	ev := models.Vehicle{ID: "A", Status: models.StatusAvailable, Capacity: 4, IsEV: true}
	ice := models.Vehicle{ID: "B", Status: models.StatusAvailable, Capacity: 4}
	req := baseRequest(models.PriorityEco, 1)
	if diff := Score(ev, req, 1) - Score(ice, req, 1); diff != 25 {
		t.Fatalf("expected +25 eco bonus, got %f", diff)
	}
}

func TestScorePremiumUsesClassTag(t *testing.T) {
	prem := models.Vehicle{ID: "A", Status: models.StatusAvailable, Capacity: 4, Class: models.ClassPremium, Type: "sedan"}
	std := models.Vehicle{ID: "B", Status: models.StatusAvailable, Capacity: 4, Class: models.ClassStandard, Type: "premium sedan"}
	req := baseRequest(models.PriorityPremium, 1)
	if Score(prem, req, 1) <= Score(std, req, 1) {
		t.Fatal("premium class should outscore a standard vehicle whatever its label says")
	}
}

func TestScoreUnknownPriorityNoBonus(t *testing.T) {
	v := models.Vehicle{ID: "A", Status: models.StatusAvailable, Capacity: 4}
	got := Score(v, baseRequest(models.Priority("vip"), 1), 2)
	if got != 100-20 {
		t.Fatalf("expected distance penalty only, got %f", got)
	}
}

func TestScorePoolingIncentive(t *testing.T) {
	empty := models.Vehicle{ID: "A", Status: models.StatusAvailable, Capacity: 4, CurrentPassengers: 0}
	shared := models.Vehicle{ID: "B", Status: models.StatusAvailable, Capacity: 4, CurrentPassengers: 1}
	req := baseRequest(models.PriorityEco, 1)
	if diff := Score(shared, req, 1) - Score(empty, req, 1); diff != 15 {
		t.Fatalf("expected +15 pooling bonus, got %f", diff)
	}
}

func TestScoreLowBatteryPenalty(t *testing.T) {
	low, full := 15.0, 80.0
	weak := models.Vehicle{ID: "A", Status: models.StatusAvailable, Capacity: 4, IsEV: true, BatteryLevel: &low}
	strong := models.Vehicle{ID: "B", Status: models.StatusAvailable, Capacity: 4, IsEV: true, BatteryLevel: &full}
	req := baseRequest(models.PriorityNearest, 1)
	if diff := Score(strong, req, 1) - Score(weak, req, 1); diff != 40 {
		t.Fatalf("expected 40 point battery penalty, got %f", diff)
	}
}

func TestScoreMissingBatteryNotLow(t *testing.T) {
	noBattery := models.Vehicle{ID: "A", Status: models.StatusAvailable, Capacity: 4, IsEV: true}
	req := baseRequest(models.PriorityNearest, 1)
	if got := Score(noBattery, req, 1); got < 100 {
		t.Fatalf("nil battery must not trigger the low-battery penalty, got %f", got)
	}
}
