package dispatch

import (
	"github.com/example/drt-dispatch/internal/models"
)

const (
	baselineScore = 100.0
	// ScoreInfeasible marks a capacity-infeasible candidate. It keeps the
	// vehicle in the ranked list structurally while guaranteeing it never
	// outranks a feasible one.
	ScoreInfeasible = -999.0

	distancePenaltyPerKm = 10.0
	nearestBonusWeight   = 20.0
	fastestSpeedWeight   = 0.3
	defaultCruiseSpeed   = 30.0 // km/h, used when the vehicle reports 0
	ecoBonus             = 25.0
	premiumBonus         = 30.0
	poolingBonus         = 15.0
	lowBatteryPenalty    = 40.0
	lowBatteryThreshold  = 20.0
)

// Score rates one candidate vehicle for a request, given its distance to the
// pickup point in km. Higher is better; ScoreInfeasible means excluded.
func Score(v models.Vehicle, req models.DispatchRequest, distKm float64) float64 {
	score := baselineScore
	score -= distKm * distancePenaltyPerKm

	switch req.Priority {
	case models.PriorityNearest:
		score += nearestBonusWeight / (distKm + 0.1)
	case models.PriorityFastest:
		speed := v.Speed
		if speed <= 0 {
			speed = defaultCruiseSpeed
		}
		score += speed * fastestSpeedWeight
	case models.PriorityEco:
		if v.IsEV {
			score += ecoBonus
		}
	case models.PriorityPremium:
		if v.Class == models.ClassPremium {
			score += premiumBonus
		}
	}

	if v.RemainingCapacity() < req.Passengers {
		score = ScoreInfeasible
	}

	// Pooling incentive: the vehicle already carries passengers and the
	// request still fits.
	if v.CurrentPassengers > 0 && v.CurrentPassengers+req.Passengers <= v.Capacity {
		score += poolingBonus
	}

	// A nil battery level means "not low": non-EVs and EVs that have not
	// reported yet are not penalized.
	if v.IsEV && v.BatteryLevel != nil && *v.BatteryLevel < lowBatteryThreshold {
		score -= lowBatteryPenalty
	}

	return score
}
