package dispatch

import (
	"math"
	"sort"

	"github.com/example/drt-dispatch/internal/geo"
	"github.com/example/drt-dispatch/internal/models"
)

const (
	baseFareKRW      = 1200.0
	farePerKmKRW     = 900.0
	premiumSurcharge = 1.3
	etaMinutesPerKm  = 2.5
	etaFloorMinutes  = 2
	poolingRadiusKm  = 1.5
	routeSegments    = 6
)

// Allocate picks the best vehicle for a request from a pool snapshot.
// It is a pure function: it never mutates the pool, and the caller owns the
// status/passenger transition for the chosen vehicle. An empty or fully
// infeasible pool yields a no_vehicle result with a nil vehicle, never an
// error.
func Allocate(pool []models.Vehicle, req models.DispatchRequest) models.DispatchResult {
	type scored struct {
		v     models.Vehicle
		dist  float64
		score float64
	}

	candidates := make([]scored, 0, len(pool))
	for _, v := range pool {
		if v.Status != models.StatusAvailable || v.RemainingCapacity() < req.Passengers {
			continue
		}
		dist := geo.DistanceKm(v.Location, req.Pickup)
		candidates = append(candidates, scored{v: v, dist: dist, score: Score(v, req, dist)})
	}

	if len(candidates) == 0 {
		return models.DispatchResult{
			RequestID: NewRequestID(),
			Status:    models.DispatchNoVehicle,
			RoutePath: []models.Coord{},
		}
	}

	// Highest score wins; equal scores break on ascending vehicle id so the
	// outcome is independent of pool iteration order.
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].v.ID < candidates[j].v.ID
	})

	best := candidates[0]

	eta := int(math.Round(best.dist*etaMinutesPerKm + 1))
	if eta < etaFloorMinutes {
		eta = etaFloorMinutes
	}

	tripKm := geo.DistanceKm(req.Pickup, req.Dropoff)
	fare := baseFareKRW + tripKm*farePerKmKRW
	if req.Priority == models.PriorityPremium {
		fare *= premiumSurcharge
	}

	// Fleet-wide signal: any candidate already carrying passengers close to
	// the pickup makes pooling an option, regardless of which vehicle won.
	pooling := false
	for _, c := range candidates {
		if c.v.CurrentPassengers > 0 && c.dist < poolingRadiusKm {
			pooling = true
			break
		}
	}

	chosen := best.v
	return models.DispatchResult{
		RequestID:     NewRequestID(),
		Vehicle:       &chosen,
		ETAMinutes:    eta,
		EstimatedCost: int(math.Round(fare)),
		RoutePath:     routePath(best.v.Location, req.Pickup, req.Dropoff),
		Pooling:       pooling,
		Status:        models.DispatchAssigned,
	}
}

// routePath builds a display polyline: linear interpolation from the vehicle
// to the pickup, then pickup to dropoff. It is a visual approximation, not a
// road-network route.
func routePath(vehicleLoc, pickup, dropoff models.Coord) []models.Coord {
	path := make([]models.Coord, 0, 2*routeSegments+1)
	for i := 0; i <= routeSegments; i++ {
		t := float64(i) / routeSegments
		path = append(path, lerp(vehicleLoc, pickup, t))
	}
	for i := 1; i <= routeSegments; i++ {
		t := float64(i) / routeSegments
		path = append(path, lerp(pickup, dropoff, t))
	}
	return path
}

func lerp(a, b models.Coord, t float64) models.Coord {
	return models.Coord{
		Lat: a.Lat + (b.Lat-a.Lat)*t,
		Lng: a.Lng + (b.Lng-a.Lng)*t,
	}
}
