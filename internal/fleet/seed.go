package fleet

import (
	"time"

	"github.com/example/drt-dispatch/internal/models"
)

func batteryPct(v float64) *float64 { return &v }

// SeedVehicles is the default simulation fleet, spread across Pohang
// landmarks, used when no external telemetry feed is wired up.
func SeedVehicles() []models.Vehicle {
	now := time.Now()
	return []models.Vehicle{
		{ID: "MB-001", Type: "EV compact", Class: models.ClassStandard, Status: models.StatusAvailable,
			Location: models.Coord{Lat: 36.0320, Lng: 129.3650}, LocationName: "Pohang Station",
			DriverName: "Kim M.", Capacity: 4, BatteryLevel: batteryPct(85), IsEV: true,
			Rating: 4.8, Heading: 90, LastUpdated: now},
		{ID: "MB-002", Type: "EV minivan", Class: models.ClassVan, Status: models.StatusAvailable,
			Location: models.Coord{Lat: 35.9877, Lng: 129.4200}, LocationName: "Pohang Airport",
			DriverName: "Lee S.", Capacity: 7, CurrentPassengers: 2, BatteryLevel: batteryPct(72), IsEV: true,
			Rating: 4.9, Heading: 180, Speed: 35, LastUpdated: now},
		{ID: "MB-003", Type: "EV shuttle bus", Class: models.ClassBus, Status: models.StatusAvailable,
			Location: models.Coord{Lat: 36.0097, Lng: 129.3543}, LocationName: "POSCO HQ",
			DriverName: "Park J.", Capacity: 12, BatteryLevel: batteryPct(91), IsEV: true,
			Rating: 4.7, Heading: 45, LastUpdated: now},
		{ID: "MB-004", Type: "taxi", Class: models.ClassTaxi, Status: models.StatusAvailable,
			Location: models.Coord{Lat: 36.0320, Lng: 129.3600}, LocationName: "Pohang City Hall",
			DriverName: "Choi D.", Capacity: 4, IsEV: false,
			Rating: 4.6, Heading: 270, LastUpdated: now},
		{ID: "MB-005", Type: "EV compact", Class: models.ClassStandard, Status: models.StatusAvailable,
			Location: models.Coord{Lat: 36.1039, Lng: 129.3887}, LocationName: "Handong University",
			DriverName: "Jung Y.", Capacity: 4, BatteryLevel: batteryPct(68), IsEV: true,
			Rating: 4.9, LastUpdated: now},
		{ID: "MB-006", Type: "premium sedan", Class: models.ClassPremium, Status: models.StatusAvailable,
			Location: models.Coord{Lat: 36.0628, Lng: 129.3857}, LocationName: "Yeongildae Beach",
			DriverName: "Kang T.", Capacity: 4, IsEV: false,
			Rating: 5.0, Heading: 135, LastUpdated: now},
	}
}

// SeedLocations is the default heatmap catalog with baseline demand per spot.
func SeedLocations() []models.Location {
	return []models.Location{
		{Coord: models.Coord{Lat: 36.0320, Lng: 129.3650}, Label: "Pohang Station", BaseDemand: 7},
		{Coord: models.Coord{Lat: 35.9877, Lng: 129.4200}, Label: "Pohang Airport", BaseDemand: 5},
		{Coord: models.Coord{Lat: 36.0320, Lng: 129.3600}, Label: "Pohang City Hall", BaseDemand: 4},
		{Coord: models.Coord{Lat: 36.0097, Lng: 129.3543}, Label: "POSCO HQ", BaseDemand: 6},
		{Coord: models.Coord{Lat: 36.1039, Lng: 129.3887}, Label: "Handong University", BaseDemand: 3},
		{Coord: models.Coord{Lat: 36.0628, Lng: 129.3857}, Label: "Yeongildae Beach", BaseDemand: 5},
		{Coord: models.Coord{Lat: 36.0245, Lng: 129.3650}, Label: "Jukdo Market", BaseDemand: 4},
		{Coord: models.Coord{Lat: 36.0189, Lng: 129.3421}, Label: "St. Mary's Hospital", BaseDemand: 3},
	}
}
