package models

import "time"

// Coord is a WGS84 point in decimal degrees.
type Coord struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// VehicleStatus covers the operational states a fleet asset can be in.
type VehicleStatus string

const (
	StatusAvailable VehicleStatus = "available"
	StatusBusy      VehicleStatus = "busy"
	StatusOffline   VehicleStatus = "offline"
	StatusCharging  VehicleStatus = "charging"
)

// VehicleClass is decided at vehicle creation time. Premium dispatch
// bonuses compare this tag, never the free-text Type label.
type VehicleClass string

const (
	ClassStandard VehicleClass = "standard"
	ClassVan      VehicleClass = "van"
	ClassBus      VehicleClass = "bus"
	ClassTaxi     VehicleClass = "taxi"
	ClassPremium  VehicleClass = "premium"
)

// Vehicle is one fleet asset. The pool that owns these is external to the
// dispatch core; allocation reads a snapshot and the caller commits the
// status/passenger transition afterwards.
type Vehicle struct {
	ID                string        `json:"id"`
	Type              string        `json:"type"` // display label, e.g. "EV minivan"
	Class             VehicleClass  `json:"class"`
	Status            VehicleStatus `json:"status"`
	Location          Coord         `json:"location"`
	LocationName      string        `json:"location_name,omitempty"`
	DriverName        string        `json:"driver_name,omitempty"`
	Capacity          int           `json:"capacity"`
	CurrentPassengers int           `json:"current_passengers"`
	BatteryLevel      *float64      `json:"battery_level,omitempty"` // EV only; nil means unknown
	IsEV              bool          `json:"is_ev"`
	Rating            float64       `json:"rating"`  // informational, not scored
	Heading           float64       `json:"heading"` // degrees, 0-360
	Speed             float64       `json:"speed"`   // km/h
	LastUpdated       time.Time     `json:"last_updated"`
}

// RemainingCapacity is the number of additional passengers the vehicle can take.
func (v Vehicle) RemainingCapacity() int {
	return v.Capacity - v.CurrentPassengers
}

// Priority selects which scoring bonus the allocator applies.
type Priority string

const (
	PriorityNearest Priority = "nearest"
	PriorityFastest Priority = "fastest"
	PriorityEco     Priority = "eco"
	PriorityPremium Priority = "premium"
)

// DispatchRequest is one trip ask. Built by the transport layer from raw
// input; named-location resolution happens before it gets here.
type DispatchRequest struct {
	Pickup      Coord     `json:"pickup"`
	PickupName  string    `json:"pickup_name"`
	Dropoff     Coord     `json:"dropoff"`
	DropoffName string    `json:"dropoff_name"`
	Passengers  int       `json:"passengers"`
	Priority    Priority  `json:"priority"`
	RequestedAt time.Time `json:"requested_at"`
	UserID      string    `json:"user_id,omitempty"`
}

// DispatchStatus is the outcome class of one allocation.
type DispatchStatus string

const (
	DispatchAssigned  DispatchStatus = "assigned"
	DispatchNoVehicle DispatchStatus = "no_vehicle"
	DispatchError     DispatchStatus = "error"
)

// DispatchResult is the outcome of one allocation call. Vehicle is nil when
// Status is no_vehicle; callers must check before dereferencing.
type DispatchResult struct {
	RequestID     string         `json:"request_id"`
	Vehicle       *Vehicle       `json:"assigned_vehicle,omitempty"`
	ETAMinutes    int            `json:"eta_minutes"`
	EstimatedCost int            `json:"estimated_cost"` // KRW
	RoutePath     []Coord        `json:"route_path"`
	Pooling       bool           `json:"pooling_available"`
	Status        DispatchStatus `json:"status"`
}

// Location is a labeled point with a baseline demand, fed to the forecaster.
type Location struct {
	Coord      Coord  `json:"location"`
	Label      string `json:"label"`
	BaseDemand int    `json:"base_demand"`
}

// DemandForecast is one heatmap point for one time slot.
type DemandForecast struct {
	Coord           Coord   `json:"location"`
	Label           string  `json:"label"`
	PredictedDemand int     `json:"predicted_demand"`
	TimeSlot        string  `json:"time_slot"`
	Confidence      float64 `json:"confidence"`
}

// PriceBreakdown is the full fare decomposition for one trip. All amounts
// are integer KRW (no minor unit).
type PriceBreakdown struct {
	BaseFare        int     `json:"base_fare"` // the mode's minimum fare floor
	DistanceFare    int     `json:"distance_fare"`
	TimeSurcharge   int     `json:"time_surcharge"` // negative on off-peak
	TimeMultiplier  float64 `json:"time_multiplier"`
	Subtotal        int     `json:"subtotal"`
	MUPointDiscount int     `json:"mu_point_discount"`
	FinalFare       int     `json:"final_fare"`
	MUPointEarn     int     `json:"mu_point_earn"`
	Currency        string  `json:"currency"`
}

// Booking is a persisted trip purchase with its computed fare.
type Booking struct {
	ID        string         `json:"id"`
	UserID    string         `json:"user_id"`
	Mode      string         `json:"mode"`
	Origin    string         `json:"origin"`
	Dest      string         `json:"dest"`
	Price     PriceBreakdown `json:"price"`
	PaymentID string         `json:"payment_id,omitempty"` // stripe intent, card payments only
	Status    string         `json:"status"`               // confirmed, completed, canceled
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// PointEntry is one line in a user's MU point history.
type PointEntry struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Delta       int       `json:"delta"` // positive earn, negative spend
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// VehicleTelemetry is the wire shape drivers publish and the consumer ingests.
type VehicleTelemetry struct {
	VehicleID string    `json:"vehicle_id"`
	Location  Coord     `json:"location"`
	Heading   float64   `json:"heading"`
	Speed     float64   `json:"speed"`
	Status    string    `json:"status"`
	Battery   *float64  `json:"battery,omitempty"`
	At        time.Time `json:"at"`
}
