package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/example/drt-dispatch/internal/dispatch"
	"github.com/example/drt-dispatch/internal/fleet"
	"github.com/example/drt-dispatch/internal/models"
	"github.com/example/drt-dispatch/internal/observability"
	"github.com/example/drt-dispatch/internal/wallet"
)

const commitAttempts = 3

func (s *Server) handleDispatch(w http.ResponseWriter, r *http.Request) {
	var req models.DispatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	// The allocator trusts its inputs; sanitize here.
	if req.Passengers < 1 {
		req.Passengers = 1
	}
	if req.Priority == "" {
		req.Priority = models.PriorityNearest
	}
	if req.RequestedAt.IsZero() {
		req.RequestedAt = time.Now()
	}

	start := time.Now()
	// Snapshot-allocate-commit; a lost commit race means our snapshot went
	// stale, so take a fresh one and allocate again.
	for attempt := 0; attempt < commitAttempts; attempt++ {
		pool, err := s.fleet.Snapshot(r.Context())
		if err != nil {
			observability.DispatchTotal.WithLabelValues(string(models.DispatchError)).Inc()
			writeError(w, http.StatusInternalServerError, "fleet unavailable")
			return
		}
		observability.VehiclesTracked.Set(float64(len(pool)))

		res := dispatch.Allocate(pool, req)
		if res.Status == models.DispatchNoVehicle {
			observability.DispatchTotal.WithLabelValues(string(models.DispatchNoVehicle)).Inc()
			writeError(w, http.StatusServiceUnavailable, "no vehicles available, retry shortly")
			return
		}

		err = s.fleet.Commit(r.Context(), res.Vehicle.ID, req.Passengers)
		if err == fleet.ErrAssignmentConflict {
			continue
		}
		if err != nil {
			observability.DispatchTotal.WithLabelValues(string(models.DispatchError)).Inc()
			writeError(w, http.StatusInternalServerError, "assignment failed")
			return
		}

		observability.DispatchTotal.WithLabelValues(string(models.DispatchAssigned)).Inc()
		observability.DispatchLatency.Observe(time.Since(start).Seconds())
		s.logger.Info("dispatch assigned",
			"request_id", res.RequestID,
			"vehicle_id", res.Vehicle.ID,
			"eta_minutes", res.ETAMinutes,
			"pooling", res.Pooling,
		)
		writeJSON(w, http.StatusOK, res)
		return
	}
	observability.DispatchTotal.WithLabelValues(string(models.DispatchNoVehicle)).Inc()
	writeError(w, http.StatusServiceUnavailable, "no vehicles available, retry shortly")
}

func (s *Server) handleVehicles(w http.ResponseWriter, r *http.Request) {
	pool, err := s.fleet.Snapshot(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "fleet unavailable")
		return
	}
	observability.VehiclesTracked.Set(float64(len(pool)))
	writeJSON(w, http.StatusOK, pool)
}

func (s *Server) handleTelemetry(w http.ResponseWriter, r *http.Request) {
	var t models.VehicleTelemetry
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if t.VehicleID == "" {
		writeError(w, http.StatusBadRequest, "vehicle_id required")
		return
	}
	if t.At.IsZero() {
		t.At = time.Now()
	}

	if s.kafka != nil {
		if err := s.kafka.PublishTelemetry(t); err != nil {
			s.logger.Warn("telemetry publish failed", "vehicle_id", t.VehicleID, "error", err)
		}
	}

	v := s.findVehicle(r, t.VehicleID)
	v.Location = t.Location
	v.Heading = t.Heading
	v.Speed = t.Speed
	if t.Status != "" {
		v.Status = models.VehicleStatus(t.Status)
	}
	if t.Battery != nil {
		v.BatteryLevel = t.Battery
	}
	if err := s.fleet.Upsert(r.Context(), v); err != nil {
		writeError(w, http.StatusInternalServerError, "fleet update failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// findVehicle returns the current record for id, or a minimal new one so a
// previously unseen vehicle can join the pool via telemetry.
func (s *Server) findVehicle(r *http.Request, id string) models.Vehicle {
	if pool, err := s.fleet.Snapshot(r.Context()); err == nil {
		for _, v := range pool {
			if v.ID == id {
				return v
			}
		}
	}
	return models.Vehicle{
		ID:       id,
		Class:    models.ClassStandard,
		Status:   models.StatusAvailable,
		Capacity: 4,
	}
}

func (s *Server) handleForecast(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	hour := now.Hour()
	dow := int(now.Weekday())
	if v := r.URL.Query().Get("hour"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			hour = n
		}
	}
	if v := r.URL.Query().Get("dow"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			dow = n
		}
	}
	writeJSON(w, http.StatusOK, s.forecastNow(hour, dow))
}

type quoteRequest struct {
	DistanceKm  float64 `json:"distance_km"`
	Mode        string  `json:"mode"`
	PricingTier string  `json:"pricing_tier"`
	MUPoints    int     `json:"mu_points"`
	Passengers  int     `json:"passengers"`
}

func (s *Server) handleQuote(w http.ResponseWriter, r *http.Request) {
	var q quoteRequest
	if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if q.DistanceKm < 0 {
		writeError(w, http.StatusBadRequest, "distance_km must be >= 0")
		return
	}
	if q.Passengers < 1 {
		q.Passengers = 1
	}
	observability.PricingQuotes.Inc()
	writeJSON(w, http.StatusOK, s.rates.Calculate(q.DistanceKm, q.Mode, q.PricingTier, q.MUPoints, q.Passengers))
}

type bookingRequest struct {
	UserID        string  `json:"user_id"`
	Mode          string  `json:"mode"`
	PricingTier   string  `json:"pricing_tier"`
	DistanceKm    float64 `json:"distance_km"`
	Origin        string  `json:"origin"`
	Dest          string  `json:"dest"`
	PaymentMethod string  `json:"payment_method"` // card, mu
	UsePoints     bool    `json:"use_points"`
}

func (s *Server) handleCreateBooking(w http.ResponseWriter, r *http.Request) {
	var req bookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.UserID == "" {
		writeError(w, http.StatusBadRequest, "user_id required")
		return
	}
	if req.DistanceKm < 0 {
		writeError(w, http.StatusBadRequest, "distance_km must be >= 0")
		return
	}

	available := 0
	if req.UsePoints {
		balance, err := s.ledger.Balance(r.Context(), req.UserID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "wallet unavailable")
			return
		}
		available = balance
	}

	price := s.rates.Calculate(req.DistanceKm, req.Mode, req.PricingTier, available, 1)

	if price.MUPointDiscount > 0 {
		if _, err := s.ledger.Apply(r.Context(), req.UserID, -price.MUPointDiscount, "fare discount"); err != nil {
			if err == wallet.ErrInsufficientPoints {
				writeError(w, http.StatusConflict, "point balance changed, retry")
				return
			}
			writeError(w, http.StatusInternalServerError, "wallet unavailable")
			return
		}
	}

	booking := &models.Booking{
		ID:        uuid.New().String(),
		UserID:    req.UserID,
		Mode:      req.Mode,
		Origin:    req.Origin,
		Dest:      req.Dest,
		Price:     price,
		Status:    "confirmed",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if req.PaymentMethod == "card" && s.payments != nil && price.FinalFare > 0 {
		id, err := s.payments.Hold(r.Context(), int64(price.FinalFare), "krw", req.UserID)
		if err != nil {
			// undo the point debit; the booking never happened
			if price.MUPointDiscount > 0 {
				_, _ = s.ledger.Apply(r.Context(), req.UserID, price.MUPointDiscount, "fare discount refund")
			}
			observability.BookingsTotal.WithLabelValues("payment_failed").Inc()
			writeError(w, http.StatusBadGateway, "payment hold failed")
			return
		}
		booking.PaymentID = id
	}

	if price.MUPointEarn > 0 {
		if _, err := s.ledger.Apply(r.Context(), req.UserID, price.MUPointEarn, "trip earn"); err != nil {
			s.logger.Warn("point earn failed", "user_id", req.UserID, "error", err)
		}
	}

	if err := s.bookings.SaveBooking(r.Context(), booking); err != nil {
		writeError(w, http.StatusInternalServerError, "booking save failed")
		return
	}
	observability.BookingsTotal.WithLabelValues("confirmed").Inc()
	s.logger.Info("booking confirmed", "booking_id", booking.ID, "user_id", booking.UserID, "final_fare", price.FinalFare)
	writeJSON(w, http.StatusCreated, booking)
}

func (s *Server) handleListBookings(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "userId required")
		return
	}
	list, err := s.bookings.ByUser(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "booking lookup failed")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleGetPoints(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "userId required")
		return
	}
	balance, err := s.ledger.Balance(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "wallet unavailable")
		return
	}
	history, err := s.ledger.History(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "wallet unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"points": balance, "history": history})
}

type pointsRequest struct {
	UserID      string `json:"user_id"`
	Delta       int    `json:"delta"`
	Description string `json:"description"`
}

func (s *Server) handleAdjustPoints(w http.ResponseWriter, r *http.Request) {
	var req pointsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.UserID == "" {
		writeError(w, http.StatusBadRequest, "user_id required")
		return
	}
	if req.Description == "" {
		req.Description = "manual adjustment"
	}
	balance, err := s.ledger.Apply(r.Context(), req.UserID, req.Delta, req.Description)
	if err == wallet.ErrInsufficientPoints {
		writeError(w, http.StatusConflict, "insufficient points")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "wallet unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"points": balance})
}
