package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/example/drt-dispatch/internal/config"
	"github.com/example/drt-dispatch/internal/fleet"
	"github.com/example/drt-dispatch/internal/logging"
	"github.com/example/drt-dispatch/internal/models"
	"github.com/example/drt-dispatch/internal/pricing"
	"github.com/example/drt-dispatch/internal/storage"
	"github.com/example/drt-dispatch/internal/wallet"
)

type fakePayments struct {
	fail  bool
	holds []int64
}

func (f *fakePayments) Hold(ctx context.Context, amount int64, currency, customerID string) (string, error) {
	if f.fail {
		return "", errors.New("card declined")
	}
	f.holds = append(f.holds, amount)
	return "pi_test", nil
}

func testServer(t *testing.T, vehicles []models.Vehicle) (*Server, *fleet.Pool, wallet.Ledger) {
	t.Helper()
	pool := fleet.NewPool(vehicles)
	ledger := wallet.NewMemoryLedger()
	cfg := config.ServerConfig{DispatchRateLimit: 1000, DispatchRateBurst: 1000}
	s := NewServer(cfg, logging.NewLogger("error"), Deps{
		Fleet:     pool,
		Rates:     pricing.DefaultTable(),
		Bookings:  storage.NewMemoryStore(),
		Ledger:    ledger,
		Locations: fleet.SeedLocations(),
	})
	return s, pool, ledger
}

func postJSON(t *testing.T, s http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	b, _ := json.Marshal(body)
	req := httptest.NewRequest("POST", path, bytes.NewReader(b))
	req.RemoteAddr = "10.0.0.1:1234"
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	var env struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
		Error   string          `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("bad envelope: %v (%s)", err, rec.Body.String())
	}
	if out != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			t.Fatalf("bad data: %v (%s)", err, env.Data)
		}
	}
}

func TestDispatchAssignsAndCommits(t *testing.T) {
	v := models.Vehicle{ID: "MB-001", Status: models.StatusAvailable, Capacity: 4,
		Location: models.Coord{Lat: 36.0410, Lng: 129.3650}}
	s, pool, _ := testServer(t, []models.Vehicle{v})

	rec := postJSON(t, s, "/api/v1/dispatch", map[string]any{
		"pickup":     map[string]float64{"lat": 36.0320, "lng": 129.3650},
		"dropoff":    map[string]float64{"lat": 35.9877, "lng": 129.4200},
		"passengers": 2,
		"priority":   "nearest",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	var res models.DispatchResult
	decodeData(t, rec, &res)
	if res.Status != models.DispatchAssigned || res.Vehicle == nil || res.Vehicle.ID != "MB-001" {
		t.Fatalf("unexpected result: %+v", res)
	}
	if res.ETAMinutes != 4 {
		t.Fatalf("expected ETA 4 for a 1km approach, got %d", res.ETAMinutes)
	}

	snap, _ := pool.Snapshot(context.Background())
	if snap[0].Status != models.StatusBusy || snap[0].CurrentPassengers != 2 {
		t.Fatalf("assignment not committed: %+v", snap[0])
	}
}

func TestDispatchAllBusyReturns503(t *testing.T) {
	v := models.Vehicle{ID: "MB-001", Status: models.StatusBusy, Capacity: 4}
	s, _, _ := testServer(t, []models.Vehicle{v})
	rec := postJSON(t, s, "/api/v1/dispatch", map[string]any{
		"pickup":     map[string]float64{"lat": 36.03, "lng": 129.36},
		"dropoff":    map[string]float64{"lat": 35.98, "lng": 129.42},
		"passengers": 1,
	})
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

func TestDispatchSanitizesPassengers(t *testing.T) {
	v := models.Vehicle{ID: "MB-001", Status: models.StatusAvailable, Capacity: 4,
		Location: models.Coord{Lat: 36.03, Lng: 129.36}}
	s, pool, _ := testServer(t, []models.Vehicle{v})
	rec := postJSON(t, s, "/api/v1/dispatch", map[string]any{
		"pickup":     map[string]float64{"lat": 36.03, "lng": 129.36},
		"dropoff":    map[string]float64{"lat": 35.98, "lng": 129.42},
		"passengers": 0,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	snap, _ := pool.Snapshot(context.Background())
	if snap[0].CurrentPassengers != 1 {
		t.Fatalf("zero passengers should clamp to 1, got %d", snap[0].CurrentPassengers)
	}
}

func TestQuoteScenario(t *testing.T) {
	s, _, _ := testServer(t, nil)
	rec := postJSON(t, s, "/api/v1/pricing/quote", quoteRequest{
		DistanceKm: 15, Mode: "drt", PricingTier: "normal", MUPoints: 5000, Passengers: 1,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	var p models.PriceBreakdown
	decodeData(t, rec, &p)
	if p.MUPointDiscount != 4050 || p.FinalFare != 9450 {
		t.Fatalf("unexpected breakdown: %+v", p)
	}
}

func TestForecastEndpoint(t *testing.T) {
	s, _, _ := testServer(t, nil)
	req := httptest.NewRequest("GET", "/api/v1/forecast?hour=8&dow=2", nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	var points []models.DemandForecast
	decodeData(t, rec, &points)
	if len(points) != len(fleet.SeedLocations()) {
		t.Fatalf("expected %d points, got %d", len(fleet.SeedLocations()), len(points))
	}
	if points[0].TimeSlot != "08:00-09:00" || points[0].Confidence != 0.88 {
		t.Fatalf("unexpected forecast: %+v", points[0])
	}
}

func TestBookingDebitsAndEarnsPoints(t *testing.T) {
	s, _, ledger := testServer(t, nil)
	ctx := context.Background()
	_, _ = ledger.Apply(ctx, "u1", 5000, "seed")

	rec := postJSON(t, s, "/api/v1/bookings", bookingRequest{
		UserID: "u1", Mode: "drt", PricingTier: "normal", DistanceKm: 15,
		Origin: "Pohang Station", Dest: "Pohang Airport", UsePoints: true,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	var b models.Booking
	decodeData(t, rec, &b)
	if b.Price.MUPointDiscount != 4050 || b.Price.FinalFare != 9450 {
		t.Fatalf("unexpected price: %+v", b.Price)
	}
	// 5000 - 4050 spent + 473 earned
	if balance, _ := ledger.Balance(ctx, "u1"); balance != 1423 {
		t.Fatalf("expected balance 1423, got %d", balance)
	}
}

func TestBookingCardPaymentHold(t *testing.T) {
	s, _, _ := testServer(t, nil)
	pay := &fakePayments{}
	s.payments = pay

	rec := postJSON(t, s, "/api/v1/bookings", bookingRequest{
		UserID: "u1", Mode: "taxi", PricingTier: "normal", DistanceKm: 10, PaymentMethod: "card",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	var b models.Booking
	decodeData(t, rec, &b)
	if b.PaymentID != "pi_test" {
		t.Fatalf("expected payment hold id, got %q", b.PaymentID)
	}
	if len(pay.holds) != 1 || pay.holds[0] != int64(b.Price.FinalFare) {
		t.Fatalf("wrong hold amount: %+v", pay.holds)
	}
}

func TestBookingPaymentFailureRefundsPoints(t *testing.T) {
	s, _, ledger := testServer(t, nil)
	s.payments = &fakePayments{fail: true}
	ctx := context.Background()
	_, _ = ledger.Apply(ctx, "u1", 5000, "seed")

	rec := postJSON(t, s, "/api/v1/bookings", bookingRequest{
		UserID: "u1", Mode: "drt", PricingTier: "normal", DistanceKm: 15,
		PaymentMethod: "card", UsePoints: true,
	})
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}
	if balance, _ := ledger.Balance(ctx, "u1"); balance != 5000 {
		t.Fatalf("debit must be refunded on payment failure, balance=%d", balance)
	}
}

func TestPointsEndpoints(t *testing.T) {
	s, _, _ := testServer(t, nil)
	rec := postJSON(t, s, "/api/v1/points", pointsRequest{UserID: "u1", Delta: 300, Description: "promo"})
	if rec.Code != http.StatusOK {
		t.Fatalf("adjust status %d", rec.Code)
	}

	req := httptest.NewRequest("GET", "/api/v1/points?userId=u1", nil)
	get := httptest.NewRecorder()
	s.ServeHTTP(get, req)
	var out struct {
		Points  int                 `json:"points"`
		History []models.PointEntry `json:"history"`
	}
	decodeData(t, get, &out)
	if out.Points != 300 || len(out.History) != 1 {
		t.Fatalf("unexpected wallet state: %+v", out)
	}

	overdraft := postJSON(t, s, "/api/v1/points", pointsRequest{UserID: "u1", Delta: -301})
	if overdraft.Code != http.StatusConflict {
		t.Fatalf("expected 409 for overdraft, got %d", overdraft.Code)
	}
}

func TestTelemetryUpsertsVehicle(t *testing.T) {
	s, pool, _ := testServer(t, nil)
	rec := postJSON(t, s, "/internal/vehicle/telemetry", models.VehicleTelemetry{
		VehicleID: "MB-099",
		Location:  models.Coord{Lat: 36.05, Lng: 129.37},
		Heading:   90,
		Speed:     40,
		Status:    "available",
	})
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	snap, _ := pool.Snapshot(context.Background())
	if len(snap) != 1 || snap[0].ID != "MB-099" || snap[0].Speed != 40 {
		t.Fatalf("telemetry not applied: %+v", snap)
	}
}

func TestRateLimitRejectsBursts(t *testing.T) {
	v := models.Vehicle{ID: "MB-001", Status: models.StatusAvailable, Capacity: 4}
	pool := fleet.NewPool([]models.Vehicle{v})
	cfg := config.ServerConfig{DispatchRateLimit: 1, DispatchRateBurst: 1}
	s := NewServer(cfg, logging.NewLogger("error"), Deps{
		Fleet:     pool,
		Rates:     pricing.DefaultTable(),
		Bookings:  storage.NewMemoryStore(),
		Ledger:    wallet.NewMemoryLedger(),
		Locations: fleet.SeedLocations(),
	})
	body := map[string]any{"distance_km": 1, "mode": "drt"}
	first := postJSON(t, s, "/api/v1/pricing/quote", body)
	second := postJSON(t, s, "/api/v1/pricing/quote", body)
	if first.Code != http.StatusOK {
		t.Fatalf("first request should pass, got %d", first.Code)
	}
	if second.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 on burst, got %d", second.Code)
	}
}
