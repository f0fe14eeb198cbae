package httpapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/example/drt-dispatch/internal/config"
	"github.com/example/drt-dispatch/internal/fleet"
	"github.com/example/drt-dispatch/internal/ingest"
	"github.com/example/drt-dispatch/internal/models"
	"github.com/example/drt-dispatch/internal/pricing"
	"github.com/example/drt-dispatch/internal/storage"
	"github.com/example/drt-dispatch/internal/wallet"
)

// PaymentProcessor is the slice of the payments client the booking flow needs.
type PaymentProcessor interface {
	Hold(ctx context.Context, amount int64, currency, customerID string) (string, error)
}

type Server struct {
	cfg       config.ServerConfig
	logger    *slog.Logger
	fleet     fleet.Provider
	rates     *pricing.Table
	bookings  storage.BookingStore
	ledger    wallet.Ledger
	payments  PaymentProcessor
	kafka     *ingest.KafkaProducer
	hub       *StreamHub
	locations []models.Location

	mux     *mux.Router
	limiter *clientLimiter
}

// Deps carries the collaborators main wires up. Kafka and Payments may be
// nil; the related features degrade gracefully.
type Deps struct {
	Fleet     fleet.Provider
	Rates     *pricing.Table
	Bookings  storage.BookingStore
	Ledger    wallet.Ledger
	Payments  PaymentProcessor
	Kafka     *ingest.KafkaProducer
	Locations []models.Location
}

func NewServer(cfg config.ServerConfig, logger *slog.Logger, deps Deps) *Server {
	s := &Server{
		cfg:       cfg,
		logger:    logger,
		fleet:     deps.Fleet,
		rates:     deps.Rates,
		bookings:  deps.Bookings,
		ledger:    deps.Ledger,
		payments:  deps.Payments,
		kafka:     deps.Kafka,
		hub:       NewStreamHub(logger),
		locations: deps.Locations,
		mux:       mux.NewRouter(),
		limiter:   newClientLimiter(cfg.DispatchRateLimit, cfg.DispatchRateBurst),
	}
	s.registerMiddleware()
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("/api/v1/dispatch", s.handleDispatch).Methods("POST")
	s.mux.HandleFunc("/api/v1/vehicles", s.handleVehicles).Methods("GET")
	s.mux.HandleFunc("/api/v1/forecast", s.handleForecast).Methods("GET")
	s.mux.HandleFunc("/api/v1/pricing/quote", s.handleQuote).Methods("POST")
	s.mux.HandleFunc("/api/v1/bookings", s.handleCreateBooking).Methods("POST")
	s.mux.HandleFunc("/api/v1/bookings", s.handleListBookings).Methods("GET")
	s.mux.HandleFunc("/api/v1/points", s.handleGetPoints).Methods("GET")
	s.mux.HandleFunc("/api/v1/points", s.handleAdjustPoints).Methods("POST")
	s.mux.HandleFunc("/internal/vehicle/telemetry", s.handleTelemetry).Methods("POST")
	s.mux.HandleFunc("/ws/stream", s.handleStream)
	s.mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(200)
		w.Write([]byte("ok"))
	}).Methods("GET")
	s.mux.Handle("/metrics", promhttp.Handler())
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { s.mux.ServeHTTP(w, r) }

// StartBroadcasters launches the periodic vehicle and heatmap push loops.
// They stop when ctx is canceled.
func (s *Server) StartBroadcasters(ctx context.Context) {
	go s.broadcastVehicles(ctx, s.cfg.VehiclesInterval)
	go s.broadcastHeatmap(ctx, s.cfg.HeatmapInterval)
}

type apiResponse struct {
	Success   bool      `json:"success"`
	Data      any       `json:"data,omitempty"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(apiResponse{Success: status < 400, Data: data, Timestamp: time.Now()})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(apiResponse{Success: false, Error: msg, Timestamp: time.Now()})
}
