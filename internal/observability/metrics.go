package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	DispatchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "drt_dispatch", Name: "allocations_total", Help: "Dispatch allocations by outcome status"},
		[]string{"status"},
	)
	DispatchLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "drt_dispatch", Name: "allocation_latency_seconds", Help: "Allocation latency seconds",
	})
	ForecastPublishes = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "drt_dispatch", Name: "forecast_publishes_total", Help: "Heatmap forecast publishes",
	})
	PricingQuotes = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "drt_dispatch", Name: "pricing_quotes_total", Help: "Fare quotes computed",
	})
	BookingsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "drt_dispatch", Name: "bookings_total", Help: "Bookings by status"},
		[]string{"status"},
	)
	VehiclesTracked = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "drt_dispatch", Name: "vehicles_tracked", Help: "Vehicles currently in the pool snapshot",
	})

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "drt_dispatch", Name: "http_requests_total", Help: "Total HTTP requests handled"},
		[]string{"method", "path", "status"},
	)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "drt_dispatch",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency distribution",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
