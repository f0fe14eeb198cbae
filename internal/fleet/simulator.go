package fleet

import (
	"context"
	"log/slog"
	"math"
	"math/rand"
	"time"

	"github.com/example/drt-dispatch/internal/models"
)

// Bounds clamps simulated movement to the service area.
type Bounds struct {
	MinLat, MaxLat float64
	MinLng, MaxLng float64
}

// PohangBounds covers the default service area.
var PohangBounds = Bounds{MinLat: 35.85, MaxLat: 36.15, MinLng: 129.2, MaxLng: 129.5}

// Simulator drifts busy vehicles along their heading on a fixed tick. It is
// the stand-in for a live telemetry feed and runs as its own scheduled
// component; the dispatch core never advances state itself.
type Simulator struct {
	Pool     *Pool
	Bounds   Bounds
	Interval time.Duration
	Logger   *slog.Logger
	rng      *rand.Rand
}

func NewSimulator(pool *Pool, interval time.Duration, logger *slog.Logger) *Simulator {
	return &Simulator{
		Pool:     pool,
		Bounds:   PohangBounds,
		Interval: interval,
		Logger:   logger,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Run ticks until the context is canceled.
func (s *Simulator) Run(ctx context.Context) {
	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.Logger.Info("fleet simulator stopped")
			return
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

// Tick advances every busy vehicle one step.
func (s *Simulator) Tick(ctx context.Context) {
	snapshot, _ := s.Pool.Snapshot(ctx)
	for _, v := range snapshot {
		if v.Status != models.StatusBusy {
			continue
		}
		s.advance(&v)
		_ = s.Pool.Upsert(ctx, v)
	}
}

func (s *Simulator) advance(v *models.Vehicle) {
	rad := v.Heading * math.Pi / 180
	step := 0.0001 + s.rng.Float64()*0.0002
	v.Location.Lat = clamp(v.Location.Lat+math.Cos(rad)*step, s.Bounds.MinLat, s.Bounds.MaxLat)
	v.Location.Lng = clamp(v.Location.Lng+math.Sin(rad)*step, s.Bounds.MinLng, s.Bounds.MaxLng)
	v.Heading = math.Mod(v.Heading+(s.rng.Float64()-0.5)*10+360, 360)
	v.Speed = 30 + float64(s.rng.Intn(30))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
