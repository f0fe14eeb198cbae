package fleet

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/example/drt-dispatch/internal/models"
)

// ErrAssignmentConflict means the vehicle changed between the snapshot the
// allocator scored and the commit; the caller should re-snapshot and retry.
var ErrAssignmentConflict = errors.New("vehicle no longer assignable")

// ErrUnknownVehicle is returned for commits against ids not in the pool.
var ErrUnknownVehicle = errors.New("unknown vehicle")

// Provider is the vehicle pool contract the dispatch flow runs against.
// Snapshot feeds the allocator a read-only copy; Commit applies the chosen
// assignment atomically, re-validating so two concurrent requests cannot
// double-book one vehicle.
type Provider interface {
	Snapshot(ctx context.Context) ([]models.Vehicle, error)
	Commit(ctx context.Context, vehicleID string, passengers int) error
	Release(ctx context.Context, vehicleID string, passengers int) error
	Upsert(ctx context.Context, v models.Vehicle) error
}

// Pool is the in-memory Provider used when no Redis is configured.
type Pool struct {
	mu       sync.RWMutex
	vehicles map[string]models.Vehicle
}

func NewPool(seed []models.Vehicle) *Pool {
	p := &Pool{vehicles: make(map[string]models.Vehicle, len(seed))}
	for _, v := range seed {
		p.vehicles[v.ID] = v
	}
	return p
}

func (p *Pool) Snapshot(ctx context.Context) ([]models.Vehicle, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]models.Vehicle, 0, len(p.vehicles))
	for _, v := range p.vehicles {
		out = append(out, v)
	}
	return out, nil
}

// Commit marks the vehicle busy and adds the passengers. Availability and
// capacity are re-checked under the lock: the snapshot the allocator scored
// may be stale by now.
func (p *Pool) Commit(ctx context.Context, vehicleID string, passengers int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	v, ok := p.vehicles[vehicleID]
	if !ok {
		return ErrUnknownVehicle
	}
	if v.Status != models.StatusAvailable || v.RemainingCapacity() < passengers {
		return ErrAssignmentConflict
	}
	v.Status = models.StatusBusy
	v.CurrentPassengers += passengers
	v.LastUpdated = time.Now()
	p.vehicles[vehicleID] = v
	return nil
}

// Release returns a vehicle to the available state after trip completion.
func (p *Pool) Release(ctx context.Context, vehicleID string, passengers int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	v, ok := p.vehicles[vehicleID]
	if !ok {
		return ErrUnknownVehicle
	}
	v.CurrentPassengers -= passengers
	if v.CurrentPassengers < 0 {
		v.CurrentPassengers = 0
	}
	if v.CurrentPassengers == 0 {
		v.Status = models.StatusAvailable
	}
	v.LastUpdated = time.Now()
	p.vehicles[vehicleID] = v
	return nil
}

func (p *Pool) Upsert(ctx context.Context, v models.Vehicle) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	v.LastUpdated = time.Now()
	p.vehicles[v.ID] = v
	return nil
}
