package wallet

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/example/drt-dispatch/internal/models"
)

// ErrInsufficientPoints is returned when a debit exceeds the balance.
var ErrInsufficientPoints = errors.New("insufficient points")

// Ledger tracks MU point balances and history per user.
type Ledger interface {
	Balance(ctx context.Context, userID string) (int, error)
	// Apply adjusts the balance by delta (positive earn, negative spend) and
	// appends a history entry. Returns the new balance.
	Apply(ctx context.Context, userID string, delta int, description string) (int, error)
	History(ctx context.Context, userID string) ([]models.PointEntry, error)
}

// MemoryLedger is the in-process Ledger used without a database.
type MemoryLedger struct {
	mu       sync.Mutex
	balances map[string]int
	history  map[string][]models.PointEntry
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{
		balances: make(map[string]int),
		history:  make(map[string][]models.PointEntry),
	}
}

func (m *MemoryLedger) Balance(ctx context.Context, userID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.balances[userID], nil
}

func (m *MemoryLedger) Apply(ctx context.Context, userID string, delta int, description string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	next := m.balances[userID] + delta
	if next < 0 {
		return m.balances[userID], ErrInsufficientPoints
	}
	m.balances[userID] = next
	m.history[userID] = append(m.history[userID], models.PointEntry{
		ID:          uuid.New().String(),
		UserID:      userID,
		Delta:       delta,
		Description: description,
		CreatedAt:   time.Now(),
	})
	return next, nil
}

func (m *MemoryLedger) History(ctx context.Context, userID string) ([]models.PointEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entries := m.history[userID]
	out := make([]models.PointEntry, len(entries))
	copy(out, entries)
	return out, nil
}
