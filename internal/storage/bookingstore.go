package storage

import (
	"context"
	"sync"

	"github.com/example/drt-dispatch/internal/models"
)

// BookingStore defines persistence operations for bookings.
type BookingStore interface {
	SaveBooking(ctx context.Context, b *models.Booking) error
	UpdateStatus(ctx context.Context, bookingID, status string) error
	ByUser(ctx context.Context, userID string) ([]models.Booking, error)
}

type MemoryStore struct {
	mu       sync.RWMutex
	bookings map[string]*models.Booking
	order    []string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{bookings: make(map[string]*models.Booking)}
}

func (m *MemoryStore) SaveBooking(ctx context.Context, b *models.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, seen := m.bookings[b.ID]; !seen {
		m.order = append(m.order, b.ID)
	}
	cp := *b
	m.bookings[b.ID] = &cp
	return nil
}

func (m *MemoryStore) UpdateStatus(ctx context.Context, bookingID, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if b, ok := m.bookings[bookingID]; ok {
		b.Status = status
	}
	return nil
}

func (m *MemoryStore) ByUser(ctx context.Context, userID string) ([]models.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.Booking
	// newest first
	for i := len(m.order) - 1; i >= 0; i-- {
		if b := m.bookings[m.order[i]]; b.UserID == userID {
			out = append(out, *b)
		}
	}
	return out, nil
}
