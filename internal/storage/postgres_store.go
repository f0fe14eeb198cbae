package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	_ "github.com/lib/pq"

	"github.com/example/drt-dispatch/internal/models"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	return &PostgresStore{db: db}, nil
}

func (p *PostgresStore) SaveBooking(ctx context.Context, b *models.Booking) error {
	price, err := json.Marshal(b.Price)
	if err != nil {
		return err
	}
	_, err = p.db.ExecContext(ctx,
		`INSERT INTO bookings(id, user_id, mode, origin, dest, price, payment_id, status, created_at, updated_at)
		 VALUES($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		b.ID, b.UserID, b.Mode, b.Origin, b.Dest, price, b.PaymentID, b.Status, b.CreatedAt, b.UpdatedAt)
	return err
}

func (p *PostgresStore) UpdateStatus(ctx context.Context, bookingID, status string) error {
	_, err := p.db.ExecContext(ctx,
		`UPDATE bookings SET status=$1, updated_at=$2 WHERE id=$3`, status, time.Now(), bookingID)
	return err
}

func (p *PostgresStore) ByUser(ctx context.Context, userID string) ([]models.Booking, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT id, user_id, mode, origin, dest, price, payment_id, status, created_at, updated_at
		 FROM bookings WHERE user_id=$1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []models.Booking
	for rows.Next() {
		var b models.Booking
		var price []byte
		if err := rows.Scan(&b.ID, &b.UserID, &b.Mode, &b.Origin, &b.Dest, &price,
			&b.PaymentID, &b.Status, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(price, &b.Price); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
