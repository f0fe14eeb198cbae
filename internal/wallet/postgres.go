package wallet

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"github.com/example/drt-dispatch/internal/models"
)

// PostgresLedger keeps balances consistent with history inside one
// transaction per adjustment.
type PostgresLedger struct {
	db *sql.DB
}

func NewPostgresLedger(dsn string) (*PostgresLedger, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	return &PostgresLedger{db: db}, nil
}

func (p *PostgresLedger) Balance(ctx context.Context, userID string) (int, error) {
	var balance int
	err := p.db.QueryRowContext(ctx, `SELECT balance FROM point_balances WHERE user_id=$1`, userID).Scan(&balance)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	return balance, err
}

func (p *PostgresLedger) Apply(ctx context.Context, userID string, delta int, description string) (int, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var balance int
	err = tx.QueryRowContext(ctx,
		`INSERT INTO point_balances(user_id, balance) VALUES($1, 0)
		 ON CONFLICT (user_id) DO UPDATE SET balance = point_balances.balance
		 RETURNING balance`, userID).Scan(&balance)
	if err != nil {
		return 0, err
	}
	next := balance + delta
	if next < 0 {
		return balance, ErrInsufficientPoints
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE point_balances SET balance=$1 WHERE user_id=$2`, next, userID); err != nil {
		return 0, err
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO point_history(id, user_id, delta, description, created_at) VALUES($1,$2,$3,$4,$5)`,
		uuid.New().String(), userID, delta, description, time.Now()); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return next, nil
}

func (p *PostgresLedger) History(ctx context.Context, userID string) ([]models.PointEntry, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT id, user_id, delta, description, created_at FROM point_history
		 WHERE user_id=$1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []models.PointEntry
	for rows.Next() {
		var e models.PointEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.Delta, &e.Description, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
