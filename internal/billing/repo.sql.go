package billing

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type repository struct {
	db *pgxpool.Pool
}

// NewRepository builds the pgx-backed charge reader.
func NewRepository(db *pgxpool.Pool) ChargeReader {
	return &repository{db: db}
}

func (r *repository) FoodLines(ctx context.Context, roomID int64, from time.Time) ([]FoodOrderLine, error) {
	rows, err := r.db.Query(ctx, `SELECT id, room_id, description, amount, billing_status, ordered_at
FROM food_order_lines
WHERE room_id=$1 AND ordered_at >= $2
ORDER BY ordered_at`, roomID, from)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []FoodOrderLine
	for rows.Next() {
		var line FoodOrderLine
		if err := rows.Scan(&line.ID, &line.RoomID, &line.Description, &line.Amount, &line.BillingStatus, &line.OrderedAt); err != nil {
			return nil, err
		}
		out = append(out, line)
	}
	return out, rows.Err()
}

func (r *repository) ServiceLines(ctx context.Context, roomID int64, from time.Time) ([]ServiceLine, error) {
	rows, err := r.db.Query(ctx, `SELECT s.id, s.room_id, s.name, s.amount, COALESCE(s.tax_rate, 0), s.billing_status, s.assigned_at
FROM assigned_services s
WHERE s.room_id=$1 AND s.assigned_at >= $2
ORDER BY s.assigned_at`, roomID, from)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []ServiceLine
	for rows.Next() {
		var line ServiceLine
		if err := rows.Scan(&line.ID, &line.RoomID, &line.Name, &line.Amount, &line.TaxRate, &line.BillingStatus, &line.AssignedAt); err != nil {
			return nil, err
		}
		out = append(out, line)
	}
	return out, rows.Err()
}

func (r *repository) LastCheckoutTimeForRoom(ctx context.Context, roomID int64) (*time.Time, error) {
	var at time.Time
	err := r.db.QueryRow(ctx, `SELECT c.checkout_date
FROM checkouts c
JOIN checkout_rooms cr ON cr.checkout_id = c.id
WHERE cr.room_id=$1
ORDER BY c.checkout_date DESC LIMIT 1`, roomID).Scan(&at)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &at, nil
}
