package inventory

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

func NewRepository(db *pgxpool.Pool) RepositoryPort {
	return &repository{db: db}
}

func (r *repository) ItemByID(ctx context.Context, itemID int64) (*Item, error) {
	var item Item
	err := r.db.QueryRow(ctx, `SELECT id, name, selling_price, complimentary_limit, created_at, updated_at
FROM consumable_items WHERE id=$1`, itemID).
		Scan(&item.ID, &item.Name, &item.SellingPrice, &item.ComplimentaryLimit, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	return &item, nil
}

func (r *repository) RoomStock(ctx context.Context, roomID, itemID int64) (float64, error) {
	var qty float64
	err := r.db.QueryRow(ctx, `SELECT COALESCE(quantity, 0) FROM room_consumables WHERE room_id=$1 AND item_id=$2`, roomID, itemID).Scan(&qty)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	return qty, err
}

func (r *repository) CompletedVerificationForRoom(ctx context.Context, roomID int64, since time.Time) (*Verification, error) {
	var (
		v   Verification
		raw []byte
	)
	err := r.db.QueryRow(ctx, `SELECT id, room_id, inventory_data, completed_at
FROM checkout_requests
WHERE room_id=$1 AND status='COMPLETED' AND completed_at >= $2
ORDER BY completed_at DESC LIMIT 1`, roomID, since).
		Scan(&v.ID, &v.RoomID, &raw, &v.CompletedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	entries, damages, err := ParseAudit(raw)
	if err != nil {
		return nil, err
	}
	v.Entries = entries
	v.Damages = damages
	return &v, nil
}

func (r *repository) RecordDeduction(ctx context.Context, roomID int64, deductions []Deduction, checkoutID, userID int64, at time.Time) error {
	for _, d := range deductions {
		if _, err := r.db.Exec(ctx, `INSERT INTO consumable_movements (room_id, item_id, quantity, checkout_id, recorded_by, recorded_at)
VALUES ($1,$2,$3,$4,$5,$6)`, roomID, d.ItemID, d.Quantity, checkoutID, nullID(userID), at); err != nil {
			return err
		}
		if _, err := r.db.Exec(ctx, `UPDATE room_consumables SET quantity = GREATEST(quantity - $3, 0), updated_at=NOW()
WHERE room_id=$1 AND item_id=$2`, roomID, d.ItemID, d.Quantity); err != nil {
			return err
		}
	}
	return nil
}

func nullID(v int64) any {
	if v == 0 {
		return nil
	}
	return v
}
