package reservations

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type repository struct {
	db *pgxpool.Pool
}

// NewRepository builds the pgx-backed reservations reader.
func NewRepository(db *pgxpool.Pool) RepositoryPort {
	return &repository{db: db}
}

func (r *repository) RoomByNumber(ctx context.Context, number string) (*Room, error) {
	var room Room
	err := r.db.QueryRow(ctx, `SELECT id, number, rate, status, booking_id, created_at, updated_at
FROM rooms WHERE number=$1`, number).
		Scan(&room.ID, &room.Number, &room.Rate, &room.Status, &room.BookingID, &room.CreatedAt, &room.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}
	return &room, nil
}

func (r *repository) ActiveBookingForRoom(ctx context.Context, roomID int64) (*Booking, error) {
	var b Booking
	err := r.db.QueryRow(ctx, `SELECT b.id, b.kind, b.guest_name, b.guest_state_code, b.check_in, b.check_out,
b.advance_deposit, b.status, b.package_price, b.package_per_room, b.created_at, b.updated_at
FROM bookings b
JOIN booking_rooms br ON br.booking_id = b.id
WHERE br.room_id = $1 AND b.status NOT IN ('CHECKED_OUT','CANCELLED')
ORDER BY b.created_at DESC
LIMIT 1`, roomID).
		Scan(&b.ID, &b.Kind, &b.GuestName, &b.GuestStateCode, &b.CheckIn, &b.CheckOut,
			&b.AdvanceDeposit, &b.Status, &b.PackagePrice, &b.PackagePerRoom, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoActiveBooking
		}
		return nil, err
	}
	return &b, nil
}

func (r *repository) RoomsForBooking(ctx context.Context, bookingID int64) ([]Room, error) {
	rows, err := r.db.Query(ctx, `SELECT r.id, r.number, r.rate, r.status, r.booking_id, r.created_at, r.updated_at
FROM rooms r
JOIN booking_rooms br ON br.room_id = r.id
WHERE br.booking_id = $1
ORDER BY r.number`, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Room
	for rows.Next() {
		var room Room
		if err := rows.Scan(&room.ID, &room.Number, &room.Rate, &room.Status, &room.BookingID, &room.CreatedAt, &room.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, room)
	}
	if len(out) == 0 {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, ErrNoRoomsLinked
	}
	return out, rows.Err()
}
