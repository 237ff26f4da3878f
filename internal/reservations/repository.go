package reservations

import (
	"context"
	"errors"
)

// Sentinel errors surfaced by booking/room lookups.
var (
	ErrRoomNotFound    = errors.New("reservations: room not found")
	ErrNoActiveBooking = errors.New("reservations: no active booking for room")
	ErrNoRoomsLinked   = errors.New("reservations: booking has no rooms linked")
)

// RepositoryPort defines the read surface billing and checkout need.
type RepositoryPort interface {
	// RoomByNumber resolves a room by its public number.
	RoomByNumber(ctx context.Context, number string) (*Room, error)
	// ActiveBookingForRoom returns the most recently created booking that owns
	// the room and is not checked out or cancelled.
	ActiveBookingForRoom(ctx context.Context, roomID int64) (*Booking, error)
	// RoomsForBooking lists every room linked to the booking.
	RoomsForBooking(ctx context.Context, bookingID int64) ([]Room, error)
}
