package billing

import (
	"context"
	"time"
)

// ChargeReader loads charge lines for a room inside a billing window.
// Implementations return every line regardless of billing status; the
// aggregator decides which lines carry an amount.
type ChargeReader interface {
	FoodLines(ctx context.Context, roomID int64, from time.Time) ([]FoodOrderLine, error)
	ServiceLines(ctx context.Context, roomID int64, from time.Time) ([]ServiceLine, error)
	// LastCheckoutTimeForRoom returns the checkout time of the room's most
	// recent completed checkout, or nil when the room was never checked out.
	LastCheckoutTimeForRoom(ctx context.Context, roomID int64) (*time.Time, error)
}
