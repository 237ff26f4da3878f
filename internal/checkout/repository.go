package checkout

import (
	"context"
	"time"

	"github.com/atithi-pms/atithi/internal/reservations"
)

// Repository reads checkouts and opens finalize transactions.
type Repository interface {
	ByBooking(ctx context.Context, bookingID int64) (*Checkout, error)
	InvoiceExists(ctx context.Context, invoiceNumber string) (bool, error)
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
}

// TxRepository is the transactional surface of a finalize call. Every
// mutation the state machine performs goes through one of these, inside a
// single transaction.
type TxRepository interface {
	InsertCheckout(ctx context.Context, c *Checkout) (int64, error)
	InsertPayments(ctx context.Context, checkoutID int64, payments []PaymentInput) error
	SetInvoiceNumber(ctx context.Context, checkoutID int64, invoiceNumber string) error
	LinkRooms(ctx context.Context, checkoutID int64, roomIDs []int64) error
	MarkFoodBilled(ctx context.Context, roomID int64, from time.Time) error
	MarkServicesBilled(ctx context.Context, roomID int64, from time.Time) error
	SetRoomStatus(ctx context.Context, roomID int64, status reservations.RoomStatus) error
	SetBookingStatus(ctx context.Context, bookingID int64, status reservations.BookingStatus) error
	RoomStatuses(ctx context.Context, bookingID int64) ([]reservations.RoomStatus, error)
	DeleteCheckoutCascade(ctx context.Context, checkoutID int64) error
	ByBooking(ctx context.Context, bookingID int64) (*Checkout, error)
	AppendNotes(ctx context.Context, checkoutID int64, notes string) error
}
