// Package checkout finalizes a guest's stay: it freezes the bill into an
// immutable financial snapshot, transitions room and booking state, and
// hands the snapshot to the ledger poster.
package checkout

import (
	"errors"
	"strings"
	"time"
)

var (
	// ErrPaymentMismatch indicates the split payments do not sum to the
	// grand total.
	ErrPaymentMismatch = errors.New("checkout: payments do not sum to grand total")
	// ErrCheckoutNotFound indicates no checkout exists for the booking.
	ErrCheckoutNotFound = errors.New("checkout: not found")
	// ErrConcurrentFinalize indicates another terminal finalized the same
	// booking mid-flight and the retry also collided.
	ErrConcurrentFinalize = errors.New("checkout: concurrent finalize in progress, retry")
)

// paymentSumTolerance bounds float drift when validating a split payment.
const paymentSumTolerance = 0.01

// Checkout is the immutable financial snapshot of a finalized stay. Only
// Notes may change after creation.
type Checkout struct {
	ID                int64     `json:"id"`
	BookingID         int64     `json:"bookingId"`
	InvoiceNumber     string    `json:"invoiceNumber"`
	CheckoutDate      time.Time `json:"checkoutDate"`
	RoomCharges       float64   `json:"roomCharges"`
	FoodCharges       float64   `json:"foodCharges"`
	ServiceCharges    float64   `json:"serviceCharges"`
	PackageCharges    float64   `json:"packageCharges"`
	ConsumableCharges float64   `json:"consumableCharges"`
	DamageCharges     float64   `json:"damageCharges"`
	LateFee           float64   `json:"lateFee"`
	KeycardFee        float64   `json:"keycardFee"`
	Subtotal          float64   `json:"subtotal"`
	CGST              float64   `json:"cgst"`
	SGST              float64   `json:"sgst"`
	IGST              float64   `json:"igst"`
	TaxAmount         float64   `json:"taxAmount"`
	Discount          float64   `json:"discount"`
	Tips              float64   `json:"tips"`
	AdvanceApplied    float64   `json:"advanceApplied"`
	GrandTotal        float64   `json:"grandTotal"`
	Notes             string    `json:"notes,omitempty"`
	CreatedBy         int64     `json:"createdBy"`
	CreatedAt         time.Time `json:"createdAt"`
}

// Payment is one leg of a checkout's split payment.
type Payment struct {
	ID         int64   `json:"id"`
	CheckoutID int64   `json:"checkoutId"`
	Method     string  `json:"method"`
	Amount     float64 `json:"amount"`
}

// PaymentInput is a requested payment leg.
type PaymentInput struct {
	Method string  `json:"method" validate:"required,oneof=cash card upi bank"`
	Amount float64 `json:"amount" validate:"gt=0"`
}

// FinalizeInput carries a finalize request.
type FinalizeInput struct {
	RoomNumber      string         `json:"roomNumber" validate:"required"`
	Scope           string         `json:"scope" validate:"omitempty,oneof=room booking"`
	Payments        []PaymentInput `json:"payments" validate:"required,min=1,dive"`
	Discount        float64        `json:"discount" validate:"gte=0"`
	Tips            float64        `json:"tips" validate:"gte=0"`
	KeycardReturned bool           `json:"keycardReturned"`
	Notes           string         `json:"notes"`
	UserID          int64          `json:"-"`
}

// PaymentsTotal sums the requested legs.
func (in FinalizeInput) PaymentsTotal() float64 {
	var total float64
	for _, p := range in.Payments {
		total += p.Amount
	}
	return total
}

// Success is the guest-facing result of a finalize call.
type Success struct {
	CheckoutID    int64     `json:"checkoutId"`
	InvoiceNumber string    `json:"invoiceNumber"`
	GrandTotal    float64   `json:"grandTotal"`
	CheckoutDate  time.Time `json:"checkoutDate"`
}

func successFrom(c *Checkout) *Success {
	return &Success{
		CheckoutID:    c.ID,
		InvoiceNumber: c.InvoiceNumber,
		GrandTotal:    c.GrandTotal,
		CheckoutDate:  c.CheckoutDate,
	}
}

func appendNote(existing, note string) string {
	note = strings.TrimSpace(note)
	if note == "" {
		return existing
	}
	if existing == "" {
		return note
	}
	return existing + "\n" + note
}
