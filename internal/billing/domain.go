// Package billing aggregates every unbilled charge for a room or booking
// into a bill breakdown the checkout finalizer consumes.
package billing

import (
	"time"

	"github.com/atithi-pms/atithi/internal/reservations"
)

// Scope selects whether a bill covers one room or a whole booking.
type Scope string

const (
	ScopeRoom    Scope = "room"
	ScopeBooking Scope = "booking"
)

// BillingStatus tracks a charge line's journey onto a bill.
type BillingStatus string

const (
	BillingStatusUnbilled BillingStatus = "UNBILLED"
	BillingStatusBilled   BillingStatus = "BILLED"
	BillingStatusPaid     BillingStatus = "PAID"
)

// FoodOrderLine is one food order against a room.
type FoodOrderLine struct {
	ID            int64
	RoomID        int64
	Description   string
	Amount        float64
	BillingStatus BillingStatus
	OrderedAt     time.Time
}

// ServiceLine is one assigned chargeable service.
type ServiceLine struct {
	ID            int64
	RoomID        int64
	Name          string
	Amount        float64
	TaxRate       float64
	BillingStatus BillingStatus
	AssignedAt    time.Time
}

// ChargeLine is a display row in the breakdown. Already-billed lines are
// surfaced with a zero amount and their payment status, so the guest sees
// them without being charged twice.
type ChargeLine struct {
	Source        string    `json:"source"`
	Description   string    `json:"description"`
	Amount        float64   `json:"amount"`
	PaymentStatus string    `json:"payment_status,omitempty"`
	At            time.Time `json:"at"`
}

// BillBreakdown carries per-category pre-tax totals and their GST.
type BillBreakdown struct {
	RoomCharges       float64      `json:"room_charges"`
	PackageCharges    float64      `json:"package_charges"`
	FoodCharges       float64      `json:"food_charges"`
	ServiceCharges    float64      `json:"service_charges"`
	ConsumableCharges float64      `json:"consumable_charges"`
	DamageCharges     float64      `json:"damage_charges"`
	RoomGST           float64      `json:"room_gst"`
	PackageGST        float64      `json:"package_gst"`
	FoodGST           float64      `json:"food_gst"`
	ServiceGST        float64      `json:"service_gst"`
	ConsumableGST     float64      `json:"consumable_gst"`
	DamageGST         float64      `json:"damage_gst"`
	Lines             []ChargeLine `json:"lines"`
	TotalGST          float64      `json:"total_gst"`
	TotalDue          float64      `json:"total_due"`
}

// BillSummary is the guest-facing bill produced by the aggregator.
// WindowStarts records the per-room billing window the bill was collected
// under; the finalizer marks and deducts against these exact instants.
type BillSummary struct {
	Booking           *reservations.Booking `json:"booking"`
	Rooms             []reservations.Room   `json:"rooms"`
	Nights            int                   `json:"nights"`
	CheckIn           time.Time             `json:"check_in"`
	CheckOut          time.Time             `json:"check_out"`
	EffectiveCheckout time.Time             `json:"effective_checkout"`
	Breakdown         BillBreakdown         `json:"breakdown"`
	WindowStarts      map[int64]time.Time   `json:"-"`
}
