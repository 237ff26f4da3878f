// Package reservations holds the booking and room records the billing engine
// reads and transitions. Booking CRUD itself lives upstream.
package reservations

import "time"

// BookingStatus enumerates the booking lifecycle.
type BookingStatus string

const (
	BookingStatusBooked     BookingStatus = "BOOKED"
	BookingStatusCheckedIn  BookingStatus = "CHECKED_IN"
	BookingStatusCheckedOut BookingStatus = "CHECKED_OUT"
	BookingStatusCancelled  BookingStatus = "CANCELLED"
)

// RoomStatus enumerates room occupancy states.
type RoomStatus string

const (
	RoomStatusAvailable   RoomStatus = "AVAILABLE"
	RoomStatusCheckedIn   RoomStatus = "CHECKED_IN"
	RoomStatusMaintenance RoomStatus = "MAINTENANCE"
)

// BookingKind distinguishes regular bookings from package bookings.
type BookingKind string

const (
	BookingKindRegular BookingKind = "REGULAR"
	BookingKindPackage BookingKind = "PACKAGE"
)

// Booking models a guest reservation over one or more rooms.
type Booking struct {
	ID             int64
	Kind           BookingKind
	GuestName      string
	GuestStateCode string
	CheckIn        time.Time
	CheckOut       time.Time
	AdvanceDeposit float64
	Status         BookingStatus
	// Package pricing, populated only for BookingKindPackage.
	PackagePrice   float64
	PackagePerRoom bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// EligibleForCheckout reports whether the booking may be billed and finalized.
func (b Booking) EligibleForCheckout() bool {
	return b.Status == BookingStatusBooked || b.Status == BookingStatusCheckedIn
}

// Room models a physical room.
type Room struct {
	ID        int64
	Number    string
	Rate      float64
	Status    RoomStatus
	BookingID *int64
	CreatedAt time.Time
	UpdatedAt time.Time
}
