package billing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/atithi-pms/atithi/internal/inventory"
	"github.com/atithi-pms/atithi/internal/reservations"
	"github.com/atithi-pms/atithi/internal/tax"
)

// ErrInvalidBookingState indicates the booking is not in a billable status.
var ErrInvalidBookingState = errors.New("billing: booking not eligible for checkout")

// VerificationPort supplies completed room inspections. Inspections that
// completed before since belong to a prior stay and are not returned.
type VerificationPort interface {
	CompletedVerification(ctx context.Context, roomID int64, since time.Time) (*inventory.Verification, error)
}

// Service aggregates unbilled charges into a bill.
type Service struct {
	rooms         reservations.RepositoryPort
	charges       ChargeReader
	verifications VerificationPort
	calc          *tax.Calculator
	logger        *slog.Logger
	now           func() time.Time
}

func NewService(rooms reservations.RepositoryPort, charges ChargeReader, verifications VerificationPort, calc *tax.Calculator, logger *slog.Logger) *Service {
	return &Service{
		rooms:         rooms,
		charges:       charges,
		verifications: verifications,
		calc:          calc,
		logger:        logger,
		now:           time.Now,
	}
}

func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// BuildBill resolves the active booking owning roomNumber and produces the
// bill for the requested scope. A room with no unbilled charges yields a
// valid all-zero breakdown.
func (s *Service) BuildBill(ctx context.Context, roomNumber string, scope Scope) (*BillSummary, error) {
	room, err := s.rooms.RoomByNumber(ctx, roomNumber)
	if err != nil {
		return nil, err
	}
	booking, err := s.rooms.ActiveBookingForRoom(ctx, room.ID)
	if err != nil {
		return nil, err
	}
	if !booking.EligibleForCheckout() {
		return nil, fmt.Errorf("%w: status %s", ErrInvalidBookingState, booking.Status)
	}

	roomSet := []reservations.Room{*room}
	if scope == ScopeBooking {
		roomSet, err = s.rooms.RoomsForBooking(ctx, booking.ID)
		if err != nil {
			return nil, err
		}
	}

	nights, effective := stayNights(booking.CheckIn, booking.CheckOut, s.now())

	breakdown := BillBreakdown{}
	s.addStayCharges(&breakdown, booking, roomSet, nights)

	windows := make(map[int64]time.Time, len(roomSet))
	for _, rm := range roomSet {
		windowStart, err := s.billingWindowStart(ctx, rm.ID, booking.CheckIn)
		if err != nil {
			return nil, err
		}
		windows[rm.ID] = windowStart
		if err := s.addFoodCharges(ctx, &breakdown, rm.ID, windowStart); err != nil {
			return nil, err
		}
		if err := s.addServiceCharges(ctx, &breakdown, rm.ID, windowStart); err != nil {
			return nil, err
		}
		if err := s.addVerificationCharges(ctx, &breakdown, rm.ID, windowStart); err != nil {
			return nil, err
		}
	}

	breakdown.TotalGST = breakdown.RoomGST + breakdown.PackageGST + breakdown.FoodGST +
		breakdown.ServiceGST + breakdown.ConsumableGST + breakdown.DamageGST
	breakdown.TotalDue = breakdown.RoomCharges + breakdown.PackageCharges + breakdown.FoodCharges +
		breakdown.ServiceCharges + breakdown.ConsumableCharges + breakdown.DamageCharges

	return &BillSummary{
		Booking:           booking,
		Rooms:             roomSet,
		Nights:            nights,
		CheckIn:           booking.CheckIn,
		CheckOut:          booking.CheckOut,
		EffectiveCheckout: effective,
		Breakdown:         breakdown,
		WindowStarts:      windows,
	}, nil
}

// stayNights bills early checkouts for the full reserved period and late
// checkouts for the extra nights actually used, never fewer than one night.
func stayNights(checkIn, checkOut, now time.Time) (int, time.Time) {
	in := dateOnly(checkIn)
	effective := dateOnly(checkOut)
	if today := dateOnly(now); today.After(effective) {
		effective = today
	}
	nights := int(effective.Sub(in).Hours() / 24)
	if nights < 1 {
		nights = 1
	}
	return nights, effective
}

func (s *Service) addStayCharges(breakdown *BillBreakdown, booking *reservations.Booking, roomSet []reservations.Room, nights int) {
	if booking.Kind == reservations.BookingKindPackage {
		daily := tax.PackageDailyRate(booking.PackagePrice, nights, booking.PackagePerRoom)
		rate := s.calc.RateFor(tax.CategoryPackage, daily)
		if booking.PackagePerRoom {
			breakdown.PackageCharges = booking.PackagePrice * float64(nights) * float64(len(roomSet))
		} else {
			// Whole-property packages bill once regardless of room count.
			breakdown.PackageCharges = booking.PackagePrice
		}
		breakdown.PackageGST = tax.Amount(breakdown.PackageCharges, rate)
		return
	}
	for _, rm := range roomSet {
		charge := rm.Rate * float64(nights)
		breakdown.RoomCharges += charge
		breakdown.RoomGST += tax.Amount(charge, s.calc.RateFor(tax.CategoryRoom, rm.Rate))
	}
}

// billingWindowStart bounds charge collection below by the check-in date and
// by any prior occupant's same-day checkout, so their orders are never
// billed to the current guest.
func (s *Service) billingWindowStart(ctx context.Context, roomID int64, checkIn time.Time) (time.Time, error) {
	start := dateOnly(checkIn)
	last, err := s.charges.LastCheckoutTimeForRoom(ctx, roomID)
	if err != nil {
		return time.Time{}, err
	}
	if last != nil && last.After(start) {
		start = *last
	}
	return start, nil
}

func (s *Service) addFoodCharges(ctx context.Context, breakdown *BillBreakdown, roomID int64, from time.Time) error {
	lines, err := s.charges.FoodLines(ctx, roomID, from)
	if err != nil {
		return err
	}
	for _, line := range lines {
		display := ChargeLine{Source: "food", Description: line.Description, At: line.OrderedAt}
		if line.BillingStatus == BillingStatusUnbilled {
			display.Amount = line.Amount
			breakdown.FoodCharges += line.Amount
		} else {
			display.PaymentStatus = strings.ToLower(string(line.BillingStatus))
		}
		breakdown.Lines = append(breakdown.Lines, display)
	}
	breakdown.FoodGST = tax.Amount(breakdown.FoodCharges, s.calc.RateFor(tax.CategoryFood, 0))
	return nil
}

func (s *Service) addServiceCharges(ctx context.Context, breakdown *BillBreakdown, roomID int64, from time.Time) error {
	lines, err := s.charges.ServiceLines(ctx, roomID, from)
	if err != nil {
		return err
	}
	for _, line := range lines {
		display := ChargeLine{Source: "service", Description: line.Name, At: line.AssignedAt}
		if line.BillingStatus == BillingStatusUnbilled {
			display.Amount = line.Amount
			breakdown.ServiceCharges += line.Amount
			rate := line.TaxRate
			if rate == 0 {
				rate = tax.DefaultService
			}
			breakdown.ServiceGST += tax.Amount(line.Amount, rate)
		} else {
			display.PaymentStatus = strings.ToLower(string(line.BillingStatus))
		}
		breakdown.Lines = append(breakdown.Lines, display)
	}
	return nil
}

func (s *Service) addVerificationCharges(ctx context.Context, breakdown *BillBreakdown, roomID int64, since time.Time) error {
	verification, err := s.verifications.CompletedVerification(ctx, roomID, since)
	if err != nil {
		return err
	}
	if verification == nil {
		return nil
	}
	for _, entry := range verification.Entries {
		charge := entry.Charge()
		if charge <= 0 {
			continue
		}
		breakdown.ConsumableCharges += charge
		breakdown.Lines = append(breakdown.Lines, ChargeLine{
			Source:      "consumable",
			Description: fmt.Sprintf("Consumable item %d", entry.ItemID),
			Amount:      charge,
			At:          verification.CompletedAt,
		})
	}
	for _, damage := range verification.Damages {
		breakdown.DamageCharges += damage.Amount
		breakdown.Lines = append(breakdown.Lines, ChargeLine{
			Source:      "damage",
			Description: damage.Description,
			Amount:      damage.Amount,
			At:          verification.CompletedAt,
		})
	}
	breakdown.ConsumableGST = tax.Amount(breakdown.ConsumableCharges, s.calc.RateFor(tax.CategoryConsumable, 0))
	breakdown.DamageGST = tax.Amount(breakdown.DamageCharges, s.calc.RateFor(tax.CategoryDamage, 0))
	return nil
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
