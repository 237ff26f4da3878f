package billing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/atithi-pms/atithi/internal/inventory"
	"github.com/atithi-pms/atithi/internal/reservations"
	"github.com/atithi-pms/atithi/internal/tax"
)

type memoryReservations struct {
	rooms    map[string]*reservations.Room
	bookings map[int64]*reservations.Booking
	links    map[int64][]reservations.Room
}

func (m *memoryReservations) RoomByNumber(ctx context.Context, number string) (*reservations.Room, error) {
	room, ok := m.rooms[number]
	if !ok {
		return nil, reservations.ErrRoomNotFound
	}
	return room, nil
}

func (m *memoryReservations) ActiveBookingForRoom(ctx context.Context, roomID int64) (*reservations.Booking, error) {
	var latest *reservations.Booking
	for bookingID, rooms := range m.links {
		for _, rm := range rooms {
			if rm.ID != roomID {
				continue
			}
			b := m.bookings[bookingID]
			if b == nil || b.Status == reservations.BookingStatusCheckedOut || b.Status == reservations.BookingStatusCancelled {
				continue
			}
			if latest == nil || b.CreatedAt.After(latest.CreatedAt) {
				latest = b
			}
		}
	}
	if latest == nil {
		return nil, reservations.ErrNoActiveBooking
	}
	return latest, nil
}

func (m *memoryReservations) RoomsForBooking(ctx context.Context, bookingID int64) ([]reservations.Room, error) {
	rooms := m.links[bookingID]
	if len(rooms) == 0 {
		return nil, reservations.ErrNoRoomsLinked
	}
	return rooms, nil
}

type memoryCharges struct {
	food          map[int64][]FoodOrderLine
	services      map[int64][]ServiceLine
	lastCheckouts map[int64]time.Time
}

func (m *memoryCharges) FoodLines(ctx context.Context, roomID int64, from time.Time) ([]FoodOrderLine, error) {
	var out []FoodOrderLine
	for _, line := range m.food[roomID] {
		if !line.OrderedAt.Before(from) {
			out = append(out, line)
		}
	}
	return out, nil
}

func (m *memoryCharges) ServiceLines(ctx context.Context, roomID int64, from time.Time) ([]ServiceLine, error) {
	var out []ServiceLine
	for _, line := range m.services[roomID] {
		if !line.AssignedAt.Before(from) {
			out = append(out, line)
		}
	}
	return out, nil
}

func (m *memoryCharges) LastCheckoutTimeForRoom(ctx context.Context, roomID int64) (*time.Time, error) {
	if at, ok := m.lastCheckouts[roomID]; ok {
		return &at, nil
	}
	return nil, nil
}

type memoryVerifications struct {
	byRoom map[int64]*inventory.Verification
}

func (m *memoryVerifications) CompletedVerification(ctx context.Context, roomID int64, since time.Time) (*inventory.Verification, error) {
	v := m.byRoom[roomID]
	if v == nil || v.CompletedAt.Before(since) {
		return nil, nil
	}
	return v, nil
}

type fixture struct {
	svc           *Service
	reservations  *memoryReservations
	charges       *memoryCharges
	verifications *memoryVerifications
}

var testNow = time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

func newFixture() *fixture {
	res := &memoryReservations{
		rooms:    make(map[string]*reservations.Room),
		bookings: make(map[int64]*reservations.Booking),
		links:    make(map[int64][]reservations.Room),
	}
	charges := &memoryCharges{
		food:          make(map[int64][]FoodOrderLine),
		services:      make(map[int64][]ServiceLine),
		lastCheckouts: make(map[int64]time.Time),
	}
	verifications := &memoryVerifications{byRoom: make(map[int64]*inventory.Verification)}
	svc := NewService(res, charges, verifications, tax.New(tax.Config{HomeStateCode: "29"}), nil)
	svc.WithNow(func() time.Time { return testNow })
	return &fixture{svc: svc, reservations: res, charges: charges, verifications: verifications}
}

func (f *fixture) addBooking(b reservations.Booking, rooms ...reservations.Room) {
	f.reservations.bookings[b.ID] = &b
	for i := range rooms {
		room := rooms[i]
		f.reservations.rooms[room.Number] = &room
		f.reservations.links[b.ID] = append(f.reservations.links[b.ID], room)
	}
}

func regularBooking(id int64, rate float64) (reservations.Booking, reservations.Room) {
	return reservations.Booking{
			ID:        id,
			Kind:      reservations.BookingKindRegular,
			GuestName: "A Guest",
			CheckIn:   time.Date(2026, 3, 12, 14, 0, 0, 0, time.UTC),
			CheckOut:  time.Date(2026, 3, 14, 11, 0, 0, 0, time.UTC),
			Status:    reservations.BookingStatusCheckedIn,
			CreatedAt: time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC),
		}, reservations.Room{
			ID:     id * 100,
			Number: "101",
			Rate:   rate,
			Status: reservations.RoomStatusCheckedIn,
		}
}

func TestBuildBillRoomOnlyTwoNights(t *testing.T) {
	f := newFixture()
	booking, room := regularBooking(1, 6000)
	f.addBooking(booking, room)

	summary, err := f.svc.BuildBill(context.Background(), "101", ScopeRoom)
	require.NoError(t, err)
	require.Equal(t, 2, summary.Nights)
	require.Equal(t, 12000.0, summary.Breakdown.RoomCharges)
	require.Equal(t, 1440.0, summary.Breakdown.RoomGST)
	require.Equal(t, 12000.0, summary.Breakdown.TotalDue)
	require.Equal(t, 1440.0, summary.Breakdown.TotalGST)
}

func TestBuildBillEarlyCheckoutBillsReservedPeriod(t *testing.T) {
	f := newFixture()
	booking, room := regularBooking(1, 4000)
	booking.CheckOut = time.Date(2026, 3, 17, 11, 0, 0, 0, time.UTC)
	f.addBooking(booking, room)

	// today (Mar 14) is before the reserved checkout (Mar 17)
	summary, err := f.svc.BuildBill(context.Background(), "101", ScopeRoom)
	require.NoError(t, err)
	require.Equal(t, 5, summary.Nights)
	require.Equal(t, 20000.0, summary.Breakdown.RoomCharges)
}

func TestBuildBillLateCheckoutBillsExtraNights(t *testing.T) {
	f := newFixture()
	booking, room := regularBooking(1, 4000)
	booking.CheckOut = time.Date(2026, 3, 13, 11, 0, 0, 0, time.UTC)
	f.addBooking(booking, room)

	summary, err := f.svc.BuildBill(context.Background(), "101", ScopeRoom)
	require.NoError(t, err)
	require.Equal(t, 2, summary.Nights)
}

func TestBuildBillSameDayStayBillsOneNight(t *testing.T) {
	f := newFixture()
	booking, room := regularBooking(1, 4000)
	booking.CheckIn = time.Date(2026, 3, 14, 8, 0, 0, 0, time.UTC)
	booking.CheckOut = time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)
	f.addBooking(booking, room)

	summary, err := f.svc.BuildBill(context.Background(), "101", ScopeRoom)
	require.NoError(t, err)
	require.Equal(t, 1, summary.Nights)
	require.Equal(t, 4000.0, summary.Breakdown.RoomCharges)
}

func TestBuildBillNoActiveBooking(t *testing.T) {
	f := newFixture()
	f.reservations.rooms["101"] = &reservations.Room{ID: 1, Number: "101"}

	_, err := f.svc.BuildBill(context.Background(), "101", ScopeRoom)
	require.ErrorIs(t, err, reservations.ErrNoActiveBooking)
}

func TestBuildBillRejectsCheckedOutBooking(t *testing.T) {
	f := newFixture()
	booking, room := regularBooking(1, 4000)
	f.addBooking(booking, room)
	stored := f.reservations.bookings[1]
	stored.Status = reservations.BookingStatusCheckedOut
	// a checked-out booking is no longer active, so resolution fails first
	_, err := f.svc.BuildBill(context.Background(), "101", ScopeRoom)
	require.ErrorIs(t, err, reservations.ErrNoActiveBooking)
}

func TestBuildBillUnbilledFoodAndServices(t *testing.T) {
	f := newFixture()
	booking, room := regularBooking(1, 4000)
	f.addBooking(booking, room)
	orderedAt := time.Date(2026, 3, 13, 20, 0, 0, 0, time.UTC)
	f.charges.food[room.ID] = []FoodOrderLine{
		{ID: 1, RoomID: room.ID, Description: "Dinner", Amount: 800, BillingStatus: BillingStatusUnbilled, OrderedAt: orderedAt},
		{ID: 2, RoomID: room.ID, Description: "Breakfast", Amount: 300, BillingStatus: BillingStatusPaid, OrderedAt: orderedAt},
	}
	f.charges.services[room.ID] = []ServiceLine{
		{ID: 1, RoomID: room.ID, Name: "Spa", Amount: 2000, TaxRate: 0, BillingStatus: BillingStatusUnbilled, AssignedAt: orderedAt},
	}

	summary, err := f.svc.BuildBill(context.Background(), "101", ScopeRoom)
	require.NoError(t, err)
	require.Equal(t, 800.0, summary.Breakdown.FoodCharges)
	require.Equal(t, 40.0, summary.Breakdown.FoodGST)
	require.Equal(t, 2000.0, summary.Breakdown.ServiceCharges)
	require.Equal(t, 360.0, summary.Breakdown.ServiceGST)

	// the paid line is surfaced for transparency with a zero amount
	var paidLine *ChargeLine
	for i := range summary.Breakdown.Lines {
		if summary.Breakdown.Lines[i].Description == "Breakfast" {
			paidLine = &summary.Breakdown.Lines[i]
		}
	}
	require.NotNil(t, paidLine)
	require.Equal(t, 0.0, paidLine.Amount)
	require.Equal(t, "paid", paidLine.PaymentStatus)
}

func TestBuildBillWindowExcludesPriorGuestOrders(t *testing.T) {
	f := newFixture()
	booking, room := regularBooking(1, 4000)
	booking.CheckIn = time.Date(2026, 3, 13, 14, 0, 0, 0, time.UTC)
	f.addBooking(booking, room)

	// prior guest checked out the same day at 11:00; their lunch order at
	// 10:00 must not reach this bill
	f.charges.lastCheckouts[room.ID] = time.Date(2026, 3, 13, 11, 0, 0, 0, time.UTC)
	f.charges.food[room.ID] = []FoodOrderLine{
		{ID: 1, RoomID: room.ID, Description: "Prior guest lunch", Amount: 500, BillingStatus: BillingStatusUnbilled, OrderedAt: time.Date(2026, 3, 13, 10, 0, 0, 0, time.UTC)},
		{ID: 2, RoomID: room.ID, Description: "Dinner", Amount: 700, BillingStatus: BillingStatusUnbilled, OrderedAt: time.Date(2026, 3, 13, 20, 0, 0, 0, time.UTC)},
	}

	summary, err := f.svc.BuildBill(context.Background(), "101", ScopeRoom)
	require.NoError(t, err)
	require.Equal(t, 700.0, summary.Breakdown.FoodCharges)
	require.Len(t, summary.Breakdown.Lines, 1)
}

func TestBuildBillConsumablesAndDamages(t *testing.T) {
	f := newFixture()
	booking, room := regularBooking(1, 4000)
	f.addBooking(booking, room)
	f.verifications.byRoom[room.ID] = &inventory.Verification{
		RoomID: room.ID,
		Entries: []inventory.AuditEntry{
			{ItemID: 1, ActualConsumed: 4, ComplimentaryLimit: 2, ChargePerUnit: 100},
			{ItemID: 2, ActualConsumed: 1, ComplimentaryLimit: 2, ChargePerUnit: 50},
		},
		Damages:     []inventory.DamageEntry{{ItemID: 9, Description: "broken lamp", Amount: 1500}},
		CompletedAt: testNow,
	}

	summary, err := f.svc.BuildBill(context.Background(), "101", ScopeRoom)
	require.NoError(t, err)
	require.Equal(t, 200.0, summary.Breakdown.ConsumableCharges)
	require.Equal(t, 10.0, summary.Breakdown.ConsumableGST)
	require.Equal(t, 1500.0, summary.Breakdown.DamageCharges)
	require.Equal(t, 270.0, summary.Breakdown.DamageGST)
}

func TestBuildBillIgnoresPriorStayVerification(t *testing.T) {
	f := newFixture()
	booking, room := regularBooking(1, 4000)
	booking.CheckIn = time.Date(2026, 3, 13, 14, 0, 0, 0, time.UTC)
	f.addBooking(booking, room)

	// the prior guest checked out at 11:00; their inspection from 09:00
	// must not be billed to the current guest
	f.charges.lastCheckouts[room.ID] = time.Date(2026, 3, 13, 11, 0, 0, 0, time.UTC)
	f.verifications.byRoom[room.ID] = &inventory.Verification{
		RoomID: room.ID,
		Entries: []inventory.AuditEntry{
			{ItemID: 1, ActualConsumed: 4, ComplimentaryLimit: 2, ChargePerUnit: 100},
		},
		CompletedAt: time.Date(2026, 3, 13, 9, 0, 0, 0, time.UTC),
	}

	summary, err := f.svc.BuildBill(context.Background(), "101", ScopeRoom)
	require.NoError(t, err)
	require.Equal(t, 0.0, summary.Breakdown.ConsumableCharges)
	require.Equal(t, 0.0, summary.Breakdown.DamageCharges)
	require.Empty(t, summary.Breakdown.Lines)
}

func TestBuildBillCarriesWindowStarts(t *testing.T) {
	f := newFixture()
	booking, room := regularBooking(1, 4000)
	booking.CheckIn = time.Date(2026, 3, 13, 14, 0, 0, 0, time.UTC)
	f.addBooking(booking, room)
	f.charges.lastCheckouts[room.ID] = time.Date(2026, 3, 13, 11, 0, 0, 0, time.UTC)

	summary, err := f.svc.BuildBill(context.Background(), "101", ScopeRoom)
	require.NoError(t, err)
	require.Equal(t,
		time.Date(2026, 3, 13, 11, 0, 0, 0, time.UTC),
		summary.WindowStarts[room.ID])
}

func TestBuildBillWholeBookingSumsRooms(t *testing.T) {
	f := newFixture()
	booking, room := regularBooking(1, 6000)
	second := reservations.Room{ID: 101, Number: "102", Rate: 4000, Status: reservations.RoomStatusCheckedIn}
	f.addBooking(booking, room, second)

	summary, err := f.svc.BuildBill(context.Background(), "101", ScopeBooking)
	require.NoError(t, err)
	require.Len(t, summary.Rooms, 2)
	// 6000 at 12% and 4000 at 5%, two nights each
	require.Equal(t, 20000.0, summary.Breakdown.RoomCharges)
	require.Equal(t, 1440.0+400.0, summary.Breakdown.RoomGST)
}

func TestBuildBillWholePropertyPackageBillsOnce(t *testing.T) {
	f := newFixture()
	booking, room := regularBooking(1, 0)
	booking.Kind = reservations.BookingKindPackage
	booking.PackagePrice = 12000
	second := reservations.Room{ID: 101, Number: "102", Status: reservations.RoomStatusCheckedIn}
	f.addBooking(booking, room, second)

	summary, err := f.svc.BuildBill(context.Background(), "101", ScopeBooking)
	require.NoError(t, err)
	require.Equal(t, 12000.0, summary.Breakdown.PackageCharges)
	// daily rate 6000 lands in the 12% slab
	require.Equal(t, 1440.0, summary.Breakdown.PackageGST)
}

func TestBuildBillPerRoomPackage(t *testing.T) {
	f := newFixture()
	booking, room := regularBooking(1, 0)
	booking.Kind = reservations.BookingKindPackage
	booking.PackagePrice = 3000
	booking.PackagePerRoom = true
	second := reservations.Room{ID: 101, Number: "102", Status: reservations.RoomStatusCheckedIn}
	f.addBooking(booking, room, second)

	summary, err := f.svc.BuildBill(context.Background(), "101", ScopeBooking)
	require.NoError(t, err)
	// 3000 per room per night, 2 rooms, 2 nights
	require.Equal(t, 12000.0, summary.Breakdown.PackageCharges)
	// per-room daily rate 3000 lands in the 5% slab
	require.Equal(t, 600.0, summary.Breakdown.PackageGST)
}

func TestBuildBillEmptyRoomYieldsZeroBreakdown(t *testing.T) {
	f := newFixture()
	booking, room := regularBooking(1, 0)
	f.addBooking(booking, room)

	summary, err := f.svc.BuildBill(context.Background(), "101", ScopeRoom)
	require.NoError(t, err)
	require.Equal(t, 0.0, summary.Breakdown.TotalDue)
	require.Equal(t, 0.0, summary.Breakdown.TotalGST)
	require.Empty(t, summary.Breakdown.Lines)
}
