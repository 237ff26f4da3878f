package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/atithi-pms/atithi/internal/accounting/journals"
	"github.com/atithi-pms/atithi/internal/accounting/posting"
	"github.com/atithi-pms/atithi/internal/billing"
	"github.com/atithi-pms/atithi/internal/inventory"
	"github.com/atithi-pms/atithi/internal/platform/db"
	"github.com/atithi-pms/atithi/internal/reservations"
	"github.com/atithi-pms/atithi/internal/tax"
)

// invoiceAttempts bounds invoice generation before falling back to an
// ID-derived number.
const invoiceAttempts = 5

// BillPort produces the bill the finalizer freezes into a Checkout. The
// summary carries the per-room window starts, so finalize marks and deducts
// exactly what the bill collected.
type BillPort interface {
	BuildBill(ctx context.Context, roomNumber string, scope billing.Scope) (*billing.BillSummary, error)
}

// InventoryPort is the stock contract consumed at checkout.
type InventoryPort interface {
	CompletedVerification(ctx context.Context, roomID int64, since time.Time) (*inventory.Verification, error)
	DeductConsumables(ctx context.Context, roomID int64, items []inventory.Deduction, checkoutID, userID int64) error
}

// PosterPort mirrors the checkout into the general ledger. It matches
// posting.Poster's checkout surface; a nil entry with a nil error means the
// posting was skipped.
type PosterPort interface {
	PostCheckout(ctx context.Context, event posting.CheckoutEvent) (*journals.Entry, error)
}

// Dispatcher enqueues fire-and-forget housekeeping work.
type Dispatcher interface {
	DispatchCleaning(ctx context.Context, roomID int64) error
	DispatchRefill(ctx context.Context, roomID int64) error
}

// MetricsPort counts finalize outcomes.
type MetricsPort interface {
	CheckoutFinalized()
	PostingSkipped()
}

// Config carries finalizer tunables.
type Config struct {
	KeycardFee   float64
	LateFeeGrace time.Duration
}

// Service drives the finalize state machine.
type Service struct {
	repo       Repository
	bills      BillPort
	stock      InventoryPort
	poster     PosterPort
	dispatcher Dispatcher
	calc       *tax.Calculator
	cfg        Config
	logger     *slog.Logger
	metrics    MetricsPort
	now        func() time.Time
}

func NewService(repo Repository, bills BillPort, stock InventoryPort, poster PosterPort, dispatcher Dispatcher, calc *tax.Calculator, cfg Config, logger *slog.Logger) *Service {
	if cfg.LateFeeGrace <= 0 {
		cfg.LateFeeGrace = 2 * time.Hour
	}
	return &Service{
		repo:       repo,
		bills:      bills,
		stock:      stock,
		poster:     poster,
		dispatcher: dispatcher,
		calc:       calc,
		cfg:        cfg,
		logger:     logger,
		now:        time.Now,
	}
}

func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

func (s *Service) WithMetrics(metrics MetricsPort) {
	s.metrics = metrics
}

// ByBooking returns the persisted checkout for a booking.
func (s *Service) ByBooking(ctx context.Context, bookingID int64) (*Checkout, error) {
	return s.repo.ByBooking(ctx, bookingID)
}

// Finalize runs the checkout state machine. Calling it again for an already
// checked-out booking returns the existing checkout unchanged. A duplicate
// key race against a concurrent finalize is resolved by returning the
// winner's checkout; the losing insert is retried at most once.
func (s *Service) Finalize(ctx context.Context, in FinalizeInput) (*Success, error) {
	scope := billing.ScopeRoom
	if in.Scope == string(billing.ScopeBooking) {
		scope = billing.ScopeBooking
	}

	bill, err := s.bills.BuildBill(ctx, in.RoomNumber, scope)
	if err != nil {
		return nil, err
	}

	success, err := s.finalizeOnce(ctx, in, bill)
	if err == nil || !db.IsUniqueViolation(err) {
		return success, err
	}

	// Another terminal won the insert race. The constraint guarantees its
	// checkout is committed, so hand that one back.
	existing, queryErr := s.repo.ByBooking(ctx, bill.Booking.ID)
	if queryErr != nil {
		return nil, ErrConcurrentFinalize
	}
	if s.logger != nil {
		s.logger.Info("finalize race resolved to existing checkout",
			slog.Int64("booking_id", bill.Booking.ID),
			slog.Int64("checkout_id", existing.ID))
	}
	return successFrom(existing), nil
}

func (s *Service) finalizeOnce(ctx context.Context, in FinalizeInput, bill *billing.BillSummary) (*Success, error) {
	now := s.now()
	snapshot := s.buildSnapshot(in, bill, now)

	if diff := snapshot.GrandTotal - in.PaymentsTotal(); diff > paymentSumTolerance || diff < -paymentSumTolerance {
		return nil, fmt.Errorf("%w: expected %.2f, got %.2f",
			ErrPaymentMismatch, snapshot.GrandTotal, in.PaymentsTotal())
	}

	invoice, err := s.generateInvoice(ctx, now)
	if err != nil {
		return nil, err
	}
	snapshot.InvoiceNumber = invoice

	var result *Success
	var created bool
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		existing, err := s.clearOrReuse(ctx, tx, bill.Booking.ID)
		if err != nil {
			return err
		}
		if existing != nil {
			result = successFrom(existing)
			return nil
		}
		if _, err := s.persist(ctx, tx, in, bill, snapshot); err != nil {
			return err
		}
		result = successFrom(snapshot)
		created = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	if created {
		if s.metrics != nil {
			s.metrics.CheckoutFinalized()
		}
		s.afterCommit(ctx, in, bill, snapshot)
	}
	return result, nil
}

// clearOrReuse implements the idempotency and orphan guard. It returns the
// existing checkout when the booking is genuinely checked out, deletes the
// orphan when a room is still occupied, and returns (nil, nil) when no
// checkout exists.
func (s *Service) clearOrReuse(ctx context.Context, tx TxRepository, bookingID int64) (*Checkout, error) {
	existing, err := tx.ByBooking(ctx, bookingID)
	if errors.Is(err, ErrCheckoutNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	statuses, err := tx.RoomStatuses(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	for _, status := range statuses {
		if status == reservations.RoomStatusCheckedIn {
			// Orphan from a failed prior attempt: the row exists but the
			// stay never completed. Remove it and finalize fresh.
			if s.logger != nil {
				s.logger.Warn("deleting orphaned checkout",
					slog.Int64("booking_id", bookingID),
					slog.Int64("checkout_id", existing.ID))
			}
			return nil, tx.DeleteCheckoutCascade(ctx, existing.ID)
		}
	}
	return existing, nil
}

func (s *Service) buildSnapshot(in FinalizeInput, bill *billing.BillSummary, now time.Time) *Checkout {
	b := bill.Breakdown

	lateFee := lateFee(now, bill.Booking.CheckOut, nightlyBase(bill), s.cfg.LateFeeGrace)
	keycardFee := 0.0
	if !in.KeycardReturned {
		keycardFee = s.cfg.KeycardFee
	}

	subtotal := b.TotalDue + lateFee + keycardFee
	taxAmount := b.TotalGST
	preAdvance := subtotal + taxAmount - in.Discount + in.Tips
	if preAdvance < 0 {
		preAdvance = 0
	}
	advance := bill.Booking.AdvanceDeposit
	if advance > preAdvance {
		advance = preAdvance
	}
	grand := preAdvance - advance

	split := s.calc.SplitAmount(taxAmount, bill.Booking.GuestStateCode)

	return &Checkout{
		BookingID:         bill.Booking.ID,
		CheckoutDate:      now,
		RoomCharges:       b.RoomCharges,
		FoodCharges:       b.FoodCharges,
		ServiceCharges:    b.ServiceCharges,
		PackageCharges:    b.PackageCharges,
		ConsumableCharges: b.ConsumableCharges,
		DamageCharges:     b.DamageCharges,
		LateFee:           lateFee,
		KeycardFee:        keycardFee,
		Subtotal:          subtotal,
		CGST:              split.CGST,
		SGST:              split.SGST,
		IGST:              split.IGST,
		TaxAmount:         taxAmount,
		Discount:          in.Discount,
		Tips:              in.Tips,
		AdvanceApplied:    advance,
		GrandTotal:        grand,
		Notes:             strings.TrimSpace(in.Notes),
		CreatedBy:         in.UserID,
	}
}

func (s *Service) persist(ctx context.Context, tx TxRepository, in FinalizeInput, bill *billing.BillSummary, snapshot *Checkout) (*Checkout, error) {
	id, err := tx.InsertCheckout(ctx, snapshot)
	if err != nil {
		return nil, err
	}
	snapshot.ID = id

	if strings.HasPrefix(snapshot.InvoiceNumber, "TMP-") {
		snapshot.InvoiceNumber = fmt.Sprintf("INV-%06d", id)
		if err := tx.SetInvoiceNumber(ctx, id, snapshot.InvoiceNumber); err != nil {
			return nil, err
		}
	}

	if err := tx.InsertPayments(ctx, id, in.Payments); err != nil {
		return nil, err
	}

	roomIDs := make([]int64, 0, len(bill.Rooms))
	for _, room := range bill.Rooms {
		roomIDs = append(roomIDs, room.ID)
	}
	if err := tx.LinkRooms(ctx, id, roomIDs); err != nil {
		return nil, err
	}

	for _, room := range bill.Rooms {
		window := bill.WindowStarts[room.ID]
		if err := tx.MarkFoodBilled(ctx, room.ID, window); err != nil {
			return nil, err
		}
		if err := tx.MarkServicesBilled(ctx, room.ID, window); err != nil {
			return nil, err
		}
		if err := tx.SetRoomStatus(ctx, room.ID, reservations.RoomStatusAvailable); err != nil {
			return nil, err
		}
	}

	statuses, err := tx.RoomStatuses(ctx, bill.Booking.ID)
	if err != nil {
		return nil, err
	}
	allDone := true
	for _, status := range statuses {
		if status == reservations.RoomStatusCheckedIn {
			allDone = false
			break
		}
	}
	if allDone {
		if err := tx.SetBookingStatus(ctx, bill.Booking.ID, reservations.BookingStatusCheckedOut); err != nil {
			return nil, err
		}
	}
	return snapshot, nil
}

// afterCommit runs the best-effort tail of a finalize: stock deduction,
// ledger posting, and housekeeping dispatch. None of these may fail the
// checkout itself.
func (s *Service) afterCommit(ctx context.Context, in FinalizeInput, bill *billing.BillSummary, snapshot *Checkout) {
	for _, room := range bill.Rooms {
		s.deductRoomStock(ctx, room.ID, bill.WindowStarts[room.ID], snapshot.ID, in.UserID)
		if s.dispatcher != nil {
			if err := s.dispatcher.DispatchCleaning(ctx, room.ID); err != nil {
				s.warn("cleaning dispatch failed", room.ID, err)
			}
			if err := s.dispatcher.DispatchRefill(ctx, room.ID); err != nil {
				s.warn("refill dispatch failed", room.ID, err)
			}
		}
	}
	s.postLedger(ctx, in, snapshot)
}

func (s *Service) deductRoomStock(ctx context.Context, roomID int64, since time.Time, checkoutID, userID int64) {
	verification, err := s.stock.CompletedVerification(ctx, roomID, since)
	if err != nil || verification == nil {
		if err != nil {
			s.warn("verification lookup failed", roomID, err)
		}
		return
	}
	deductions := make([]inventory.Deduction, 0, len(verification.Entries))
	for _, entry := range verification.Entries {
		if entry.ActualConsumed <= 0 {
			continue
		}
		deductions = append(deductions, inventory.Deduction{ItemID: entry.ItemID, Quantity: entry.ActualConsumed})
	}
	if err := s.stock.DeductConsumables(ctx, roomID, deductions, checkoutID, userID); err != nil {
		s.warn("stock deduction failed", roomID, err)
	}
}

// postLedger mirrors the checkout into the journal. Failures are recorded on
// the checkout notes for later reconciliation and never propagate.
func (s *Service) postLedger(ctx context.Context, in FinalizeInput, snapshot *Checkout) {
	payments := make([]posting.PaymentLine, 0, len(in.Payments))
	for _, p := range in.Payments {
		payments = append(payments, posting.PaymentLine{Method: p.Method, Amount: p.Amount})
	}
	event := posting.CheckoutEvent{
		CheckoutID:        snapshot.ID,
		InvoiceNumber:     snapshot.InvoiceNumber,
		Date:              snapshot.CheckoutDate,
		Payments:          payments,
		RoomCharges:       snapshot.RoomCharges,
		FoodCharges:       snapshot.FoodCharges,
		ServiceCharges:    snapshot.ServiceCharges,
		PackageCharges:    snapshot.PackageCharges,
		ConsumableCharges: snapshot.ConsumableCharges,
		DamageCharges:     snapshot.DamageCharges,
		Fees:              snapshot.LateFee + snapshot.KeycardFee,
		CGST:              snapshot.CGST,
		SGST:              snapshot.SGST,
		IGST:              snapshot.IGST,
		Discount:          snapshot.Discount,
		Tips:              snapshot.Tips,
		AdvanceApplied:    snapshot.AdvanceApplied,
		GrandTotal:        snapshot.GrandTotal,
	}

	entry, err := s.poster.PostCheckout(ctx, event)
	if err == nil {
		if entry == nil && s.metrics != nil {
			s.metrics.PostingSkipped()
		}
		if entry != nil && s.logger != nil {
			s.logger.Info("checkout posted to ledger",
				slog.Int64("checkout_id", snapshot.ID),
				slog.String("entry_number", entry.Number))
		}
		return
	}
	if s.metrics != nil {
		s.metrics.PostingSkipped()
	}
	s.warn("ledger posting failed", snapshot.ID, err)
	note := fmt.Sprintf("ledger posting failed at %s: %v",
		snapshot.CheckoutDate.Format(time.RFC3339), err)
	updateErr := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		return tx.AppendNotes(ctx, snapshot.ID, appendNote(snapshot.Notes, note))
	})
	if updateErr != nil {
		s.warn("recording posting failure note failed", snapshot.ID, updateErr)
	}
}

// generateInvoice tries a few date-stamped candidates against the uniqueness
// check, then hands back a TMP marker that persist replaces with the
// ID-derived fallback.
func (s *Service) generateInvoice(ctx context.Context, now time.Time) (string, error) {
	for i := 0; i < invoiceAttempts; i++ {
		candidate := fmt.Sprintf("INV-%s-%s",
			now.Format("20060102"), strings.ToUpper(uuid.NewString()[:8]))
		exists, err := s.repo.InvoiceExists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
	}
	return "TMP-" + uuid.NewString(), nil
}

func (s *Service) warn(msg string, id int64, err error) {
	if s.logger != nil {
		s.logger.Warn(msg, slog.Int64("id", id), slog.String("error", err.Error()))
	}
}

// nightlyBase is the one-night charge used to size a late fee.
func nightlyBase(bill *billing.BillSummary) float64 {
	if bill.Booking.Kind == reservations.BookingKindPackage {
		return tax.PackageDailyRate(bill.Booking.PackagePrice, bill.Nights, bill.Booking.PackagePerRoom)
	}
	var base float64
	for _, room := range bill.Rooms {
		base += room.Rate
	}
	return base
}

// lateFee charges nothing within the grace window, half a night up to six
// hours past scheduled checkout, and a full night beyond that.
func lateFee(now, scheduled time.Time, nightly float64, grace time.Duration) float64 {
	if scheduled.IsZero() || nightly <= 0 {
		return 0
	}
	delta := now.Sub(scheduled)
	switch {
	case delta <= grace:
		return 0
	case delta <= 6*time.Hour:
		return nightly / 2
	default:
		return nightly
	}
}
