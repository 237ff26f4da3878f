package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/atithi-pms/atithi/internal/billing"
	"github.com/atithi-pms/atithi/internal/platform/db"
	"github.com/atithi-pms/atithi/internal/reservations"
)

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool}
}

const checkoutColumns = `id, booking_id, invoice_number, checkout_date,
room_charges, food_charges, service_charges, package_charges,
consumable_charges, damage_charges, late_fee, keycard_fee, subtotal,
cgst, sgst, igst, tax_amount, discount, tips, advance_applied, grand_total,
notes, created_by, created_at`

func (r *repository) ByBooking(ctx context.Context, bookingID int64) (*Checkout, error) {
	return scanCheckout(r.db.QueryRow(ctx,
		`SELECT `+checkoutColumns+` FROM checkouts WHERE booking_id=$1`, bookingID))
}

func (r *repository) InvoiceExists(ctx context.Context, invoiceNumber string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM checkouts WHERE invoice_number=$1)`, invoiceNumber).Scan(&exists)
	return exists, err
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx})
	})
}

type txRepository struct {
	tx pgx.Tx
}

func (r *txRepository) InsertCheckout(ctx context.Context, c *Checkout) (int64, error) {
	var id int64
	err := r.tx.QueryRow(ctx, `INSERT INTO checkouts
(booking_id, invoice_number, checkout_date, room_charges, food_charges,
service_charges, package_charges, consumable_charges, damage_charges,
late_fee, keycard_fee, subtotal, cgst, sgst, igst, tax_amount, discount,
tips, advance_applied, grand_total, notes, created_by)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22)
RETURNING id`,
		c.BookingID, c.InvoiceNumber, c.CheckoutDate,
		toNumeric(c.RoomCharges), toNumeric(c.FoodCharges), toNumeric(c.ServiceCharges),
		toNumeric(c.PackageCharges), toNumeric(c.ConsumableCharges), toNumeric(c.DamageCharges),
		toNumeric(c.LateFee), toNumeric(c.KeycardFee), toNumeric(c.Subtotal),
		toNumeric(c.CGST), toNumeric(c.SGST), toNumeric(c.IGST), toNumeric(c.TaxAmount),
		toNumeric(c.Discount), toNumeric(c.Tips), toNumeric(c.AdvanceApplied),
		toNumeric(c.GrandTotal), c.Notes, c.CreatedBy).Scan(&id)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return 0, fmt.Errorf("%w: %s", db.ErrUniqueViolation, db.ConstraintName(err))
		}
		return 0, err
	}
	return id, nil
}

func (r *txRepository) InsertPayments(ctx context.Context, checkoutID int64, payments []PaymentInput) error {
	for _, p := range payments {
		if _, err := r.tx.Exec(ctx,
			`INSERT INTO checkout_payments (checkout_id, method, amount) VALUES ($1,$2,$3)`,
			checkoutID, p.Method, toNumeric(p.Amount)); err != nil {
			return err
		}
	}
	return nil
}

func (r *txRepository) SetInvoiceNumber(ctx context.Context, checkoutID int64, invoiceNumber string) error {
	_, err := r.tx.Exec(ctx,
		`UPDATE checkouts SET invoice_number=$1 WHERE id=$2`, invoiceNumber, checkoutID)
	return err
}

func (r *txRepository) LinkRooms(ctx context.Context, checkoutID int64, roomIDs []int64) error {
	for _, roomID := range roomIDs {
		if _, err := r.tx.Exec(ctx,
			`INSERT INTO checkout_rooms (checkout_id, room_id) VALUES ($1,$2)`,
			checkoutID, roomID); err != nil {
			return err
		}
	}
	return nil
}

func (r *txRepository) MarkFoodBilled(ctx context.Context, roomID int64, from time.Time) error {
	_, err := r.tx.Exec(ctx, `UPDATE food_order_lines
SET billing_status=$1, updated_at=now()
WHERE room_id=$2 AND billing_status=$3 AND ordered_at >= $4`,
		billing.BillingStatusBilled, roomID, billing.BillingStatusUnbilled, from)
	return err
}

func (r *txRepository) MarkServicesBilled(ctx context.Context, roomID int64, from time.Time) error {
	_, err := r.tx.Exec(ctx, `UPDATE assigned_services
SET billing_status=$1, updated_at=now()
WHERE room_id=$2 AND billing_status=$3 AND assigned_at >= $4`,
		billing.BillingStatusBilled, roomID, billing.BillingStatusUnbilled, from)
	return err
}

func (r *txRepository) SetRoomStatus(ctx context.Context, roomID int64, status reservations.RoomStatus) error {
	_, err := r.tx.Exec(ctx,
		`UPDATE rooms SET status=$1, updated_at=now() WHERE id=$2`, status, roomID)
	return err
}

func (r *txRepository) SetBookingStatus(ctx context.Context, bookingID int64, status reservations.BookingStatus) error {
	_, err := r.tx.Exec(ctx,
		`UPDATE bookings SET status=$1, updated_at=now() WHERE id=$2`, status, bookingID)
	return err
}

func (r *txRepository) RoomStatuses(ctx context.Context, bookingID int64) ([]reservations.RoomStatus, error) {
	rows, err := r.tx.Query(ctx, `SELECT r.status FROM rooms r
JOIN booking_rooms br ON br.room_id = r.id
WHERE br.booking_id=$1`, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var statuses []reservations.RoomStatus
	for rows.Next() {
		var s reservations.RoomStatus
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		statuses = append(statuses, s)
	}
	return statuses, rows.Err()
}

func (r *txRepository) DeleteCheckoutCascade(ctx context.Context, checkoutID int64) error {
	// Children first; the schema has no ON DELETE CASCADE.
	for _, stmt := range []string{
		`DELETE FROM consumable_movements WHERE checkout_id=$1`,
		`DELETE FROM checkout_payments WHERE checkout_id=$1`,
		`DELETE FROM checkout_rooms WHERE checkout_id=$1`,
		`DELETE FROM checkouts WHERE id=$1`,
	} {
		if _, err := r.tx.Exec(ctx, stmt, checkoutID); err != nil {
			return err
		}
	}
	return nil
}

func (r *txRepository) ByBooking(ctx context.Context, bookingID int64) (*Checkout, error) {
	return scanCheckout(r.tx.QueryRow(ctx,
		`SELECT `+checkoutColumns+` FROM checkouts WHERE booking_id=$1`, bookingID))
}

func (r *txRepository) AppendNotes(ctx context.Context, checkoutID int64, notes string) error {
	_, err := r.tx.Exec(ctx,
		`UPDATE checkouts SET notes=$1 WHERE id=$2`, notes, checkoutID)
	return err
}

func scanCheckout(row pgx.Row) (*Checkout, error) {
	var c Checkout
	err := row.Scan(&c.ID, &c.BookingID, &c.InvoiceNumber, &c.CheckoutDate,
		&c.RoomCharges, &c.FoodCharges, &c.ServiceCharges, &c.PackageCharges,
		&c.ConsumableCharges, &c.DamageCharges, &c.LateFee, &c.KeycardFee,
		&c.Subtotal, &c.CGST, &c.SGST, &c.IGST, &c.TaxAmount, &c.Discount,
		&c.Tips, &c.AdvanceApplied, &c.GrandTotal, &c.Notes, &c.CreatedBy,
		&c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrCheckoutNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func toNumeric(v float64) any {
	return fmt.Sprintf("%.2f", v)
}
