package posting

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

type reconStore struct {
	db *pgxpool.Pool
}

func NewReconStore(pool *pgxpool.Pool) ReconStore {
	return &reconStore{db: pool}
}

// postingFailureMarker is the note prefix the finalizer writes when it
// swallows a posting error.
const postingFailureMarker = "ledger posting failed"

func (s *reconStore) UnpostedCheckouts(ctx context.Context, limit int) ([]CheckoutEvent, error) {
	rows, err := s.db.Query(ctx, `SELECT c.id, c.invoice_number, c.checkout_date,
c.room_charges, c.food_charges, c.service_charges, c.package_charges,
c.consumable_charges, c.damage_charges, c.late_fee + c.keycard_fee,
c.cgst, c.sgst, c.igst, c.discount, c.tips, c.advance_applied, c.grand_total
FROM checkouts c
WHERE c.notes LIKE '%' || $1 || '%'
  AND NOT EXISTS (
    SELECT 1 FROM journal_entries je
    WHERE je.reference_type = $2 AND je.reference_id = c.id AND je.status = 'POSTED'
  )
ORDER BY c.checkout_date
LIMIT $3`, postingFailureMarker, ReferenceCheckout, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []CheckoutEvent
	for rows.Next() {
		var e CheckoutEvent
		if err := rows.Scan(&e.CheckoutID, &e.InvoiceNumber, &e.Date,
			&e.RoomCharges, &e.FoodCharges, &e.ServiceCharges, &e.PackageCharges,
			&e.ConsumableCharges, &e.DamageCharges, &e.Fees,
			&e.CGST, &e.SGST, &e.IGST, &e.Discount, &e.Tips,
			&e.AdvanceApplied, &e.GrandTotal); err != nil {
			return nil, err
		}
		payments, err := s.paymentsFor(ctx, e.CheckoutID)
		if err != nil {
			return nil, err
		}
		e.Payments = payments
		events = append(events, e)
	}
	return events, rows.Err()
}

func (s *reconStore) paymentsFor(ctx context.Context, checkoutID int64) ([]PaymentLine, error) {
	rows, err := s.db.Query(ctx,
		`SELECT method, amount FROM checkout_payments WHERE checkout_id=$1`, checkoutID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var payments []PaymentLine
	for rows.Next() {
		var p PaymentLine
		if err := rows.Scan(&p.Method, &p.Amount); err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

func (s *reconStore) MarkReconciled(ctx context.Context, checkoutID int64) error {
	_, err := s.db.Exec(ctx, `UPDATE checkouts
SET notes = trim(both E'\n' from regexp_replace(notes, $1 || '[^\n]*\n?', '', 'g'))
WHERE id = $2`, postingFailureMarker, checkoutID)
	return err
}
