package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository reads both trial-balance sources from Postgres.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository returns the pgx-backed reader for both report modes.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// ledgerBalancesQuery sums journal lines per ledger. Lines join through
// their entries inside the LEFT JOIN, so a line whose entry is VOID or
// outside the window drops out of the join instead of being summed with a
// NULL entry alongside.
func ledgerBalancesQuery(from, to *time.Time) (string, []any) {
	entryJoin := "je.id = jel.entry_id AND je.status = 'POSTED'"
	args := []any{}
	if from != nil {
		args = append(args, *from)
		entryJoin += fmt.Sprintf(" AND je.date >= $%d", len(args))
	}
	if to != nil {
		args = append(args, *to)
		entryJoin += fmt.Sprintf(" AND je.date <= $%d", len(args))
	}
	query := fmt.Sprintf(`SELECT l.id, l.name, g.name, l.balance_type, l.opening_balance,
COALESCE(SUM(jel.amount) FILTER (WHERE jel.side = 'DEBIT'), 0),
COALESCE(SUM(jel.amount) FILTER (WHERE jel.side = 'CREDIT'), 0)
FROM ledgers l
JOIN ledger_groups g ON g.id = l.group_id
LEFT JOIN (journal_entry_lines jel
	JOIN journal_entries je ON %s) ON jel.ledger_id = l.id
WHERE l.is_active
GROUP BY l.id, l.name, g.name, l.balance_type, l.opening_balance
ORDER BY g.name, l.name`, entryJoin)
	return query, args
}

func (r *Repository) ListLedgerBalances(ctx context.Context, from, to *time.Time) ([]LedgerBalance, error) {
	query, args := ledgerBalancesQuery(from, to)
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []LedgerBalance
	for rows.Next() {
		var b LedgerBalance
		if err := rows.Scan(&b.LedgerID, &b.Name, &b.Group, &b.BalanceType, &b.Opening, &b.Debits, &b.Credits); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// checkoutAggregatesQuery sums checkout-level amounts once per checkout.
// Payments are pre-aggregated per checkout before joining, so a split
// payment cannot fan out the checkout row and double its category sums.
func checkoutAggregatesQuery(from, to *time.Time) (string, []any) {
	query := `SELECT
COALESCE(SUM(cp.cash_amount), 0),
COALESCE(SUM(cp.other_amount), 0),
COALESCE(SUM(c.room_charges), 0),
COALESCE(SUM(c.food_charges), 0),
COALESCE(SUM(c.service_charges), 0),
COALESCE(SUM(c.package_charges), 0),
COALESCE(SUM(c.consumable_charges), 0),
COALESCE(SUM(c.damage_charges), 0),
COALESCE(SUM(c.late_fee + c.keycard_fee), 0),
COALESCE(SUM(c.tax_amount), 0),
COALESCE(SUM(c.discount), 0),
COALESCE(SUM(c.advance_applied), 0),
COALESCE(SUM(c.tips), 0)
FROM checkouts c
LEFT JOIN (
	SELECT checkout_id,
		SUM(amount) FILTER (WHERE UPPER(method) = 'CASH') AS cash_amount,
		SUM(amount) FILTER (WHERE UPPER(method) <> 'CASH') AS other_amount
	FROM checkout_payments
	GROUP BY checkout_id
) cp ON cp.checkout_id = c.id
WHERE 1=1`
	args := []any{}
	if from != nil {
		args = append(args, *from)
		query += fmt.Sprintf(" AND c.checkout_date >= $%d", len(args))
	}
	if to != nil {
		args = append(args, *to)
		query += fmt.Sprintf(" AND c.checkout_date <= $%d", len(args))
	}
	return query, args
}

func (r *Repository) ReadCheckoutAggregates(ctx context.Context, from, to *time.Time) (CheckoutAggregates, error) {
	query, args := checkoutAggregatesQuery(from, to)
	var agg CheckoutAggregates
	err := r.db.QueryRow(ctx, query, args...).Scan(
		&agg.CashReceived, &agg.BankReceived, &agg.RoomRevenue, &agg.FoodRevenue,
		&agg.ServiceRevenue, &agg.PackageRevenue, &agg.ConsumableRevenue,
		&agg.DamageRecovery, &agg.FeeIncome, &agg.TaxCollected,
		&agg.DiscountsAllowed, &agg.AdvancesConsumed, &agg.TipsHeld)
	if err != nil {
		return CheckoutAggregates{}, err
	}
	return agg, nil
}
