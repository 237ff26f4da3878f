package ledgers

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/atithi-pms/atithi/internal/accounting/shared"
)

// Repository exposes chart-of-accounts lookups.
type Repository interface {
	List(ctx context.Context) ([]Ledger, error)
	// ByNameModule resolves an active ledger by its configured name within a
	// module namespace. Returns shared.ErrLedgerNotFound on a miss.
	ByNameModule(ctx context.Context, name, module string) (*Ledger, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func (r *repository) List(ctx context.Context) ([]Ledger, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, module, group_id, balance_type, opening_balance, is_active, created_at, updated_at
FROM ledgers ORDER BY module, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Ledger
	for rows.Next() {
		var l Ledger
		if err := rows.Scan(&l.ID, &l.Name, &l.Module, &l.GroupID, &l.BalanceType, &l.OpeningBalance, &l.IsActive, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *repository) ByNameModule(ctx context.Context, name, module string) (*Ledger, error) {
	var l Ledger
	err := r.db.QueryRow(ctx, `SELECT id, name, module, group_id, balance_type, opening_balance, is_active, created_at, updated_at
FROM ledgers WHERE name=$1 AND module=$2 AND is_active`, name, module).
		Scan(&l.ID, &l.Name, &l.Module, &l.GroupID, &l.BalanceType, &l.OpeningBalance, &l.IsActive, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrLedgerNotFound
		}
		return nil, err
	}
	return &l, nil
}
