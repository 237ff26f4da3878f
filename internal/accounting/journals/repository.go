package journals

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/atithi-pms/atithi/internal/accounting/shared"
	"github.com/atithi-pms/atithi/internal/platform/db"
)

// Repository encapsulates DB operations for journal entries.
type Repository interface {
	List(ctx context.Context, filter Filter) ([]Entry, error)
	GetWithLines(ctx context.Context, entryID int64) (Entry, error)
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
}

// TxRepository exposes methods available within a posting transaction.
type TxRepository interface {
	// NextSequence advances the per-month entry counter.
	NextSequence(ctx context.Context, year int, month int) (int64, error)
	InsertEntry(ctx context.Context, in PostingInput, number string, total float64) (Entry, error)
	InsertLines(ctx context.Context, entryID int64, lines []LineInput) error
	GetWithLines(ctx context.Context, entryID int64) (Entry, error)
	UpdateStatus(ctx context.Context, entryID int64, status EntryStatus) error
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool}
}

const entryColumns = `id, number, date, reference_type, reference_id, description, total_amount, status, created_at, updated_at`

func (r *repository) List(ctx context.Context, filter Filter) ([]Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM journal_entries WHERE 1=1`
	args := []any{}
	if filter.ReferenceType != "" {
		args = append(args, filter.ReferenceType)
		query += fmt.Sprintf(" AND reference_type=$%d", len(args))
	}
	if filter.ReferenceID != 0 {
		args = append(args, filter.ReferenceID)
		query += fmt.Sprintf(" AND reference_id=$%d", len(args))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		query += fmt.Sprintf(" AND date >= $%d", len(args))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		query += fmt.Sprintf(" AND date <= $%d", len(args))
	}
	query += " ORDER BY number DESC"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Number, &e.Date, &e.ReferenceType, &e.ReferenceID, &e.Description, &e.TotalAmount, &e.Status, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *repository) GetWithLines(ctx context.Context, entryID int64) (Entry, error) {
	return getWithLines(ctx, r.db, entryID)
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx})
	})
}

type txRepository struct {
	tx pgx.Tx
}

func (r *txRepository) NextSequence(ctx context.Context, year int, month int) (int64, error) {
	var seq int64
	err := r.tx.QueryRow(ctx, `INSERT INTO journal_sequences (year, month, next_seq)
VALUES ($1,$2,2)
ON CONFLICT (year, month) DO UPDATE SET next_seq = journal_sequences.next_seq + 1
RETURNING next_seq - 1`, year, month).Scan(&seq)
	if err != nil {
		return 0, err
	}
	return seq, nil
}

func (r *txRepository) InsertEntry(ctx context.Context, in PostingInput, number string, total float64) (Entry, error) {
	row := r.tx.QueryRow(ctx, `INSERT INTO journal_entries (number, date, reference_type, reference_id, description, total_amount, status)
VALUES ($1,$2,$3,$4,$5,$6,'POSTED') RETURNING id, created_at, updated_at`,
		number, in.Date, in.ReferenceType, in.ReferenceID, in.Description, toNumeric(total))
	entry := Entry{
		Number:        number,
		Date:          in.Date,
		ReferenceType: in.ReferenceType,
		ReferenceID:   in.ReferenceID,
		Description:   in.Description,
		TotalAmount:   total,
		Status:        EntryStatusPosted,
	}
	if err := row.Scan(&entry.ID, &entry.CreatedAt, &entry.UpdatedAt); err != nil {
		if db.IsUniqueViolation(err) && db.ConstraintName(err) == "uq_journal_entries_reference" {
			return Entry{}, shared.ErrReferenceAlreadyPosted
		}
		return Entry{}, err
	}
	return entry, nil
}

func (r *txRepository) InsertLines(ctx context.Context, entryID int64, lines []LineInput) error {
	for _, line := range lines {
		if _, err := r.tx.Exec(ctx, `INSERT INTO journal_entry_lines (entry_id, ledger_id, side, amount)
VALUES ($1,$2,$3,$4)`, entryID, line.LedgerID, line.Side, toNumeric(line.Amount)); err != nil {
			return err
		}
	}
	return nil
}

func (r *txRepository) GetWithLines(ctx context.Context, entryID int64) (Entry, error) {
	return getWithLines(ctx, r.tx, entryID)
}

func (r *txRepository) UpdateStatus(ctx context.Context, entryID int64, status EntryStatus) error {
	cmd, err := r.tx.Exec(ctx, `UPDATE journal_entries SET status=$2, updated_at=NOW() WHERE id=$1`, entryID, status)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return shared.ErrEntryNotFound
	}
	return nil
}

type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func getWithLines(ctx context.Context, q querier, entryID int64) (Entry, error) {
	var e Entry
	err := q.QueryRow(ctx, `SELECT `+entryColumns+` FROM journal_entries WHERE id=$1`, entryID).
		Scan(&e.ID, &e.Number, &e.Date, &e.ReferenceType, &e.ReferenceID, &e.Description, &e.TotalAmount, &e.Status, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Entry{}, shared.ErrEntryNotFound
		}
		return Entry{}, err
	}
	rows, err := q.Query(ctx, `SELECT id, entry_id, ledger_id, side, amount, created_at
FROM journal_entry_lines WHERE entry_id=$1 ORDER BY id ASC`, entryID)
	if err != nil {
		return Entry{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var line Line
		if err := rows.Scan(&line.ID, &line.EntryID, &line.LedgerID, &line.Side, &line.Amount, &line.CreatedAt); err != nil {
			return Entry{}, err
		}
		e.Lines = append(e.Lines, line)
	}
	return e, rows.Err()
}

func toNumeric(v float64) any {
	return fmt.Sprintf("%.2f", v)
}
