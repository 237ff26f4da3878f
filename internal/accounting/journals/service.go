package journals

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/atithi-pms/atithi/internal/accounting/shared"
)

type Service struct {
	repo   Repository
	logger *slog.Logger
	now    func() time.Time
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger, now: time.Now}
}

func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

func (s *Service) List(ctx context.Context, filter Filter) ([]Entry, error) {
	return s.repo.List(ctx, filter)
}

func (s *Service) Get(ctx context.Context, entryID int64) (Entry, error) {
	return s.repo.GetWithLines(ctx, entryID)
}

// Post validates and persists a balanced journal entry. The entry number is
// assigned per calendar month as JE-{year}-{month}-{seq}.
func (s *Service) Post(ctx context.Context, input PostingInput) (Entry, error) {
	if input.Date.IsZero() {
		input.Date = s.now()
	}
	if err := input.Validate(); err != nil {
		return Entry{}, err
	}
	debit, _ := input.Totals()

	var entry Entry
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		year, month := input.Date.Year(), int(input.Date.Month())
		seq, err := tx.NextSequence(ctx, year, month)
		if err != nil {
			return err
		}
		number := formatEntryNumber(year, month, seq)
		inserted, err := tx.InsertEntry(ctx, input, number, debit)
		if err != nil {
			return err
		}
		if err := tx.InsertLines(ctx, inserted.ID, input.Lines); err != nil {
			return err
		}
		inserted.Lines = toLines(inserted.ID, input.Lines)
		entry = inserted
		return nil
	})
	if err != nil {
		return Entry{}, err
	}
	if s.logger != nil {
		s.logger.Info("journal posted",
			slog.String("number", entry.Number),
			slog.String("reference_type", entry.ReferenceType),
			slog.Int64("reference_id", entry.ReferenceID),
			slog.Float64("total", entry.TotalAmount))
	}
	return entry, nil
}

// Void marks a posted entry void without touching its lines.
func (s *Service) Void(ctx context.Context, input VoidInput) (Entry, error) {
	if input.EntryID == 0 {
		return Entry{}, errors.New("accounting: entry id required")
	}
	var entry Entry
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		current, err := tx.GetWithLines(ctx, input.EntryID)
		if err != nil {
			return err
		}
		if current.Status != EntryStatusPosted {
			return shared.ErrInvalidStatus
		}
		if err := tx.UpdateStatus(ctx, current.ID, EntryStatusVoid); err != nil {
			return err
		}
		current.Status = EntryStatusVoid
		entry = current
		return nil
	})
	if err != nil {
		return Entry{}, err
	}
	if s.logger != nil {
		s.logger.Info("journal voided", slog.String("number", entry.Number), slog.String("reason", input.Reason))
	}
	return entry, nil
}

// Reverse posts a mirror-image entry for an existing posted entry.
func (s *Service) Reverse(ctx context.Context, input ReverseInput) (Entry, error) {
	if input.EntryID == 0 {
		return Entry{}, errors.New("accounting: entry id required")
	}
	original, err := s.repo.GetWithLines(ctx, input.EntryID)
	if err != nil {
		return Entry{}, err
	}
	if original.Status != EntryStatusPosted {
		return Entry{}, shared.ErrInvalidStatus
	}
	date := s.now()
	if input.Date != nil {
		date = *input.Date
	}
	description := input.Description
	if description == "" {
		description = fmt.Sprintf("Reversal of %s", original.Number)
	}
	posting := PostingInput{
		Date:          date,
		ReferenceType: original.ReferenceType + ":REVERSAL",
		ReferenceID:   original.ID,
		Description:   description,
		Lines:         reverseLines(original.Lines),
	}
	return s.Post(ctx, posting)
}

func reverseLines(lines []Line) []LineInput {
	out := make([]LineInput, 0, len(lines))
	for _, line := range lines {
		side := SideDebit
		if line.Side == SideDebit {
			side = SideCredit
		}
		out = append(out, LineInput{LedgerID: line.LedgerID, Side: side, Amount: line.Amount})
	}
	return out
}

func toLines(entryID int64, lines []LineInput) []Line {
	out := make([]Line, 0, len(lines))
	for _, line := range lines {
		out = append(out, Line{
			EntryID:  entryID,
			LedgerID: line.LedgerID,
			Side:     line.Side,
			Amount:   line.Amount,
		})
	}
	return out
}

func formatEntryNumber(year, month int, seq int64) string {
	return fmt.Sprintf("JE-%d-%02d-%04d", year, month, seq)
}
