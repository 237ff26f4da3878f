package journals

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/atithi-pms/atithi/internal/accounting/shared"
)

// BalanceTolerance is the maximum debit/credit drift tolerated when
// validating an entry, in currency units.
const BalanceTolerance = 0.01

// LineInput describes a journal line for a posting request.
type LineInput struct {
	LedgerID int64
	Side     Side
	Amount   float64
}

// PostingInput groups fields required to create a journal entry.
type PostingInput struct {
	Date          time.Time
	ReferenceType string
	ReferenceID   int64
	Description   string
	Lines         []LineInput
}

// Validate ensures posting input meets minimum criteria, most importantly
// that debits equal credits within BalanceTolerance.
func (in PostingInput) Validate() error {
	if in.ReferenceType == "" {
		return errors.New("accounting: reference type required")
	}
	if in.ReferenceID == 0 {
		return errors.New("accounting: reference id required")
	}
	if len(in.Lines) < 2 {
		return shared.ErrTooFewLines
	}
	var debit, credit float64
	for idx, line := range in.Lines {
		if line.LedgerID == 0 {
			return fmt.Errorf("accounting: line %d missing ledger", idx)
		}
		if line.Amount <= 0 {
			return fmt.Errorf("accounting: line %d requires a positive amount", idx)
		}
		switch line.Side {
		case SideDebit:
			debit += line.Amount
		case SideCredit:
			credit += line.Amount
		default:
			return fmt.Errorf("accounting: line %d has unknown side %q", idx, line.Side)
		}
	}
	if math.Abs(debit-credit) > BalanceTolerance {
		return shared.ErrUnbalanced
	}
	return nil
}

// Totals sums debit and credit sides of the posting.
func (in PostingInput) Totals() (debit, credit float64) {
	for _, line := range in.Lines {
		if line.Side == SideDebit {
			debit += line.Amount
		} else {
			credit += line.Amount
		}
	}
	return debit, credit
}

// VoidInput wraps parameters for voiding an entry.
type VoidInput struct {
	EntryID int64
	Reason  string
}

// ReverseInput wraps parameters for posting a mirror-image entry.
type ReverseInput struct {
	EntryID     int64
	Description string
	Date        *time.Time
}

// Filter narrows entry listings.
type Filter struct {
	ReferenceType string
	ReferenceID   int64
	From          *time.Time
	To            *time.Time
}
