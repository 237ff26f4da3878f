package reports

import (
	"math"
	"sort"

	"github.com/atithi-pms/atithi/internal/accounting/ledgers"
)

// balanceTolerance bounds the drift tolerated before a trial balance is
// reported out of balance.
const balanceTolerance = 0.01

// LedgerBalance models a ledger account with aggregated posted activity.
type LedgerBalance struct {
	LedgerID    int64
	Name        string
	Group       string
	BalanceType ledgers.BalanceType
	Opening     float64
	Debits      float64
	Credits     float64
}

// Closing computes the running balance under the account's sign convention.
func (b LedgerBalance) Closing() float64 {
	if b.BalanceType == ledgers.BalanceTypeCredit {
		return b.Opening + b.Credits - b.Debits
	}
	return b.Opening + b.Debits - b.Credits
}

// Row is one trial balance line with the closing balance placed in its
// natural column, or the opposite column when the balance flips sign.
type Row struct {
	LedgerID      int64
	Name          string
	Group         string
	DebitBalance  float64
	CreditBalance float64
}

// TrialBalance summarises all ledger balances.
type TrialBalance struct {
	Rows         []Row
	TotalDebits  float64
	TotalCredits float64
	IsBalanced   bool
}

// Build folds ledger balances into a trial balance.
func Build(balances []LedgerBalance) TrialBalance {
	tb := TrialBalance{}
	for _, bal := range balances {
		closing := bal.Closing()
		row := Row{LedgerID: bal.LedgerID, Name: bal.Name, Group: bal.Group}
		debitNatural := bal.BalanceType != ledgers.BalanceTypeCredit
		if closing < 0 {
			debitNatural = !debitNatural
			closing = -closing
		}
		if debitNatural {
			row.DebitBalance = closing
		} else {
			row.CreditBalance = closing
		}
		tb.Rows = append(tb.Rows, row)
		tb.TotalDebits += row.DebitBalance
		tb.TotalCredits += row.CreditBalance
	}
	sort.Slice(tb.Rows, func(i, j int) bool {
		if tb.Rows[i].Group != tb.Rows[j].Group {
			return tb.Rows[i].Group < tb.Rows[j].Group
		}
		return tb.Rows[i].Name < tb.Rows[j].Name
	})
	tb.IsBalanced = math.Abs(tb.TotalDebits-tb.TotalCredits) < balanceTolerance
	return tb
}
