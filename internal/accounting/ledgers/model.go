package ledgers

import "time"

// BalanceType determines the sign convention of a ledger account.
type BalanceType string

const (
	BalanceTypeDebit  BalanceType = "DEBIT"
	BalanceTypeCredit BalanceType = "CREDIT"
)

// Ledger models one account in the chart of accounts. Posting builders
// resolve ledgers by (Name, Module).
type Ledger struct {
	ID             int64
	Name           string
	Module         string
	GroupID        int64
	BalanceType    BalanceType
	OpeningBalance float64
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Group buckets ledgers for reporting.
type Group struct {
	ID     int64
	Name   string
	Nature string
}
