package journals

import "time"

// EntryStatus enumerates journal lifecycle values.
type EntryStatus string

const (
	EntryStatusPosted EntryStatus = "POSTED"
	EntryStatusVoid   EntryStatus = "VOID"
)

// Side marks a line as debit or credit. A line is exactly one of the two.
type Side string

const (
	SideDebit  Side = "DEBIT"
	SideCredit Side = "CREDIT"
)

// Entry captures one balanced business event in the general ledger.
type Entry struct {
	ID            int64
	Number        string
	Date          time.Time
	ReferenceType string
	ReferenceID   int64
	Description   string
	TotalAmount   float64
	Status        EntryStatus
	CreatedAt     time.Time
	UpdatedAt     time.Time
	Lines         []Line
}

// Line stores a debit or credit amount against a ledger account.
type Line struct {
	ID        int64
	EntryID   int64
	LedgerID  int64
	Side      Side
	Amount    float64
	CreatedAt time.Time
}
