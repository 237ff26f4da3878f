package shared

import "errors"

var (
	// ErrUnbalanced indicates debit != credit.
	ErrUnbalanced = errors.New("accounting: journal lines must balance")
	// ErrTooFewLines indicates less than two lines.
	ErrTooFewLines = errors.New("accounting: journal requires at least two lines")
	// ErrEntryNotFound indicates missing entry.
	ErrEntryNotFound = errors.New("accounting: journal entry not found")
	// ErrLedgerNotFound indicates a chart-of-accounts lookup miss.
	ErrLedgerNotFound = errors.New("accounting: ledger not found")
	// ErrMissingLedgerConfiguration indicates a posting builder could not
	// resolve a required ledger account.
	ErrMissingLedgerConfiguration = errors.New("accounting: ledger configuration missing")
	// ErrInvalidStatus indicates action can't proceed.
	ErrInvalidStatus = errors.New("accounting: invalid status transition")
	// ErrReferenceAlreadyPosted indicates the business record already owns a
	// journal entry.
	ErrReferenceAlreadyPosted = errors.New("accounting: reference already posted")
)
