// Package inventory tracks room consumable stock and the verification
// records produced by pre-checkout room inspection.
package inventory

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Item models a consumable SKU.
type Item struct {
	ID                 int64
	Name               string
	SellingPrice       float64
	ComplimentaryLimit float64
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// AuditEntry is one line of a completed room inspection: what the guest
// actually consumed against the complimentary allowance.
type AuditEntry struct {
	ItemID             int64   `json:"item_id"`
	ActualConsumed     float64 `json:"actual_consumed"`
	ComplimentaryLimit float64 `json:"complimentary_limit"`
	ChargePerUnit      float64 `json:"charge_per_unit"`
}

// ChargeableQuantity is the consumption above the complimentary allowance,
// never negative.
func (e AuditEntry) ChargeableQuantity() float64 {
	qty := e.ActualConsumed - e.ComplimentaryLimit
	if qty < 0 {
		return 0
	}
	return qty
}

// Charge is the billable amount for the entry.
func (e AuditEntry) Charge() float64 {
	return e.ChargeableQuantity() * e.ChargePerUnit
}

// DamageEntry records a missing or damaged asset charged at full value.
type DamageEntry struct {
	ItemID      int64   `json:"item_id"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
}

// Verification is a completed pre-checkout room inspection.
type Verification struct {
	ID          int64
	RoomID      int64
	Entries     []AuditEntry
	Damages     []DamageEntry
	CompletedAt time.Time
}

// ErrInvalidAuditData flags malformed verification payloads at the storage
// boundary, before they reach billing logic.
var ErrInvalidAuditData = errors.New("inventory: invalid audit data")

type auditPayload struct {
	Entries []AuditEntry  `json:"entries"`
	Damages []DamageEntry `json:"damages"`
}

// ParseAudit decodes and validates the raw inventory_data payload stored on
// a verification row.
func ParseAudit(raw []byte) ([]AuditEntry, []DamageEntry, error) {
	if len(raw) == 0 {
		return nil, nil, nil
	}
	var payload auditPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidAuditData, err)
	}
	for i, entry := range payload.Entries {
		if entry.ItemID == 0 {
			return nil, nil, fmt.Errorf("%w: entry %d missing item id", ErrInvalidAuditData, i)
		}
		if entry.ActualConsumed < 0 || entry.ComplimentaryLimit < 0 || entry.ChargePerUnit < 0 {
			return nil, nil, fmt.Errorf("%w: entry %d has negative values", ErrInvalidAuditData, i)
		}
	}
	for i, damage := range payload.Damages {
		if damage.Amount < 0 {
			return nil, nil, fmt.Errorf("%w: damage %d has negative amount", ErrInvalidAuditData, i)
		}
	}
	return payload.Entries, payload.Damages, nil
}
