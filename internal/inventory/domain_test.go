package inventory

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestChargeableQuantityClampsAtZero(t *testing.T) {
	entry := AuditEntry{ActualConsumed: 1, ComplimentaryLimit: 2, ChargePerUnit: 100}
	require.Equal(t, 0.0, entry.ChargeableQuantity())
	require.Equal(t, 0.0, entry.Charge())
}

func TestChargeAboveComplimentaryLimit(t *testing.T) {
	entry := AuditEntry{ActualConsumed: 5, ComplimentaryLimit: 2, ChargePerUnit: 150}
	require.Equal(t, 3.0, entry.ChargeableQuantity())
	require.Equal(t, 450.0, entry.Charge())
}

func TestParseAudit(t *testing.T) {
	raw := []byte(`{"entries":[{"item_id":3,"actual_consumed":4,"complimentary_limit":2,"charge_per_unit":50}],"damages":[{"item_id":9,"description":"broken kettle","amount":1200}]}`)
	entries, damages, err := ParseAudit(raw)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, 100.0, entries[0].Charge())
	require.Len(t, damages, 1)
	require.Equal(t, 1200.0, damages[0].Amount)
}

func TestParseAuditEmptyPayload(t *testing.T) {
	entries, damages, err := ParseAudit(nil)
	require.NoError(t, err)
	require.Empty(t, entries)
	require.Empty(t, damages)
}

func TestParseAuditRejectsMalformedJSON(t *testing.T) {
	_, _, err := ParseAudit([]byte(`{"entries":[`))
	require.ErrorIs(t, err, ErrInvalidAuditData)
}

func TestParseAuditRejectsMissingItemID(t *testing.T) {
	_, _, err := ParseAudit([]byte(`{"entries":[{"actual_consumed":4}]}`))
	require.ErrorIs(t, err, ErrInvalidAuditData)
}

func TestParseAuditRejectsNegativeValues(t *testing.T) {
	_, _, err := ParseAudit([]byte(`{"entries":[{"item_id":1,"actual_consumed":-1}]}`))
	require.ErrorIs(t, err, ErrInvalidAuditData)

	_, _, err = ParseAudit([]byte(`{"damages":[{"item_id":1,"amount":-5}]}`))
	require.ErrorIs(t, err, ErrInvalidAuditData)
}
