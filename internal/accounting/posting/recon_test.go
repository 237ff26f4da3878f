package posting

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type memoryReconStore struct {
	pending    []CheckoutEvent
	reconciled []int64
}

func (m *memoryReconStore) UnpostedCheckouts(ctx context.Context, limit int) ([]CheckoutEvent, error) {
	if len(m.pending) > limit {
		return m.pending[:limit], nil
	}
	return m.pending, nil
}

func (m *memoryReconStore) MarkReconciled(ctx context.Context, checkoutID int64) error {
	m.reconciled = append(m.reconciled, checkoutID)
	return nil
}

func reconEvent(id int64) CheckoutEvent {
	return CheckoutEvent{
		CheckoutID:    id,
		InvoiceNumber: "INV-20260314-AAAA",
		Date:          time.Date(2026, 3, 14, 11, 0, 0, 0, time.UTC),
		Payments:      []PaymentLine{{Method: "cash", Amount: 1120}},
		RoomCharges:   1000,
		CGST:          60,
		SGST:          60,
		GrandTotal:    1120,
	}
}

func TestReconcilerPostsPendingCheckouts(t *testing.T) {
	store := &memoryReconStore{pending: []CheckoutEvent{reconEvent(1), reconEvent(2)}}
	journal := &capturingJournal{}
	poster := NewPoster(fullChart(), journal, nil)

	posted, err := NewReconciler(store, poster, nil).Run(context.Background(), 10)
	require.NoError(t, err)
	require.Equal(t, 2, posted)
	require.Len(t, journal.posted, 2)
	require.Equal(t, []int64{1, 2}, store.reconciled)
}

func TestReconcilerLeavesUnresolvableCheckoutsPending(t *testing.T) {
	store := &memoryReconStore{pending: []CheckoutEvent{reconEvent(1)}}
	journal := &capturingJournal{}
	// empty chart: the checkout builder skips the posting entirely
	poster := NewPoster(newMemoryResolver(nil), journal, nil)

	posted, err := NewReconciler(store, poster, nil).Run(context.Background(), 10)
	require.NoError(t, err)
	require.Zero(t, posted)
	require.Empty(t, store.reconciled)
	require.Empty(t, journal.posted)
}

func TestReconcilerHonorsLimit(t *testing.T) {
	store := &memoryReconStore{pending: []CheckoutEvent{reconEvent(1), reconEvent(2), reconEvent(3)}}
	journal := &capturingJournal{}
	poster := NewPoster(fullChart(), journal, nil)

	posted, err := NewReconciler(store, poster, nil).Run(context.Background(), 2)
	require.NoError(t, err)
	require.Equal(t, 2, posted)
}
