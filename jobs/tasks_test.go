package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"
)

type memoryHousekeeping struct {
	cleanings []int64
	refills   []int64
	err       error
}

func (m *memoryHousekeeping) CreateCleaningRequest(ctx context.Context, roomID int64) error {
	if m.err != nil {
		return m.err
	}
	m.cleanings = append(m.cleanings, roomID)
	return nil
}

func (m *memoryHousekeeping) CreateRefillRequest(ctx context.Context, roomID int64) error {
	if m.err != nil {
		return m.err
	}
	m.refills = append(m.refills, roomID)
	return nil
}

func TestCleaningHandlerCreatesRequest(t *testing.T) {
	port := &memoryHousekeeping{}
	handler := NewCleaningHandler(port, nil)

	task, err := NewCleaningRequestTask(42)
	require.NoError(t, err)

	require.NoError(t, handler(context.Background(), task))
	require.Equal(t, []int64{42}, port.cleanings)
}

func TestRefillHandlerCreatesRequest(t *testing.T) {
	port := &memoryHousekeeping{}
	handler := NewRefillHandler(port, nil)

	task, err := NewRefillRequestTask(7)
	require.NoError(t, err)

	require.NoError(t, handler(context.Background(), task))
	require.Equal(t, []int64{7}, port.refills)
}

func TestHandlersSkipRetryOnBadPayload(t *testing.T) {
	port := &memoryHousekeeping{}
	bad := asynq.NewTask(TaskCleaningRequest, []byte("not json"))

	err := NewCleaningHandler(port, nil)(context.Background(), bad)
	require.ErrorIs(t, err, asynq.SkipRetry)
	require.Empty(t, port.cleanings)

	err = NewRefillHandler(port, nil)(context.Background(), asynq.NewTask(TaskRefillRequest, []byte("{")))
	require.ErrorIs(t, err, asynq.SkipRetry)
	require.Empty(t, port.refills)
}

func TestHandlersPropagateStoreErrors(t *testing.T) {
	storeErr := errors.New("insert failed")
	port := &memoryHousekeeping{err: storeErr}

	task, err := NewCleaningRequestTask(3)
	require.NoError(t, err)

	err = NewCleaningHandler(port, nil)(context.Background(), task)
	require.ErrorIs(t, err, storeErr)
}

type stubReconciler struct {
	posted int
	limit  int
	err    error
}

func (s *stubReconciler) Run(ctx context.Context, limit int) (int, error) {
	s.limit = limit
	return s.posted, s.err
}

func TestLedgerReconHandlerRunsReconciler(t *testing.T) {
	rec := &stubReconciler{posted: 4}
	handler := NewLedgerReconHandler(rec, nil, nil)

	task, err := NewLedgerReconTask(time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC))
	require.NoError(t, err)

	require.NoError(t, handler(context.Background(), task))
	require.Equal(t, reconBatchLimit, rec.limit)
}

func TestLedgerReconHandlerPropagatesErrors(t *testing.T) {
	runErr := errors.New("replay failed")
	rec := &stubReconciler{err: runErr}
	handler := NewLedgerReconHandler(rec, nil, nil)

	task, err := NewLedgerReconTask(time.Now())
	require.NoError(t, err)

	err = handler(context.Background(), task)
	require.ErrorIs(t, err, runErr)
}
