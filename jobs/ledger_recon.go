package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	jobmetrics "github.com/atithi-pms/atithi/internal/jobs"
)

const (
	// TaskLedgerReconciliation replays checkout postings that were skipped
	// at finalize time.
	TaskLedgerReconciliation = "ledger:reconcile"

	// reconBatchLimit caps how many checkouts one run replays.
	reconBatchLimit = 100
)

// LedgerReconPayload carries scheduling metadata.
type LedgerReconPayload struct {
	ScheduledFor time.Time `json:"scheduled_for"`
}

// NewLedgerReconTask constructs an Asynq task for ledger reconciliation.
func NewLedgerReconTask(at time.Time) (*asynq.Task, error) {
	data, err := json.Marshal(LedgerReconPayload{ScheduledFor: at})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLedgerReconciliation, data, asynq.Queue(QueueLedger)), nil
}

// ReconcilerPort replays pending checkout postings.
type ReconcilerPort interface {
	Run(ctx context.Context, limit int) (int, error)
}

// NewLedgerReconHandler processes TaskLedgerReconciliation tasks.
func NewLedgerReconHandler(reconciler ReconcilerPort, logger *slog.Logger, metrics *jobmetrics.Metrics) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload LedgerReconPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		tracker := metrics.Track("ledger_recon")
		posted, err := reconciler.Run(ctx, reconBatchLimit)
		if err != nil {
			return tracker.End(err)
		}
		metrics.AddReconciled(posted)
		if logger != nil {
			logger.Info("ledger reconciliation run",
				slog.Int("posted", posted),
				slog.Time("scheduled_for", payload.ScheduledFor))
		}
		return tracker.End(nil)
	}
}
