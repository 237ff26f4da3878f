package posting

import (
	"context"
	"log/slog"
)

// ReconStore finds checkouts whose ledger posting never landed.
type ReconStore interface {
	// UnpostedCheckouts returns events for checkouts carrying a posting
	// failure note and no journal entry, oldest first.
	UnpostedCheckouts(ctx context.Context, limit int) ([]CheckoutEvent, error)
	// MarkReconciled clears the failure note once the entry exists.
	MarkReconciled(ctx context.Context, checkoutID int64) error
}

// Reconciler replays skipped checkout postings. Finalize swallows posting
// failures so guests are never blocked; this closes the resulting gap.
type Reconciler struct {
	store  ReconStore
	poster *Poster
	logger *slog.Logger
}

func NewReconciler(store ReconStore, poster *Poster, logger *slog.Logger) *Reconciler {
	return &Reconciler{store: store, poster: poster, logger: logger}
}

// Run posts every pending checkout and reports how many entries landed.
// Checkouts that still cannot post (missing ledgers, reference conflicts)
// stay pending for the next run.
func (r *Reconciler) Run(ctx context.Context, limit int) (int, error) {
	events, err := r.store.UnpostedCheckouts(ctx, limit)
	if err != nil {
		return 0, err
	}

	posted := 0
	for _, event := range events {
		entry, err := r.poster.PostCheckout(ctx, event)
		if err != nil {
			if r.logger != nil {
				r.logger.Warn("reconciliation posting failed",
					slog.Int64("checkout_id", event.CheckoutID),
					slog.String("error", err.Error()))
			}
			continue
		}
		if entry == nil {
			// Still unpostable, come back after the chart is fixed.
			continue
		}
		if err := r.store.MarkReconciled(ctx, event.CheckoutID); err != nil {
			return posted, err
		}
		posted++
	}

	if r.logger != nil && posted > 0 {
		r.logger.Info("checkout ledger reconciliation",
			slog.Int("pending", len(events)), slog.Int("posted", posted))
	}
	return posted, nil
}
