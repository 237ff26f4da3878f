package reports

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"
)

// BalanceReader aggregates posted journal lines per ledger.
type BalanceReader interface {
	ListLedgerBalances(ctx context.Context, from, to *time.Time) ([]LedgerBalance, error)
}

// AggregateReader sums checkout tables directly for the automatic mode.
type AggregateReader interface {
	ReadCheckoutAggregates(ctx context.Context, from, to *time.Time) (CheckoutAggregates, error)
}

// Service builds trial balances, caching results and collapsing concurrent
// builds of the same report.
type Service struct {
	balances   BalanceReader
	aggregates AggregateReader
	cache      *Cache
	group      singleflight.Group
	logger     *slog.Logger
}

func NewService(balances BalanceReader, aggregates AggregateReader, cache *Cache, logger *slog.Logger) *Service {
	return &Service{balances: balances, aggregates: aggregates, cache: cache, logger: logger}
}

// TrialBalance builds the journal-derived trial balance for the date range.
func (s *Service) TrialBalance(ctx context.Context, from, to *time.Time) (TrialBalance, error) {
	return s.build(ctx, cacheSuffix("journal", from, to), func(ctx context.Context) (TrialBalance, error) {
		balances, err := s.balances.ListLedgerBalances(ctx, from, to)
		if err != nil {
			return TrialBalance{}, err
		}
		return Build(balances), nil
	})
}

// AutomaticTrialBalance synthesizes the report from business aggregates.
func (s *Service) AutomaticTrialBalance(ctx context.Context, from, to *time.Time) (TrialBalance, error) {
	return s.build(ctx, cacheSuffix("auto", from, to), func(ctx context.Context) (TrialBalance, error) {
		agg, err := s.aggregates.ReadCheckoutAggregates(ctx, from, to)
		if err != nil {
			return TrialBalance{}, err
		}
		return BuildAutomatic(agg), nil
	})
}

// Invalidate drops cached reports after new postings.
func (s *Service) Invalidate(ctx context.Context) {
	if err := s.cache.Bump(ctx); err != nil && s.logger != nil {
		s.logger.Warn("trial balance cache bump", slog.Any("error", err))
	}
}

func (s *Service) build(ctx context.Context, suffix string, fn func(context.Context) (TrialBalance, error)) (TrialBalance, error) {
	key, err := s.cache.BuildKey(ctx, suffix)
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("trial balance cache key", slog.Any("error", err))
		}
		key = suffix
	}
	if tb, ok := s.cache.Get(ctx, key); ok {
		return tb, nil
	}
	result, err, _ := s.group.Do(key, func() (any, error) {
		tb, err := fn(ctx)
		if err != nil {
			return nil, err
		}
		if err := s.cache.Set(ctx, key, tb); err != nil && s.logger != nil {
			s.logger.Warn("trial balance cache set", slog.Any("error", err))
		}
		return tb, nil
	})
	if err != nil {
		return TrialBalance{}, err
	}
	return result.(TrialBalance), nil
}

func cacheSuffix(mode string, from, to *time.Time) string {
	f, t := "", ""
	if from != nil {
		f = from.Format("2006-01-02")
	}
	if to != nil {
		t = to.Format("2006-01-02")
	}
	return fmt.Sprintf("%s:%s:%s", mode, f, t)
}
