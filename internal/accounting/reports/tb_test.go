package reports

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/atithi-pms/atithi/internal/accounting/ledgers"
)

func TestClosingFollowsBalanceType(t *testing.T) {
	debitAcct := LedgerBalance{BalanceType: ledgers.BalanceTypeDebit, Opening: 100, Debits: 50, Credits: 30}
	require.Equal(t, 120.0, debitAcct.Closing())

	creditAcct := LedgerBalance{BalanceType: ledgers.BalanceTypeCredit, Opening: 100, Debits: 30, Credits: 50}
	require.Equal(t, 120.0, creditAcct.Closing())
}

func TestBuildBalancedBooks(t *testing.T) {
	tb := Build([]LedgerBalance{
		{LedgerID: 1, Name: "Cash", Group: "Assets", BalanceType: ledgers.BalanceTypeDebit, Debits: 13440},
		{LedgerID: 2, Name: "Room Revenue", Group: "Income", BalanceType: ledgers.BalanceTypeCredit, Credits: 12000},
		{LedgerID: 3, Name: "Output CGST", Group: "Liabilities", BalanceType: ledgers.BalanceTypeCredit, Credits: 720},
		{LedgerID: 4, Name: "Output SGST", Group: "Liabilities", BalanceType: ledgers.BalanceTypeCredit, Credits: 720},
	})
	require.True(t, tb.IsBalanced)
	require.Equal(t, 13440.0, tb.TotalDebits)
	require.Equal(t, 13440.0, tb.TotalCredits)
	require.Len(t, tb.Rows, 4)
}

func TestBuildDetectsImbalance(t *testing.T) {
	tb := Build([]LedgerBalance{
		{Name: "Cash", BalanceType: ledgers.BalanceTypeDebit, Debits: 100},
		{Name: "Revenue", BalanceType: ledgers.BalanceTypeCredit, Credits: 99.50},
	})
	require.False(t, tb.IsBalanced)
}

func TestBuildFlipsNegativeBalances(t *testing.T) {
	tb := Build([]LedgerBalance{
		{Name: "Bank", BalanceType: ledgers.BalanceTypeDebit, Credits: 500},
	})
	require.Equal(t, 0.0, tb.Rows[0].DebitBalance)
	require.Equal(t, 500.0, tb.Rows[0].CreditBalance)
}

func TestBuildAutomaticBalancesCleanBooks(t *testing.T) {
	tb := BuildAutomatic(CheckoutAggregates{
		CashReceived: 13440,
		RoomRevenue:  12000,
		TaxCollected: 1440,
	})
	require.True(t, tb.IsBalanced)
	require.Equal(t, 13440.0, tb.TotalDebits)
}

func TestBuildAutomaticSkipsEmptyRows(t *testing.T) {
	tb := BuildAutomatic(CheckoutAggregates{CashReceived: 100, RoomRevenue: 100})
	require.Len(t, tb.Rows, 2)
}

type stubBalanceReader struct {
	calls    int
	balances []LedgerBalance
}

func (s *stubBalanceReader) ListLedgerBalances(ctx context.Context, from, to *time.Time) ([]LedgerBalance, error) {
	s.calls++
	return s.balances, nil
}

func TestServiceCachesTrialBalance(t *testing.T) {
	mini := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mini.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	reader := &stubBalanceReader{balances: []LedgerBalance{
		{LedgerID: 1, Name: "Cash", Group: "Assets", BalanceType: ledgers.BalanceTypeDebit, Debits: 100},
		{LedgerID: 2, Name: "Revenue", Group: "Income", BalanceType: ledgers.BalanceTypeCredit, Credits: 100},
	}}
	svc := NewService(reader, nil, NewCache(client, time.Minute), nil)

	first, err := svc.TrialBalance(context.Background(), nil, nil)
	require.NoError(t, err)
	require.True(t, first.IsBalanced)

	second, err := svc.TrialBalance(context.Background(), nil, nil)
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, 1, reader.calls)
}

func TestServiceInvalidateBustsCache(t *testing.T) {
	mini := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mini.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	reader := &stubBalanceReader{}
	svc := NewService(reader, nil, NewCache(client, time.Minute), nil)

	_, err := svc.TrialBalance(context.Background(), nil, nil)
	require.NoError(t, err)
	svc.Invalidate(context.Background())
	_, err = svc.TrialBalance(context.Background(), nil, nil)
	require.NoError(t, err)
	require.Equal(t, 2, reader.calls)
}

func TestServiceWorksWithoutRedis(t *testing.T) {
	reader := &stubBalanceReader{}
	svc := NewService(reader, nil, NewCache(nil, time.Minute), nil)

	_, err := svc.TrialBalance(context.Background(), nil, nil)
	require.NoError(t, err)
	_, err = svc.TrialBalance(context.Background(), nil, nil)
	require.NoError(t, err)
	require.Equal(t, 2, reader.calls)
}
