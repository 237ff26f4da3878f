package posting

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/atithi-pms/atithi/internal/accounting/journals"
	"github.com/atithi-pms/atithi/internal/accounting/ledgers"
	"github.com/atithi-pms/atithi/internal/accounting/shared"
)

type memoryResolver struct {
	byKey  map[string]*ledgers.Ledger
	nextID int64
}

func newMemoryResolver(names map[string][]string) *memoryResolver {
	r := &memoryResolver{byKey: make(map[string]*ledgers.Ledger)}
	for module, ledgerNames := range names {
		for _, name := range ledgerNames {
			r.nextID++
			r.byKey[module+"/"+name] = &ledgers.Ledger{
				ID:     r.nextID,
				Name:   name,
				Module: module,
			}
		}
	}
	return r
}

func (r *memoryResolver) Resolve(ctx context.Context, name, module string) (*ledgers.Ledger, error) {
	if l, ok := r.byKey[module+"/"+name]; ok {
		return l, nil
	}
	return nil, shared.ErrLedgerNotFound
}

type capturingJournal struct {
	posted []journals.PostingInput
}

func (j *capturingJournal) Post(ctx context.Context, input journals.PostingInput) (journals.Entry, error) {
	if err := input.Validate(); err != nil {
		return journals.Entry{}, err
	}
	j.posted = append(j.posted, input)
	debit, _ := input.Totals()
	return journals.Entry{
		ID:            int64(len(j.posted)),
		Number:        "JE-2026-03-0001",
		ReferenceType: input.ReferenceType,
		ReferenceID:   input.ReferenceID,
		TotalAmount:   debit,
		Status:        journals.EntryStatusPosted,
	}, nil
}

func fullChart() *memoryResolver {
	return newMemoryResolver(map[string][]string{
		ModuleCheckout: {
			LedgerCash, LedgerBank, LedgerRoomRevenue, LedgerFoodRevenue,
			LedgerServiceRevenue, LedgerPackageRevenue, LedgerConsumablesRevenue,
			LedgerDamageRecovery, LedgerFeeIncome, LedgerOutputCGST,
			LedgerOutputSGST, LedgerOutputIGST, LedgerDiscountAllowed,
			LedgerGuestAdvances, LedgerTipsPayable,
		},
		ModuleAccounting: {
			LedgerCash, LedgerPurchases, LedgerInputCGST, LedgerInputSGST,
			LedgerInputIGST, LedgerAccountsPayable, LedgerInventoryStock,
			LedgerConsumptionExpense, LedgerRCMPayable, "Electricity Expense",
		},
	})
}

func checkoutEvent() CheckoutEvent {
	return CheckoutEvent{
		CheckoutID:    7,
		InvoiceNumber: "INV-000007",
		Date:          time.Date(2026, 3, 14, 11, 0, 0, 0, time.UTC),
		Payments:      []PaymentLine{{Method: "CASH", Amount: 10940}},
		RoomCharges:   12000,
		CGST:          720,
		SGST:          720,
		Discount:      500,
		AdvanceApplied: 2000,
	}
}

func sumSides(lines []journals.LineInput) (debit, credit float64) {
	for _, line := range lines {
		if line.Side == journals.SideDebit {
			debit += line.Amount
		} else {
			credit += line.Amount
		}
	}
	return debit, credit
}

func TestPostCheckoutBalances(t *testing.T) {
	journal := &capturingJournal{}
	poster := NewPoster(fullChart(), journal, nil)

	entry, err := poster.PostCheckout(context.Background(), checkoutEvent())
	require.NoError(t, err)
	require.NotNil(t, entry)
	require.Len(t, journal.posted, 1)

	debit, credit := sumSides(journal.posted[0].Lines)
	require.InDelta(t, debit, credit, journals.BalanceTolerance)
	// cash + discount + advance on the debit side
	require.InDelta(t, 13440.0, debit, 0.001)
}

func TestPostCheckoutSkipsZeroCategories(t *testing.T) {
	journal := &capturingJournal{}
	poster := NewPoster(fullChart(), journal, nil)

	_, err := poster.PostCheckout(context.Background(), checkoutEvent())
	require.NoError(t, err)

	for _, line := range journal.posted[0].Lines {
		require.Greater(t, line.Amount, 0.0)
	}
	// room revenue, cgst, sgst, discount, advance, cash
	require.Len(t, journal.posted[0].Lines, 6)
}

func TestPostCheckoutMissingLedgerCreatesNoEntry(t *testing.T) {
	resolver := fullChart()
	delete(resolver.byKey, ModuleCheckout+"/"+LedgerRoomRevenue)
	journal := &capturingJournal{}
	poster := NewPoster(resolver, journal, nil)

	entry, err := poster.PostCheckout(context.Background(), checkoutEvent())
	require.NoError(t, err)
	require.Nil(t, entry)
	require.Empty(t, journal.posted)
}

func TestPostCheckoutZeroEventCreatesNoEntry(t *testing.T) {
	journal := &capturingJournal{}
	poster := NewPoster(fullChart(), journal, nil)

	entry, err := poster.PostCheckout(context.Background(), CheckoutEvent{CheckoutID: 9})
	require.NoError(t, err)
	require.Nil(t, entry)
	require.Empty(t, journal.posted)
}

func TestPostPurchaseBalances(t *testing.T) {
	journal := &capturingJournal{}
	poster := NewPoster(fullChart(), journal, nil)

	entry, err := poster.PostPurchase(context.Background(), PurchaseEvent{
		PurchaseID:   3,
		Date:         time.Now(),
		TaxableValue: 10000,
		CGST:         900,
		SGST:         900,
	})
	require.NoError(t, err)
	require.NotNil(t, entry)

	debit, credit := sumSides(journal.posted[0].Lines)
	require.InDelta(t, 11800.0, debit, 0.001)
	require.InDelta(t, debit, credit, journals.BalanceTolerance)
}

func TestPostPurchaseMissingLedgerFailsLoudly(t *testing.T) {
	resolver := fullChart()
	delete(resolver.byKey, ModuleAccounting+"/"+LedgerPurchases)
	poster := NewPoster(resolver, &capturingJournal{}, nil)

	_, err := poster.PostPurchase(context.Background(), PurchaseEvent{
		PurchaseID:   3,
		Date:         time.Now(),
		TaxableValue: 10000,
	})
	require.ErrorIs(t, err, shared.ErrMissingLedgerConfiguration)
}

func TestPostRCM(t *testing.T) {
	journal := &capturingJournal{}
	poster := NewPoster(fullChart(), journal, nil)

	_, err := poster.PostRCM(context.Background(), RCMEvent{
		ReferenceID: 11,
		Date:        time.Now(),
		CGST:        450,
		SGST:        450,
	})
	require.NoError(t, err)

	debit, credit := sumSides(journal.posted[0].Lines)
	require.InDelta(t, 900.0, debit, 0.001)
	require.InDelta(t, debit, credit, journals.BalanceTolerance)
}

func TestPostExpenseUsesConfiguredLedger(t *testing.T) {
	journal := &capturingJournal{}
	poster := NewPoster(fullChart(), journal, nil)

	_, err := poster.PostExpense(context.Background(), ExpenseEvent{
		ExpenseID:     5,
		Date:          time.Now(),
		LedgerName:    "Electricity Expense",
		Amount:        3200,
		PaymentMethod: "CASH",
	})
	require.NoError(t, err)

	debit, credit := sumSides(journal.posted[0].Lines)
	require.InDelta(t, debit, credit, journals.BalanceTolerance)
}

func TestPostExpenseUnknownLedger(t *testing.T) {
	poster := NewPoster(fullChart(), &capturingJournal{}, nil)

	_, err := poster.PostExpense(context.Background(), ExpenseEvent{
		ExpenseID:  5,
		Date:       time.Now(),
		LedgerName: "Nonexistent Expense",
		Amount:     100,
	})
	require.ErrorIs(t, err, shared.ErrMissingLedgerConfiguration)
}

func TestPostFoodOrder(t *testing.T) {
	journal := &capturingJournal{}
	poster := NewPoster(fullChart(), journal, nil)

	_, err := poster.PostFoodOrder(context.Background(), RevenueLineEvent{
		ReferenceID:   21,
		Date:          time.Now(),
		Amount:        800,
		CGST:          20,
		SGST:          20,
		PaymentMethod: "UPI",
	})
	require.NoError(t, err)

	debit, credit := sumSides(journal.posted[0].Lines)
	require.InDelta(t, 840.0, debit, 0.001)
	require.InDelta(t, debit, credit, journals.BalanceTolerance)
}
