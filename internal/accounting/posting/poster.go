package posting

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/atithi-pms/atithi/internal/accounting/journals"
	"github.com/atithi-pms/atithi/internal/accounting/ledgers"
	"github.com/atithi-pms/atithi/internal/accounting/shared"
)

// LedgerResolver looks up chart-of-accounts entries by (name, module).
type LedgerResolver interface {
	Resolve(ctx context.Context, name, module string) (*ledgers.Ledger, error)
}

// JournalPort persists validated postings.
type JournalPort interface {
	Post(ctx context.Context, input journals.PostingInput) (journals.Entry, error)
}

// Poster builds and persists journal entries for business events.
//
// Policy on missing ledgers: checkout events degrade gracefully and create no
// entry, so bookkeeping gaps never block a guest checkout. Every other event
// type fails with shared.ErrMissingLedgerConfiguration.
type Poster struct {
	resolver LedgerResolver
	journal  JournalPort
	logger   *slog.Logger
}

func NewPoster(resolver LedgerResolver, journal JournalPort, logger *slog.Logger) *Poster {
	return &Poster{resolver: resolver, journal: journal, logger: logger}
}

// PostCheckout builds the checkout entry: debit payment ledgers for the
// grand total, credit each non-zero revenue category and output tax, debit
// discount allowed and consumed guest advances. Returns (nil, nil) when any
// required ledger is unresolvable.
func (p *Poster) PostCheckout(ctx context.Context, event CheckoutEvent) (*journals.Entry, error) {
	b := &lineBuilder{ctx: ctx, resolver: p.resolver, module: ModuleCheckout}

	for _, payment := range event.Payments {
		if payment.Amount <= 0 {
			continue
		}
		b.debit(paymentLedgerName(payment.Method), payment.Amount)
	}
	b.credit(LedgerRoomRevenue, event.RoomCharges)
	b.credit(LedgerFoodRevenue, event.FoodCharges)
	b.credit(LedgerServiceRevenue, event.ServiceCharges)
	b.credit(LedgerPackageRevenue, event.PackageCharges)
	b.credit(LedgerConsumablesRevenue, event.ConsumableCharges)
	b.credit(LedgerDamageRecovery, event.DamageCharges)
	b.credit(LedgerFeeIncome, event.Fees)
	b.credit(LedgerOutputCGST, event.CGST)
	b.credit(LedgerOutputSGST, event.SGST)
	b.credit(LedgerOutputIGST, event.IGST)
	b.credit(LedgerTipsPayable, event.Tips)
	b.debit(LedgerDiscountAllowed, event.Discount)
	b.debit(LedgerGuestAdvances, event.AdvanceApplied)

	if b.err != nil {
		return nil, b.err
	}
	if len(b.missing) > 0 {
		if p.logger != nil {
			p.logger.Warn("checkout posting skipped, ledgers unresolved",
				slog.Int64("checkout_id", event.CheckoutID),
				slog.String("missing", strings.Join(b.missing, ", ")))
		}
		return nil, nil
	}
	if len(b.lines) < 2 {
		// A zero-value checkout has nothing to record.
		return nil, nil
	}

	entry, err := p.journal.Post(ctx, journals.PostingInput{
		Date:          event.Date,
		ReferenceType: ReferenceCheckout,
		ReferenceID:   event.CheckoutID,
		Description:   fmt.Sprintf("Checkout %s", event.InvoiceNumber),
		Lines:         b.lines,
	})
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// PostPurchase debits purchases and input taxes, credits the payable or cash.
func (p *Poster) PostPurchase(ctx context.Context, event PurchaseEvent) (*journals.Entry, error) {
	b := &lineBuilder{ctx: ctx, resolver: p.resolver, module: ModuleAccounting, strict: true}

	b.debit(LedgerPurchases, event.TaxableValue)
	b.debit(LedgerInputCGST, event.CGST)
	b.debit(LedgerInputSGST, event.SGST)
	b.debit(LedgerInputIGST, event.IGST)
	total := event.TaxableValue + event.CGST + event.SGST + event.IGST
	if event.PaidInCash {
		b.credit(LedgerCash, total)
	} else {
		b.credit(LedgerAccountsPayable, total)
	}
	return p.finishStrict(ctx, b, ReferencePurchase, event.PurchaseID, event.Description, event.Date)
}

// PostConsumption expenses stock consumed by guests or operations.
func (p *Poster) PostConsumption(ctx context.Context, event ConsumptionEvent) (*journals.Entry, error) {
	b := &lineBuilder{ctx: ctx, resolver: p.resolver, module: ModuleAccounting, strict: true}

	b.debit(LedgerConsumptionExpense, event.Amount)
	b.credit(LedgerInventoryStock, event.Amount)
	return p.finishStrict(ctx, b, ReferenceConsumption, event.ReferenceID, event.Description, event.Date)
}

// PostExpense records an operating expense against its configured ledger.
func (p *Poster) PostExpense(ctx context.Context, event ExpenseEvent) (*journals.Entry, error) {
	if event.LedgerName == "" {
		return nil, fmt.Errorf("%w: expense ledger name empty", shared.ErrMissingLedgerConfiguration)
	}
	b := &lineBuilder{ctx: ctx, resolver: p.resolver, module: ModuleAccounting, strict: true}

	b.debit(event.LedgerName, event.Amount)
	b.credit(paymentLedgerName(event.PaymentMethod), event.Amount)
	return p.finishStrict(ctx, b, ReferenceExpense, event.ExpenseID, event.Description, event.Date)
}

// PostRCM self-assesses reverse-charge tax: input credit against a payable.
func (p *Poster) PostRCM(ctx context.Context, event RCMEvent) (*journals.Entry, error) {
	b := &lineBuilder{ctx: ctx, resolver: p.resolver, module: ModuleAccounting, strict: true}

	b.debit(LedgerInputCGST, event.CGST)
	b.debit(LedgerInputSGST, event.SGST)
	b.debit(LedgerInputIGST, event.IGST)
	b.credit(LedgerRCMPayable, event.CGST+event.SGST+event.IGST)
	return p.finishStrict(ctx, b, ReferenceRCM, event.ReferenceID, event.Description, event.Date)
}

// PostFoodOrder records a food order settled outside checkout.
func (p *Poster) PostFoodOrder(ctx context.Context, event RevenueLineEvent) (*journals.Entry, error) {
	return p.postRevenueLine(ctx, event, ReferenceFoodOrder, LedgerFoodRevenue)
}

// PostService records a standalone paid service.
func (p *Poster) PostService(ctx context.Context, event RevenueLineEvent) (*journals.Entry, error) {
	return p.postRevenueLine(ctx, event, ReferenceService, LedgerServiceRevenue)
}

func (p *Poster) postRevenueLine(ctx context.Context, event RevenueLineEvent, referenceType, revenueLedger string) (*journals.Entry, error) {
	b := &lineBuilder{ctx: ctx, resolver: p.resolver, module: ModuleCheckout, strict: true}

	b.debit(paymentLedgerName(event.PaymentMethod), event.Amount+event.CGST+event.SGST+event.IGST)
	b.credit(revenueLedger, event.Amount)
	b.credit(LedgerOutputCGST, event.CGST)
	b.credit(LedgerOutputSGST, event.SGST)
	b.credit(LedgerOutputIGST, event.IGST)
	return p.finishStrict(ctx, b, referenceType, event.ReferenceID, event.Description, event.Date)
}

func (p *Poster) finishStrict(ctx context.Context, b *lineBuilder, referenceType string, referenceID int64, description string, date time.Time) (*journals.Entry, error) {
	if b.err != nil {
		return nil, b.err
	}
	entry, err := p.journal.Post(ctx, journals.PostingInput{
		Date:          date,
		ReferenceType: referenceType,
		ReferenceID:   referenceID,
		Description:   description,
		Lines:         b.lines,
	})
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// lineBuilder accumulates candidate lines, skipping zero amounts. In strict
// mode the first unresolvable ledger aborts with
// shared.ErrMissingLedgerConfiguration; otherwise misses are collected in
// missing.
type lineBuilder struct {
	ctx      context.Context
	resolver LedgerResolver
	module   string
	strict   bool

	lines   []journals.LineInput
	missing []string
	err     error
}

func (b *lineBuilder) debit(name string, amount float64) {
	b.add(name, journals.SideDebit, amount)
}

func (b *lineBuilder) credit(name string, amount float64) {
	b.add(name, journals.SideCredit, amount)
}

func (b *lineBuilder) add(name string, side journals.Side, amount float64) {
	if b.err != nil || amount <= 0 {
		return
	}
	ledger, err := b.resolver.Resolve(b.ctx, name, b.module)
	if err != nil {
		if errors.Is(err, shared.ErrLedgerNotFound) {
			if b.strict {
				b.err = fmt.Errorf("%w: %s/%s", shared.ErrMissingLedgerConfiguration, b.module, name)
			} else {
				b.missing = append(b.missing, name)
			}
			return
		}
		b.err = err
		return
	}
	b.lines = append(b.lines, journals.LineInput{LedgerID: ledger.ID, Side: side, Amount: amount})
}

func paymentLedgerName(method string) string {
	if strings.EqualFold(method, "cash") {
		return LedgerCash
	}
	return LedgerBank
}
