// Package posting translates business events into balanced journal entries.
package posting

import "time"

// Reference types stamped on journal entries, queryable downstream.
const (
	ReferenceCheckout    = "checkout"
	ReferencePurchase    = "purchase"
	ReferenceConsumption = "consumption"
	ReferenceExpense     = "expense"
	ReferenceRCM         = "rcm"
	ReferenceFoodOrder   = "food_order"
	ReferenceService     = "service"
)

// Module namespaces for ledger resolution.
const (
	ModuleCheckout   = "checkout"
	ModuleAccounting = "accounting"
)

// Well-known ledger names. The chart of accounts is data, but builders
// address these fixed names within their module namespace.
const (
	LedgerCash               = "Cash"
	LedgerBank               = "Bank"
	LedgerRoomRevenue        = "Room Revenue"
	LedgerFoodRevenue        = "Food Revenue"
	LedgerServiceRevenue     = "Service Revenue"
	LedgerPackageRevenue     = "Package Revenue"
	LedgerConsumablesRevenue = "Consumables Revenue"
	LedgerDamageRecovery     = "Damage Recovery"
	LedgerFeeIncome          = "Fee Income"
	LedgerOutputCGST         = "Output CGST"
	LedgerOutputSGST         = "Output SGST"
	LedgerOutputIGST         = "Output IGST"
	LedgerInputCGST          = "Input CGST"
	LedgerInputSGST          = "Input SGST"
	LedgerInputIGST          = "Input IGST"
	LedgerDiscountAllowed    = "Discount Allowed"
	LedgerGuestAdvances      = "Guest Advances"
	LedgerTipsPayable        = "Tips Payable"
	LedgerPurchases          = "Purchases"
	LedgerInventoryStock     = "Inventory Stock"
	LedgerConsumptionExpense = "Consumption Expense"
	LedgerAccountsPayable    = "Accounts Payable"
	LedgerRCMPayable         = "RCM Payable"
)

// PaymentLine is one leg of a split payment.
type PaymentLine struct {
	Method string
	Amount float64
}

// CheckoutEvent carries the financial snapshot of a finalized checkout.
// AdvanceApplied is the advance actually consumed, already clamped by the
// finalizer so that the event balances.
type CheckoutEvent struct {
	CheckoutID        int64
	InvoiceNumber     string
	Date              time.Time
	Payments          []PaymentLine
	RoomCharges       float64
	FoodCharges       float64
	ServiceCharges    float64
	PackageCharges    float64
	ConsumableCharges float64
	DamageCharges     float64
	Fees              float64
	CGST              float64
	SGST              float64
	IGST              float64
	Discount          float64
	Tips              float64
	AdvanceApplied    float64
	GrandTotal        float64
}

// PurchaseEvent records a vendor purchase with input tax credit.
type PurchaseEvent struct {
	PurchaseID   int64
	Date         time.Time
	TaxableValue float64
	CGST         float64
	SGST         float64
	IGST         float64
	PaidInCash   bool
	Description  string
}

// ConsumptionEvent moves consumed stock from inventory to expense.
type ConsumptionEvent struct {
	ReferenceID int64
	Date        time.Time
	Amount      float64
	Description string
}

// ExpenseEvent records an operating expense against a named expense ledger.
type ExpenseEvent struct {
	ExpenseID     int64
	Date          time.Time
	LedgerName    string
	Amount        float64
	PaymentMethod string
	Description   string
}

// RCMEvent records a reverse-charge tax self-assessment.
type RCMEvent struct {
	ReferenceID  int64
	Date         time.Time
	TaxableValue float64
	CGST         float64
	SGST         float64
	IGST         float64
	Description  string
}

// RevenueLineEvent covers standalone paid food orders and services that are
// settled outside a checkout.
type RevenueLineEvent struct {
	ReferenceID   int64
	Date          time.Time
	Amount        float64
	CGST          float64
	SGST          float64
	IGST          float64
	PaymentMethod string
	Description   string
}
