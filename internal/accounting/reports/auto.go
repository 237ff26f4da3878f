package reports

import "github.com/atithi-pms/atithi/internal/accounting/ledgers"

// CheckoutAggregates are sums read straight from the checkout tables,
// bypassing journal entries. They feed the automatic trial balance mode.
type CheckoutAggregates struct {
	CashReceived      float64
	BankReceived      float64
	RoomRevenue       float64
	FoodRevenue       float64
	ServiceRevenue    float64
	PackageRevenue    float64
	ConsumableRevenue float64
	DamageRecovery    float64
	FeeIncome         float64
	TaxCollected      float64
	DiscountsAllowed  float64
	AdvancesConsumed  float64
	TipsHeld          float64
}

// BuildAutomatic synthesizes virtual ledger rows from business aggregates.
// It is a fast approximation for reporting and never mutates ledger state;
// the journal-derived trial balance remains the authoritative one.
func BuildAutomatic(agg CheckoutAggregates) TrialBalance {
	rows := []LedgerBalance{
		{Name: "Cash", Group: "Assets", BalanceType: ledgers.BalanceTypeDebit, Debits: agg.CashReceived},
		{Name: "Bank", Group: "Assets", BalanceType: ledgers.BalanceTypeDebit, Debits: agg.BankReceived},
		{Name: "Room Revenue", Group: "Income", BalanceType: ledgers.BalanceTypeCredit, Credits: agg.RoomRevenue},
		{Name: "Food Revenue", Group: "Income", BalanceType: ledgers.BalanceTypeCredit, Credits: agg.FoodRevenue},
		{Name: "Service Revenue", Group: "Income", BalanceType: ledgers.BalanceTypeCredit, Credits: agg.ServiceRevenue},
		{Name: "Package Revenue", Group: "Income", BalanceType: ledgers.BalanceTypeCredit, Credits: agg.PackageRevenue},
		{Name: "Consumables Revenue", Group: "Income", BalanceType: ledgers.BalanceTypeCredit, Credits: agg.ConsumableRevenue},
		{Name: "Damage Recovery", Group: "Income", BalanceType: ledgers.BalanceTypeCredit, Credits: agg.DamageRecovery},
		{Name: "Fee Income", Group: "Income", BalanceType: ledgers.BalanceTypeCredit, Credits: agg.FeeIncome},
		{Name: "Output Tax", Group: "Liabilities", BalanceType: ledgers.BalanceTypeCredit, Credits: agg.TaxCollected},
		{Name: "Tips Payable", Group: "Liabilities", BalanceType: ledgers.BalanceTypeCredit, Credits: agg.TipsHeld},
		{Name: "Discount Allowed", Group: "Expenses", BalanceType: ledgers.BalanceTypeDebit, Debits: agg.DiscountsAllowed},
		{Name: "Guest Advances", Group: "Liabilities", BalanceType: ledgers.BalanceTypeCredit, Opening: agg.AdvancesConsumed, Debits: agg.AdvancesConsumed},
	}
	filtered := rows[:0]
	for _, row := range rows {
		if row.Opening != 0 || row.Debits != 0 || row.Credits != 0 {
			filtered = append(filtered, row)
		}
	}
	return Build(filtered)
}
