package models

import "github.com/shopspring/decimal"

// Balance is the derived balance of one account in its own currency.
type Balance struct {
	Balance  decimal.Decimal `json:"balance"`
	Currency string          `json:"currency"`
}

// CashFlow totals income and expense over a window. Transfers are never included.
type CashFlow struct {
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	Net     decimal.Decimal `json:"net"`
}

// CategoryTotal is one row of an expense breakdown. CategoryID is nil for the
// uncategorized bucket.
type CategoryTotal struct {
	CategoryID    *string         `json:"category_id"`
	CategoryLabel string          `json:"category_label"`
	Total         decimal.Decimal `json:"total"`
}

// PeriodSummary is a cash flow tagged with its period: "YYYY-MM" for monthly
// rows, the integer year for yearly rows.
type PeriodSummary struct {
	Period  any             `json:"period"`
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	Net     decimal.Decimal `json:"net"`
}

// NetWorth is the raw sum of every account balance. More than one entry in
// Currencies means the total mixes currencies without conversion.
type NetWorth struct {
	Total      decimal.Decimal `json:"total"`
	Currencies []string        `json:"currencies"`
}

// MixedCurrency reports whether Total adds balances of different currencies.
func (n NetWorth) MixedCurrency() bool {
	return len(n.Currencies) > 1
}

// BudgetStatus is a budget with its derived spending.
type BudgetStatus struct {
	Budget
	Spent       decimal.Decimal `json:"spent"`
	Utilization float64         `json:"utilization"`
	IsOver      bool            `json:"is_over"`
}

// Dashboard is the overview page payload.
type Dashboard struct {
	TotalBalance       decimal.Decimal `json:"total_balance"`
	TotalIncome        decimal.Decimal `json:"total_income"`
	TotalExpense       decimal.Decimal `json:"total_expense"`
	NetCashFlow        decimal.Decimal `json:"net_cash_flow"`
	Accounts           []Account       `json:"accounts"`
	RecentTransactions []Transaction   `json:"recent_transactions"`
}
