// Package ledger derives balances and reports from the transaction log.
// Nothing here is cached: every figure is recomputed from the store on each call.
package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/satheeshds/fintrack/models"
)

// ComputeBalance returns initial amount + inflows - outflows for one account.
//
// from holds the transactions whose source is the account: INCOME adds, EXPENSE
// subtracts, and a TRANSFER with a destination subtracts. to holds the transfers
// whose destination is the account; each adds. Only TRANSFER carries destination
// semantics, so a stray destination on any other type is ignored on both sides.
func ComputeBalance(acc models.Account, from, to []models.Transaction) models.Balance {
	inflow := decimal.Zero
	outflow := decimal.Zero

	for _, t := range from {
		switch t.Type {
		case models.TypeIncome:
			inflow = inflow.Add(t.Amount)
		case models.TypeExpense:
			outflow = outflow.Add(t.Amount)
		case models.TypeTransfer:
			if t.ToAccountID != nil {
				outflow = outflow.Add(t.Amount)
			}
		}
	}
	for _, t := range to {
		if t.Type == models.TypeTransfer {
			inflow = inflow.Add(t.Amount)
		}
	}

	return models.Balance{
		Balance:  acc.InitialAmount.Add(inflow).Sub(outflow),
		Currency: acc.Currency,
	}
}

// SumCashFlow totals INCOME and EXPENSE rows. Transfers move money between the
// owner's own accounts and are left out of both sides.
func SumCashFlow(txns []models.Transaction) models.CashFlow {
	income := decimal.Zero
	expense := decimal.Zero
	for _, t := range txns {
		switch t.Type {
		case models.TypeIncome:
			income = income.Add(t.Amount)
		case models.TypeExpense:
			expense = expense.Add(t.Amount)
		}
	}
	return models.CashFlow{Income: income, Expense: expense, Net: income.Sub(expense)}
}
