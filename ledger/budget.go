package ledger

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/satheeshds/fintrack/models"
)

// Utilization returns spent/limit and whether spent exceeds limit.
// A zero limit yields a zero ratio instead of dividing by zero.
func Utilization(spent, limit decimal.Decimal) (float64, bool) {
	over := spent.GreaterThan(limit)
	if limit.IsZero() {
		return 0, over
	}
	ratio, _ := spent.Div(limit).Float64()
	return ratio, over
}

// BudgetStatus sums the budget category's expenses within the budget month.
func (e *Engine) BudgetStatus(ctx context.Context, b models.Budget) (models.BudgetStatus, error) {
	month, err := models.ParseMonth(b.Month, e.loc)
	if err != nil {
		return models.BudgetStatus{}, err
	}
	f := MonthRange(month.Year(), month.Month(), e.loc).filter(b.UserID)
	f.CategoryID = b.CategoryID
	f.Type = models.TypeExpense

	txns, err := e.store.ListTransactions(ctx, f)
	if err != nil {
		return models.BudgetStatus{}, fmt.Errorf("list budget %s expenses: %w", b.ID, err)
	}
	spent := SumCashFlow(txns).Expense
	ratio, over := Utilization(spent, b.Amount)
	return models.BudgetStatus{Budget: b, Spent: spent, Utilization: ratio, IsOver: over}, nil
}

// BudgetStatuses computes every budget's status concurrently, keeping input order.
func (e *Engine) BudgetStatuses(ctx context.Context, budgets []models.Budget) ([]models.BudgetStatus, error) {
	out := make([]models.BudgetStatus, len(budgets))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.parallelism)
	for i := range budgets {
		i := i
		g.Go(func() error {
			s, err := e.BudgetStatus(gctx, budgets[i])
			if err != nil {
				return err
			}
			out[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
