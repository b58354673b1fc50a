package ledger

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/satheeshds/fintrack/models"
)

// SyncGoal copies the linked account's balance into the goal's current amount,
// clamped to [0, target], and saves it. Unlinked goals come back unchanged.
func (e *Engine) SyncGoal(ctx context.Context, userID, goalID string) (models.Goal, error) {
	g, err := e.store.GetGoal(ctx, userID, goalID)
	if err != nil {
		return models.Goal{}, fmt.Errorf("get goal: %w", err)
	}
	if g.LinkedAccountID == nil {
		return g, nil
	}

	b, err := e.AccountBalance(ctx, userID, *g.LinkedAccountID)
	if err != nil {
		return models.Goal{}, err
	}
	current := decimal.Max(b.Balance, decimal.Zero)
	current = decimal.Min(current, g.TargetAmount)
	if current.Equal(g.CurrentAmount) {
		return g, nil
	}

	g.CurrentAmount = current
	g.UpdatedAt = e.now().UTC()
	saved, err := e.store.UpdateGoal(ctx, g)
	if err != nil {
		return models.Goal{}, fmt.Errorf("update goal: %w", err)
	}
	return saved, nil
}
