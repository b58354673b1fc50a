package ledger

import (
	"context"

	"github.com/satheeshds/fintrack/models"
)

// Store is the persistence the engine reads from and writes transactions to.
// Lookups are owner-scoped: a record owned by someone else is ErrNotFound.
type Store interface {
	GetAccount(ctx context.Context, userID, id string) (models.Account, error)
	ListAccounts(ctx context.Context, userID string) ([]models.Account, error)

	// AccountTransactions returns the transactions where the account is the
	// source and those where it is the transfer destination.
	AccountTransactions(ctx context.Context, accountID string) (from, to []models.Transaction, err error)

	// ListTransactions returns matching transactions, newest first. Date bounds
	// are inclusive.
	ListTransactions(ctx context.Context, f models.TransactionFilter) ([]models.Transaction, error)

	// InsertTransaction checks, in the same database transaction as the insert,
	// that every account it touches exists for t.UserID and is active.
	InsertTransaction(ctx context.Context, t models.Transaction) (models.Transaction, error)

	GetGoal(ctx context.Context, userID, id string) (models.Goal, error)
	UpdateGoal(ctx context.Context, g models.Goal) (models.Goal, error)
}
