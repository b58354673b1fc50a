package ledger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/satheeshds/fintrack/models"
)

// Transfer records one TRANSFER row moving in.Amount from in.FromAccountID to
// in.ToAccountID. The store checks both accounts and inserts the row atomically,
// so an account archived concurrently can never receive the transfer.
func (e *Engine) Transfer(ctx context.Context, userID string, in models.TransferInput) (models.Transaction, error) {
	if in.FromAccountID == in.ToAccountID {
		return models.Transaction{}, ErrSameAccount
	}
	if !in.Amount.IsPositive() {
		return models.Transaction{}, ErrInvalidAmount
	}
	date, err := e.entryDate(in.Date)
	if err != nil {
		return models.Transaction{}, err
	}

	to := in.ToAccountID
	t := models.Transaction{
		ID:          uuid.NewString(),
		UserID:      userID,
		AccountID:   in.FromAccountID,
		ToAccountID: &to,
		Amount:      in.Amount,
		Type:        models.TypeTransfer,
		Note:        trimmed(in.Note),
		Date:        date,
	}
	return e.insert(ctx, t)
}

// RecordTransaction creates an INCOME, EXPENSE or TRANSFER entry. It goes
// through the same atomic insert as Transfer.
func (e *Engine) RecordTransaction(ctx context.Context, userID string, in models.TransactionInput) (models.Transaction, error) {
	if !in.Amount.IsPositive() {
		return models.Transaction{}, ErrInvalidAmount
	}
	if in.Type == models.TypeTransfer {
		if in.ToAccountID == nil || *in.ToAccountID == in.AccountID {
			return models.Transaction{}, ErrSameAccount
		}
	}
	date, err := e.entryDate(in.Date)
	if err != nil {
		return models.Transaction{}, err
	}

	t := models.Transaction{
		ID:              uuid.NewString(),
		UserID:          userID,
		AccountID:       in.AccountID,
		Amount:          in.Amount,
		Type:            in.Type,
		CategoryID:      in.CategoryID,
		Note:            trimmed(in.Note),
		Date:            date,
		ReceiptMetadata: in.ReceiptMetadata,
	}
	if in.Type == models.TypeTransfer {
		to := *in.ToAccountID
		t.ToAccountID = &to
		t.CategoryID = nil
	}
	return e.insert(ctx, t)
}

func (e *Engine) insert(ctx context.Context, t models.Transaction) (models.Transaction, error) {
	now := e.now().UTC()
	t.CreatedAt = now
	t.UpdatedAt = now
	saved, err := e.store.InsertTransaction(ctx, t)
	if err != nil {
		return models.Transaction{}, fmt.Errorf("insert %s: %w", strings.ToLower(string(t.Type)), err)
	}
	return saved, nil
}

// entryDate parses s in the engine's zone, defaulting to the current time.
func (e *Engine) entryDate(s string) (time.Time, error) {
	if s == "" {
		return e.now().UTC(), nil
	}
	return models.ParseDate(s, e.loc)
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
