package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/satheeshds/fintrack/ledger"
	"github.com/satheeshds/fintrack/models"
)

const transactionSelectQuery = `SELECT t.id, t.user_id, t.account_id, t.to_account_id, t.amount, t.type, t.category_id,
	t.note, t.date, t.receipt_metadata, t.created_at, t.updated_at,
	a.name, ta.name, c.name
	FROM transactions t
	JOIN accounts a ON a.id = t.account_id
	LEFT JOIN accounts ta ON ta.id = t.to_account_id
	LEFT JOIN categories c ON c.id = t.category_id`

func scanTransaction(row scanner) (models.Transaction, error) {
	var t models.Transaction
	err := row.Scan(&t.ID, &t.UserID, &t.AccountID, &t.ToAccountID, &t.Amount, &t.Type, &t.CategoryID,
		&t.Note, &t.Date, &t.ReceiptMetadata, &t.CreatedAt, &t.UpdatedAt,
		&t.AccountName, &t.ToAccountName, &t.CategoryName)
	return t, err
}

func collectTransactions(rows *sql.Rows) ([]models.Transaction, error) {
	defer rows.Close()
	var txns []models.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		txns = append(txns, t)
	}
	return txns, rows.Err()
}

// AccountTransactions returns the rows whose source is accountID and the rows
// whose transfer destination is accountID.
func (s *Store) AccountTransactions(ctx context.Context, accountID string) (from, to []models.Transaction, err error) {
	rows, err := s.db.QueryContext(ctx, transactionSelectQuery+" WHERE t.account_id = $1", accountID)
	if err != nil {
		return nil, nil, fmt.Errorf("query outgoing: %w", err)
	}
	if from, err = collectTransactions(rows); err != nil {
		return nil, nil, err
	}

	rows, err = s.db.QueryContext(ctx, transactionSelectQuery+" WHERE t.to_account_id = $1", accountID)
	if err != nil {
		return nil, nil, fmt.Errorf("query incoming: %w", err)
	}
	if to, err = collectTransactions(rows); err != nil {
		return nil, nil, err
	}
	return from, to, nil
}

// ListTransactions returns the owner's transactions matching f, newest first.
func (s *Store) ListTransactions(ctx context.Context, f models.TransactionFilter) ([]models.Transaction, error) {
	where := []string{"t.user_id = $1"}
	args := []any{f.UserID}
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.AccountID != "" {
		p := arg(f.AccountID)
		where = append(where, "(t.account_id = "+p+" OR t.to_account_id = "+p+")")
	}
	if f.CategoryID != "" {
		where = append(where, "t.category_id = "+arg(f.CategoryID))
	}
	if f.Type != "" {
		where = append(where, "t.type = "+arg(f.Type))
	}
	if f.From != nil {
		where = append(where, "t.date >= "+arg(f.From.UTC()))
	}
	if f.To != nil {
		where = append(where, "t.date <= "+arg(f.To.UTC()))
	}

	query := transactionSelectQuery + " WHERE " + strings.Join(where, " AND ") +
		" ORDER BY t.date DESC, t.created_at DESC, t.id DESC"
	if f.Limit > 0 {
		query += " LIMIT " + arg(f.Limit)
		if f.Offset > 0 {
			query += " OFFSET " + arg(f.Offset)
		}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return collectTransactions(rows)
}

// GetTransaction loads one of userID's transactions.
func (s *Store) GetTransaction(ctx context.Context, userID, id string) (models.Transaction, error) {
	t, err := scanTransaction(s.db.QueryRowContext(ctx, transactionSelectQuery+" WHERE t.id = $1 AND t.user_id = $2", id, userID))
	if err != nil {
		return models.Transaction{}, fmt.Errorf("get transaction %s: %w", id, notFound(err))
	}
	return t, nil
}

// InsertTransaction writes t after checking, in the same database transaction,
// that every account it touches belongs to t.UserID and is active and that its
// category, if any, belongs to t.UserID.
func (s *Store) InsertTransaction(ctx context.Context, t models.Transaction) (models.Transaction, error) {
	var saved models.Transaction
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		for _, id := range t.AccountIDs() {
			var status models.AccountStatus
			err := tx.QueryRowContext(ctx,
				"SELECT status FROM accounts WHERE id = $1 AND user_id = $2"+s.forUpdate(), id, t.UserID).Scan(&status)
			if err != nil {
				return fmt.Errorf("account %s: %w", id, notFound(err))
			}
			if status == models.AccountArchived {
				return fmt.Errorf("account %s: %w", id, ledger.ErrAccountArchived)
			}
		}
		if t.CategoryID != nil {
			if err := s.checkCategory(ctx, tx, t.UserID, *t.CategoryID); err != nil {
				return err
			}
		}

		_, err := tx.ExecContext(ctx,
			`INSERT INTO transactions (id, user_id, account_id, to_account_id, amount, type, category_id, note, date, receipt_metadata, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
			t.ID, t.UserID, t.AccountID, t.ToAccountID, t.Amount, t.Type, t.CategoryID, t.Note,
			t.Date.UTC(), t.ReceiptMetadata, t.CreatedAt.UTC(), t.UpdatedAt.UTC())
		if err != nil {
			return fmt.Errorf("insert: %w", err)
		}

		saved, err = scanTransaction(tx.QueryRowContext(ctx, transactionSelectQuery+" WHERE t.id = $1", t.ID))
		return err
	})
	if err != nil {
		return models.Transaction{}, err
	}
	slog.Info("transaction recorded", "id", saved.ID, "type", saved.Type, "user_id", saved.UserID)
	return saved, nil
}

// UpdateTransaction saves the mutable fields of t: amount, category, note, date
// and receipt metadata.
func (s *Store) UpdateTransaction(ctx context.Context, t models.Transaction) (models.Transaction, error) {
	var saved models.Transaction
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if t.CategoryID != nil {
			if err := s.checkCategory(ctx, tx, t.UserID, *t.CategoryID); err != nil {
				return err
			}
		}
		if err := execOne(tx.ExecContext(ctx,
			`UPDATE transactions SET amount = $1, category_id = $2, note = $3, date = $4, receipt_metadata = $5, updated_at = $6
			WHERE id = $7 AND user_id = $8`,
			t.Amount, t.CategoryID, t.Note, t.Date.UTC(), t.ReceiptMetadata, t.UpdatedAt.UTC(), t.ID, t.UserID)); err != nil {
			return err
		}
		var err error
		saved, err = scanTransaction(tx.QueryRowContext(ctx, transactionSelectQuery+" WHERE t.id = $1", t.ID))
		return err
	})
	if err != nil {
		return models.Transaction{}, fmt.Errorf("update transaction %s: %w", t.ID, err)
	}
	return saved, nil
}

// DeleteTransaction removes one of userID's transactions and returns what was deleted.
func (s *Store) DeleteTransaction(ctx context.Context, userID, id string) (models.Transaction, error) {
	var deleted models.Transaction
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		deleted, err = scanTransaction(tx.QueryRowContext(ctx, transactionSelectQuery+" WHERE t.id = $1 AND t.user_id = $2", id, userID))
		if err != nil {
			return notFound(err)
		}
		_, err = tx.ExecContext(ctx, "DELETE FROM transactions WHERE id = $1", id)
		return err
	})
	if err != nil {
		return models.Transaction{}, fmt.Errorf("delete transaction %s: %w", id, err)
	}
	slog.Info("transaction deleted", "id", id, "user_id", userID)
	return deleted, nil
}

func (s *Store) checkCategory(ctx context.Context, tx *sql.Tx, userID, categoryID string) error {
	var id string
	err := tx.QueryRowContext(ctx, "SELECT id FROM categories WHERE id = $1 AND user_id = $2", categoryID, userID).Scan(&id)
	if err != nil {
		return fmt.Errorf("category %s: %w", categoryID, notFound(err))
	}
	return nil
}
