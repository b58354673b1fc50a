package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/satheeshds/fintrack/ledger"
	"github.com/satheeshds/fintrack/models"
)

const accountSelectQuery = `SELECT id, user_id, name, type, status, initial_amount, currency, color, created_at, updated_at
	FROM accounts`

func scanAccount(row scanner) (models.Account, error) {
	var a models.Account
	err := row.Scan(&a.ID, &a.UserID, &a.Name, &a.Type, &a.Status, &a.InitialAmount, &a.Currency, &a.Color, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

// GetAccount loads one of userID's accounts.
func (s *Store) GetAccount(ctx context.Context, userID, id string) (models.Account, error) {
	a, err := scanAccount(s.db.QueryRowContext(ctx, accountSelectQuery+" WHERE id = $1 AND user_id = $2", id, userID))
	if err != nil {
		return models.Account{}, fmt.Errorf("get account %s: %w", id, notFound(err))
	}
	return a, nil
}

// ListAccounts returns every account of userID, archived ones included, by name.
func (s *Store) ListAccounts(ctx context.Context, userID string) ([]models.Account, error) {
	rows, err := s.db.QueryContext(ctx, accountSelectQuery+" WHERE user_id = $1 ORDER BY name, id", userID)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []models.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// CreateAccount inserts a.
func (s *Store) CreateAccount(ctx context.Context, a models.Account) (models.Account, error) {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO accounts (id, user_id, name, type, status, initial_amount, currency, color, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		a.ID, a.UserID, a.Name, a.Type, a.Status, a.InitialAmount, a.Currency, a.Color, a.CreatedAt.UTC(), a.UpdatedAt.UTC())
	if err != nil {
		return models.Account{}, fmt.Errorf("create account: %w", err)
	}
	slog.Info("account created", "id", a.ID, "user_id", a.UserID)
	return a, nil
}

// UpdateAccount saves the editable fields of a.
func (s *Store) UpdateAccount(ctx context.Context, a models.Account) (models.Account, error) {
	err := execOne(s.db.ExecContext(ctx,
		`UPDATE accounts SET name = $1, type = $2, initial_amount = $3, currency = $4, color = $5, updated_at = $6
		WHERE id = $7 AND user_id = $8`,
		a.Name, a.Type, a.InitialAmount, a.Currency, a.Color, a.UpdatedAt.UTC(), a.ID, a.UserID))
	if err != nil {
		return models.Account{}, fmt.Errorf("update account %s: %w", a.ID, err)
	}
	return a, nil
}

// ArchiveAccount marks the account ARCHIVED. Archiving twice is not an error.
func (s *Store) ArchiveAccount(ctx context.Context, userID, id string) (models.Account, error) {
	var a models.Account
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if err := execOne(tx.ExecContext(ctx,
			"UPDATE accounts SET status = $1, updated_at = $2 WHERE id = $3 AND user_id = $4",
			models.AccountArchived, time.Now().UTC(), id, userID)); err != nil {
			return err
		}
		var err error
		a, err = scanAccount(tx.QueryRowContext(ctx, accountSelectQuery+" WHERE id = $1", id))
		return err
	})
	if err != nil {
		return models.Account{}, fmt.Errorf("archive account %s: %w", id, notFound(err))
	}
	slog.Info("account archived", "id", id, "user_id", userID)
	return a, nil
}

// DeleteAccount hard-deletes an account that no transaction touches.
// Accounts with history return ledger.ErrHasHistory and must be archived instead.
func (s *Store) DeleteAccount(ctx context.Context, userID, id string) error {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var owned string
		if err := tx.QueryRowContext(ctx, "SELECT id FROM accounts WHERE id = $1 AND user_id = $2"+s.forUpdate(), id, userID).Scan(&owned); err != nil {
			return notFound(err)
		}
		var n int
		if err := tx.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM transactions WHERE account_id = $1 OR to_account_id = $1", id).Scan(&n); err != nil {
			return err
		}
		if n > 0 {
			return ledger.ErrHasHistory
		}
		_, err := tx.ExecContext(ctx, "DELETE FROM accounts WHERE id = $1", id)
		return err
	})
	if err != nil {
		return fmt.Errorf("delete account %s: %w", id, err)
	}
	slog.Info("account deleted", "id", id, "user_id", userID)
	return nil
}
