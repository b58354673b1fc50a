package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/satheeshds/fintrack/ledger"
	"github.com/satheeshds/fintrack/models"
)

const budgetSelectQuery = `SELECT b.id, b.user_id, b.category_id, b.month, b.amount, b.created_at, b.updated_at, c.name
	FROM budgets b
	LEFT JOIN categories c ON c.id = b.category_id`

func scanBudget(row scanner) (models.Budget, error) {
	var b models.Budget
	err := row.Scan(&b.ID, &b.UserID, &b.CategoryID, &b.Month, &b.Amount, &b.CreatedAt, &b.UpdatedAt, &b.CategoryName)
	return b, err
}

// ListBudgets returns the owner's budgets, optionally only those for month (YYYY-MM).
func (s *Store) ListBudgets(ctx context.Context, userID, month string) ([]models.Budget, error) {
	query := budgetSelectQuery + " WHERE b.user_id = $1"
	args := []any{userID}
	if month != "" {
		query += " AND b.month = $2"
		args = append(args, month)
	}
	query += " ORDER BY b.month DESC, c.name"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	var budgets []models.Budget
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		budgets = append(budgets, b)
	}
	return budgets, rows.Err()
}

func (s *Store) GetBudget(ctx context.Context, userID, id string) (models.Budget, error) {
	b, err := scanBudget(s.db.QueryRowContext(ctx, budgetSelectQuery+" WHERE b.id = $1 AND b.user_id = $2", id, userID))
	if err != nil {
		return models.Budget{}, fmt.Errorf("get budget %s: %w", id, notFound(err))
	}
	return b, nil
}

// CreateBudget inserts b. The category must be one of the owner's expense
// categories; a second budget for the same category and month is ErrDuplicate.
func (s *Store) CreateBudget(ctx context.Context, b models.Budget) (models.Budget, error) {
	var saved models.Budget
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var typ models.TransactionType
		err := tx.QueryRowContext(ctx, "SELECT type FROM categories WHERE id = $1 AND user_id = $2", b.CategoryID, b.UserID).Scan(&typ)
		if err != nil {
			return fmt.Errorf("category %s: %w", b.CategoryID, notFound(err))
		}
		if typ != models.TypeExpense {
			return fmt.Errorf("category %s is not an expense category: %w", b.CategoryID, ledger.ErrNotFound)
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO budgets (id, user_id, category_id, month, amount, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			b.ID, b.UserID, b.CategoryID, b.Month, b.Amount, b.CreatedAt.UTC(), b.UpdatedAt.UTC())
		if isUniqueViolation(err) {
			return fmt.Errorf("budget for %s: %w", b.Month, ledger.ErrDuplicate)
		}
		if err != nil {
			return err
		}
		saved, err = scanBudget(tx.QueryRowContext(ctx, budgetSelectQuery+" WHERE b.id = $1", b.ID))
		return err
	})
	if err != nil {
		return models.Budget{}, fmt.Errorf("create budget: %w", err)
	}
	slog.Info("budget created", "id", saved.ID, "month", saved.Month, "user_id", saved.UserID)
	return saved, nil
}

// UpdateBudget changes the limit only.
func (s *Store) UpdateBudget(ctx context.Context, b models.Budget) (models.Budget, error) {
	err := execOne(s.db.ExecContext(ctx,
		"UPDATE budgets SET amount = $1, updated_at = $2 WHERE id = $3 AND user_id = $4",
		b.Amount, b.UpdatedAt.UTC(), b.ID, b.UserID))
	if err != nil {
		return models.Budget{}, fmt.Errorf("update budget %s: %w", b.ID, err)
	}
	return s.GetBudget(ctx, b.UserID, b.ID)
}

func (s *Store) DeleteBudget(ctx context.Context, userID, id string) error {
	if err := execOne(s.db.ExecContext(ctx, "DELETE FROM budgets WHERE id = $1 AND user_id = $2", id, userID)); err != nil {
		return fmt.Errorf("delete budget %s: %w", id, err)
	}
	return nil
}
