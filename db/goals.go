package db

import (
	"context"
	"fmt"

	"github.com/satheeshds/fintrack/models"
)

const goalSelectQuery = `SELECT id, user_id, name, target_amount, current_amount, currency, deadline,
	linked_account_id, status, created_at, updated_at
	FROM goals`

func scanGoal(row scanner) (models.Goal, error) {
	var g models.Goal
	err := row.Scan(&g.ID, &g.UserID, &g.Name, &g.TargetAmount, &g.CurrentAmount, &g.Currency, &g.Deadline,
		&g.LinkedAccountID, &g.Status, &g.CreatedAt, &g.UpdatedAt)
	return g, err
}

func (s *Store) ListGoals(ctx context.Context, userID string) ([]models.Goal, error) {
	rows, err := s.db.QueryContext(ctx, goalSelectQuery+" WHERE user_id = $1 ORDER BY created_at, id", userID)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	defer rows.Close()

	var goals []models.Goal
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, fmt.Errorf("scan goal: %w", err)
		}
		goals = append(goals, g)
	}
	return goals, rows.Err()
}

func (s *Store) GetGoal(ctx context.Context, userID, id string) (models.Goal, error) {
	g, err := scanGoal(s.db.QueryRowContext(ctx, goalSelectQuery+" WHERE id = $1 AND user_id = $2", id, userID))
	if err != nil {
		return models.Goal{}, fmt.Errorf("get goal %s: %w", id, notFound(err))
	}
	return g, nil
}

// CreateGoal inserts g. A linked account must belong to the same owner.
func (s *Store) CreateGoal(ctx context.Context, g models.Goal) (models.Goal, error) {
	if g.LinkedAccountID != nil {
		if _, err := s.GetAccount(ctx, g.UserID, *g.LinkedAccountID); err != nil {
			return models.Goal{}, fmt.Errorf("linked account: %w", err)
		}
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO goals (id, user_id, name, target_amount, current_amount, currency, deadline, linked_account_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		g.ID, g.UserID, g.Name, g.TargetAmount, g.CurrentAmount, g.Currency, utcPtr(g.Deadline), g.LinkedAccountID,
		g.Status, g.CreatedAt.UTC(), g.UpdatedAt.UTC())
	if err != nil {
		return models.Goal{}, fmt.Errorf("create goal: %w", err)
	}
	return g, nil
}

// UpdateGoal saves every editable field of g.
func (s *Store) UpdateGoal(ctx context.Context, g models.Goal) (models.Goal, error) {
	if g.LinkedAccountID != nil {
		if _, err := s.GetAccount(ctx, g.UserID, *g.LinkedAccountID); err != nil {
			return models.Goal{}, fmt.Errorf("linked account: %w", err)
		}
	}
	err := execOne(s.db.ExecContext(ctx,
		`UPDATE goals SET name = $1, target_amount = $2, current_amount = $3, deadline = $4, linked_account_id = $5,
		status = $6, updated_at = $7 WHERE id = $8 AND user_id = $9`,
		g.Name, g.TargetAmount, g.CurrentAmount, utcPtr(g.Deadline), g.LinkedAccountID, g.Status, g.UpdatedAt.UTC(), g.ID, g.UserID))
	if err != nil {
		return models.Goal{}, fmt.Errorf("update goal %s: %w", g.ID, err)
	}
	return g, nil
}

func (s *Store) DeleteGoal(ctx context.Context, userID, id string) error {
	if err := execOne(s.db.ExecContext(ctx, "DELETE FROM goals WHERE id = $1 AND user_id = $2", id, userID)); err != nil {
		return fmt.Errorf("delete goal %s: %w", id, err)
	}
	return nil
}
