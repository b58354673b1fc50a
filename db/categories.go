package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/satheeshds/fintrack/ledger"
	"github.com/satheeshds/fintrack/models"
)

const categorySelectQuery = `SELECT id, user_id, name, type, icon, parent_id, is_system, is_archived, created_at, updated_at
	FROM categories`

func scanCategory(row scanner) (models.Category, error) {
	var c models.Category
	err := row.Scan(&c.ID, &c.UserID, &c.Name, &c.Type, &c.Icon, &c.ParentID, &c.IsSystem, &c.IsArchived, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

// CategoryFilter narrows ListCategories. An empty Type lists both kinds.
type CategoryFilter struct {
	Type            models.TransactionType
	IncludeArchived bool
}

func (s *Store) ListCategories(ctx context.Context, userID string, f CategoryFilter) ([]models.Category, error) {
	query := categorySelectQuery + " WHERE user_id = $1"
	args := []any{userID}
	if f.Type != "" {
		args = append(args, f.Type)
		query += fmt.Sprintf(" AND type = $%d", len(args))
	}
	if !f.IncludeArchived {
		args = append(args, false)
		query += fmt.Sprintf(" AND is_archived = $%d", len(args))
	}
	query += " ORDER BY type, name"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var cats []models.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

func (s *Store) GetCategory(ctx context.Context, userID, id string) (models.Category, error) {
	c, err := scanCategory(s.db.QueryRowContext(ctx, categorySelectQuery+" WHERE id = $1 AND user_id = $2", id, userID))
	if err != nil {
		return models.Category{}, fmt.Errorf("get category %s: %w", id, notFound(err))
	}
	return c, nil
}

// CreateCategory inserts c. A parent, if given, must belong to the same owner.
func (s *Store) CreateCategory(ctx context.Context, c models.Category) (models.Category, error) {
	if c.ParentID != nil {
		if _, err := s.GetCategory(ctx, c.UserID, *c.ParentID); err != nil {
			return models.Category{}, fmt.Errorf("parent: %w", err)
		}
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO categories (id, user_id, name, type, icon, parent_id, is_system, is_archived, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		c.ID, c.UserID, c.Name, c.Type, c.Icon, c.ParentID, c.IsSystem, c.IsArchived, c.CreatedAt.UTC(), c.UpdatedAt.UTC())
	if isUniqueViolation(err) {
		return models.Category{}, fmt.Errorf("category %q: %w", c.Name, ledger.ErrDuplicate)
	}
	if err != nil {
		return models.Category{}, fmt.Errorf("create category: %w", err)
	}
	return c, nil
}

func (s *Store) UpdateCategory(ctx context.Context, c models.Category) (models.Category, error) {
	err := execOne(s.db.ExecContext(ctx,
		"UPDATE categories SET name = $1, icon = $2, is_archived = $3, updated_at = $4 WHERE id = $5 AND user_id = $6",
		c.Name, c.Icon, c.IsArchived, c.UpdatedAt.UTC(), c.ID, c.UserID))
	if isUniqueViolation(err) {
		return models.Category{}, fmt.Errorf("category %q: %w", c.Name, ledger.ErrDuplicate)
	}
	if err != nil {
		return models.Category{}, fmt.Errorf("update category %s: %w", c.ID, err)
	}
	return c, nil
}

// EnsureDefaultCategories gives userID the built-in categories it does not have yet.
func (s *Store) EnsureDefaultCategories(ctx context.Context, userID string) error {
	existing, err := s.ListCategories(ctx, userID, CategoryFilter{IncludeArchived: true})
	if err != nil {
		return err
	}
	have := map[string]bool{}
	for _, c := range existing {
		have[string(c.Type)+"/"+c.Name] = true
	}

	now := time.Now().UTC()
	for _, d := range models.DefaultCategories {
		if have[string(d.Type)+"/"+d.Name] {
			continue
		}
		_, err := s.CreateCategory(ctx, models.Category{
			ID:        uuid.NewString(),
			UserID:    userID,
			Name:      d.Name,
			Type:      d.Type,
			IsSystem:  true,
			CreatedAt: now,
			UpdatedAt: now,
		})
		if err != nil {
			return fmt.Errorf("default category %s: %w", d.Name, err)
		}
	}
	return nil
}
