package models

import (
	"strings"
	"time"
)

// Category labels income or expense transactions for one owner.
type Category struct {
	ID         string          `json:"id"`
	UserID     string          `json:"user_id"`
	Name       string          `json:"name"`
	Type       TransactionType `json:"type"` // INCOME, EXPENSE
	Icon       *string         `json:"icon"`
	ParentID   *string         `json:"parent_id"`
	IsSystem   bool            `json:"is_system"`
	IsArchived bool            `json:"is_archived"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// DefaultCategories are created for every new user.
var DefaultCategories = []struct {
	Name string
	Type TransactionType
}{
	{"Salary", TypeIncome},
	{"Other Income", TypeIncome},
	{"Food", TypeExpense},
	{"Transport", TypeExpense},
	{"Bills", TypeExpense},
	{"Shopping", TypeExpense},
	{"Other", TypeExpense},
}

// CategoryInput is used for creating categories.
type CategoryInput struct {
	Name     string          `json:"name"`
	Type     TransactionType `json:"type"`
	Icon     *string         `json:"icon"`
	ParentID *string         `json:"parent_id"`
}

func (c *CategoryInput) Validate() string {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return "name is required"
	}
	if len(c.Name) > 80 {
		return "name must be at most 80 characters"
	}
	switch c.Type {
	case TypeIncome, TypeExpense:
	default:
		return "type must be one of: INCOME, EXPENSE"
	}
	if c.Icon != nil && len(*c.Icon) > 50 {
		return "icon must be at most 50 characters"
	}
	return ""
}

// CategoryPatch renames, re-icons or archives a category.
type CategoryPatch struct {
	Name       *string `json:"name"`
	Icon       *string `json:"icon"`
	IsArchived *bool   `json:"is_archived"`
}

func (p *CategoryPatch) Validate() string {
	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		if name == "" || len(name) > 80 {
			return "name must be between 1 and 80 characters"
		}
		p.Name = &name
	}
	if p.Icon != nil && len(*p.Icon) > 50 {
		return "icon must be at most 50 characters"
	}
	return ""
}
