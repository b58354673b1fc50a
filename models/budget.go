package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Budget caps spending in one expense category for one calendar month.
type Budget struct {
	ID         string          `json:"id"`
	UserID     string          `json:"user_id"`
	CategoryID string          `json:"category_id"`
	Month      string          `json:"month"` // YYYY-MM
	Amount     decimal.Decimal `json:"amount"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
	// Computed fields
	CategoryName *string `json:"category_name,omitempty"`
}

// BudgetInput is used for creating budgets.
type BudgetInput struct {
	CategoryID string          `json:"category_id"`
	Month      string          `json:"month"`
	Amount     decimal.Decimal `json:"amount"`
}

func (b *BudgetInput) Validate() string {
	if b.CategoryID == "" {
		return "category_id is required"
	}
	if _, err := ParseMonth(b.Month, nil); err != nil {
		return err.Error()
	}
	if !b.Amount.IsPositive() {
		return "budget amount must be positive"
	}
	if msg := validateScale("amount", b.Amount); msg != "" {
		return msg
	}
	return ""
}

// BudgetPatch only allows the limit to change.
type BudgetPatch struct {
	Amount *decimal.Decimal `json:"amount"`
}

func (p *BudgetPatch) Validate() string {
	if p.Amount == nil {
		return "amount is required"
	}
	if !p.Amount.IsPositive() {
		return "budget amount must be positive"
	}
	if msg := validateScale("amount", *p.Amount); msg != "" {
		return msg
	}
	return ""
}
