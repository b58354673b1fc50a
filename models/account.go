package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// AccountType is the kind of store of value an account represents.
type AccountType string

const (
	AccountCash       AccountType = "CASH"
	AccountBank       AccountType = "BANK"
	AccountEWallet    AccountType = "E_WALLET"
	AccountCreditCard AccountType = "CREDIT_CARD"
	AccountLoan       AccountType = "LOAN"
	AccountInvestment AccountType = "INVESTMENT"
)

// Valid reports whether t is one of the known account types.
func (t AccountType) Valid() bool {
	switch t {
	case AccountCash, AccountBank, AccountEWallet, AccountCreditCard, AccountLoan, AccountInvestment:
		return true
	}
	return false
}

// AccountStatus is always present; archived accounts are soft-deleted.
type AccountStatus string

const (
	AccountActive   AccountStatus = "ACTIVE"
	AccountArchived AccountStatus = "ARCHIVED"
)

// Account represents a cash wallet, bank account, card, loan or investment.
type Account struct {
	ID            string          `json:"id"`
	UserID        string          `json:"user_id"`
	Name          string          `json:"name"`
	Type          AccountType     `json:"type"`
	Status        AccountStatus   `json:"status"`
	InitialAmount decimal.Decimal `json:"initial_amount"`
	Currency      string          `json:"currency"`
	Color         *string         `json:"color"`
	Balance       decimal.Decimal `json:"balance"` // Computed
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// IsArchived reports whether the account can no longer take new transactions.
func (a Account) IsArchived() bool {
	return a.Status == AccountArchived
}

// AccountInput is used for creating accounts.
type AccountInput struct {
	Name          string          `json:"name"`
	Type          AccountType     `json:"type"`
	InitialAmount decimal.Decimal `json:"initial_amount"`
	Currency      string          `json:"currency"`
	Color         *string         `json:"color"`
}

func (a *AccountInput) Validate() string {
	a.Name = strings.TrimSpace(a.Name)
	if a.Name == "" {
		return "name is required"
	}
	if len(a.Name) > 100 {
		return "name must be at most 100 characters"
	}
	if !a.Type.Valid() {
		return "type must be one of: CASH, BANK, E_WALLET, CREDIT_CARD, LOAN, INVESTMENT"
	}
	if msg := validateCurrency(a.Currency); msg != "" {
		return msg
	}
	if msg := validateScale("initial_amount", a.InitialAmount); msg != "" {
		return msg
	}
	if a.Color != nil && len(*a.Color) > 20 {
		return "color must be at most 20 characters"
	}
	return ""
}

// AccountPatch carries a partial account update; nil fields are left untouched.
type AccountPatch struct {
	Name          *string          `json:"name"`
	Type          *AccountType     `json:"type"`
	InitialAmount *decimal.Decimal `json:"initial_amount"`
	Currency      *string          `json:"currency"`
	Color         *string          `json:"color"`
}

func (p *AccountPatch) Validate() string {
	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		if name == "" {
			return "name cannot be empty"
		}
		if len(name) > 100 {
			return "name must be at most 100 characters"
		}
		p.Name = &name
	}
	if p.Type != nil && !p.Type.Valid() {
		return "type must be one of: CASH, BANK, E_WALLET, CREDIT_CARD, LOAN, INVESTMENT"
	}
	if p.InitialAmount != nil {
		if msg := validateScale("initial_amount", *p.InitialAmount); msg != "" {
			return msg
		}
	}
	if p.Currency != nil {
		if *p.Currency == "" {
			return "currency cannot be empty"
		}
		if msg := validateCurrency(*p.Currency); msg != "" {
			return msg
		}
	}
	if p.Color != nil && len(*p.Color) > 20 {
		return "color must be at most 20 characters"
	}
	return ""
}

// Apply copies the set fields of p onto a.
func (p AccountPatch) Apply(a *Account) {
	if p.Name != nil {
		a.Name = *p.Name
	}
	if p.Type != nil {
		a.Type = *p.Type
	}
	if p.InitialAmount != nil {
		a.InitialAmount = *p.InitialAmount
	}
	if p.Currency != nil {
		a.Currency = strings.ToUpper(*p.Currency)
	}
	if p.Color != nil {
		a.Color = p.Color
	}
}

// empty currency is allowed on input; the configured default is applied later.
func validateCurrency(c string) string {
	if c == "" {
		return ""
	}
	if len(c) != 3 {
		return "currency must be a 3-letter code"
	}
	for _, r := range c {
		if (r < 'A' || r > 'Z') && (r < 'a' || r > 'z') {
			return "currency must be a 3-letter code"
		}
	}
	return ""
}
