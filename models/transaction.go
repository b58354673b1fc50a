package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType decides the direction of a ledger entry.
type TransactionType string

const (
	TypeIncome   TransactionType = "INCOME"
	TypeExpense  TransactionType = "EXPENSE"
	TypeTransfer TransactionType = "TRANSFER"
)

func (t TransactionType) Valid() bool {
	switch t {
	case TypeIncome, TypeExpense, TypeTransfer:
		return true
	}
	return false
}

// Transaction is one ledger entry. Amount is always a positive magnitude; the sign
// comes from Type and from which account role is being evaluated.
type Transaction struct {
	ID              string          `json:"id"`
	UserID          string          `json:"user_id"`
	AccountID       string          `json:"account_id"`
	ToAccountID     *string         `json:"to_account_id"`
	Amount          decimal.Decimal `json:"amount"`
	Type            TransactionType `json:"type"`
	CategoryID      *string         `json:"category_id"`
	Note            *string         `json:"note"`
	Date            time.Time       `json:"date"`
	ReceiptMetadata *string         `json:"receipt_metadata"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	// Computed fields
	AccountName   *string `json:"account_name,omitempty"`
	ToAccountName *string `json:"to_account_name,omitempty"`
	CategoryName  *string `json:"category_name,omitempty"`
}

// AccountIDs returns every account the transaction touches.
func (t Transaction) AccountIDs() []string {
	if t.Type == TypeTransfer && t.ToAccountID != nil {
		return []string{t.AccountID, *t.ToAccountID}
	}
	return []string{t.AccountID}
}

// TransactionInput is used for creating transactions.
type TransactionInput struct {
	AccountID       string          `json:"account_id"`
	ToAccountID     *string         `json:"to_account_id"`
	Amount          decimal.Decimal `json:"amount"`
	Type            TransactionType `json:"type"`
	CategoryID      *string         `json:"category_id"`
	Note            *string         `json:"note"`
	Date            string          `json:"date"`
	ReceiptMetadata *string         `json:"receipt_metadata"`
}

func (t *TransactionInput) Validate() string {
	if t.AccountID == "" {
		return "account_id is required"
	}
	if !t.Amount.IsPositive() {
		return "amount must be positive"
	}
	if msg := validateScale("amount", t.Amount); msg != "" {
		return msg
	}
	if !t.Type.Valid() {
		return "type must be one of: INCOME, EXPENSE, TRANSFER"
	}
	if t.Type == TypeTransfer {
		if t.ToAccountID == nil || *t.ToAccountID == "" {
			return "to_account_id is required for transfers"
		}
		if *t.ToAccountID == t.AccountID {
			return "to_account_id must differ from account_id"
		}
	} else if t.ToAccountID != nil && *t.ToAccountID != "" {
		return "to_account_id is only allowed for transfers"
	}
	if t.Type == TypeTransfer && t.CategoryID != nil {
		return "transfers cannot have a category"
	}
	if msg := validateNote(t.Note, t.ReceiptMetadata); msg != "" {
		return msg
	}
	if t.Date != "" {
		if _, err := ParseDate(t.Date, nil); err != nil {
			return err.Error()
		}
	}
	return ""
}

// TransferInput moves money between two accounts of the same owner.
type TransferInput struct {
	FromAccountID string          `json:"from_account_id"`
	ToAccountID   string          `json:"to_account_id"`
	Amount        decimal.Decimal `json:"amount"`
	Note          *string         `json:"note"`
	Date          string          `json:"date"`
}

func (t *TransferInput) Validate() string {
	if t.FromAccountID == "" {
		return "from_account_id is required"
	}
	if t.ToAccountID == "" {
		return "to_account_id is required"
	}
	if !t.Amount.IsPositive() {
		return "amount must be positive"
	}
	if msg := validateScale("amount", t.Amount); msg != "" {
		return msg
	}
	if msg := validateNote(t.Note, nil); msg != "" {
		return msg
	}
	if t.Date != "" {
		if _, err := ParseDate(t.Date, nil); err != nil {
			return err.Error()
		}
	}
	return ""
}

// TransactionPatch updates the mutable fields of a transaction.
// Type and accounts are fixed once written.
type TransactionPatch struct {
	Amount          *decimal.Decimal `json:"amount"`
	CategoryID      *string          `json:"category_id"`
	Note            *string          `json:"note"`
	Date            *string          `json:"date"`
	ReceiptMetadata *string          `json:"receipt_metadata"`
}

func (p *TransactionPatch) Validate() string {
	if p.Amount != nil {
		if !p.Amount.IsPositive() {
			return "amount must be positive"
		}
		if msg := validateScale("amount", *p.Amount); msg != "" {
			return msg
		}
	}
	if msg := validateNote(p.Note, p.ReceiptMetadata); msg != "" {
		return msg
	}
	if p.Date != nil {
		if _, err := ParseDate(*p.Date, nil); err != nil {
			return err.Error()
		}
	}
	return ""
}

// TransactionFilter narrows a transaction listing. Zero values mean "any".
type TransactionFilter struct {
	UserID     string
	AccountID  string // matches either role
	CategoryID string
	Type       TransactionType
	From       *time.Time
	To         *time.Time
	Limit      int
	Offset     int
}

func validateNote(note, receipt *string) string {
	if note != nil && len(strings.TrimSpace(*note)) > 500 {
		return "note must be at most 500 characters"
	}
	if receipt != nil && len(*receipt) > 500 {
		return "receipt_metadata must be at most 500 characters"
	}
	return ""
}
