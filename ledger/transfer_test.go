package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/satheeshds/fintrack/models"
)

func TestTransfer(t *testing.T) {
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		setup   func(*memStore)
		in      models.TransferInput
		wantErr error
	}{
		{
			name: "moves money",
			in:   models.TransferInput{FromAccountID: "x", ToAccountID: "y", Amount: dec("25")},
		},
		{
			name:    "same account",
			in:      models.TransferInput{FromAccountID: "x", ToAccountID: "x", Amount: dec("25")},
			wantErr: ErrSameAccount,
		},
		{
			name:    "zero amount",
			in:      models.TransferInput{FromAccountID: "x", ToAccountID: "y", Amount: dec("0")},
			wantErr: ErrInvalidAmount,
		},
		{
			name: "archived destination",
			setup: func(s *memStore) {
				a := s.accounts["y"]
				a.Status = models.AccountArchived
				s.accounts["y"] = a
			},
			in:      models.TransferInput{FromAccountID: "x", ToAccountID: "y", Amount: dec("25")},
			wantErr: ErrAccountArchived,
		},
		{
			name: "archived source",
			setup: func(s *memStore) {
				a := s.accounts["x"]
				a.Status = models.AccountArchived
				s.accounts["x"] = a
			},
			in:      models.TransferInput{FromAccountID: "x", ToAccountID: "y", Amount: dec("25")},
			wantErr: ErrAccountArchived,
		},
		{
			name:    "foreign destination",
			in:      models.TransferInput{FromAccountID: "x", ToAccountID: "z", Amount: dec("25")},
			wantErr: ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newMemStore()
			s.addAccount(models.Account{ID: "x", UserID: owner, InitialAmount: dec("100")})
			s.addAccount(models.Account{ID: "y", UserID: owner, InitialAmount: dec("0")})
			s.addAccount(models.Account{ID: "z", UserID: "other"})
			if tt.setup != nil {
				tt.setup(s)
			}
			e := NewEngine(s, WithClock(func() time.Time { return now }))

			got, err := e.Transfer(context.Background(), owner, tt.in)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				if len(s.txns) != 0 {
					t.Fatalf("wrote %d transactions on failure", len(s.txns))
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if got.Type != models.TypeTransfer || got.ToAccountID == nil || *got.ToAccountID != "y" {
				t.Errorf("transaction = %+v", got)
			}
			if !got.Date.Equal(now) {
				t.Errorf("date = %s, want clock time", got.Date)
			}
			if len(s.txns) != 1 {
				t.Fatalf("transactions = %d, want exactly 1", len(s.txns))
			}

			x, _ := e.AccountBalance(context.Background(), owner, "x")
			y, _ := e.AccountBalance(context.Background(), owner, "y")
			if !x.Balance.Equal(dec("75")) || !y.Balance.Equal(dec("25")) {
				t.Errorf("balances x=%s y=%s, want 75 and 25", x.Balance, y.Balance)
			}
			flow := SumCashFlow(s.txns)
			if !flow.Income.IsZero() || !flow.Expense.IsZero() {
				t.Errorf("transfer leaked into cash flow: %+v", flow)
			}
		})
	}
}

func TestRecordTransaction(t *testing.T) {
	s := newMemStore()
	s.addAccount(models.Account{ID: "x", UserID: owner})
	s.addAccount(models.Account{ID: "arch", UserID: owner, Status: models.AccountArchived})
	e := NewEngine(s)
	ctx := context.Background()

	note := "  lunch  "
	got, err := e.RecordTransaction(ctx, owner, models.TransactionInput{
		AccountID: "x", Type: models.TypeExpense, Amount: dec("12.50"), Note: &note, Date: "2025-02-03",
	})
	if err != nil {
		t.Fatal(err)
	}
	if got.ID == "" || got.Note == nil || *got.Note != "lunch" {
		t.Errorf("got %+v", got)
	}
	if !got.Date.Equal(time.Date(2025, 2, 3, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("date = %s", got.Date)
	}

	_, err = e.RecordTransaction(ctx, owner, models.TransactionInput{AccountID: "arch", Type: models.TypeIncome, Amount: dec("1")})
	if !errors.Is(err, ErrAccountArchived) {
		t.Errorf("archived source err = %v", err)
	}

	_, err = e.RecordTransaction(ctx, owner, models.TransactionInput{AccountID: "x", ToAccountID: strPtr("x"), Type: models.TypeTransfer, Amount: dec("1")})
	if !errors.Is(err, ErrSameAccount) {
		t.Errorf("self transfer err = %v", err)
	}
	if len(s.txns) != 1 {
		t.Errorf("transactions = %d, want 1", len(s.txns))
	}
}
