package ledger

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/satheeshds/fintrack/models"
)

const owner = "user-1"

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func strPtr(s string) *string { return &s }

func txn(id, account string, typ models.TransactionType, amount string, date time.Time) models.Transaction {
	return models.Transaction{ID: id, UserID: owner, AccountID: account, Type: typ, Amount: dec(amount), Date: date}
}

func transfer(id, from, to, amount string, date time.Time) models.Transaction {
	t := txn(id, from, models.TypeTransfer, amount, date)
	t.ToAccountID = strPtr(to)
	return t
}

func TestComputeBalance(t *testing.T) {
	day := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	acc := models.Account{ID: "a", InitialAmount: dec("1000"), Currency: "PHP"}

	tests := []struct {
		name string
		from []models.Transaction
		to   []models.Transaction
		want string
	}{
		{"no transactions", nil, nil, "1000"},
		{"income and expense", []models.Transaction{
			txn("1", "a", models.TypeIncome, "500", day),
			txn("2", "a", models.TypeExpense, "200.25", day),
		}, nil, "1299.75"},
		{"transfer out", []models.Transaction{transfer("3", "a", "b", "300", day)}, nil, "700"},
		{"transfer in", nil, []models.Transaction{transfer("4", "b", "a", "50", day)}, "1050"},
		{"income with stray destination stays income", []models.Transaction{
			func() models.Transaction {
				x := txn("5", "a", models.TypeIncome, "10", day)
				x.ToAccountID = strPtr("b")
				return x
			}(),
		}, nil, "1010"},
		{"stray non-transfer on destination side ignored", nil, []models.Transaction{
			func() models.Transaction {
				x := txn("6", "b", models.TypeIncome, "10", day)
				x.ToAccountID = strPtr("a")
				return x
			}(),
		}, "1000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeBalance(acc, tt.from, tt.to)
			if !got.Balance.Equal(dec(tt.want)) {
				t.Errorf("balance = %s, want %s", got.Balance, tt.want)
			}
			if got.Currency != "PHP" {
				t.Errorf("currency = %q, want PHP", got.Currency)
			}
		})
	}
}

func TestComputeBalanceOrderIndependent(t *testing.T) {
	day := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	acc := models.Account{ID: "a", InitialAmount: dec("12.34"), Currency: "USD"}
	from := []models.Transaction{
		txn("1", "a", models.TypeIncome, "0.10", day),
		txn("2", "a", models.TypeExpense, "0.20", day),
		transfer("3", "a", "b", "7.77", day),
		txn("4", "a", models.TypeIncome, "1000.01", day),
		txn("5", "a", models.TypeExpense, "33.33", day),
	}
	to := []models.Transaction{transfer("6", "b", "a", "5.55", day)}

	want := ComputeBalance(acc, from, to).Balance
	r := rand.New(rand.NewSource(42))
	for i := 0; i < 20; i++ {
		shuffled := append([]models.Transaction(nil), from...)
		r.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
		if got := ComputeBalance(acc, shuffled, to).Balance; !got.Equal(want) {
			t.Fatalf("shuffle %d: balance = %s, want %s", i, got, want)
		}
	}
}

func TestSumCashFlow(t *testing.T) {
	day := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	flow := SumCashFlow([]models.Transaction{
		txn("1", "a", models.TypeIncome, "100.50", day),
		txn("2", "a", models.TypeExpense, "40.25", day),
		transfer("3", "a", "b", "999", day),
	})
	if !flow.Income.Equal(dec("100.50")) || !flow.Expense.Equal(dec("40.25")) {
		t.Fatalf("flow = %+v", flow)
	}
	if !flow.Net.Equal(flow.Income.Sub(flow.Expense)) {
		t.Errorf("net %s != income - expense", flow.Net)
	}
}

func TestAccountBalanceUnknownAccount(t *testing.T) {
	e := NewEngine(newMemStore(), WithDefaultCurrency("USD"))
	got, err := e.AccountBalance(context.Background(), owner, "missing")
	if err != nil {
		t.Fatalf("AccountBalance: %v", err)
	}
	if !got.Balance.IsZero() || got.Currency != "USD" {
		t.Errorf("got %+v, want zero USD", got)
	}
}

func TestAccountBalanceOtherOwner(t *testing.T) {
	s := newMemStore()
	s.addAccount(models.Account{ID: "a", UserID: "someone-else", InitialAmount: dec("50")})
	e := NewEngine(s)
	got, err := e.AccountBalance(context.Background(), owner, "a")
	if err != nil {
		t.Fatalf("AccountBalance: %v", err)
	}
	if !got.Balance.IsZero() {
		t.Errorf("balance = %s, want 0 for a foreign account", got.Balance)
	}
}

func TestScenario(t *testing.T) {
	ctx := context.Background()
	s := newMemStore()
	s.addAccount(models.Account{ID: "A", UserID: owner, InitialAmount: dec("1000")})
	s.addAccount(models.Account{ID: "B", UserID: owner, InitialAmount: decimal.Zero})
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	e := NewEngine(s, WithClock(func() time.Time { return now }))

	if _, err := e.RecordTransaction(ctx, owner, models.TransactionInput{AccountID: "A", Type: models.TypeIncome, Amount: dec("500"), Date: "2025-06-01"}); err != nil {
		t.Fatal(err)
	}
	if _, err := e.RecordTransaction(ctx, owner, models.TransactionInput{AccountID: "A", Type: models.TypeExpense, Amount: dec("200"), Date: "2025-06-02"}); err != nil {
		t.Fatal(err)
	}
	if _, err := e.Transfer(ctx, owner, models.TransferInput{FromAccountID: "A", ToAccountID: "B", Amount: dec("300"), Date: "2025-06-03"}); err != nil {
		t.Fatal(err)
	}

	a, err := e.AccountBalance(ctx, owner, "A")
	if err != nil {
		t.Fatal(err)
	}
	b, err := e.AccountBalance(ctx, owner, "B")
	if err != nil {
		t.Fatal(err)
	}
	if !a.Balance.Equal(dec("1000")) {
		t.Errorf("balance(A) = %s, want 1000", a.Balance)
	}
	if !b.Balance.Equal(dec("300")) {
		t.Errorf("balance(B) = %s, want 300", b.Balance)
	}

	flow, err := e.CashFlow(ctx, owner, MonthRange(2025, time.June, time.UTC))
	if err != nil {
		t.Fatal(err)
	}
	if !flow.Income.Equal(dec("500")) || !flow.Expense.Equal(dec("200")) || !flow.Net.Equal(dec("300")) {
		t.Errorf("cash flow = %+v, want 500/200/300", flow)
	}

	nw, err := e.NetWorth(ctx, owner)
	if err != nil {
		t.Fatal(err)
	}
	if !nw.Total.Equal(dec("1300")) {
		t.Errorf("net worth = %s, want 1300", nw.Total)
	}
	if nw.MixedCurrency() {
		t.Errorf("currencies = %v, want one", nw.Currencies)
	}
}

func TestNetWorthIncludesArchivedAndFlagsCurrencies(t *testing.T) {
	s := newMemStore()
	s.addAccount(models.Account{ID: "a", UserID: owner, InitialAmount: dec("10"), Currency: "PHP"})
	s.addAccount(models.Account{ID: "b", UserID: owner, InitialAmount: dec("5"), Currency: "USD", Status: models.AccountArchived})
	s.addAccount(models.Account{ID: "c", UserID: "other", InitialAmount: dec("1000")})

	nw, err := NewEngine(s, WithParallelism(1)).NetWorth(context.Background(), owner)
	if err != nil {
		t.Fatal(err)
	}
	if !nw.Total.Equal(dec("15")) {
		t.Errorf("total = %s, want 15", nw.Total)
	}
	if !nw.MixedCurrency() || nw.Currencies[0] != "PHP" || nw.Currencies[1] != "USD" {
		t.Errorf("currencies = %v, want [PHP USD]", nw.Currencies)
	}
}

func TestDashboard(t *testing.T) {
	s := newMemStore()
	s.addAccount(models.Account{ID: "a", UserID: owner, InitialAmount: dec("100")})
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 20; i++ {
		s.txns = append(s.txns, txn(string(rune('a'+i)), "a", models.TypeIncome, "1", base.AddDate(0, 0, i)))
	}

	d, err := NewEngine(s).Dashboard(context.Background(), owner, 15)
	if err != nil {
		t.Fatal(err)
	}
	if !d.TotalBalance.Equal(dec("120")) {
		t.Errorf("total balance = %s, want 120", d.TotalBalance)
	}
	if !d.TotalIncome.Equal(dec("20")) || !d.NetCashFlow.Equal(dec("20")) {
		t.Errorf("income/net = %s/%s, want 20/20", d.TotalIncome, d.NetCashFlow)
	}
	if len(d.RecentTransactions) != 15 {
		t.Fatalf("recent = %d, want 15", len(d.RecentTransactions))
	}
	if !d.RecentTransactions[0].Date.Equal(base.AddDate(0, 0, 19)) {
		t.Errorf("first recent dated %s, want newest", d.RecentTransactions[0].Date)
	}
}
