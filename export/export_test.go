package export

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/satheeshds/fintrack/models"
)

func TestWrite(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "report.duckdb")
	food := "food"

	monthly := make([]models.PeriodSummary, 12)
	for i := range monthly {
		monthly[i] = models.PeriodSummary{Period: "2025-01", Income: decimal.Zero, Expense: decimal.Zero, Net: decimal.Zero}
	}
	monthly[0].Income = decimal.RequireFromString("1500.25")
	r := Report{
		Year:    2025,
		Monthly: monthly,
		Breakdown: []models.CategoryTotal{
			{CategoryID: &food, CategoryLabel: "Food", Total: decimal.NewFromInt(40)},
			{CategoryLabel: "Uncategorized", Total: decimal.NewFromInt(7)},
		},
		Accounts: []models.Account{
			{ID: "a", Name: "Wallet", Type: models.AccountCash, Status: models.AccountActive, Currency: "PHP", Balance: decimal.NewFromInt(10)},
		},
	}

	// Writing twice replaces the file instead of failing on existing tables.
	for i := 0; i < 2; i++ {
		if err := Write(ctx, path, r); err != nil {
			t.Fatalf("write %d: %v", i, err)
		}
	}

	conn, err := sql.Open("duckdb", path)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	counts := map[string]int{"monthly_summary": 12, "expense_breakdown": 2, "account_balances": 1}
	for table, want := range counts {
		var n int
		if err := conn.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n); err != nil {
			t.Fatalf("count %s: %v", table, err)
		}
		if n != want {
			t.Errorf("%s rows = %d, want %d", table, n, want)
		}
	}

	var total string
	if err := conn.QueryRow("SELECT CAST(SUM(income) AS VARCHAR) FROM monthly_summary").Scan(&total); err != nil {
		t.Fatal(err)
	}
	if !decimal.RequireFromString(total).Equal(decimal.RequireFromString("1500.25")) {
		t.Errorf("income sum = %s, want 1500.25", total)
	}

	var nulls int
	if err := conn.QueryRow("SELECT COUNT(*) FROM expense_breakdown WHERE category_id IS NULL").Scan(&nulls); err != nil {
		t.Fatal(err)
	}
	if nulls != 1 {
		t.Errorf("uncategorized rows = %d, want 1", nulls)
	}
}
