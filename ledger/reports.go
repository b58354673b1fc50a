package ledger

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/satheeshds/fintrack/models"
)

// UncategorizedLabel names the bucket for expenses without a category.
const UncategorizedLabel = "Uncategorized"

// DateRange is an inclusive [From, To] window.
type DateRange struct {
	From time.Time
	To   time.Time
}

func (r DateRange) filter(userID string) models.TransactionFilter {
	from, to := r.From, r.To
	return models.TransactionFilter{UserID: userID, From: &from, To: &to}
}

// MonthRange covers a calendar month in loc, from its first instant to the last
// nanosecond before the next month starts.
func MonthRange(year int, month time.Month, loc *time.Location) DateRange {
	start := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	return DateRange{From: start, To: start.AddDate(0, 1, 0).Add(-time.Nanosecond)}
}

// YearRange covers a calendar year in loc.
func YearRange(year int, loc *time.Location) DateRange {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, loc)
	return DateRange{From: start, To: start.AddDate(1, 0, 0).Add(-time.Nanosecond)}
}

// CashFlow totals income and expense for the owner within r. Transfers are excluded.
func (e *Engine) CashFlow(ctx context.Context, userID string, r DateRange) (models.CashFlow, error) {
	txns, err := e.store.ListTransactions(ctx, r.filter(userID))
	if err != nil {
		return models.CashFlow{}, fmt.Errorf("list transactions: %w", err)
	}
	return SumCashFlow(txns), nil
}

// ExpenseBreakdown groups the owner's expenses within r by category, largest first.
func (e *Engine) ExpenseBreakdown(ctx context.Context, userID string, r DateRange) ([]models.CategoryTotal, error) {
	f := r.filter(userID)
	f.Type = models.TypeExpense
	txns, err := e.store.ListTransactions(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	return BreakdownByCategory(txns), nil
}

// categoryKey keeps the uncategorized bucket apart from a real category that
// happens to be named "Uncategorized".
type categoryKey struct {
	id            string
	uncategorized bool
}

// BreakdownByCategory sums EXPENSE rows per category. Rows are ordered by total
// descending; equal totals fall back to label then id so output is stable.
func BreakdownByCategory(txns []models.Transaction) []models.CategoryTotal {
	groups := map[categoryKey]*models.CategoryTotal{}
	for _, t := range txns {
		if t.Type != models.TypeExpense {
			continue
		}
		key := categoryKey{uncategorized: true}
		label := UncategorizedLabel
		if t.CategoryID != nil {
			key = categoryKey{id: *t.CategoryID}
			if t.CategoryName != nil {
				label = *t.CategoryName
			}
		}
		g, ok := groups[key]
		if !ok {
			g = &models.CategoryTotal{CategoryLabel: label, Total: decimal.Zero}
			if !key.uncategorized {
				id := key.id
				g.CategoryID = &id
			}
			groups[key] = g
		}
		g.Total = g.Total.Add(t.Amount)
	}

	rows := make([]models.CategoryTotal, 0, len(groups))
	for _, g := range groups {
		rows = append(rows, *g)
	}
	sort.Slice(rows, func(i, j int) bool {
		if c := rows[i].Total.Cmp(rows[j].Total); c != 0 {
			return c > 0
		}
		if rows[i].CategoryLabel != rows[j].CategoryLabel {
			return rows[i].CategoryLabel < rows[j].CategoryLabel
		}
		return categoryIDOf(rows[i]) < categoryIDOf(rows[j])
	})
	return rows
}

func categoryIDOf(c models.CategoryTotal) string {
	if c.CategoryID == nil {
		return ""
	}
	return *c.CategoryID
}

// MonthlySummary returns exactly twelve rows, January to December, tagged YYYY-MM.
// Months without activity are zero. The year is read once and bucketed by month.
func (e *Engine) MonthlySummary(ctx context.Context, userID string, year int) ([]models.PeriodSummary, error) {
	txns, err := e.store.ListTransactions(ctx, YearRange(year, e.loc).filter(userID))
	if err != nil {
		return nil, fmt.Errorf("list transactions for %d: %w", year, err)
	}

	var buckets [12][]models.Transaction
	for _, t := range txns {
		local := t.Date.In(e.loc)
		if local.Year() != year {
			continue
		}
		m := local.Month() - 1
		buckets[m] = append(buckets[m], t)
	}

	rows := make([]models.PeriodSummary, 0, 12)
	for m := time.January; m <= time.December; m++ {
		flow := SumCashFlow(buckets[m-1])
		rows = append(rows, models.PeriodSummary{
			Period:  fmt.Sprintf("%04d-%02d", year, int(m)),
			Income:  flow.Income,
			Expense: flow.Expense,
			Net:     flow.Net,
		})
	}
	return rows, nil
}

// ErrNegativeYears rejects a yearly summary asked to look into the future.
var ErrNegativeYears = errors.New("years must be zero or positive")

// YearlySummary returns n+1 rows for the calendar years currentYear-n through
// currentYear, ascending, tagged with the integer year.
func (e *Engine) YearlySummary(ctx context.Context, userID string, n int) ([]models.PeriodSummary, error) {
	if n < 0 {
		return nil, ErrNegativeYears
	}
	current := e.now().In(e.loc).Year()
	first := current - n

	window := DateRange{From: YearRange(first, e.loc).From, To: YearRange(current, e.loc).To}
	txns, err := e.store.ListTransactions(ctx, window.filter(userID))
	if err != nil {
		return nil, fmt.Errorf("list transactions for %d-%d: %w", first, current, err)
	}

	buckets := make([][]models.Transaction, n+1)
	for _, t := range txns {
		y := t.Date.In(e.loc).Year()
		if y < first || y > current {
			continue
		}
		buckets[y-first] = append(buckets[y-first], t)
	}

	rows := make([]models.PeriodSummary, 0, n+1)
	for i, b := range buckets {
		flow := SumCashFlow(b)
		rows = append(rows, models.PeriodSummary{
			Period:  first + i,
			Income:  flow.Income,
			Expense: flow.Expense,
			Net:     flow.Net,
		})
	}
	return rows, nil
}
