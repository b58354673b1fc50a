package ledger

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/satheeshds/fintrack/models"
)

// DefaultCurrency is reported for accounts that cannot be resolved.
const DefaultCurrency = "PHP"

// Engine computes balances and reports over an injected Store.
type Engine struct {
	store           Store
	loc             *time.Location
	now             func() time.Time
	defaultCurrency string
	parallelism     int
}

// Option configures an Engine.
type Option func(*Engine)

// WithLocation sets the time zone that calendar months and years are cut in.
func WithLocation(loc *time.Location) Option {
	return func(e *Engine) {
		if loc != nil {
			e.loc = loc
		}
	}
}

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithDefaultCurrency sets the currency reported for unknown accounts.
func WithDefaultCurrency(c string) Option {
	return func(e *Engine) {
		if c != "" {
			e.defaultCurrency = c
		}
	}
}

// WithParallelism bounds concurrent per-account balance reads.
func WithParallelism(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.parallelism = n
		}
	}
}

func NewEngine(store Store, opts ...Option) *Engine {
	e := &Engine{
		store:           store,
		loc:             time.UTC,
		now:             time.Now,
		defaultCurrency: DefaultCurrency,
		parallelism:     4,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Location returns the zone reports are computed in.
func (e *Engine) Location() *time.Location {
	return e.loc
}

// AccountBalance derives the balance of one account. An account that does not
// exist for userID yields a zero balance in the default currency, not an error;
// callers that care about existence check it first.
func (e *Engine) AccountBalance(ctx context.Context, userID, accountID string) (models.Balance, error) {
	acc, err := e.store.GetAccount(ctx, userID, accountID)
	if errors.Is(err, ErrNotFound) {
		return models.Balance{Balance: decimal.Zero, Currency: e.defaultCurrency}, nil
	}
	if err != nil {
		return models.Balance{}, fmt.Errorf("get account: %w", err)
	}
	return e.balanceOf(ctx, acc)
}

func (e *Engine) balanceOf(ctx context.Context, acc models.Account) (models.Balance, error) {
	from, to, err := e.store.AccountTransactions(ctx, acc.ID)
	if err != nil {
		return models.Balance{}, fmt.Errorf("account %s transactions: %w", acc.ID, err)
	}
	return ComputeBalance(acc, from, to), nil
}

// AccountsWithBalances lists the owner's accounts, archived included, with
// Balance filled in. Balances are read concurrently; one failure fails the call.
func (e *Engine) AccountsWithBalances(ctx context.Context, userID string) ([]models.Account, error) {
	accounts, err := e.store.ListAccounts(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.parallelism)
	for i := range accounts {
		i := i
		g.Go(func() error {
			b, err := e.balanceOf(gctx, accounts[i])
			if err != nil {
				return err
			}
			accounts[i].Balance = b.Balance
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return accounts, nil
}

// NetWorth sums the balance of every account the owner has, active or archived.
// Currencies are not converted; see models.NetWorth.MixedCurrency.
func (e *Engine) NetWorth(ctx context.Context, userID string) (models.NetWorth, error) {
	accounts, err := e.AccountsWithBalances(ctx, userID)
	if err != nil {
		return models.NetWorth{}, err
	}

	total := decimal.Zero
	seen := map[string]bool{}
	currencies := []string{}
	for _, a := range accounts {
		total = total.Add(a.Balance)
		if !seen[a.Currency] {
			seen[a.Currency] = true
			currencies = append(currencies, a.Currency)
		}
	}
	sort.Strings(currencies)
	return models.NetWorth{Total: total, Currencies: currencies}, nil
}

// Dashboard gathers the overview figures: total balance across accounts,
// all-time cash flow and the most recent transactions.
func (e *Engine) Dashboard(ctx context.Context, userID string, recent int) (models.Dashboard, error) {
	var (
		accounts []models.Account
		all      []models.Transaction
		latest   []models.Transaction
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		accounts, err = e.AccountsWithBalances(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		all, err = e.store.ListTransactions(gctx, models.TransactionFilter{UserID: userID})
		if err != nil {
			return fmt.Errorf("list transactions: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		latest, err = e.store.ListTransactions(gctx, models.TransactionFilter{UserID: userID, Limit: recent})
		if err != nil {
			return fmt.Errorf("list recent transactions: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return models.Dashboard{}, err
	}

	total := decimal.Zero
	for _, a := range accounts {
		total = total.Add(a.Balance)
	}
	flow := SumCashFlow(all)

	return models.Dashboard{
		TotalBalance:       total,
		TotalIncome:        flow.Income,
		TotalExpense:       flow.Expense,
		NetCashFlow:        flow.Net,
		Accounts:           accounts,
		RecentTransactions: latest,
	}, nil
}
