// Package export writes ledger reports into a DuckDB file for offline analysis.
package export

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/satheeshds/fintrack/ledger"
	"github.com/satheeshds/fintrack/models"
)

// Report is one owner's figures for a calendar year.
type Report struct {
	Year      int
	Monthly   []models.PeriodSummary
	Breakdown []models.CategoryTotal
	Accounts  []models.Account
}

// Build computes the report for userID and year with the engine.
func Build(ctx context.Context, e *ledger.Engine, userID string, year int) (Report, error) {
	monthly, err := e.MonthlySummary(ctx, userID, year)
	if err != nil {
		return Report{}, fmt.Errorf("monthly summary: %w", err)
	}
	breakdown, err := e.ExpenseBreakdown(ctx, userID, ledger.YearRange(year, e.Location()))
	if err != nil {
		return Report{}, fmt.Errorf("expense breakdown: %w", err)
	}
	accounts, err := e.AccountsWithBalances(ctx, userID)
	if err != nil {
		return Report{}, fmt.Errorf("account balances: %w", err)
	}
	return Report{Year: year, Monthly: monthly, Breakdown: breakdown, Accounts: accounts}, nil
}

var schema = []string{
	`CREATE TABLE monthly_summary (
		year INTEGER NOT NULL,
		period VARCHAR NOT NULL,
		income DECIMAL(19,4) NOT NULL,
		expense DECIMAL(19,4) NOT NULL,
		net DECIMAL(19,4) NOT NULL
	)`,
	`CREATE TABLE expense_breakdown (
		year INTEGER NOT NULL,
		category_id VARCHAR,
		category_label VARCHAR NOT NULL,
		total DECIMAL(19,4) NOT NULL
	)`,
	`CREATE TABLE account_balances (
		account_id VARCHAR NOT NULL,
		name VARCHAR NOT NULL,
		type VARCHAR NOT NULL,
		status VARCHAR NOT NULL,
		currency VARCHAR NOT NULL,
		balance DECIMAL(19,4) NOT NULL
	)`,
}

// Write replaces path with a DuckDB database holding r.
func Write(ctx context.Context, path string, r Report) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove old export: %w", err)
	}

	conn, err := sql.Open("duckdb", path)
	if err != nil {
		return fmt.Errorf("open duckdb: %w", err)
	}
	defer conn.Close()

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range schema {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}

	for _, m := range r.Monthly {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO monthly_summary VALUES (?, ?, ?, ?, ?)",
			r.Year, fmt.Sprint(m.Period), m.Income.String(), m.Expense.String(), m.Net.String()); err != nil {
			return fmt.Errorf("insert monthly row: %w", err)
		}
	}
	for _, c := range r.Breakdown {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO expense_breakdown VALUES (?, ?, ?, ?)",
			r.Year, c.CategoryID, c.CategoryLabel, c.Total.String()); err != nil {
			return fmt.Errorf("insert breakdown row: %w", err)
		}
	}
	for _, a := range r.Accounts {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO account_balances VALUES (?, ?, ?, ?, ?, ?)",
			a.ID, a.Name, string(a.Type), string(a.Status), a.Currency, a.Balance.String()); err != nil {
			return fmt.Errorf("insert account row: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	slog.Info("export written", "path", path, "year", r.Year,
		"months", len(r.Monthly), "categories", len(r.Breakdown), "accounts", len(r.Accounts))
	return nil
}
