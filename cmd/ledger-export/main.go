package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/satheeshds/fintrack/config"
	"github.com/satheeshds/fintrack/db"
	"github.com/satheeshds/fintrack/export"
	"github.com/satheeshds/fintrack/ledger"
)

func main() {
	owner := flag.String("owner", "", "email of the user to export")
	year := flag.Int("year", time.Now().Year(), "calendar year to export")
	out := flag.String("out", "report.duckdb", "DuckDB file to write")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	if err := run(context.Background(), *owner, *year, *out); err != nil {
		slog.Error("export failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, owner string, year int, out string) error {
	if owner == "" {
		return fmt.Errorf("-owner is required")
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return err
	}

	conn, err := db.Open(cfg)
	if err != nil {
		return err
	}
	defer conn.Close()
	if err := db.Migrate(ctx, conn, cfg.DBDriver); err != nil {
		return err
	}

	store := db.NewStore(conn, cfg.DBDriver)
	user, err := store.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(owner)))
	if err != nil {
		return fmt.Errorf("owner %s: %w", owner, err)
	}

	engine := ledger.NewEngine(store,
		ledger.WithLocation(cfg.Location()),
		ledger.WithDefaultCurrency(cfg.DefaultCurrency))
	report, err := export.Build(ctx, engine, user.ID, year)
	if err != nil {
		return err
	}
	return export.Write(ctx, out, report)
}
