package main

//go:generate swag init

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/shopspring/decimal"
	httpSwagger "github.com/swaggo/http-swagger"
	"github.com/swaggo/swag/v2"

	"github.com/satheeshds/fintrack/auth"
	"github.com/satheeshds/fintrack/config"
	"github.com/satheeshds/fintrack/db"
	_ "github.com/satheeshds/fintrack/docs"
	"github.com/satheeshds/fintrack/events"
	"github.com/satheeshds/fintrack/handlers"
	"github.com/satheeshds/fintrack/ledger"
)

const sessionPruneInterval = time.Hour

// @title           Personal Finance Ledger API
// @version         1.0.0
// @description     API for tracking accounts, income, expenses, transfers, budgets and savings goals.
// @host            localhost:8080
// @BasePath        /api/v1
// @securityDefinitions.apikey  SessionToken
// @in                          header
// @name                        Authorization

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	level, _ := cfg.SlogLevel()
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})))

	if err := run(cfg); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Amounts go over the wire as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true

	database, err := db.Open(cfg)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer database.Close()

	if err := db.Migrate(ctx, database, cfg.DBDriver); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	store := db.NewStore(database, cfg.DBDriver)
	engine := ledger.NewEngine(store,
		ledger.WithLocation(cfg.Location()),
		ledger.WithDefaultCurrency(cfg.DefaultCurrency),
	)
	authSvc := auth.NewService(store, auth.WithSessionTTL(cfg.SessionTTL))
	go authSvc.PruneEvery(ctx, sessionPruneInterval)

	publisher := newPublisher(cfg)
	defer publisher.Close()

	h := handlers.New(store, engine, authSvc, publisher, handlers.Options{
		DefaultCurrency: cfg.DefaultCurrency,
		CookieSecure:    cfg.CookieSecure,
	})

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Mount("/api/v1", h.Routes())

	// Swagger UI
	r.Get("/swagger/doc.json", func(w http.ResponseWriter, r *http.Request) {
		doc, err := swag.ReadDoc()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(doc))
	})
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// newPublisher connects to the broker when one is configured. The API keeps
// serving without events if the broker is unreachable.
func newPublisher(cfg *config.Config) events.Publisher {
	if cfg.AMQPURL == "" {
		return events.Nop{}
	}
	client, err := events.NewClient(cfg.AMQPURL, cfg.AMQPExchange)
	if err != nil {
		slog.Warn("event broker unavailable, events disabled", "error", err)
		return events.Nop{}
	}
	slog.Info("publishing events", "exchange", cfg.AMQPExchange)
	return client
}
