package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/satheeshds/fintrack/auth"
	"github.com/satheeshds/fintrack/db"
	"github.com/satheeshds/fintrack/events"
	"github.com/satheeshds/fintrack/ledger"
	"github.com/satheeshds/fintrack/models"
)

const (
	defaultPageSize = 50
	maxPageSize     = 100
	recentLimit     = 15
)

// Handler serves the JSON API. Dependencies are injected once in main.
type Handler struct {
	store           *db.Store
	engine          *ledger.Engine
	auth            *auth.Service
	events          events.Publisher
	defaultCurrency string
	cookieSecure    bool
	now             func() time.Time
}

type Options struct {
	DefaultCurrency string
	CookieSecure    bool
	Now             func() time.Time
}

func New(store *db.Store, engine *ledger.Engine, authSvc *auth.Service, pub events.Publisher, opts Options) *Handler {
	h := &Handler{
		store:           store,
		engine:          engine,
		auth:            authSvc,
		events:          pub,
		defaultCurrency: opts.DefaultCurrency,
		cookieSecure:    opts.CookieSecure,
		now:             opts.Now,
	}
	if h.events == nil {
		h.events = events.Nop{}
	}
	if h.defaultCurrency == "" {
		h.defaultCurrency = ledger.DefaultCurrency
	}
	if h.now == nil {
		h.now = time.Now
	}
	return h
}

// Routes returns the API router, meant to be mounted at /api/v1.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/healthz", h.Health)
	r.Post("/auth/register", h.Register)
	r.Post("/auth/login", h.Login)

	r.Group(func(r chi.Router) {
		r.Use(h.RequireSession)

		r.Post("/auth/logout", h.Logout)
		r.Get("/auth/me", h.Me)

		// Accounts
		r.Get("/accounts", h.ListAccounts)
		r.Post("/accounts", h.CreateAccount)
		r.Get("/accounts/{id}", h.GetAccount)
		r.Patch("/accounts/{id}", h.UpdateAccount)
		r.Delete("/accounts/{id}", h.DeleteAccount)
		r.Post("/accounts/{id}/archive", h.ArchiveAccount)
		r.Get("/accounts/{id}/balance", h.GetAccountBalance)
		r.Get("/accounts/{id}/transactions", h.ListAccountTransactions)

		// Transactions
		r.Get("/transactions", h.ListTransactions)
		r.Post("/transactions", h.CreateTransaction)
		r.Get("/transactions/{id}", h.GetTransaction)
		r.Patch("/transactions/{id}", h.UpdateTransaction)
		r.Delete("/transactions/{id}", h.DeleteTransaction)
		r.Post("/transfers", h.CreateTransfer)

		// Categories
		r.Get("/categories", h.ListCategories)
		r.Post("/categories", h.CreateCategory)
		r.Patch("/categories/{id}", h.UpdateCategory)

		// Budgets
		r.Get("/budgets", h.ListBudgets)
		r.Post("/budgets", h.CreateBudget)
		r.Get("/budgets/{id}", h.GetBudget)
		r.Patch("/budgets/{id}", h.UpdateBudget)
		r.Delete("/budgets/{id}", h.DeleteBudget)

		// Goals
		r.Get("/goals", h.ListGoals)
		r.Post("/goals", h.CreateGoal)
		r.Get("/goals/{id}", h.GetGoal)
		r.Patch("/goals/{id}", h.UpdateGoal)
		r.Delete("/goals/{id}", h.DeleteGoal)
		r.Post("/goals/{id}/sync", h.SyncGoal)

		// Analytics
		r.Get("/analytics/cashflow", h.GetCashFlow)
		r.Get("/analytics/breakdown", h.GetExpenseBreakdown)
		r.Get("/analytics/monthly", h.GetMonthlySummary)
		r.Get("/analytics/yearly", h.GetYearlySummary)
		r.Get("/analytics/networth", h.GetNetWorth)

		r.Get("/dashboard", h.GetDashboard)
	})

	return r
}

// Health reports whether the database is reachable.
// @Summary      Health check
// @Tags         health
// @Produce      json
// @Success      200  {object}  Response{data=map[string]string}
// @Failure      503  {object}  Response{error=string}
// @Router       /healthz [get]
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Ping(r.Context()); err != nil {
		slog.ErrorContext(r.Context(), "health check failed", "error", err)
		writeError(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// publish sends e and only logs failures; a broker outage never fails a write
// that already committed.
func (h *Handler) publish(ctx context.Context, e events.Event) {
	if err := h.events.Publish(context.WithoutCancel(ctx), e); err != nil {
		slog.WarnContext(ctx, "failed to publish event", "type", e.Type, "entity_id", e.EntityID, "error", err)
	}
}

func (h *Handler) today() time.Time {
	return h.now().In(h.engine.Location())
}

// parseBound reads a from/to query value. A bare day used as an upper bound
// covers that whole day.
func (h *Handler) parseBound(s string, upper bool) (time.Time, error) {
	loc := h.engine.Location()
	if day, err := time.ParseInLocation(models.DateLayout, s, loc); err == nil {
		if upper {
			return day.AddDate(0, 0, 1).Add(-time.Nanosecond), nil
		}
		return day, nil
	}
	return models.ParseDate(s, loc)
}

// dateRange reads from/to, defaulting to the current calendar month.
func (h *Handler) dateRange(r *http.Request) (ledger.DateRange, error) {
	today := h.today()
	rng := ledger.MonthRange(today.Year(), today.Month(), h.engine.Location())
	q := r.URL.Query()
	if s := q.Get("from"); s != "" {
		t, err := h.parseBound(s, false)
		if err != nil {
			return ledger.DateRange{}, err
		}
		rng.From = t
	}
	if s := q.Get("to"); s != "" {
		t, err := h.parseBound(s, true)
		if err != nil {
			return ledger.DateRange{}, err
		}
		rng.To = t
	}
	if rng.From.After(rng.To) {
		return ledger.DateRange{}, fmt.Errorf("from must not be after to")
	}
	return rng, nil
}

// pagination reads page (1-based) and page_size into a limit and offset.
func pagination(r *http.Request) (limit, offset int, err error) {
	q := r.URL.Query()
	page, size := 1, defaultPageSize
	if s := q.Get("page"); s != "" {
		if page, err = strconv.Atoi(s); err != nil || page < 1 {
			return 0, 0, fmt.Errorf("page must be a positive integer")
		}
	}
	if s := q.Get("page_size"); s != "" {
		if size, err = strconv.Atoi(s); err != nil || size < 1 || size > maxPageSize {
			return 0, 0, fmt.Errorf("page_size must be between 1 and %d", maxPageSize)
		}
	}
	return size, (page - 1) * size, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
