package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/satheeshds/fintrack/auth"
	"github.com/satheeshds/fintrack/config"
	"github.com/satheeshds/fintrack/db"
	"github.com/satheeshds/fintrack/events"
	"github.com/satheeshds/fintrack/ledger"
	"github.com/satheeshds/fintrack/models"
)

var fixedNow = time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)

type recorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recorder) Publish(_ context.Context, e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recorder) Close() error { return nil }

func (r *recorder) types() []events.Type {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []events.Type
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

type testServer struct {
	t      *testing.T
	srv    *httptest.Server
	events *recorder
	token  string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	cfg := &config.Config{DBDriver: config.DriverSQLite, DBPath: filepath.Join(t.TempDir(), "api.db")}
	conn, err := db.Open(cfg)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	if err := db.Migrate(context.Background(), conn, cfg.DBDriver); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	store := db.NewStore(conn, cfg.DBDriver)
	clock := func() time.Time { return fixedNow }
	engine := ledger.NewEngine(store, ledger.WithClock(clock))
	authSvc := auth.NewService(store, auth.WithCost(bcrypt.MinCost))
	rec := &recorder{}
	h := New(store, engine, authSvc, rec, Options{DefaultCurrency: "PHP", Now: clock})

	srv := httptest.NewServer(h.Routes())
	t.Cleanup(srv.Close)
	return &testServer{t: t, srv: srv, events: rec}
}

// do sends body as JSON and decodes the envelope's data into out when non-nil.
func (s *testServer) do(method, path string, body any, out any) (int, Response) {
	s.t.Helper()
	var rdr bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&rdr).Encode(body); err != nil {
			s.t.Fatal(err)
		}
	}
	req, err := http.NewRequest(method, s.srv.URL+path, &rdr)
	if err != nil {
		s.t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		s.t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	var env struct {
		Data  json.RawMessage `json:"data"`
		Error string          `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		s.t.Fatalf("%s %s: decode: %v", method, path, err)
	}
	if out != nil && resp.StatusCode < 300 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			s.t.Fatalf("%s %s: decode data: %v", method, path, err)
		}
	}
	return resp.StatusCode, Response{Data: env.Data, Error: env.Error}
}

func (s *testServer) mustDo(method, path string, body any, want int, out any) {
	s.t.Helper()
	if code, resp := s.do(method, path, body, out); code != want {
		s.t.Fatalf("%s %s = %d (%s), want %d", method, path, code, resp.Error, want)
	}
}

func (s *testServer) signIn(email string) {
	s.t.Helper()
	s.token = ""
	s.mustDo(http.MethodPost, "/auth/register", map[string]string{
		"first_name": "Ana", "last_name": "Reyes", "email": email, "password": "correct-horse",
	}, http.StatusCreated, nil)

	var login loginResponse
	s.mustDo(http.MethodPost, "/auth/login", map[string]string{
		"email": email, "password": "correct-horse",
	}, http.StatusOK, &login)
	if login.Token == "" {
		s.t.Fatal("login returned no token")
	}
	s.token = login.Token
}

func (s *testServer) account(name, initial string) models.Account {
	s.t.Helper()
	var a models.Account
	s.mustDo(http.MethodPost, "/accounts", map[string]any{
		"name": name, "type": "BANK", "initial_amount": initial,
	}, http.StatusCreated, &a)
	return a
}

func (s *testServer) balance(id string) decimal.Decimal {
	s.t.Helper()
	var b models.Balance
	s.mustDo(http.MethodGet, "/accounts/"+id+"/balance", nil, http.StatusOK, &b)
	return b.Balance
}

func (s *testServer) expenseCategory(name string) models.Category {
	s.t.Helper()
	var cats []models.Category
	s.mustDo(http.MethodGet, "/categories?type=EXPENSE", nil, http.StatusOK, &cats)
	for _, c := range cats {
		if c.Name == name {
			return c
		}
	}
	s.t.Fatalf("no expense category %q", name)
	return models.Category{}
}

func TestAuthFlow(t *testing.T) {
	s := newTestServer(t)

	code, _ := s.do(http.MethodGet, "/accounts", nil, nil)
	if code != http.StatusUnauthorized {
		t.Fatalf("no token: status = %d, want 401", code)
	}

	s.signIn("ana@example.com")

	code, resp := s.do(http.MethodPost, "/auth/register", map[string]string{
		"first_name": "Ana", "last_name": "Reyes", "email": "ANA@example.com", "password": "correct-horse",
	}, nil)
	if code != http.StatusConflict {
		t.Errorf("duplicate register = %d (%s), want 409", code, resp.Error)
	}

	saved := s.token
	s.token = ""
	code, _ = s.do(http.MethodPost, "/auth/login", map[string]string{
		"email": "ana@example.com", "password": "wrong-password",
	}, nil)
	if code != http.StatusUnauthorized {
		t.Errorf("bad password = %d, want 401", code)
	}
	s.token = saved

	var me models.User
	s.mustDo(http.MethodGet, "/auth/me", nil, http.StatusOK, &me)
	if me.Email != "ana@example.com" {
		t.Errorf("me = %+v", me)
	}

	s.mustDo(http.MethodPost, "/auth/logout", nil, http.StatusOK, nil)
	if code, _ := s.do(http.MethodGet, "/auth/me", nil, nil); code != http.StatusUnauthorized {
		t.Errorf("after logout = %d, want 401", code)
	}
}

func TestRegisterValidation(t *testing.T) {
	s := newTestServer(t)
	tests := []struct {
		name string
		body map[string]string
	}{
		{"missing first name", map[string]string{"last_name": "R", "email": "a@b.co", "password": "12345678"}},
		{"bad email", map[string]string{"first_name": "A", "last_name": "R", "email": "nope", "password": "12345678"}},
		{"short password", map[string]string{"first_name": "A", "last_name": "R", "email": "a@b.co", "password": "short"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if code, _ := s.do(http.MethodPost, "/auth/register", tt.body, nil); code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", code)
			}
		})
	}
}

func TestTransactionsAndBalances(t *testing.T) {
	s := newTestServer(t)
	s.signIn("ana@example.com")

	wallet := s.account("Wallet", "1000")
	bank := s.account("Bank", "0")
	food := s.expenseCategory("Food")

	s.mustDo(http.MethodPost, "/transactions", map[string]any{
		"account_id": wallet.ID, "amount": "500", "type": "income", "date": "2025-06-01",
	}, http.StatusCreated, nil)
	s.mustDo(http.MethodPost, "/transactions", map[string]any{
		"account_id": wallet.ID, "amount": "200", "type": "EXPENSE", "category_id": food.ID, "date": "2025-06-02",
	}, http.StatusCreated, nil)

	var tr models.Transaction
	s.mustDo(http.MethodPost, "/transfers", map[string]any{
		"from_account_id": wallet.ID, "to_account_id": bank.ID, "amount": "300", "date": "2025-06-03",
	}, http.StatusCreated, &tr)
	if tr.Type != models.TypeTransfer || tr.ToAccountID == nil || *tr.ToAccountID != bank.ID {
		t.Fatalf("transfer = %+v", tr)
	}

	if got := s.balance(wallet.ID); !got.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("wallet balance = %s, want 1000", got)
	}
	if got := s.balance(bank.ID); !got.Equal(decimal.NewFromInt(300)) {
		t.Errorf("bank balance = %s, want 300", got)
	}

	var flow models.CashFlow
	s.mustDo(http.MethodGet, "/analytics/cashflow", nil, http.StatusOK, &flow)
	if !flow.Income.Equal(decimal.NewFromInt(500)) || !flow.Expense.Equal(decimal.NewFromInt(200)) {
		t.Errorf("cash flow = %+v, transfers must not count", flow)
	}

	var bankTxns []models.Transaction
	s.mustDo(http.MethodGet, "/accounts/"+bank.ID+"/transactions", nil, http.StatusOK, &bankTxns)
	if len(bankTxns) != 1 || bankTxns[0].ID != tr.ID {
		t.Errorf("bank transactions = %+v", bankTxns)
	}

	s.mustDo(http.MethodDelete, "/transactions/"+tr.ID, nil, http.StatusOK, nil)
	if got := s.balance(bank.ID); !got.IsZero() {
		t.Errorf("bank balance after delete = %s, want 0", got)
	}

	want := []events.Type{events.TransactionCreated, events.TransactionCreated, events.TransferCreated, events.TransactionDeleted}
	got := s.events.types()
	if len(got) != len(want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event %d = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestTransactionPreconditions(t *testing.T) {
	s := newTestServer(t)
	s.signIn("ana@example.com")

	a := s.account("A", "100")
	b := s.account("B", "0")

	if code, _ := s.do(http.MethodPost, "/transfers", map[string]any{
		"from_account_id": a.ID, "to_account_id": a.ID, "amount": "10",
	}, nil); code != http.StatusBadRequest {
		t.Errorf("same-account transfer = %d, want 400", code)
	}
	if code, _ := s.do(http.MethodPost, "/transactions", map[string]any{
		"account_id": a.ID, "amount": "-5", "type": "EXPENSE",
	}, nil); code != http.StatusBadRequest {
		t.Errorf("negative amount = %d, want 400", code)
	}
	for _, amount := range []string{"0.00001", "12.34567"} {
		code, resp := s.do(http.MethodPost, "/transactions", map[string]any{
			"account_id": a.ID, "amount": amount, "type": "EXPENSE",
		}, nil)
		if code != http.StatusBadRequest {
			t.Errorf("amount %s = %d (%s), want 400", amount, code, resp.Error)
		}
	}
	if code, _ := s.do(http.MethodPost, "/transfers", map[string]any{
		"from_account_id": a.ID, "to_account_id": b.ID, "amount": "0.00001",
	}, nil); code != http.StatusBadRequest {
		t.Errorf("transfer below the smallest unit = %d, want 400", code)
	}
	if got := s.balance(a.ID); !got.Equal(decimal.NewFromInt(100)) {
		t.Errorf("balance after rejected amounts = %s, want 100", got)
	}

	s.mustDo(http.MethodPost, "/transactions", map[string]any{
		"account_id": b.ID, "amount": "10", "type": "INCOME",
	}, http.StatusCreated, nil)
	if code, _ := s.do(http.MethodDelete, "/accounts/"+b.ID, nil, nil); code != http.StatusConflict {
		t.Errorf("delete with history = %d, want 409", code)
	}

	var archived models.Account
	s.mustDo(http.MethodPost, "/accounts/"+b.ID+"/archive", nil, http.StatusOK, &archived)
	if archived.Status != models.AccountArchived {
		t.Errorf("status = %s", archived.Status)
	}
	if code, _ := s.do(http.MethodPost, "/transfers", map[string]any{
		"from_account_id": a.ID, "to_account_id": b.ID, "amount": "10",
	}, nil); code != http.StatusConflict {
		t.Errorf("transfer to archived = %d, want 409", code)
	}
	if got := s.balance(b.ID); !got.Equal(decimal.NewFromInt(10)) {
		t.Errorf("archived balance = %s, want 10", got)
	}

	var nw models.NetWorth
	s.mustDo(http.MethodGet, "/analytics/networth", nil, http.StatusOK, &nw)
	if !nw.Total.Equal(decimal.NewFromInt(110)) {
		t.Errorf("net worth = %s, want 110 including archived", nw.Total)
	}
}

func TestOwnerIsolation(t *testing.T) {
	s := newTestServer(t)
	s.signIn("ana@example.com")
	mine := s.account("Mine", "50")

	s.signIn("ben@example.com")
	if code, _ := s.do(http.MethodGet, "/accounts/"+mine.ID, nil, nil); code != http.StatusNotFound {
		t.Errorf("other owner's account = %d, want 404", code)
	}
	if code, _ := s.do(http.MethodPost, "/transactions", map[string]any{
		"account_id": mine.ID, "amount": "5", "type": "EXPENSE",
	}, nil); code != http.StatusNotFound {
		t.Errorf("spend from other owner's account = %d, want 404", code)
	}
	var accounts []models.Account
	s.mustDo(http.MethodGet, "/accounts", nil, http.StatusOK, &accounts)
	if len(accounts) != 0 {
		t.Errorf("accounts = %+v, want none", accounts)
	}
}

func TestAnalytics(t *testing.T) {
	s := newTestServer(t)
	s.signIn("ana@example.com")
	a := s.account("Wallet", "0")
	food := s.expenseCategory("Food")
	transport := s.expenseCategory("Transport")

	for _, tx := range []map[string]any{
		{"account_id": a.ID, "amount": "1000", "type": "INCOME", "date": "2025-01-10"},
		{"account_id": a.ID, "amount": "120", "type": "EXPENSE", "category_id": food.ID, "date": "2025-03-05"},
		{"account_id": a.ID, "amount": "80", "type": "EXPENSE", "category_id": transport.ID, "date": "2025-03-06"},
		{"account_id": a.ID, "amount": "30", "type": "EXPENSE", "date": "2025-03-07"},
		{"account_id": a.ID, "amount": "400", "type": "INCOME", "date": "2023-07-01"},
	} {
		s.mustDo(http.MethodPost, "/transactions", tx, http.StatusCreated, nil)
	}

	var monthly []models.PeriodSummary
	s.mustDo(http.MethodGet, "/analytics/monthly?year=2025", nil, http.StatusOK, &monthly)
	if len(monthly) != 12 {
		t.Fatalf("monthly rows = %d, want 12", len(monthly))
	}
	if monthly[0].Period != "2025-01" || !monthly[0].Income.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("january = %+v", monthly[0])
	}
	if !monthly[2].Expense.Equal(decimal.NewFromInt(230)) {
		t.Errorf("march expense = %s, want 230", monthly[2].Expense)
	}
	if !monthly[5].Net.IsZero() {
		t.Errorf("june net = %s, want 0", monthly[5].Net)
	}

	var breakdown []models.CategoryTotal
	s.mustDo(http.MethodGet, "/analytics/breakdown?from=2025-03-01&to=2025-03-31", nil, http.StatusOK, &breakdown)
	wantLabels := []string{"Food", "Transport", ledger.UncategorizedLabel}
	if len(breakdown) != len(wantLabels) {
		t.Fatalf("breakdown = %+v", breakdown)
	}
	for i, l := range wantLabels {
		if breakdown[i].CategoryLabel != l {
			t.Errorf("row %d = %s, want %s", i, breakdown[i].CategoryLabel, l)
		}
	}
	if breakdown[2].CategoryID != nil {
		t.Errorf("uncategorized row has id %v", *breakdown[2].CategoryID)
	}

	var yearly []struct {
		Period int             `json:"period"`
		Net    decimal.Decimal `json:"net"`
	}
	s.mustDo(http.MethodGet, "/analytics/yearly?years=2", nil, http.StatusOK, &yearly)
	if len(yearly) != 3 || yearly[0].Period != 2023 || yearly[2].Period != 2025 {
		t.Fatalf("yearly = %+v", yearly)
	}
	if !yearly[0].Net.Equal(decimal.NewFromInt(400)) || !yearly[1].Net.IsZero() || !yearly[2].Net.Equal(decimal.NewFromInt(770)) {
		t.Errorf("yearly nets = %+v", yearly)
	}

	tests := []struct {
		path string
		want int
	}{
		{"/analytics/yearly?years=-1", http.StatusBadRequest},
		{"/analytics/monthly?year=abc", http.StatusBadRequest},
		{"/analytics/cashflow?from=2025-05-01&to=2025-04-01", http.StatusBadRequest},
		{"/analytics/breakdown?from=yesterday", http.StatusBadRequest},
	}
	for _, tt := range tests {
		if code, _ := s.do(http.MethodGet, tt.path, nil, nil); code != tt.want {
			t.Errorf("GET %s = %d, want %d", tt.path, code, tt.want)
		}
	}

	var dash models.Dashboard
	s.mustDo(http.MethodGet, "/dashboard", nil, http.StatusOK, &dash)
	if !dash.TotalBalance.Equal(decimal.NewFromInt(1170)) || len(dash.RecentTransactions) != 5 {
		t.Errorf("dashboard = balance %s, %d recent", dash.TotalBalance, len(dash.RecentTransactions))
	}
}

func TestBudgetsAndGoals(t *testing.T) {
	s := newTestServer(t)
	s.signIn("ana@example.com")
	a := s.account("Savings", "0")
	food := s.expenseCategory("Food")

	var budget models.BudgetStatus
	s.mustDo(http.MethodPost, "/budgets", map[string]any{
		"category_id": food.ID, "month": "2025-06", "amount": "100",
	}, http.StatusCreated, &budget)
	if !budget.Spent.IsZero() || budget.Utilization != 0 {
		t.Errorf("new budget = %+v", budget)
	}
	if code, _ := s.do(http.MethodPost, "/budgets", map[string]any{
		"category_id": food.ID, "month": "2025-06", "amount": "50",
	}, nil); code != http.StatusConflict {
		t.Errorf("duplicate budget = %d, want 409", code)
	}

	s.mustDo(http.MethodPost, "/transactions", map[string]any{
		"account_id": a.ID, "amount": "150", "type": "EXPENSE", "category_id": food.ID, "date": "2025-06-20",
	}, http.StatusCreated, nil)
	s.mustDo(http.MethodPost, "/transactions", map[string]any{
		"account_id": a.ID, "amount": "40", "type": "EXPENSE", "category_id": food.ID, "date": "2025-07-01",
	}, http.StatusCreated, nil)

	s.mustDo(http.MethodGet, "/budgets/"+budget.ID, nil, http.StatusOK, &budget)
	if !budget.Spent.Equal(decimal.NewFromInt(150)) || budget.Utilization != 1.5 || !budget.IsOver {
		t.Errorf("budget status = spent %s, utilization %v, over %v", budget.Spent, budget.Utilization, budget.IsOver)
	}

	s.mustDo(http.MethodPost, "/transactions", map[string]any{
		"account_id": a.ID, "amount": "1000", "type": "INCOME", "date": "2025-06-01",
	}, http.StatusCreated, nil)

	var goal models.Goal
	s.mustDo(http.MethodPost, "/goals", map[string]any{
		"name": "Trip", "target_amount": "500", "linked_account_id": a.ID, "deadline": "2025-12-31",
	}, http.StatusCreated, &goal)
	s.mustDo(http.MethodPost, "/goals/"+goal.ID+"/sync", nil, http.StatusOK, &goal)
	if !goal.CurrentAmount.Equal(decimal.NewFromInt(500)) {
		t.Errorf("synced goal = %s, want clamped to 500", goal.CurrentAmount)
	}

	if code, _ := s.do(http.MethodPost, "/goals/missing/sync", nil, nil); code != http.StatusNotFound {
		t.Errorf("sync missing goal = %d, want 404", code)
	}
}
