package ledger

import (
	"context"
	"sort"
	"sync"

	"github.com/satheeshds/fintrack/models"
)

// memStore is an in-memory Store with the same owner and archive checks as the
// database implementation.
type memStore struct {
	mu       sync.Mutex
	accounts map[string]models.Account
	txns     []models.Transaction
	goals    map[string]models.Goal
	lists    int
}

func newMemStore() *memStore {
	return &memStore{accounts: map[string]models.Account{}, goals: map[string]models.Goal{}}
}

func (s *memStore) addAccount(a models.Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a.Status == "" {
		a.Status = models.AccountActive
	}
	if a.Currency == "" {
		a.Currency = "PHP"
	}
	s.accounts[a.ID] = a
}

func (s *memStore) GetAccount(_ context.Context, userID, id string) (models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[id]
	if !ok || a.UserID != userID {
		return models.Account{}, ErrNotFound
	}
	return a, nil
}

func (s *memStore) ListAccounts(_ context.Context, userID string) ([]models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Account
	for _, a := range s.accounts {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memStore) AccountTransactions(_ context.Context, accountID string) (from, to []models.Transaction, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.txns {
		if t.AccountID == accountID {
			from = append(from, t)
		}
		if t.ToAccountID != nil && *t.ToAccountID == accountID {
			to = append(to, t)
		}
	}
	return from, to, nil
}

func (s *memStore) ListTransactions(_ context.Context, f models.TransactionFilter) ([]models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lists++
	var out []models.Transaction
	for _, t := range s.txns {
		if t.UserID != f.UserID {
			continue
		}
		if f.AccountID != "" && t.AccountID != f.AccountID && (t.ToAccountID == nil || *t.ToAccountID != f.AccountID) {
			continue
		}
		if f.CategoryID != "" && (t.CategoryID == nil || *t.CategoryID != f.CategoryID) {
			continue
		}
		if f.Type != "" && t.Type != f.Type {
			continue
		}
		if f.From != nil && t.Date.Before(*f.From) {
			continue
		}
		if f.To != nil && t.Date.After(*f.To) {
			continue
		}
		out = append(out, t)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	if f.Offset > 0 {
		if f.Offset >= len(out) {
			return nil, nil
		}
		out = out[f.Offset:]
	}
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (s *memStore) InsertTransaction(_ context.Context, t models.Transaction) (models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range t.AccountIDs() {
		a, ok := s.accounts[id]
		if !ok || a.UserID != t.UserID {
			return models.Transaction{}, ErrNotFound
		}
		if a.IsArchived() {
			return models.Transaction{}, ErrAccountArchived
		}
	}
	s.txns = append(s.txns, t)
	return t, nil
}

func (s *memStore) GetGoal(_ context.Context, userID, id string) (models.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.goals[id]
	if !ok || g.UserID != userID {
		return models.Goal{}, ErrNotFound
	}
	return g, nil
}

func (s *memStore) UpdateGoal(_ context.Context, g models.Goal) (models.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.goals[g.ID]; !ok {
		return models.Goal{}, ErrNotFound
	}
	s.goals[g.ID] = g
	return g, nil
}
