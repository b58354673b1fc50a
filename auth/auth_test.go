package auth

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/satheeshds/fintrack/ledger"
	"github.com/satheeshds/fintrack/models"
)

type memUsers struct {
	mu       sync.Mutex
	users    map[string]models.User
	sessions map[string]models.Session
	defaults map[string]int
	// failDefaults makes that many EnsureDefaultCategories calls fail.
	failDefaults int
}

func newMemUsers() *memUsers {
	return &memUsers{users: map[string]models.User{}, sessions: map[string]models.Session{}, defaults: map[string]int{}}
}

func (m *memUsers) CreateUser(_ context.Context, u models.User) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return models.User{}, ledger.ErrDuplicate
		}
	}
	m.users[u.ID] = u
	return u, nil
}

func (m *memUsers) GetUser(_ context.Context, id string) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return models.User{}, ledger.ErrNotFound
	}
	return u, nil
}

func (m *memUsers) GetUserByEmail(_ context.Context, email string) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return models.User{}, ledger.ErrNotFound
}

func (m *memUsers) CreateSession(_ context.Context, s models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.Token] = s
	return nil
}

func (m *memUsers) GetSession(_ context.Context, token string) (models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[token]
	if !ok {
		return models.Session{}, ledger.ErrNotFound
	}
	return s, nil
}

func (m *memUsers) DeleteSession(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, token)
	return nil
}

func (m *memUsers) DeleteExpiredSessions(_ context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for token, s := range m.sessions {
		if s.ExpiresAt.Before(now) {
			delete(m.sessions, token)
			n++
		}
	}
	return n, nil
}

func (m *memUsers) EnsureDefaultCategories(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failDefaults > 0 {
		m.failDefaults--
		return errors.New("database is locked")
	}
	m.defaults[userID]++
	return nil
}

func registerInput() models.RegisterInput {
	in := models.RegisterInput{FirstName: "Ana", LastName: "Cruz", Email: " Ana@Example.com ", Password: "correct horse"}
	in.Validate()
	return in
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	store := newMemUsers()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	svc := NewService(store, WithCost(bcrypt.MinCost), WithClock(func() time.Time { return now }))

	u, err := svc.Register(ctx, registerInput())
	if err != nil {
		t.Fatal(err)
	}
	if u.Email != "ana@example.com" {
		t.Errorf("email = %q, want lowercased", u.Email)
	}
	if u.PasswordHash == "correct horse" || u.PasswordHash == "" {
		t.Error("password stored in clear")
	}
	if store.defaults[u.ID] != 1 {
		t.Error("default categories not created")
	}

	if _, err := svc.Register(ctx, registerInput()); !errors.Is(err, ErrEmailExists) {
		t.Errorf("second register err = %v, want ErrEmailExists", err)
	}

	sess, _, err := svc.Login(ctx, models.LoginInput{Email: "ana@example.com", Password: "correct horse"})
	if err != nil {
		t.Fatal(err)
	}
	if len(sess.Token) != 64 {
		t.Errorf("token length = %d, want 64 hex chars", len(sess.Token))
	}
	if !sess.ExpiresAt.Equal(now.Add(DefaultSessionTTL)) {
		t.Errorf("expires = %s", sess.ExpiresAt)
	}

	id, err := svc.Authenticate(ctx, sess.Token)
	if err != nil || id != u.ID {
		t.Errorf("Authenticate = %q, %v", id, err)
	}
}

func TestLoginFailures(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemUsers(), WithCost(bcrypt.MinCost))
	if _, err := svc.Register(ctx, registerInput()); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		input models.LoginInput
	}{
		{"wrong password", models.LoginInput{Email: "ana@example.com", Password: "wrong password"}},
		{"unknown email", models.LoginInput{Email: "nobody@example.com", Password: "correct horse"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := svc.Login(ctx, tt.input); !errors.Is(err, ErrInvalidCredentials) {
				t.Errorf("err = %v, want ErrInvalidCredentials", err)
			}
		})
	}
}

func TestAuthenticateExpiredAndLogout(t *testing.T) {
	ctx := context.Background()
	store := newMemUsers()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	svc := NewService(store, WithCost(bcrypt.MinCost), WithSessionTTL(time.Hour), WithClock(func() time.Time { return now }))
	if _, err := svc.Register(ctx, registerInput()); err != nil {
		t.Fatal(err)
	}
	sess, _, err := svc.Login(ctx, models.LoginInput{Email: "ana@example.com", Password: "correct horse"})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := svc.Authenticate(ctx, ""); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("empty token err = %v", err)
	}
	if _, err := svc.Authenticate(ctx, "bogus"); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("unknown token err = %v", err)
	}

	if err := svc.Logout(ctx, sess.Token); err != nil {
		t.Fatal(err)
	}
	if err := svc.Logout(ctx, sess.Token); err != nil {
		t.Errorf("second logout: %v", err)
	}
	if _, err := svc.Authenticate(ctx, sess.Token); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("logged out token err = %v", err)
	}

	sess, _, err = svc.Login(ctx, models.LoginInput{Email: "ana@example.com", Password: "correct horse"})
	if err != nil {
		t.Fatal(err)
	}
	now = now.Add(time.Hour)
	if _, err := svc.Authenticate(ctx, sess.Token); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("expired token err = %v", err)
	}
	if _, ok := store.sessions[sess.Token]; ok {
		t.Error("expired session not removed")
	}
}

func TestLoginSeedsMissingDefaults(t *testing.T) {
	ctx := context.Background()
	store := newMemUsers()
	store.failDefaults = 1
	svc := NewService(store, WithCost(bcrypt.MinCost))

	if _, err := svc.Register(ctx, registerInput()); err == nil {
		t.Fatal("register succeeded although seeding failed")
	}
	if _, err := svc.Register(ctx, registerInput()); !errors.Is(err, ErrEmailExists) {
		t.Fatalf("retry err = %v, want ErrEmailExists", err)
	}

	_, u, err := svc.Login(ctx, models.LoginInput{Email: "ana@example.com", Password: "correct horse"})
	if err != nil {
		t.Fatal(err)
	}
	if store.defaults[u.ID] != 1 {
		t.Errorf("default categories seeded %d times, want 1", store.defaults[u.ID])
	}
}

func TestPruneExpired(t *testing.T) {
	ctx := context.Background()
	store := newMemUsers()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	svc := NewService(store, WithCost(bcrypt.MinCost), WithSessionTTL(time.Hour), WithClock(func() time.Time { return now }))
	if _, err := svc.Register(ctx, registerInput()); err != nil {
		t.Fatal(err)
	}
	login := models.LoginInput{Email: "ana@example.com", Password: "correct horse"}
	old, _, err := svc.Login(ctx, login)
	if err != nil {
		t.Fatal(err)
	}
	now = now.Add(90 * time.Minute)
	fresh, _, err := svc.Login(ctx, login)
	if err != nil {
		t.Fatal(err)
	}

	n, err := svc.PruneExpired(ctx)
	if err != nil || n != 1 {
		t.Fatalf("PruneExpired = %d, %v; want 1", n, err)
	}
	if _, ok := store.sessions[old.Token]; ok {
		t.Error("expired session kept")
	}
	if _, err := svc.Authenticate(ctx, fresh.Token); err != nil {
		t.Errorf("fresh session: %v", err)
	}
}
