// Package auth registers users and manages opaque session tokens.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/satheeshds/fintrack/ledger"
	"github.com/satheeshds/fintrack/models"
)

var (
	ErrEmailExists        = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUnauthenticated    = errors.New("not authenticated")
)

const (
	DefaultSessionTTL = 7 * 24 * time.Hour
	DefaultCost       = 12
	tokenBytes        = 32
)

// UserStore is the persistence auth needs.
type UserStore interface {
	CreateUser(ctx context.Context, u models.User) (models.User, error)
	GetUser(ctx context.Context, id string) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)
	CreateSession(ctx context.Context, s models.Session) error
	GetSession(ctx context.Context, token string) (models.Session, error)
	DeleteSession(ctx context.Context, token string) error
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error)
	EnsureDefaultCategories(ctx context.Context, userID string) error
}

type Service struct {
	store UserStore
	ttl   time.Duration
	cost  int
	now   func() time.Time
}

type Option func(*Service)

func WithSessionTTL(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.ttl = d
		}
	}
}

// WithCost sets the bcrypt cost. Tests use bcrypt.MinCost.
func WithCost(cost int) Option {
	return func(s *Service) { s.cost = cost }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(store UserStore, opts ...Option) *Service {
	s := &Service{store: store, ttl: DefaultSessionTTL, cost: DefaultCost, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates a user with the default categories. in must already be validated.
func (s *Service) Register(ctx context.Context, in models.RegisterInput) (models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}

	u, err := s.store.CreateUser(ctx, models.User{
		ID:           uuid.NewString(),
		Email:        in.Email,
		PasswordHash: string(hash),
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		CreatedAt:    s.now().UTC(),
	})
	if errors.Is(err, ledger.ErrDuplicate) {
		return models.User{}, ErrEmailExists
	}
	if err != nil {
		return models.User{}, err
	}

	if err := s.store.EnsureDefaultCategories(ctx, u.ID); err != nil {
		return models.User{}, fmt.Errorf("default categories: %w", err)
	}
	return u, nil
}

// Login checks the password and opens a session. Unknown email and wrong
// password are indistinguishable to the caller. Default categories missing
// after a failed registration are created here.
func (s *Service) Login(ctx context.Context, in models.LoginInput) (models.Session, models.User, error) {
	u, err := s.store.GetUserByEmail(ctx, in.Email)
	if errors.Is(err, ledger.ErrNotFound) {
		return models.Session{}, models.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return models.Session{}, models.User{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.Password)); err != nil {
		return models.Session{}, models.User{}, ErrInvalidCredentials
	}
	if err := s.store.EnsureDefaultCategories(ctx, u.ID); err != nil {
		slog.WarnContext(ctx, "failed to create default categories", "user_id", u.ID, "error", err)
	}

	token, err := newToken()
	if err != nil {
		return models.Session{}, models.User{}, err
	}
	sess := models.Session{
		ID:        uuid.NewString(),
		UserID:    u.ID,
		Token:     token,
		ExpiresAt: s.now().Add(s.ttl).UTC(),
	}
	if err := s.store.CreateSession(ctx, sess); err != nil {
		return models.Session{}, models.User{}, err
	}
	slog.Info("user logged in", "user_id", u.ID)
	return sess, u, nil
}

// Logout ends the session. Unknown tokens are not an error.
func (s *Service) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.store.DeleteSession(ctx, token)
}

// Authenticate resolves a token to its user id. Expired sessions are removed.
func (s *Service) Authenticate(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", ErrUnauthenticated
	}
	sess, err := s.store.GetSession(ctx, token)
	if errors.Is(err, ledger.ErrNotFound) {
		return "", ErrUnauthenticated
	}
	if err != nil {
		return "", err
	}
	if !s.now().Before(sess.ExpiresAt) {
		if err := s.store.DeleteSession(ctx, token); err != nil {
			slog.Warn("failed to delete expired session", "error", err)
		}
		return "", ErrUnauthenticated
	}
	return sess.UserID, nil
}

// PruneExpired deletes every session that has expired.
func (s *Service) PruneExpired(ctx context.Context) (int64, error) {
	n, err := s.store.DeleteExpiredSessions(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("prune sessions: %w", err)
	}
	return n, nil
}

// PruneEvery runs PruneExpired on each tick until ctx is done.
func (s *Service) PruneEvery(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.PruneExpired(ctx)
			if err != nil {
				slog.WarnContext(ctx, "session cleanup failed", "error", err)
				continue
			}
			if n > 0 {
				slog.Info("expired sessions removed", "count", n)
			}
		}
	}
}

// CurrentUser loads the user behind an authenticated id.
func (s *Service) CurrentUser(ctx context.Context, userID string) (models.User, error) {
	return s.store.GetUser(ctx, userID)
}

func newToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
