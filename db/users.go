package db

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/satheeshds/fintrack/ledger"
	"github.com/satheeshds/fintrack/models"
)

const userSelectQuery = `SELECT id, email, password_hash, first_name, last_name, created_at FROM users`

func scanUser(row scanner) (models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName, &u.CreatedAt)
	return u, err
}

// CreateUser inserts u. A taken email is ledger.ErrDuplicate.
func (s *Store) CreateUser(ctx context.Context, u models.User) (models.User, error) {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO users (id, email, password_hash, first_name, last_name, created_at) VALUES ($1, $2, $3, $4, $5, $6)",
		u.ID, u.Email, u.PasswordHash, u.FirstName, u.LastName, u.CreatedAt.UTC())
	if isUniqueViolation(err) {
		return models.User{}, fmt.Errorf("user %s: %w", u.Email, ledger.ErrDuplicate)
	}
	if err != nil {
		return models.User{}, fmt.Errorf("create user: %w", err)
	}
	slog.Info("user registered", "id", u.ID)
	return u, nil
}

func (s *Store) GetUser(ctx context.Context, id string) (models.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx, userSelectQuery+" WHERE id = $1", id))
	if err != nil {
		return models.User{}, fmt.Errorf("get user: %w", notFound(err))
	}
	return u, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx, userSelectQuery+" WHERE email = $1", email))
	if err != nil {
		return models.User{}, fmt.Errorf("get user by email: %w", notFound(err))
	}
	return u, nil
}

func (s *Store) CreateSession(ctx context.Context, sess models.Session) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO sessions (id, user_id, token, expires_at, created_at) VALUES ($1, $2, $3, $4, $5)",
		sess.ID, sess.UserID, sess.Token, sess.ExpiresAt.UTC(), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

func (s *Store) GetSession(ctx context.Context, token string) (models.Session, error) {
	var sess models.Session
	err := s.db.QueryRowContext(ctx, "SELECT id, user_id, token, expires_at FROM sessions WHERE token = $1", token).
		Scan(&sess.ID, &sess.UserID, &sess.Token, &sess.ExpiresAt)
	if err != nil {
		return models.Session{}, fmt.Errorf("get session: %w", notFound(err))
	}
	return sess, nil
}

// DeleteSession removes the session for token. Unknown tokens are ignored.
func (s *Store) DeleteSession(ctx context.Context, token string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE token = $1", token); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// DeleteExpiredSessions prunes sessions that expired before now.
func (s *Store) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE expires_at < $1", now.UTC())
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	return res.RowsAffected()
}
