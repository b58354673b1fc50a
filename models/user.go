package models

import (
	"regexp"
	"strings"
	"time"
)

// User owns accounts, transactions, categories, budgets and goals.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	CreatedAt    time.Time `json:"created_at"`
}

// Session is an opaque login token bound to a user until ExpiresAt.
type Session struct {
	ID        string    `json:"-"`
	UserID    string    `json:"user_id"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

const MinPasswordLength = 8

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// RegisterInput is used for creating users.
type RegisterInput struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

func (r *RegisterInput) Validate() string {
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	if r.FirstName == "" {
		return "first name is required"
	}
	if r.LastName == "" {
		return "last name is required"
	}
	if !emailRe.MatchString(r.Email) {
		return "valid email is required"
	}
	if len(r.Password) < MinPasswordLength {
		return "password must be at least 8 characters"
	}
	return ""
}

// LoginInput is used for opening a session.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (l *LoginInput) Validate() string {
	l.Email = strings.ToLower(strings.TrimSpace(l.Email))
	if !emailRe.MatchString(l.Email) {
		return "valid email is required"
	}
	if l.Password == "" {
		return "password is required"
	}
	return ""
}
