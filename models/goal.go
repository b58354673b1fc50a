package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type GoalStatus string

const (
	GoalActive    GoalStatus = "ACTIVE"
	GoalPaused    GoalStatus = "PAUSED"
	GoalCompleted GoalStatus = "COMPLETED"
)

func (s GoalStatus) Valid() bool {
	switch s {
	case GoalActive, GoalPaused, GoalCompleted:
		return true
	}
	return false
}

// Goal is a savings target. CurrentAmount is either set by hand or synced from
// the derived balance of LinkedAccountID.
type Goal struct {
	ID              string          `json:"id"`
	UserID          string          `json:"user_id"`
	Name            string          `json:"name"`
	TargetAmount    decimal.Decimal `json:"target_amount"`
	CurrentAmount   decimal.Decimal `json:"current_amount"`
	Currency        string          `json:"currency"`
	Deadline        *time.Time      `json:"deadline"`
	LinkedAccountID *string         `json:"linked_account_id"`
	Status          GoalStatus      `json:"status"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// GoalInput is used for creating goals.
type GoalInput struct {
	Name            string          `json:"name"`
	TargetAmount    decimal.Decimal `json:"target_amount"`
	CurrentAmount   decimal.Decimal `json:"current_amount"`
	Currency        string          `json:"currency"`
	Deadline        *string         `json:"deadline"`
	LinkedAccountID *string         `json:"linked_account_id"`
}

func (g *GoalInput) Validate() string {
	g.Name = strings.TrimSpace(g.Name)
	if g.Name == "" {
		return "name is required"
	}
	if len(g.Name) > 100 {
		return "name must be at most 100 characters"
	}
	if !g.TargetAmount.IsPositive() {
		return "target must be positive"
	}
	if g.CurrentAmount.IsNegative() {
		return "current_amount must be non-negative"
	}
	if msg := validateScale("target_amount", g.TargetAmount); msg != "" {
		return msg
	}
	if msg := validateScale("current_amount", g.CurrentAmount); msg != "" {
		return msg
	}
	if msg := validateCurrency(g.Currency); msg != "" {
		return msg
	}
	if g.Deadline != nil {
		if _, err := ParseDate(*g.Deadline, nil); err != nil {
			return err.Error()
		}
	}
	return ""
}

// GoalPatch is a partial goal update. An empty LinkedAccountID unlinks the account.
type GoalPatch struct {
	Name            *string          `json:"name"`
	TargetAmount    *decimal.Decimal `json:"target_amount"`
	CurrentAmount   *decimal.Decimal `json:"current_amount"`
	Deadline        *string          `json:"deadline"`
	LinkedAccountID *string          `json:"linked_account_id"`
	Status          *GoalStatus      `json:"status"`
}

func (p *GoalPatch) Validate() string {
	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		if name == "" || len(name) > 100 {
			return "name must be between 1 and 100 characters"
		}
		p.Name = &name
	}
	if p.TargetAmount != nil && !p.TargetAmount.IsPositive() {
		return "target must be positive"
	}
	if p.CurrentAmount != nil && p.CurrentAmount.IsNegative() {
		return "current_amount must be non-negative"
	}
	if p.TargetAmount != nil {
		if msg := validateScale("target_amount", *p.TargetAmount); msg != "" {
			return msg
		}
	}
	if p.CurrentAmount != nil {
		if msg := validateScale("current_amount", *p.CurrentAmount); msg != "" {
			return msg
		}
	}
	if p.Deadline != nil && *p.Deadline != "" {
		if _, err := ParseDate(*p.Deadline, nil); err != nil {
			return err.Error()
		}
	}
	if p.Status != nil && !p.Status.Valid() {
		return "status must be one of: ACTIVE, PAUSED, COMPLETED"
	}
	return ""
}

// Apply copies the set fields of p onto g, reading a bare deadline day in loc.
// Completing a goal fills it.
func (p GoalPatch) Apply(g *Goal, loc *time.Location) {
	if p.Name != nil {
		g.Name = *p.Name
	}
	if p.TargetAmount != nil {
		g.TargetAmount = *p.TargetAmount
	}
	if p.CurrentAmount != nil {
		g.CurrentAmount = *p.CurrentAmount
	}
	if p.Deadline != nil {
		if *p.Deadline == "" {
			g.Deadline = nil
		} else {
			d, _ := ParseDate(*p.Deadline, loc)
			g.Deadline = &d
		}
	}
	if p.LinkedAccountID != nil {
		if *p.LinkedAccountID == "" {
			g.LinkedAccountID = nil
		} else {
			id := *p.LinkedAccountID
			g.LinkedAccountID = &id
		}
	}
	if p.Status != nil {
		g.Status = *p.Status
		if g.Status == GoalCompleted {
			g.CurrentAmount = g.TargetAmount
		}
	}
}
