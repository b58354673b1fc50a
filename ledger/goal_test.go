package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/satheeshds/fintrack/models"
)

func TestSyncGoal(t *testing.T) {
	tests := []struct {
		name    string
		initial string
		spent   string
		linked  bool
		want    string
	}{
		{"below target", "40", "", true, "40"},
		{"capped at target", "250", "", true, "100"},
		{"negative balance floors at zero", "-5", "", true, "0"},
		{"overdrawn by expenses floors at zero", "30", "75.5", true, "0"},
		{"expenses reduce current", "90", "15", true, "75"},
		{"unlinked unchanged", "40", "", false, "12"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newMemStore()
			s.addAccount(models.Account{ID: "save", UserID: owner, InitialAmount: dec(tt.initial)})
			if tt.spent != "" {
				s.txns = append(s.txns, txn("out", "save", models.TypeExpense, tt.spent, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)))
			}
			g := models.Goal{ID: "g", UserID: owner, TargetAmount: dec("100"), CurrentAmount: dec("12"), Status: models.GoalActive}
			if tt.linked {
				g.LinkedAccountID = strPtr("save")
			}
			s.goals["g"] = g

			got, err := NewEngine(s).SyncGoal(context.Background(), owner, "g")
			if err != nil {
				t.Fatal(err)
			}
			if !got.CurrentAmount.Equal(dec(tt.want)) {
				t.Errorf("current = %s, want %s", got.CurrentAmount, tt.want)
			}
			if !s.goals["g"].CurrentAmount.Equal(dec(tt.want)) {
				t.Errorf("stored current = %s, want %s", s.goals["g"].CurrentAmount, tt.want)
			}
		})
	}
}

func TestSyncGoalNotFound(t *testing.T) {
	_, err := NewEngine(newMemStore()).SyncGoal(context.Background(), owner, "nope")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}
