package events

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestNew(t *testing.T) {
	before := time.Now().UTC()
	e := New(TransferCreated, "user-1", "txn-1", "a", "b")
	if e.Type != TransferCreated || e.OwnerID != "user-1" || e.EntityID != "txn-1" {
		t.Errorf("unexpected event: %+v", e)
	}
	if len(e.AccountIDs) != 2 {
		t.Errorf("account ids = %v", e.AccountIDs)
	}
	if e.At.Before(before) {
		t.Errorf("at = %s, before %s", e.At, before)
	}

	empty := New(AccountArchived, "user-1", "acc-1")
	if empty.AccountIDs == nil {
		t.Error("account ids should encode as [], not null")
	}
}

func TestEvent_JSON(t *testing.T) {
	e := New(TransactionCreated, "user-1", "txn-1", "a")
	data, err := e.ToJSON()
	if err != nil {
		t.Fatal(err)
	}
	for _, field := range []string{`"type":"transaction.created"`, `"owner_id":"user-1"`, `"account_ids":["a"]`} {
		if !strings.Contains(string(data), field) {
			t.Errorf("json %s missing %s", data, field)
		}
	}

	got, err := FromJSON(data)
	if err != nil {
		t.Fatal(err)
	}
	if got.Type != e.Type || got.EntityID != e.EntityID || !got.At.Equal(e.At) {
		t.Errorf("decoded %+v, want %+v", got, e)
	}
}

func TestFromJSON_Invalid(t *testing.T) {
	if _, err := FromJSON([]byte("{not json")); err == nil {
		t.Error("expected error for invalid json")
	}
}

func TestNop(t *testing.T) {
	var p Publisher = Nop{}
	if err := p.Publish(context.Background(), New(TransactionDeleted, "u", "t")); err != nil {
		t.Errorf("Publish: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}

func TestNewClient_BadURL(t *testing.T) {
	if _, err := NewClient("amqp://127.0.0.1:1/", "fintrack"); err == nil {
		t.Error("expected dial error")
	}
}
