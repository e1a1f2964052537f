package amqp

import (
	"testing"
	"time"
)

func TestNewExpenseEventMessage(t *testing.T) {
	msg := NewExpenseEventMessage(12345, 7, "created")

	if msg.ExpenseID != 12345 || msg.UserID != 7 || msg.Action != "created" {
		t.Fatalf("unexpected message: %+v", msg)
	}
	if msg.Timestamp.IsZero() {
		t.Error("Timestamp should not be zero")
	}
	if time.Since(msg.Timestamp) > time.Second {
		t.Error("Timestamp should be recent")
	}
}

func TestExpenseEventMessageJSON(t *testing.T) {
	msg := &ExpenseEventMessage{
		ExpenseID: 12345,
		UserID:    7,
		Action:    "deleted",
		Timestamp: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC),
	}

	body, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}

	parsed, err := ExpenseEventMessageFromJSON(body)
	if err != nil {
		t.Fatalf("ExpenseEventMessageFromJSON() error = %v", err)
	}
	if parsed.ExpenseID != msg.ExpenseID || parsed.Action != msg.Action {
		t.Errorf("round trip mismatch: %+v", parsed)
	}
	if !parsed.Timestamp.Equal(msg.Timestamp) {
		t.Errorf("Timestamp = %v, want %v", parsed.Timestamp, msg.Timestamp)
	}

	if _, err := ExpenseEventMessageFromJSON([]byte(`{"expense_id": "nope"}`)); err == nil {
		t.Error("invalid JSON should fail")
	}
}
