package amqp

import (
	"encoding/json"
	"time"
)

// ExpenseEventMessage is a lightweight change notification. It carries only
// identifiers and the action; the worker fetches the full expense from the
// database when it needs one.
type ExpenseEventMessage struct {
	ExpenseID int64     `json:"expense_id"`
	UserID    int64     `json:"user_id"`
	Action    string    `json:"action"` // created, updated, deleted
	Timestamp time.Time `json:"timestamp"`
}

func NewExpenseEventMessage(expenseID, userID int64, action string) *ExpenseEventMessage {
	return &ExpenseEventMessage{
		ExpenseID: expenseID,
		UserID:    userID,
		Action:    action,
		Timestamp: time.Now().UTC(),
	}
}

func (m *ExpenseEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ExpenseEventMessageFromJSON(data []byte) (*ExpenseEventMessage, error) {
	var msg ExpenseEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
