package amqp

import (
	"encoding/json"
	"time"
)

// ExpensesReplacedMessage announces that every expense row for
// (user_id, expense_date) was replaced by a new set of count rows. Consumers
// interested in the rows themselves fetch them from the API.
type ExpensesReplacedMessage struct {
	UserID      int64     `json:"user_id"`
	ExpenseDate string    `json:"expense_date"`
	Count       int       `json:"count"`
	Timestamp   time.Time `json:"timestamp"`
}

func NewExpensesReplacedMessage(userID int64, expenseDate string, count int) *ExpensesReplacedMessage {
	return &ExpensesReplacedMessage{
		UserID:      userID,
		ExpenseDate: expenseDate,
		Count:       count,
		Timestamp:   time.Now(),
	}
}

func (m *ExpensesReplacedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ExpensesReplacedMessageFromJSON(data []byte) (*ExpensesReplacedMessage, error) {
	var msg ExpensesReplacedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
