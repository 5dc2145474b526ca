package event_bus

import "github.com/shopspring/decimal"

const (
	ExpenseRecordedType  EventType = "expense.recorded"
	ExpensesReplacedType EventType = "expenses.replaced"
)

// ExpenseRecorded is published after a single expense has been stored.
type ExpenseRecorded struct {
	Paid        bool
	Description string
	Amount      decimal.Decimal
	DueDay      int
	Remaining   decimal.Decimal
}

// ExpensesReplaced is published after the whole collection was overwritten.
type ExpensesReplaced struct {
	Count int
}
