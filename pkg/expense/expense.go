package expense

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	MinDueDay = 1
	MaxDueDay = 31

	// moneyPlaces is the number of fractional digits kept for currency values.
	moneyPlaces = 2
)

var (
	ErrEmptyDescription  = errors.New("description must not be blank")
	ErrNegativeAmount    = errors.New("amount must not be negative")
	ErrNegativeRemaining = errors.New("remaining must not be negative")
	ErrInvalidDueDay     = errors.New("due day must be between 1 and 31")
	ErrInvalidExpense    = errors.New("expense was not built with New")
)

// Expense is a single bill tracked for the month. Values are immutable once
// built with New.
type Expense struct {
	paid        bool
	description string
	amount      decimal.Decimal
	dueDay      int
	remaining   decimal.Decimal
	// valid is set only by New, so the zero value is never persisted.
	valid bool
}

// New builds an Expense. A paid expense always has a zero remaining balance,
// whatever the caller passed. CRLF line breaks in the description become LF,
// the form the CSV reader returns them in.
func New(paid bool, description string, amount decimal.Decimal, dueDay int, remaining decimal.Decimal) (Expense, error) {
	description = strings.ReplaceAll(description, "\r\n", "\n")
	if strings.TrimSpace(description) == "" {
		return Expense{}, ErrEmptyDescription
	}
	if amount.IsNegative() {
		return Expense{}, ErrNegativeAmount
	}
	if dueDay < MinDueDay || dueDay > MaxDueDay {
		return Expense{}, ErrInvalidDueDay
	}
	if paid {
		remaining = decimal.Zero
	}
	if remaining.IsNegative() {
		return Expense{}, ErrNegativeRemaining
	}
	return Expense{
		paid:        paid,
		description: description,
		amount:      amount,
		dueDay:      dueDay,
		remaining:   remaining,
		valid:       true,
	}, nil
}

// requireBuilt rejects expenses that did not come from New, such as Expense{}.
func requireBuilt(expenses ...Expense) error {
	for i, e := range expenses {
		if !e.valid {
			return fmt.Errorf("%w: expense %d", ErrInvalidExpense, i)
		}
	}
	return nil
}

func (e Expense) Paid() bool {
	return e.paid
}

func (e Expense) Description() string {
	return e.description
}

func (e Expense) Amount() decimal.Decimal {
	return e.amount
}

func (e Expense) DueDay() int {
	return e.dueDay
}

func (e Expense) Remaining() decimal.Decimal {
	return e.remaining
}

// Equal compares expenses by value, treating 10.5 and 10.50 as the same amount.
func (e Expense) Equal(other Expense) bool {
	return e.paid == other.paid &&
		e.description == other.description &&
		e.amount.Equal(other.amount) &&
		e.dueDay == other.dueDay &&
		e.remaining.Equal(other.remaining)
}

// RoundMoney rounds half-up to two places. Half away from zero is the same
// thing for the non-negative values an Expense can hold.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(moneyPlaces)
}

// FormatMoney renders d with exactly two fractional digits.
func FormatMoney(d decimal.Decimal) string {
	return d.StringFixed(moneyPlaces)
}

// sortByDueDay keeps the relative order of expenses sharing a due day.
func sortByDueDay(expenses []Expense) {
	slices.SortStableFunc(expenses, func(a, b Expense) int {
		return cmp.Compare(a.dueDay, b.dueDay)
	})
}

// sortForStorage is the canonical on-disk order: due day, then description.
func sortForStorage(expenses []Expense) {
	slices.SortStableFunc(expenses, func(a, b Expense) int {
		if c := cmp.Compare(a.dueDay, b.dueDay); c != 0 {
			return c
		}
		return strings.Compare(a.description, b.description)
	})
}
