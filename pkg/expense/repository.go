package expense

import (
	"context"
	"errors"
)

var (
	ErrStorage      = errors.New("expense storage failure")
	ErrMalformedRow = errors.New("malformed expense row")
	ErrNilExpenses  = errors.New("expenses must not be nil")
)

// Repository persists the expense collection. FindAll returns expenses in
// ascending due day order. Save appends one expense and SaveAll replaces the
// whole collection.
type Repository interface {
	FindAll(ctx context.Context) ([]Expense, error)
	Save(ctx context.Context, expense Expense) error
	SaveAll(ctx context.Context, expenses []Expense) error
}
