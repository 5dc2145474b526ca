package expense

import (
	"context"
	"fmt"

	"github.com/finance-dashboard/dashboard/internal/event_bus"
	log "github.com/sirupsen/logrus"
)

type Service interface {
	ListExpenses(ctx context.Context) ([]Expense, error)
	RegisterExpense(ctx context.Context, expense Expense) (Expense, error)
	ReplaceExpenses(ctx context.Context, expenses []Expense) error
	// CalculateSummary returns the totals together with the expenses they were computed from.
	CalculateSummary(ctx context.Context) (Summary, []Expense, error)
}

type ServiceImpl struct {
	repo     Repository
	eventBus *event_bus.EventBus
}

func NewService(repo Repository, eventBus *event_bus.EventBus) *ServiceImpl {
	return &ServiceImpl{repo: repo, eventBus: eventBus}
}

func (s *ServiceImpl) ListExpenses(ctx context.Context) ([]Expense, error) {
	expenses, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	return expenses, nil
}

func (s *ServiceImpl) RegisterExpense(ctx context.Context, expense Expense) (Expense, error) {
	if err := s.repo.Save(ctx, expense); err != nil {
		return Expense{}, fmt.Errorf("failed to register expense: %w", err)
	}
	log.Debugf("Registered expense %q due on day %d", expense.description, expense.dueDay)

	s.publish(event_bus.NewEvent(ctx, event_bus.ExpenseRecordedType, event_bus.ExpenseRecorded{
		Paid:        expense.paid,
		Description: expense.description,
		Amount:      expense.amount,
		DueDay:      expense.dueDay,
		Remaining:   expense.remaining,
	}))
	return expense, nil
}

func (s *ServiceImpl) ReplaceExpenses(ctx context.Context, expenses []Expense) error {
	if err := s.repo.SaveAll(ctx, expenses); err != nil {
		return fmt.Errorf("failed to replace expenses: %w", err)
	}
	log.Debugf("Replaced expenses with %d entries", len(expenses))

	s.publish(event_bus.NewEvent(ctx, event_bus.ExpensesReplacedType, event_bus.ExpensesReplaced{
		Count: len(expenses),
	}))
	return nil
}

func (s *ServiceImpl) CalculateSummary(ctx context.Context) (Summary, []Expense, error) {
	expenses, err := s.ListExpenses(ctx)
	if err != nil {
		return Summary{}, nil, err
	}
	return CalculateSummary(expenses), expenses, nil
}

// publish never fails the caller: the write it reports has already happened.
func (s *ServiceImpl) publish(event event_bus.Event) {
	if s.eventBus == nil {
		return
	}
	if err := s.eventBus.Publish(event); err != nil {
		log.Errorf("failed to publish %s event: %v", event.Type, err)
	}
}
