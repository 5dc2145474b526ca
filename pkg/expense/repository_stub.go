package expense

import (
	"context"
	"slices"
	"sync"
)

// StubRepository is an in-memory Repository for tests.
type StubRepository struct {
	mu   sync.RWMutex
	data []Expense
	err  error
}

func NewStubRepository(expenses ...Expense) *StubRepository {
	return &StubRepository{data: slices.Clone(expenses)}
}

func (s *StubRepository) FindAll(ctx context.Context) ([]Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.err != nil {
		return nil, s.err
	}
	expenses := slices.Clone(s.data)
	if expenses == nil {
		expenses = []Expense{}
	}
	sortByDueDay(expenses)
	return expenses, nil
}

func (s *StubRepository) Save(ctx context.Context, expense Expense) error {
	if err := requireBuilt(expense); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.data = append(s.data, expense)
	sortForStorage(s.data)
	return nil
}

func (s *StubRepository) SaveAll(ctx context.Context, expenses []Expense) error {
	if expenses == nil {
		return ErrNilExpenses
	}
	if err := requireBuilt(expenses...); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.data = slices.Clone(expenses)
	sortForStorage(s.data)
	return nil
}

// FailWith makes every following call return err. Pass nil to recover.
func (s *StubRepository) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

func (s *StubRepository) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = nil
	s.err = nil
}
