package app

import (
	"github.com/finance-dashboard/dashboard/internal/event_bus"
	"github.com/finance-dashboard/dashboard/pkg/expense"
)

// Dependencies holds all services and handlers for the application.
type Dependencies struct {
	EventBus *event_bus.EventBus

	ExpenseRepo    expense.Repository
	ExpenseService expense.Service
	ExpenseHandler *expense.Handler
}

// BuildDependencies wires the expense service and handler on top of repo.
func BuildDependencies(repo expense.Repository, bus *event_bus.EventBus) *Dependencies {
	deps := &Dependencies{EventBus: bus}

	deps.ExpenseRepo = repo
	deps.ExpenseService = expense.NewService(deps.ExpenseRepo, deps.EventBus)
	deps.ExpenseHandler = expense.NewHandler(deps.ExpenseService)

	return deps
}
