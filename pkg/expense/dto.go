package expense

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Money is a decimal that marshals as a JSON number with exactly two decimals.
type Money struct {
	decimal.Decimal
}

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(FormatMoney(m.Decimal)), nil
}

type ExpenseDTO struct {
	Paid        bool   `json:"paid"`
	Description string `json:"description"`
	Amount      Money  `json:"amount"`
	DueDay      int    `json:"dueDay"`
	Remaining   Money  `json:"remaining"`
}

type SummaryDTO struct {
	TotalPlanned   Money        `json:"totalPlanned"`
	TotalPaid      Money        `json:"totalPaid"`
	TotalRemaining Money        `json:"totalRemaining"`
	PaidPercentage Money        `json:"paidPercentage"`
	Expenses       []ExpenseDTO `json:"expenses"`
}

type SummaryResponseDTO struct {
	Summary  SummaryDTO   `json:"summary"`
	Expenses []ExpenseDTO `json:"expenses"`
}

// ExpenseRequest is the body accepted when registering an expense. Pointer
// fields tell a missing value apart from its zero value.
type ExpenseRequest struct {
	Paid        *bool            `json:"paid"`
	Description string           `json:"description"`
	Amount      *decimal.Decimal `json:"amount"`
	DueDay      int              `json:"dueDay"`
	Remaining   *decimal.Decimal `json:"remaining"`
}

// Validate returns a message per invalid field, or nil when the request is valid.
func (r ExpenseRequest) Validate() map[string]string {
	fields := make(map[string]string)
	if r.Paid == nil {
		fields["paid"] = "paid status is required"
	}
	if strings.TrimSpace(r.Description) == "" {
		fields["description"] = "description is required"
	}
	if r.Amount == nil {
		fields["amount"] = "amount is required"
	} else if !RoundMoney(*r.Amount).IsPositive() {
		fields["amount"] = "amount must be greater than zero"
	}
	if r.DueDay < MinDueDay || r.DueDay > MaxDueDay {
		fields["dueDay"] = fmt.Sprintf("due day must be between %d and %d", MinDueDay, MaxDueDay)
	}
	if r.Remaining == nil {
		fields["remaining"] = "remaining is required"
	} else if r.Remaining.IsNegative() {
		fields["remaining"] = "remaining must not be negative"
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}

// ToExpense builds the domain value from a request that passed Validate.
// Money is rounded to cents.
func (r ExpenseRequest) ToExpense() (Expense, error) {
	if fields := r.Validate(); fields != nil {
		return Expense{}, fmt.Errorf("invalid expense request: %v", fields)
	}
	return New(*r.Paid, r.Description, RoundMoney(*r.Amount), r.DueDay, RoundMoney(*r.Remaining))
}

func ToDTO(e Expense) ExpenseDTO {
	return ExpenseDTO{
		Paid:        e.paid,
		Description: e.description,
		Amount:      Money{e.amount},
		DueDay:      e.dueDay,
		Remaining:   Money{e.remaining},
	}
}

func ToDTOs(expenses []Expense) []ExpenseDTO {
	dtos := make([]ExpenseDTO, 0, len(expenses))
	for _, e := range expenses {
		dtos = append(dtos, ToDTO(e))
	}
	return dtos
}

func SummaryToDTO(summary Summary, expenses []Expense) SummaryResponseDTO {
	dtos := ToDTOs(expenses)
	return SummaryResponseDTO{
		Summary: SummaryDTO{
			TotalPlanned:   Money{summary.TotalPlanned},
			TotalPaid:      Money{summary.TotalPaid},
			TotalRemaining: Money{summary.TotalRemaining},
			PaidPercentage: Money{summary.PaidPercentage()},
			Expenses:       dtos,
		},
		Expenses: dtos,
	}
}
