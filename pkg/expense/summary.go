package expense

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Summary holds the dashboard totals, each rounded to two places.
type Summary struct {
	TotalPlanned   decimal.Decimal
	TotalPaid      decimal.Decimal
	TotalRemaining decimal.Decimal
}

// CalculateSummary sums planned, paid and remaining amounts over expenses.
// Each total is rounded on its own after summing, so the result does not
// depend on the order of the input.
func CalculateSummary(expenses []Expense) Summary {
	planned := decimal.Zero
	paid := decimal.Zero
	remaining := decimal.Zero
	for _, e := range expenses {
		planned = planned.Add(e.amount)
		if e.paid {
			paid = paid.Add(e.amount)
		}
		remaining = remaining.Add(e.remaining)
	}
	return Summary{
		TotalPlanned:   RoundMoney(planned),
		TotalPaid:      RoundMoney(paid),
		TotalRemaining: RoundMoney(remaining),
	}
}

// PaidPercentage is the share of the planned total already paid, capped at 100.
func (s Summary) PaidPercentage() decimal.Decimal {
	if s.TotalPlanned.IsZero() {
		return decimal.Zero
	}
	ratio := s.TotalPaid.Mul(hundred).DivRound(s.TotalPlanned, moneyPlaces)
	if ratio.GreaterThan(hundred) {
		return hundred
	}
	return ratio
}
