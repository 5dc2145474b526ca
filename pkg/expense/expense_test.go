package expense

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func money(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func mustExpense(t *testing.T, paid bool, description, amount string, dueDay int, remaining string) Expense {
	t.Helper()
	e, err := New(paid, description, money(amount), dueDay, money(remaining))
	require.NoError(t, err)
	return e
}

func assertSameExpenses(t *testing.T, expected, actual []Expense) {
	t.Helper()
	require.Len(t, actual, len(expected))
	for i := range expected {
		assert.Truef(t, expected[i].Equal(actual[i]), "expense %d: expected %+v, got %+v", i, expected[i], actual[i])
	}
}

func TestNew(t *testing.T) {
	t.Run("should build a valid expense", func(t *testing.T) {
		e, err := New(false, "Card", money("500.00"), 10, money("200.00"))

		require.NoError(t, err)
		assert.False(t, e.Paid())
		assert.Equal(t, "Card", e.Description())
		assert.True(t, e.Amount().Equal(money("500")))
		assert.Equal(t, 10, e.DueDay())
		assert.True(t, e.Remaining().Equal(money("200")))
	})

	t.Run("should force remaining to zero when paid", func(t *testing.T) {
		e, err := New(true, "Rent", money("1000.00"), 5, money("350.00"))

		require.NoError(t, err)
		assert.True(t, e.Remaining().IsZero())
	})

	t.Run("should accept remaining greater than amount", func(t *testing.T) {
		e, err := New(false, "Loan", money("100.00"), 15, money("250.00"))

		require.NoError(t, err)
		assert.True(t, e.Remaining().Equal(money("250")))
	})

	tests := []struct {
		name        string
		description string
		amount      string
		dueDay      int
		remaining   string
		expected    error
	}{
		{"blank description", "   ", "10", 1, "0", ErrEmptyDescription},
		{"negative amount", "Gym", "-0.01", 1, "0", ErrNegativeAmount},
		{"negative remaining", "Gym", "10", 1, "-1", ErrNegativeRemaining},
		{"due day zero", "Gym", "10", 0, "0", ErrInvalidDueDay},
		{"due day 32", "Gym", "10", 32, "0", ErrInvalidDueDay},
	}
	for _, tt := range tests {
		t.Run("should reject "+tt.name, func(t *testing.T) {
			_, err := New(false, tt.description, money(tt.amount), tt.dueDay, money(tt.remaining))

			assert.ErrorIs(t, err, tt.expected)
		})
	}

	t.Run("should normalise CRLF in the description", func(t *testing.T) {
		e, err := New(false, "line one\r\nline two\rthree", money("10"), 3, money("10"))

		require.NoError(t, err)
		assert.Equal(t, "line one\nline two\rthree", e.Description())
	})

	t.Run("should accept the first and last day of the month", func(t *testing.T) {
		for _, day := range []int{MinDueDay, MaxDueDay} {
			_, err := New(false, "Water", money("30"), day, money("30"))
			assert.NoError(t, err, "day %d", day)
		}
	})
}

func TestRoundMoney(t *testing.T) {
	tests := []struct {
		in       string
		expected string
	}{
		{"1.005", "1.01"},
		{"1.004", "1.00"},
		{"2.675", "2.68"},
		{"10", "10.00"},
		{"0.125", "0.13"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatMoney(RoundMoney(money(tt.in))))
		})
	}
}

func TestSortForStorage(t *testing.T) {
	expenses := []Expense{
		mustExpense(t, false, "Water", "30", 10, "30"),
		mustExpense(t, false, "Card", "500", 10, "200"),
		mustExpense(t, true, "Rent", "1000", 5, "0"),
	}

	sortForStorage(expenses)

	assert.Equal(t, "Rent", expenses[0].Description())
	assert.Equal(t, "Card", expenses[1].Description())
	assert.Equal(t, "Water", expenses[2].Description())
}
