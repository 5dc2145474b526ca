package expense

import (
	"context"
	"testing"

	"github.com/finance-dashboard/dashboard/internal/test_utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupSqliteRepository(t *testing.T) (context.Context, *SqliteRepository) {
	db := test_utils.SetupTestDB(t)
	return context.Background(), NewSqliteRepository(db)
}

func TestSqliteRepository_Save(t *testing.T) {
	// given
	ctx, repo := setupSqliteRepository(t)

	// when
	require.NoError(t, repo.Save(ctx, mustExpense(t, false, "Water", "30", 10, "30")))
	require.NoError(t, repo.Save(ctx, mustExpense(t, true, "Rent", "1000.00", 5, "0")))
	require.NoError(t, repo.Save(ctx, mustExpense(t, false, "Card, \"gold\"", "500.555", 10, "200.10")))

	// then
	expenses, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assertSameExpenses(t, []Expense{
		mustExpense(t, true, "Rent", "1000", 5, "0"),
		mustExpense(t, false, "Card, \"gold\"", "500.56", 10, "200.10"),
		mustExpense(t, false, "Water", "30", 10, "30"),
	}, expenses)
}

func TestSqliteRepository_FindAll_Empty(t *testing.T) {
	ctx, repo := setupSqliteRepository(t)

	expenses, err := repo.FindAll(ctx)

	require.NoError(t, err)
	assert.NotNil(t, expenses)
	assert.Empty(t, expenses)
}

func TestSqliteRepository_SaveAll(t *testing.T) {
	t.Run("should replace every stored expense", func(t *testing.T) {
		ctx, repo := setupSqliteRepository(t)
		require.NoError(t, repo.Save(ctx, mustExpense(t, false, "Old", "1", 1, "1")))
		replacement := []Expense{
			mustExpense(t, false, "Card", "500", 31, "200"),
			mustExpense(t, true, "Rent", "1000", 1, "0"),
		}

		require.NoError(t, repo.SaveAll(ctx, replacement))

		expenses, err := repo.FindAll(ctx)
		require.NoError(t, err)
		assertSameExpenses(t, []Expense{replacement[1], replacement[0]}, expenses)
	})

	t.Run("should reject a nil list", func(t *testing.T) {
		ctx, repo := setupSqliteRepository(t)

		assert.ErrorIs(t, repo.SaveAll(ctx, nil), ErrNilExpenses)
	})

	t.Run("should reject zero value expenses without writing", func(t *testing.T) {
		ctx, repo := setupSqliteRepository(t)
		require.NoError(t, repo.Save(ctx, mustExpense(t, false, "Old", "1", 1, "1")))

		assert.ErrorIs(t, repo.Save(ctx, Expense{}), ErrInvalidExpense)
		assert.ErrorIs(t, repo.SaveAll(ctx, []Expense{{}}), ErrInvalidExpense)

		expenses, err := repo.FindAll(ctx)
		require.NoError(t, err)
		assertSameExpenses(t, []Expense{mustExpense(t, false, "Old", "1", 1, "1")}, expenses)
	})

	t.Run("should fail the read on a malformed stored amount", func(t *testing.T) {
		ctx, repo := setupSqliteRepository(t)
		_, err := repo.db.ExecContext(ctx,
			`INSERT INTO expense (paid, description, amount, due_day, remaining) VALUES (0, 'Bad', 'abc', 3, '0.00')`)
		require.NoError(t, err)

		_, err = repo.FindAll(ctx)

		assert.ErrorIs(t, err, ErrMalformedRow)
	})
}
