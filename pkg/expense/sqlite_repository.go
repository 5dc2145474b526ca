package expense

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// SqliteRepository stores expenses in the expense table of a SQLite database.
// Money columns hold fixed two-digit decimal text.
type SqliteRepository struct {
	db *sql.DB
}

func NewSqliteRepository(db *sql.DB) *SqliteRepository {
	return &SqliteRepository{db: db}
}

func (r *SqliteRepository) FindAll(ctx context.Context) ([]Expense, error) {
	query := `SELECT paid, description, amount, due_day, remaining
				FROM expense
				ORDER BY due_day, description, id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		err := fmt.Errorf("%w: could not query expenses: %w", ErrStorage, err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	expenses := make([]Expense, 0)
	for rows.Next() {
		var (
			paid        bool
			description string
			amount      string
			dueDay      int
			remaining   string
		)
		if err := rows.Scan(&paid, &description, &amount, &dueDay, &remaining); err != nil {
			return nil, fmt.Errorf("%w: could not scan expense: %w", ErrStorage, err)
		}
		e, err := expenseFromColumns(paid, description, amount, dueDay, remaining)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	return expenses, nil
}

func (r *SqliteRepository) Save(ctx context.Context, expense Expense) error {
	if err := requireBuilt(expense); err != nil {
		return err
	}
	if err := insertSqlite(ctx, r.db, expense); err != nil {
		log.Error(err)
		return err
	}
	return nil
}

func (r *SqliteRepository) SaveAll(ctx context.Context, expenses []Expense) error {
	if expenses == nil {
		return ErrNilExpenses
	}
	if err := requireBuilt(expenses...); err != nil {
		return err
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: could not begin transaction: %w", ErrStorage, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM expense`); err != nil {
		return fmt.Errorf("%w: could not clear expenses: %w", ErrStorage, err)
	}
	for _, e := range expenses {
		if err := insertSqlite(ctx, tx, e); err != nil {
			log.Error(err)
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: could not commit expenses: %w", ErrStorage, err)
	}
	return nil
}

type sqlExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertSqlite(ctx context.Context, db sqlExecutor, e Expense) error {
	query := `INSERT INTO expense (paid, description, amount, due_day, remaining)
				VALUES (?, ?, ?, ?, ?)`
	_, err := db.ExecContext(ctx, query,
		e.paid,
		e.description,
		FormatMoney(e.amount),
		e.dueDay,
		FormatMoney(e.remaining),
	)
	if err != nil {
		return fmt.Errorf("%w: could not insert expense: %w", ErrStorage, err)
	}
	return nil
}

// expenseFromColumns rebuilds an Expense from stored column values, failing
// the same way the CSV reader does on bad data.
func expenseFromColumns(paid bool, description, amount string, dueDay int, remaining string) (Expense, error) {
	amountValue, err := decimal.NewFromString(amount)
	if err != nil {
		return Expense{}, fmt.Errorf("%w: invalid amount %q: %w", ErrMalformedRow, amount, err)
	}
	remainingValue, err := decimal.NewFromString(remaining)
	if err != nil {
		return Expense{}, fmt.Errorf("%w: invalid remaining %q: %w", ErrMalformedRow, remaining, err)
	}
	e, err := New(paid, description, amountValue, dueDay, remainingValue)
	if err != nil {
		return Expense{}, fmt.Errorf("%w: %w", ErrMalformedRow, err)
	}
	return e, nil
}
