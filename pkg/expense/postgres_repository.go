package expense

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) FindAll(ctx context.Context) ([]Expense, error) {
	query := `SELECT paid, description, amount::text, due_day, remaining::text
				FROM expense
				ORDER BY due_day, description, id`

	rows, err := r.db.Query(ctx, query)
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

func (r *PostgresRepository) Save(ctx context.Context, expense Expense) error {
	if err := requireBuilt(expense); err != nil {
		return err
	}
	if err := insertPostgres(ctx, r.db, expense); err != nil {
		log.Error(err)
		return err
	}
	return nil
}

func (r *PostgresRepository) SaveAll(ctx context.Context, expenses []Expense) error {
	if expenses == nil {
		return ErrNilExpenses
	}
	if err := requireBuilt(expenses...); err != nil {
		return err
	}
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%w: could not begin transaction: %w", ErrStorage, err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM expense`); err != nil {
		return fmt.Errorf("%w: could not clear expenses: %w", ErrStorage, err)
	}
	for _, e := range expenses {
		if err := insertPostgres(ctx, tx, e); err != nil {
			log.Error(err)
			return err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%w: could not commit expenses: %w", ErrStorage, err)
	}
	return nil
}

type pgExecutor interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

func insertPostgres(ctx context.Context, db pgExecutor, e Expense) error {
	query := `INSERT INTO expense (paid, description, amount, due_day, remaining)
				VALUES ($1, $2, $3::text::numeric, $4, $5::text::numeric)`
	_, err := db.Exec(ctx, query,
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
