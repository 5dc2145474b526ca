package expense

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

var csvHeader = []string{"paid", "description", "amount", "dueDay", "remaining"}

// CsvRepository keeps expenses in a single CSV file. One reader/writer lock
// guards every access to the file: reads run concurrently, writes are
// exclusive. The lock is per instance, so there is no protection against
// another process writing the same file.
type CsvRepository struct {
	path string
	mu   sync.RWMutex
}

func NewCsvRepository(path string) *CsvRepository {
	return &CsvRepository{path: path}
}

// Init creates the data directory and an empty file holding only the header
// when the file does not exist yet. Existing files are left untouched.
func (r *CsvRepository) Init() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: failed to create data directory %s: %w", ErrStorage, dir, err)
	}

	_, err := os.Stat(r.path)
	if err == nil {
		log.Debugf("expenses file already present at %s", r.path)
		return nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: failed to stat %s: %w", ErrStorage, r.path, err)
	}

	if err := r.writeAll(nil); err != nil {
		return fmt.Errorf("failed to initialize expenses file: %w", err)
	}
	log.Infof("Created expenses file at %s", r.path)
	return nil
}

func (r *CsvRepository) FindAll(_ context.Context) ([]Expense, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	expenses, err := r.readAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read expenses: %w", err)
	}
	sortByDueDay(expenses)
	return expenses, nil
}

func (r *CsvRepository) Save(_ context.Context, expense Expense) error {
	if err := requireBuilt(expense); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	expenses, err := r.readAll()
	if err != nil {
		return fmt.Errorf("failed to save expense: %w", err)
	}
	expenses = append(expenses, expense)
	if err := r.writeAll(expenses); err != nil {
		return fmt.Errorf("failed to save expense: %w", err)
	}
	return nil
}

func (r *CsvRepository) SaveAll(_ context.Context, expenses []Expense) error {
	if expenses == nil {
		return ErrNilExpenses
	}
	if err := requireBuilt(expenses...); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.writeAll(expenses); err != nil {
		return fmt.Errorf("failed to persist expenses: %w", err)
	}
	return nil
}

// readAll must be called with the lock held.
func (r *CsvRepository) readAll() ([]Expense, error) {
	f, err := os.Open(r.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	// Column count is checked per row so blank rows can be skipped.
	reader.FieldsPerRecord = -1

	if _, err := reader.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return []Expense{}, nil
		}
		return nil, malformed(err)
	}

	expenses := make([]Expense, 0)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, malformed(err)
		}
		if isBlankRecord(record) {
			continue
		}
		line, _ := reader.FieldPos(0)
		e, err := parseRecord(record)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", ErrMalformedRow, line, err)
		}
		expenses = append(expenses, e)
	}
	return expenses, nil
}

// writeAll replaces the file through a temporary file in the same directory
// followed by a rename, so a failed write never leaves a truncated file.
// Must be called with the write lock held.
func (r *CsvRepository) writeAll(expenses []Expense) (err error) {
	sorted := slices.Clone(expenses)
	sortForStorage(sorted)

	tmp, err := os.CreateTemp(filepath.Dir(r.path), "."+filepath.Base(r.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrStorage, err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	writer := csv.NewWriter(tmp)
	if err = writer.Write(csvHeader); err != nil {
		return fmt.Errorf("%w: %w", ErrStorage, err)
	}
	for _, e := range sorted {
		if err = writer.Write(formatRecord(e)); err != nil {
			return fmt.Errorf("%w: %w", ErrStorage, err)
		}
	}
	writer.Flush()
	if err = writer.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrStorage, err)
	}
	if err = tmp.Chmod(0o644); err != nil {
		return fmt.Errorf("%w: %w", ErrStorage, err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("%w: %w", ErrStorage, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("%w: %w", ErrStorage, err)
	}
	if err = os.Rename(tmp.Name(), r.path); err != nil {
		return fmt.Errorf("%w: %w", ErrStorage, err)
	}
	log.Debugf("Wrote %d expenses to %s", len(sorted), r.path)
	return nil
}

func formatRecord(e Expense) []string {
	return []string{
		strconv.FormatBool(e.paid),
		e.description,
		FormatMoney(e.amount),
		strconv.Itoa(e.dueDay),
		FormatMoney(e.remaining),
	}
}

func parseRecord(record []string) (Expense, error) {
	if len(record) != len(csvHeader) {
		return Expense{}, fmt.Errorf("expected %d columns, got %d", len(csvHeader), len(record))
	}
	paid, err := parsePaid(record[0])
	if err != nil {
		return Expense{}, err
	}
	amount, err := decimal.NewFromString(record[2])
	if err != nil {
		return Expense{}, fmt.Errorf("invalid amount %q: %w", record[2], err)
	}
	dueDay, err := strconv.Atoi(record[3])
	if err != nil {
		return Expense{}, fmt.Errorf("invalid due day %q: %w", record[3], err)
	}
	remaining, err := decimal.NewFromString(record[4])
	if err != nil {
		return Expense{}, fmt.Errorf("invalid remaining %q: %w", record[4], err)
	}
	return New(paid, record[1], amount, dueDay, remaining)
}

func parsePaid(value string) (bool, error) {
	switch {
	case strings.EqualFold(value, "true"):
		return true, nil
	case strings.EqualFold(value, "false"):
		return false, nil
	}
	return false, fmt.Errorf("invalid paid flag %q", value)
}

func isBlankRecord(record []string) bool {
	return len(record) == 1 && strings.TrimSpace(record[0]) == ""
}

func malformed(err error) error {
	return fmt.Errorf("%w: %w", ErrMalformedRow, err)
}
