package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"budgetly/internal/core"
	"budgetly/internal/log"
	"budgetly/internal/storage"
)

const maxIDAttempts = 8

// ChangeNotifier is told about every successful mutation.
type ChangeNotifier interface {
	Notify(ctx context.Context, event core.ChangeEvent) error
}

// ValidationObserver is told about every rejected input.
type ValidationObserver interface {
	ObserveValidationFailure(operation string, err error)
}

// ExpenseService owns the expense list and the monthly budget, persisted
// through a key-value substrate.
type ExpenseService struct {
	kv        storage.KV
	logger    *log.Logger
	now       func() time.Time
	newID     func() string
	notifiers []ChangeNotifier
	observer  ValidationObserver

	// Serialises read-modify-write cycles on the expense list.
	mu sync.Mutex
}

type Option func(*ExpenseService)

// WithClock sets the time source used for "today" and creation timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *ExpenseService) { s.now = now }
}

// WithIDGenerator replaces the default UUIDv7 generator.
func WithIDGenerator(newID func() string) Option {
	return func(s *ExpenseService) { s.newID = newID }
}

func WithLogger(logger *log.Logger) Option {
	return func(s *ExpenseService) { s.logger = logger }
}

// WithNotifiers registers change notifiers, called in order after each mutation.
func WithNotifiers(notifiers ...ChangeNotifier) Option {
	return func(s *ExpenseService) { s.notifiers = append(s.notifiers, notifiers...) }
}

func WithValidationObserver(observer ValidationObserver) Option {
	return func(s *ExpenseService) { s.observer = observer }
}

func NewExpenseService(kv storage.KV, opts ...Option) *ExpenseService {
	s := &ExpenseService{
		kv:    kv,
		now:   time.Now,
		newID: newExpenseID,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = log.New(log.DefaultConfig())
	}
	s.logger = s.logger.WithComponent(log.ComponentExpense)
	return s
}

// Close releases the substrate if it holds external resources.
func (s *ExpenseService) Close() error {
	if c, ok := s.kv.(storage.Closer); ok {
		return c.Close()
	}
	return nil
}

// Subscribe adds a notifier after construction.
func (s *ExpenseService) Subscribe(n ChangeNotifier) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifiers = append(s.notifiers, n)
}

// Today returns the current calendar day according to the service clock.
func (s *ExpenseService) Today() core.Date {
	return core.DateOf(s.now())
}

// Now returns the service clock's current time.
func (s *ExpenseService) Now() time.Time {
	return s.now()
}

// ListAll returns every persisted expense in storage order. Missing or
// corrupt data reads as an empty list; only substrate failures are errors.
func (s *ExpenseService) ListAll(ctx context.Context) ([]core.Expense, error) {
	return s.load(ctx)
}

// Add validates and appends a new expense, returning the stored record.
func (s *ExpenseService) Add(ctx context.Context, amount decimal.Decimal, category core.Category, date core.Date, description string) (core.Expense, error) {
	e := core.Expense{
		Amount:      amount,
		Category:    category,
		Date:        date,
		Description: strings.TrimSpace(description),
	}
	if err := e.Validate(s.Today()); err != nil {
		s.rejected(ctx, log.OpCreate, err)
		return core.Expense{}, err
	}

	s.mu.Lock()
	expenses, err := s.load(ctx)
	if err != nil {
		s.mu.Unlock()
		return core.Expense{}, err
	}

	e.ID, err = s.uniqueID(expenses)
	if err != nil {
		s.mu.Unlock()
		return core.Expense{}, err
	}
	e.CreatedAt = s.now()

	if err := s.save(ctx, append(expenses, e)); err != nil {
		s.mu.Unlock()
		return core.Expense{}, err
	}
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "Expense added",
		log.NewFields().
			WithExpense(e.ID, e.Amount, e.Category.String(), e.Date.String()).
			WithOperation(log.OpCreate).
			ToSlice()...)

	view := e.View()
	s.notify(ctx, core.ChangeEvent{Kind: core.EventExpenseAdded, ExpenseID: e.ID, Expense: &view, At: e.CreatedAt})
	return e, nil
}

// Delete removes the expense with the given id. It reports false, and writes
// nothing, when no such expense exists.
func (s *ExpenseService) Delete(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	expenses, err := s.load(ctx)
	if err != nil {
		s.mu.Unlock()
		return false, err
	}

	idx := -1
	for i, e := range expenses {
		if e.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		s.logger.DebugContext(ctx, "Expense not found for delete", log.FieldExpenseID, id)
		return false, nil
	}

	removed := expenses[idx]
	remaining := append(expenses[:idx:idx], expenses[idx+1:]...)
	if err := s.save(ctx, remaining); err != nil {
		s.mu.Unlock()
		return false, err
	}
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "Expense deleted",
		log.FieldExpenseID, id,
		log.FieldOperation, log.OpDelete)

	view := removed.View()
	s.notify(ctx, core.ChangeEvent{Kind: core.EventExpenseDeleted, ExpenseID: id, Expense: &view, At: s.now()})
	return true, nil
}

// SetBudget stores amount as the monthly budget, replacing any previous one.
func (s *ExpenseService) SetBudget(ctx context.Context, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		s.rejected(ctx, log.OpSetBudget, core.ErrInvalidBudget)
		return core.ErrInvalidBudget
	}

	s.mu.Lock()
	err := s.kv.Write(ctx, storage.BudgetKey, encodeBudget(amount))
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("persist budget: %w", err)
	}

	s.logger.InfoContext(ctx, "Budget set",
		log.FieldBudget, amount.String(),
		log.FieldOperation, log.OpSetBudget)

	budget := amount
	s.notify(ctx, core.ChangeEvent{Kind: core.EventBudgetSet, Budget: &budget, At: s.now()})
	return nil
}

// GetBudget returns the configured budget; ok is false when none is set or
// the stored value is unreadable.
func (s *ExpenseService) GetBudget(ctx context.Context) (amount decimal.Decimal, ok bool, err error) {
	raw, found, err := s.kv.Read(ctx, storage.BudgetKey)
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("read budget: %w", err)
	}
	if !found {
		return decimal.Zero, false, nil
	}
	amount, err = decodeBudget(raw)
	if err != nil {
		s.logger.WarnContext(ctx, "Ignoring unreadable budget",
			log.NewFields().
				WithError(err).
				WithErrorType(log.ErrorTypeCorruptData).
				WithOperation(log.OpGetBudget).
				ToSlice()...)
		return decimal.Zero, false, nil
	}
	return amount, true, nil
}

func (s *ExpenseService) load(ctx context.Context) ([]core.Expense, error) {
	raw, found, err := s.kv.Read(ctx, storage.ExpensesKey)
	if err != nil {
		return nil, fmt.Errorf("read expenses: %w", err)
	}
	if !found || strings.TrimSpace(raw) == "" {
		return []core.Expense{}, nil
	}

	expenses, skipped, err := decodeExpenses(raw)
	if err != nil {
		s.logger.WarnContext(ctx, "Treating unreadable expense list as empty",
			log.NewFields().
				WithError(err).
				WithErrorType(log.ErrorTypeCorruptData).
				WithOperation(log.OpDecode).
				ToSlice()...)
		return []core.Expense{}, nil
	}
	for _, skip := range skipped {
		s.logger.WarnContext(ctx, "Skipping unreadable expense record",
			log.FieldError, skip.Error(),
			log.FieldErrorType, log.ErrorTypeCorruptData)
	}
	return expenses, nil
}

func (s *ExpenseService) save(ctx context.Context, expenses []core.Expense) error {
	raw, err := encodeExpenses(expenses)
	if err != nil {
		return err
	}
	if err := s.kv.Write(ctx, storage.ExpensesKey, raw); err != nil {
		return fmt.Errorf("persist expenses: %w", err)
	}
	return nil
}

func (s *ExpenseService) uniqueID(existing []core.Expense) (string, error) {
	taken := make(map[string]struct{}, len(existing))
	for _, e := range existing {
		taken[e.ID] = struct{}{}
	}
	for range maxIDAttempts {
		id := s.newID()
		if _, dup := taken[id]; !dup && id != "" {
			return id, nil
		}
	}
	return "", fmt.Errorf("could not generate a unique expense id after %d attempts", maxIDAttempts)
}

func (s *ExpenseService) notify(ctx context.Context, event core.ChangeEvent) {
	s.mu.Lock()
	notifiers := append([]ChangeNotifier(nil), s.notifiers...)
	s.mu.Unlock()

	for _, n := range notifiers {
		if err := n.Notify(ctx, event); err != nil {
			// The change is already persisted.
			s.logger.ErrorContext(ctx, "Failed to deliver change event",
				log.FieldEventKind, string(event.Kind),
				log.FieldError, err.Error())
		}
	}
}

func (s *ExpenseService) rejected(ctx context.Context, op string, err error) {
	s.logger.InfoContext(ctx, "Input rejected",
		log.NewFields().
			WithError(err).
			WithErrorType(log.ErrorTypeValidation).
			WithOperation(op).
			ToSlice()...)
	if s.observer != nil {
		s.observer.ObserveValidationFailure(op, err)
	}
}

// newExpenseID returns a time-ordered UUIDv7, falling back to the creation
// time in nanoseconds if the random source fails.
func newExpenseID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return strconv.FormatInt(time.Now().UnixNano(), 10)
	}
	return id.String()
}
