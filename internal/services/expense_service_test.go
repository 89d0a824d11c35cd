package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"budgetly/internal/core"
	"budgetly/internal/log"
	"budgetly/internal/storage"
	"budgetly/internal/storage/memory"
)

var fixedNow = time.Date(2024, time.March, 15, 10, 30, 0, 0, time.UTC)

type recordingNotifier struct {
	mu     sync.Mutex
	events []core.ChangeEvent
	err    error
}

func (r *recordingNotifier) Notify(_ context.Context, e core.ChangeEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return r.err
}

func (r *recordingNotifier) kinds() []core.ChangeKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]core.ChangeKind, len(r.events))
	for i, e := range r.events {
		out[i] = e.Kind
	}
	return out
}

type recordingObserver struct {
	ops []string
}

func (r *recordingObserver) ObserveValidationFailure(op string, _ error) {
	r.ops = append(r.ops, op)
}

func sequentialIDs(ids ...string) func() string {
	i := 0
	return func() string {
		id := ids[i%len(ids)]
		i++
		return id
	}
}

func newTestService(t *testing.T, kv storage.KV, opts ...Option) *ExpenseService {
	t.Helper()
	base := []Option{
		WithClock(func() time.Time { return fixedNow }),
		WithLogger(log.Discard()),
	}
	return NewExpenseService(kv, append(base, opts...)...)
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestListAllEmptySubstrate(t *testing.T) {
	svc := newTestService(t, memory.New(nil))

	got, err := svc.ListAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NotNil(t, got)
}

func TestListAllCorruptData(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"not json", "definitely not json", nil},
		{"object instead of array", `{"id":"a"}`, nil},
		{"null", "null", nil},
		{"blank", "   ", nil},
		{
			name: "bad records skipped",
			raw: `[
				{"id":"a","amount":10,"category":"Food","date":"2024-03-01","description":"","timestamp":"2024-03-01T09:00:00Z"},
				{"id":"b","amount":"x","category":"Food","date":"2024-03-01"},
				{"id":"c","amount":5,"category":"Food","date":"03/01/2024"},
				{"id":"d","amount":-5,"category":"Food","date":"2024-03-01"},
				{"amount":5,"category":"Food","date":"2024-03-01"},
				42,
				{"id":"a","amount":99,"category":"Bills","date":"2024-03-02"},
				{"id":"e","amount":7.5,"category":"Travel","date":"2024-03-02"}
			]`,
			want: []string{"a", "e"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(t, memory.New(map[string]string{storage.ExpensesKey: tt.raw}))
			got, err := svc.ListAll(context.Background())
			require.NoError(t, err)
			ids := make([]string, 0, len(got))
			for _, e := range got {
				ids = append(ids, e.ID)
			}
			if tt.want == nil {
				assert.Empty(t, ids)
			} else {
				assert.Equal(t, tt.want, ids)
			}
		})
	}
}

func TestListAllKeepsUnknownPersistedCategory(t *testing.T) {
	raw := `[{"id":"e","amount":7.5,"category":"Travel","date":"2024-03-02"}]`
	svc := newTestService(t, memory.New(map[string]string{storage.ExpensesKey: raw}))

	got, err := svc.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, core.Category("Travel"), got[0].Category)
	assert.True(t, got[0].Amount.Equal(dec("7.5")))
}

func TestListAllSubstrateFailure(t *testing.T) {
	kv := memory.New(nil)
	kv.FailReads(errors.New("disk gone"))
	svc := newTestService(t, kv)

	_, err := svc.ListAll(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk gone")
}

func TestAddRoundTrip(t *testing.T) {
	ctx := context.Background()
	kv := memory.New(nil)
	svc := newTestService(t, kv)

	added, err := svc.Add(ctx, dec("12.50"), core.Food, core.NewDate(2024, 3, 15), "  lunch  ")
	require.NoError(t, err)
	assert.NotEmpty(t, added.ID)
	assert.Equal(t, "lunch", added.Description)
	assert.True(t, added.CreatedAt.Equal(fixedNow))

	// A fresh service over the same substrate sees the same record.
	reopened := newTestService(t, kv)
	all, err := reopened.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	got := all[0]
	assert.Equal(t, added.ID, got.ID)
	assert.True(t, got.Amount.Equal(added.Amount))
	assert.Equal(t, added.Category, got.Category)
	assert.True(t, got.Date.Equal(added.Date))
	assert.Equal(t, added.Description, got.Description)
	assert.True(t, got.CreatedAt.Equal(added.CreatedAt))
}

func TestAddPersistsAmountAsNumber(t *testing.T) {
	kv := memory.New(nil)
	svc := newTestService(t, kv, WithIDGenerator(sequentialIDs("x1")))

	_, err := svc.Add(context.Background(), dec("19.99"), core.Health, core.NewDate(2024, 3, 1), "")
	require.NoError(t, err)

	raw := kv.Snapshot()[storage.ExpensesKey]
	assert.Contains(t, raw, `"amount":19.99`)
	assert.Contains(t, raw, `"date":"2024-03-01"`)
	assert.Contains(t, raw, `"id":"x1"`)
}

func TestAddValidation(t *testing.T) {
	today := core.DateOf(fixedNow)
	tests := []struct {
		name     string
		amount   string
		category core.Category
		date     core.Date
		desc     string
		want     error
	}{
		{"zero amount", "0", core.Food, today, "", core.ErrInvalidAmount},
		{"negative amount", "-3", core.Food, today, "", core.ErrInvalidAmount},
		{"tomorrow", "3", core.Food, today.AddDays(1), "", core.ErrFutureDate},
		{"unknown category", "3", core.Category("Travel"), today, "", core.ErrInvalidCategory},
		{"missing date", "3", core.Food, core.Date{}, "", core.ErrInvalidDate},
		{"long description", "3", core.Food, today, strings.Repeat("a", core.MaxDescriptionLength+1), core.ErrDescriptionTooLong},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kv := memory.New(nil)
			obs := &recordingObserver{}
			n := &recordingNotifier{}
			svc := newTestService(t, kv, WithValidationObserver(obs), WithNotifiers(n))

			_, err := svc.Add(context.Background(), dec(tt.amount), tt.category, tt.date, tt.desc)
			require.ErrorIs(t, err, tt.want)
			assert.True(t, core.IsValidation(err))
			assert.Equal(t, 0, kv.Writes(), "a rejected add must not write")
			assert.Equal(t, []string{log.OpCreate}, obs.ops)
			assert.Empty(t, n.kinds())
		})
	}
}

func TestAddAcceptsToday(t *testing.T) {
	svc := newTestService(t, memory.New(nil))
	_, err := svc.Add(context.Background(), dec("1"), core.Other, core.DateOf(fixedNow), "")
	require.NoError(t, err)
}

func TestAddRegeneratesCollidingID(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, memory.New(nil), WithIDGenerator(sequentialIDs("a", "a", "b")))

	first, err := svc.Add(ctx, dec("1"), core.Food, core.DateOf(fixedNow), "")
	require.NoError(t, err)
	second, err := svc.Add(ctx, dec("2"), core.Food, core.DateOf(fixedNow), "")
	require.NoError(t, err)

	assert.Equal(t, "a", first.ID)
	assert.Equal(t, "b", second.ID)
}

func TestAddGivesUpOnPersistentCollision(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, memory.New(nil), WithIDGenerator(sequentialIDs("same")))

	_, err := svc.Add(ctx, dec("1"), core.Food, core.DateOf(fixedNow), "")
	require.NoError(t, err)
	_, err = svc.Add(ctx, dec("1"), core.Food, core.DateOf(fixedNow), "")
	require.Error(t, err)
	assert.False(t, core.IsValidation(err))
}

func TestAddWriteFailureLeavesStoreUnchanged(t *testing.T) {
	ctx := context.Background()
	kv := memory.New(nil)
	svc := newTestService(t, kv)
	kv.FailWrites(errors.New("quota exceeded"))

	_, err := svc.Add(ctx, dec("1"), core.Food, core.DateOf(fixedNow), "")
	require.Error(t, err)
	assert.False(t, core.IsValidation(err))

	kv.FailWrites(nil)
	all, err := svc.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestAddGeneratesDistinctIDs(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, memory.New(nil))

	seen := map[string]bool{}
	for i := range 20 {
		e, err := svc.Add(ctx, dec(fmt.Sprintf("%d", i+1)), core.Food, core.DateOf(fixedNow), "")
		require.NoError(t, err)
		assert.False(t, seen[e.ID], "duplicate id %s", e.ID)
		seen[e.ID] = true
	}
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	kv := memory.New(nil)
	n := &recordingNotifier{}
	svc := newTestService(t, kv, WithIDGenerator(sequentialIDs("a", "b", "c")), WithNotifiers(n))

	for _, amount := range []string{"1", "2", "3"} {
		_, err := svc.Add(ctx, dec(amount), core.Food, core.DateOf(fixedNow), "")
		require.NoError(t, err)
	}

	removed, err := svc.Delete(ctx, "b")
	require.NoError(t, err)
	assert.True(t, removed)

	all, err := svc.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "a", all[0].ID)
	assert.Equal(t, "c", all[1].ID)

	assert.Equal(t, []core.ChangeKind{
		core.EventExpenseAdded, core.EventExpenseAdded, core.EventExpenseAdded, core.EventExpenseDeleted,
	}, n.kinds())
}

func TestDeleteUnknownIDIsNoop(t *testing.T) {
	ctx := context.Background()
	kv := memory.New(nil)
	svc := newTestService(t, kv)
	_, err := svc.Add(ctx, dec("1"), core.Food, core.DateOf(fixedNow), "")
	require.NoError(t, err)
	writes := kv.Writes()

	removed, err := svc.Delete(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, removed)
	assert.Equal(t, writes, kv.Writes())

	all, err := svc.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestDeleteOnEmptyStore(t *testing.T) {
	kv := memory.New(nil)
	svc := newTestService(t, kv)

	removed, err := svc.Delete(context.Background(), "anything")
	require.NoError(t, err)
	assert.False(t, removed)
	assert.Zero(t, kv.Writes())
}

func TestBudget(t *testing.T) {
	ctx := context.Background()
	kv := memory.New(nil)
	n := &recordingNotifier{}
	svc := newTestService(t, kv, WithNotifiers(n))

	_, ok, err := svc.GetBudget(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, svc.SetBudget(ctx, dec("1000")))
	require.NoError(t, svc.SetBudget(ctx, dec("1500.50")))

	got, ok, err := svc.GetBudget(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, got.Equal(dec("1500.50")))
	assert.Equal(t, "1500.5", kv.Snapshot()[storage.BudgetKey])

	require.Len(t, n.events, 2)
	assert.Equal(t, core.EventBudgetSet, n.events[1].Kind)
	require.NotNil(t, n.events[1].Budget)
	assert.True(t, n.events[1].Budget.Equal(dec("1500.50")))
}

func TestSetBudgetRejectsNonPositive(t *testing.T) {
	ctx := context.Background()
	for _, amount := range []string{"0", "-10"} {
		kv := memory.New(nil)
		obs := &recordingObserver{}
		svc := newTestService(t, kv, WithValidationObserver(obs))

		err := svc.SetBudget(ctx, dec(amount))
		require.ErrorIs(t, err, core.ErrInvalidBudget)
		assert.Zero(t, kv.Writes())
		assert.Equal(t, []string{log.OpSetBudget}, obs.ops)
	}
}

func TestGetBudgetCorruptIsAbsent(t *testing.T) {
	for _, raw := range []string{"abc", "-5", "0", ""} {
		svc := newTestService(t, memory.New(map[string]string{storage.BudgetKey: raw}))
		_, ok, err := svc.GetBudget(context.Background())
		require.NoError(t, err, raw)
		assert.False(t, ok, raw)
	}
}

func TestNotifierFailureDoesNotFailMutation(t *testing.T) {
	ctx := context.Background()
	failing := &recordingNotifier{err: errors.New("broker down")}
	healthy := &recordingNotifier{}
	svc := newTestService(t, memory.New(nil), WithNotifiers(failing, healthy))

	e, err := svc.Add(ctx, dec("5"), core.Bills, core.DateOf(fixedNow), "")
	require.NoError(t, err)
	require.Len(t, healthy.events, 1)
	assert.Equal(t, e.ID, healthy.events[0].ExpenseID)
	require.NotNil(t, healthy.events[0].Expense)
	assert.True(t, healthy.events[0].Expense.Amount.Equal(dec("5")))
}

func TestSubscribe(t *testing.T) {
	n := &recordingNotifier{}
	svc := newTestService(t, memory.New(nil))
	svc.Subscribe(n)

	require.NoError(t, svc.SetBudget(context.Background(), dec("10")))
	assert.Equal(t, []core.ChangeKind{core.EventBudgetSet}, n.kinds())
}

func TestConcurrentAddsAreSerialised(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, memory.New(nil))

	var wg sync.WaitGroup
	for range 25 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Add(ctx, dec("1"), core.Food, core.DateOf(fixedNow), "")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	all, err := svc.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 25)
	assert.True(t, core.TotalSpent(all).Equal(decimal.NewFromInt(25)))
}

func TestCloseWithoutCloser(t *testing.T) {
	svc := newTestService(t, memory.New(nil))
	assert.NoError(t, svc.Close())
}
