package refund_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tiammomo/mamoji/internal/account"
	"github.com/tiammomo/mamoji/internal/errs"
	"github.com/tiammomo/mamoji/internal/refund"
	"github.com/tiammomo/mamoji/internal/transaction"
)

// fakeRepo models the store with an in-memory map and a real lock per
// parent transaction, so the serialization the row lock provides in
// Postgres holds here too and the concurrency test below is meaningful.
type fakeRepo struct {
	mu            sync.Mutex
	locks         map[uuid.UUID]*sync.Mutex
	parents       map[uuid.UUID]*transaction.Transaction
	refunds       map[uuid.UUID]*refund.Refund
	balances      map[uuid.UUID]decimal.Decimal
	accountOwners map[uuid.UUID]uuid.UUID
	closed        map[uuid.UUID]bool
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		locks:         make(map[uuid.UUID]*sync.Mutex),
		parents:       make(map[uuid.UUID]*transaction.Transaction),
		refunds:       make(map[uuid.UUID]*refund.Refund),
		balances:      make(map[uuid.UUID]decimal.Decimal),
		accountOwners: make(map[uuid.UUID]uuid.UUID),
		closed:        make(map[uuid.UUID]bool),
	}
}

func (r *fakeRepo) lockFor(id uuid.UUID) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, ok := r.locks[id]
	if !ok {
		l = &sync.Mutex{}
		r.locks[id] = l
	}

	return l
}

func (r *fakeRepo) GetRefund(_ context.Context, id uuid.UUID) (*refund.Refund, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ref, ok := r.refunds[id]
	if !ok {
		return nil, refund.ErrNotFound
	}

	cp := *ref

	return &cp, nil
}

func (r *fakeRepo) ListRefunds(_ context.Context, transactionID uuid.UUID) ([]*refund.Refund, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*refund.Refund

	for _, ref := range r.refunds {
		if ref.TransactionID == transactionID {
			cp := *ref
			out = append(out, &cp)
		}
	}

	return out, nil
}

func (r *fakeRepo) BeginRefund(_ context.Context, transactionID uuid.UUID) (refund.RefundTx, error) {
	lock := r.lockFor(transactionID)
	lock.Lock()

	r.mu.Lock()
	parent, ok := r.parents[transactionID]
	r.mu.Unlock()

	if !ok {
		lock.Unlock()
		return nil, transaction.ErrNotFound
	}

	cp := *parent

	return &fakeTx{repo: r, lock: lock, parent: &cp, staged: func() {}}, nil
}

// fakeTx stages writes and applies them on commit, dropping them on
// rollback.
type fakeTx struct {
	repo   *fakeRepo
	lock   *sync.Mutex
	parent *transaction.Transaction
	staged func()
	done   bool
}

func (f *fakeTx) Parent() *transaction.Transaction {
	return f.parent
}

func (f *fakeTx) SumActiveRefunds(_ context.Context, transactionID uuid.UUID) (decimal.Decimal, error) {
	f.repo.mu.Lock()
	defer f.repo.mu.Unlock()

	sum := decimal.Zero

	for _, ref := range f.repo.refunds {
		if ref.TransactionID == transactionID && ref.Active {
			sum = sum.Add(ref.Amount)
		}
	}

	return sum, nil
}

func (f *fakeTx) InsertRefund(_ context.Context, ref *refund.Refund) error {
	ref.ID = uuid.New()

	cp := *ref
	prev := f.staged
	f.staged = func() {
		prev()
		f.repo.refunds[cp.ID] = &cp
	}

	return nil
}

func (f *fakeTx) MarkCancelled(_ context.Context, id uuid.UUID) error {
	f.repo.mu.Lock()
	ref, ok := f.repo.refunds[id]
	f.repo.mu.Unlock()

	if !ok || !ref.Active {
		return refund.ErrNotFound
	}

	prev := f.staged
	f.staged = func() {
		prev()
		f.repo.refunds[id].Active = false
	}

	return nil
}

func (f *fakeTx) ApplyBalanceDelta(_ context.Context, accountID uuid.UUID, delta decimal.Decimal) error {
	prev := f.staged
	f.staged = func() {
		prev()
		f.repo.balances[accountID] = f.repo.balances[accountID].Add(delta)
	}

	return nil
}

func (f *fakeTx) Commit() error {
	f.repo.mu.Lock()
	f.staged()
	f.repo.mu.Unlock()

	f.done = true
	f.lock.Unlock()

	return nil
}

func (f *fakeTx) Rollback() error {
	if f.done {
		return nil
	}

	f.done = true
	f.lock.Unlock()

	return nil
}

type fakeTransactions struct {
	repo *fakeRepo
}

func (g *fakeTransactions) Get(_ context.Context, ownerID, id uuid.UUID) (*transaction.Transaction, error) {
	g.repo.mu.Lock()
	defer g.repo.mu.Unlock()

	tx, ok := g.repo.parents[id]
	if !ok || tx.OwnerID != ownerID || !tx.Active {
		return nil, transaction.ErrNotFound
	}

	cp := *tx

	return &cp, nil
}

type fakeAccounts struct {
	repo *fakeRepo
}

func (g *fakeAccounts) Get(_ context.Context, ownerID, id uuid.UUID) (*account.Account, error) {
	g.repo.mu.Lock()
	defer g.repo.mu.Unlock()

	owner, ok := g.repo.accountOwners[id]
	if !ok || owner != ownerID || g.repo.closed[id] {
		return nil, account.ErrNotFound
	}

	return &account.Account{ID: id, OwnerID: ownerID, Balance: g.repo.balances[id], Active: true}, nil
}

func newFixture(owner uuid.UUID, amount string) (*fakeRepo, *refund.Service, uuid.UUID, uuid.UUID) {
	repo := newFakeRepo()

	accountID := uuid.New()
	repo.balances[accountID] = decimal.NewFromInt(1000).Sub(decimal.RequireFromString(amount))
	repo.accountOwners[accountID] = owner

	txID := uuid.New()
	repo.parents[txID] = &transaction.Transaction{
		ID:        txID,
		OwnerID:   owner,
		AccountID: accountID,
		Type:      transaction.TypeExpense,
		Amount:    decimal.RequireFromString(amount),
		Active:    true,
	}

	svc := refund.NewService(repo, &fakeTransactions{repo: repo}, &fakeAccounts{repo: repo})

	return repo, svc, txID, accountID
}

func TestService_Create(t *testing.T) {
	owner := uuid.New()
	repo, svc, txID, accountID := newFixture(owner, "100")

	returned := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)

	r, err := svc.Create(context.Background(), owner, refund.CreateParams{
		TransactionID: txID,
		Amount:        decimal.NewFromInt(40),
		Reason:        "item returned",
		OccurredAt:    returned,
	})
	require.NoError(t, err)
	assert.Equal(t, accountID, r.AccountID)
	assert.True(t, r.OccurredAt.Equal(returned))

	// 900 after the expense, plus 40 back.
	assert.True(t, repo.balances[accountID].Equal(decimal.NewFromInt(940)))

	summary, err := svc.Summarize(context.Background(), owner, txID)
	require.NoError(t, err)
	assert.True(t, summary.Refunded.Equal(decimal.NewFromInt(40)))
	assert.True(t, summary.Remaining.Equal(decimal.NewFromInt(60)))
	assert.True(t, summary.HasRefund)
	assert.Equal(t, 1, summary.RefundCount)
}

func TestService_Create_DefaultsOccurredAt(t *testing.T) {
	owner := uuid.New()
	_, svc, txID, _ := newFixture(owner, "100")

	before := time.Now()

	r, err := svc.Create(context.Background(), owner, refund.CreateParams{
		TransactionID: txID,
		Amount:        decimal.NewFromInt(10),
	})
	require.NoError(t, err)

	assert.False(t, r.OccurredAt.Before(before))
	assert.False(t, r.OccurredAt.After(time.Now()))
}

func TestService_Create_ClosedAccount(t *testing.T) {
	owner := uuid.New()
	repo, svc, txID, accountID := newFixture(owner, "100")

	repo.closed[accountID] = true

	_, err := svc.Create(context.Background(), owner, refund.CreateParams{
		TransactionID: txID,
		Amount:        decimal.NewFromInt(10),
	})
	assert.ErrorIs(t, err, account.ErrNotFound)

	assert.Empty(t, repo.refunds)
	assert.True(t, repo.balances[accountID].Equal(decimal.NewFromInt(900)))
}

func TestService_Create_CapsAtRemaining(t *testing.T) {
	owner := uuid.New()
	repo, svc, txID, accountID := newFixture(owner, "100")

	_, err := svc.Create(context.Background(), owner, refund.CreateParams{
		TransactionID: txID,
		Amount:        decimal.NewFromInt(70),
	})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), owner, refund.CreateParams{
		TransactionID: txID,
		Amount:        decimal.NewFromInt(40),
	})
	assert.True(t, errs.IsValidation(err))

	// A full refund of the remainder is still allowed.
	_, err = svc.Create(context.Background(), owner, refund.CreateParams{
		TransactionID: txID,
		Amount:        decimal.NewFromInt(30),
	})
	require.NoError(t, err)

	assert.True(t, repo.balances[accountID].Equal(decimal.NewFromInt(1000)))

	summary, err := svc.Summarize(context.Background(), owner, txID)
	require.NoError(t, err)
	assert.True(t, summary.Remaining.IsZero())
}

func TestService_Create_Rejections(t *testing.T) {
	owner := uuid.New()
	repo, svc, txID, _ := newFixture(owner, "100")

	incomeID := uuid.New()
	repo.parents[incomeID] = &transaction.Transaction{
		ID:      incomeID,
		OwnerID: owner,
		Type:    transaction.TypeIncome,
		Amount:  decimal.NewFromInt(100),
		Active:  true,
	}

	tests := []struct {
		name       string
		owner      uuid.UUID
		params     refund.CreateParams
		wantErr    error
		validation bool
	}{
		{
			name:       "ZeroAmount",
			owner:      owner,
			params:     refund.CreateParams{TransactionID: txID, Amount: decimal.Zero},
			validation: true,
		},
		{
			name:       "IncomeParent",
			owner:      owner,
			params:     refund.CreateParams{TransactionID: incomeID, Amount: decimal.NewFromInt(10)},
			validation: true,
		},
		{
			name:    "MissingParent",
			owner:   owner,
			params:  refund.CreateParams{TransactionID: uuid.New(), Amount: decimal.NewFromInt(10)},
			wantErr: transaction.ErrNotFound,
		},
		{
			name:    "ForeignParent",
			owner:   uuid.New(),
			params:  refund.CreateParams{TransactionID: txID, Amount: decimal.NewFromInt(10)},
			wantErr: transaction.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tt.owner, tt.params)

			if tt.validation {
				assert.True(t, errs.IsValidation(err))
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}

	assert.Empty(t, repo.refunds)
}

func TestService_Cancel(t *testing.T) {
	owner := uuid.New()
	repo, svc, txID, accountID := newFixture(owner, "100")

	r, err := svc.Create(context.Background(), owner, refund.CreateParams{
		TransactionID: txID,
		Amount:        decimal.NewFromInt(40),
	})
	require.NoError(t, err)
	require.True(t, repo.balances[accountID].Equal(decimal.NewFromInt(940)))

	summary, err := svc.Cancel(context.Background(), owner, r.ID)
	require.NoError(t, err)

	// The expense stands in full again, and the returned summary already
	// reflects it. The cancelled row is kept but no longer listed.
	assert.True(t, repo.balances[accountID].Equal(decimal.NewFromInt(900)))
	assert.True(t, summary.Refunded.IsZero())
	assert.True(t, summary.Remaining.Equal(decimal.NewFromInt(100)))
	assert.False(t, summary.HasRefund)
	assert.Zero(t, summary.RefundCount)
	assert.Empty(t, summary.Refunds)
	assert.Len(t, repo.refunds, 1)

	// The freed headroom can be refunded again.
	_, err = svc.Create(context.Background(), owner, refund.CreateParams{
		TransactionID: txID,
		Amount:        decimal.NewFromInt(100),
	})
	require.NoError(t, err)

	_, err = svc.Cancel(context.Background(), owner, r.ID)
	assert.ErrorIs(t, err, refund.ErrNotFound)
}

// Two concurrent refunds whose sum exceeds the refundable amount must
// serialize on the parent row lock: exactly one succeeds.
func TestService_Create_ConcurrentOverRefund(t *testing.T) {
	owner := uuid.New()
	repo, svc, txID, accountID := newFixture(owner, "100")

	var wg sync.WaitGroup

	errors := make([]error, 2)

	for i := range errors {
		wg.Add(1)

		go func(i int) {
			defer wg.Done()

			_, errors[i] = svc.Create(context.Background(), owner, refund.CreateParams{
				TransactionID: txID,
				Amount:        decimal.NewFromInt(60),
			})
		}(i)
	}

	wg.Wait()

	succeeded := 0

	for _, err := range errors {
		if err == nil {
			succeeded++
		} else {
			assert.True(t, errs.IsValidation(err))
		}
	}

	assert.Equal(t, 1, succeeded)
	assert.True(t, repo.balances[accountID].Equal(decimal.NewFromInt(960)))
}

func TestService_Summarize_VanishedTransaction(t *testing.T) {
	owner := uuid.New()
	_, svc, _, _ := newFixture(owner, "100")

	summary, err := svc.Summarize(context.Background(), owner, uuid.New())
	require.NoError(t, err)

	assert.True(t, summary.OriginalAmount.IsZero())
	assert.True(t, summary.Refunded.IsZero())
	assert.True(t, summary.Remaining.IsZero())
	assert.Empty(t, summary.Refunds)
}
