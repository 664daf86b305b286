package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryTokenStore struct {
	balances   map[int64]int
	balanceErr error
	creditErr  error
}

func newMemoryTokenStore(userID int64, tokens int) *memoryTokenStore {
	return &memoryTokenStore{balances: map[int64]int{userID: tokens}}
}

func (s *memoryTokenStore) Balance(_ context.Context, userID int64) (int, error) {
	if s.balanceErr != nil {
		return 0, s.balanceErr
	}
	return s.balances[userID], nil
}

func (s *memoryTokenStore) SpendTokens(_ context.Context, userID int64, amount int) (bool, error) {
	if s.balances[userID] < amount {
		return false, nil
	}
	s.balances[userID] -= amount
	return true, nil
}

func (s *memoryTokenStore) CreditTokens(_ context.Context, userID int64, amount int) error {
	if s.creditErr != nil {
		return s.creditErr
	}
	s.balances[userID] += amount
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestTokenServiceSpend(t *testing.T) {
	store := newMemoryTokenStore(1, 10)
	svc := NewTokenService(store, testLogger())

	balance, err := svc.Spend(context.Background(), 1, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, balance)

	balance, err = svc.Spend(context.Background(), 1, 5)
	require.NoError(t, err)
	assert.Equal(t, 0, balance)
}

func TestTokenServiceSpendInsufficient(t *testing.T) {
	store := newMemoryTokenStore(1, 4)
	svc := NewTokenService(store, testLogger())

	_, err := svc.Spend(context.Background(), 1, 5)
	assert.ErrorIs(t, err, ErrInsufficientFunds)
	assert.Equal(t, 4, store.balances[1], "failed spend must not change the balance")
}

func TestTokenServiceSpendRejectsNonPositive(t *testing.T) {
	svc := NewTokenService(newMemoryTokenStore(1, 10), testLogger())

	_, err := svc.Spend(context.Background(), 1, 0)
	assert.Error(t, err)
	_, err = svc.Spend(context.Background(), 1, -3)
	assert.Error(t, err)
}

func TestTokenServiceCredit(t *testing.T) {
	store := newMemoryTokenStore(1, 2)
	svc := NewTokenService(store, testLogger())

	balance, err := svc.Credit(context.Background(), 1, 5)
	require.NoError(t, err)
	assert.Equal(t, 7, balance)

	_, err = svc.Credit(context.Background(), 1, 0)
	assert.Error(t, err)
}

func TestTokenServiceCreditStoreError(t *testing.T) {
	store := newMemoryTokenStore(1, 2)
	store.creditErr = errors.New("db down")
	svc := NewTokenService(store, testLogger())

	_, err := svc.Credit(context.Background(), 1, 5)
	assert.Error(t, err)
	assert.Equal(t, 2, store.balances[1])
}

func TestTokenServiceSpendReadbackFailureStillDebits(t *testing.T) {
	store := newMemoryTokenStore(1, 10)
	svc := NewTokenService(store, testLogger())

	store.balanceErr = errors.New("readback failed")
	balance, err := svc.Spend(context.Background(), 1, 5)
	require.NoError(t, err)
	assert.Equal(t, 0, balance)
	assert.Equal(t, 5, store.balances[1])
}

func TestTokenServiceNeverNegative(t *testing.T) {
	store := newMemoryTokenStore(1, 7)
	svc := NewTokenService(store, testLogger())

	for i := 0; i < 5; i++ {
		_, _ = svc.Spend(context.Background(), 1, 3)
	}
	assert.GreaterOrEqual(t, store.balances[1], 0)
	assert.Equal(t, 1, store.balances[1])
}
