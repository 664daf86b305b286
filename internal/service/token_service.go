package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

var ErrInsufficientFunds = errors.New("insufficient token balance")

// TokenStore is the persistence contract behind the ledger. SpendTokens must
// be atomic per user: it returns false without changing anything when the
// balance does not cover the amount.
type TokenStore interface {
	Balance(ctx context.Context, userID int64) (int, error)
	SpendTokens(ctx context.Context, userID int64, amount int) (bool, error)
	CreditTokens(ctx context.Context, userID int64, amount int) error
}

// TokenService is the token ledger: debit before generation, credit on refund.
// It never compensates on its own, callers decide when to refund.
type TokenService struct {
	store TokenStore
	log   *slog.Logger
}

func NewTokenService(store TokenStore, log *slog.Logger) *TokenService {
	return &TokenService{store: store, log: log}
}

func (s *TokenService) Balance(ctx context.Context, userID int64) (int, error) {
	return s.store.Balance(ctx, userID)
}

// Spend atomically debits the user and returns the remaining balance.
func (s *TokenService) Spend(ctx context.Context, userID int64, amount int) (int, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("spend amount must be positive, got %d", amount)
	}
	ok, err := s.store.SpendTokens(ctx, userID, amount)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, ErrInsufficientFunds
	}
	balance, err := s.store.Balance(ctx, userID)
	if err != nil {
		// The debit went through, only the readback failed.
		s.log.Error("balance readback after spend", "user", userID, "err", err)
		return 0, nil
	}
	return balance, nil
}

// Credit unconditionally returns tokens to the user, e.g. as a refund.
func (s *TokenService) Credit(ctx context.Context, userID int64, amount int) (int, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("credit amount must be positive, got %d", amount)
	}
	if err := s.store.CreditTokens(ctx, userID, amount); err != nil {
		return 0, err
	}
	balance, err := s.store.Balance(ctx, userID)
	if err != nil {
		s.log.Error("balance readback after credit", "user", userID, "err", err)
		return 0, nil
	}
	return balance, nil
}
