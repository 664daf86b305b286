package service

import (
	"context"
	"slices"

	"github.com/digkill/PhotoSessionBot/internal/models"
)

type UserRepository interface {
	FindByTelegramID(ctx context.Context, telegramID int64) (*models.User, error)
	Upsert(ctx context.Context, telegramID int64, username, fullName string, isAdmin bool, startingTokens, hourlyLimit int) (*models.User, error)
}

// UserService registers users on first contact and hands out profiles.
type UserService struct {
	repo           UserRepository
	adminIDs       []int64
	startingTokens int
	hourlyLimit    int
}

func NewUserService(repo UserRepository, adminIDs []int64, startingTokens, hourlyLimit int) *UserService {
	return &UserService{
		repo:           repo,
		adminIDs:       adminIDs,
		startingTokens: startingTokens,
		hourlyLimit:    hourlyLimit,
	}
}

// Ensure upserts the user: first contact grants the starting token balance,
// repeat contact refreshes the profile fields.
func (s *UserService) Ensure(ctx context.Context, telegramID int64, username, fullName string) (*models.User, error) {
	isAdmin := slices.Contains(s.adminIDs, telegramID)
	return s.repo.Upsert(ctx, telegramID, username, fullName, isAdmin, s.startingTokens, s.hourlyLimit)
}

func (s *UserService) Get(ctx context.Context, telegramID int64) (*models.User, error) {
	return s.repo.FindByTelegramID(ctx, telegramID)
}
