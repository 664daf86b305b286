package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/digkill/PhotoSessionBot/internal/models"
)

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) FindByTelegramID(ctx context.Context, telegramID int64) (*models.User, error) {
	const query = `
SELECT telegram_id, COALESCE(username, ''), COALESCE(full_name, ''), tokens, hourly_limit, is_admin, is_blocked, created_at, updated_at
FROM users WHERE telegram_id = ?`
	row := r.db.QueryRowContext(ctx, query, telegramID)
	var u models.User
	var isAdmin, isBlocked int
	if err := row.Scan(&u.TelegramID, &u.Username, &u.FullName, &u.Tokens, &u.HourlyLimit, &isAdmin, &isBlocked, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	u.IsAdmin = isAdmin != 0
	u.IsBlocked = isBlocked != 0
	return &u, nil
}

// Upsert registers the user on first contact with starting tokens; on repeat
// contact it only refreshes the profile fields.
func (r *UserRepository) Upsert(ctx context.Context, telegramID int64, username, fullName string, isAdmin bool, startingTokens, hourlyLimit int) (*models.User, error) {
	admin := 0
	if isAdmin {
		admin = 1
	}
	const query = `
INSERT INTO users (telegram_id, username, full_name, tokens, hourly_limit, is_admin)
VALUES (?, NULLIF(?, ''), NULLIF(?, ''), ?, ?, ?)
ON DUPLICATE KEY UPDATE
    username = NULLIF(VALUES(username), ''),
    full_name = NULLIF(VALUES(full_name), ''),
    updated_at = NOW()`
	if _, err := r.db.ExecContext(ctx, query, telegramID, username, fullName, startingTokens, hourlyLimit, admin); err != nil {
		return nil, fmt.Errorf("upsert user: %w", err)
	}
	return r.FindByTelegramID(ctx, telegramID)
}

func (r *UserRepository) Balance(ctx context.Context, telegramID int64) (int, error) {
	const query = `SELECT tokens FROM users WHERE telegram_id = ?`
	var tokens int
	if err := r.db.QueryRowContext(ctx, query, telegramID).Scan(&tokens); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("select balance: %w", err)
	}
	return tokens, nil
}

// SpendTokens decrements the balance only when it covers the amount. The WHERE
// guard keeps concurrent spends from ever driving the balance negative.
func (r *UserRepository) SpendTokens(ctx context.Context, telegramID int64, amount int) (bool, error) {
	const query = `
UPDATE users SET tokens = tokens - ?, updated_at = NOW()
WHERE telegram_id = ? AND tokens >= ?`
	res, err := r.db.ExecContext(ctx, query, amount, telegramID, amount)
	if err != nil {
		return false, fmt.Errorf("spend tokens: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("spend rows affected: %w", err)
	}
	return affected > 0, nil
}

func (r *UserRepository) CreditTokens(ctx context.Context, telegramID int64, amount int) error {
	const query = `UPDATE users SET tokens = tokens + ?, updated_at = NOW() WHERE telegram_id = ?`
	if _, err := r.db.ExecContext(ctx, query, amount, telegramID); err != nil {
		return fmt.Errorf("credit tokens: %w", err)
	}
	return nil
}

func (r *UserRepository) SetBlocked(ctx context.Context, telegramID int64, blocked bool) error {
	value := 0
	if blocked {
		value = 1
	}
	const query = `UPDATE users SET is_blocked = ?, updated_at = NOW() WHERE telegram_id = ?`
	if _, err := r.db.ExecContext(ctx, query, value, telegramID); err != nil {
		return fmt.Errorf("set blocked: %w", err)
	}
	return nil
}

func (r *UserRepository) ListTelegramIDs(ctx context.Context) ([]int64, error) {
	const query = `SELECT telegram_id FROM users WHERE is_blocked = 0`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list telegram ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan telegram id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
