package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/digkill/PhotoSessionBot/internal/models"
)

type SessionRepository struct {
	db *sql.DB
}

func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Create(ctx context.Context, userID int64, style, prompt string, orientation models.Orientation, status models.SessionStatus, tokensSpent int) (*models.Session, error) {
	const query = `
INSERT INTO sessions (user_id, style, prompt, orientation, status, tokens_spent)
VALUES (?, ?, NULLIF(?, ''), ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query, userID, style, prompt, orientation, status, tokensSpent)
	if err != nil {
		return nil, fmt.Errorf("insert session: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return &models.Session{
		ID:          id,
		UserID:      userID,
		Style:       style,
		Prompt:      prompt,
		Orientation: orientation,
		Status:      status,
		TokensSpent: tokensSpent,
	}, nil
}

// UpdateStatus records the terminal outcome. Empty resultPath/resultURL leave
// the stored values untouched.
func (r *SessionRepository) UpdateStatus(ctx context.Context, sessionID int64, status models.SessionStatus, resultPath, resultURL string) error {
	const query = `
UPDATE sessions SET status = ?,
    result_path = COALESCE(NULLIF(?, ''), result_path),
    result_url = COALESCE(NULLIF(?, ''), result_url),
    updated_at = NOW()
WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, query, status, resultPath, resultURL, sessionID); err != nil {
		return fmt.Errorf("update session status: %w", err)
	}
	return nil
}

func (r *SessionRepository) ListForUser(ctx context.Context, userID int64, limit int) ([]models.Session, error) {
	const query = `
SELECT id, user_id, style, COALESCE(prompt, ''), orientation, status, tokens_spent, COALESCE(result_path, ''), COALESCE(result_url, ''), created_at, updated_at
FROM sessions WHERE user_id = ? ORDER BY created_at DESC LIMIT ?`
	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []models.Session
	for rows.Next() {
		var s models.Session
		if err := rows.Scan(&s.ID, &s.UserID, &s.Style, &s.Prompt, &s.Orientation, &s.Status, &s.TokensSpent, &s.ResultPath, &s.ResultURL, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}
