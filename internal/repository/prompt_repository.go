package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/digkill/PhotoSessionBot/internal/models"
)

type PromptRepository struct {
	db *sql.DB
}

func NewPromptRepository(db *sql.DB) *PromptRepository {
	return &PromptRepository{db: db}
}

func (r *PromptRepository) Create(ctx context.Context, userID int64, prompt, template string, status models.SessionStatus, tokensSpent int) (*models.PromptGeneration, error) {
	const query = `
INSERT INTO prompt_generations (user_id, prompt, template, status, tokens_spent)
VALUES (?, ?, NULLIF(?, ''), ?, ?)`
	res, err := r.db.ExecContext(ctx, query, userID, prompt, template, status, tokensSpent)
	if err != nil {
		return nil, fmt.Errorf("insert prompt generation: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return &models.PromptGeneration{
		ID:          id,
		UserID:      userID,
		Prompt:      prompt,
		Template:    template,
		Status:      status,
		TokensSpent: tokensSpent,
	}, nil
}

func (r *PromptRepository) UpdateStatus(ctx context.Context, id int64, status models.SessionStatus, resultPath string) error {
	const query = `
UPDATE prompt_generations SET status = ?,
    result_path = COALESCE(NULLIF(?, ''), result_path)
WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, query, status, resultPath, id); err != nil {
		return fmt.Errorf("update prompt generation status: %w", err)
	}
	return nil
}
