package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/digkill/PhotoSessionBot/internal/models"
)

type FaceRepository struct {
	db *sql.DB
}

func NewFaceRepository(db *sql.DB) *FaceRepository {
	return &FaceRepository{db: db}
}

func (r *FaceRepository) ListFaces(ctx context.Context, userID int64) ([]models.Face, error) {
	const query = `
SELECT id, user_id, COALESCE(title, ''), file_id, file_path, created_at
FROM faces WHERE user_id = ? ORDER BY created_at`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list faces: %w", err)
	}
	defer rows.Close()

	var faces []models.Face
	for rows.Next() {
		var f models.Face
		if err := rows.Scan(&f.ID, &f.UserID, &f.Title, &f.FileID, &f.FilePath, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan face: %w", err)
		}
		faces = append(faces, f)
	}
	return faces, rows.Err()
}

func (r *FaceRepository) FindByID(ctx context.Context, faceID, userID int64) (*models.Face, error) {
	const query = `
SELECT id, user_id, COALESCE(title, ''), file_id, file_path, created_at
FROM faces WHERE id = ? AND user_id = ?`
	row := r.db.QueryRowContext(ctx, query, faceID, userID)
	var f models.Face
	if err := row.Scan(&f.ID, &f.UserID, &f.Title, &f.FileID, &f.FilePath, &f.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan face: %w", err)
	}
	return &f, nil
}

func (r *FaceRepository) AddFace(ctx context.Context, userID int64, title, fileID, filePath string) (*models.Face, error) {
	const query = `
INSERT INTO faces (user_id, title, file_id, file_path)
VALUES (?, NULLIF(?, ''), ?, ?)`
	res, err := r.db.ExecContext(ctx, query, userID, title, fileID, filePath)
	if err != nil {
		return nil, fmt.Errorf("insert face: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return &models.Face{ID: id, UserID: userID, Title: title, FileID: fileID, FilePath: filePath}, nil
}

func (r *FaceRepository) UpdateTitle(ctx context.Context, faceID, userID int64, title string) error {
	const query = `UPDATE faces SET title = NULLIF(?, '') WHERE id = ? AND user_id = ?`
	if _, err := r.db.ExecContext(ctx, query, title, faceID, userID); err != nil {
		return fmt.Errorf("update face title: %w", err)
	}
	return nil
}

func (r *FaceRepository) UpdateFilePath(ctx context.Context, faceID, userID int64, path string) error {
	const query = `UPDATE faces SET file_path = ? WHERE id = ? AND user_id = ?`
	if _, err := r.db.ExecContext(ctx, query, path, faceID, userID); err != nil {
		return fmt.Errorf("update face path: %w", err)
	}
	return nil
}

func (r *FaceRepository) DeleteFace(ctx context.Context, faceID, userID int64) error {
	const query = `DELETE FROM faces WHERE id = ? AND user_id = ?`
	if _, err := r.db.ExecContext(ctx, query, faceID, userID); err != nil {
		return fmt.Errorf("delete face: %w", err)
	}
	return nil
}
