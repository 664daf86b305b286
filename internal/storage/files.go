package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"
)

// Downloader fetches the raw bytes behind a messaging-platform file handle.
type Downloader interface {
	Download(ctx context.Context, fileID string) ([]byte, error)
}

// FileStorage keeps face references and generated images on local disk.
// Faces live under <facesRoot>/<userID>/, generations under <sessionsRoot>/.
type FileStorage struct {
	facesRoot    string
	sessionsRoot string
	downloader   Downloader
}

func NewFileStorage(facesRoot, sessionsRoot string, downloader Downloader) (*FileStorage, error) {
	for _, dir := range []string{facesRoot, sessionsRoot} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage dir %s: %w", dir, err)
		}
	}
	return &FileStorage{
		facesRoot:    facesRoot,
		sessionsRoot: sessionsRoot,
		downloader:   downloader,
	}, nil
}

// SaveFace downloads the remote file and stores it under the user's face
// directory, returning the durable local path.
func (s *FileStorage) SaveFace(ctx context.Context, userID int64, fileID string) (string, error) {
	data, err := s.downloader.Download(ctx, fileID)
	if err != nil {
		return "", fmt.Errorf("download face: %w", err)
	}

	dir := filepath.Join(s.facesRoot, strconv.FormatInt(userID, 10))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create face dir: %w", err)
	}

	destination := filepath.Join(dir, uuid.NewString()+".jpg")
	if err := os.WriteFile(destination, data, 0o644); err != nil {
		return "", fmt.Errorf("write face file: %w", err)
	}
	return destination, nil
}

// SaveGeneration persists generated image bytes and returns the local path.
func (s *FileStorage) SaveGeneration(data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("no generation data to save")
	}
	destination := filepath.Join(s.sessionsRoot, uuid.NewString()+".jpg")
	if err := os.WriteFile(destination, data, 0o644); err != nil {
		return "", fmt.Errorf("write generation file: %w", err)
	}
	return destination, nil
}
