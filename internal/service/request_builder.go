package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/digkill/PhotoSessionBot/internal/models"
	"github.com/digkill/PhotoSessionBot/internal/nano"
)

var ErrFaceUnavailable = errors.New("face file is unavailable")

// FaceRef points a draft at a saved Face: the id, the cached local path and
// the remote file handle to re-download from when the path goes stale.
type FaceRef struct {
	FaceID   int64
	FileID   string
	FilePath string
}

// FacePathStore persists a refreshed face location.
type FacePathStore interface {
	UpdateFilePath(ctx context.Context, faceID, userID int64, path string) error
}

// FaceSaver materializes a remote file handle into a durable local path.
type FaceSaver interface {
	SaveFace(ctx context.Context, userID int64, fileID string) (string, error)
}

// RequestBuilder assembles generation requests, guaranteeing every face path
// exists and is readable at call time.
type RequestBuilder struct {
	faces FacePathStore
	files FaceSaver
	log   *slog.Logger
}

func NewRequestBuilder(faces FacePathStore, files FaceSaver, log *slog.Logger) *RequestBuilder {
	return &RequestBuilder{faces: faces, files: files, log: log}
}

// Build resolves every face reference to a readable file, re-downloading and
// persisting stale ones, and returns the provider request. The refreshed path
// is also written back into the passed refs.
func (b *RequestBuilder) Build(ctx context.Context, userID int64, style string, orientation models.Orientation, prompt string, faces []FaceRef) (nano.PhotosessionRequest, error) {
	paths := make([]string, 0, len(faces))
	for i := range faces {
		path, err := b.ensureFaceFile(ctx, userID, &faces[i])
		if err != nil {
			return nano.PhotosessionRequest{}, err
		}
		paths = append(paths, path)
	}

	return nano.PhotosessionRequest{
		Style:       style,
		Prompt:      prompt,
		Orientation: orientation,
		FacePaths:   paths,
	}, nil
}

func (b *RequestBuilder) ensureFaceFile(ctx context.Context, userID int64, face *FaceRef) (string, error) {
	if face.FilePath != "" {
		if _, err := os.Stat(face.FilePath); err == nil {
			return face.FilePath, nil
		}
	}

	if face.FileID == "" {
		return "", fmt.Errorf("face %d: %w", face.FaceID, ErrFaceUnavailable)
	}

	path, err := b.files.SaveFace(ctx, userID, face.FileID)
	if err != nil {
		return "", fmt.Errorf("face %d: %w: %v", face.FaceID, ErrFaceUnavailable, err)
	}

	if face.FaceID != 0 {
		if err := b.faces.UpdateFilePath(ctx, face.FaceID, userID, path); err != nil {
			// The refreshed file is usable for this run even if the
			// write-back failed.
			b.log.Error("persist refreshed face path", "face", face.FaceID, "err", err)
		}
	}
	face.FilePath = path
	return path, nil
}
