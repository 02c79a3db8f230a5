package filestorage

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LocalStore writes images below a base directory that the HTTP server exposes.
type LocalStore struct {
	storagePath string
	publicBase  string
	logger      *zap.Logger
}

var _ ImageStore = (*LocalStore)(nil)

// NewLocalStore creates the base directory if needed.
func NewLocalStore(storagePath, publicBase string, logger *zap.Logger) (*LocalStore, error) {
	if storagePath == "" {
		return nil, fmt.Errorf("storage path cannot be empty")
	}
	if err := os.MkdirAll(storagePath, 0o755); err != nil {
		logger.Error("Failed to create storage path directory", zap.String("path", storagePath), zap.Error(err))
		return nil, fmt.Errorf("failed to create storage path %s: %w", storagePath, err)
	}
	logger.Info("Local image store initialized", zap.String("storagePath", storagePath))
	return &LocalStore{
		storagePath: storagePath,
		publicBase:  strings.TrimRight(publicBase, "/"),
		logger:      logger.Named("LocalStore"),
	}, nil
}

// Root is the directory served as static files.
func (s *LocalStore) Root() string { return s.storagePath }

// Save writes data to <folder>/<uuid><ext>. The storage id is that relative path.
func (s *LocalStore) Save(ctx context.Context, folder string, data []byte, contentType, extension string) (StoredImage, error) {
	cleanFolder, err := cleanRelative(folder)
	if err != nil {
		return StoredImage{}, err
	}

	dir := filepath.Join(s.storagePath, cleanFolder)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return StoredImage{}, fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	name := uuid.NewString() + extension
	dst := filepath.Join(dir, name)
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		_ = os.Remove(dst)
		return StoredImage{}, fmt.Errorf("failed to save file: %w", err)
	}

	id := path.Join(filepath.ToSlash(cleanFolder), name)
	s.logger.Debug("Image saved", zap.String("storageID", id), zap.String("contentType", contentType))
	return StoredImage{URL: s.publicBase + "/" + id, StorageID: id}, nil
}

func cleanRelative(p string) (string, error) {
	clean := filepath.Clean(p)
	if clean == "." {
		return "", fmt.Errorf("path cannot be empty")
	}
	if filepath.IsAbs(clean) || strings.HasPrefix(clean, "..") {
		return "", fmt.Errorf("invalid path %q", p)
	}
	return clean, nil
}
