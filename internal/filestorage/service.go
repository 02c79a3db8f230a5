package filestorage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"campus_care_backend/internal/config"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"
)

// ComplaintImageFolder is where complaint photos are stored.
const ComplaintImageFolder = "damage-reports"

var (
	ErrEmptyImage  = errors.New("image is empty")
	ErrNotAnImage  = errors.New("only image files are allowed")
	ErrImageTooBig = errors.New("image exceeds the maximum upload size")
)

// StoredImage identifies a persisted image.
type StoredImage struct {
	URL       string `json:"url"`
	StorageID string `json:"public_id"`
}

// ImageStore persists uploaded images and returns their public location.
type ImageStore interface {
	Save(ctx context.Context, folder string, data []byte, contentType, extension string) (StoredImage, error)
}

// DetectedImage is the sniffed type of an upload.
type DetectedImage struct {
	ContentType string
	Extension   string
}

// DetectImage sniffs the payload and rejects anything that is not an image/* type
// or is larger than maxBytes.
func DetectImage(data []byte, maxBytes int64) (DetectedImage, error) {
	if len(data) == 0 {
		return DetectedImage{}, ErrEmptyImage
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return DetectedImage{}, ErrImageTooBig
	}
	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return DetectedImage{}, ErrNotAnImage
	}
	ct := mt.String()
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	return DetectedImage{ContentType: ct, Extension: mt.Extension()}, nil
}

// NewImageStore picks the backend named by STORAGE_TYPE.
func NewImageStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (ImageStore, error) {
	switch cfg.StorageType {
	case "minio":
		return NewMinioStore(ctx, cfg, logger)
	case "local", "":
		return NewLocalStore(cfg.ImageStoragePath, cfg.ImagePublicBaseURL, logger)
	default:
		return nil, fmt.Errorf("unknown storage type %q", cfg.StorageType)
	}
}
