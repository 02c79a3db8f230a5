package filestorage

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"campus_care_backend/internal/config"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

// MinioStore keeps images in an S3-compatible bucket.
type MinioStore struct {
	client    *minio.Client
	bucket    string
	publicURL string
	logger    *zap.Logger
}

var _ ImageStore = (*MinioStore)(nil)

// NewMinioStore connects and makes sure the bucket exists.
func NewMinioStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*MinioStore, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("creating minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.MinioBucket)
	if err != nil {
		return nil, fmt.Errorf("checking bucket %s: %w", cfg.MinioBucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.MinioBucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("creating bucket %s: %w", cfg.MinioBucket, err)
		}
		logger.Info("Created image bucket", zap.String("bucket", cfg.MinioBucket))
	}

	publicURL := cfg.MinioPublicURL
	if publicURL == "" {
		scheme := "http"
		if cfg.MinioUseSSL {
			scheme = "https"
		}
		publicURL = fmt.Sprintf("%s://%s/%s", scheme, cfg.MinioEndpoint, cfg.MinioBucket)
	}

	return &MinioStore{
		client:    client,
		bucket:    cfg.MinioBucket,
		publicURL: strings.TrimRight(publicURL, "/"),
		logger:    logger.Named("MinioStore"),
	}, nil
}

func (s *MinioStore) Save(ctx context.Context, folder string, data []byte, contentType, extension string) (StoredImage, error) {
	key := strings.Trim(folder, "/") + "/" + uuid.NewString() + extension
	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return StoredImage{}, fmt.Errorf("uploading %s: %w", key, err)
	}
	s.logger.Debug("Image uploaded", zap.String("key", key))
	return StoredImage{URL: s.publicURL + "/" + key, StorageID: key}, nil
}
