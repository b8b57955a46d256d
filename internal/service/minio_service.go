package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	cfg "github.com/maheshrc27/poster-api/configs"
	"github.com/maheshrc27/poster-api/internal/apperr"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioService is the AssetPublisher used for local and self-hosted deployments.
type MinioService struct {
	config cfg.MinIO
	client *minio.Client
}

func NewMinioService(ctx context.Context, c cfg.MinIO) (*MinioService, error) {
	client, err := minio.New(c.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(c.AccessKey, c.SecretKey, ""),
		Secure: c.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, c.BucketName)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", c.BucketName, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, c.BucketName, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", c.BucketName, err)
		}
	}
	return &MinioService{config: c, client: client}, nil
}

func (m *MinioService) Upload(ctx context.Context, data []byte, folder, id string) (string, error) {
	if len(data) == 0 {
		return "", apperr.Upload(opUpload, "empty payload", nil)
	}
	key, contentType, err := objectKey(data, folder, id)
	if err != nil {
		return "", apperr.Upload(opUpload, "build object key", err)
	}

	_, err = m.client.PutObject(ctx, m.config.BucketName, key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{
			ContentType: contentType,
			UserMetadata: map[string]string{
				"poster-id":   id,
				"uploaded-at": time.Now().UTC().Format(time.RFC3339),
			},
		})
	if err != nil {
		return "", apperr.Upload(opUpload, "put object", err)
	}

	if m.config.PublicBaseURL == "" {
		return "", apperr.Upload(opUpload, "no public URL configured", nil)
	}
	return publicURL(m.config.PublicBaseURL+"/"+m.config.BucketName, key), nil
}
