package service

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/h2non/filetype"
	gonanoid "github.com/matoous/go-nanoid/v2"
	cfg "github.com/maheshrc27/poster-api/configs"
	"github.com/maheshrc27/poster-api/internal/apperr"
)

const opUpload = "upload"

// AssetPublisher stores a rendered poster and returns its public URL.
type AssetPublisher interface {
	Upload(ctx context.Context, data []byte, folder, id string) (string, error)
}

// objectKey builds folder/id-<nanoid>.<ext>; every render gets a fresh URL.
func objectKey(data []byte, folder, id string) (key, contentType string, err error) {
	kind, err := filetype.Match(data)
	if err != nil || kind == filetype.Unknown {
		return "", "", fmt.Errorf("unrecognised file type")
	}
	suffix, err := gonanoid.New(8)
	if err != nil {
		return "", "", err
	}
	folder = strings.Trim(folder, "/")
	key = fmt.Sprintf("%s-%s.%s", id, suffix, kind.Extension)
	if folder != "" {
		key = folder + "/" + key
	}
	return key, kind.MIME.Value, nil
}

func publicURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + key
}

type R2Service struct {
	config cfg.R2
	client *s3.Client
}

func NewR2Service(ctx context.Context, c cfg.R2) (*R2Service, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(c.AccessKey, c.SecretKey, "")),
		config.WithRegion("auto"),
	)
	if err != nil {
		return nil, fmt.Errorf("load r2 config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(fmt.Sprintf("https://%s.r2.cloudflarestorage.com", c.AccountID))
	})
	return &R2Service{config: c, client: client}, nil
}

// Upload puts data into the R2 bucket and returns the public URL.
func (r *R2Service) Upload(ctx context.Context, data []byte, folder, id string) (string, error) {
	if len(data) == 0 {
		return "", apperr.Upload(opUpload, "empty payload", nil)
	}
	key, contentType, err := objectKey(data, folder, id)
	if err != nil {
		return "", apperr.Upload(opUpload, "build object key", err)
	}

	input := &s3.PutObjectInput{
		Bucket:      aws.String(r.config.BucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	}
	if _, err := r.client.PutObject(ctx, input); err != nil {
		return "", apperr.Upload(opUpload, "put object", err)
	}

	if r.config.PublicBaseURL == "" {
		return "", apperr.Upload(opUpload, "no public URL configured", nil)
	}
	return publicURL(r.config.PublicBaseURL, key), nil
}
