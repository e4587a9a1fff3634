// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package images hands out presigned S3 URLs so clients upload and fetch
// article images without streaming them through the API.
package images

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"codeberg.org/oliverandrich/go-newsletter/internal/config"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// URLExpiry is how long presigned URLs stay usable.
const URLExpiry = 15 * time.Minute

var (
	// ErrDisabled is returned when no bucket is configured.
	ErrDisabled = errors.New("image storage is not configured")
	// ErrUnsupportedType is returned for content types other than images.
	ErrUnsupportedType = errors.New("unsupported image type")
)

// ContentTypes maps accepted upload types to the key extension.
var ContentTypes = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// Upload is a presigned PUT for a new image.
type Upload struct {
	Key       string    `json:"key"`
	URL       string    `json:"upload_url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Service presigns object requests against one bucket.
type Service struct {
	presign *s3.PresignClient
	bucket  string
	now     func() time.Time
}

// NewService builds the S3 presign client. It does not contact S3.
func NewService(ctx context.Context, cfg *config.StorageConfig) (*Service, error) {
	if !cfg.Enabled() {
		return nil, ErrDisabled
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			// MinIO and friends
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &Service{
		presign: s3.NewPresignClient(client),
		bucket:  cfg.Bucket,
		now:     time.Now,
	}, nil
}

// KeyPrefix is the part of the object key reserved for userID.
func KeyPrefix(userID int64) string {
	return fmt.Sprintf("articles/%d/", userID)
}

// OwnsKey reports whether key was issued to userID.
func OwnsKey(userID int64, key string) bool {
	rest, ok := strings.CutPrefix(key, KeyPrefix(userID))
	return ok && rest != "" && !strings.Contains(key, "..")
}

// PresignUpload reserves a fresh key for userID and returns a PUT URL for it.
func (s *Service) PresignUpload(ctx context.Context, userID int64, contentType string) (*Upload, error) {
	ext, ok := ContentTypes[contentType]
	if !ok {
		return nil, ErrUnsupportedType
	}

	now := s.now().UTC()
	key := fmt.Sprintf("%s%d/%02d/%s%s", KeyPrefix(userID), now.Year(), now.Month(), uuid.New(), ext)

	req, err := s.presign.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(URLExpiry))
	if err != nil {
		return nil, fmt.Errorf("presign upload: %w", err)
	}

	return &Upload{Key: key, URL: req.URL, ExpiresAt: now.Add(URLExpiry)}, nil
}

// PresignDownload returns a GET URL for key.
func (s *Service) PresignDownload(ctx context.Context, key string) (string, error) {
	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(URLExpiry))
	if err != nil {
		return "", fmt.Errorf("presign download: %w", err)
	}
	return req.URL, nil
}
