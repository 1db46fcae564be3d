// Package storage archives raw webhook payloads to S3-compatible object
// storage for replay and audit.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ecomdash/backend/internal/application/webhook"
	infraconfig "github.com/ecomdash/backend/internal/infrastructure/config"
)

var _ webhook.PayloadArchiver = (*S3PayloadArchiver)(nil)

// S3PayloadArchiver writes one object per accepted delivery. It works with
// any S3-compatible backend (AWS S3, MinIO, RustFS).
type S3PayloadArchiver struct {
	client *s3.Client
	bucket string
	prefix string
	logger *zap.Logger
	now    func() time.Time
}

// S3PayloadArchiverOption is a functional option for S3PayloadArchiver
type S3PayloadArchiverOption func(*S3PayloadArchiver)

// WithLogger sets a custom logger
func WithLogger(logger *zap.Logger) S3PayloadArchiverOption {
	return func(a *S3PayloadArchiver) {
		a.logger = logger
	}
}

// NewS3PayloadArchiver creates an archiver from configuration. Credentials
// come from the default AWS chain (env, shared config, instance role).
func NewS3PayloadArchiver(ctx context.Context, cfg *infraconfig.StorageConfig, opts ...S3PayloadArchiverOption) (*S3PayloadArchiver, error) {
	if cfg == nil {
		return nil, errors.New("storage configuration is required")
	}
	if cfg.Bucket == "" {
		return nil, errors.New("storage bucket is required")
	}

	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.ForcePathStyle
		if cfg.Endpoint != "" {
			endpoint := cfg.Endpoint
			if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
				endpoint = "https://" + endpoint
			}
			if _, err := url.Parse(endpoint); err == nil {
				o.BaseEndpoint = aws.String(endpoint)
			}
		}
	})

	archiver := &S3PayloadArchiver{
		client: client,
		bucket: cfg.Bucket,
		prefix: strings.Trim(cfg.Prefix, "/"),
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(archiver)
	}

	return archiver, nil
}

// EnsureBucket creates the bucket if it doesn't exist. Call during startup.
func (a *S3PayloadArchiver) EnsureBucket(ctx context.Context) error {
	_, err := a.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(a.bucket),
	})
	if err == nil {
		return nil
	}

	var notFound *types.NotFound
	var noSuchBucket *types.NoSuchBucket
	if !errors.As(err, &notFound) && !errors.As(err, &noSuchBucket) {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}

	a.logger.Info("Creating archive bucket", zap.String("bucket", a.bucket))
	_, err = a.client.CreateBucket(ctx, &s3.CreateBucketInput{
		Bucket: aws.String(a.bucket),
	})
	if err != nil {
		var alreadyOwned *types.BucketAlreadyOwnedByYou
		if errors.As(err, &alreadyOwned) {
			return nil
		}
		return fmt.Errorf("failed to create bucket: %w", err)
	}

	return nil
}

// Archive stores one delivery's raw body. Keys are date-partitioned so
// retention policies and replay tooling can work on day prefixes.
func (a *S3PayloadArchiver) Archive(ctx context.Context, tenantID uuid.UUID, topic string, eventID uuid.UUID, rawBody []byte) error {
	key := a.objectKey(tenantID, topic, eventID)

	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(rawBody),
		ContentType: aws.String("application/json"),
		Metadata: map[string]string{
			"tenant-id": tenantID.String(),
			"topic":     topic,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to archive payload: %w", err)
	}

	a.logger.Debug("Webhook payload archived",
		zap.String("bucket", a.bucket),
		zap.String("key", key),
	)
	return nil
}

func (a *S3PayloadArchiver) objectKey(tenantID uuid.UUID, topic string, eventID uuid.UUID) string {
	day := a.now().UTC().Format("2006/01/02")
	// Topic segments become one flat path element: "orders/create" is a
	// Shopify topic, not a key hierarchy.
	topicSegment := strings.ReplaceAll(topic, "/", "-")

	parts := []string{tenantID.String(), day, topicSegment + "-" + eventID.String() + ".json"}
	if a.prefix != "" {
		parts = append([]string{a.prefix}, parts...)
	}
	return strings.Join(parts, "/")
}

// Bucket returns the bucket name
func (a *S3PayloadArchiver) Bucket() string {
	return a.bucket
}
