// Package storage holds the harvest photo store and the export artifact sinks.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	harvestapp "github.com/pentol/backend/internal/application/harvest"
	reportapp "github.com/pentol/backend/internal/application/report"
	"github.com/pentol/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

const (
	exportPrefix           = "exports"
	defaultRegion          = "us-east-1"
	defaultEndpoint        = "http://localhost:9000"
	defaultPresignDuration = 15 * time.Minute
)

var (
	_ harvestapp.PhotoStorage = (*S3ObjectStorage)(nil)
	_ reportapp.ArtifactSink  = (*S3ObjectStorage)(nil)
)

// S3ObjectStorage keeps harvest photos and published exports in one
// S3-compatible bucket (AWS S3, MinIO, RustFS). Photos and exports live
// under separate key prefixes.
type S3ObjectStorage struct {
	client    *s3.Client
	presigner *s3.PresignClient
	bucket    string
	presignTT time.Duration
	now       func() time.Time
	logger    *zap.Logger
}

// S3ObjectStorageOption configures an S3ObjectStorage
type S3ObjectStorageOption func(*S3ObjectStorage)

func WithLogger(logger *zap.Logger) S3ObjectStorageOption {
	return func(s *S3ObjectStorage) { s.logger = logger }
}

// WithPresignExpiration overrides how long download links stay valid
func WithPresignExpiration(d time.Duration) S3ObjectStorageOption {
	return func(s *S3ObjectStorage) { s.presignTT = d }
}

// NewS3ObjectStorage builds a client with static credentials against
// cfg.Endpoint. No request is sent until EnsureBucket or an upload.
func NewS3ObjectStorage(cfg *config.StorageConfig, opts ...S3ObjectStorageOption) (*S3ObjectStorage, error) {
	if cfg == nil {
		return nil, errors.New("storage configuration is required")
	}
	var missing []error
	for _, f := range []struct{ value, name string }{
		{cfg.Bucket, "bucket"},
		{cfg.AccessKey, "access key"},
		{cfg.SecretKey, "secret key"},
	} {
		if f.value == "" {
			missing = append(missing, fmt.Errorf("storage %s is required", f.name))
		}
	}
	if err := errors.Join(missing...); err != nil {
		return nil, err
	}

	endpoint, err := endpointURL(cfg.Endpoint, cfg.UseSSL)
	if err != nil {
		return nil, err
	}
	region := cfg.Region
	if region == "" {
		region = defaultRegion
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		o.BaseEndpoint = aws.String(endpoint)
	})

	s := &S3ObjectStorage{
		client:    client,
		presigner: s3.NewPresignClient(client),
		bucket:    cfg.Bucket,
		presignTT: cfg.PresignExpiration,
		now:       time.Now,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.presignTT <= 0 {
		s.presignTT = defaultPresignDuration
	}
	return s, nil
}

// endpointURL adds a scheme to bare host:port endpoints.
func endpointURL(raw string, useSSL bool) (string, error) {
	if raw == "" {
		return defaultEndpoint, nil
	}
	if !strings.Contains(raw, "://") {
		scheme := "http://"
		if useSSL {
			scheme = "https://"
		}
		raw = scheme + raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("invalid storage endpoint %q", raw)
	}
	return u.String(), nil
}

// EnsureBucket creates the bucket when it is missing. Losing a creation race
// to another replica is not an error.
func (s *S3ObjectStorage) EnsureBucket(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)})
	switch {
	case err == nil:
		return nil
	case !isMissingBucket(err):
		return fmt.Errorf("check bucket %s: %w", s.bucket, err)
	}

	s.logger.Info("Creating storage bucket", zap.String("bucket", s.bucket))
	_, err = s.client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(s.bucket)})
	var owned *types.BucketAlreadyOwnedByYou
	if err != nil && !errors.As(err, &owned) {
		return fmt.Errorf("create bucket %s: %w", s.bucket, err)
	}
	return nil
}

func isMissingBucket(err error) bool {
	var notFound *types.NotFound
	var noSuchBucket *types.NoSuchBucket
	return errors.As(err, &notFound) || errors.As(err, &noSuchBucket)
}

// GenerateDownloadURL presigns a GET for key. A non-positive ttl uses the
// configured expiration.
func (s *S3ObjectStorage) GenerateDownloadURL(ctx context.Context, key string, ttl time.Duration) (string, time.Time, error) {
	if key == "" {
		return "", time.Time{}, errors.New("storage key is required")
	}
	if ttl <= 0 {
		ttl = s.presignTT
	}
	req, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("presign %s: %w", key, err)
	}
	return req.URL, s.now().Add(ttl), nil
}

// Upload writes data to key, replacing any existing object.
func (s *S3ObjectStorage) Upload(ctx context.Context, key string, data []byte, contentType string) error {
	if key == "" {
		return errors.New("storage key is required")
	}
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	s.logger.Debug("Object stored", zap.String("key", key), zap.Int("bytes", len(data)))
	return nil
}

// Publish stores an export as exports/<UTC date>/<file> and returns a
// presigned link to it.
func (s *S3ObjectStorage) Publish(ctx context.Context, fileName, contentType string, data []byte) (string, error) {
	name := path.Base(strings.TrimSpace(fileName))
	if name == "" || name == "." || name == "/" {
		return "", errors.New("file name is required")
	}
	key := path.Join(exportPrefix, s.now().UTC().Format(time.DateOnly), name)
	if err := s.Upload(ctx, key, data, contentType); err != nil {
		return "", err
	}
	link, _, err := s.GenerateDownloadURL(ctx, key, 0)
	if err != nil {
		return "", err
	}
	s.logger.Info("Export published", zap.String("bucket", s.bucket), zap.String("key", key))
	return link, nil
}

// GetBucket returns the bucket name
func (s *S3ObjectStorage) GetBucket() string {
	return s.bucket
}
