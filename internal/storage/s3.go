// Package storage provides S3-backed object access for job inputs and
// artifacts.
package storage

import (
	"bytes"
	"context"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/lecturalab/slide-worker/internal/domain"
	"github.com/lecturalab/slide-worker/internal/observability"
)

// S3Store implements domain.ObjectStore on a single bucket.
type S3Store struct {
	client    *s3.Client
	presigner *s3.PresignClient
	bucket    string
	logger    *observability.Logger
}

// S3Config carries the credentials and bucket for the store.
type S3Config struct {
	AccessKeyID     string
	SecretAccessKey string
	Region          string
	Bucket          string
}

// NewS3Store builds the store with static credentials.
func NewS3Store(ctx context.Context, cfg S3Config, logger *observability.Logger) (*S3Store, error) {
	if logger == nil {
		logger = observability.NopLogger()
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		),
	)
	if err != nil {
		return nil, domain.StorageError("failed to load AWS config", err)
	}

	client := s3.NewFromConfig(awsCfg)
	return &S3Store{
		client:    client,
		presigner: s3.NewPresignClient(client),
		bucket:    cfg.Bucket,
		logger:    logger,
	}, nil
}

// Download fetches an object and returns its full contents.
func (s *S3Store) Download(ctx context.Context, key string) ([]byte, error) {
	s.logger.Info().Str("bucket", s.bucket).Str("key", key).Msg("Downloading from S3")

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, domain.StorageError("S3 download failed", err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, domain.StorageError("failed to read S3 object body", err)
	}

	s.logger.Info().Str("key", key).Int("bytes", len(data)).Msg("Downloaded from S3")
	return data, nil
}

// Upload stores data under key and returns the key.
func (s *S3Store) Upload(ctx context.Context, data []byte, key, contentType string) (string, error) {
	s.logger.Info().Str("bucket", s.bucket).Str("key", key).Int("bytes", len(data)).Msg("Uploading to S3")

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", domain.StorageError("S3 upload failed", err)
	}

	return key, nil
}

// Presign generates a time-limited GET URL for an object.
func (s *S3Store) Presign(ctx context.Context, key string, ttl time.Duration) (string, error) {
	req, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", domain.StorageError("presigned URL generation failed", err)
	}

	s.logger.Info().Str("key", key).Dur("ttl", ttl).Msg("Generated presigned URL")
	return req.URL, nil
}
