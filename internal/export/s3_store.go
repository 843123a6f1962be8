package export

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
)

// PutObjectAPI is the subset of the S3 client used for uploads.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// s3Store implements ArtifactStore on an S3 bucket.
type s3Store struct {
	client PutObjectAPI
	bucket string
	prefix string
	logger zerolog.Logger
}

// NewS3Store creates an S3-backed artifact store using the default AWS credential chain.
func NewS3Store(ctx context.Context, bucket, region, prefix string, logger zerolog.Logger) (ArtifactStore, error) {
	logger = logger.With().Str("component", "s3-artifact-store").Logger()

	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		logger.Error().Err(err).Msg("failed to load AWS configuration")
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	logger.Info().
		Str("bucket", bucket).
		Str("region", region).
		Msg("S3 artifact store initialised")

	return NewS3StoreWithClient(s3.NewFromConfig(cfg), bucket, prefix, logger), nil
}

// NewS3StoreWithClient creates an S3 artifact store on an existing client.
func NewS3StoreWithClient(client PutObjectAPI, bucket, prefix string, logger zerolog.Logger) ArtifactStore {
	return &s3Store{
		client: client,
		bucket: bucket,
		prefix: prefix,
		logger: logger,
	}
}

// Put uploads the artifact under prefix+name and returns its s3:// location.
func (s *s3Store) Put(ctx context.Context, a *Artifact) (string, error) {
	key := s.prefix + a.Name

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(a.Body),
		ContentType: aws.String(a.ContentType),
	})
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("bucket", s.bucket).
			Str("key", key).
			Msg("failed to put object to S3")
		return "", fmt.Errorf("failed to put object to S3 (bucket=%s, key=%s): %w", s.bucket, key, err)
	}

	s.logger.Info().
		Str("bucket", s.bucket).
		Str("key", key).
		Int("bytes", len(a.Body)).
		Msg("artifact uploaded")

	return fmt.Sprintf("s3://%s/%s", s.bucket, key), nil
}
