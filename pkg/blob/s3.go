package blob

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
)

// S3Client defines the subset of S3 operations used by S3Storage.
// Extracted as an interface so tests can substitute a mock client.
type S3Client interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
}

// S3Config contains configuration for S3 storage.
type S3Config struct {
	Bucket         string `env:"S3_BUCKET"`                            // Bucket is the bucket holding all stored blobs.
	Region         string `env:"S3_REGION" envDefault:"us-east-1"`     // Region is the AWS region of the bucket.
	AccessKeyID    string `env:"S3_ACCESS_KEY_ID"`                     // AccessKeyID is the static credential key id; omit to use the default chain.
	SecretKey      string `env:"S3_SECRET_KEY"`                        // SecretKey is the static credential secret.
	Endpoint       string `env:"S3_ENDPOINT"`                          // Endpoint overrides the S3 endpoint for S3-compatible services.
	ForcePathStyle bool   `env:"S3_FORCE_PATH_STYLE" envDefault:"false"` // ForcePathStyle is required for services like MinIO.
}

// S3Storage implements Storage on Amazon S3 and S3-compatible services.
// S3 object writes are atomic: an object never becomes visible until the
// PutObject call fully succeeded. Safe for concurrent use.
type S3Storage struct {
	client S3Client
	bucket string
}

// S3Option defines a function that configures S3Storage.
type S3Option func(*s3Options)

type s3Options struct {
	s3Client S3Client
}

// WithS3Client sets a custom pre-configured S3 client.
// Useful for testing with mocks.
func WithS3Client(client S3Client) S3Option {
	return func(o *s3Options) {
		o.s3Client = client
	}
}

// NewS3Storage creates a new S3 storage instance.
func NewS3Storage(ctx context.Context, cfg S3Config, opts ...S3Option) (*S3Storage, error) {
	if cfg.Bucket == "" || cfg.Region == "" {
		return nil, ErrInvalidConfig
	}

	options := &s3Options{}
	for _, opt := range opts {
		opt(options)
	}

	client := options.s3Client
	if client == nil {
		awsOptions := []func(*awsconfig.LoadOptions) error{
			awsconfig.WithRegion(cfg.Region),
		}
		if cfg.AccessKeyID != "" && cfg.SecretKey != "" {
			awsOptions = append(awsOptions, awsconfig.WithCredentialsProvider(
				credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretKey, ""),
			))
		}

		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsOptions...)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrFailedToLoadConfig, err)
		}

		client = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			if cfg.Endpoint != "" {
				o.BaseEndpoint = aws.String(cfg.Endpoint)
			}
			o.UsePathStyle = cfg.ForcePathStyle
		})
	}

	return &S3Storage{
		client: client,
		bucket: cfg.Bucket,
	}, nil
}

// Write stores data at path, overwriting any previous object.
func (s *S3Storage) Write(ctx context.Context, path string, data []byte) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(path),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFailedToWrite, err)
	}
	return nil
}

// Open returns a reader over the object stored at path.
func (s *S3Storage) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(path),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("%w: %v", ErrFailedToRead, err)
	}
	return out.Body, nil
}

// Exists reports whether an object is stored at path.
func (s *S3Storage) Exists(ctx context.Context, path string) bool {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(path),
	})
	return err == nil
}

// isNotFound classifies S3 API errors that mean the object does not exist.
func isNotFound(err error) bool {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return true
		}
	}
	return false
}
