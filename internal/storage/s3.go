package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"

	"github.com/MarcosNahuel/aps-preliquidacion-app/internal/config"
	"github.com/MarcosNahuel/aps-preliquidacion-app/pkg/errors"
)

const defaultContentType = "application/octet-stream"

// S3Storage keeps workbooks in an S3 compatible bucket (MinIO in development).
type S3Storage struct {
	api    *s3.S3
	bucket string
}

func NewS3Storage(cfg *config.Config) (*S3Storage, error) {
	opts := cfg.Storage.S3

	sess, err := session.NewSession(&aws.Config{
		Credentials:      credentials.NewStaticCredentials(opts.AccessKey, opts.SecretKey, ""),
		Endpoint:         aws.String(opts.Endpoint),
		Region:           aws.String(opts.Region),
		DisableSSL:       aws.Bool(!opts.UseSSL),
		S3ForcePathStyle: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("create s3 session: %w", err)
	}

	return &S3Storage{api: s3.New(sess), bucket: opts.Bucket}, nil
}

func (s *S3Storage) object(key string) (*string, *string) {
	return aws.String(s.bucket), aws.String(key)
}

// Upload buffers data so the SDK can seek it for signing and retries.
func (s *S3Storage) Upload(ctx context.Context, key string, data io.Reader, contentType string) error {
	body, err := io.ReadAll(data)
	if err != nil {
		return fmt.Errorf("read object %s: %w", key, err)
	}
	if contentType == "" {
		contentType = defaultContentType
	}

	bucket, k := s.object(key)
	if _, err := s.api.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:        bucket,
		Key:           k,
		Body:          bytes.NewReader(body),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(body))),
	}); err != nil {
		return errors.NewRetryableError(err, "put object "+key)
	}
	return nil
}

func (s *S3Storage) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	bucket, k := s.object(key)
	out, err := s.api.GetObjectWithContext(ctx, &s3.GetObjectInput{Bucket: bucket, Key: k})
	switch {
	case missing(err):
		return nil, errors.ErrFileNotFound
	case err != nil:
		return nil, fmt.Errorf("get object %s: %w", key, err)
	}
	return out.Body, nil
}

// Delete is idempotent: S3 reports success for absent keys.
func (s *S3Storage) Delete(ctx context.Context, key string) error {
	bucket, k := s.object(key)
	if _, err := s.api.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{Bucket: bucket, Key: k}); err != nil {
		return fmt.Errorf("delete object %s: %w", key, err)
	}
	return nil
}

func (s *S3Storage) Exists(ctx context.Context, key string) (bool, error) {
	bucket, k := s.object(key)
	_, err := s.api.HeadObjectWithContext(ctx, &s3.HeadObjectInput{Bucket: bucket, Key: k})
	switch {
	case missing(err):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("head object %s: %w", key, err)
	}
	return true, nil
}

func missing(err error) bool {
	aerr, ok := err.(awserr.Error)
	if !ok {
		return false
	}
	switch aerr.Code() {
	case s3.ErrCodeNoSuchKey, "NotFound":
		return true
	}
	return false
}
