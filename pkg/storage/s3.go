// Package storage checks for and publishes asset files kept in an object
// store.
package storage

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// DefaultTimeout bounds a single HeadObject call.
const DefaultTimeout = 5 * time.Second

// HeadObjectAPI is the part of *s3.Client used by S3Checker.
type HeadObjectAPI interface {
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
}

// S3Checker is an assets.FileChecker for files stored in an S3 bucket.
//
// Example usage:
//
//	client := s3.NewFromConfig(awsCfg)
//	checker := storage.NewS3Checker(client, "shop-assets", "v2/")
//	site := config.NewSite(cfg, checker, logger, config.WithBasePath(""))
type S3Checker struct {
	client  HeadObjectAPI
	bucket  string
	prefix  string
	timeout time.Duration
	logger  *slog.Logger
}

// NewS3Checker creates a checker for keys under prefix in bucket.
func NewS3Checker(client HeadObjectAPI, bucket, prefix string) *S3Checker {
	return &S3Checker{
		client:  client,
		bucket:  bucket,
		prefix:  prefix,
		timeout: DefaultTimeout,
		logger:  slog.Default(),
	}
}

// WithTimeout sets how long a single lookup may take.
func (c *S3Checker) WithTimeout(d time.Duration) *S3Checker {
	c.timeout = d
	return c
}

// WithLogger sets the logger used for lookup failures.
func (c *S3Checker) WithLogger(logger *slog.Logger) *S3Checker {
	c.logger = logger
	return c
}

// Key returns the object key checked for path.
func (c *S3Checker) Key(path string) string {
	return c.prefix + strings.TrimLeft(path, "/")
}

// Exists reports whether the object for path exists. Errors other than
// "not found" are logged and reported as missing, so the caller falls back
// to the unminified file.
func (c *S3Checker) Exists(path string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	key := c.Key(path)
	_, err := c.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err == nil {
		return true
	}
	if !IsNotFound(err) {
		c.logger.Warn("s3 lookup failed", "bucket", c.bucket, "key", key, "error", err)
	}
	return false
}

// Ping verifies the bucket is reachable.
func (c *S3Checker) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	_, err := c.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(c.bucket),
	})
	return err
}

// IsNotFound reports whether err means the object does not exist.
func IsNotFound(err error) bool {
	var notFound *types.NotFound
	if errors.As(err, &notFound) {
		return true
	}
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		code := apiErr.ErrorCode()
		return code == "NotFound" || code == "NoSuchKey"
	}
	return false
}
