package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"mime"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// PutObjectAPI is the part of *s3.Client used by Publisher.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Publisher uploads asset files to the bucket an S3Checker reads from.
//
// Example usage:
//
//	client := s3.NewFromConfig(awsCfg)
//	pub := storage.NewPublisher(client, "shop-assets", "v2/")
//	n, err := pub.Publish(ctx, os.DirFS("public"), []string{"app.js", "app.min.js"})
type Publisher struct {
	client PutObjectAPI
	bucket string
	prefix string
	logger *slog.Logger
}

// NewPublisher creates a publisher for keys under prefix in bucket.
func NewPublisher(client PutObjectAPI, bucket, prefix string) *Publisher {
	return &Publisher{
		client: client,
		bucket: bucket,
		prefix: prefix,
		logger: slog.Default(),
	}
}

// WithLogger sets the logger used for upload progress.
func (p *Publisher) WithLogger(logger *slog.Logger) *Publisher {
	p.logger = logger
	return p
}

// Key returns the object key for name.
func (p *Publisher) Key(name string) string {
	return p.prefix + strings.TrimLeft(name, "/")
}

// Publish uploads names from fsys in order and returns how many were
// uploaded. It stops at the first failure.
func (p *Publisher) Publish(ctx context.Context, fsys fs.FS, names []string) (int, error) {
	for i, name := range names {
		if err := ctx.Err(); err != nil {
			return i, err
		}
		if err := p.put(ctx, fsys, name); err != nil {
			return i, fmt.Errorf("publish %s: %w", name, err)
		}
	}
	return len(names), nil
}

func (p *Publisher) put(ctx context.Context, fsys fs.FS, name string) error {
	f, err := fsys.Open(name)
	if err != nil {
		return err
	}
	defer f.Close()

	// buffered so the SDK can seek to sign the payload
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, f); err != nil {
		return err
	}

	key := p.Key(name)
	_, err = p.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(p.bucket),
		Key:          aws.String(key),
		Body:         bytes.NewReader(buf.Bytes()),
		ContentType:  aws.String(ContentType(name)),
		CacheControl: aws.String(CacheControl(name)),
	})
	if err != nil {
		return err
	}
	p.logger.Debug("published asset", "bucket", p.bucket, "key", key, "bytes", buf.Len())
	return nil
}

// ContentType returns the MIME type stored with name.
func ContentType(name string) string {
	switch strings.ToLower(path.Ext(name)) {
	case ".js", ".mjs":
		return "text/javascript; charset=utf-8"
	case ".css":
		return "text/css; charset=utf-8"
	}
	if t := mime.TypeByExtension(path.Ext(name)); t != "" {
		return t
	}
	return "application/octet-stream"
}

// CacheControl returns the Cache-Control stored with name. Minified builds
// are immutable.
func CacheControl(name string) string {
	if strings.Contains(path.Base(name), ".min.") {
		return "public, max-age=31536000, immutable"
	}
	return "public, max-age=3600, must-revalidate"
}
