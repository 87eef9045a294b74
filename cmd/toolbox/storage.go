package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/vango-dev/toolbox/internal/config"
	"github.com/vango-dev/toolbox/internal/errors"
	"github.com/vango-dev/toolbox/pkg/assets"
	"github.com/vango-dev/toolbox/pkg/storage"
)

const (
	defaultRegion = "us-east-1"

	// s3CacheTTL bounds how long a HeadObject answer is reused.
	s3CacheTTL = time.Minute
)

// newS3Client builds a client for the bucket in cfg. Credentials and, unless
// storage.s3.region is set, the region come from the default AWS chain:
// environment, shared config and credentials files, SSO, and the ECS or
// EC2 instance role.
func newS3Client(ctx context.Context, cfg *config.S3Config) (*s3.Client, error) {
	awsCfg, err := loadAWSConfig(ctx, cfg)
	if err != nil {
		return nil, errors.New("T130").
			WithDetail("cannot load the AWS configuration").
			Wrap(err)
	}
	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

func loadAWSConfig(ctx context.Context, cfg *config.S3Config) (aws.Config, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, err
	}
	if awsCfg.Region == "" {
		awsCfg.Region = defaultRegion
	}
	return awsCfg, nil
}

// newS3Checker connects to the bucket in cfg and verifies it is reachable.
func newS3Checker(ctx context.Context, cfg *config.S3Config, logger *slog.Logger) (*storage.S3Checker, error) {
	client, err := newS3Client(ctx, cfg)
	if err != nil {
		return nil, err
	}
	checker := storage.NewS3Checker(client, cfg.Bucket, cfg.Prefix).WithLogger(logger)
	if err := checker.Ping(ctx); err != nil {
		return nil, errors.New("T130").
			WithDetail("bucket " + cfg.Bucket + " in " + client.Options().Region + " is not reachable").
			WithSuggestion("Check storage.s3 in toolbox.json and the AWS credentials (environment, profile or instance role)").
			Wrap(err)
	}
	return checker, nil
}

// remoteChecker returns a cached S3 checker when cfg configures a bucket,
// or nil.
func remoteChecker(ctx context.Context, cfg *config.Config, logger *slog.Logger) (assets.FileChecker, error) {
	if cfg.Storage.S3 == nil {
		return nil, nil
	}
	checker, err := newS3Checker(ctx, cfg.Storage.S3, logger)
	if err != nil {
		return nil, err
	}
	return assets.NewCachedChecker(checker, s3CacheTTL), nil
}

// newSite builds the Backbone used by resolve and render. Lookups go to
// S3, the build manifest or the asset directory, in that order.
func newSite(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*config.Site, error) {
	remote, err := remoteChecker(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	if remote != nil {
		return config.NewSite(cfg, remote, logger, config.WithBasePath("")), nil
	}

	if path := cfg.ManifestPath(); path != "" {
		m, err := assets.LoadManifest(path)
		if err != nil {
			return nil, errors.New("T103").WithLocation(path, 0, 0).Wrap(err)
		}
		return config.NewSite(cfg, m.WithRoot(cfg.AssetsPath()), logger), nil
	}
	return config.NewSite(cfg, nil, logger), nil
}
