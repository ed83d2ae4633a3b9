package config

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/retry"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/marmos91/dittorepo/internal/logger"
	"github.com/marmos91/dittorepo/internal/ratelimiter"
	"github.com/marmos91/dittorepo/pkg/directory"
	"github.com/marmos91/dittorepo/pkg/lock"
	lockMemory "github.com/marmos91/dittorepo/pkg/lock/memory"
	"github.com/marmos91/dittorepo/pkg/metrics"
	"github.com/marmos91/dittorepo/pkg/repository"
	repoBadger "github.com/marmos91/dittorepo/pkg/repository/badger"
	repoMemory "github.com/marmos91/dittorepo/pkg/repository/memory"
	repoS3 "github.com/marmos91/dittorepo/pkg/repository/s3"
	"github.com/mitchellh/mapstructure"
)

// RepositoryResult is a configured repository client and its cleanup.
type RepositoryResult struct {
	// Client is the decorated client handed to the directory cache
	Client repository.Client

	// Backend is the undecorated client, useful for seeding (memory, badger)
	Backend repository.Client

	closer io.Closer
}

// Close releases the resources held by the backend, if any.
func (r *RepositoryResult) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer.Close()
}

// CreateRepositoryClient creates a repository client based on configuration.
//
// This factory function uses the Type field to determine which client
// implementation to create, then decodes the type-specific configuration from
// the corresponding map and passes it to the client's constructor. The result
// is rate limited according to repository.rate_limit and recorded on m.
//
// Supported types:
//   - "memory": Uses pkg/repository/memory (in-memory tree, optional YAML fixture)
//   - "badger": Uses pkg/repository/badger (BadgerDB storage, persistent)
//   - "s3": Uses pkg/repository/s3 (bucket keys as a tree)
func CreateRepositoryClient(ctx context.Context, cfg *RepositoryConfig, m metrics.RepositoryMetrics) (*RepositoryResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		backend repository.Client
		closer  io.Closer
		err     error
	)

	switch cfg.Type {
	case "memory":
		backend, err = createMemoryRepository(cfg.Memory)
	case "badger":
		var repo *repoBadger.Repository
		repo, err = createBadgerRepository(ctx, cfg.Badger)
		if err == nil {
			backend, closer = repo, repo
		}
	case "s3":
		backend, err = createS3Repository(ctx, cfg.S3)
	default:
		return nil, fmt.Errorf("unknown repository type: %q (supported: memory, badger, s3)", cfg.Type)
	}
	if err != nil {
		return nil, err
	}

	if m == nil {
		m = metrics.NewNoopRepositoryMetrics()
	}

	limiter := ratelimiter.New(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	client := repository.Instrumented(repository.Throttled(backend, limiter, m), m)

	if !limiter.Unlimited() {
		logger.Info("Repository rate limit: %d req/s (burst %d)",
			cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	}

	return &RepositoryResult{Client: client, Backend: backend, closer: closer}, nil
}

// createMemoryRepository creates an in-memory repository.
func createMemoryRepository(options map[string]any) (*repoMemory.Repository, error) {
	var repoCfg repoMemory.MemoryRepositoryConfig
	if err := mapstructure.Decode(options, &repoCfg); err != nil {
		return nil, fmt.Errorf("failed to decode memory repository config: %w", err)
	}

	repo, err := repoMemory.NewFromConfig(repoCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create memory repository: %w", err)
	}

	if repoCfg.Fixture != "" {
		logger.Info("Memory repository loaded from fixture %s", repoCfg.Fixture)
	}
	return repo, nil
}

// createBadgerRepository creates a BadgerDB-backed repository.
func createBadgerRepository(ctx context.Context, options map[string]any) (*repoBadger.Repository, error) {
	var repoCfg repoBadger.BadgerRepositoryConfig
	if err := mapstructure.Decode(options, &repoCfg); err != nil {
		return nil, fmt.Errorf("failed to decode badger repository config: %w", err)
	}

	if repoCfg.DBPath == "" && !repoCfg.InMemory {
		return nil, fmt.Errorf("badger repository: db_path is required")
	}

	repo, err := repoBadger.Open(ctx, repoCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create badger repository: %w", err)
	}

	logger.Info("Badger repository opened at %s", repoCfg.DBPath)
	return repo, nil
}

// createS3Repository creates an S3-backed repository.
func createS3Repository(ctx context.Context, options map[string]any) (*repoS3.Repository, error) {
	var repoCfg repoS3.S3RepositoryConfig
	if err := mapstructure.Decode(options, &repoCfg); err != nil {
		return nil, fmt.Errorf("failed to decode S3 repository config: %w", err)
	}

	if repoCfg.Bucket == "" {
		return nil, fmt.Errorf("S3 repository: bucket is required")
	}
	if repoCfg.Region == "" {
		return nil, fmt.Errorf("S3 repository: region is required")
	}

	var configOptions []func(*awsConfig.LoadOptions) error
	configOptions = append(configOptions, awsConfig.WithRegion(repoCfg.Region))

	// Static credentials if provided, otherwise the default credential chain
	if repoCfg.AccessKeyID != "" && repoCfg.SecretAccessKey != "" {
		configOptions = append(configOptions, awsConfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(repoCfg.AccessKeyID, repoCfg.SecretAccessKey, ""),
		))
	}

	maxRetries := repoCfg.MaxRetries
	if maxRetries == 0 {
		maxRetries = 5
	}
	configOptions = append(configOptions, awsConfig.WithRetryer(func() aws.Retryer {
		return retry.NewStandard(func(o *retry.StandardOptions) {
			o.MaxAttempts = maxRetries
		})
	}))

	awsCfg, err := awsConfig.LoadDefaultConfig(ctx, configOptions...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		// Custom endpoints (MinIO, Localstack) need path-style addressing
		if repoCfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(repoCfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	repo, err := repoS3.New(client, repoCfg.Bucket, repoCfg.KeyPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 repository: %w", err)
	}

	logger.Info("S3 repository initialized: bucket=%s, region=%s, prefix=%s",
		repoCfg.Bucket, repoCfg.Region, repoCfg.KeyPrefix)
	return repo, nil
}

// CreateLockProvider creates the lock provider based on configuration.
//
// Supported types:
//   - "memory": Uses pkg/lock/memory (in-process locks)
//   - "none": every file is reported unlocked
func CreateLockProvider(cfg *LocksConfig) (lock.Provider, error) {
	switch cfg.Type {
	case "memory":
		return lockMemory.New(), nil
	case "none":
		return lock.None(), nil
	default:
		return nil, fmt.Errorf("unknown lock provider type: %q (supported: memory, none)", cfg.Type)
	}
}

// OpenDirectory opens the directory tree rooted at repository.root.
func OpenDirectory(ctx context.Context, cfg *Config, client repository.Client, locks lock.Provider, m metrics.DirectoryMetrics) (*directory.LazyDirectory, error) {
	root, err := directory.Open(ctx, cfg.Repository.Root, client, locks,
		directory.WithMetrics(m),
		directory.WithLockLookupConcurrency(cfg.Locks.LookupConcurrency),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open directory tree at %s: %w", cfg.Repository.Root, err)
	}
	return root, nil
}
