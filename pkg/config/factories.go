package config

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/retry"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/marmos91/dataroom/internal/logger"
	"github.com/marmos91/dataroom/pkg/dataroom"
	"github.com/marmos91/dataroom/pkg/metrics"
	"github.com/marmos91/dataroom/pkg/snapshot"
	"github.com/marmos91/dataroom/pkg/store"
	"github.com/marmos91/dataroom/pkg/store/badger"
	"github.com/marmos91/dataroom/pkg/store/memory"
	"github.com/mitchellh/mapstructure"
)

// CreateItemStore creates an item store based on configuration.
//
// This factory function uses the Type field to determine which store implementation
// to create, then decodes the type-specific configuration from the corresponding
// map and passes it to the store's constructor. The returned store is not yet
// initialized.
//
// Supported types:
//   - "memory": Uses pkg/store/memory (in-memory storage, ephemeral)
//   - "badger": Uses pkg/store/badger (BadgerDB storage, persistent)
//
// Parameters:
//   - ctx: Context for creation
//   - cfg: Item store configuration
//   - m: Store metrics (nil = no instrumentation)
//
// Returns:
//   - store.ItemStore: Store ready for Initialize
//   - error: Configuration error
func CreateItemStore(ctx context.Context, cfg *StoreConfig, m metrics.StoreMetrics) (store.ItemStore, error) {
	var (
		s   store.ItemStore
		err error
	)

	switch cfg.Type {
	case "memory":
		s, err = createMemoryItemStore(ctx, cfg.Memory)
	case "badger":
		s, err = createBadgerItemStore(ctx, cfg.Badger)
	default:
		return nil, fmt.Errorf("unknown item store type: %q (supported: memory, badger)", cfg.Type)
	}
	if err != nil {
		return nil, err
	}

	return store.WithMetrics(s, m), nil
}

// decodeOptions decodes a type-specific section into out.
//
// Input is weakly typed so values coming from environment variables
// ("true", "64") decode into bool and numeric fields.
func decodeOptions(options map[string]any, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return fmt.Errorf("failed to create decoder: %w", err)
	}
	return decoder.Decode(options)
}

// createMemoryItemStore creates an in-memory item store.
func createMemoryItemStore(ctx context.Context, options map[string]any) (store.ItemStore, error) {
	// Check context before creating store
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var storeCfg memory.MemoryItemStoreConfig
	if err := decodeOptions(options, &storeCfg); err != nil {
		return nil, fmt.Errorf("failed to decode memory item store options: %w", err)
	}

	return memory.NewMemoryItemStore(storeCfg), nil
}

// createBadgerItemStore creates a BadgerDB-based persistent item store.
func createBadgerItemStore(ctx context.Context, options map[string]any) (store.ItemStore, error) {
	// Check context before creating store
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var storeCfg badger.BadgerItemStoreConfig
	if err := decodeOptions(options, &storeCfg); err != nil {
		return nil, fmt.Errorf("failed to decode badger item store options: %w", err)
	}

	// Validate required fields
	if storeCfg.DBPath == "" && !storeCfg.InMemory {
		return nil, fmt.Errorf("badger item store: db_path is required")
	}

	logger.Debug("badger item store configured: path=%s in_memory=%v", storeCfg.DBPath, storeCfg.InMemory)
	return badger.NewBadgerItemStore(storeCfg), nil
}

// ServiceOptions converts the service section into dataroom.Options.
func ServiceOptions(cfg *ServiceConfig, m metrics.ServiceMetrics) dataroom.Options {
	return dataroom.Options{
		MaxFileSize:          cfg.MaxFileSize,
		AllowedMimeTypes:     append([]string(nil), cfg.AllowedMimeTypes...),
		VerifyContentType:    cfg.VerifyContentType,
		TransactionalCascade: cfg.TransactionalCascade,
		SerializeMutations:   cfg.SerializeMutations,
		Metrics:              m,
	}
}

// CreateSnapshotSink creates a snapshot sink based on configuration.
//
// Supported types:
//   - "file": Uses a local YAML file
//   - "s3": Uses a single object in Amazon S3 or compatible storage
func CreateSnapshotSink(ctx context.Context, cfg *SnapshotConfig) (snapshot.Sink, error) {
	switch cfg.Type {
	case "file":
		return createFileSnapshotSink(cfg.File)
	case "s3":
		return createS3SnapshotSink(ctx, cfg.S3)
	default:
		return nil, fmt.Errorf("unknown snapshot sink type: %q (supported: file, s3)", cfg.Type)
	}
}

// createFileSnapshotSink creates a file-based snapshot sink.
func createFileSnapshotSink(options map[string]any) (snapshot.Sink, error) {
	type FileSinkConfig struct {
		Path string `mapstructure:"path"`
	}

	var sinkCfg FileSinkConfig
	if err := decodeOptions(options, &sinkCfg); err != nil {
		return nil, fmt.Errorf("failed to decode file snapshot sink config: %w", err)
	}

	return snapshot.NewFileSink(sinkCfg.Path)
}

// createS3SnapshotSink creates an S3-based snapshot sink.
func createS3SnapshotSink(ctx context.Context, options map[string]any) (snapshot.Sink, error) {
	type S3SinkConfig struct {
		Region          string `mapstructure:"region"`
		Bucket          string `mapstructure:"bucket"`
		Key             string `mapstructure:"key"`
		Endpoint        string `mapstructure:"endpoint"`
		AccessKeyID     string `mapstructure:"access_key_id"`
		SecretAccessKey string `mapstructure:"secret_access_key"`
		MaxRetries      int    `mapstructure:"max_retries"`
	}

	var sinkCfg S3SinkConfig
	if err := decodeOptions(options, &sinkCfg); err != nil {
		return nil, fmt.Errorf("failed to decode S3 snapshot sink config: %w", err)
	}

	// Validate required fields
	if sinkCfg.Bucket == "" {
		return nil, fmt.Errorf("S3 snapshot sink: bucket is required")
	}

	if sinkCfg.Region == "" {
		return nil, fmt.Errorf("S3 snapshot sink: region is required")
	}

	// ========================================================================
	// Step 1: Build AWS Config
	// ========================================================================

	var configOptions []func(*awsConfig.LoadOptions) error

	// Set region
	configOptions = append(configOptions, awsConfig.WithRegion(sinkCfg.Region))

	// Set custom endpoint if provided (for MinIO, Localstack, etc.)
	if sinkCfg.Endpoint != "" {
		//nolint:staticcheck // TODO: migrate to BaseEndpoint when AWS SDK v2 stabilizes the new API
		customResolver := aws.EndpointResolverWithOptionsFunc(
			func(service, region string, options ...interface{}) (aws.Endpoint, error) {
				//nolint:staticcheck // TODO: migrate to BaseEndpoint when AWS SDK v2 stabilizes the new API
				return aws.Endpoint{
					URL:               sinkCfg.Endpoint,
					HostnameImmutable: true,
					Source:            aws.EndpointSourceCustom,
				}, nil
			},
		)
		//nolint:staticcheck // TODO: migrate to BaseEndpoint when AWS SDK v2 stabilizes the new API
		configOptions = append(configOptions, awsConfig.WithEndpointResolverWithOptions(customResolver))
	}

	// Set credentials if provided, otherwise use default credential chain
	if sinkCfg.AccessKeyID != "" && sinkCfg.SecretAccessKey != "" {
		credProvider := credentials.NewStaticCredentialsProvider(
			sinkCfg.AccessKeyID,
			sinkCfg.SecretAccessKey,
			"", // session token (empty for static credentials)
		)
		configOptions = append(configOptions, awsConfig.WithCredentialsProvider(credProvider))
	}

	// Default to 10 attempts if not specified (AWS default is 3)
	maxRetries := sinkCfg.MaxRetries
	if maxRetries == 0 {
		maxRetries = 10
	}
	configOptions = append(configOptions, awsConfig.WithRetryer(func() aws.Retryer {
		return retry.NewStandard(func(o *retry.StandardOptions) {
			o.MaxAttempts = maxRetries
		})
	}))

	// Load AWS config
	cfg, err := awsConfig.LoadDefaultConfig(ctx, configOptions...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	// ========================================================================
	// Step 2: Create S3 Client
	// ========================================================================

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		// Force path-style addressing for compatibility with MinIO/Localstack
		if sinkCfg.Endpoint != "" {
			o.UsePathStyle = true
		}
	})

	// ========================================================================
	// Step 3: Create S3 Sink
	// ========================================================================

	sink, err := snapshot.NewS3Sink(snapshot.S3SinkConfig{
		Client: client,
		Bucket: sinkCfg.Bucket,
		Key:    sinkCfg.Key,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 snapshot sink: %w", err)
	}

	logger.Info("S3 snapshot sink initialized: bucket=%s, region=%s", sinkCfg.Bucket, sinkCfg.Region)
	return sink, nil
}
