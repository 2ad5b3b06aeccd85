package snapshot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// ErrSnapshotNotFound is returned by Sink.Read when nothing was written yet.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// Sink stores one encoded snapshot document.
type Sink interface {
	// Type names the sink in logs and metrics (e.g., "file", "s3").
	Type() string

	// Write replaces the stored document with data.
	Write(ctx context.Context, data []byte) error

	// Read returns the stored document, or ErrSnapshotNotFound.
	Read(ctx context.Context) ([]byte, error)
}

// ============================================================================
// File sink
// ============================================================================

// FileSink keeps the snapshot in a local file.
type FileSink struct {
	path string
}

// NewFileSink creates a sink writing to path. Parent directories are created
// on the first write.
func NewFileSink(path string) (*FileSink, error) {
	if path == "" {
		return nil, fmt.Errorf("file snapshot sink: path is required")
	}
	return &FileSink{path: path}, nil
}

func (s *FileSink) Type() string { return "file" }

// Write replaces the file atomically by writing a sibling temp file first.
func (s *FileSink) Write(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp snapshot: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to replace snapshot: %w", err)
	}
	return nil
}

func (s *FileSink) Read(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", s.path, ErrSnapshotNotFound)
		}
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	return data, nil
}

// ============================================================================
// S3 sink
// ============================================================================

// S3API is the subset of the S3 client used by S3Sink.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3SinkConfig contains configuration for the S3 sink.
type S3SinkConfig struct {
	// Client is the configured S3 client
	Client S3API

	// Bucket is the S3 bucket name. It must already exist.
	Bucket string

	// Key is the object key of the snapshot
	// Default: "dataroom/snapshot.yaml"
	Key string
}

// S3Sink keeps the snapshot as a single object in an S3 bucket.
type S3Sink struct {
	client S3API
	bucket string
	key    string
}

// NewS3Sink creates an S3-backed sink.
func NewS3Sink(cfg S3SinkConfig) (*S3Sink, error) {
	if cfg.Client == nil {
		return nil, fmt.Errorf("S3 client is required")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("bucket name is required")
	}

	key := cfg.Key
	if key == "" {
		key = "dataroom/snapshot.yaml"
	}

	return &S3Sink{client: cfg.Client, bucket: cfg.Bucket, key: key}, nil
}

func (s *S3Sink) Type() string { return "s3" }

func (s *S3Sink) Write(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/yaml"),
	})
	if err != nil {
		return fmt.Errorf("failed to write snapshot to S3: %w", err)
	}
	return nil
}

func (s *S3Sink) Read(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		var notFound *types.NoSuchKey
		if errors.As(err, &notFound) {
			return nil, fmt.Errorf("s3://%s/%s: %w", s.bucket, s.key, ErrSnapshotNotFound)
		}
		return nil, fmt.Errorf("failed to get snapshot from S3: %w", err)
	}
	defer func() { _ = result.Body.Close() }()

	data, err := io.ReadAll(result.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot from S3: %w", err)
	}
	return data, nil
}
