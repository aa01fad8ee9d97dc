package session

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// S3Config configures ObjectStore.
type S3Config struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// ObjectStore keeps each snapshot as one object in an S3-compatible bucket.
type ObjectStore struct {
	client   *minio.Client
	bucket   string
	region   string
	initOnce sync.Once
	initErr  error
}

// NewObjectStore validates cfg and creates the client. The bucket is created
// lazily on first use.
func NewObjectStore(cfg S3Config) (*ObjectStore, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("s3 endpoint is required")
	}
	access := strings.TrimSpace(cfg.AccessKey)
	secret := strings.TrimSpace(cfg.SecretKey)
	if access == "" || secret == "" {
		return nil, fmt.Errorf("s3 access key and secret key are required")
	}
	bucket := strings.TrimSpace(cfg.Bucket)
	if bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}
	region := strings.TrimSpace(cfg.Region)
	if region == "" {
		region = "us-east-1"
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(access, secret, ""),
		Secure: cfg.UseSSL,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create s3 client: %w", err)
	}
	return &ObjectStore{client: client, bucket: bucket, region: region}, nil
}

func (s *ObjectStore) ensureBucket(ctx context.Context) error {
	s.initOnce.Do(func() {
		exists, err := s.client.BucketExists(ctx, s.bucket)
		if err != nil {
			s.initErr = err
			return
		}
		if !exists {
			s.initErr = s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: s.region})
		}
	})
	return s.initErr
}

func (s *ObjectStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := s.ensureBucket(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure bucket: %w", err)
	}
	obj, err := s.client.GetObject(ctx, s.bucket, objectKey(key), minio.GetObjectOptions{})
	if err != nil {
		return nil, mapObjectError(err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, mapObjectError(err)
	}
	return data, nil
}

func (s *ObjectStore) Set(ctx context.Context, key string, value []byte) error {
	if err := s.ensureBucket(ctx); err != nil {
		return fmt.Errorf("failed to ensure bucket: %w", err)
	}
	_, err := s.client.PutObject(ctx, s.bucket, objectKey(key), bytes.NewReader(value), int64(len(value)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return fmt.Errorf("failed to put snapshot: %w", err)
	}
	return nil
}

func (s *ObjectStore) Remove(ctx context.Context, key string) error {
	if err := s.ensureBucket(ctx); err != nil {
		return fmt.Errorf("failed to ensure bucket: %w", err)
	}
	if err := s.client.RemoveObject(ctx, s.bucket, objectKey(key), minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to remove snapshot: %w", err)
	}
	return nil
}

// Ping checks that the bucket is reachable.
func (s *ObjectStore) Ping(ctx context.Context) error {
	_, err := s.client.BucketExists(ctx, s.bucket)
	return err
}

func objectKey(key string) string {
	return "snapshots/" + strings.ReplaceAll(key, ":", "/") + ".json"
}

func mapObjectError(err error) error {
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NoSuchBucket":
		return ErrNotFound
	}
	return fmt.Errorf("failed to get snapshot: %w", err)
}
