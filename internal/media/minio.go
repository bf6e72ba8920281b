package media

import (
	"context"
	"fmt"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Secure    bool
	// PublicURL is the origin browsers reach the bucket through. Defaults to
	// the endpoint.
	PublicURL string
}

// MinioStore keeps media in one S3-compatible bucket.
type MinioStore struct {
	client    *minio.Client
	bucket    string
	publicURL string
}

func NewMinioStore(cfg MinioConfig) (*MinioStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.Secure,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	public := cfg.PublicURL
	if public == "" {
		scheme := "http"
		if cfg.Secure {
			scheme = "https"
		}
		public = scheme + "://" + cfg.Endpoint
	}
	return &MinioStore{client: client, bucket: cfg.Bucket, publicURL: strings.TrimRight(public, "/")}, nil
}

// EnsureBucket creates the bucket when it does not exist yet.
func (s *MinioStore) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket %s: %w", s.bucket, err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", s.bucket, err)
	}
	return nil
}

func (s *MinioStore) Upload(ctx context.Context, folder string, file File) (Object, error) {
	key := objectKey(folder, file.Name)
	size := file.Size
	if size <= 0 {
		size = -1
	}
	_, err := s.client.PutObject(ctx, s.bucket, key, file.Body, size, minio.PutObjectOptions{
		ContentType: file.ContentType,
	})
	if err != nil {
		return Object{}, fmt.Errorf("failed to upload %s: %w", key, err)
	}
	return Object{URL: s.publicURL + "/" + s.bucket + "/" + key, PublicID: key}, nil
}

// Delete removes the object. S3 semantics make removing a missing key a
// success.
func (s *MinioStore) Delete(ctx context.Context, publicID string) error {
	if !validKey(publicID) {
		return fmt.Errorf("invalid media id %q", publicID)
	}
	if err := s.client.RemoveObject(ctx, s.bucket, publicID, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete %s: %w", publicID, err)
	}
	return nil
}
