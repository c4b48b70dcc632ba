package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"taskhub/domain/ports"
	"taskhub/pkg/logger"
)

// S3BlobStore implements BlobStore for S3-compatible storage (MinIO,
// Cloudflare R2). Blobs are stored under their opaque id; the original
// file name rides along as user metadata so downloads can restore it.
type S3BlobStore struct {
	client *minio.Client
	bucket string
}

type S3BlobStoreConfig struct {
	Endpoint  string // minio:9000 or xxx.r2.cloudflarestorage.com
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	Region    string
}

const metaFileName = "Filename"

func NewS3BlobStore(config S3BlobStoreConfig) (ports.BlobStore, error) {
	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 50,
		MaxConnsPerHost:     100,
	}

	client, err := minio.New(config.Endpoint, &minio.Options{
		Creds:     credentials.NewStaticV4(config.AccessKey, config.SecretKey, ""),
		Secure:    config.UseSSL,
		Region:    config.Region,
		Transport: transport,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, config.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket: %w", err)
	}
	if !exists {
		err = client.MakeBucket(ctx, config.Bucket, minio.MakeBucketOptions{
			Region: config.Region,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
		logger.Info("S3 bucket created", "bucket", config.Bucket)
	}

	logger.Info("S3 blob store initialized",
		"endpoint", config.Endpoint,
		"bucket", config.Bucket,
		"ssl", config.UseSSL,
	)

	return &S3BlobStore{client: client, bucket: config.Bucket}, nil
}

func (s *S3BlobStore) Put(ctx context.Context, payload io.Reader, size int64, fileName, contentType string) (string, error) {
	blobID := uuid.New().String()

	_, err := s.client.PutObject(ctx, s.bucket, blobID, payload, size, minio.PutObjectOptions{
		ContentType:  contentType,
		UserMetadata: map[string]string{metaFileName: fileName},
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload blob: %w", err)
	}

	logger.Debug("Blob uploaded to S3", "blob_id", blobID, "size", size)
	return blobID, nil
}

func (s *S3BlobStore) Get(ctx context.Context, blobID string) (io.ReadCloser, ports.BlobInfo, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, blobID, minio.GetObjectOptions{})
	if err != nil {
		return nil, ports.BlobInfo{}, fmt.Errorf("failed to get blob: %w", err)
	}

	// GetObject is lazy; Stat surfaces the missing-key error.
	info, err := obj.Stat()
	if err != nil {
		obj.Close()
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, ports.BlobInfo{}, ports.ErrBlobNotFound
		}
		return nil, ports.BlobInfo{}, fmt.Errorf("failed to stat blob: %w", err)
	}

	return obj, ports.BlobInfo{
		FileName:    info.UserMetadata[metaFileName],
		ContentType: info.ContentType,
		Size:        info.Size,
	}, nil
}

func (s *S3BlobStore) Delete(ctx context.Context, blobID string) error {
	// RemoveObject succeeds for absent keys, which matches the idempotent
	// delete contract.
	err := s.client.RemoveObject(ctx, s.bucket, blobID, minio.RemoveObjectOptions{})
	if err != nil {
		return fmt.Errorf("failed to delete blob: %w", err)
	}

	logger.Debug("Blob deleted from S3", "blob_id", blobID)
	return nil
}

func (s *S3BlobStore) List(ctx context.Context) ([]string, error) {
	objectsCh := s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Recursive: true,
	})

	var blobIDs []string
	for obj := range objectsCh {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list blobs: %w", obj.Err)
		}
		blobIDs = append(blobIDs, obj.Key)
	}
	return blobIDs, nil
}

func (s *S3BlobStore) ProviderName() string {
	return "s3"
}
