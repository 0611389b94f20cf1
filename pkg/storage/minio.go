// Package storage archives raw uploads in a MinIO bucket.
package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"docqa-go/internal/config"
	"docqa-go/pkg/log"
)

// Archive stores uploaded files as objects.
type Archive struct {
	client *minio.Client
	bucket string
}

// NewArchive connects to MinIO and creates the bucket if it does not exist.
func NewArchive(ctx context.Context, cfg config.MinIOConfig) (*Archive, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.BucketName)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", cfg.BucketName, err)
	}
	if !exists {
		log.Infof("[Storage] bucket '%s' does not exist, creating", cfg.BucketName)
		if err := client.MakeBucket(ctx, cfg.BucketName, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", cfg.BucketName, err)
		}
	}
	log.Infof("[Storage] archiving uploads to bucket '%s'", cfg.BucketName)
	return &Archive{client: client, bucket: cfg.BucketName}, nil
}

// ObjectName returns the object key for an upload.
func ObjectName(filename string, uploadedAt time.Time) string {
	return fmt.Sprintf("uploads/%s/%d_%s", uploadedAt.UTC().Format("2006/01/02"), uploadedAt.UnixMilli(), filename)
}

// Put uploads size bytes from r under objectName.
func (a *Archive) Put(ctx context.Context, objectName string, r io.Reader, size int64, contentType string) error {
	_, err := a.client.PutObject(ctx, a.bucket, objectName, r, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return fmt.Errorf("put object %s: %w", objectName, err)
	}
	return nil
}

// PresignedURL returns a time-limited download URL for objectName.
func (a *Archive) PresignedURL(ctx context.Context, objectName string, expiry time.Duration) (string, error) {
	u, err := a.client.PresignedGetObject(ctx, a.bucket, objectName, expiry, nil)
	if err != nil {
		log.Errorf("[Storage] generating presigned URL for %s: %v", objectName, err)
		return "", err
	}
	return u.String(), nil
}
