// Package minio backs the review artifact archive with a MinIO bucket.
package minio

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"proposal-reviewer/pkg/logger"
)

// Config holds the MinIO connection settings.
type Config struct {
	Endpoint   string
	AccessKey  string
	SecretKey  string
	UseSSL     bool
	Region     string
	BucketName string
}

// Archive stores review artifacts in one bucket.
type Archive struct {
	client     *minio.Client
	bucketName string
	logger     logger.Logger
}

// NewArchive connects to MinIO and creates the artifact bucket if it
// does not exist yet.
func NewArchive(cfg *Config, log logger.Logger) (*Archive, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	exists, err := client.BucketExists(context.Background(), cfg.BucketName)
	if err != nil {
		return nil, fmt.Errorf("check bucket existence: %w", err)
	}
	if !exists {
		err = client.MakeBucket(context.Background(), cfg.BucketName, minio.MakeBucketOptions{Region: cfg.Region})
		if err != nil {
			return nil, fmt.Errorf("create bucket: %w", err)
		}
	}

	return &Archive{client: client, bucketName: cfg.BucketName, logger: log}, nil
}

// Store implements Storage.Store.
func (a *Archive) Store(ctx context.Context, reader io.Reader, key string, size int64) (string, error) {
	_, err := a.client.PutObject(ctx, a.bucketName, key, reader, size, minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		a.logger.Error("could not store artifact",
			logger.String("bucket", a.bucketName),
			logger.String("key", key),
			logger.Error(err),
		)
		return "", fmt.Errorf("store artifact: %w", err)
	}
	return key, nil
}

// CleanupBefore implements Storage.CleanupBefore.
func (a *Archive) CleanupBefore(ctx context.Context, threshold time.Time) error {
	objectCh := a.client.ListObjects(ctx, a.bucketName, minio.ListObjectsOptions{Recursive: true})
	for obj := range objectCh {
		if obj.Err != nil {
			a.logger.Error("error listing artifacts",
				logger.String("bucket", a.bucketName),
				logger.Error(obj.Err),
			)
			continue
		}
		if obj.LastModified.Before(threshold) {
			if err := a.client.RemoveObject(ctx, a.bucketName, obj.Key, minio.RemoveObjectOptions{}); err != nil {
				a.logger.Error("could not delete expired artifact",
					logger.String("key", obj.Key),
					logger.Error(err),
				)
				continue
			}
			a.logger.Info("deleted expired artifact",
				logger.String("key", obj.Key),
				logger.Time("lastModified", obj.LastModified),
			)
		}
	}
	return nil
}
