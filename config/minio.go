package config

import (
	"sync"

	"proposal-reviewer/pkg/storage/minio"
)

var (
	minioOnce   sync.Once
	minioConfig *minio.Config
)

// GetMinioConfig returns the archive bucket settings, or nil when
// archiving is disabled (no MINIO_ENDPOINT set).
func GetMinioConfig() *minio.Config {
	minioOnce.Do(func() {
		loadEnv()
		endpoint := getEnv("MINIO_ENDPOINT", "")
		if endpoint == "" {
			return
		}
		minioConfig = &minio.Config{
			Endpoint:   endpoint,
			AccessKey:  getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey:  getEnv("MINIO_SECRET_KEY", ""),
			UseSSL:     getEnvBool("MINIO_USE_SSL", false),
			Region:     getEnv("MINIO_REGION", ""),
			BucketName: getEnv("MINIO_BUCKET_NAME", "review-artifacts"),
		}
	})
	return minioConfig
}
