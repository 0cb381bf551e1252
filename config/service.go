package config

import "sync"

var (
	serviceOnce   sync.Once
	serviceConfig *ServiceConfig
)

// ServiceConfig holds the settings shared by the server and worker
// binaries: where the backend lives, where results go, and how often
// the server polls for pending proposals.
type ServiceConfig struct {
	ServerAddr     string
	BackendURL     string
	DatabaseURL    string
	ReviewEndpoint string
	RedisAddr      string
	RedisDB        int
	PollSchedule   string // cron spec, empty disables polling

	// Archive retention sweep, worker side. The schedule only runs
	// when archiving itself is enabled.
	ArchiveRetentionDays int
	ArchiveSweepSchedule string // cron spec, empty disables the sweep
}

func GetServiceConfig() *ServiceConfig {
	serviceOnce.Do(func() {
		loadEnv()
		serviceConfig = &ServiceConfig{
			ServerAddr:     getEnv("SERVER_ADDR", ":8080"),
			BackendURL:     getEnv("BACKEND_URL", "http://localhost:3000"),
			DatabaseURL:    getEnv("DATABASE_URL", ""),
			ReviewEndpoint: getEnv("REVIEW_ENDPOINT", "http://localhost:3000/proposal-review"),
			RedisAddr:      getEnv("REDIS_ADDR", "localhost:6379"),
			RedisDB:        getEnvInt("REDIS_DB", 0),
			PollSchedule:   getEnv("POLL_SCHEDULE", "@every 1m"),

			ArchiveRetentionDays: getEnvInt("ARCHIVE_RETENTION_DAYS", 30),
			ArchiveSweepSchedule: getEnv("ARCHIVE_SWEEP_SCHEDULE", "@daily"),
		}
	})
	return serviceConfig
}
