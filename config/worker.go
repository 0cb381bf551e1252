package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"proposal-reviewer/pkg/queue"
	"proposal-reviewer/pkg/worker"
)

// WorkerFile is the optional YAML config consumed by the worker
// binary. Anything unset falls back to environment-derived defaults.
type WorkerFile struct {
	Worker worker.Config `yaml:"worker"`
	Queue  queue.Config  `yaml:"queue"`
}

// LoadWorkerFile reads worker settings from path. An empty path or a
// missing file yields defaults from ServiceConfig.
func LoadWorkerFile(path string) (*WorkerFile, error) {
	svc := GetServiceConfig()
	cfg := &WorkerFile{
		Worker: worker.Config{
			RedisAddr:   svc.RedisAddr,
			RedisDB:     svc.RedisDB,
			Concurrency: getEnvInt("WORKER_CONCURRENCY", 4),
		},
		Queue: queue.Config{
			RedisAddr: svc.RedisAddr,
			RedisDB:   svc.RedisDB,
		},
	}
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read worker config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse worker config %s: %w", path, err)
	}
	if cfg.Worker.RedisAddr == "" {
		cfg.Worker.RedisAddr = svc.RedisAddr
	}
	if cfg.Queue.RedisAddr == "" {
		cfg.Queue.RedisAddr = svc.RedisAddr
	}
	return cfg, nil
}
