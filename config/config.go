// Package config loads per-concern configuration from the environment,
// with an optional .env file for local development.
package config

import (
	"log"
	"os"
	"strconv"
	"sync"

	"github.com/joho/godotenv"
)

var envOnce sync.Once

// loadEnv reads .env from the working directory once. Missing files are
// fine; real deployments set variables directly.
func loadEnv() {
	envOnce.Do(func() {
		if err := godotenv.Load(); err != nil {
			log.Printf("Warning: .env file not found, falling back to environment variables")
		}
	})
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("Warning: invalid integer for %s: %q, using %d", key, v, fallback)
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Printf("Warning: invalid boolean for %s: %q, using %t", key, v, fallback)
		return fallback
	}
	return b
}
