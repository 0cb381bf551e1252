package config

import (
	"sync"
	"time"

	"proposal-reviewer/internal/vision"
)

var (
	visionOnce   sync.Once
	visionConfig *vision.Config
)

func GetVisionConfig() *vision.Config {
	visionOnce.Do(func() {
		loadEnv()
		visionConfig = &vision.Config{
			Endpoint:    getEnv("VISION_ENDPOINT", "http://localhost:11434"),
			Model:       getEnv("VISION_MODEL", "ocr-vision"),
			MaxSegments: getEnvInt("VISION_MAX_SEGMENTS", 6),
			Timeout:     time.Duration(getEnvInt("VISION_TIMEOUT_SECONDS", 120)) * time.Second,
		}
	})
	return visionConfig
}
