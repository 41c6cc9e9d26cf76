// Package yolo provides a client for the YOLO inference sidecar.
package yolo

import (
	"os"
	"strconv"
	"time"
)

// Config holds configuration for the YOLO inference sidecar client.
type Config struct {
	BaseURL   string        // Base URL of the sidecar (e.g., "http://localhost:5000")
	ModelPath string        // Model weights path, forwarded to the sidecar for observability
	Timeout   time.Duration // HTTP request timeout; video inference is slow, keep generous
	RateLimit int           // Maximum sidecar calls per minute
}

// LoadConfig loads sidecar configuration from environment variables.
func LoadConfig() Config {
	base := os.Getenv("YOLO_BASE_URL")
	if base == "" {
		base = "http://localhost:5000"
	}
	limit := 60
	if v, err := strconv.Atoi(os.Getenv("YOLO_RATE_LIMIT")); err == nil && v > 0 {
		limit = v
	}
	return Config{
		BaseURL:   base,
		ModelPath: os.Getenv("MODEL_PATH"),
		Timeout:   5 * time.Minute,
		RateLimit: limit,
	}
}
