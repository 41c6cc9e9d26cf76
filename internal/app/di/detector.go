// Package di provides dependency injection factories for creating application components.
package di

import (
	"context"
	"log/slog"
	"os"
	"time"

	"sign_backend/internal/feature/detection/adapters/vision"
	"sign_backend/internal/feature/detection/adapters/yolo"
	"sign_backend/internal/feature/detection/usecase"
	infrahttp "sign_backend/internal/platform/http"
	"sign_backend/internal/shared/ratelimiter"
)

// NewYOLOClient creates a fully configured sidecar client with HTTP client and rate limiter.
func NewYOLOClient() *yolo.Client {
	cfg := yolo.LoadConfig()
	httpClient := infrahttp.NewHTTPClient(cfg.Timeout)
	limiter := ratelimiter.NewRateLimiter(cfg.RateLimit, time.Minute)
	return yolo.NewClient(cfg, httpClient, limiter)
}

// NewImageDetector selects the image detection backend.
// DETECTOR_BACKEND=vision のときCloud Vision、それ以外はYOLOサイドカーを使います。
func NewImageDetector(ctx context.Context, yoloClient *yolo.Client) usecase.ImageDetector {
	if os.Getenv("DETECTOR_BACKEND") != "vision" {
		return yoloClient
	}
	v, err := vision.NewVisionDetector(ctx)
	if err != nil {
		slog.Warn("vision backend unavailable, falling back to yolo sidecar", "error", err)
		return yoloClient
	}
	return v
}
