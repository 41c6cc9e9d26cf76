package di

import (
	"context"
	"log/slog"

	"sign_backend/internal/feature/detection/adapters/gemini"
	"sign_backend/internal/feature/detection/usecase"
)

// NewSceneAnalyzer creates a Gemini-backed scene analyzer.
// APIキーが無いなど初期化に失敗した場合はnilを返し、解析機能だけを無効にします。
func NewSceneAnalyzer(ctx context.Context) usecase.SceneAnalyzer {
	a, err := gemini.NewGeminiAnalyzer(ctx)
	if err != nil {
		slog.Warn("scene analyzer unavailable", "error", err)
		return nil
	}
	return a
}
