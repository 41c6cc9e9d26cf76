package usecase

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"sign_backend/internal/feature/detection/domain/entity"
)

const (
	// AnalysisPromptTemplate は検出ラベル解説のプロンプトテンプレートです。
	AnalysisPromptTemplate = "道路標識の検出結果（%s）について、ドライバーが注意すべき点を日本語で3点以内にまとめて。"
	// MaxAnalysisLabels は1回の解析に渡せるラベル数の上限です。
	MaxAnalysisLabels = 20
	// MaxLabelLength はラベル1件の最大文字数（rune数）です。
	MaxLabelLength = 64
)

// AnalyzeScene は検出ラベルの一覧からAI生成の解説サマリーを生成します。
func (u *detectionUsecase) AnalyzeScene(ctx context.Context, labels []string) (*entity.SceneAnalysis, error) {
	if u.analyzer == nil {
		return nil, ErrAnalyzerUnavailable
	}
	if len(labels) == 0 {
		return nil, fmt.Errorf("at least one label is required")
	}
	if len(labels) > MaxAnalysisLabels {
		return nil, fmt.Errorf("too many labels: maximum is %d", MaxAnalysisLabels)
	}
	for _, l := range labels {
		if strings.TrimSpace(l) == "" {
			return nil, fmt.Errorf("label must not be empty")
		}
		if utf8.RuneCountInString(l) > MaxLabelLength {
			return nil, fmt.Errorf("label exceeds maximum length of %d characters", MaxLabelLength)
		}
	}

	prompt := fmt.Sprintf(AnalysisPromptTemplate, strings.Join(labels, "、"))
	summary, err := u.analyzer.Analyze(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("scene analyzer failed: %w", err)
	}

	return &entity.SceneAnalysis{
		Labels:  labels,
		Summary: summary,
	}, nil
}
