// Package handler はdetectionフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"sign_backend/internal/api"
	"sign_backend/internal/feature/detection/domain/entity"
	"sign_backend/internal/feature/detection/usecase"
	jwtmw "sign_backend/internal/platform/jwt"
)

// DetectionUsecase は検出・シーン解析のユースケースインターフェースを定義します。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type DetectionUsecase interface {
	Detect(ctx context.Context, upload entity.Upload, opts entity.DetectOptions) (*entity.DetectionOutcome, error)
	AnalyzeScene(ctx context.Context, labels []string) (*entity.SceneAnalysis, error)
}

// DetectionHandler は検出処理のHTTPリクエストを処理します。
type DetectionHandler struct {
	uc DetectionUsecase
}

// NewDetectionHandler はDetectionHandlerの新しいインスタンスを生成します。
func NewDetectionHandler(uc DetectionUsecase) *DetectionHandler {
	return &DetectionHandler{uc: uc}
}

// Detect はメディアをアップロードしてオブジェクト検出を実行します。
//
// エンドポイント: POST /v1/detect
// Content-Type: multipart/form-data
// フィールド: file（画像または動画）、conf（任意、既定0.25）、imgsz（任意、既定640）
func (h *DetectionHandler) Detect(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		slog.Warn("アップロードファイルの取得に失敗", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "ファイルが必要です"})
		return
	}

	opts, ok := parseDetectOptions(c)
	if !ok {
		return
	}

	f, err := file.Open()
	if err != nil {
		slog.Error("アップロードファイルのオープンに失敗", "error", err)
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "ファイルの読み込みに失敗しました"})
		return
	}
	defer func() {
		if err := f.Close(); err != nil {
			slog.Warn("アップロードファイルのクローズに失敗", "error", err)
		}
	}()

	data, err := io.ReadAll(f)
	if err != nil {
		slog.Error("アップロードデータの読み取りに失敗", "error", err)
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "ファイルの読み込みに失敗しました"})
		return
	}

	upload := entity.Upload{
		FileName:    file.Filename,
		ContentType: file.Header.Get("Content-Type"),
		Data:        data,
		UserID:      currentUserID(c),
	}

	outcome, err := h.uc.Detect(c.Request.Context(), upload, opts)
	if err != nil {
		h.respondDetectError(c, err)
		return
	}

	dets := make([]api.DetectionResponse, 0, len(outcome.Detections))
	for _, d := range outcome.Detections {
		dets = append(dets, api.DetectionResponse{
			Label:      d.Label,
			Confidence: d.Confidence,
			Box:        api.BoxResponse{X1: d.Box.X1, Y1: d.Box.Y1, X2: d.Box.X2, Y2: d.Box.Y2},
		})
	}
	c.JSON(http.StatusOK, api.DetectResponse{
		JobID:        outcome.JobID,
		Type:         string(outcome.Kind),
		ResultURL:    outcome.ResultURL,
		ThumbnailURL: outcome.ThumbnailURL,
		Detections:   dets,
	})
}

// AnalyzeScene は検出ラベルの解説サマリーを生成します。
//
// エンドポイント: POST /v1/detect/analyze
// Content-Type: application/json
func (h *DetectionHandler) AnalyzeScene(c *gin.Context) {
	var req api.SceneAnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("シーン解析リクエストのバリデーションに失敗", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "検出ラベルが必要です"})
		return
	}

	analysis, err := h.uc.AnalyzeScene(c.Request.Context(), req.Labels)
	if err != nil {
		slog.Error("シーン解析に失敗", "error", err)
		c.JSON(http.StatusBadGateway, api.ErrorResponse{Error: "シーン解析に失敗しました"})
		return
	}

	c.JSON(http.StatusOK, api.SceneAnalysisResponse{
		Labels:  analysis.Labels,
		Summary: analysis.Summary,
	})
}

// parseDetectOptions はconf/imgszフォームフィールドを解析します。
// 未指定の場合はドキュメント化された既定値を使用し、解析不能な値には400を返します。
func parseDetectOptions(c *gin.Context) (entity.DetectOptions, bool) {
	opts := entity.DetectOptions{
		Confidence: usecase.DefaultConfidence,
		ImageSize:  usecase.DefaultImageSize,
	}
	if s := c.PostForm("conf"); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "confが不正です"})
			return opts, false
		}
		opts.Confidence = v
	}
	if s := c.PostForm("imgsz"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "imgszが不正です"})
			return opts, false
		}
		opts.ImageSize = v
	}
	return opts, true
}

// respondDetectError はusecaseのエラーをHTTPステータスにマッピングします。
// クライアント起因のエラーは400、外部モデル・保存の失敗は502を返します。
func (h *DetectionHandler) respondDetectError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, usecase.ErrEmptyUpload):
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "ファイルが空です"})
	case errors.Is(err, usecase.ErrUploadTooLarge):
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "ファイルサイズが上限を超えています"})
	case errors.Is(err, usecase.ErrUnsupportedMedia):
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "対応していないファイル形式です"})
	case errors.Is(err, usecase.ErrInvalidConfidence):
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "confは0から1の範囲で指定してください"})
	case errors.Is(err, usecase.ErrInvalidImageSize):
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "imgszは正の整数で指定してください"})
	default:
		slog.Error("検出処理に失敗", "error", err)
		c.JSON(http.StatusBadGateway, api.ErrorResponse{Error: "検出に失敗しました"})
	}
}

// currentUserID は認証済みユーザーのIDを返します。匿名の場合は0を返します。
func currentUserID(c *gin.Context) uint {
	v, ok := c.Get(jwtmw.ContextUserID)
	if !ok {
		return 0
	}
	id, ok := v.(uint)
	if !ok {
		return 0
	}
	return id
}
