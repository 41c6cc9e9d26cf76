// Package handler はjobsフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"sign_backend/internal/api"
	"sign_backend/internal/feature/jobs/domain/entity"
	"sign_backend/internal/feature/jobs/usecase"
	jwtmw "sign_backend/internal/platform/jwt"
)

// JobsUsecase は検出履歴操作のユースケースインターフェースを定義します。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type JobsUsecase interface {
	List(ctx context.Context, userID uint, limit int) ([]entity.DetectionJob, error)
	Get(ctx context.Context, userID uint, id string) (*entity.DetectionJob, error)
}

// JobsHandler は検出履歴のHTTPリクエストを処理します。
type JobsHandler struct {
	uc JobsUsecase
}

// NewJobsHandler はJobsHandlerの新しいインスタンスを生成します。
func NewJobsHandler(uc JobsUsecase) *JobsHandler {
	return &JobsHandler{uc: uc}
}

// List は認証済みユーザーの検出履歴を新しい順に返します。
//
// エンドポイント例:
// GET /v1/jobs?limit=50
func (h *JobsHandler) List(c *gin.Context) {
	userID, ok := authedUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "認証が必要です"})
		return
	}

	// 未指定の場合はusecase側のデフォルト値を使用
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))

	jobs, err := h.uc.List(c.Request.Context(), userID, limit)
	if err != nil {
		slog.Error("検出履歴の取得に失敗", "error", err, "user_id", userID)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "履歴の取得に失敗しました"})
		return
	}

	out := make([]api.JobResponse, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, toJobResponse(j))
	}
	c.JSON(http.StatusOK, out)
}

// Get は認証済みユーザーのジョブを1件返します。
//
// エンドポイント: GET /v1/jobs/:id
func (h *JobsHandler) Get(c *gin.Context) {
	userID, ok := authedUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "認証が必要です"})
		return
	}

	job, err := h.uc.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		if errors.Is(err, usecase.ErrJobNotFound) {
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "ジョブが見つかりません"})
			return
		}
		slog.Error("ジョブの取得に失敗", "error", err, "user_id", userID)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "ジョブの取得に失敗しました"})
		return
	}

	c.JSON(http.StatusOK, toJobResponse(*job))
}

func toJobResponse(j entity.DetectionJob) api.JobResponse {
	return api.JobResponse{
		ID:             j.ID,
		Type:           j.Kind,
		SourceName:     j.SourceName,
		ResultURL:      j.ResultURL,
		ThumbnailURL:   j.ThumbnailURL,
		Confidence:     j.Confidence,
		ImageSize:      j.ImageSize,
		DetectionCount: j.DetectionCount,
		CreatedAt:      j.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// authedUserID はJWTミドルウェアが設定したユーザーIDを取り出します。
func authedUserID(c *gin.Context) (uint, bool) {
	v, ok := c.Get(jwtmw.ContextUserID)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}
