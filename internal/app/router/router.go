package router

import (
	authhandler "sign_backend/internal/feature/auth/transport/handler"
	detectionhandler "sign_backend/internal/feature/detection/transport/handler"
	jobshandler "sign_backend/internal/feature/jobs/transport/handler"
	"sign_backend/internal/platform/http/handler"
	jwtmw "sign_backend/internal/platform/jwt"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewRouter(authHandler *authhandler.AuthHandler, detection *detectionhandler.DetectionHandler,
	jobs *jobshandler.JobsHandler, outputsDir string) *gin.Engine {
	r := gin.Default()

	// CORS追加（ブラウザのフロントエンドから叩く想定）
	r.Use(cors.Default())

	// 認証不要
	// 導通確認用
	r.GET("/healthz", handler.Health)
	// Prometheusメトリクス
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	// 新規ユーザー登録
	r.POST("/signup", authHandler.Signup)
	// ログイン（JWT 発行）
	r.POST("/login", authHandler.Login)

	// 注釈付き成果物の配信
	r.Static("/outputs", outputsDir)

	// 検出は未認証でも利用可能。トークンがあればジョブ履歴に紐づく
	v1 := r.Group("/v1")
	v1.Use(jwtmw.AuthOptional())
	{
		v1.POST("/detect", detection.Detect)
		v1.POST("/detect/analyze", detection.AnalyzeScene)
	}

	// 認証必須のルート
	auth := r.Group("/v1")
	// jwtmw.AuthRequired() ミドルウェアを適用
	// → リクエストヘッダーに JWT が必要になる
	auth.Use(jwtmw.AuthRequired())
	{
		auth.GET("/jobs", jobs.List)
		auth.GET("/jobs/:id", jobs.Get)
	}

	return r
}
