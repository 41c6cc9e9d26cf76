package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	redisv9 "github.com/redis/go-redis/v9"

	"sign_backend/internal/app/di"
	"sign_backend/internal/app/router"
	authadapters "sign_backend/internal/feature/auth/adapters"
	authhandler "sign_backend/internal/feature/auth/transport/handler"
	authusecase "sign_backend/internal/feature/auth/usecase"
	detectionhandler "sign_backend/internal/feature/detection/transport/handler"
	detectionusecase "sign_backend/internal/feature/detection/usecase"
	jobshandler "sign_backend/internal/feature/jobs/transport/handler"
	jobsusecase "sign_backend/internal/feature/jobs/usecase"
	infradb "sign_backend/internal/platform/db"
	jwtmw "sign_backend/internal/platform/jwt"
	"sign_backend/internal/platform/metrics"
	infraredis "sign_backend/internal/platform/redis"
	"sign_backend/internal/platform/render"
	"sign_backend/internal/platform/storage"
)

func main() {
	// .envがあれば読み込む（無くてもよい）
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file loaded")
	}

	ctx := context.Background()

	// db
	db := infradb.OpenDB()

	// Redis
	var rdb *redisv9.Client
	if tmp, err := infraredis.NewRedisClient(); err != nil {
		slog.Warn("Redis unavailable. Running without cache.")
		rdb = nil
	} else {
		rdb = tmp
		defer func() {
			if err := rdb.Close(); err != nil {
				slog.Error("failed to close Redis client", "error", err)
			}
		}()
	}

	// 成果物ストアと保持期間スイーパー
	storageCfg := storage.LoadConfig()
	store, err := storage.NewFileStore(storageCfg.Dir, storageCfg.URLPrefix)
	if err != nil {
		slog.Error("failed to init artifact store", "error", err)
		os.Exit(1)
	}
	sweeper, err := storage.StartRetentionSweeper(store, storageCfg.TTL, storageCfg.SweepInterval)
	if err != nil {
		slog.Error("failed to start retention sweeper", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := sweeper.Shutdown(); err != nil {
			slog.Error("failed to shut down retention sweeper", "error", err)
		}
	}()

	// Repository
	userRepo := authadapters.NewUserRepository(db)
	jobRepo := di.NewJobRepository(rdb, db)

	// 検出バックエンドと周辺コンポーネント
	yoloClient := di.NewYOLOClient()
	detector := di.NewImageDetector(ctx, yoloClient)
	analyzer := di.NewSceneAnalyzer(ctx)
	annotator := render.NewAnnotator()
	m := metrics.New()

	// Usecase
	tokenIssuer := jwtmw.NewGenerator(os.Getenv(jwtmw.EnvKeyJWTSecret), 24*time.Hour)
	authUC := authusecase.NewAuthUsecase(userRepo, tokenIssuer)
	jobsUC := jobsusecase.NewJobsUsecase(jobRepo)
	detectionUC := detectionusecase.NewDetectionUsecase(
		detector, yoloClient, annotator, store, jobsUC, analyzer, m)

	// Handler
	authH := authhandler.NewAuthHandler(authUC)
	jobsH := jobshandler.NewJobsHandler(jobsUC)
	detectionH := detectionhandler.NewDetectionHandler(detectionUC)

	// ルータ生成
	r := router.NewRouter(authH, detectionH, jobsH, store.Dir())

	// JWT_SECRETチェック（開発中の注意喚起）
	if os.Getenv(jwtmw.EnvKeyJWTSecret) == "" {
		slog.Warn("JWT_SECRET is not set. Set a strong secret in production.")
	}

	addr := os.Getenv("SERVER_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	if err := r.Run(addr); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
