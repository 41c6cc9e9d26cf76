package di

import (
	"time"

	jobsadapters "sign_backend/internal/feature/jobs/adapters"
	"sign_backend/internal/feature/jobs/usecase"
	"sign_backend/internal/platform/cache"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// jobCacheTTL はジョブ履歴キャッシュの保持時間です。
const jobCacheTTL = 5 * time.Minute

// NewJobRepository creates a JobRepository implementation.
// If Redis is available, reads are cached and invalidated on writes.
// Otherwise, it falls back to plain GORM access.
func NewJobRepository(rdb *redis.Client, db *gorm.DB) usecase.JobRepository {
	inner := jobsadapters.NewJobRepository(db)
	return cache.NewCachingJobRepository(rdb, jobCacheTTL, inner, "jobs")
}
