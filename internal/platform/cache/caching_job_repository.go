// Package cache provides caching implementations for repository interfaces.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"sign_backend/internal/feature/jobs/domain/entity"
	"sign_backend/internal/feature/jobs/usecase"
)

// CachingJobRepository decorates a JobRepository with Redis caching of the
// per-user history listing. It implements the decorator pattern, transparently
// adding caching without modifying the underlying repository.
type CachingJobRepository struct {
	inner     usecase.JobRepository
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
}

// CachingJobRepositoryがJobRepositoryを実装していることをコンパイル時に検証します。
var _ usecase.JobRepository = (*CachingJobRepository)(nil)

// NewCachingJobRepository decorates a JobRepository with Redis caching.
// If ttl is 0, it defaults to 5 minutes. If namespace is empty, it uses "jobs".
func NewCachingJobRepository(rdb *redis.Client, ttl time.Duration, inner usecase.JobRepository, namespace string) *CachingJobRepository {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if namespace == "" {
		namespace = "jobs"
	}
	return &CachingJobRepository{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
	}
}

// Create persists a job and invalidates the owning user's cached listings.
func (c *CachingJobRepository) Create(ctx context.Context, job *entity.DetectionJob) error {
	if err := c.inner.Create(ctx, job); err != nil {
		return err
	}
	if c.rdb == nil {
		return nil
	}
	// Best effort: don't fail the write if cache invalidation fails
	_ = c.deleteByPattern(ctx, c.listKeyPrefix(job.UserID)+"*")
	return nil
}

// FindByUser retrieves a user's jobs, checking cache first then falling back to the database.
func (c *CachingJobRepository) FindByUser(ctx context.Context, userID uint, limit int) ([]entity.DetectionJob, error) {
	if c.rdb == nil {
		return c.inner.FindByUser(ctx, userID, limit)
	}

	key := c.listKey(userID, limit)

	// 1) Check cache
	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		var out []entity.DetectionJob
		if err := json.Unmarshal(b, &out); err == nil {
			return out, nil
		}
		// Delete corrupted cache entry
		_ = c.rdb.Del(ctx, key).Err()
	}

	// 2) Fallback to database
	out, err := c.inner.FindByUser(ctx, userID, limit)
	if err != nil {
		return nil, err
	}

	// 3) Store in cache (best effort)
	if b, err := json.Marshal(out); err == nil {
		_ = c.rdb.Set(ctx, key, b, c.ttl).Err()
	}

	return out, nil
}

// FindByID delegates to the underlying repository. Single-job lookups are
// rare compared to listings and are not cached.
func (c *CachingJobRepository) FindByID(ctx context.Context, id string) (*entity.DetectionJob, error) {
	return c.inner.FindByID(ctx, id)
}

// listKey generates a cache key for a specific listing query.
func (c *CachingJobRepository) listKey(userID uint, limit int) string {
	return fmt.Sprintf("%s:user:%d:%d", c.namespace, userID, limit)
}

// listKeyPrefix generates a prefix for invalidating a user's listing entries.
func (c *CachingJobRepository) listKeyPrefix(userID uint) string {
	return fmt.Sprintf("%s:user:%d:", c.namespace, userID)
}

// deleteByPattern deletes all cache keys matching a given pattern using SCAN.
func (c *CachingJobRepository) deleteByPattern(ctx context.Context, pattern string) error {
	var cursor uint64
	for {
		keys, cur, err := c.rdb.Scan(ctx, cursor, pattern, 200).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		cursor = cur
		if cursor == 0 {
			break
		}
	}
	return nil
}
