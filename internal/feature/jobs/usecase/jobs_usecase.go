// Package usecase はjobsフィーチャーのビジネスロジックを実装します。
package usecase

import (
	"context"

	"sign_backend/internal/feature/jobs/domain/entity"
)

const (
	// DefaultListLimit はデフォルトの履歴返却件数です。
	DefaultListLimit = 50
	// MaxListLimit は履歴の最大返却件数です。
	MaxListLimit = 500
)

// JobRepository は検出履歴の永続化層を抽象化します。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type JobRepository interface {
	// Create は新しいジョブレコードをストレージに永続化します。
	Create(ctx context.Context, job *entity.DetectionJob) error
	// FindByUser は指定ユーザーのジョブを新しい順に取得します。
	FindByUser(ctx context.Context, userID uint, limit int) ([]entity.DetectionJob, error)
	// FindByID はIDでジョブを取得します。存在しない場合はErrJobNotFoundを返します。
	FindByID(ctx context.Context, id string) (*entity.DetectionJob, error)
}

// jobsUsecase は検出履歴操作のユースケースを定義します。
type jobsUsecase struct {
	jobs JobRepository
}

// NewJobsUsecase はjobsUsecaseの新しいインスタンスを生成します。
func NewJobsUsecase(jobs JobRepository) *jobsUsecase {
	return &jobsUsecase{jobs: jobs}
}

// Record は検出ジョブを履歴に記録します。
func (ju *jobsUsecase) Record(ctx context.Context, job *entity.DetectionJob) error {
	return ju.jobs.Create(ctx, job)
}

// List は指定ユーザーの検出履歴を新しい順に取得します。
func (ju *jobsUsecase) List(ctx context.Context, userID uint, limit int) ([]entity.DetectionJob, error) {
	if limit <= 0 || limit > MaxListLimit {
		limit = DefaultListLimit
	}
	return ju.jobs.FindByUser(ctx, userID, limit)
}

// Get は指定ユーザーのジョブを1件取得します。
// 他ユーザーのジョブは存在しないものとして扱います。
func (ju *jobsUsecase) Get(ctx context.Context, userID uint, id string) (*entity.DetectionJob, error) {
	job, err := ju.jobs.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if job.UserID != userID {
		return nil, ErrJobNotFound
	}
	return job, nil
}
