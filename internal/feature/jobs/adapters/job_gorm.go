// Package adapters はjobsフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"sign_backend/internal/feature/jobs/domain/entity"
	"sign_backend/internal/feature/jobs/usecase"
)

// jobGorm はJobRepositoryインターフェースのGORM実装です。
type jobGorm struct {
	db *gorm.DB
}

// jobGormがJobRepositoryを実装していることをコンパイル時に検証します。
var _ usecase.JobRepository = (*jobGorm)(nil)

// NewJobRepository は指定されたgorm.DB接続でjobGormの新しいインスタンスを生成します。
func NewJobRepository(db *gorm.DB) *jobGorm {
	return &jobGorm{db: db}
}

// JobModel は検出履歴のデータベースモデルです。
type JobModel struct {
	ID             string `gorm:"primaryKey;size:36"`
	UserID         uint   `gorm:"index;not null;default:0"`
	Kind           string `gorm:"size:16;not null"`
	SourceName     string `gorm:"size:255;not null"`
	ResultURL      string `gorm:"size:255;not null"`
	ThumbnailURL   string `gorm:"size:255"`
	Confidence     float64
	ImageSize      int
	DetectionCount int
	CreatedAt      time.Time `gorm:"index"`
}

func (JobModel) TableName() string {
	return "detection_jobs"
}

func toModel(e *entity.DetectionJob) JobModel {
	return JobModel{
		ID:             e.ID,
		UserID:         e.UserID,
		Kind:           e.Kind,
		SourceName:     e.SourceName,
		ResultURL:      e.ResultURL,
		ThumbnailURL:   e.ThumbnailURL,
		Confidence:     e.Confidence,
		ImageSize:      e.ImageSize,
		DetectionCount: e.DetectionCount,
	}
}

func toEntity(m JobModel) entity.DetectionJob {
	return entity.DetectionJob{
		ID:             m.ID,
		UserID:         m.UserID,
		Kind:           m.Kind,
		SourceName:     m.SourceName,
		ResultURL:      m.ResultURL,
		ThumbnailURL:   m.ThumbnailURL,
		Confidence:     m.Confidence,
		ImageSize:      m.ImageSize,
		DetectionCount: m.DetectionCount,
		CreatedAt:      m.CreatedAt,
	}
}

// Create はジョブレコードをデータベースに追加します。
func (r *jobGorm) Create(ctx context.Context, job *entity.DetectionJob) error {
	m := toModel(job)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return err
	}
	job.CreatedAt = m.CreatedAt
	return nil
}

// FindByUser は指定ユーザーのジョブを新しい順に取得します。
func (r *jobGorm) FindByUser(ctx context.Context, userID uint, limit int) ([]entity.DetectionJob, error) {
	var rows []JobModel
	q := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]entity.DetectionJob, 0, len(rows))
	for _, m := range rows {
		out = append(out, toEntity(m))
	}
	return out, nil
}

// FindByID はIDでジョブを取得します。
// ジョブが存在しない場合、usecase.ErrJobNotFoundを返します。
func (r *jobGorm) FindByID(ctx context.Context, id string) (*entity.DetectionJob, error) {
	var m JobModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrJobNotFound
		}
		return nil, err
	}
	e := toEntity(m)
	return &e, nil
}
