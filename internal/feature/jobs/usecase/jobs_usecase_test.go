package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sign_backend/internal/feature/jobs/domain/entity"
)

// mockJobRepository はJobRepositoryインターフェースのモック実装です。
type mockJobRepository struct {
	CreateFunc     func(ctx context.Context, job *entity.DetectionJob) error
	FindByUserFunc func(ctx context.Context, userID uint, limit int) ([]entity.DetectionJob, error)
	FindByIDFunc   func(ctx context.Context, id string) (*entity.DetectionJob, error)
}

func (m *mockJobRepository) Create(ctx context.Context, job *entity.DetectionJob) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, job)
	}
	return nil
}

func (m *mockJobRepository) FindByUser(ctx context.Context, userID uint, limit int) ([]entity.DetectionJob, error) {
	if m.FindByUserFunc != nil {
		return m.FindByUserFunc(ctx, userID, limit)
	}
	return nil, nil
}

func (m *mockJobRepository) FindByID(ctx context.Context, id string) (*entity.DetectionJob, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, ErrJobNotFound
}

// TestJobsUsecase_Record は履歴記録がリポジトリへ委譲されることを検証します。
func TestJobsUsecase_Record(t *testing.T) {
	var created *entity.DetectionJob
	repo := &mockJobRepository{
		CreateFunc: func(ctx context.Context, job *entity.DetectionJob) error {
			created = job
			return nil
		},
	}
	uc := NewJobsUsecase(repo)

	job := &entity.DetectionJob{ID: "job-1", UserID: 1, Kind: "image"}
	err := uc.Record(context.Background(), job)

	require.NoError(t, err)
	assert.Equal(t, job, created)
}

// TestJobsUsecase_List はlimitの補正と委譲を検証します。
func TestJobsUsecase_List(t *testing.T) {
	tests := []struct {
		name      string
		limit     int
		wantLimit int
	}{
		{name: "zero limit falls back to default", limit: 0, wantLimit: DefaultListLimit},
		{name: "negative limit falls back to default", limit: -5, wantLimit: DefaultListLimit},
		{name: "limit above max falls back to default", limit: MaxListLimit + 1, wantLimit: DefaultListLimit},
		{name: "valid limit is passed through", limit: 10, wantLimit: 10},
		{name: "max limit is allowed", limit: MaxListLimit, wantLimit: MaxListLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotLimit int
			repo := &mockJobRepository{
				FindByUserFunc: func(ctx context.Context, userID uint, limit int) ([]entity.DetectionJob, error) {
					gotLimit = limit
					return []entity.DetectionJob{}, nil
				},
			}
			uc := NewJobsUsecase(repo)

			_, err := uc.List(context.Background(), 1, tt.limit)

			require.NoError(t, err)
			assert.Equal(t, tt.wantLimit, gotLimit)
		})
	}
}

// TestJobsUsecase_Get は取得と所有権チェックを検証します。
func TestJobsUsecase_Get(t *testing.T) {
	t.Run("success: returns own job", func(t *testing.T) {
		repo := &mockJobRepository{
			FindByIDFunc: func(ctx context.Context, id string) (*entity.DetectionJob, error) {
				return &entity.DetectionJob{ID: id, UserID: 1}, nil
			},
		}
		uc := NewJobsUsecase(repo)

		job, err := uc.Get(context.Background(), 1, "job-1")

		require.NoError(t, err)
		assert.Equal(t, "job-1", job.ID)
	})

	t.Run("failure: another user's job is treated as not found", func(t *testing.T) {
		repo := &mockJobRepository{
			FindByIDFunc: func(ctx context.Context, id string) (*entity.DetectionJob, error) {
				return &entity.DetectionJob{ID: id, UserID: 2}, nil
			},
		}
		uc := NewJobsUsecase(repo)

		_, err := uc.Get(context.Background(), 1, "job-1")

		assert.ErrorIs(t, err, ErrJobNotFound)
	})

	t.Run("failure: repository error is propagated", func(t *testing.T) {
		repo := &mockJobRepository{
			FindByIDFunc: func(ctx context.Context, id string) (*entity.DetectionJob, error) {
				return nil, errors.New("db down")
			},
		}
		uc := NewJobsUsecase(repo)

		_, err := uc.Get(context.Background(), 1, "job-1")

		assert.Error(t, err)
		assert.NotErrorIs(t, err, ErrJobNotFound)
	})
}
