package storage

import (
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// StartRetentionSweeper は保持期間を過ぎた成果物を定期的に削除するジョブを開始します。
// 返されたSchedulerは呼び出し側がShutdownしてください。
func StartRetentionSweeper(store *FileStore, ttl, every time.Duration) (gocron.Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	_, err = s.NewJob(
		gocron.DurationJob(every),
		gocron.NewTask(func() {
			removed, err := store.SweepOlderThan(ttl)
			if err != nil {
				slog.Warn("artifact sweep failed", "error", err)
				return
			}
			if removed > 0 {
				slog.Info("swept expired artifacts", "removed", removed, "ttl", ttl)
			}
		}),
	)
	if err != nil {
		return nil, err
	}

	s.Start()
	slog.Info("retention sweeper started", "interval", every, "ttl", ttl)
	return s, nil
}
