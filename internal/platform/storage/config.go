package storage

import (
	"os"
	"time"
)

// Config は成果物ディレクトリと保持期間の設定を保持します。
type Config struct {
	// Dir は成果物を保存するディレクトリです。
	Dir string
	// URLPrefix は保存した成果物を配信するURLパスの接頭辞です。
	URLPrefix string
	// TTL は成果物の保持期間です。これを超えたファイルは掃除対象になります。
	TTL time.Duration
	// SweepInterval は掃除ジョブの実行間隔です。
	SweepInterval time.Duration
}

// LoadConfig は環境変数からストレージ設定を読み込みます。
func LoadConfig() Config {
	cfg := Config{
		Dir:           getEnv("OUTPUT_DIR", "./outputs"),
		URLPrefix:     "/outputs",
		TTL:           24 * time.Hour,
		SweepInterval: time.Hour,
	}
	if v := os.Getenv("OUTPUT_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.TTL = d
		}
	}
	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
