// Package entity はjobsフィーチャーのドメインモデルを定義します。
package entity

import "time"

// DetectionJob は1回の検出処理の履歴レコードを表します。
// アーティファクト自体はoutputsディレクトリが所有し、本レコードは参照のみを保持します。
type DetectionJob struct {
	ID             string  // ジョブID（UUID）
	UserID         uint    // 実行ユーザーのID（匿名の場合は0）
	Kind           string  // "image" または "video"
	SourceName     string  // アップロード時のファイル名
	ResultURL      string  // 注釈付きアーティファクトのURL
	ThumbnailURL   string  // サムネイルのURL（画像のみ）
	Confidence     float64 // 検出に使用した信頼度しきい値
	ImageSize      int     // 検出に使用した入力画像サイズ
	DetectionCount int     // 検出されたオブジェクト数（動画は0）
	CreatedAt      time.Time
}
