package entity

// Upload はリクエストごとに生成される一時的なアップロードメディアを表します。
// 処理完了後は破棄され、永続化されません。
type Upload struct {
	FileName    string // クライアントが申告したファイル名
	ContentType string // クライアントが申告したMIMEタイプ
	Data        []byte // メディアのバイト列
	UserID      uint   // 認証済みユーザーのID（匿名の場合は0）
}

// DetectOptions は検出呼び出しのパラメータを表します。
type DetectOptions struct {
	Confidence float64 // 信頼度しきい値（0.0 ~ 1.0）
	ImageSize  int     // 推論時の入力画像サイズ（正の整数）
}

// DetectionOutcome は1回の検出処理の結果を表します。
// 注釈付きアーティファクトへの参照と検出一覧を保持します。
type DetectionOutcome struct {
	JobID        string
	Kind         MediaKind
	ResultURL    string      // 注釈付きアーティファクトのURL（/outputs配下）
	ThumbnailURL string      // サムネイルのURL（画像のみ、生成失敗時は空）
	Detections   []Detection // 検出一覧（動画の場合は空）
}
