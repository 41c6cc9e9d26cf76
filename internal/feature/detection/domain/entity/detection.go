// Package entity はdetectionフィーチャーのドメインモデルを定義します。
package entity

// MediaKind はアップロードされたメディアの種別を表します。
type MediaKind string

const (
	// MediaImage は静止画像メディアを表します。
	MediaImage MediaKind = "image"
	// MediaVideo は動画メディアを表します。
	MediaVideo MediaKind = "video"
)

// Box は検出オブジェクトの矩形領域をピクセル座標で表します。
// (X1, Y1)が左上、(X2, Y2)が右下です。
type Box struct {
	X1 int
	Y1 int
	X2 int
	Y2 int
}

// Detection は画像・動画フレームから検出された1つのオブジェクトを表します。
type Detection struct {
	Label      string  // 検出されたクラス名（例: "stop", "speed_limit_60"）
	Confidence float32 // 信頼度スコア（0.0 ~ 1.0）
	Box        Box     // バウンディングボックス
}
