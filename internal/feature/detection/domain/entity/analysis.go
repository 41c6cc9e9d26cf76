package entity

// SceneAnalysis は検出ラベルに対するAI生成の解説を表します。
type SceneAnalysis struct {
	Labels  []string // 解析対象の検出ラベル
	Summary string   // AI生成のサマリー
}
