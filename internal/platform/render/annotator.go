// Package render draws detection results onto images and produces thumbnails.
package render

import (
	"bytes"
	"fmt"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	_ "golang.org/x/image/webp" // webpアップロードのデコード登録

	"sign_backend/internal/feature/detection/domain/entity"
	"sign_backend/internal/feature/detection/usecase"
)

const (
	// JPEGQuality は出力JPEGの品質です。
	JPEGQuality = 80
	// ThumbnailSize はサムネイルの最大辺長です。
	ThumbnailSize = 320
	labelPadding  = 3
)

// Annotator はバウンディングボックスとラベルを画像に焼き込みます。
type Annotator struct{}

// AnnotatorがRendererを実装していることをコンパイル時に検証します。
var _ usecase.Renderer = (*Annotator)(nil)

// NewAnnotator はAnnotatorの新しいインスタンスを生成します。
func NewAnnotator() *Annotator {
	return &Annotator{}
}

// DrawDetections は元画像に検出ボックスとラベルを描画し、JPEGバイト列を返します。
func (a *Annotator) DrawDetections(src []byte, dets []entity.Detection) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("decode source image: %w", err)
	}

	dc := gg.NewContextForImage(img)
	for _, d := range dets {
		drawDetection(dc, d)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, dc.Image(), imaging.JPEG, imaging.JPEGQuality(JPEGQuality)); err != nil {
		return nil, fmt.Errorf("encode annotated image: %w", err)
	}
	return buf.Bytes(), nil
}

// Thumbnail は画像のサムネイルJPEGを生成します。
func (a *Annotator) Thumbnail(src []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("decode source image: %w", err)
	}

	thumb := imaging.Fit(img, ThumbnailSize, ThumbnailSize, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, imaging.JPEG, imaging.JPEGQuality(JPEGQuality)); err != nil {
		return nil, fmt.Errorf("encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}

// drawDetection は1件の検出をボックス＋ラベル帯として描画します。
func drawDetection(dc *gg.Context, d entity.Detection) {
	x := float64(d.Box.X1)
	y := float64(d.Box.Y1)
	w := float64(d.Box.X2 - d.Box.X1)
	h := float64(d.Box.Y2 - d.Box.Y1)

	dc.SetRGB(0.10, 0.80, 0.25)
	dc.SetLineWidth(3)
	dc.DrawRectangle(x, y, w, h)
	dc.Stroke()

	label := fmt.Sprintf("%s %.2f", d.Label, d.Confidence)
	tw, th := dc.MeasureString(label)

	// ラベル帯はボックス上部に置き、画像上端にかかる場合はボックス内側に落とす
	ly := y - th - 2*labelPadding
	if ly < 0 {
		ly = y
	}
	dc.DrawRectangle(x, ly, tw+2*labelPadding, th+2*labelPadding)
	dc.Fill()

	dc.SetRGB(1, 1, 1)
	dc.DrawString(label, x+labelPadding, ly+th+labelPadding-1)
}
