// Package vision はGoogle Cloud Vision APIを使用した代替の画像検出バックエンドを提供します。
// DETECTOR_BACKEND=vision が指定された場合、YOLOサイドカーの代わりに使用されます。
package vision

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg" // DecodeConfig用のフォーマット登録
	_ "image/png"

	gvision "cloud.google.com/go/vision/v2/apiv1"
	visionpb "cloud.google.com/go/vision/v2/apiv1/visionpb"

	"sign_backend/internal/feature/detection/domain/entity"
	"sign_backend/internal/feature/detection/usecase"
)

// VisionDetector はCloud VisionのOBJECT_LOCALIZATIONでオブジェクトを検出します。
// imgszはサーバー側モデルが決定するため無視されます。
type VisionDetector struct {
	client *gvision.ImageAnnotatorClient
}

// VisionDetectorがImageDetectorを実装していることをコンパイル時に検証します。
var _ usecase.ImageDetector = (*VisionDetector)(nil)

// NewVisionDetector はADCを使用してVisionDetectorの新しいインスタンスを生成します。
func NewVisionDetector(ctx context.Context) (*VisionDetector, error) {
	client, err := gvision.NewImageAnnotatorClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create vision client: %w", err)
	}
	return &VisionDetector{client: client}, nil
}

// Close はVision APIクライアントを解放します。
func (v *VisionDetector) Close() error {
	return v.client.Close()
}

// DetectImage は画像バイト列からオブジェクトを検出します。
// Vision APIは正規化座標を返すため、元画像の寸法でピクセル座標に変換します。
func (v *VisionDetector) DetectImage(ctx context.Context, imageData []byte, conf float64, _ int) ([]entity.Detection, error) {
	dims, _, err := image.DecodeConfig(bytes.NewReader(imageData))
	if err != nil {
		return nil, fmt.Errorf("decode image dimensions: %w", err)
	}

	req := &visionpb.BatchAnnotateImagesRequest{
		Requests: []*visionpb.AnnotateImageRequest{
			{
				Image: &visionpb.Image{Content: imageData},
				Features: []*visionpb.Feature{
					{Type: visionpb.Feature_OBJECT_LOCALIZATION},
				},
			},
		},
	}

	resp, err := v.client.BatchAnnotateImages(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("vision API request failed: %w", err)
	}

	if len(resp.Responses) == 0 {
		return nil, nil
	}
	if resp.Responses[0].Error != nil {
		return nil, fmt.Errorf("vision API error: %s", resp.Responses[0].Error.Message)
	}

	anns := resp.Responses[0].LocalizedObjectAnnotations
	dets := make([]entity.Detection, 0, len(anns))
	for _, a := range anns {
		if float64(a.Score) < conf {
			continue
		}
		dets = append(dets, entity.Detection{
			Label:      a.Name,
			Confidence: a.Score,
			Box:        boxFromPoly(a.BoundingPoly, dims.Width, dims.Height),
		})
	}
	return dets, nil
}

// boxFromPoly は正規化された頂点列を外接するピクセル矩形に変換します。
func boxFromPoly(poly *visionpb.BoundingPoly, width, height int) entity.Box {
	if poly == nil || len(poly.NormalizedVertices) == 0 {
		return entity.Box{}
	}
	minX, minY := float32(1), float32(1)
	maxX, maxY := float32(0), float32(0)
	for _, v := range poly.NormalizedVertices {
		if v.X < minX {
			minX = v.X
		}
		if v.Y < minY {
			minY = v.Y
		}
		if v.X > maxX {
			maxX = v.X
		}
		if v.Y > maxY {
			maxY = v.Y
		}
	}
	return entity.Box{
		X1: int(minX * float32(width)),
		Y1: int(minY * float32(height)),
		X2: int(maxX * float32(width)),
		Y2: int(maxY * float32(height)),
	}
}
