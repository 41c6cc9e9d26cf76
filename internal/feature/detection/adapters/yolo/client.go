package yolo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"

	"sign_backend/internal/feature/detection/domain/entity"
	"sign_backend/internal/feature/detection/usecase"
	"sign_backend/internal/shared/ratelimiter"
)

// Client はYOLO推論サイドカーを呼び出すImageDetector/VideoAnnotator実装です。
// サイドカーはモデルの内部を完全に隠蔽し、本クライアントはHTTP境界のみを扱います。
type Client struct {
	cfg     Config
	client  *http.Client
	limiter ratelimiter.RateLimiterInterface
}

// ClientがImageDetector/VideoAnnotatorを実装していることをコンパイル時に検証します。
var (
	_ usecase.ImageDetector  = (*Client)(nil)
	_ usecase.VideoAnnotator = (*Client)(nil)
)

// NewClient は指定された設定とHTTPクライアントでClientの新しいインスタンスを生成します。
// limiterはGPU保護のためサイドカー呼び出しの頻度を制限します。
func NewClient(cfg Config, client *http.Client, limiter ratelimiter.RateLimiterInterface) *Client {
	return &Client{cfg: cfg, client: client, limiter: limiter}
}

// detectResponse はサイドカーの /detect レスポンスです。
type detectResponse struct {
	Detections []detectionDTO `json:"detections"`
	Error      string         `json:"error"`
}

// detectionDTO はサイドカーが返す検出1件です。
type detectionDTO struct {
	Label      string  `json:"label"`
	Confidence float32 `json:"confidence"`
	Box        boxDTO  `json:"box"`
}

type boxDTO struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

// DetectImage は画像バイト列をサイドカーに送信し、検出一覧を取得します。
// confとimgszはフォームフィールドとしてそのまま渡されます。
func (c *Client) DetectImage(ctx context.Context, imageData []byte, conf float64, imgsz int) ([]entity.Detection, error) {
	if c.limiter != nil {
		c.limiter.WaitIfNeeded()
	}

	body, contentType, err := buildMultipart("upload.jpg", imageData, conf, imgsz)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/detect", body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)

	res, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("yolo sidecar request failed: %w", err)
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	if res.StatusCode >= 400 {
		return nil, sidecarError(res)
	}

	var out detectResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode yolo response: %w", err)
	}
	if out.Error != "" {
		return nil, fmt.Errorf("yolo sidecar: %s", out.Error)
	}

	dets := make([]entity.Detection, 0, len(out.Detections))
	for _, d := range out.Detections {
		dets = append(dets, entity.Detection{
			Label:      d.Label,
			Confidence: d.Confidence,
			Box:        entity.Box{X1: d.Box.X1, Y1: d.Box.Y1, X2: d.Box.X2, Y2: d.Box.Y2},
		})
	}
	return dets, nil
}

// AnnotateVideo は動画をサイドカーのバッチモードに送信し、
// 注釈付きMP4のストリームを返します。Closeは呼び出し側の責務です。
func (c *Client) AnnotateVideo(ctx context.Context, videoData []byte, fileName string, conf float64, imgsz int) (io.ReadCloser, error) {
	if c.limiter != nil {
		c.limiter.WaitIfNeeded()
	}

	// 動画はコンテナ形式の判別に拡張子が必要なため、元のファイル名を渡す
	body, contentType, err := buildMultipart(fileName, videoData, conf, imgsz)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/detect/video", body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)

	res, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("yolo sidecar request failed: %w", err)
	}

	if res.StatusCode >= 400 {
		err := sidecarError(res)
		if cerr := res.Body.Close(); cerr != nil {
			slog.Warn("failed to close response body", "error", cerr)
		}
		return nil, err
	}

	return res.Body, nil
}

// buildMultipart はfile/conf/imgszフィールドを持つマルチパートボディを構築します。
func buildMultipart(fileName string, data []byte, conf float64, imgsz int) (*bytes.Buffer, string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", fileName)
	if err != nil {
		return nil, "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, bytes.NewReader(data)); err != nil {
		return nil, "", fmt.Errorf("copy media data: %w", err)
	}
	if err := writer.WriteField("conf", strconv.FormatFloat(conf, 'f', -1, 64)); err != nil {
		return nil, "", err
	}
	if err := writer.WriteField("imgsz", strconv.Itoa(imgsz)); err != nil {
		return nil, "", err
	}
	if err := writer.Close(); err != nil {
		return nil, "", err
	}

	return body, writer.FormDataContentType(), nil
}

// sidecarError はサイドカーのエラーレスポンスをGoのエラーに変換します。
func sidecarError(res *http.Response) error {
	var out detectResponse
	if err := json.NewDecoder(io.LimitReader(res.Body, 4096)).Decode(&out); err == nil && out.Error != "" {
		return fmt.Errorf("yolo sidecar http %d: %s", res.StatusCode, out.Error)
	}
	return fmt.Errorf("yolo sidecar http %d", res.StatusCode)
}
