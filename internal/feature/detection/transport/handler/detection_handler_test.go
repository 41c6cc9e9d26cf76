package handler

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sign_backend/internal/feature/detection/domain/entity"
	"sign_backend/internal/feature/detection/usecase"
	jwtmw "sign_backend/internal/platform/jwt"
)

// mockDetectionUsecase はDetectionUsecaseインターフェースのモック実装です。
type mockDetectionUsecase struct {
	DetectFunc       func(ctx context.Context, upload entity.Upload, opts entity.DetectOptions) (*entity.DetectionOutcome, error)
	AnalyzeSceneFunc func(ctx context.Context, labels []string) (*entity.SceneAnalysis, error)
}

func (m *mockDetectionUsecase) Detect(ctx context.Context, upload entity.Upload, opts entity.DetectOptions) (*entity.DetectionOutcome, error) {
	if m.DetectFunc != nil {
		return m.DetectFunc(ctx, upload, opts)
	}
	return &entity.DetectionOutcome{}, nil
}

func (m *mockDetectionUsecase) AnalyzeScene(ctx context.Context, labels []string) (*entity.SceneAnalysis, error) {
	if m.AnalyzeSceneFunc != nil {
		return m.AnalyzeSceneFunc(ctx, labels)
	}
	return &entity.SceneAnalysis{}, nil
}

// newMultipartRequest はfileフィールドと追加フォームフィールドを持つ
// multipart/form-dataリクエストを組み立てます。
func newMultipartRequest(t *testing.T, fileName, contentType string, data []byte, fields map[string]string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	if fileName != "" {
		h := make(map[string][]string)
		h["Content-Disposition"] = []string{`form-data; name="file"; filename="` + fileName + `"`}
		h["Content-Type"] = []string{contentType}
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/v1/detect", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

// TestDetectionHandler_Detect はDetectハンドラーの各種シナリオをテーブル駆動テストで検証します。
func TestDetectionHandler_Detect(t *testing.T) {
	gin.SetMode(gin.TestMode)

	sampleOutcome := &entity.DetectionOutcome{
		JobID:        "job-1",
		Kind:         entity.MediaImage,
		ResultURL:    "/outputs/annotated_job-1.jpg",
		ThumbnailURL: "/outputs/thumb_job-1.jpg",
		Detections: []entity.Detection{
			{Label: "stop", Confidence: 0.9, Box: entity.Box{X1: 1, Y1: 2, X2: 3, Y2: 4}},
		},
	}

	tests := []struct {
		name           string
		request        func(t *testing.T) *http.Request
		mockDetectFunc func(ctx context.Context, upload entity.Upload, opts entity.DetectOptions) (*entity.DetectionOutcome, error)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "success: image with detections",
			request: func(t *testing.T) *http.Request {
				return newMultipartRequest(t, "sign.jpg", "image/jpeg", []byte("jpeg"), nil)
			},
			mockDetectFunc: func(ctx context.Context, upload entity.Upload, opts entity.DetectOptions) (*entity.DetectionOutcome, error) {
				return sampleOutcome, nil
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"job_id":"job-1","type":"image","result_url":"/outputs/annotated_job-1.jpg","thumbnail_url":"/outputs/thumb_job-1.jpg","detections":[{"label":"stop","confidence":0.9,"box":{"x1":1,"y1":2,"x2":3,"y2":4}}]}`,
		},
		{
			name: "success: video outcome omits detections and thumbnail",
			request: func(t *testing.T) *http.Request {
				return newMultipartRequest(t, "drive.mp4", "video/mp4", []byte("mp4"), nil)
			},
			mockDetectFunc: func(ctx context.Context, upload entity.Upload, opts entity.DetectOptions) (*entity.DetectionOutcome, error) {
				return &entity.DetectionOutcome{
					JobID:     "job-2",
					Kind:      entity.MediaVideo,
					ResultURL: "/outputs/annotated_job-2.mp4",
				}, nil
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"job_id":"job-2","type":"video","result_url":"/outputs/annotated_job-2.mp4"}`,
		},
		{
			name: "failure: missing file field",
			request: func(t *testing.T) *http.Request {
				return newMultipartRequest(t, "", "", nil, map[string]string{"conf": "0.5"})
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"ファイルが必要です"}`,
		},
		{
			name: "failure: unparseable conf",
			request: func(t *testing.T) *http.Request {
				return newMultipartRequest(t, "sign.jpg", "image/jpeg", []byte("jpeg"), map[string]string{"conf": "abc"})
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"confが不正です"}`,
		},
		{
			name: "failure: unparseable imgsz",
			request: func(t *testing.T) *http.Request {
				return newMultipartRequest(t, "sign.jpg", "image/jpeg", []byte("jpeg"), map[string]string{"imgsz": "big"})
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"imgszが不正です"}`,
		},
		{
			name: "failure: unsupported media maps to 400",
			request: func(t *testing.T) *http.Request {
				return newMultipartRequest(t, "report.pdf", "application/pdf", []byte("pdf"), nil)
			},
			mockDetectFunc: func(ctx context.Context, upload entity.Upload, opts entity.DetectOptions) (*entity.DetectionOutcome, error) {
				return nil, usecase.ErrUnsupportedMedia
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"対応していないファイル形式です"}`,
		},
		{
			name: "failure: out of range conf maps to 400",
			request: func(t *testing.T) *http.Request {
				return newMultipartRequest(t, "sign.jpg", "image/jpeg", []byte("jpeg"), map[string]string{"conf": "1.5"})
			},
			mockDetectFunc: func(ctx context.Context, upload entity.Upload, opts entity.DetectOptions) (*entity.DetectionOutcome, error) {
				return nil, usecase.ErrInvalidConfidence
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"confは0から1の範囲で指定してください"}`,
		},
		{
			name: "failure: non-positive imgsz maps to 400",
			request: func(t *testing.T) *http.Request {
				return newMultipartRequest(t, "sign.jpg", "image/jpeg", []byte("jpeg"), map[string]string{"imgsz": "-1"})
			},
			mockDetectFunc: func(ctx context.Context, upload entity.Upload, opts entity.DetectOptions) (*entity.DetectionOutcome, error) {
				return nil, usecase.ErrInvalidImageSize
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"imgszは正の整数で指定してください"}`,
		},
		{
			name: "failure: detector error maps to 502",
			request: func(t *testing.T) *http.Request {
				return newMultipartRequest(t, "sign.jpg", "image/jpeg", []byte("jpeg"), nil)
			},
			mockDetectFunc: func(ctx context.Context, upload entity.Upload, opts entity.DetectOptions) (*entity.DetectionOutcome, error) {
				return nil, errors.New("sidecar unreachable")
			},
			expectedStatus: http.StatusBadGateway,
			expectedBody:   `{"error":"検出に失敗しました"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockUC := &mockDetectionUsecase{DetectFunc: tt.mockDetectFunc}
			h := NewDetectionHandler(mockUC)

			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = tt.request(t)

			h.Detect(c)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.JSONEq(t, tt.expectedBody, w.Body.String())
		})
	}
}

// TestDetectionHandler_Detect_PassesOptionsAndUser はフォーム値と認証ユーザーIDが
// ユースケースに正しく渡されることを検証します。
func TestDetectionHandler_Detect_PassesOptionsAndUser(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var gotUpload entity.Upload
	var gotOpts entity.DetectOptions
	mockUC := &mockDetectionUsecase{
		DetectFunc: func(ctx context.Context, upload entity.Upload, opts entity.DetectOptions) (*entity.DetectionOutcome, error) {
			gotUpload = upload
			gotOpts = opts
			return &entity.DetectionOutcome{JobID: "job-3", Kind: entity.MediaImage}, nil
		},
	}
	h := NewDetectionHandler(mockUC)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = newMultipartRequest(t, "crossing.png", "image/png", []byte("png-bytes"),
		map[string]string{"conf": "0.7", "imgsz": "1280"})
	c.Set(jwtmw.ContextUserID, uint(7))

	h.Detect(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "crossing.png", gotUpload.FileName)
	assert.Equal(t, "image/png", gotUpload.ContentType)
	assert.Equal(t, []byte("png-bytes"), gotUpload.Data)
	assert.Equal(t, uint(7), gotUpload.UserID)
	assert.Equal(t, 0.7, gotOpts.Confidence)
	assert.Equal(t, 1280, gotOpts.ImageSize)
}

// TestDetectionHandler_Detect_Defaults はconf/imgsz未指定時に既定値が使われることを検証します。
func TestDetectionHandler_Detect_Defaults(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var gotOpts entity.DetectOptions
	mockUC := &mockDetectionUsecase{
		DetectFunc: func(ctx context.Context, upload entity.Upload, opts entity.DetectOptions) (*entity.DetectionOutcome, error) {
			gotOpts = opts
			return &entity.DetectionOutcome{JobID: "job-4", Kind: entity.MediaImage}, nil
		},
	}
	h := NewDetectionHandler(mockUC)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = newMultipartRequest(t, "sign.jpg", "image/jpeg", []byte("jpeg"), nil)

	h.Detect(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, usecase.DefaultConfidence, gotOpts.Confidence)
	assert.Equal(t, usecase.DefaultImageSize, gotOpts.ImageSize)
}

// TestDetectionHandler_AnalyzeScene はAnalyzeSceneハンドラーの各種シナリオを検証します。
func TestDetectionHandler_AnalyzeScene(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name            string
		body            string
		mockAnalyzeFunc func(ctx context.Context, labels []string) (*entity.SceneAnalysis, error)
		expectedStatus  int
		expectedBody    string
	}{
		{
			name: "success: returns analysis",
			body: `{"labels":["stop","crosswalk"]}`,
			mockAnalyzeFunc: func(ctx context.Context, labels []string) (*entity.SceneAnalysis, error) {
				return &entity.SceneAnalysis{Labels: labels, Summary: "一時停止してください。"}, nil
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"labels":["stop","crosswalk"],"summary":"一時停止してください。"}`,
		},
		{
			name:           "failure: empty labels rejected by validation",
			body:           `{"labels":[]}`,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"検出ラベルが必要です"}`,
		},
		{
			name:           "failure: malformed json",
			body:           `{`,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"検出ラベルが必要です"}`,
		},
		{
			name: "failure: analyzer error maps to 502",
			body: `{"labels":["stop"]}`,
			mockAnalyzeFunc: func(ctx context.Context, labels []string) (*entity.SceneAnalysis, error) {
				return nil, errors.New("quota exceeded")
			},
			expectedStatus: http.StatusBadGateway,
			expectedBody:   `{"error":"シーン解析に失敗しました"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockUC := &mockDetectionUsecase{AnalyzeSceneFunc: tt.mockAnalyzeFunc}
			h := NewDetectionHandler(mockUC)

			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodPost, "/v1/detect/analyze", strings.NewReader(tt.body))
			c.Request.Header.Set("Content-Type", "application/json")

			h.AnalyzeScene(c)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.JSONEq(t, tt.expectedBody, w.Body.String())
		})
	}
}
