// Package usecase はdetectionフィーチャーのビジネスロジックを実装します。
package usecase

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"sign_backend/internal/feature/detection/domain/entity"
	jobsentity "sign_backend/internal/feature/jobs/domain/entity"
)

const (
	// DefaultConfidence は検出の信頼度しきい値のデフォルト値です。
	DefaultConfidence = 0.25
	// DefaultImageSize は推論時の入力画像サイズのデフォルト値です。
	DefaultImageSize = 640
	// MaxUploadSize はアップロードの最大サイズ（50MB）です。
	MaxUploadSize = 50 * 1024 * 1024
)

// imageExts は画像として扱う拡張子の一覧です。
var imageExts = map[string]struct{}{
	".jpg": {}, ".jpeg": {}, ".png": {}, ".bmp": {}, ".webp": {},
}

// videoExts は動画として扱う拡張子の一覧です。
var videoExts = map[string]struct{}{
	".mp4": {}, ".avi": {}, ".mov": {}, ".mkv": {}, ".webm": {},
}

// ImageDetector は画像からオブジェクトを検出するリポジトリインターフェースです。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type ImageDetector interface {
	// DetectImage は画像バイト列からオブジェクトを検出し、検出結果を返します。
	// confとimgszは外部モデルにそのまま渡されます。
	DetectImage(ctx context.Context, imageData []byte, conf float64, imgsz int) ([]entity.Detection, error)
}

// VideoAnnotator は動画全体を外部モデルのバッチモードで処理するインターフェースです。
// 返り値のReadCloserは注釈付き動画のストリームで、呼び出し側がCloseします。
type VideoAnnotator interface {
	AnnotateVideo(ctx context.Context, videoData []byte, fileName string, conf float64, imgsz int) (io.ReadCloser, error)
}

// Renderer は検出結果を画像に焼き込むインターフェースです。
type Renderer interface {
	// DrawDetections は元画像にバウンディングボックスとラベルを描画し、JPEGバイト列を返します。
	DrawDetections(src []byte, dets []entity.Detection) ([]byte, error)
	// Thumbnail は画像のサムネイルJPEGを生成します。
	Thumbnail(src []byte) ([]byte, error)
}

// ArtifactStore はoutputsディレクトリへの永続化を抽象化します。
// Saveはアトミックであること（失敗時に部分ファイルを残さないこと）が要求されます。
type ArtifactStore interface {
	// Save はrの内容をnameで保存し、そのアーティファクトのURLを返します。
	Save(name string, r io.Reader) (string, error)
}

// JobRecorder は検出履歴の記録を抽象化します。
type JobRecorder interface {
	Record(ctx context.Context, job *jobsentity.DetectionJob) error
}

// DetectionObserver は検出処理のメトリクス観測を抽象化します。
type DetectionObserver interface {
	ObserveDetection(kind, status string, seconds float64)
}

// SceneAnalyzer は検出ラベルから解説文を生成するインターフェースです。
type SceneAnalyzer interface {
	Analyze(ctx context.Context, prompt string) (string, error)
}

// detectionUsecase は検出処理のビジネスロジックを提供します。
type detectionUsecase struct {
	detector ImageDetector
	video    VideoAnnotator
	renderer Renderer
	store    ArtifactStore
	jobs     JobRecorder
	analyzer SceneAnalyzer
	observer DetectionObserver
}

// NewDetectionUsecase はdetectionUsecaseの新しいインスタンスを生成します。
// jobs、analyzer、observerはnil許容で、nilの場合は該当機能が無効になります。
func NewDetectionUsecase(
	detector ImageDetector,
	video VideoAnnotator,
	renderer Renderer,
	store ArtifactStore,
	jobs JobRecorder,
	analyzer SceneAnalyzer,
	observer DetectionObserver,
) *detectionUsecase {
	return &detectionUsecase{
		detector: detector,
		video:    video,
		renderer: renderer,
		store:    store,
		jobs:     jobs,
		analyzer: analyzer,
		observer: observer,
	}
}

// ClassifyMedia はファイル名の拡張子とContent-Typeからメディア種別を判定します。
// どちらにも該当しない場合、falseを返します。
func ClassifyMedia(fileName, contentType string) (entity.MediaKind, bool) {
	ext := strings.ToLower(filepath.Ext(fileName))
	if _, ok := imageExts[ext]; ok {
		return entity.MediaImage, true
	}
	if _, ok := videoExts[ext]; ok {
		return entity.MediaVideo, true
	}
	// 拡張子で判定できない場合はContent-Typeにフォールバック
	if strings.HasPrefix(contentType, "image/") {
		return entity.MediaImage, true
	}
	if strings.HasPrefix(contentType, "video/") {
		return entity.MediaVideo, true
	}
	return "", false
}

// Detect はアップロードされたメディアを検証・分類し、外部モデルで検出を実行して
// 注釈付きアーティファクトをoutputsディレクトリに保存します。
func (u *detectionUsecase) Detect(ctx context.Context, upload entity.Upload, opts entity.DetectOptions) (*entity.DetectionOutcome, error) {
	if len(upload.Data) == 0 {
		return nil, ErrEmptyUpload
	}
	if len(upload.Data) > MaxUploadSize {
		return nil, ErrUploadTooLarge
	}
	if opts.Confidence < 0 || opts.Confidence > 1 {
		return nil, ErrInvalidConfidence
	}
	if opts.ImageSize <= 0 {
		return nil, ErrInvalidImageSize
	}

	kind, ok := ClassifyMedia(upload.FileName, upload.ContentType)
	if !ok {
		return nil, ErrUnsupportedMedia
	}

	jobID := uuid.New().String()
	start := time.Now()

	var outcome *entity.DetectionOutcome
	var err error
	switch kind {
	case entity.MediaImage:
		outcome, err = u.detectImage(ctx, jobID, upload, opts)
	case entity.MediaVideo:
		outcome, err = u.detectVideo(ctx, jobID, upload, opts)
	}
	u.observe(string(kind), err, time.Since(start))
	if err != nil {
		return nil, err
	}

	u.recordJob(ctx, upload, opts, outcome)
	return outcome, nil
}

// detectImage は画像の検出パスを処理します。検出結果はローカルで描画され、
// 注釈付きJPEGとサムネイルがoutputsディレクトリに保存されます。
func (u *detectionUsecase) detectImage(ctx context.Context, jobID string, upload entity.Upload, opts entity.DetectOptions) (*entity.DetectionOutcome, error) {
	// 元のアップロードもuuid名でoutputsに保存する
	ext := strings.ToLower(filepath.Ext(upload.FileName))
	if _, err := u.store.Save(jobID+ext, bytes.NewReader(upload.Data)); err != nil {
		return nil, fmt.Errorf("save upload: %w", err)
	}

	dets, err := u.detector.DetectImage(ctx, upload.Data, opts.Confidence, opts.ImageSize)
	if err != nil {
		return nil, fmt.Errorf("detect image: %w", err)
	}

	annotated, err := u.renderer.DrawDetections(upload.Data, dets)
	if err != nil {
		return nil, fmt.Errorf("render detections: %w", err)
	}

	resultURL, err := u.store.Save("annotated_"+jobID+".jpg", bytes.NewReader(annotated))
	if err != nil {
		return nil, fmt.Errorf("save annotated image: %w", err)
	}

	// サムネイル生成はベストエフォート
	var thumbURL string
	if thumb, err := u.renderer.Thumbnail(annotated); err != nil {
		slog.Warn("サムネイル生成に失敗", "job_id", jobID, "error", err)
	} else if url, err := u.store.Save("thumb_"+jobID+".jpg", bytes.NewReader(thumb)); err != nil {
		slog.Warn("サムネイル保存に失敗", "job_id", jobID, "error", err)
	} else {
		thumbURL = url
	}

	return &entity.DetectionOutcome{
		JobID:        jobID,
		Kind:         entity.MediaImage,
		ResultURL:    resultURL,
		ThumbnailURL: thumbURL,
		Detections:   dets,
	}, nil
}

// detectVideo は動画の検出パスを処理します。フレーム反復と描画は外部モデルの
// バッチモードが行い、その出力ストリームをそのままoutputsディレクトリに保存します。
func (u *detectionUsecase) detectVideo(ctx context.Context, jobID string, upload entity.Upload, opts entity.DetectOptions) (*entity.DetectionOutcome, error) {
	ext := strings.ToLower(filepath.Ext(upload.FileName))
	if _, err := u.store.Save(jobID+ext, bytes.NewReader(upload.Data)); err != nil {
		return nil, fmt.Errorf("save upload: %w", err)
	}

	stream, err := u.video.AnnotateVideo(ctx, upload.Data, upload.FileName, opts.Confidence, opts.ImageSize)
	if err != nil {
		return nil, fmt.Errorf("annotate video: %w", err)
	}
	defer func() {
		if err := stream.Close(); err != nil {
			slog.Warn("動画ストリームのクローズに失敗", "job_id", jobID, "error", err)
		}
	}()

	resultURL, err := u.store.Save("annotated_"+jobID+".mp4", stream)
	if err != nil {
		return nil, fmt.Errorf("save annotated video: %w", err)
	}

	return &entity.DetectionOutcome{
		JobID:     jobID,
		Kind:      entity.MediaVideo,
		ResultURL: resultURL,
	}, nil
}

// recordJob は検出履歴を記録します。履歴の書き込み失敗は検出自体の成功を妨げません。
func (u *detectionUsecase) recordJob(ctx context.Context, upload entity.Upload, opts entity.DetectOptions, outcome *entity.DetectionOutcome) {
	if u.jobs == nil {
		return
	}
	job := &jobsentity.DetectionJob{
		ID:             outcome.JobID,
		UserID:         upload.UserID,
		Kind:           string(outcome.Kind),
		SourceName:     upload.FileName,
		ResultURL:      outcome.ResultURL,
		ThumbnailURL:   outcome.ThumbnailURL,
		Confidence:     opts.Confidence,
		ImageSize:      opts.ImageSize,
		DetectionCount: len(outcome.Detections),
	}
	if err := u.jobs.Record(ctx, job); err != nil {
		slog.Warn("検出履歴の記録に失敗", "job_id", outcome.JobID, "error", err)
	}
}

// observe はメトリクスを記録します。observerがnilの場合は何もしません。
func (u *detectionUsecase) observe(kind string, err error, elapsed time.Duration) {
	if u.observer == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	u.observer.ObserveDetection(kind, status, elapsed.Seconds())
}
