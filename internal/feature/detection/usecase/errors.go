package usecase

import "errors"

var (
	// ErrEmptyUpload is returned when the uploaded file contains no data.
	ErrEmptyUpload = errors.New("uploaded file is empty")

	// ErrUploadTooLarge is returned when the uploaded file exceeds MaxUploadSize.
	ErrUploadTooLarge = errors.New("uploaded file exceeds maximum size")

	// ErrUnsupportedMedia is returned when the file is neither a supported image nor a supported video.
	ErrUnsupportedMedia = errors.New("unsupported media type")

	// ErrInvalidConfidence is returned when the confidence threshold is outside [0, 1].
	ErrInvalidConfidence = errors.New("confidence must be between 0 and 1")

	// ErrInvalidImageSize is returned when the inference image size is not a positive integer.
	ErrInvalidImageSize = errors.New("image size must be a positive integer")

	// ErrAnalyzerUnavailable is returned when scene analysis is requested but no analyzer is configured.
	ErrAnalyzerUnavailable = errors.New("scene analyzer is not configured")
)
