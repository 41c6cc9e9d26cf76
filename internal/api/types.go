// Package api defines the request and response types for the HTTP API.
package api

// ErrorResponse is the JSON body returned for any failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse is the JSON body returned for simple acknowledgements.
type MessageResponse struct {
	Message string `json:"message"`
}

// TokenResponse carries a signed JWT after a successful login.
type TokenResponse struct {
	Token string `json:"token"`
}

// SignupRequest is the JSON body for POST /signup.
type SignupRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginRequest is the JSON body for POST /login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// BoxResponse is a bounding box in pixel coordinates.
type BoxResponse struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

// DetectionResponse is a single detected object.
type DetectionResponse struct {
	Label      string      `json:"label"`
	Confidence float32     `json:"confidence"`
	Box        BoxResponse `json:"box"`
}

// DetectResponse is the JSON body returned by POST /v1/detect.
type DetectResponse struct {
	JobID        string              `json:"job_id"`
	Type         string              `json:"type"`
	ResultURL    string              `json:"result_url"`
	ThumbnailURL string              `json:"thumbnail_url,omitempty"`
	Detections   []DetectionResponse `json:"detections,omitempty"`
}

// SceneAnalysisRequest is the JSON body for POST /v1/detect/analyze.
type SceneAnalysisRequest struct {
	Labels []string `json:"labels" binding:"required,min=1"`
}

// SceneAnalysisResponse carries the generated summary for a set of labels.
type SceneAnalysisResponse struct {
	Labels  []string `json:"labels"`
	Summary string   `json:"summary"`
}

// JobResponse is a single detection job in the history listing.
type JobResponse struct {
	ID             string  `json:"id"`
	Type           string  `json:"type"`
	SourceName     string  `json:"source_name"`
	ResultURL      string  `json:"result_url"`
	ThumbnailURL   string  `json:"thumbnail_url,omitempty"`
	Confidence     float64 `json:"confidence"`
	ImageSize      int     `json:"image_size"`
	DetectionCount int     `json:"detection_count"`
	CreatedAt      string  `json:"created_at"`
}
