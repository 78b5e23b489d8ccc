package dto

// LessonDTO is used for incoming lesson create and update requests. Which
// content fields are authoritative follows from Type; the service rejects
// combinations that do not match.
type LessonDTO struct {
	Title          string  `json:"title" validate:"required"`
	Type           string  `json:"type" validate:"required,oneof=video document text quiz"`
	ContentSource  string  `json:"content_source" validate:"omitempty,oneof=upload external"`
	ContentURL     string  `json:"content_url,omitempty" validate:"omitempty,url"`
	ContentPath    string  `json:"content_path,omitempty"`
	ContentText    string  `json:"content_text,omitempty"`
	PassingGrade   float64 `json:"passing_grade,omitempty" validate:"gte=0,lte=100"`
	DurationMin    int     `json:"duration_min,omitempty" validate:"gte=0"`
	EvaluationDesc string  `json:"evaluation_description,omitempty"`
	Position       int     `json:"position" validate:"gte=0"`
}

// UploadInitiateDTO is used to start a lesson media upload
type UploadInitiateDTO struct {
	Filename string `json:"filename" validate:"required"`
}

// UploadURLResponseDTO returns the presigned URL the client uploads to
type UploadURLResponseDTO struct {
	UploadURL string `json:"upload_url"`
	Method    string `json:"method"`
}
