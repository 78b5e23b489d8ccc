package model

import "time"

// Lesson content types.
const (
	LessonVideo    = "video"
	LessonDocument = "document"
	LessonText     = "text"
	LessonQuiz     = "quiz"
)

// Lesson content sources.
const (
	SourceUpload   = "upload"
	SourceExternal = "external"
)

// Media states for lessons whose content is uploaded through the
// presigned-URL flow.
const (
	MediaNone       = ""
	MediaUploading  = "uploading"
	MediaProcessing = "processing"
	MediaReady      = "ready"
	MediaFailed     = "failed"
)

// Lesson is a single unit of course content. Exactly one content
// representation is authoritative per type: video/document lessons carry a
// URL or an uploaded storage path, text lessons carry ContentText, quiz
// lessons carry only the quiz metadata fields and own their questions.
type Lesson struct {
	ID             int64     `db:"id" json:"id"`
	SectionID      int64     `db:"section_id" json:"section_id"`
	Title          string    `db:"title" json:"title"`
	Position       int       `db:"position" json:"position"`
	Type           string    `db:"type" json:"type"`
	ContentSource  string    `db:"content_source" json:"content_source"`
	ContentURL     string    `db:"content_url" json:"content_url,omitempty"`
	ContentPath    string    `db:"content_path" json:"content_path,omitempty"`
	ContentText    string    `db:"content_text" json:"content_text,omitempty"`
	PassingGrade   float64   `db:"passing_grade" json:"passing_grade,omitempty"`
	DurationMin    int       `db:"duration_min" json:"duration_min,omitempty"`
	EvaluationDesc string    `db:"evaluation_description" json:"evaluation_description,omitempty"`
	MediaStatus    string    `db:"media_status" json:"media_status,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`

	// Learner-scoped flags, populated only in learner course views.
	Completed bool `json:"is_completed"`
	Locked    bool `json:"is_locked"`
}
