package curriculum

import (
	"errors"
	"fmt"
	"io"

	"lms/internal/model"
)

// Draft validation errors.
var (
	ErrTitleRequired   = errors.New("title is required")
	ErrNoContent       = errors.New("lesson has no content for its type")
	ErrAmbiguousSource = errors.New("lesson has both an external URL and an uploaded file")
	ErrBadPassingGrade = errors.New("passing grade must be between 1 and 100")
)

// Upload is a file staged for transfer during reconciliation.
type Upload struct {
	Filename string
	Content  io.Reader
}

// CourseDraft holds the course-level scalar fields being edited. Thumbnail is
// nil unless the author attached a new image this session.
type CourseDraft struct {
	Title       string
	Instructor  string
	Description string
	Price       float64
	Thumbnail   *Upload
}

// LessonDraft is a lesson being authored. Kind selects which content fields
// are authoritative; the author picks the kind explicitly and the reconciler
// never infers it from which fields happen to be filled in.
type LessonDraft struct {
	Ref   EntityRef
	Title string
	Kind  string

	// video / document
	URL        string
	UploadPath string

	// text
	Body string

	// quiz
	PassingGrade   float64
	DurationMin    int
	EvaluationDesc string
}

// Validate checks a draft before it is admitted into the editing state.
func (d LessonDraft) Validate() error {
	if d.Title == "" {
		return ErrTitleRequired
	}
	switch d.Kind {
	case model.LessonVideo, model.LessonDocument:
		if d.URL == "" && d.UploadPath == "" {
			return ErrNoContent
		}
		if d.URL != "" && d.UploadPath != "" {
			return ErrAmbiguousSource
		}
	case model.LessonText:
		if d.Body == "" {
			return ErrNoContent
		}
	case model.LessonQuiz:
		if d.PassingGrade <= 0 || d.PassingGrade > 100 {
			return ErrBadPassingGrade
		}
	default:
		return fmt.Errorf("unknown lesson kind %q", d.Kind)
	}
	return nil
}

// payload translates the draft into the wire shape for create/update calls.
func (d LessonDraft) payload(position int) LessonPayload {
	p := LessonPayload{
		Title:    d.Title,
		Type:     d.Kind,
		Position: position,
	}
	switch d.Kind {
	case model.LessonVideo, model.LessonDocument:
		if d.UploadPath != "" {
			p.ContentSource = model.SourceUpload
			p.ContentPath = d.UploadPath
		} else {
			p.ContentSource = model.SourceExternal
			p.ContentURL = d.URL
		}
	case model.LessonText:
		p.ContentSource = model.SourceExternal
		p.ContentText = d.Body
	case model.LessonQuiz:
		p.ContentSource = model.SourceExternal
		p.PassingGrade = d.PassingGrade
		p.DurationMin = d.DurationMin
		p.EvaluationDesc = d.EvaluationDesc
	}
	return p
}

// LessonPatch is a partial update merged into an existing draft. Nil fields
// are left untouched.
type LessonPatch struct {
	Title          *string
	Kind           *string
	URL            *string
	UploadPath     *string
	Body           *string
	PassingGrade   *float64
	DurationMin    *int
	EvaluationDesc *string
}

func (d *LessonDraft) apply(p LessonPatch) {
	if p.Title != nil {
		d.Title = *p.Title
	}
	if p.Kind != nil {
		d.Kind = *p.Kind
	}
	if p.URL != nil {
		d.URL = *p.URL
	}
	if p.UploadPath != nil {
		d.UploadPath = *p.UploadPath
	}
	if p.Body != nil {
		d.Body = *p.Body
	}
	if p.PassingGrade != nil {
		d.PassingGrade = *p.PassingGrade
	}
	if p.DurationMin != nil {
		d.DurationMin = *p.DurationMin
	}
	if p.EvaluationDesc != nil {
		d.EvaluationDesc = *p.EvaluationDesc
	}
}
