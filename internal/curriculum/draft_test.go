package curriculum

import (
	"errors"
	"testing"

	"lms/internal/model"
)

func TestLessonDraftValidate(t *testing.T) {
	cases := []struct {
		name  string
		draft LessonDraft
		want  error
	}{
		{
			name:  "missing title",
			draft: LessonDraft{Kind: model.LessonText, Body: "x"},
			want:  ErrTitleRequired,
		},
		{
			name:  "video without content",
			draft: LessonDraft{Title: "t", Kind: model.LessonVideo},
			want:  ErrNoContent,
		},
		{
			name:  "video with both url and upload",
			draft: LessonDraft{Title: "t", Kind: model.LessonVideo, URL: "https://e.com/v", UploadPath: "lessons/1/v"},
			want:  ErrAmbiguousSource,
		},
		{
			name:  "text without body",
			draft: LessonDraft{Title: "t", Kind: model.LessonText},
			want:  ErrNoContent,
		},
		{
			name:  "quiz with zero passing grade",
			draft: LessonDraft{Title: "t", Kind: model.LessonQuiz},
			want:  ErrBadPassingGrade,
		},
		{
			name:  "quiz with passing grade above 100",
			draft: LessonDraft{Title: "t", Kind: model.LessonQuiz, PassingGrade: 120},
			want:  ErrBadPassingGrade,
		},
		{
			name:  "valid document with url",
			draft: LessonDraft{Title: "t", Kind: model.LessonDocument, URL: "https://e.com/d.pdf"},
		},
		{
			name:  "valid quiz",
			draft: LessonDraft{Title: "t", Kind: model.LessonQuiz, PassingGrade: 70},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.draft.Validate()
			if tc.want == nil {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tc.want) {
				t.Fatalf("Validate() = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestLessonDraftValidateUnknownKind(t *testing.T) {
	if err := (LessonDraft{Title: "t", Kind: "podcast"}).Validate(); err == nil {
		t.Fatal("expected an error for an unknown kind")
	}
}

func TestLessonPayloadPicksOneRepresentation(t *testing.T) {
	upload := LessonDraft{Title: "v", Kind: model.LessonVideo, UploadPath: "lessons/5/original.mp4"}
	p := upload.payload(3)
	if p.ContentSource != model.SourceUpload || p.ContentPath == "" || p.ContentURL != "" {
		t.Errorf("upload payload = %+v, want upload source with path only", p)
	}
	if p.Position != 3 {
		t.Errorf("position = %d, want 3", p.Position)
	}

	external := LessonDraft{Title: "v", Kind: model.LessonVideo, URL: "https://e.com/v.mp4"}
	if p := external.payload(1); p.ContentSource != model.SourceExternal || p.ContentURL == "" {
		t.Errorf("external payload = %+v, want external source with url", p)
	}

	quizDraft := LessonDraft{Title: "q", Kind: model.LessonQuiz, PassingGrade: 80, DurationMin: 15}
	if p := quizDraft.payload(1); p.PassingGrade != 80 || p.ContentURL != "" || p.ContentText != "" {
		t.Errorf("quiz payload = %+v, want quiz metadata only", p)
	}
}
