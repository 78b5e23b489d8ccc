package curriculum

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"lms/internal/model"

	"github.com/rs/zerolog"
)

// recordingAPI logs every call in order and hands out ids from a counter.
// failOn makes the named call fail to test abort behavior.
type recordingAPI struct {
	calls  []string
	nextID int64
	failOn string
}

func (r *recordingAPI) record(call string) error {
	r.calls = append(r.calls, call)
	if r.failOn != "" && strings.HasPrefix(call, r.failOn) {
		return errors.New("boom")
	}
	return nil
}

func (r *recordingAPI) UpdateCourse(_ context.Context, courseID int64, _ CourseUpdate) error {
	return r.record(fmt.Sprintf("update-course %d", courseID))
}

func (r *recordingAPI) DeleteLesson(_ context.Context, lessonID int64) error {
	return r.record(fmt.Sprintf("delete-lesson %d", lessonID))
}

func (r *recordingAPI) DeleteSection(_ context.Context, sectionID int64) error {
	return r.record(fmt.Sprintf("delete-section %d", sectionID))
}

func (r *recordingAPI) CreateSection(_ context.Context, courseID int64, title string, position int) (int64, error) {
	if err := r.record(fmt.Sprintf("create-section %q pos=%d", title, position)); err != nil {
		return 0, err
	}
	r.nextID++
	return r.nextID, nil
}

func (r *recordingAPI) UpdateSectionTitle(_ context.Context, sectionID int64, title string) error {
	return r.record(fmt.Sprintf("rename-section %d %q", sectionID, title))
}

func (r *recordingAPI) CreateLesson(_ context.Context, sectionID int64, p LessonPayload) (int64, error) {
	if err := r.record(fmt.Sprintf("create-lesson sec=%d %q pos=%d", sectionID, p.Title, p.Position)); err != nil {
		return 0, err
	}
	r.nextID++
	return r.nextID, nil
}

func (r *recordingAPI) UpdateLesson(_ context.Context, lessonID int64, p LessonPayload) error {
	return r.record(fmt.Sprintf("update-lesson %d %q", lessonID, p.Title))
}

func TestReconcileOrdering(t *testing.T) {
	st := FromCourse(model.Course{
		Title: "Go from scratch",
		Sections: []model.Section{
			{ID: 1, Title: "Basics", Lessons: []model.Lesson{
				{ID: 11, Title: "Intro", Type: model.LessonText, ContentText: "hi"},
				{ID: 12, Title: "Old", Type: model.LessonText, ContentText: "drop me"},
			}},
			{ID: 2, Title: "Stale", Lessons: nil},
		},
	})

	// Session edits: drop a lesson and a section, add a new section with a
	// new lesson, and append a draft lesson to the surviving section.
	st.DeleteLesson(PersistedRef(1), PersistedRef(12))
	st.DeleteSection(PersistedRef(2))
	st.AddLesson(PersistedRef(1), LessonDraft{Title: "Fresh", Kind: model.LessonText, Body: "new"})
	newSec := st.AddSection("Advanced")
	st.AddLesson(newSec, LessonDraft{Title: "Deep dive", Kind: model.LessonQuiz, PassingGrade: 70})

	api := &recordingAPI{nextID: 1000}
	if err := NewReconciler(api, zerolog.Nop()).Reconcile(context.Background(), 7, st); err != nil {
		t.Fatalf("Reconcile: %v", err)
	}

	want := []string{
		`update-course 7`,
		`delete-lesson 12`,
		`delete-section 2`,
		`update-lesson 11 "Intro"`,
		`create-lesson sec=1 "Fresh" pos=2`,
		`create-section "Advanced" pos=2`,
		`create-lesson sec=1002 "Deep dive" pos=1`,
	}
	if len(api.calls) != len(want) {
		t.Fatalf("calls = %v, want %v", api.calls, want)
	}
	for i := range want {
		if api.calls[i] != want[i] {
			t.Errorf("call %d = %q, want %q", i, api.calls[i], want[i])
		}
	}
}

func TestReconcileAdoptsServerIDsAndClearsPending(t *testing.T) {
	st := NewEditState(CourseDraft{Title: "New course"})
	secRef := st.AddSection("Basics")
	st.AddLesson(secRef, LessonDraft{Title: "Intro", Kind: model.LessonText, Body: "hi"})

	api := &recordingAPI{nextID: 500}
	if err := NewReconciler(api, zerolog.Nop()).Reconcile(context.Background(), 1, st); err != nil {
		t.Fatalf("Reconcile: %v", err)
	}

	sec := st.Sections[0]
	if sec.Ref.Local() {
		t.Error("section ref still local after reconcile")
	}
	if sec.Ref.ServerID() != 501 {
		t.Errorf("section adopted id %d, want 501", sec.Ref.ServerID())
	}
	if sec.Lessons[0].Ref.Local() {
		t.Error("lesson ref still local after reconcile")
	}
	if len(st.PendingLessonDeletions()) != 0 || len(st.PendingSectionDeletions()) != 0 {
		t.Error("pending deletions not cleared after successful reconcile")
	}
}

func TestReconcileLocalDeleteNeverCallsServer(t *testing.T) {
	st := NewEditState(CourseDraft{})
	secRef := st.AddSection("Basics")
	lessonRef := st.AddLesson(secRef, LessonDraft{Title: "Scratch", Kind: model.LessonText, Body: "x"})
	st.DeleteLesson(secRef, lessonRef)
	st.DeleteSection(secRef)

	api := &recordingAPI{}
	if err := NewReconciler(api, zerolog.Nop()).Reconcile(context.Background(), 1, st); err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	for _, call := range api.calls {
		if strings.HasPrefix(call, "delete-") {
			t.Errorf("draft-only deletion reached the server: %q", call)
		}
	}
}

func TestReconcileAbortsOnFirstFailure(t *testing.T) {
	st := FromCourse(model.Course{
		Sections: []model.Section{{ID: 1, Title: "Basics"}},
	})
	st.DeleteSection(PersistedRef(1))
	st.AddSection("Replacement")

	api := &recordingAPI{failOn: "delete-section"}
	err := NewReconciler(api, zerolog.Nop()).Reconcile(context.Background(), 1, st)
	if err == nil {
		t.Fatal("expected reconcile to fail")
	}
	for _, call := range api.calls {
		if strings.HasPrefix(call, "create-") {
			t.Errorf("call after the failing phase was issued: %q", call)
		}
	}
	if len(st.PendingSectionDeletions()) != 1 {
		t.Error("pending deletions should survive a failed reconcile")
	}
}

func TestReconcileRenamesOnlyChangedTitles(t *testing.T) {
	st := FromCourse(model.Course{
		Sections: []model.Section{
			{ID: 1, Title: "Basics"},
			{ID: 2, Title: "Advanced"},
		},
	})
	st.RenameSection(PersistedRef(2), "Expert")

	api := &recordingAPI{}
	if err := NewReconciler(api, zerolog.Nop()).Reconcile(context.Background(), 1, st); err != nil {
		t.Fatalf("Reconcile: %v", err)
	}

	var renames []string
	for _, call := range api.calls {
		if strings.HasPrefix(call, "rename-section") {
			renames = append(renames, call)
		}
	}
	if len(renames) != 1 || renames[0] != `rename-section 2 "Expert"` {
		t.Errorf("renames = %v, want exactly the edited section", renames)
	}
}
