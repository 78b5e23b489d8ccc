package curriculum

import (
	"testing"

	"lms/internal/model"
)

func TestAddSectionStartsExpanded(t *testing.T) {
	st := NewEditState(CourseDraft{Title: "Go from scratch"})
	ref := st.AddSection("Basics")

	if !ref.Local() {
		t.Fatal("new section should have a local ref")
	}
	if len(st.Sections) != 1 {
		t.Fatalf("expected 1 section, got %d", len(st.Sections))
	}
	if !st.Sections[0].Expanded {
		t.Error("new section should start expanded")
	}
}

func TestAddLessonToMissingSection(t *testing.T) {
	st := NewEditState(CourseDraft{})
	ref := st.AddLesson(NewLocalRef(), LessonDraft{Title: "Orphan", Kind: model.LessonText, Body: "x"})
	if !ref.Zero() {
		t.Error("adding to a missing section should return the zero ref")
	}
}

func TestDeleteLocalDraftRecordsNothing(t *testing.T) {
	st := NewEditState(CourseDraft{})
	secRef := st.AddSection("Basics")
	lessonRef := st.AddLesson(secRef, LessonDraft{Title: "Intro", Kind: model.LessonText, Body: "hello"})

	st.DeleteLesson(secRef, lessonRef)
	st.DeleteSection(secRef)

	if n := len(st.PendingLessonDeletions()); n != 0 {
		t.Errorf("local lesson delete queued %d server deletions, want 0", n)
	}
	if n := len(st.PendingSectionDeletions()); n != 0 {
		t.Errorf("local section delete queued %d server deletions, want 0", n)
	}
	if len(st.Sections) != 0 {
		t.Error("deleted section still present")
	}
}

func TestDeletePersistedQueuesExactlyOne(t *testing.T) {
	st := FromCourse(model.Course{
		Sections: []model.Section{
			{
				ID:    10,
				Title: "Basics",
				Lessons: []model.Lesson{
					{ID: 100, Title: "Intro", Type: model.LessonText, ContentText: "hi"},
				},
			},
		},
	})

	st.DeleteLesson(PersistedRef(10), PersistedRef(100))
	st.DeleteSection(PersistedRef(10))

	if got := st.PendingLessonDeletions(); len(got) != 1 || got[0] != 100 {
		t.Errorf("pending lesson deletions = %v, want [100]", got)
	}
	if got := st.PendingSectionDeletions(); len(got) != 1 || got[0] != 10 {
		t.Errorf("pending section deletions = %v, want [10]", got)
	}
}

func TestFromCourseSeedsPersistedRefs(t *testing.T) {
	st := FromCourse(model.Course{
		Title: "Go from scratch",
		Sections: []model.Section{
			{ID: 1, Title: "Basics", Lessons: []model.Lesson{
				{ID: 2, Title: "Intro", Type: model.LessonVideo, ContentSource: model.SourceExternal, ContentURL: "https://example.com/v.mp4"},
			}},
		},
	})

	sec := st.Sections[0]
	if sec.Ref.Local() || sec.Ref.ServerID() != 1 {
		t.Errorf("section ref = %+v, want persisted id 1", sec.Ref)
	}
	if sec.TitleChanged() {
		t.Error("unedited section reports a title change")
	}
	l := sec.Lessons[0]
	if l.Ref.Local() || l.Ref.ServerID() != 2 {
		t.Errorf("lesson ref = %+v, want persisted id 2", l.Ref)
	}
	if l.Kind != model.LessonVideo || l.URL == "" {
		t.Errorf("video lesson draft lost its content: %+v", l)
	}
}

func TestEditLessonMergesPatch(t *testing.T) {
	st := NewEditState(CourseDraft{})
	secRef := st.AddSection("Basics")
	lessonRef := st.AddLesson(secRef, LessonDraft{Title: "Intro", Kind: model.LessonText, Body: "hello"})

	newTitle := "Introduction"
	st.EditLesson(secRef, lessonRef, LessonPatch{Title: &newTitle})

	if got := st.Sections[0].Lessons[0]; got.Title != "Introduction" || got.Body != "hello" {
		t.Errorf("patched lesson = %+v, want title updated and body kept", got)
	}

	// Editing something that does not exist is a silent no-op.
	st.EditLesson(secRef, NewLocalRef(), LessonPatch{Title: &newTitle})
	st.EditLesson(NewLocalRef(), lessonRef, LessonPatch{Title: &newTitle})
}

func TestRenameSectionMarksTitleChanged(t *testing.T) {
	st := FromCourse(model.Course{
		Sections: []model.Section{{ID: 5, Title: "Basics"}},
	})
	st.RenameSection(PersistedRef(5), "Foundations")

	if !st.Sections[0].TitleChanged() {
		t.Error("renamed persisted section should report a title change")
	}
	st.RenameSection(PersistedRef(5), "Basics")
	if st.Sections[0].TitleChanged() {
		t.Error("title restored to the saved value should not report a change")
	}
}
