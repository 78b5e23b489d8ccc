package curriculum

import "lms/internal/model"

// SectionDraft is a section inside an editing session, with its lessons in
// presentation order.
type SectionDraft struct {
	Ref      EntityRef
	Title    string
	Expanded bool
	Lessons  []LessonDraft

	// savedTitle is the title last seen from the server, used to detect
	// title edits on persisted sections during reconciliation.
	savedTitle string
}

// TitleChanged reports whether a persisted section's title was edited this
// session.
func (s SectionDraft) TitleChanged() bool {
	return !s.Ref.Local() && s.Title != s.savedTitle
}

// EditState is the locally-mutable working copy of a course's curriculum. It
// is the single source of truth for the editing session; the server is not
// consulted for structure until the next successful Reconcile. All mutations
// are pure in-memory operations and cannot fail.
type EditState struct {
	Course   CourseDraft
	Sections []SectionDraft

	deletedLessonIDs  []int64
	deletedSectionIDs []int64
}

// NewEditState starts an empty session for a course that has no curriculum
// yet.
func NewEditState(course CourseDraft) *EditState {
	return &EditState{Course: course}
}

// FromCourse seeds an editing session from the authoritative server copy.
func FromCourse(c model.Course) *EditState {
	st := &EditState{
		Course: CourseDraft{
			Title:       c.Title,
			Instructor:  c.Instructor,
			Description: c.Description,
			Price:       c.Price,
		},
	}
	for _, sec := range c.Sections {
		sd := SectionDraft{
			Ref:        PersistedRef(sec.ID),
			Title:      sec.Title,
			savedTitle: sec.Title,
		}
		for _, l := range sec.Lessons {
			sd.Lessons = append(sd.Lessons, draftFromLesson(l))
		}
		st.Sections = append(st.Sections, sd)
	}
	return st
}

func draftFromLesson(l model.Lesson) LessonDraft {
	d := LessonDraft{
		Ref:   PersistedRef(l.ID),
		Title: l.Title,
		Kind:  l.Type,
	}
	switch l.Type {
	case model.LessonVideo, model.LessonDocument:
		if l.ContentSource == model.SourceUpload {
			d.UploadPath = l.ContentPath
		} else {
			d.URL = l.ContentURL
		}
	case model.LessonText:
		d.Body = l.ContentText
	case model.LessonQuiz:
		d.PassingGrade = l.PassingGrade
		d.DurationMin = l.DurationMin
		d.EvaluationDesc = l.EvaluationDesc
	}
	return d
}

// AddSection appends a new section draft and returns its ref. New sections
// start expanded so the author can add lessons right away.
func (st *EditState) AddSection(title string) EntityRef {
	ref := NewLocalRef()
	st.Sections = append(st.Sections, SectionDraft{
		Ref:      ref,
		Title:    title,
		Expanded: true,
	})
	return ref
}

// AddLesson appends a lesson draft to the named section and returns its ref,
// or the zero ref when the section does not exist.
func (st *EditState) AddLesson(section EntityRef, d LessonDraft) EntityRef {
	sec := st.section(section)
	if sec == nil {
		return EntityRef{}
	}
	d.Ref = NewLocalRef()
	sec.Lessons = append(sec.Lessons, d)
	return d.Ref
}

// EditLesson merges a partial update into the matching lesson. No-op when
// the section or lesson is not found.
func (st *EditState) EditLesson(section, lesson EntityRef, p LessonPatch) {
	sec := st.section(section)
	if sec == nil {
		return
	}
	for i := range sec.Lessons {
		if sec.Lessons[i].Ref == lesson {
			sec.Lessons[i].apply(p)
			return
		}
	}
}

// RenameSection updates a section title in place.
func (st *EditState) RenameSection(section EntityRef, title string) {
	if sec := st.section(section); sec != nil {
		sec.Title = title
	}
}

// DeleteSection removes a section from the session. Persisted sections are
// queued for deletion at the next reconcile; local drafts are simply dropped
// and never reach the server. The server cascades the section's lessons.
func (st *EditState) DeleteSection(section EntityRef) {
	for i := range st.Sections {
		if st.Sections[i].Ref != section {
			continue
		}
		if !section.Local() {
			st.deletedSectionIDs = append(st.deletedSectionIDs, section.ServerID())
		}
		st.Sections = append(st.Sections[:i], st.Sections[i+1:]...)
		return
	}
}

// DeleteLesson removes a lesson from its section, queueing persisted lessons
// for deletion at the next reconcile.
func (st *EditState) DeleteLesson(section, lesson EntityRef) {
	sec := st.section(section)
	if sec == nil {
		return
	}
	for i := range sec.Lessons {
		if sec.Lessons[i].Ref != lesson {
			continue
		}
		if !lesson.Local() {
			st.deletedLessonIDs = append(st.deletedLessonIDs, lesson.ServerID())
		}
		sec.Lessons = append(sec.Lessons[:i], sec.Lessons[i+1:]...)
		return
	}
}

// PendingLessonDeletions returns the persisted lesson ids queued for the
// next reconcile.
func (st *EditState) PendingLessonDeletions() []int64 {
	return st.deletedLessonIDs
}

// PendingSectionDeletions returns the persisted section ids queued for the
// next reconcile.
func (st *EditState) PendingSectionDeletions() []int64 {
	return st.deletedSectionIDs
}

func (st *EditState) section(ref EntityRef) *SectionDraft {
	for i := range st.Sections {
		if st.Sections[i].Ref == ref {
			return &st.Sections[i]
		}
	}
	return nil
}
