package curriculum

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// CourseUpdate carries the course scalar fields for the batch save. When
// Thumbnail is non-nil the transport sends a multipart payload.
type CourseUpdate struct {
	Title       string
	Instructor  string
	Description string
	Price       float64
	Thumbnail   *Upload
}

// LessonPayload is the wire shape for lesson create/update calls.
type LessonPayload struct {
	Title          string  `json:"title"`
	Type           string  `json:"type"`
	ContentSource  string  `json:"content_source"`
	ContentURL     string  `json:"content_url,omitempty"`
	ContentPath    string  `json:"content_path,omitempty"`
	ContentText    string  `json:"content_text,omitempty"`
	PassingGrade   float64 `json:"passing_grade,omitempty"`
	DurationMin    int     `json:"duration_min,omitempty"`
	EvaluationDesc string  `json:"evaluation_description,omitempty"`
	Position       int     `json:"position"`
}

// CurriculumAPI is the remote surface the reconciler drives. The HTTP
// implementation lives in internal/client; tests substitute a recorder.
type CurriculumAPI interface {
	UpdateCourse(ctx context.Context, courseID int64, u CourseUpdate) error
	DeleteLesson(ctx context.Context, lessonID int64) error
	DeleteSection(ctx context.Context, sectionID int64) error
	CreateSection(ctx context.Context, courseID int64, title string, position int) (int64, error)
	UpdateSectionTitle(ctx context.Context, sectionID int64, title string) error
	CreateLesson(ctx context.Context, sectionID int64, p LessonPayload) (int64, error)
	UpdateLesson(ctx context.Context, lessonID int64, p LessonPayload) error
}

// Reconciler persists an editing session with the fewest necessary calls, in
// dependency-safe order: course scalars, then pending lesson deletes, then
// pending section deletes, then section creates/updates in list order, each
// followed by its lesson creates/updates in list order. The first failing
// call aborts the save; calls already issued are not rolled back.
type Reconciler struct {
	api CurriculumAPI
	log zerolog.Logger
}

// NewReconciler creates a Reconciler with a scoped logger.
func NewReconciler(api CurriculumAPI, logger zerolog.Logger) *Reconciler {
	return &Reconciler{api: api, log: logger.With().Str("component", "reconciler").Logger()}
}

// Reconcile pushes the session to the server. On success the pending
// deletion lists are cleared and every local ref has adopted its
// server-assigned id; the caller is expected to refetch the authoritative
// tree and discard the session.
func (r *Reconciler) Reconcile(ctx context.Context, courseID int64, st *EditState) error {
	// Phase 1: course scalar fields.
	update := CourseUpdate{
		Title:       st.Course.Title,
		Instructor:  st.Course.Instructor,
		Description: st.Course.Description,
		Price:       st.Course.Price,
		Thumbnail:   st.Course.Thumbnail,
	}
	if err := r.api.UpdateCourse(ctx, courseID, update); err != nil {
		return fmt.Errorf("update course %d: %w", courseID, err)
	}

	// Phase 2: deletions, lessons strictly before sections so no section is
	// removed while a queued lesson delete could still reference it.
	for _, id := range st.deletedLessonIDs {
		if err := r.api.DeleteLesson(ctx, id); err != nil {
			return fmt.Errorf("delete lesson %d: %w", id, err)
		}
	}
	for _, id := range st.deletedSectionIDs {
		if err := r.api.DeleteSection(ctx, id); err != nil {
			return fmt.Errorf("delete section %d: %w", id, err)
		}
	}

	// Phase 3: surviving sections and their lessons, in list order. Lessons
	// are only sent once their owning section has a real server id.
	for i := range st.Sections {
		sec := &st.Sections[i]
		if sec.Ref.Local() {
			id, err := r.api.CreateSection(ctx, courseID, sec.Title, i+1)
			if err != nil {
				return fmt.Errorf("create section %q: %w", sec.Title, err)
			}
			sec.Ref = PersistedRef(id)
			r.log.Debug().Int64("section_id", id).Msg("Section created")
		} else if sec.TitleChanged() {
			if err := r.api.UpdateSectionTitle(ctx, sec.Ref.ServerID(), sec.Title); err != nil {
				return fmt.Errorf("rename section %d: %w", sec.Ref.ServerID(), err)
			}
		}
		sec.savedTitle = sec.Title

		for j := range sec.Lessons {
			l := &sec.Lessons[j]
			payload := l.payload(j + 1)
			if l.Ref.Local() {
				id, err := r.api.CreateLesson(ctx, sec.Ref.ServerID(), payload)
				if err != nil {
					return fmt.Errorf("create lesson %q: %w", l.Title, err)
				}
				l.Ref = PersistedRef(id)
			} else {
				if err := r.api.UpdateLesson(ctx, l.Ref.ServerID(), payload); err != nil {
					return fmt.Errorf("update lesson %d: %w", l.Ref.ServerID(), err)
				}
			}
		}
	}

	st.deletedLessonIDs = nil
	st.deletedSectionIDs = nil
	st.Course.Thumbnail = nil
	return nil
}
