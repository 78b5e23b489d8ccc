package service

import (
	"context"
	"testing"

	"lms/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCourseRepo struct {
	courses map[int64]*model.Course
}

func (s *stubCourseRepo) CreateCourse(context.Context, *model.Course) error { return nil }
func (s *stubCourseRepo) GetCourseByID(_ context.Context, id int64) (*model.Course, error) {
	if c, ok := s.courses[id]; ok {
		copied := *c
		return &copied, nil
	}
	return nil, nil
}
func (s *stubCourseRepo) GetCourseBySlug(context.Context, string) (*model.Course, error) {
	return nil, nil
}
func (s *stubCourseRepo) ListCourses(context.Context, model.CourseFilter) ([]model.Course, int, error) {
	return nil, 0, nil
}
func (s *stubCourseRepo) UpdateCourse(context.Context, *model.Course) error { return nil }
func (s *stubCourseRepo) UpdateThumbnail(context.Context, int64, string) error {
	return nil
}
func (s *stubCourseRepo) SoftDeleteCourse(context.Context, int64) error { return nil }
func (s *stubCourseRepo) SlugExists(context.Context, string) (bool, error) {
	return false, nil
}

type stubSectionRepo struct {
	sections map[int64]*model.Section
	byCourse map[int64][]model.Section
}

func (s *stubSectionRepo) CreateSection(context.Context, *model.Section) error { return nil }
func (s *stubSectionRepo) GetSectionByID(_ context.Context, id int64) (*model.Section, error) {
	return s.sections[id], nil
}
func (s *stubSectionRepo) ListSectionsByCourse(_ context.Context, courseID int64) ([]model.Section, error) {
	return s.byCourse[courseID], nil
}
func (s *stubSectionRepo) UpdateSectionTitle(context.Context, int64, string) error {
	return nil
}
func (s *stubSectionRepo) DeleteSection(context.Context, int64) error { return nil }

type stubEnrollmentRepo struct {
	enrolled  map[int64]bool
	completed []int64
	nextID    int64
}

func (s *stubEnrollmentRepo) CreateEnrollment(_ context.Context, e *model.Enrollment) error {
	s.nextID++
	e.ID = s.nextID
	s.enrolled[e.CourseID] = true
	return nil
}
func (s *stubEnrollmentRepo) IsEnrolled(_ context.Context, _, courseID int64) (bool, error) {
	return s.enrolled[courseID], nil
}
func (s *stubEnrollmentRepo) ListEnrollmentsByUser(_ context.Context, userID int64) ([]model.Enrollment, error) {
	var out []model.Enrollment
	for courseID := range s.enrolled {
		out = append(out, model.Enrollment{UserID: userID, CourseID: courseID})
	}
	return out, nil
}
func (s *stubEnrollmentRepo) CompleteLesson(_ context.Context, _, lessonID int64) error {
	for _, id := range s.completed {
		if id == lessonID {
			return nil
		}
	}
	s.completed = append(s.completed, lessonID)
	return nil
}
func (s *stubEnrollmentRepo) ListCompletedLessonIDs(context.Context, int64, int64) ([]int64, error) {
	return s.completed, nil
}

func enrollmentFixture() (*stubEnrollmentRepo, *stubCourseRepo, *stubSectionRepo, *stubLessonRepo) {
	courses := &stubCourseRepo{courses: map[int64]*model.Course{
		1: {ID: 1, Title: "Go from scratch", Status: model.CoursePublished},
		2: {ID: 2, Title: "Unfinished", Status: model.CourseDraft},
	}}
	sections := &stubSectionRepo{
		sections: map[int64]*model.Section{
			10: {ID: 10, CourseID: 1, Title: "Basics", Position: 1},
			11: {ID: 11, CourseID: 1, Title: "Advanced", Position: 2},
		},
		byCourse: map[int64][]model.Section{
			1: {
				{ID: 10, CourseID: 1, Title: "Basics", Position: 1},
				{ID: 11, CourseID: 1, Title: "Advanced", Position: 2},
			},
		},
	}
	lessons := &stubLessonRepo{
		lessons: map[int64]*model.Lesson{
			100: {ID: 100, SectionID: 10},
			101: {ID: 101, SectionID: 10},
			102: {ID: 102, SectionID: 11},
		},
		bySection: map[int64][]model.Lesson{
			10: {{ID: 100, SectionID: 10, Position: 1}, {ID: 101, SectionID: 10, Position: 2}},
			11: {{ID: 102, SectionID: 11, Position: 1}},
		},
	}
	enrollments := &stubEnrollmentRepo{enrolled: make(map[int64]bool)}
	return enrollments, courses, sections, lessons
}

func TestEnrollOnlyPublished(t *testing.T) {
	enrollments, courses, sections, lessons := enrollmentFixture()
	svc := NewEnrollmentService(enrollments, courses, sections, lessons, zerolog.Nop())

	_, err := svc.Enroll(context.Background(), 5, 2)
	assert.ErrorIs(t, err, ErrNotPublished)

	_, err = svc.Enroll(context.Background(), 5, 99)
	assert.ErrorIs(t, err, ErrCourseNotFound)

	e, err := svc.Enroll(context.Background(), 5, 1)
	require.NoError(t, err)
	assert.NotZero(t, e.ID)
}

func TestCompleteLessonRequiresEnrollment(t *testing.T) {
	enrollments, courses, sections, lessons := enrollmentFixture()
	svc := NewEnrollmentService(enrollments, courses, sections, lessons, zerolog.Nop())

	err := svc.CompleteLesson(context.Background(), 5, 100)
	assert.ErrorIs(t, err, ErrNotEnrolled)

	_, err = svc.Enroll(context.Background(), 5, 1)
	require.NoError(t, err)

	require.NoError(t, svc.CompleteLesson(context.Background(), 5, 100))
	// Completing again is a no-op.
	require.NoError(t, svc.CompleteLesson(context.Background(), 5, 100))

	progress, err := svc.MyCourses(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, progress, 1)
	assert.Equal(t, 1, progress[0].CompletedLessons)
	assert.Equal(t, 3, progress[0].TotalLessons)
	assert.InDelta(t, 33.33, progress[0].Percent, 0.01)
}

func TestLearnerCourseViewStampsFlags(t *testing.T) {
	enrollments, courses, sections, lessons := enrollmentFixture()
	svc := NewEnrollmentService(enrollments, courses, sections, lessons, zerolog.Nop())

	_, err := svc.LearnerCourseView(context.Background(), 5, 1)
	assert.ErrorIs(t, err, ErrNotEnrolled)

	_, err = svc.Enroll(context.Background(), 5, 1)
	require.NoError(t, err)
	require.NoError(t, svc.CompleteLesson(context.Background(), 5, 100))

	view, err := svc.LearnerCourseView(context.Background(), 5, 1)
	require.NoError(t, err)
	require.Len(t, view.Sections, 2)

	basics := view.Sections[0].Lessons
	require.Len(t, basics, 2)
	assert.True(t, basics[0].Completed)
	assert.False(t, basics[0].Locked)
	assert.False(t, basics[1].Completed)
	assert.False(t, basics[1].Locked, "lesson after the last completed one should be open")

	advanced := view.Sections[1].Lessons
	require.Len(t, advanced, 1)
	assert.True(t, advanced[0].Locked, "lesson past the first incomplete one should be locked")
}
