package handler

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"lms/internal/model"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCourseService struct {
	lastFilter model.CourseFilter
}

func (s *stubCourseService) CreateCourse(_ context.Context, c *model.Course) (*model.Course, error) {
	return c, nil
}
func (s *stubCourseService) GetCourseByID(context.Context, int64) (*model.Course, error) {
	return nil, nil
}
func (s *stubCourseService) GetCourseBySlug(context.Context, string) (*model.Course, error) {
	return nil, nil
}
func (s *stubCourseService) GetCourseTree(context.Context, int64) (*model.Course, error) {
	return nil, nil
}
func (s *stubCourseService) ListCourses(_ context.Context, f model.CourseFilter) ([]model.Course, int, error) {
	s.lastFilter = f
	return []model.Course{}, 0, nil
}
func (s *stubCourseService) UpdateCourse(_ context.Context, c *model.Course) (*model.Course, error) {
	return c, nil
}
func (s *stubCourseService) StoreThumbnail(context.Context, int64, string, io.Reader) (string, error) {
	return "", nil
}
func (s *stubCourseService) DeleteCourse(context.Context, int64) error { return nil }

type stubSectionService struct{}

func (s *stubSectionService) CreateSection(_ context.Context, sec *model.Section) (*model.Section, error) {
	return sec, nil
}
func (s *stubSectionService) RenameSection(context.Context, int64, string) error { return nil }
func (s *stubSectionService) DeleteSection(context.Context, int64) error         { return nil }

type stubEnrollmentService struct{}

func (s *stubEnrollmentService) Enroll(context.Context, int64, int64) (*model.Enrollment, error) {
	return &model.Enrollment{}, nil
}
func (s *stubEnrollmentService) MyCourses(context.Context, int64) ([]model.CourseProgress, error) {
	return nil, nil
}
func (s *stubEnrollmentService) CompleteLesson(context.Context, int64, int64) error { return nil }
func (s *stubEnrollmentService) LearnerCourseView(context.Context, int64, int64) (*model.Course, error) {
	return nil, nil
}

func courseTestMux() (*http.ServeMux, *stubCourseService) {
	svc := &stubCourseService{}
	h := NewCourseHandler(svc, &stubSectionService{}, &stubEnrollmentService{}, validator.New(validator.WithRequiredStructEnabled()))
	mux := http.NewServeMux()
	h.RegisterRoutes(mux, func(next http.Handler) http.Handler { return next })
	return mux, svc
}

func TestListCoursesDefaultsLimitBeforeOffset(t *testing.T) {
	mux, svc := courseTestMux()

	req := httptest.NewRequest(http.MethodGet, "/courses?page=3", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 20, svc.lastFilter.Limit)
	assert.Equal(t, 40, svc.lastFilter.Offset, "page 3 must skip two full default pages")
	assert.Contains(t, rec.Body.String(), `"page":3`)
	assert.Contains(t, rec.Body.String(), `"limit":20`)
}

func TestListCoursesClampsOversizedLimit(t *testing.T) {
	mux, svc := courseTestMux()

	req := httptest.NewRequest(http.MethodGet, "/courses?page=2&limit=500", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 20, svc.lastFilter.Limit)
	assert.Equal(t, 20, svc.lastFilter.Offset)
}

func TestListCoursesExplicitLimit(t *testing.T) {
	mux, svc := courseTestMux()

	req := httptest.NewRequest(http.MethodGet, "/courses?page=4&limit=5", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 5, svc.lastFilter.Limit)
	assert.Equal(t, 15, svc.lastFilter.Offset)
}

func TestListCoursesForcesPublishedForLearners(t *testing.T) {
	mux, svc := courseTestMux()

	req := httptest.NewRequest(http.MethodGet, "/courses?status=draft", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, model.CoursePublished, svc.lastFilter.Status)
}
