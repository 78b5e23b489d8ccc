package service

import (
	"context"
	"errors"
	"fmt"

	"lms/internal/curriculum"
	"lms/internal/model"
	"lms/internal/repository"

	"github.com/rs/zerolog"
)

// Enrollment errors surfaced to the handler layer.
var (
	ErrNotEnrolled  = errors.New("user is not enrolled in this course")
	ErrNotPublished = errors.New("course is not open for enrollment")
)

// EnrollmentService defines learner enrollment and progress tracking
type EnrollmentService interface {
	Enroll(ctx context.Context, userID, courseID int64) (*model.Enrollment, error)
	// MyCourses lists the caller's enrolled courses with progress figures.
	MyCourses(ctx context.Context, userID int64) ([]model.CourseProgress, error)
	CompleteLesson(ctx context.Context, userID, lessonID int64) error
	// LearnerCourseView loads the course tree with completion and lock flags
	// stamped for the caller.
	LearnerCourseView(ctx context.Context, userID, courseID int64) (*model.Course, error)
}

type enrollmentService struct {
	repo        repository.EnrollmentRepository
	courseRepo  repository.CourseRepository
	sectionRepo repository.SectionRepository
	lessonRepo  repository.LessonRepository
	logger      zerolog.Logger
}

// NewEnrollmentService creates a new EnrollmentService
func NewEnrollmentService(
	repo repository.EnrollmentRepository,
	courseRepo repository.CourseRepository,
	sectionRepo repository.SectionRepository,
	lessonRepo repository.LessonRepository,
	logger zerolog.Logger,
) EnrollmentService {
	return &enrollmentService{
		repo:        repo,
		courseRepo:  courseRepo,
		sectionRepo: sectionRepo,
		lessonRepo:  lessonRepo,
		logger:      logger.With().Str("service", "EnrollmentService").Logger(),
	}
}

// Enroll enrolls a learner into a published course. Enrolling twice is a
// no-op that returns the existing enrollment.
func (s *enrollmentService) Enroll(ctx context.Context, userID, courseID int64) (*model.Enrollment, error) {
	course, err := s.courseRepo.GetCourseByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if course == nil {
		return nil, ErrCourseNotFound
	}
	if course.Status != model.CoursePublished {
		return nil, ErrNotPublished
	}
	e := &model.Enrollment{UserID: userID, CourseID: courseID}
	if err := s.repo.CreateEnrollment(ctx, e); err != nil {
		s.logger.Error().Err(err).Int64("course_id", courseID).Msg("Failed to enroll user")
		return nil, fmt.Errorf("enroll: %w", err)
	}
	return e, nil
}

// MyCourses lists enrolled courses with completion percentages
func (s *enrollmentService) MyCourses(ctx context.Context, userID int64) ([]model.CourseProgress, error) {
	enrollments, err := s.repo.ListEnrollmentsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	progress := make([]model.CourseProgress, 0, len(enrollments))
	for _, e := range enrollments {
		total, err := s.lessonRepo.CountLessonsByCourse(ctx, e.CourseID)
		if err != nil {
			return nil, err
		}
		completed, err := s.repo.ListCompletedLessonIDs(ctx, userID, e.CourseID)
		if err != nil {
			return nil, err
		}
		p := model.CourseProgress{
			CourseID:         e.CourseID,
			CompletedLessons: len(completed),
			TotalLessons:     total,
		}
		if total > 0 {
			p.Percent = float64(len(completed)) / float64(total) * 100
		}
		progress = append(progress, p)
	}
	return progress, nil
}

// CompleteLesson marks a lesson finished for the caller. Repeat calls are
// idempotent.
func (s *enrollmentService) CompleteLesson(ctx context.Context, userID, lessonID int64) error {
	lesson, err := s.lessonRepo.GetLessonByID(ctx, lessonID)
	if err != nil {
		return err
	}
	if lesson == nil {
		return ErrLessonNotFound
	}
	section, err := s.sectionRepo.GetSectionByID(ctx, lesson.SectionID)
	if err != nil {
		return err
	}
	if section == nil {
		return ErrSectionNotFound
	}
	enrolled, err := s.repo.IsEnrolled(ctx, userID, section.CourseID)
	if err != nil {
		return err
	}
	if !enrolled {
		return ErrNotEnrolled
	}
	if err := s.repo.CompleteLesson(ctx, userID, lessonID); err != nil {
		return fmt.Errorf("complete lesson: %w", err)
	}
	return nil
}

// LearnerCourseView loads the course tree and stamps per-lesson completion
// and lock state for the caller
func (s *enrollmentService) LearnerCourseView(ctx context.Context, userID, courseID int64) (*model.Course, error) {
	enrolled, err := s.repo.IsEnrolled(ctx, userID, courseID)
	if err != nil {
		return nil, err
	}
	if !enrolled {
		return nil, ErrNotEnrolled
	}
	course, err := s.courseRepo.GetCourseByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if course == nil {
		return nil, ErrCourseNotFound
	}
	sections, err := s.sectionRepo.ListSectionsByCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	completedIDs, err := s.repo.ListCompletedLessonIDs(ctx, userID, courseID)
	if err != nil {
		return nil, err
	}
	done := make(map[int64]bool, len(completedIDs))
	for _, id := range completedIDs {
		done[id] = true
	}
	for i := range sections {
		lessons, err := s.lessonRepo.ListLessonsBySection(ctx, sections[i].ID)
		if err != nil {
			return nil, err
		}
		for j := range lessons {
			lessons[j].Completed = done[lessons[j].ID]
		}
		sections[i].Lessons = lessons
	}
	curriculum.ApplyUnlock(sections)
	course.Sections = sections
	return course, nil
}
