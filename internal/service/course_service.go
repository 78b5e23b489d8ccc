package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"

	"lms/internal/model"
	"lms/internal/repository"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gosimple/slug"
	"github.com/rs/zerolog"
)

// ErrCourseNotFound is returned when a course id or slug resolves to nothing.
var ErrCourseNotFound = errors.New("course not found")

// CourseService defines course catalog operations
type CourseService interface {
	CreateCourse(ctx context.Context, c *model.Course) (*model.Course, error)
	GetCourseByID(ctx context.Context, courseID int64) (*model.Course, error)
	GetCourseBySlug(ctx context.Context, s string) (*model.Course, error)
	// GetCourseTree loads the course with its full section/lesson tree in
	// position order.
	GetCourseTree(ctx context.Context, courseID int64) (*model.Course, error)
	ListCourses(ctx context.Context, f model.CourseFilter) ([]model.Course, int, error)
	UpdateCourse(ctx context.Context, c *model.Course) (*model.Course, error)
	// StoreThumbnail uploads a thumbnail image to object storage and points
	// the course at it.
	StoreThumbnail(ctx context.Context, courseID int64, filename string, content io.Reader) (string, error)
	DeleteCourse(ctx context.Context, courseID int64) error
}

type courseService struct {
	repo        repository.CourseRepository
	sectionRepo repository.SectionRepository
	lessonRepo  repository.LessonRepository
	s3Client    *s3.Client
	s3URL       string
	bucketName  string
	logger      zerolog.Logger
}

// NewCourseService creates a new CourseService
func NewCourseService(
	repo repository.CourseRepository,
	sectionRepo repository.SectionRepository,
	lessonRepo repository.LessonRepository,
	s3Client *s3.Client,
	s3URL, bucketName string,
	logger zerolog.Logger,
) CourseService {
	return &courseService{
		repo:        repo,
		sectionRepo: sectionRepo,
		lessonRepo:  lessonRepo,
		s3Client:    s3Client,
		s3URL:       s3URL,
		bucketName:  bucketName,
		logger:      logger.With().Str("service", "CourseService").Logger(),
	}
}

// CreateCourse creates a new draft course with a unique slug derived from
// the title
func (s *courseService) CreateCourse(ctx context.Context, c *model.Course) (*model.Course, error) {
	base := slug.Make(c.Title)
	candidate := base
	for n := 2; ; n++ {
		taken, err := s.repo.SlugExists(ctx, candidate)
		if err != nil {
			return nil, fmt.Errorf("check slug: %w", err)
		}
		if !taken {
			break
		}
		candidate = fmt.Sprintf("%s-%d", base, n)
	}
	c.Slug = candidate
	if c.Status == "" {
		c.Status = model.CourseDraft
	}
	if err := s.repo.CreateCourse(ctx, c); err != nil {
		s.logger.Error().Err(err).Str("title", c.Title).Msg("Failed to create course")
		return nil, fmt.Errorf("create course: %w", err)
	}
	return c, nil
}

// GetCourseByID retrieves a course by its ID
func (s *courseService) GetCourseByID(ctx context.Context, courseID int64) (*model.Course, error) {
	return s.repo.GetCourseByID(ctx, courseID)
}

// GetCourseBySlug retrieves a course by its catalog slug
func (s *courseService) GetCourseBySlug(ctx context.Context, sl string) (*model.Course, error) {
	return s.repo.GetCourseBySlug(ctx, sl)
}

// GetCourseTree loads a course with its sections and lessons
func (s *courseService) GetCourseTree(ctx context.Context, courseID int64) (*model.Course, error) {
	course, err := s.repo.GetCourseByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if course == nil {
		return nil, nil
	}
	sections, err := s.sectionRepo.ListSectionsByCourse(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("list sections: %w", err)
	}
	for i := range sections {
		lessons, err := s.lessonRepo.ListLessonsBySection(ctx, sections[i].ID)
		if err != nil {
			return nil, fmt.Errorf("list lessons for section %d: %w", sections[i].ID, err)
		}
		sections[i].Lessons = lessons
	}
	course.Sections = sections
	return course, nil
}

// ListCourses retrieves a filtered page of courses
func (s *courseService) ListCourses(ctx context.Context, f model.CourseFilter) ([]model.Course, int, error) {
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 20
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return s.repo.ListCourses(ctx, f)
}

// UpdateCourse updates an existing course's scalar fields
func (s *courseService) UpdateCourse(ctx context.Context, c *model.Course) (*model.Course, error) {
	existing, err := s.repo.GetCourseByID(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrCourseNotFound
	}
	if err := s.repo.UpdateCourse(ctx, c); err != nil {
		return nil, fmt.Errorf("update course: %w", err)
	}
	return c, nil
}

// StoreThumbnail uploads the image and records its public URL
func (s *courseService) StoreThumbnail(ctx context.Context, courseID int64, filename string, content io.Reader) (string, error) {
	key := fmt.Sprintf("courses/%d/thumbnail%s", courseID, path.Ext(filename))
	_, err := s.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(key),
		Body:   content,
	})
	if err != nil {
		s.logger.Error().Err(err).Int64("course_id", courseID).Msg("Failed to upload thumbnail")
		return "", fmt.Errorf("upload thumbnail: %w", err)
	}
	url := fmt.Sprintf("%s/%s/%s", s.s3URL, s.bucketName, key)
	if err := s.repo.UpdateThumbnail(ctx, courseID, url); err != nil {
		return "", fmt.Errorf("store thumbnail url: %w", err)
	}
	return url, nil
}

// DeleteCourse soft-deletes a course
func (s *courseService) DeleteCourse(ctx context.Context, courseID int64) error {
	existing, err := s.repo.GetCourseByID(ctx, courseID)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrCourseNotFound
	}
	return s.repo.SoftDeleteCourse(ctx, courseID)
}
