package service

import (
	"context"
	"fmt"

	"lms/internal/model"
	"lms/internal/repository"

	"github.com/rs/zerolog"
)

// SectionService defines course section operations
type SectionService interface {
	CreateSection(ctx context.Context, sec *model.Section) (*model.Section, error)
	RenameSection(ctx context.Context, sectionID int64, title string) error
	DeleteSection(ctx context.Context, sectionID int64) error
}

type sectionService struct {
	repo       repository.SectionRepository
	courseRepo repository.CourseRepository
	logger     zerolog.Logger
}

// NewSectionService creates a new SectionService
func NewSectionService(repo repository.SectionRepository, courseRepo repository.CourseRepository, logger zerolog.Logger) SectionService {
	return &sectionService{
		repo:       repo,
		courseRepo: courseRepo,
		logger:     logger.With().Str("service", "SectionService").Logger(),
	}
}

// CreateSection appends a section to a course
func (s *sectionService) CreateSection(ctx context.Context, sec *model.Section) (*model.Section, error) {
	course, err := s.courseRepo.GetCourseByID(ctx, sec.CourseID)
	if err != nil {
		return nil, err
	}
	if course == nil {
		return nil, ErrCourseNotFound
	}
	if sec.Position <= 0 {
		existing, err := s.repo.ListSectionsByCourse(ctx, sec.CourseID)
		if err != nil {
			return nil, err
		}
		sec.Position = len(existing) + 1
	}
	if err := s.repo.CreateSection(ctx, sec); err != nil {
		s.logger.Error().Err(err).Int64("course_id", sec.CourseID).Msg("Failed to create section")
		return nil, fmt.Errorf("create section: %w", err)
	}
	return sec, nil
}

// RenameSection updates a section's title
func (s *sectionService) RenameSection(ctx context.Context, sectionID int64, title string) error {
	existing, err := s.repo.GetSectionByID(ctx, sectionID)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrSectionNotFound
	}
	return s.repo.UpdateSectionTitle(ctx, sectionID, title)
}

// DeleteSection removes a section and its lessons
func (s *sectionService) DeleteSection(ctx context.Context, sectionID int64) error {
	existing, err := s.repo.GetSectionByID(ctx, sectionID)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrSectionNotFound
	}
	return s.repo.DeleteSection(ctx, sectionID)
}
