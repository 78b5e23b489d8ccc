package service

import (
	"context"
	"errors"
	"fmt"
	"path"
	"time"

	"lms/internal/model"
	"lms/internal/pubsub"
	"lms/internal/repository"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
)

// Lesson errors surfaced to the handler layer.
var (
	ErrLessonNotFound  = errors.New("lesson not found")
	ErrSectionNotFound = errors.New("section not found")
	ErrInvalidContent  = errors.New("lesson content does not match its type")
	ErrNotUploadLesson = errors.New("lesson does not use uploaded content")
)

// LessonService defines lesson CRUD and the media upload flow
type LessonService interface {
	CreateLesson(ctx context.Context, l *model.Lesson) (*model.Lesson, error)
	GetLessonByID(ctx context.Context, lessonID int64) (*model.Lesson, error)
	ListLessonsBySection(ctx context.Context, sectionID int64) ([]model.Lesson, error)
	UpdateLesson(ctx context.Context, l *model.Lesson) (*model.Lesson, error)
	DeleteLesson(ctx context.Context, lessonID int64) error

	// InitiateUpload stages a media upload for a video/document lesson and
	// returns a presigned PUT URL the caller uploads directly to.
	InitiateUpload(ctx context.Context, lessonID int64, filename string) (string, error)
	// CompleteUpload verifies the object landed in storage and publishes a
	// processing job for the external media pipeline.
	CompleteUpload(ctx context.Context, lessonID int64) (*model.Lesson, error)
	// PlaybackURL returns a short-lived presigned GET URL for uploaded
	// content.
	PlaybackURL(ctx context.Context, lessonID int64) (string, error)
}

type lessonService struct {
	repo          repository.LessonRepository
	sectionRepo   repository.SectionRepository
	s3Client      *s3.Client
	presignClient *s3.PresignClient
	bucketName    string
	urlTTL        time.Duration
	publisher     pubsub.Publisher
	logger        zerolog.Logger
}

// NewLessonService creates a new LessonService
func NewLessonService(
	repo repository.LessonRepository,
	sectionRepo repository.SectionRepository,
	s3Client *s3.Client,
	bucketName string,
	urlTTL time.Duration,
	publisher pubsub.Publisher,
	logger zerolog.Logger,
) LessonService {
	return &lessonService{
		repo:          repo,
		sectionRepo:   sectionRepo,
		s3Client:      s3Client,
		presignClient: s3.NewPresignClient(s3Client),
		bucketName:    bucketName,
		urlTTL:        urlTTL,
		publisher:     publisher,
		logger:        logger.With().Str("service", "LessonService").Logger(),
	}
}

// validateContent enforces that exactly one content representation is
// authoritative for the lesson's type.
func validateContent(l *model.Lesson) error {
	switch l.Type {
	case model.LessonVideo, model.LessonDocument:
		switch l.ContentSource {
		case model.SourceExternal:
			if l.ContentURL == "" {
				return ErrInvalidContent
			}
		case model.SourceUpload:
			// ContentPath arrives later through the upload flow.
		default:
			return ErrInvalidContent
		}
		l.ContentText = ""
	case model.LessonText:
		if l.ContentText == "" {
			return ErrInvalidContent
		}
		l.ContentSource = model.SourceExternal
		l.ContentURL, l.ContentPath = "", ""
	case model.LessonQuiz:
		if l.PassingGrade <= 0 || l.PassingGrade > 100 {
			return ErrInvalidContent
		}
		l.ContentSource = model.SourceExternal
		l.ContentURL, l.ContentPath, l.ContentText = "", "", ""
	default:
		return fmt.Errorf("%w: unknown type %q", ErrInvalidContent, l.Type)
	}
	return nil
}

// CreateLesson appends a lesson to a section
func (s *lessonService) CreateLesson(ctx context.Context, l *model.Lesson) (*model.Lesson, error) {
	section, err := s.sectionRepo.GetSectionByID(ctx, l.SectionID)
	if err != nil {
		return nil, err
	}
	if section == nil {
		return nil, ErrSectionNotFound
	}
	if err := validateContent(l); err != nil {
		return nil, err
	}
	if l.Type != model.LessonText && l.ContentSource == model.SourceUpload && l.ContentPath == "" {
		l.MediaStatus = model.MediaUploading
	}
	if l.Position <= 0 {
		lessons, err := s.repo.ListLessonsBySection(ctx, l.SectionID)
		if err != nil {
			return nil, err
		}
		l.Position = len(lessons) + 1
	}
	if err := s.repo.CreateLesson(ctx, l); err != nil {
		s.logger.Error().Err(err).Int64("section_id", l.SectionID).Msg("Failed to create lesson")
		return nil, fmt.Errorf("create lesson: %w", err)
	}
	return l, nil
}

// GetLessonByID retrieves a lesson by its ID
func (s *lessonService) GetLessonByID(ctx context.Context, lessonID int64) (*model.Lesson, error) {
	return s.repo.GetLessonByID(ctx, lessonID)
}

// ListLessonsBySection retrieves a section's lessons in position order
func (s *lessonService) ListLessonsBySection(ctx context.Context, sectionID int64) ([]model.Lesson, error) {
	return s.repo.ListLessonsBySection(ctx, sectionID)
}

// UpdateLesson updates an existing lesson
func (s *lessonService) UpdateLesson(ctx context.Context, l *model.Lesson) (*model.Lesson, error) {
	existing, err := s.repo.GetLessonByID(ctx, l.ID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrLessonNotFound
	}
	if l.ContentSource == model.SourceUpload && l.ContentPath == "" {
		// Keep the already-uploaded object when the caller did not restage.
		l.ContentPath = existing.ContentPath
	}
	if err := validateContent(l); err != nil {
		return nil, err
	}
	if l.Position <= 0 {
		l.Position = existing.Position
	}
	if err := s.repo.UpdateLesson(ctx, l); err != nil {
		return nil, fmt.Errorf("update lesson: %w", err)
	}
	return l, nil
}

// DeleteLesson removes a lesson
func (s *lessonService) DeleteLesson(ctx context.Context, lessonID int64) error {
	existing, err := s.repo.GetLessonByID(ctx, lessonID)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrLessonNotFound
	}
	return s.repo.DeleteLesson(ctx, lessonID)
}

// InitiateUpload stages an upload and returns the presigned PUT URL
func (s *lessonService) InitiateUpload(ctx context.Context, lessonID int64, filename string) (string, error) {
	lesson, err := s.repo.GetLessonByID(ctx, lessonID)
	if err != nil {
		return "", err
	}
	if lesson == nil {
		return "", ErrLessonNotFound
	}
	if lesson.Type != model.LessonVideo && lesson.Type != model.LessonDocument {
		return "", ErrNotUploadLesson
	}

	storagePath := fmt.Sprintf("lessons/%d/original%s", lessonID, path.Ext(filename))
	req, err := s.presignClient.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(storagePath),
	}, s3.WithPresignExpires(s.urlTTL))
	if err != nil {
		s.logger.Error().Err(err).Int64("lesson_id", lessonID).Msg("Failed to generate presigned PUT URL")
		return "", fmt.Errorf("presign upload: %w", err)
	}

	if err := s.repo.UpdateMedia(ctx, lessonID, storagePath, model.MediaUploading); err != nil {
		return "", fmt.Errorf("stage upload: %w", err)
	}
	return req.URL, nil
}

// CompleteUpload verifies the object and hands it to the media pipeline
func (s *lessonService) CompleteUpload(ctx context.Context, lessonID int64) (*model.Lesson, error) {
	lesson, err := s.repo.GetLessonByID(ctx, lessonID)
	if err != nil {
		return nil, err
	}
	if lesson == nil {
		return nil, ErrLessonNotFound
	}
	if lesson.ContentPath == "" {
		return nil, ErrNotUploadLesson
	}

	_, err = s.s3Client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(lesson.ContentPath),
	})
	if err != nil {
		s.logger.Error().Err(err).Str("storage_path", lesson.ContentPath).Msg("File not found in storage at expected path")
		_ = s.repo.UpdateMedia(ctx, lessonID, lesson.ContentPath, model.MediaFailed)
		return nil, fmt.Errorf("file not found in storage: %w", err)
	}

	if err := s.repo.UpdateMedia(ctx, lessonID, lesson.ContentPath, model.MediaProcessing); err != nil {
		return nil, fmt.Errorf("update media status: %w", err)
	}
	lesson.MediaStatus = model.MediaProcessing

	job := pubsub.MediaJob{
		LessonID:    lessonID,
		StoragePath: lesson.ContentPath,
		ContentType: lesson.Type,
	}
	if _, err := s.publisher.PublishMediaJob(ctx, job); err != nil {
		// The upload itself succeeded; processing needs a manual trigger.
		s.logger.Error().Err(err).Int64("lesson_id", lessonID).Msg("Failed to publish media job")
	}

	return lesson, nil
}

// PlaybackURL returns a presigned GET URL for uploaded lesson content
func (s *lessonService) PlaybackURL(ctx context.Context, lessonID int64) (string, error) {
	lesson, err := s.repo.GetLessonByID(ctx, lessonID)
	if err != nil {
		return "", err
	}
	if lesson == nil {
		return "", ErrLessonNotFound
	}
	if lesson.ContentSource != model.SourceUpload || lesson.ContentPath == "" {
		return "", ErrNotUploadLesson
	}
	req, err := s.presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(lesson.ContentPath),
	}, s3.WithPresignExpires(s.urlTTL))
	if err != nil {
		return "", fmt.Errorf("presign playback: %w", err)
	}
	return req.URL, nil
}
