package service

import (
	"context"
	"errors"
	"fmt"

	"lms/internal/model"
	"lms/internal/quiz"
	"lms/internal/repository"

	"github.com/rs/zerolog"
)

// Quiz authoring errors.
var (
	ErrQuestionNotFound = errors.New("question not found")
	ErrNotQuizLesson    = errors.New("lesson is not a quiz")
	ErrBadSequenceMap   = errors.New("sequence map must cover every question with dense 1-based sequences")
)

// QuizService defines quiz question authoring operations. Drafts are
// validated with the same rules the client-side editor applies, so a request
// that bypasses the editor cannot persist an invalid question.
type QuizService interface {
	ListQuestions(ctx context.Context, lessonID int64) ([]model.Question, error)
	CreateQuestion(ctx context.Context, lessonID int64, d quiz.QuestionDraft) (*model.Question, error)
	UpdateQuestion(ctx context.Context, questionID int64, d quiz.QuestionDraft) (*model.Question, error)
	DeleteQuestion(ctx context.Context, questionID int64) error
	Reorder(ctx context.Context, lessonID int64, sequences map[int64]int) error
}

type quizService struct {
	repo       repository.QuestionRepository
	lessonRepo repository.LessonRepository
	logger     zerolog.Logger
}

// NewQuizService creates a new QuizService
func NewQuizService(repo repository.QuestionRepository, lessonRepo repository.LessonRepository, logger zerolog.Logger) QuizService {
	return &quizService{
		repo:       repo,
		lessonRepo: lessonRepo,
		logger:     logger.With().Str("service", "QuizService").Logger(),
	}
}

// ListQuestions retrieves a quiz lesson's questions with options and
// correctness flags (admin view)
func (s *quizService) ListQuestions(ctx context.Context, lessonID int64) ([]model.Question, error) {
	if err := s.requireQuizLesson(ctx, lessonID); err != nil {
		return nil, err
	}
	return s.repo.ListQuestionsByLesson(ctx, lessonID)
}

// CreateQuestion validates and appends a question to a quiz
func (s *quizService) CreateQuestion(ctx context.Context, lessonID int64, d quiz.QuestionDraft) (*model.Question, error) {
	if err := s.requireQuizLesson(ctx, lessonID); err != nil {
		return nil, err
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	q := draftToQuestion(lessonID, d)
	if err := s.repo.CreateQuestion(ctx, q); err != nil {
		s.logger.Error().Err(err).Int64("lesson_id", lessonID).Msg("Failed to create question")
		return nil, fmt.Errorf("create question: %w", err)
	}
	return q, nil
}

// UpdateQuestion validates and rewrites a question
func (s *quizService) UpdateQuestion(ctx context.Context, questionID int64, d quiz.QuestionDraft) (*model.Question, error) {
	existing, err := s.repo.GetQuestionByID(ctx, questionID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrQuestionNotFound
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	q := draftToQuestion(existing.LessonID, d)
	q.ID = questionID
	if err := s.repo.UpdateQuestion(ctx, q); err != nil {
		return nil, fmt.Errorf("update question: %w", err)
	}
	return q, nil
}

// DeleteQuestion removes a question, keeping sequences dense
func (s *quizService) DeleteQuestion(ctx context.Context, questionID int64) error {
	existing, err := s.repo.GetQuestionByID(ctx, questionID)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrQuestionNotFound
	}
	return s.repo.DeleteQuestion(ctx, questionID)
}

// Reorder applies a full sequence map after checking it is a dense 1..N
// permutation covering every question of the lesson
func (s *quizService) Reorder(ctx context.Context, lessonID int64, sequences map[int64]int) error {
	count, err := s.repo.CountQuestionsByLesson(ctx, lessonID)
	if err != nil {
		return err
	}
	if len(sequences) != count {
		return ErrBadSequenceMap
	}
	seen := make(map[int]bool, count)
	for _, seq := range sequences {
		if seq < 1 || seq > count || seen[seq] {
			return ErrBadSequenceMap
		}
		seen[seq] = true
	}
	if err := s.repo.UpdateSequences(ctx, lessonID, sequences); err != nil {
		return fmt.Errorf("reorder questions: %w", err)
	}
	return nil
}

func (s *quizService) requireQuizLesson(ctx context.Context, lessonID int64) error {
	lesson, err := s.lessonRepo.GetLessonByID(ctx, lessonID)
	if err != nil {
		return err
	}
	if lesson == nil {
		return ErrLessonNotFound
	}
	if lesson.Type != model.LessonQuiz {
		return ErrNotQuizLesson
	}
	return nil
}

func draftToQuestion(lessonID int64, d quiz.QuestionDraft) *model.Question {
	q := &model.Question{
		LessonID:    lessonID,
		Prompt:      d.Prompt,
		Points:      d.Points,
		Explanation: d.Explanation,
	}
	if q.Points <= 0 {
		q.Points = 1
	}
	for _, o := range d.Options {
		if o.Body == "" {
			continue
		}
		q.Options = append(q.Options, model.Option{Body: o.Body, IsCorrect: o.IsCorrect})
	}
	return q
}
