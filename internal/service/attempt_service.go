package service

import (
	"context"
	"errors"
	"fmt"

	"lms/internal/model"
	"lms/internal/repository"

	"github.com/rs/zerolog"
)

// Attempt errors surfaced to the handler layer.
var (
	ErrAttemptNotFound = errors.New("attempt not found")
	ErrEmptyQuiz       = errors.New("quiz has no questions")
	ErrNoSuchSequence  = errors.New("no question at that sequence")
)

// AttemptService defines the learner-facing quiz flow: paged question
// fetch, submission with server-side scoring, and the scored review.
type AttemptService interface {
	// QuestionAt returns the question at a 1-based sequence with its
	// correctness flags stripped, plus the total question count.
	QuestionAt(ctx context.Context, lessonID int64, seq int) (*model.Question, int, error)
	// Submit scores the answer map, persists the attempt and returns it.
	Submit(ctx context.Context, userID, lessonID int64, answers map[int64]int64) (*model.Attempt, error)
	// Review returns the per-question breakdown for an attempt owned by the
	// caller.
	Review(ctx context.Context, userID, attemptID int64) (*model.AttemptReview, error)
}

type attemptService struct {
	questionRepo repository.QuestionRepository
	attemptRepo  repository.AttemptRepository
	lessonRepo   repository.LessonRepository
	logger       zerolog.Logger
}

// NewAttemptService creates a new AttemptService
func NewAttemptService(
	questionRepo repository.QuestionRepository,
	attemptRepo repository.AttemptRepository,
	lessonRepo repository.LessonRepository,
	logger zerolog.Logger,
) AttemptService {
	return &attemptService{
		questionRepo: questionRepo,
		attemptRepo:  attemptRepo,
		lessonRepo:   lessonRepo,
		logger:       logger.With().Str("service", "AttemptService").Logger(),
	}
}

// QuestionAt pages one question at a time
func (s *attemptService) QuestionAt(ctx context.Context, lessonID int64, seq int) (*model.Question, int, error) {
	total, err := s.questionRepo.CountQuestionsByLesson(ctx, lessonID)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return nil, 0, ErrEmptyQuiz
	}
	q, err := s.questionRepo.GetQuestionBySequence(ctx, lessonID, seq)
	if err != nil {
		return nil, 0, err
	}
	if q == nil {
		return nil, 0, ErrNoSuchSequence
	}
	// Learners never see correctness or explanations before submitting.
	q.Explanation = ""
	for i := range q.Options {
		q.Options[i].IsCorrect = false
	}
	return q, total, nil
}

// Submit scores an answer map against the quiz and persists the attempt
func (s *attemptService) Submit(ctx context.Context, userID, lessonID int64, answers map[int64]int64) (*model.Attempt, error) {
	lesson, err := s.lessonRepo.GetLessonByID(ctx, lessonID)
	if err != nil {
		return nil, err
	}
	if lesson == nil {
		return nil, ErrLessonNotFound
	}
	if lesson.Type != model.LessonQuiz {
		return nil, ErrNotQuizLesson
	}
	questions, err := s.questionRepo.ListQuestionsByLesson(ctx, lessonID)
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, ErrEmptyQuiz
	}

	totalPoints, earnedPoints := 0, 0
	rows := make([]model.AttemptAnswer, 0, len(questions))
	for _, q := range questions {
		totalPoints += q.Points
		chosen, answered := answers[q.ID]
		if !answered {
			continue
		}
		rows = append(rows, model.AttemptAnswer{QuestionID: q.ID, OptionID: chosen})
		if optionCorrect(q, chosen) {
			earnedPoints += q.Points
		}
	}

	score := 0.0
	if totalPoints > 0 {
		score = float64(earnedPoints) / float64(totalPoints) * 100
	}
	attempt := &model.Attempt{
		LessonID: lessonID,
		UserID:   userID,
		Score:    score,
		Passed:   score >= lesson.PassingGrade,
	}
	if err := s.attemptRepo.CreateAttempt(ctx, attempt, rows); err != nil {
		s.logger.Error().Err(err).Int64("lesson_id", lessonID).Msg("Failed to store attempt")
		return nil, fmt.Errorf("store attempt: %w", err)
	}
	return attempt, nil
}

// Review rebuilds the scored breakdown for an attempt
func (s *attemptService) Review(ctx context.Context, userID, attemptID int64) (*model.AttemptReview, error) {
	attempt, err := s.attemptRepo.GetAttemptByID(ctx, attemptID)
	if err != nil {
		return nil, err
	}
	if attempt == nil || attempt.UserID != userID {
		return nil, ErrAttemptNotFound
	}
	lesson, err := s.lessonRepo.GetLessonByID(ctx, attempt.LessonID)
	if err != nil {
		return nil, err
	}
	if lesson == nil {
		return nil, ErrLessonNotFound
	}
	questions, err := s.questionRepo.ListQuestionsByLesson(ctx, attempt.LessonID)
	if err != nil {
		return nil, err
	}
	answers, err := s.attemptRepo.ListAnswers(ctx, attemptID)
	if err != nil {
		return nil, err
	}
	chosenByQuestion := make(map[int64]int64, len(answers))
	for _, a := range answers {
		chosenByQuestion[a.QuestionID] = a.OptionID
	}

	review := &model.AttemptReview{
		AttemptID:    attempt.ID,
		LessonID:     attempt.LessonID,
		Score:        attempt.Score,
		PassingGrade: lesson.PassingGrade,
		Passed:       attempt.Passed,
	}
	for _, q := range questions {
		detail := model.ReviewDetail{
			QuestionID:  q.ID,
			Prompt:      q.Prompt,
			Explanation: q.Explanation,
		}
		chosen, answered := chosenByQuestion[q.ID]
		if answered {
			detail.ChosenText = optionBody(q, chosen)
			detail.Correct = optionCorrect(q, chosen)
		}
		if !detail.Correct {
			detail.CorrectText = correctBody(q)
		}
		review.Questions = append(review.Questions, detail)
	}
	return review, nil
}

func optionCorrect(q model.Question, optionID int64) bool {
	for _, o := range q.Options {
		if o.ID == optionID {
			return o.IsCorrect
		}
	}
	return false
}

func optionBody(q model.Question, optionID int64) string {
	for _, o := range q.Options {
		if o.ID == optionID {
			return o.Body
		}
	}
	return ""
}

func correctBody(q model.Question) string {
	for _, o := range q.Options {
		if o.IsCorrect {
			return o.Body
		}
	}
	return ""
}
