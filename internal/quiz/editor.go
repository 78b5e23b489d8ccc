package quiz

import (
	"context"
	"errors"
	"fmt"

	"lms/internal/model"
)

// Question validation errors, surfaced before any network call is made.
var (
	ErrNoPrompt        = errors.New("question prompt is required")
	ErrTooFewOptions   = errors.New("at least two options with text are required")
	ErrNoCorrectOption = errors.New("at least one option must be marked correct")
)

// OptionDraft is one answer choice being authored.
type OptionDraft struct {
	ID        int64  `json:"id,omitempty"`
	Body      string `json:"body"`
	IsCorrect bool   `json:"is_correct"`
}

// QuestionDraft is a question being authored.
type QuestionDraft struct {
	Prompt      string        `json:"prompt"`
	Points      int           `json:"points"`
	Explanation string        `json:"explanation,omitempty"`
	Options     []OptionDraft `json:"options"`
}

// Validate enforces the authoring invariants: a non-empty prompt, at least
// two options with non-empty text, and at least one correct option. Blank
// options do not count toward the minimum.
func (d QuestionDraft) Validate() error {
	if d.Prompt == "" {
		return ErrNoPrompt
	}
	filled, correct := 0, 0
	for _, o := range d.Options {
		if o.Body == "" {
			continue
		}
		filled++
		if o.IsCorrect {
			correct++
		}
	}
	if filled < 2 {
		return ErrTooFewOptions
	}
	if correct == 0 {
		return ErrNoCorrectOption
	}
	return nil
}

// QuizAPI is the remote surface for question authoring. Quiz questions
// always operate against an already-persisted lesson, so there is no
// local-first staging here: rejected drafts never reach the server and
// accepted ones are persisted immediately.
type QuizAPI interface {
	CreateQuestion(ctx context.Context, lessonID int64, d QuestionDraft) (model.Question, error)
	UpdateQuestion(ctx context.Context, questionID int64, d QuestionDraft) (model.Question, error)
	DeleteQuestion(ctx context.Context, questionID int64) error
	ReorderQuestions(ctx context.Context, lessonID int64, sequences map[int64]int) error
}

// Editor manages the ordered question list of one quiz lesson.
type Editor struct {
	api       QuizAPI
	lessonID  int64
	questions []model.Question
}

// NewEditor starts an editor over the questions currently on the server, in
// sequence order.
func NewEditor(api QuizAPI, lessonID int64, questions []model.Question) *Editor {
	return &Editor{api: api, lessonID: lessonID, questions: questions}
}

// Questions returns the current list in presentation order.
func (e *Editor) Questions() []model.Question {
	return e.questions
}

// AddQuestion validates the draft and appends it via the server. Invalid
// drafts are rejected without a call.
func (e *Editor) AddQuestion(ctx context.Context, d QuestionDraft) error {
	if err := d.Validate(); err != nil {
		return err
	}
	q, err := e.api.CreateQuestion(ctx, e.lessonID, d)
	if err != nil {
		return fmt.Errorf("create question: %w", err)
	}
	e.questions = append(e.questions, q)
	return nil
}

// UpdateQuestion validates the draft and replaces the matching question.
func (e *Editor) UpdateQuestion(ctx context.Context, questionID int64, d QuestionDraft) error {
	if err := d.Validate(); err != nil {
		return err
	}
	q, err := e.api.UpdateQuestion(ctx, questionID, d)
	if err != nil {
		return fmt.Errorf("update question %d: %w", questionID, err)
	}
	for i := range e.questions {
		if e.questions[i].ID == questionID {
			q.Sequence = e.questions[i].Sequence
			e.questions[i] = q
			break
		}
	}
	return nil
}

// DeleteQuestion removes the question on the server immediately and closes
// the local sequence gap.
func (e *Editor) DeleteQuestion(ctx context.Context, questionID int64) error {
	if err := e.api.DeleteQuestion(ctx, questionID); err != nil {
		return fmt.Errorf("delete question %d: %w", questionID, err)
	}
	for i := range e.questions {
		if e.questions[i].ID == questionID {
			e.questions = append(e.questions[:i], e.questions[i+1:]...)
			break
		}
	}
	e.resequence()
	return nil
}

// Reorder moves a question within the list, recomputes dense 1-based
// sequences and submits the full sequence map in one call. On failure the
// local order is kept as moved; a follow-up refetch resolves any drift.
func (e *Editor) Reorder(ctx context.Context, from, to int) error {
	if from < 0 || from >= len(e.questions) || to < 0 || to >= len(e.questions) {
		return fmt.Errorf("reorder out of range: %d -> %d", from, to)
	}
	q := e.questions[from]
	e.questions = append(e.questions[:from], e.questions[from+1:]...)
	e.questions = append(e.questions[:to], append([]model.Question{q}, e.questions[to:]...)...)
	e.resequence()

	sequences := make(map[int64]int, len(e.questions))
	for _, q := range e.questions {
		sequences[q.ID] = q.Sequence
	}
	if err := e.api.ReorderQuestions(ctx, e.lessonID, sequences); err != nil {
		return fmt.Errorf("reorder questions: %w", err)
	}
	return nil
}

func (e *Editor) resequence() {
	for i := range e.questions {
		e.questions[i].Sequence = i + 1
	}
}
