package quiz

import (
	"context"
	"fmt"

	"lms/internal/model"
)

// Player states. Transitions are linear: start -> questions -> result, with
// Retry as the only way back.
type State int

const (
	StateStart State = iota
	StateQuestions
	StateResult
)

// AttemptAPI is the remote surface for taking a quiz. QuestionAt pages one
// question at a time and reports the total count; Submit returns the attempt
// id the scored review is fetched with.
type AttemptAPI interface {
	QuestionAt(ctx context.Context, lessonID int64, seq int) (model.Question, int, error)
	Submit(ctx context.Context, lessonID int64, answers map[int64]int64) (int64, error)
	Review(ctx context.Context, attemptID int64) (*model.AttemptReview, error)
}

// Player is the learner-facing quiz flow for one lesson. It owns the current
// sequence position and the accumulated answer map; a passed result invokes
// the completion callback exactly once per attempt.
type Player struct {
	api      AttemptAPI
	lessonID int64
	onPassed func()

	state   State
	seq     int
	total   int
	current model.Question
	answers map[int64]int64
	review  *model.AttemptReview
}

// NewPlayer creates a Player in the start state. onPassed may be nil.
func NewPlayer(api AttemptAPI, lessonID int64, onPassed func()) *Player {
	return &Player{api: api, lessonID: lessonID, onPassed: onPassed}
}

// State returns the current machine state.
func (p *Player) State() State {
	return p.state
}

// Begin clears any previously accumulated answers and enters the question
// flow at sequence 1.
func (p *Player) Begin(ctx context.Context) error {
	if p.state != StateStart {
		return fmt.Errorf("begin: not in start state")
	}
	q, total, err := p.api.QuestionAt(ctx, p.lessonID, 1)
	if err != nil {
		return fmt.Errorf("fetch question 1: %w", err)
	}
	p.answers = make(map[int64]int64)
	p.review = nil
	p.current, p.seq, p.total = q, 1, total
	p.state = StateQuestions
	return nil
}

// Current returns the question on screen with its sequence and the total
// question count.
func (p *Player) Current() (model.Question, int, int) {
	return p.current, p.seq, p.total
}

// SelectOption records the chosen option for a question, overwriting any
// previous choice. Single-select only.
func (p *Player) SelectOption(questionID, optionID int64) {
	if p.state != StateQuestions {
		return
	}
	p.answers[questionID] = optionID
}

// Answers returns a copy of the accumulated answer map.
func (p *Player) Answers() map[int64]int64 {
	out := make(map[int64]int64, len(p.answers))
	for k, v := range p.answers {
		out[k] = v
	}
	return out
}

// Advance moves to the next question, or on the last question submits the
// answers and fetches the scored review. Submission and review are strictly
// sequential and both must succeed before the machine enters the result
// state; any failure leaves it in the question flow so the learner can
// retry the submission.
func (p *Player) Advance(ctx context.Context) error {
	if p.state != StateQuestions {
		return fmt.Errorf("advance: not in question flow")
	}
	if p.seq < p.total {
		q, total, err := p.api.QuestionAt(ctx, p.lessonID, p.seq+1)
		if err != nil {
			return fmt.Errorf("fetch question %d: %w", p.seq+1, err)
		}
		p.current, p.seq, p.total = q, p.seq+1, total
		return nil
	}

	attemptID, err := p.api.Submit(ctx, p.lessonID, p.answers)
	if err != nil {
		return fmt.Errorf("submit answers: %w", err)
	}
	review, err := p.api.Review(ctx, attemptID)
	if err != nil {
		return fmt.Errorf("fetch review %d: %w", attemptID, err)
	}
	p.review = review
	p.state = StateResult
	if review.Passed && p.onPassed != nil {
		p.onPassed()
	}
	return nil
}

// Previous steps back one question. It is only available inside the question
// flow and never touches already-recorded answers.
func (p *Player) Previous(ctx context.Context) error {
	if p.state != StateQuestions || p.seq <= 1 {
		return nil
	}
	q, total, err := p.api.QuestionAt(ctx, p.lessonID, p.seq-1)
	if err != nil {
		return fmt.Errorf("fetch question %d: %w", p.seq-1, err)
	}
	p.current, p.seq, p.total = q, p.seq-1, total
	return nil
}

// Result returns the scored review, or nil outside the result state.
func (p *Player) Result() *model.AttemptReview {
	if p.state != StateResult {
		return nil
	}
	return p.review
}

// Retry resets the machine to the start state for a fresh attempt.
func (p *Player) Retry() {
	p.state = StateStart
	p.seq, p.total = 0, 0
	p.current = model.Question{}
	p.answers = nil
	p.review = nil
}
