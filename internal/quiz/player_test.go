package quiz

import (
	"context"
	"errors"
	"testing"

	"lms/internal/model"
)

// fakeAttemptAPI serves a fixed question list and scores submissions against
// a correct-answer map.
type fakeAttemptAPI struct {
	questions    []model.Question
	correct      map[int64]int64
	passingGrade float64

	submitErr error
	reviewErr error

	submissions []map[int64]int64
	lastReview  *model.AttemptReview
}

func (f *fakeAttemptAPI) QuestionAt(_ context.Context, _ int64, seq int) (model.Question, int, error) {
	if seq < 1 || seq > len(f.questions) {
		return model.Question{}, 0, errors.New("no such sequence")
	}
	return f.questions[seq-1], len(f.questions), nil
}

func (f *fakeAttemptAPI) Submit(_ context.Context, _ int64, answers map[int64]int64) (int64, error) {
	if f.submitErr != nil {
		return 0, f.submitErr
	}
	copied := make(map[int64]int64, len(answers))
	for k, v := range answers {
		copied[k] = v
	}
	f.submissions = append(f.submissions, copied)

	right := 0
	for qID, optID := range answers {
		if f.correct[qID] == optID {
			right++
		}
	}
	score := float64(right) / float64(len(f.questions)) * 100
	f.lastReview = &model.AttemptReview{
		AttemptID:    int64(len(f.submissions)),
		Score:        score,
		PassingGrade: f.passingGrade,
		Passed:       score >= f.passingGrade,
	}
	return f.lastReview.AttemptID, nil
}

func (f *fakeAttemptAPI) Review(_ context.Context, attemptID int64) (*model.AttemptReview, error) {
	if f.reviewErr != nil {
		return nil, f.reviewErr
	}
	if f.lastReview == nil || f.lastReview.AttemptID != attemptID {
		return nil, errors.New("unknown attempt")
	}
	return f.lastReview, nil
}

func threeQuestionAPI() *fakeAttemptAPI {
	return &fakeAttemptAPI{
		questions: []model.Question{
			{ID: 1, Sequence: 1},
			{ID: 2, Sequence: 2},
			{ID: 3, Sequence: 3},
		},
		correct:      map[int64]int64{1: 11, 2: 22, 3: 33},
		passingGrade: 70,
	}
}

func answerAll(t *testing.T, p *Player, answers map[int64]int64) {
	t.Helper()
	ctx := context.Background()
	for i := 0; i < len(answers); i++ {
		q, _, _ := p.Current()
		p.SelectOption(q.ID, answers[q.ID])
		if err := p.Advance(ctx); err != nil {
			t.Fatalf("Advance after question %d: %v", q.ID, err)
		}
	}
}

func TestPlayerPassInvokesCallbackOnce(t *testing.T) {
	api := threeQuestionAPI()
	callbacks := 0
	p := NewPlayer(api, 1, func() { callbacks++ })

	if err := p.Begin(context.Background()); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if p.State() != StateQuestions {
		t.Fatalf("state = %v, want questions", p.State())
	}

	answerAll(t, p, map[int64]int64{1: 11, 2: 22, 3: 33})

	if p.State() != StateResult {
		t.Fatalf("state = %v, want result", p.State())
	}
	result := p.Result()
	if result == nil || !result.Passed || result.Score != 100 {
		t.Fatalf("result = %+v, want passed with score 100", result)
	}
	if callbacks != 1 {
		t.Errorf("completion callback ran %d times, want exactly 1", callbacks)
	}
}

func TestPlayerFailNoCallbackThenRetry(t *testing.T) {
	api := threeQuestionAPI()
	callbacks := 0
	p := NewPlayer(api, 1, func() { callbacks++ })

	if err := p.Begin(context.Background()); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	// One right answer out of three is below the 70% bar.
	answerAll(t, p, map[int64]int64{1: 11, 2: 99, 3: 99})

	result := p.Result()
	if result == nil || result.Passed {
		t.Fatalf("result = %+v, want failed", result)
	}
	if callbacks != 0 {
		t.Errorf("completion callback ran %d times on a failed attempt", callbacks)
	}

	p.Retry()
	if p.State() != StateStart {
		t.Fatalf("state after Retry = %v, want start", p.State())
	}
	if p.Result() != nil {
		t.Error("Result should be nil outside the result state")
	}
	if err := p.Begin(context.Background()); err != nil {
		t.Fatalf("Begin after Retry: %v", err)
	}
	if len(p.Answers()) != 0 {
		t.Error("answers from the failed attempt leaked into the new one")
	}
}

func TestPlayerSubmitFailureStaysInQuestions(t *testing.T) {
	api := threeQuestionAPI()
	callbacks := 0
	p := NewPlayer(api, 1, func() { callbacks++ })

	if err := p.Begin(context.Background()); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	ctx := context.Background()
	p.SelectOption(1, 11)
	if err := p.Advance(ctx); err != nil {
		t.Fatalf("Advance: %v", err)
	}
	p.SelectOption(2, 22)
	if err := p.Advance(ctx); err != nil {
		t.Fatalf("Advance: %v", err)
	}
	p.SelectOption(3, 33)

	api.submitErr = errors.New("network down")
	if err := p.Advance(ctx); err == nil {
		t.Fatal("expected the final Advance to fail")
	}
	if p.State() != StateQuestions {
		t.Fatalf("state = %v, want to stay in questions after a failed submit", p.State())
	}
	if callbacks != 0 {
		t.Error("callback ran despite the failed submission")
	}

	// The answers survive, so a retried Advance can succeed.
	api.submitErr = nil
	if err := p.Advance(ctx); err != nil {
		t.Fatalf("retried Advance: %v", err)
	}
	if p.State() != StateResult {
		t.Fatalf("state = %v, want result after the retried submit", p.State())
	}
}

func TestPlayerReviewFailureStaysInQuestions(t *testing.T) {
	api := threeQuestionAPI()
	p := NewPlayer(api, 1, nil)

	if err := p.Begin(context.Background()); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	api.reviewErr = errors.New("boom")
	answers := map[int64]int64{1: 11, 2: 22, 3: 33}
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		q, _, _ := p.Current()
		p.SelectOption(q.ID, answers[q.ID])
		if err := p.Advance(ctx); err != nil {
			t.Fatalf("Advance: %v", err)
		}
	}
	q, _, _ := p.Current()
	p.SelectOption(q.ID, answers[q.ID])
	if err := p.Advance(ctx); err == nil {
		t.Fatal("expected Advance to fail when the review fetch fails")
	}
	if p.State() != StateQuestions {
		t.Fatalf("state = %v, want questions", p.State())
	}
}

func TestPlayerPreviousKeepsAnswers(t *testing.T) {
	api := threeQuestionAPI()
	p := NewPlayer(api, 1, nil)

	ctx := context.Background()
	if err := p.Begin(ctx); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	p.SelectOption(1, 11)
	if err := p.Advance(ctx); err != nil {
		t.Fatalf("Advance: %v", err)
	}
	p.SelectOption(2, 22)

	if err := p.Previous(ctx); err != nil {
		t.Fatalf("Previous: %v", err)
	}
	if _, seq, _ := p.Current(); seq != 1 {
		t.Fatalf("sequence after Previous = %d, want 1", seq)
	}
	answers := p.Answers()
	if answers[1] != 11 || answers[2] != 22 {
		t.Errorf("answers = %v, stepping back must not drop recorded choices", answers)
	}

	// Previous at the first question is a no-op.
	if err := p.Previous(ctx); err != nil {
		t.Fatalf("Previous at start: %v", err)
	}
	if _, seq, _ := p.Current(); seq != 1 {
		t.Errorf("sequence = %d, want 1", seq)
	}
}

func TestPlayerSelectOverwrites(t *testing.T) {
	api := threeQuestionAPI()
	p := NewPlayer(api, 1, nil)
	if err := p.Begin(context.Background()); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	p.SelectOption(1, 99)
	p.SelectOption(1, 11)
	if got := p.Answers()[1]; got != 11 {
		t.Errorf("answer = %d, want the later selection 11", got)
	}
}

func TestPlayerBeginOnlyFromStart(t *testing.T) {
	api := threeQuestionAPI()
	p := NewPlayer(api, 1, nil)
	if err := p.Begin(context.Background()); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if err := p.Begin(context.Background()); err == nil {
		t.Fatal("Begin from the question flow should fail")
	}
}
