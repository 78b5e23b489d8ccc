package client

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"lms/internal/api/v1/dto"
	"lms/internal/model"
	"lms/internal/quiz"
)

// Client implements both quiz surfaces: authoring and taking.
var (
	_ quiz.QuizAPI    = (*Client)(nil)
	_ quiz.AttemptAPI = (*Client)(nil)
)

// Questions lists a quiz lesson's questions with correctness flags. Requires
// an admin session; used to seed an Editor.
func (c *Client) Questions(ctx context.Context, lessonID int64) ([]model.Question, error) {
	var questions []model.Question
	path := fmt.Sprintf("/v1/lessons/%d/questions", lessonID)
	err := c.do(ctx, http.MethodGet, path, nil, &questions)
	return questions, err
}

// CreateQuestion appends a validated question to a quiz lesson.
func (c *Client) CreateQuestion(ctx context.Context, lessonID int64, d quiz.QuestionDraft) (model.Question, error) {
	var question model.Question
	path := fmt.Sprintf("/v1/lessons/%d/questions", lessonID)
	err := c.do(ctx, http.MethodPost, path, d, &question)
	return question, err
}

// UpdateQuestion rewrites a question and its options.
func (c *Client) UpdateQuestion(ctx context.Context, questionID int64, d quiz.QuestionDraft) (model.Question, error) {
	var question model.Question
	err := c.do(ctx, http.MethodPut, fmt.Sprintf("/v1/questions/%d", questionID), d, &question)
	return question, err
}

// DeleteQuestion removes a question.
func (c *Client) DeleteQuestion(ctx context.Context, questionID int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/v1/questions/%d", questionID), nil, nil)
}

// ReorderQuestions submits the full dense sequence map in one call.
func (c *Client) ReorderQuestions(ctx context.Context, lessonID int64, sequences map[int64]int) error {
	req := dto.ReorderDTO{Sequences: sequences}
	path := fmt.Sprintf("/v1/lessons/%d/questions/reorder", lessonID)
	return c.do(ctx, http.MethodPost, path, req, nil)
}

// QuestionAt fetches the question at a 1-based sequence, correctness
// stripped, along with the total question count.
func (c *Client) QuestionAt(ctx context.Context, lessonID int64, seq int) (model.Question, int, error) {
	var resp dto.AttemptQuestionResponseDTO
	path := fmt.Sprintf("/v1/lessons/%d/attempt/question?seq=%d", lessonID, seq)
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return model.Question{}, 0, err
	}
	return resp.Question, resp.Total, nil
}

// Submit sends the answer map and returns the recorded attempt's id.
func (c *Client) Submit(ctx context.Context, lessonID int64, answers map[int64]int64) (int64, error) {
	var attempt model.Attempt
	req := dto.AttemptSubmitDTO{Answers: answers}
	path := fmt.Sprintf("/v1/lessons/%d/attempts", lessonID)
	if err := c.do(ctx, http.MethodPost, path, req, &attempt); err != nil {
		return 0, err
	}
	return attempt.ID, nil
}

// Review fetches the scored breakdown of an attempt.
func (c *Client) Review(ctx context.Context, attemptID int64) (*model.AttemptReview, error) {
	var review model.AttemptReview
	path := fmt.Sprintf("/v1/attempts/%d/review", attemptID)
	if err := c.do(ctx, http.MethodGet, path, nil, &review); err != nil {
		return nil, err
	}
	return &review, nil
}

// UploadLessonMedia runs the full upload flow for a video or document
// lesson: initiate for a presigned URL, PUT the content directly to storage,
// then confirm so processing is queued. Returns the lesson in its
// post-upload media state.
func (c *Client) UploadLessonMedia(ctx context.Context, lessonID int64, filename string, content io.Reader) (*model.Lesson, error) {
	var initiated dto.UploadURLResponseDTO
	initReq := dto.UploadInitiateDTO{Filename: filename}
	path := fmt.Sprintf("/v1/lessons/%d/upload", lessonID)
	if err := c.do(ctx, http.MethodPost, path, initReq, &initiated); err != nil {
		return nil, err
	}

	// The presigned URL is authenticated by its signature, not the session.
	put, err := http.NewRequestWithContext(ctx, http.MethodPut, initiated.UploadURL, content)
	if err != nil {
		return nil, fmt.Errorf("build upload request: %w", err)
	}
	resp, err := c.http.Do(put)
	if err != nil {
		return nil, fmt.Errorf("upload to storage: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &APIError{Status: resp.StatusCode, Message: string(msg)}
	}

	var lesson model.Lesson
	completePath := fmt.Sprintf("/v1/lessons/%d/upload/complete", lessonID)
	if err := c.do(ctx, http.MethodPost, completePath, nil, &lesson); err != nil {
		return nil, err
	}
	return &lesson, nil
}
