package model

import "time"

// Question belongs to a quiz-type lesson. Sequence is 1-based, unique and
// dense within the lesson.
type Question struct {
	ID          int64     `db:"id" json:"id"`
	LessonID    int64     `db:"lesson_id" json:"lesson_id"`
	Prompt      string    `db:"prompt" json:"prompt"`
	Points      int       `db:"points" json:"points"`
	Sequence    int       `db:"sequence" json:"sequence"`
	Explanation string    `db:"explanation" json:"explanation,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`

	Options []Option `json:"options"`
}

// Option is one answer choice of a question.
type Option struct {
	ID         int64  `db:"id" json:"id"`
	QuestionID int64  `db:"question_id" json:"question_id"`
	Body       string `db:"body" json:"body"`
	IsCorrect  bool   `db:"is_correct" json:"is_correct"`
}

// Attempt is one learner submission of a quiz, scored once server-side.
type Attempt struct {
	ID        int64     `db:"id" json:"id"`
	LessonID  int64     `db:"lesson_id" json:"lesson_id"`
	UserID    int64     `db:"user_id" json:"user_id"`
	Score     float64   `db:"score" json:"score"`
	Passed    bool      `db:"passed" json:"passed"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// AttemptAnswer records the option a learner chose for one question.
type AttemptAnswer struct {
	AttemptID  int64 `db:"attempt_id" json:"attempt_id"`
	QuestionID int64 `db:"question_id" json:"question_id"`
	OptionID   int64 `db:"option_id" json:"option_id"`
}

// AttemptReview is the scored breakdown read back for the review screen.
type AttemptReview struct {
	AttemptID    int64          `json:"attempt_id"`
	LessonID     int64          `json:"lesson_id"`
	Score        float64        `json:"score"`
	PassingGrade float64        `json:"passing_grade"`
	Passed       bool           `json:"passed"`
	Questions    []ReviewDetail `json:"questions"`
}

// ReviewDetail is the per-question outcome inside an AttemptReview. The
// correct answer text is only revealed when the learner was wrong.
type ReviewDetail struct {
	QuestionID  int64  `json:"question_id"`
	Prompt      string `json:"prompt"`
	ChosenText  string `json:"chosen_text"`
	Correct     bool   `json:"correct"`
	CorrectText string `json:"correct_text,omitempty"`
	Explanation string `json:"explanation,omitempty"`
}
