package dto

import "lms/internal/model"

// ReorderDTO carries the full dense sequence map for a quiz lesson
type ReorderDTO struct {
	Sequences map[int64]int `json:"sequences" validate:"required,min=1"`
}

// AttemptSubmitDTO carries the learner's answer map, question id to chosen
// option id
type AttemptSubmitDTO struct {
	Answers map[int64]int64 `json:"answers" validate:"required"`
}

// AttemptQuestionResponseDTO is one paged quiz question with the total count.
// Correctness flags and explanations are stripped server-side.
type AttemptQuestionResponseDTO struct {
	Question model.Question `json:"question"`
	Total    int            `json:"total"`
}
