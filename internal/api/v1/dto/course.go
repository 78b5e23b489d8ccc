package dto

import "lms/internal/model"

// CourseCreateDTO is used for incoming course creation requests
type CourseCreateDTO struct {
	Title       string  `json:"title" validate:"required"`
	Instructor  string  `json:"instructor" validate:"required"`
	Description string  `json:"description"`
	Price       float64 `json:"price" validate:"gte=0"`
	Status      string  `json:"status" validate:"omitempty,oneof=draft published archived"`
}

// CourseUpdateDTO is used for incoming course update requests. Nil fields are
// left unchanged. The same fields arrive as form values when the update is a
// multipart request carrying a thumbnail file.
type CourseUpdateDTO struct {
	Title       *string  `json:"title,omitempty"`
	Instructor  *string  `json:"instructor,omitempty"`
	Description *string  `json:"description,omitempty"`
	Price       *float64 `json:"price,omitempty" validate:"omitempty,gte=0"`
	Status      *string  `json:"status,omitempty" validate:"omitempty,oneof=draft published archived"`
}

// CourseListResponseDTO is the paginated catalog response
type CourseListResponseDTO struct {
	Courses []model.Course `json:"courses"`
	Total   int            `json:"total"`
	Page    int            `json:"page"`
	Limit   int            `json:"limit"`
}

// SectionCreateDTO is used for incoming section creation requests
type SectionCreateDTO struct {
	Title    string `json:"title" validate:"required"`
	Position int    `json:"position" validate:"gte=0"`
}

// SectionUpdateDTO is used for incoming section rename requests
type SectionUpdateDTO struct {
	Title string `json:"title" validate:"required"`
}
