package model

import "time"

// Enrollment ties a learner to a course.
type Enrollment struct {
	ID         int64     `db:"id" json:"id"`
	UserID     int64     `db:"user_id" json:"user_id"`
	CourseID   int64     `db:"course_id" json:"course_id"`
	EnrolledAt time.Time `db:"enrolled_at" json:"enrolled_at"`
}

// LessonCompletion marks a lesson finished by a learner. Completing an
// already-completed lesson is a no-op at the store.
type LessonCompletion struct {
	UserID      int64     `db:"user_id" json:"user_id"`
	LessonID    int64     `db:"lesson_id" json:"lesson_id"`
	CompletedAt time.Time `db:"completed_at" json:"completed_at"`
}

// CourseProgress summarizes a learner's position in a course.
type CourseProgress struct {
	CourseID         int64   `json:"course_id"`
	CompletedLessons int     `json:"completed_lessons"`
	TotalLessons     int     `json:"total_lessons"`
	Percent          float64 `json:"percent"`
}
