package repository

import (
	"context"
	"database/sql"

	"lms/internal/model"
)

// EnrollmentRepository defines the interface for interacting with
// enrollments and per-lesson completion
type EnrollmentRepository interface {
	CreateEnrollment(ctx context.Context, e *model.Enrollment) error
	IsEnrolled(ctx context.Context, userID, courseID int64) (bool, error)
	ListEnrollmentsByUser(ctx context.Context, userID int64) ([]model.Enrollment, error)
	// CompleteLesson records a completion; completing twice is a no-op.
	CompleteLesson(ctx context.Context, userID, lessonID int64) error
	ListCompletedLessonIDs(ctx context.Context, userID, courseID int64) ([]int64, error)
}

type enrollmentRepo struct {
	db *sql.DB
}

// NewEnrollmentRepo creates a new EnrollmentRepository
func NewEnrollmentRepo(db *sql.DB) EnrollmentRepository {
	return &enrollmentRepo{db: db}
}

// CreateEnrollment inserts an enrollment; enrolling twice is a no-op that
// returns the existing record's timestamps untouched
func (r *enrollmentRepo) CreateEnrollment(ctx context.Context, e *model.Enrollment) error {
	query := `
		INSERT INTO enrollments (user_id, course_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, course_id) DO UPDATE SET user_id = EXCLUDED.user_id
		RETURNING id, enrolled_at
	`
	return r.db.QueryRowContext(ctx, query, e.UserID, e.CourseID).
		Scan(&e.ID, &e.EnrolledAt)
}

// IsEnrolled reports whether a learner is enrolled in a course
func (r *enrollmentRepo) IsEnrolled(ctx context.Context, userID, courseID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM enrollments WHERE user_id = $1 AND course_id = $2)`,
		userID, courseID,
	).Scan(&exists)
	return exists, err
}

// ListEnrollmentsByUser retrieves a learner's enrollments, newest first
func (r *enrollmentRepo) ListEnrollmentsByUser(ctx context.Context, userID int64) ([]model.Enrollment, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, course_id, enrolled_at
		FROM enrollments
		WHERE user_id = $1
		ORDER BY enrolled_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var enrollments []model.Enrollment
	for rows.Next() {
		var e model.Enrollment
		if err := rows.Scan(&e.ID, &e.UserID, &e.CourseID, &e.EnrolledAt); err != nil {
			return nil, err
		}
		enrollments = append(enrollments, e)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	if len(enrollments) == 0 {
		return []model.Enrollment{}, nil
	}
	return enrollments, nil
}

// CompleteLesson upserts a completion row
func (r *enrollmentRepo) CompleteLesson(ctx context.Context, userID, lessonID int64) error {
	query := `
		INSERT INTO lesson_completions (user_id, lesson_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, lesson_id) DO NOTHING
	`
	_, err := r.db.ExecContext(ctx, query, userID, lessonID)
	return err
}

// ListCompletedLessonIDs retrieves the ids of a learner's completed lessons
// within one course
func (r *enrollmentRepo) ListCompletedLessonIDs(ctx context.Context, userID, courseID int64) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT lc.lesson_id
		FROM lesson_completions lc
		JOIN lessons l ON l.id = lc.lesson_id
		JOIN sections s ON s.id = l.section_id
		WHERE lc.user_id = $1 AND s.course_id = $2
	`, userID, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []int64{}, nil
	}
	return ids, nil
}
