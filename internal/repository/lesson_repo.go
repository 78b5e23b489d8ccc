package repository

import (
	"context"
	"database/sql"

	"lms/internal/model"

	"github.com/rs/zerolog"
)

// LessonRepository defines the interface for interacting with lesson data
type LessonRepository interface {
	CreateLesson(ctx context.Context, l *model.Lesson) error
	GetLessonByID(ctx context.Context, lessonID int64) (*model.Lesson, error)
	ListLessonsBySection(ctx context.Context, sectionID int64) ([]model.Lesson, error)
	// ListLessonsByCourse walks the whole curriculum in section-then-lesson
	// order; used for progress and unlock computation.
	ListLessonsByCourse(ctx context.Context, courseID int64) ([]model.Lesson, error)
	UpdateLesson(ctx context.Context, l *model.Lesson) error
	UpdateMedia(ctx context.Context, lessonID int64, contentPath, status string) error
	DeleteLesson(ctx context.Context, lessonID int64) error
	CountLessonsByCourse(ctx context.Context, courseID int64) (int, error)
}

type lessonRepo struct {
	db     *sql.DB
	logger zerolog.Logger
}

// NewLessonRepo creates a new LessonRepository
func NewLessonRepo(db *sql.DB, logger zerolog.Logger) LessonRepository {
	return &lessonRepo{db: db, logger: logger}
}

const lessonColumns = `id, section_id, title, position, type, content_source,
	content_url, content_path, content_text, passing_grade, duration_min,
	evaluation_description, media_status, created_at, updated_at`

func scanLesson(row interface{ Scan(...any) error }, l *model.Lesson) error {
	return row.Scan(
		&l.ID, &l.SectionID, &l.Title, &l.Position, &l.Type, &l.ContentSource,
		&l.ContentURL, &l.ContentPath, &l.ContentText, &l.PassingGrade,
		&l.DurationMin, &l.EvaluationDesc, &l.MediaStatus, &l.CreatedAt, &l.UpdatedAt,
	)
}

// CreateLesson inserts a new lesson and returns the created record
func (r *lessonRepo) CreateLesson(ctx context.Context, l *model.Lesson) error {
	query := `
		INSERT INTO lessons (section_id, title, position, type, content_source,
			content_url, content_path, content_text, passing_grade, duration_min,
			evaluation_description, media_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at, updated_at
	`
	return r.db.QueryRowContext(ctx, query,
		l.SectionID, l.Title, l.Position, l.Type, l.ContentSource,
		l.ContentURL, l.ContentPath, l.ContentText, l.PassingGrade,
		l.DurationMin, l.EvaluationDesc, l.MediaStatus,
	).Scan(&l.ID, &l.CreatedAt, &l.UpdatedAt)
}

// GetLessonByID retrieves a lesson by its ID
func (r *lessonRepo) GetLessonByID(ctx context.Context, lessonID int64) (*model.Lesson, error) {
	query := `SELECT ` + lessonColumns + ` FROM lessons WHERE id = $1`
	var l model.Lesson
	err := scanLesson(r.db.QueryRowContext(ctx, query, lessonID), &l)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &l, nil
}

// ListLessonsBySection retrieves a section's lessons in position order
func (r *lessonRepo) ListLessonsBySection(ctx context.Context, sectionID int64) ([]model.Lesson, error) {
	query := `SELECT ` + lessonColumns + ` FROM lessons WHERE section_id = $1 ORDER BY position ASC, id ASC`
	return r.queryLessons(ctx, query, sectionID)
}

// ListLessonsByCourse retrieves every lesson of a course in curriculum walk
// order
func (r *lessonRepo) ListLessonsByCourse(ctx context.Context, courseID int64) ([]model.Lesson, error) {
	query := `
		SELECT l.id, l.section_id, l.title, l.position, l.type, l.content_source,
			l.content_url, l.content_path, l.content_text, l.passing_grade, l.duration_min,
			l.evaluation_description, l.media_status, l.created_at, l.updated_at
		FROM lessons l
		JOIN sections s ON s.id = l.section_id
		WHERE s.course_id = $1
		ORDER BY s.position ASC, s.id ASC, l.position ASC, l.id ASC
	`
	return r.queryLessons(ctx, query, courseID)
}

func (r *lessonRepo) queryLessons(ctx context.Context, query string, arg any) ([]model.Lesson, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lessons []model.Lesson
	for rows.Next() {
		var l model.Lesson
		if err := scanLesson(rows, &l); err != nil {
			return nil, err
		}
		lessons = append(lessons, l)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	if len(lessons) == 0 {
		return []model.Lesson{}, nil
	}
	return lessons, nil
}

// UpdateLesson updates an existing lesson record
func (r *lessonRepo) UpdateLesson(ctx context.Context, l *model.Lesson) error {
	query := `
		UPDATE lessons
		SET title = $1, position = $2, type = $3, content_source = $4,
			content_url = $5, content_path = $6, content_text = $7,
			passing_grade = $8, duration_min = $9, evaluation_description = $10,
			updated_at = NOW()
		WHERE id = $11
		RETURNING section_id, media_status, created_at, updated_at
	`
	return r.db.QueryRowContext(ctx, query,
		l.Title, l.Position, l.Type, l.ContentSource,
		l.ContentURL, l.ContentPath, l.ContentText,
		l.PassingGrade, l.DurationMin, l.EvaluationDesc, l.ID,
	).Scan(&l.SectionID, &l.MediaStatus, &l.CreatedAt, &l.UpdatedAt)
}

// UpdateMedia stores the storage path and media state of an uploaded lesson
func (r *lessonRepo) UpdateMedia(ctx context.Context, lessonID int64, contentPath, status string) error {
	query := `
		UPDATE lessons
		SET content_path = $1, media_status = $2, updated_at = NOW()
		WHERE id = $3
	`
	_, err := r.db.ExecContext(ctx, query, contentPath, status, lessonID)
	return err
}

// DeleteLesson removes a lesson by its ID
func (r *lessonRepo) DeleteLesson(ctx context.Context, lessonID int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM lessons WHERE id = $1`, lessonID)
	return err
}

// CountLessonsByCourse returns the total lesson count of a course
func (r *lessonRepo) CountLessonsByCourse(ctx context.Context, courseID int64) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM lessons l
		JOIN sections s ON s.id = l.section_id
		WHERE s.course_id = $1
	`
	var n int
	err := r.db.QueryRowContext(ctx, query, courseID).Scan(&n)
	return n, err
}
