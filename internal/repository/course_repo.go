package repository

import (
	"context"
	"database/sql"

	"lms/internal/model"

	"github.com/rs/zerolog"
)

// CourseRepository defines the interface for interacting with course data.
// Soft-deleted courses are invisible to every query here.
type CourseRepository interface {
	CreateCourse(ctx context.Context, c *model.Course) error
	GetCourseByID(ctx context.Context, courseID int64) (*model.Course, error)
	GetCourseBySlug(ctx context.Context, slug string) (*model.Course, error)
	ListCourses(ctx context.Context, f model.CourseFilter) ([]model.Course, int, error)
	UpdateCourse(ctx context.Context, c *model.Course) error
	UpdateThumbnail(ctx context.Context, courseID int64, url string) error
	SoftDeleteCourse(ctx context.Context, courseID int64) error
	SlugExists(ctx context.Context, slug string) (bool, error)
}

type courseRepo struct {
	db     *sql.DB
	logger zerolog.Logger
}

// NewCourseRepo creates a new CourseRepository
func NewCourseRepo(db *sql.DB, logger zerolog.Logger) CourseRepository {
	return &courseRepo{db: db, logger: logger}
}

const courseColumns = `id, slug, title, instructor, description, price, thumbnail_url, status, created_at, updated_at`

func scanCourse(row interface{ Scan(...any) error }, c *model.Course) error {
	return row.Scan(
		&c.ID, &c.Slug, &c.Title, &c.Instructor, &c.Description,
		&c.Price, &c.ThumbnailURL, &c.Status, &c.CreatedAt, &c.UpdatedAt,
	)
}

// CreateCourse inserts a new course and returns the created record
func (r *courseRepo) CreateCourse(ctx context.Context, c *model.Course) error {
	query := `
		INSERT INTO courses (slug, title, instructor, description, price, thumbnail_url, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`
	return r.db.QueryRowContext(ctx, query,
		c.Slug, c.Title, c.Instructor, c.Description, c.Price, c.ThumbnailURL, c.Status,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
}

// GetCourseByID retrieves a course by its ID
func (r *courseRepo) GetCourseByID(ctx context.Context, courseID int64) (*model.Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses WHERE id = $1 AND deleted_at IS NULL`
	var c model.Course
	err := scanCourse(r.db.QueryRowContext(ctx, query, courseID), &c)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

// GetCourseBySlug retrieves a course by its catalog slug
func (r *courseRepo) GetCourseBySlug(ctx context.Context, slug string) (*model.Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses WHERE slug = $1 AND deleted_at IS NULL`
	var c model.Course
	err := scanCourse(r.db.QueryRowContext(ctx, query, slug), &c)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

// ListCourses retrieves a filtered page of courses plus the total match count
func (r *courseRepo) ListCourses(ctx context.Context, f model.CourseFilter) ([]model.Course, int, error) {
	query := `
		SELECT ` + courseColumns + `, COUNT(*) OVER() AS total
		FROM courses
		WHERE deleted_at IS NULL
		  AND ($1 = '' OR title ILIKE '%' || $1 || '%' OR instructor ILIKE '%' || $1 || '%')
		  AND ($2 = '' OR status = $2)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`
	rows, err := r.db.QueryContext(ctx, query, f.Search, f.Status, f.Limit, f.Offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var courses []model.Course
	total := 0
	for rows.Next() {
		var c model.Course
		if err := rows.Scan(
			&c.ID, &c.Slug, &c.Title, &c.Instructor, &c.Description,
			&c.Price, &c.ThumbnailURL, &c.Status, &c.CreatedAt, &c.UpdatedAt,
			&total,
		); err != nil {
			return nil, 0, err
		}
		courses = append(courses, c)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, err
	}

	// If no courses found, return an empty slice, not nil
	if len(courses) == 0 {
		return []model.Course{}, 0, nil
	}
	return courses, total, nil
}

// UpdateCourse updates the scalar fields of a course
func (r *courseRepo) UpdateCourse(ctx context.Context, c *model.Course) error {
	query := `
		UPDATE courses
		SET title = $1, instructor = $2, description = $3, price = $4, status = $5, updated_at = NOW()
		WHERE id = $6 AND deleted_at IS NULL
		RETURNING slug, thumbnail_url, created_at, updated_at
	`
	return r.db.QueryRowContext(ctx, query,
		c.Title, c.Instructor, c.Description, c.Price, c.Status, c.ID,
	).Scan(&c.Slug, &c.ThumbnailURL, &c.CreatedAt, &c.UpdatedAt)
}

// UpdateThumbnail stores the URL of a freshly uploaded thumbnail
func (r *courseRepo) UpdateThumbnail(ctx context.Context, courseID int64, url string) error {
	query := `UPDATE courses SET thumbnail_url = $1, updated_at = NOW() WHERE id = $2 AND deleted_at IS NULL`
	_, err := r.db.ExecContext(ctx, query, url, courseID)
	return err
}

// SoftDeleteCourse marks a course deleted without removing rows
func (r *courseRepo) SoftDeleteCourse(ctx context.Context, courseID int64) error {
	query := `UPDATE courses SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL`
	_, err := r.db.ExecContext(ctx, query, courseID)
	return err
}

// SlugExists reports whether a slug is already taken, including by
// soft-deleted courses so their URLs are never reused.
func (r *courseRepo) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM courses WHERE slug = $1)`, slug,
	).Scan(&exists)
	return exists, err
}
