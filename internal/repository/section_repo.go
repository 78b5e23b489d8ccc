package repository

import (
	"context"
	"database/sql"

	"lms/internal/model"
)

// SectionRepository defines the interface for interacting with section data
type SectionRepository interface {
	CreateSection(ctx context.Context, s *model.Section) error
	GetSectionByID(ctx context.Context, sectionID int64) (*model.Section, error)
	ListSectionsByCourse(ctx context.Context, courseID int64) ([]model.Section, error)
	UpdateSectionTitle(ctx context.Context, sectionID int64, title string) error
	// DeleteSection removes a section; its lessons go with it via the
	// ON DELETE CASCADE constraint.
	DeleteSection(ctx context.Context, sectionID int64) error
}

type sectionRepo struct {
	db *sql.DB
}

// NewSectionRepo creates a new SectionRepository
func NewSectionRepo(db *sql.DB) SectionRepository {
	return &sectionRepo{db: db}
}

// CreateSection inserts a new section and returns the created record
func (r *sectionRepo) CreateSection(ctx context.Context, s *model.Section) error {
	query := `
		INSERT INTO sections (course_id, title, position)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`
	return r.db.QueryRowContext(ctx, query, s.CourseID, s.Title, s.Position).
		Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
}

// GetSectionByID retrieves a section by its ID
func (r *sectionRepo) GetSectionByID(ctx context.Context, sectionID int64) (*model.Section, error) {
	query := `
		SELECT id, course_id, title, position, created_at, updated_at
		FROM sections
		WHERE id = $1
	`
	var s model.Section
	err := r.db.QueryRowContext(ctx, query, sectionID).Scan(
		&s.ID, &s.CourseID, &s.Title, &s.Position, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

// ListSectionsByCourse retrieves a course's sections in position order,
// without their lessons (those are fetched per-section on demand)
func (r *sectionRepo) ListSectionsByCourse(ctx context.Context, courseID int64) ([]model.Section, error) {
	query := `
		SELECT id, course_id, title, position, created_at, updated_at
		FROM sections
		WHERE course_id = $1
		ORDER BY position ASC, id ASC
	`
	rows, err := r.db.QueryContext(ctx, query, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sections []model.Section
	for rows.Next() {
		var s model.Section
		if err := rows.Scan(&s.ID, &s.CourseID, &s.Title, &s.Position, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		sections = append(sections, s)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	if len(sections) == 0 {
		return []model.Section{}, nil
	}
	return sections, nil
}

// UpdateSectionTitle renames a section
func (r *sectionRepo) UpdateSectionTitle(ctx context.Context, sectionID int64, title string) error {
	query := `UPDATE sections SET title = $1, updated_at = NOW() WHERE id = $2`
	_, err := r.db.ExecContext(ctx, query, title, sectionID)
	return err
}

// DeleteSection removes a section by its ID
func (r *sectionRepo) DeleteSection(ctx context.Context, sectionID int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sections WHERE id = $1`, sectionID)
	return err
}
