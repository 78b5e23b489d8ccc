package model

import "time"

// Course publication states.
const (
	CourseDraft     = "draft"
	CoursePublished = "published"
	CourseArchived  = "archived"
)

// Course is the top-level catalog entity. Sections are loaded on demand and
// are nil unless the caller asked for the full tree.
type Course struct {
	ID           int64      `db:"id" json:"id"`
	Slug         string     `db:"slug" json:"slug"`
	Title        string     `db:"title" json:"title"`
	Instructor   string     `db:"instructor" json:"instructor"`
	Description  string     `db:"description" json:"description"`
	Price        float64    `db:"price" json:"price"`
	ThumbnailURL string     `db:"thumbnail_url" json:"thumbnail_url"`
	Status       string     `db:"status" json:"status"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
	DeletedAt    *time.Time `db:"deleted_at" json:"-"`

	Sections []Section `json:"sections,omitempty"`
}

// Section groups lessons inside a course. Position is 1-based and defines
// the navigation order.
type Section struct {
	ID        int64     `db:"id" json:"id"`
	CourseID  int64     `db:"course_id" json:"course_id"`
	Title     string    `db:"title" json:"title"`
	Position  int       `db:"position" json:"position"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`

	Lessons []Lesson `json:"lessons,omitempty"`
}

// CourseFilter narrows course listings.
type CourseFilter struct {
	Search string
	Status string
	Limit  int
	Offset int
}
