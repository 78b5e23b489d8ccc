package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"lms/internal/api/v1/dto"
	"lms/internal/curriculum"
	"lms/internal/model"
)

// Client implements the reconciler's remote surface.
var _ curriculum.CurriculumAPI = (*Client)(nil)

// UpdateCourse pushes the course scalar fields. When a thumbnail upload is
// staged the request goes out as multipart form data with the image attached;
// otherwise it is a plain JSON PUT.
func (c *Client) UpdateCourse(ctx context.Context, courseID int64, u curriculum.CourseUpdate) error {
	path := fmt.Sprintf("/v1/courses/%d", courseID)
	if u.Thumbnail == nil {
		req := dto.CourseUpdateDTO{
			Title:       &u.Title,
			Instructor:  &u.Instructor,
			Description: &u.Description,
			Price:       &u.Price,
		}
		return c.do(ctx, http.MethodPut, path, req, nil)
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fields := map[string]string{
		"title":       u.Title,
		"instructor":  u.Instructor,
		"description": u.Description,
		"price":       strconv.FormatFloat(u.Price, 'f', -1, 64),
	}
	for name, value := range fields {
		if err := mw.WriteField(name, value); err != nil {
			return fmt.Errorf("write form field %s: %w", name, err)
		}
	}
	part, err := mw.CreateFormFile("thumbnail", u.Thumbnail.Filename)
	if err != nil {
		return fmt.Errorf("create thumbnail part: %w", err)
	}
	if _, err := io.Copy(part, u.Thumbnail.Content); err != nil {
		return fmt.Errorf("copy thumbnail: %w", err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.baseURL+path, &buf)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return c.send(req, nil)
}

// DeleteLesson removes a lesson.
func (c *Client) DeleteLesson(ctx context.Context, lessonID int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/v1/lessons/%d", lessonID), nil, nil)
}

// DeleteSection removes a section and its lessons.
func (c *Client) DeleteSection(ctx context.Context, sectionID int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/v1/sections/%d", sectionID), nil, nil)
}

// CreateSection appends a section and returns its server-assigned id.
func (c *Client) CreateSection(ctx context.Context, courseID int64, title string, position int) (int64, error) {
	var section model.Section
	req := dto.SectionCreateDTO{Title: title, Position: position}
	path := fmt.Sprintf("/v1/courses/%d/sections", courseID)
	if err := c.do(ctx, http.MethodPost, path, req, &section); err != nil {
		return 0, err
	}
	return section.ID, nil
}

// UpdateSectionTitle renames a section.
func (c *Client) UpdateSectionTitle(ctx context.Context, sectionID int64, title string) error {
	req := dto.SectionUpdateDTO{Title: title}
	return c.do(ctx, http.MethodPatch, fmt.Sprintf("/v1/sections/%d", sectionID), req, nil)
}

// CreateLesson appends a lesson and returns its server-assigned id.
func (c *Client) CreateLesson(ctx context.Context, sectionID int64, p curriculum.LessonPayload) (int64, error) {
	var lesson model.Lesson
	path := fmt.Sprintf("/v1/sections/%d/lessons", sectionID)
	if err := c.do(ctx, http.MethodPost, path, p, &lesson); err != nil {
		return 0, err
	}
	return lesson.ID, nil
}

// UpdateLesson replaces a lesson's fields.
func (c *Client) UpdateLesson(ctx context.Context, lessonID int64, p curriculum.LessonPayload) error {
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/v1/lessons/%d", lessonID), p, nil)
}
