// Package client is the HTTP implementation of the API surfaces the
// curriculum and quiz state machines drive. It speaks the /v1 REST contract;
// timeouts and transport behavior belong to the injected http.Client, and no
// retries are attempted.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"lms/internal/api/v1/dto"
	"lms/internal/model"
)

// APIError is a non-2xx response from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// Client calls the LMS API on behalf of one session.
type Client struct {
	baseURL string
	http    *http.Client
	session *Session
}

// New creates a Client. httpClient may be nil, in which case
// http.DefaultClient is used.
func New(baseURL string, httpClient *http.Client, session *Session) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    httpClient,
		session: session,
	}
}

// do issues a JSON request and decodes the response into out when out is
// non-nil. Non-2xx responses are returned as *APIError with the plain-text
// body as the message.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req, out)
}

// send attaches the bearer token, executes the request and decodes the
// response.
func (c *Client) send(req *http.Request, out any) error {
	if c.session != nil && c.session.Active() {
		req.Header.Set("Authorization", "Bearer "+c.session.Token())
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{Status: resp.StatusCode, Message: strings.TrimSpace(string(msg))}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Register creates a learner account.
func (c *Client) Register(ctx context.Context, name, email, password string) (dto.UserResponseDTO, error) {
	var user dto.UserResponseDTO
	req := dto.RegisterDTO{Name: name, Email: email, Password: password}
	err := c.do(ctx, http.MethodPost, "/v1/auth/register", req, &user)
	return user, err
}

// Login verifies credentials and arms the session with the returned token.
func (c *Client) Login(ctx context.Context, email, password string) (dto.UserResponseDTO, error) {
	var resp dto.AuthResponseDTO
	req := dto.LoginDTO{Email: email, Password: password}
	if err := c.do(ctx, http.MethodPost, "/v1/auth/login", req, &resp); err != nil {
		return dto.UserResponseDTO{}, err
	}
	c.session.SetToken(resp.Token)
	return resp.User, nil
}

// Logout tears the session down. Purely client-side; tokens are stateless.
func (c *Client) Logout() {
	c.session.Clear()
}

// Courses fetches one catalog page.
func (c *Client) Courses(ctx context.Context, search string, page, limit int) (dto.CourseListResponseDTO, error) {
	var resp dto.CourseListResponseDTO
	q := url.Values{}
	if search != "" {
		q.Set("search", search)
	}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))
	err := c.do(ctx, http.MethodGet, "/v1/courses?"+q.Encode(), nil, &resp)
	return resp, err
}

// Course fetches a course by id or slug. Admin sessions receive the full
// tree; enrolled learner sessions receive completion and lock flags.
func (c *Client) Course(ctx context.Context, idOrSlug string) (*model.Course, error) {
	var course model.Course
	if err := c.do(ctx, http.MethodGet, "/v1/courses/"+idOrSlug, nil, &course); err != nil {
		return nil, err
	}
	return &course, nil
}

// Enroll enrolls the session user in a course.
func (c *Client) Enroll(ctx context.Context, courseID int64) (*model.Enrollment, error) {
	var enrollment model.Enrollment
	path := fmt.Sprintf("/v1/courses/%d/enroll", courseID)
	if err := c.do(ctx, http.MethodPost, path, nil, &enrollment); err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// MyCourses lists the session user's enrollments with progress.
func (c *Client) MyCourses(ctx context.Context) ([]model.CourseProgress, error) {
	var progress []model.CourseProgress
	err := c.do(ctx, http.MethodGet, "/v1/me/courses", nil, &progress)
	return progress, err
}

// CompleteLesson marks a lesson finished for the session user.
func (c *Client) CompleteLesson(ctx context.Context, lessonID int64) error {
	path := fmt.Sprintf("/v1/lessons/%d/complete", lessonID)
	return c.do(ctx, http.MethodPost, path, nil, nil)
}

// PlaybackURL fetches a presigned GET URL for uploaded lesson content.
func (c *Client) PlaybackURL(ctx context.Context, lessonID int64) (string, error) {
	var resp dto.UploadURLResponseDTO
	path := fmt.Sprintf("/v1/lessons/%d/playback", lessonID)
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return "", err
	}
	return resp.UploadURL, nil
}
