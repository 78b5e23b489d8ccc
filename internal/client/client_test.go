package client

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"lms/internal/curriculum"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginArmsSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/auth/login", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Empty(t, r.Header.Get("Authorization"), "login must not carry a stale token")
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"token":"signed.jwt.token","user":{"id":1,"email":"amy@example.com"}}`)
	}))
	defer srv.Close()

	session := NewSession()
	c := New(srv.URL, nil, session)

	user, err := c.Login(context.Background(), "amy@example.com", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, int64(1), user.ID)
	assert.True(t, session.Active())
	assert.Equal(t, "signed.jwt.token", session.Token())

	c.Logout()
	assert.False(t, session.Active())
}

func TestBearerHeaderAttached(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `[]`)
	}))
	defer srv.Close()

	session := NewSession()
	session.SetToken("abc123")
	c := New(srv.URL, nil, session)

	_, err := c.MyCourses(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer abc123", gotAuth)
}

func TestCoursesEscapesSearchQuery(t *testing.T) {
	var gotSearch, gotPage string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSearch = r.URL.Query().Get("search")
		gotPage = r.URL.Query().Get("page")
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"courses":[],"total":0,"page":1,"limit":20}`)
	}))
	defer srv.Close()

	c := New(srv.URL, nil, NewSession())
	_, err := c.Courses(context.Background(), "go & tdd #2", 1, 20)
	require.NoError(t, err)
	assert.Equal(t, "go & tdd #2", gotSearch, "reserved characters must survive the round trip")
	assert.Equal(t, "1", gotPage)
}

func TestAPIErrorFromPlainTextBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "Course not found", http.StatusNotFound)
	}))
	defer srv.Close()

	c := New(srv.URL, nil, NewSession())
	_, err := c.Course(context.Background(), "missing-slug")
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr), "err = %v, want *APIError", err)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, "Course not found", apiErr.Message)
}

func TestUpdateCourseJSONWithoutThumbnail(t *testing.T) {
	var contentType, body string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		require.Equal(t, "/v1/courses/7", r.URL.Path)
		contentType = r.Header.Get("Content-Type")
		data, _ := io.ReadAll(r.Body)
		body = string(data)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := New(srv.URL, nil, NewSession())
	err := c.UpdateCourse(context.Background(), 7, curriculum.CourseUpdate{
		Title:      "Go from scratch",
		Instructor: "R. Pike",
		Price:      49.99,
	})
	require.NoError(t, err)
	assert.Equal(t, "application/json", contentType)
	assert.Contains(t, body, `"title":"Go from scratch"`)
}

func TestUpdateCourseMultipartWithThumbnail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(32<<20))
		assert.Equal(t, "Go from scratch", r.FormValue("title"))
		assert.Equal(t, "49.99", r.FormValue("price"))

		file, header, err := r.FormFile("thumbnail")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "cover.png", header.Filename)
		data, _ := io.ReadAll(file)
		assert.Equal(t, "png-bytes", string(data))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := New(srv.URL, nil, NewSession())
	err := c.UpdateCourse(context.Background(), 7, curriculum.CourseUpdate{
		Title: "Go from scratch",
		Price: 49.99,
		Thumbnail: &curriculum.Upload{
			Filename: "cover.png",
			Content:  strings.NewReader("png-bytes"),
		},
	})
	require.NoError(t, err)
}
