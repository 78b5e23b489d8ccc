package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"lms/internal/model"
	"lms/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAuthService struct {
	registered *model.User
}

func (s *stubAuthService) Register(_ context.Context, name, email, _ string) (*model.User, error) {
	if email == "taken@example.com" {
		return nil, service.ErrEmailTaken
	}
	s.registered = &model.User{
		ID:        1,
		Name:      name,
		Email:     email,
		Role:      model.RoleLearner,
		CreatedAt: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
	}
	return s.registered, nil
}

func (s *stubAuthService) Login(_ context.Context, email, password string) (string, *model.User, error) {
	if email != "amy@example.com" || password != "correct-horse" {
		return "", nil, service.ErrInvalidCredentials
	}
	return "signed.jwt.token", &model.User{ID: 1, Email: email, Role: model.RoleLearner}, nil
}

func authTestMux() (*http.ServeMux, *stubAuthService) {
	svc := &stubAuthService{}
	h := NewAuthHandler(svc, validator.New(validator.WithRequiredStructEnabled()))
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)
	return mux, svc
}

func TestRegister(t *testing.T) {
	mux, svc := authTestMux()

	body := `{"name":"Amy","email":"amy@example.com","password":"correct-horse"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), `"email":"amy@example.com"`)
	assert.NotContains(t, rec.Body.String(), "password", "response must not echo credentials")
	require.NotNil(t, svc.registered)
	assert.Equal(t, model.RoleLearner, svc.registered.Role)
}

func TestRegisterValidation(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"malformed json", `{"name":`},
		{"missing email", `{"name":"Amy","password":"correct-horse"}`},
		{"bad email", `{"name":"Amy","email":"not-an-email","password":"correct-horse"}`},
		{"short password", `{"name":"Amy","email":"amy@example.com","password":"short"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mux, _ := authTestMux()
			req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(tc.body))
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		})
	}
}

func TestRegisterEmailTaken(t *testing.T) {
	mux, _ := authTestMux()

	body := `{"name":"Amy","email":"taken@example.com","password":"correct-horse"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestRegisterMethodNotAllowed(t *testing.T) {
	mux, _ := authTestMux()

	req := httptest.NewRequest(http.MethodGet, "/auth/register", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestLogin(t *testing.T) {
	mux, _ := authTestMux()

	body := `{"email":"amy@example.com","password":"correct-horse"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"token":"signed.jwt.token"`)
}

func TestLoginBadCredentials(t *testing.T) {
	mux, _ := authTestMux()

	body := `{"email":"amy@example.com","password":"wrong"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
