package handler

import (
	"encoding/json"
	"net/http"

	"lms/internal/middleware"
	"lms/internal/service"
)

// EnrollmentHandler handles the caller-scoped enrollment endpoints
type EnrollmentHandler struct {
	enrollmentService service.EnrollmentService
}

// NewEnrollmentHandler creates a new EnrollmentHandler
func NewEnrollmentHandler(enrollmentService service.EnrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{enrollmentService: enrollmentService}
}

// RegisterRoutes mounts enrollment routes
func (h *EnrollmentHandler) RegisterRoutes(mux *http.ServeMux, authMw func(http.Handler) http.Handler) {
	mux.Handle("/me/courses", authMw(http.HandlerFunc(h.myCourses)))
}

// myCourses godoc
// @Summary List my courses
// @Description Returns the caller's enrollments with completion percentages.
// @Tags enrollments
// @Produce json
// @Success 200 {array} model.CourseProgress
// @Failure 401 {string} string "Unauthorized: User ID not found in context"
// @Failure 500 {string} string "Failed to list enrollments"
// @Router /me/courses [get]
func (h *EnrollmentHandler) myCourses(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	userID, ok := middleware.UserID(r)
	if !ok {
		http.Error(w, "Unauthorized: User ID not found in context", http.StatusUnauthorized)
		return
	}
	progress, err := h.enrollmentService.MyCourses(r.Context(), userID)
	if err != nil {
		http.Error(w, "Failed to list enrollments: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(progress)
}
