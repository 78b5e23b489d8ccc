package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"lms/internal/api/v1/dto"
	"lms/internal/middleware"
	"lms/internal/model"
	"lms/internal/service"

	"github.com/go-playground/validator/v10"
)

// Catalog page size bounds. The service clamps to the same range.
const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// CourseHandler handles course catalog endpoints and the course-scoped
// subresources (sections, enrollment)
type CourseHandler struct {
	courseService     service.CourseService
	sectionService    service.SectionService
	enrollmentService service.EnrollmentService
	validate          *validator.Validate
}

// NewCourseHandler creates a new CourseHandler
func NewCourseHandler(
	courseService service.CourseService,
	sectionService service.SectionService,
	enrollmentService service.EnrollmentService,
	validate *validator.Validate,
) *CourseHandler {
	return &CourseHandler{
		courseService:     courseService,
		sectionService:    sectionService,
		enrollmentService: enrollmentService,
		validate:          validate,
	}
}

// RegisterRoutes mounts course routes
func (h *CourseHandler) RegisterRoutes(mux *http.ServeMux, authMw func(http.Handler) http.Handler) {
	mux.Handle("/courses", authMw(http.HandlerFunc(h.handleCourses)))
	mux.Handle("/courses/", authMw(http.HandlerFunc(h.handleCourse)))
}

func (h *CourseHandler) handleCourses(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listCourses(w, r)
	case http.MethodPost:
		h.createCourse(w, r)
	default:
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
	}
}

func (h *CourseHandler) handleCourse(w http.ResponseWriter, r *http.Request) {
	seg, rest := shiftPath(strings.TrimPrefix(r.URL.Path, "/courses/"))
	switch rest {
	case "":
		switch r.Method {
		case http.MethodGet:
			h.getCourse(w, r, seg)
		case http.MethodPut:
			h.updateCourse(w, r, seg)
		case http.MethodDelete:
			h.deleteCourse(w, r, seg)
		default:
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		}
	case "sections":
		h.createSection(w, r, seg)
	case "enroll":
		h.enroll(w, r, seg)
	default:
		http.NotFound(w, r)
	}
}

// listCourses godoc
// @Summary List courses
// @Description Returns a paginated catalog page. Learners only see published
// @Description courses; admins may filter by status.
// @Tags courses
// @Produce json
// @Param search query string false "Search text matched against title and instructor"
// @Param status query string false "Publication status filter (admin only)"
// @Param page query int false "Page number, 1-based"
// @Param limit query int false "Page size"
// @Success 200 {object} dto.CourseListResponseDTO
// @Failure 500 {string} string "Failed to list courses"
// @Router /courses [get]
func (h *CourseHandler) listCourses(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	// The effective limit must be fixed here so the offset is computed from
	// the same value the repository pages with.
	limit, _ := strconv.Atoi(q.Get("limit"))
	if limit < 1 || limit > maxPageLimit {
		limit = defaultPageLimit
	}

	filter := model.CourseFilter{
		Search: q.Get("search"),
		Status: q.Get("status"),
		Limit:  limit,
		Offset: (page - 1) * limit,
	}
	if middleware.Role(r) != model.RoleAdmin {
		filter.Status = model.CoursePublished
	}
	courses, total, err := h.courseService.ListCourses(r.Context(), filter)
	if err != nil {
		http.Error(w, "Failed to list courses: "+err.Error(), http.StatusInternalServerError)
		return
	}
	resp := dto.CourseListResponseDTO{Courses: courses, Total: total, Page: page, Limit: limit}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// createCourse godoc
// @Summary Create a course
// @Description Creates a draft course with a slug derived from the title.
// @Tags courses
// @Accept json
// @Produce json
// @Param course body dto.CourseCreateDTO true "Course creation request"
// @Success 201 {object} model.Course
// @Failure 400 {string} string "Invalid JSON payload or validation failed"
// @Failure 403 {string} string "Forbidden: admin role required"
// @Failure 500 {string} string "Failed to create course"
// @Router /courses [post]
func (h *CourseHandler) createCourse(w http.ResponseWriter, r *http.Request) {
	if middleware.Role(r) != model.RoleAdmin {
		http.Error(w, "Forbidden: admin role required", http.StatusForbidden)
		return
	}
	var req dto.CourseCreateDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON payload: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		http.Error(w, "Validation failed: "+err.Error(), http.StatusBadRequest)
		return
	}
	course := &model.Course{
		Title:       req.Title,
		Instructor:  req.Instructor,
		Description: req.Description,
		Price:       req.Price,
		Status:      req.Status,
	}
	created, err := h.courseService.CreateCourse(r.Context(), course)
	if err != nil {
		http.Error(w, "Failed to create course: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(created)
}

// getCourse godoc
// @Summary Get a course
// @Description Retrieves a course by id or slug. Admins get the full tree;
// @Description enrolled learners get the tree with completion and lock flags;
// @Description other learners get the catalog entry without sections.
// @Tags courses
// @Produce json
// @Param idOrSlug path string true "Course id or slug"
// @Success 200 {object} model.Course
// @Failure 404 {string} string "Course not found"
// @Failure 500 {string} string "Failed to retrieve course"
// @Router /courses/{idOrSlug} [get]
func (h *CourseHandler) getCourse(w http.ResponseWriter, r *http.Request, idOrSlug string) {
	course, err := h.resolveCourse(w, r, idOrSlug)
	if course == nil || err != nil {
		return
	}
	if middleware.Role(r) == model.RoleAdmin {
		tree, err := h.courseService.GetCourseTree(r.Context(), course.ID)
		if err != nil {
			http.Error(w, "Failed to retrieve course: "+err.Error(), http.StatusInternalServerError)
			return
		}
		course = tree
	} else {
		userID, _ := middleware.UserID(r)
		view, err := h.enrollmentService.LearnerCourseView(r.Context(), userID, course.ID)
		if err == nil {
			course = view
		} else if !errors.Is(err, service.ErrNotEnrolled) {
			http.Error(w, "Failed to retrieve course: "+err.Error(), http.StatusInternalServerError)
			return
		}
		// Unenrolled learners get the catalog entry without sections.
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(course)
}

// updateCourse godoc
// @Summary Update a course
// @Description Updates course fields. Accepts JSON, or multipart form data
// @Description when a thumbnail file is attached.
// @Tags courses
// @Accept json
// @Accept mpfd
// @Produce json
// @Param courseId path int true "Course ID"
// @Success 200 {object} model.Course
// @Failure 400 {string} string "Invalid payload or validation failed"
// @Failure 403 {string} string "Forbidden: admin role required"
// @Failure 404 {string} string "Course not found"
// @Failure 500 {string} string "Failed to update course"
// @Router /courses/{courseId} [put]
func (h *CourseHandler) updateCourse(w http.ResponseWriter, r *http.Request, seg string) {
	if middleware.Role(r) != model.RoleAdmin {
		http.Error(w, "Forbidden: admin role required", http.StatusForbidden)
		return
	}
	courseID, err := parseID(seg)
	if err != nil {
		http.Error(w, "Invalid course id", http.StatusBadRequest)
		return
	}
	course, err := h.courseService.GetCourseByID(r.Context(), courseID)
	if err != nil {
		http.Error(w, "Failed to retrieve course: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if course == nil {
		http.Error(w, "Course not found", http.StatusNotFound)
		return
	}

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := h.applyMultipartUpdate(w, r, course); err != nil {
			return
		}
	} else {
		var req dto.CourseUpdateDTO
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid JSON payload: "+err.Error(), http.StatusBadRequest)
			return
		}
		if err := h.validate.Struct(&req); err != nil {
			http.Error(w, "Validation failed: "+err.Error(), http.StatusBadRequest)
			return
		}
		applyCourseUpdate(course, req)
	}

	updated, err := h.courseService.UpdateCourse(r.Context(), course)
	if err != nil {
		http.Error(w, "Failed to update course: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(updated)
}

// applyMultipartUpdate merges form fields into the course and stores an
// attached thumbnail. It writes the error response itself.
func (h *CourseHandler) applyMultipartUpdate(w http.ResponseWriter, r *http.Request, course *model.Course) error {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		http.Error(w, "Invalid multipart payload: "+err.Error(), http.StatusBadRequest)
		return err
	}
	if v := r.FormValue("title"); v != "" {
		course.Title = v
	}
	if v := r.FormValue("instructor"); v != "" {
		course.Instructor = v
	}
	if v := r.FormValue("description"); v != "" {
		course.Description = v
	}
	if v := r.FormValue("price"); v != "" {
		price, err := strconv.ParseFloat(v, 64)
		if err != nil || price < 0 {
			http.Error(w, "Invalid price", http.StatusBadRequest)
			return errors.New("invalid price")
		}
		course.Price = price
	}
	if v := r.FormValue("status"); v != "" {
		course.Status = v
	}

	file, header, err := r.FormFile("thumbnail")
	if err == http.ErrMissingFile {
		return nil
	}
	if err != nil {
		http.Error(w, "Invalid thumbnail: "+err.Error(), http.StatusBadRequest)
		return err
	}
	defer file.Close()
	url, err := h.courseService.StoreThumbnail(r.Context(), course.ID, header.Filename, file)
	if err != nil {
		http.Error(w, "Failed to store thumbnail: "+err.Error(), http.StatusInternalServerError)
		return err
	}
	course.ThumbnailURL = url
	return nil
}

func applyCourseUpdate(course *model.Course, req dto.CourseUpdateDTO) {
	if req.Title != nil {
		course.Title = *req.Title
	}
	if req.Instructor != nil {
		course.Instructor = *req.Instructor
	}
	if req.Description != nil {
		course.Description = *req.Description
	}
	if req.Price != nil {
		course.Price = *req.Price
	}
	if req.Status != nil {
		course.Status = *req.Status
	}
}

// deleteCourse godoc
// @Summary Delete a course
// @Description Soft-deletes a course. It disappears from the catalog but
// @Description existing enrollments keep their history.
// @Tags courses
// @Param courseId path int true "Course ID"
// @Success 204 {string} string "No Content"
// @Failure 403 {string} string "Forbidden: admin role required"
// @Failure 404 {string} string "Course not found"
// @Failure 500 {string} string "Failed to delete course"
// @Router /courses/{courseId} [delete]
func (h *CourseHandler) deleteCourse(w http.ResponseWriter, r *http.Request, seg string) {
	if middleware.Role(r) != model.RoleAdmin {
		http.Error(w, "Forbidden: admin role required", http.StatusForbidden)
		return
	}
	courseID, err := parseID(seg)
	if err != nil {
		http.Error(w, "Invalid course id", http.StatusBadRequest)
		return
	}
	if err := h.courseService.DeleteCourse(r.Context(), courseID); err != nil {
		if errors.Is(err, service.ErrCourseNotFound) {
			http.Error(w, "Course not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to delete course: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// createSection godoc
// @Summary Create a section
// @Description Appends a section to a course.
// @Tags sections
// @Accept json
// @Produce json
// @Param courseId path int true "Course ID"
// @Param section body dto.SectionCreateDTO true "Section creation request"
// @Success 201 {object} model.Section
// @Failure 400 {string} string "Invalid JSON payload or validation failed"
// @Failure 403 {string} string "Forbidden: admin role required"
// @Failure 404 {string} string "Course not found"
// @Failure 500 {string} string "Failed to create section"
// @Router /courses/{courseId}/sections [post]
func (h *CourseHandler) createSection(w http.ResponseWriter, r *http.Request, seg string) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	if middleware.Role(r) != model.RoleAdmin {
		http.Error(w, "Forbidden: admin role required", http.StatusForbidden)
		return
	}
	courseID, err := parseID(seg)
	if err != nil {
		http.Error(w, "Invalid course id", http.StatusBadRequest)
		return
	}
	var req dto.SectionCreateDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON payload: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		http.Error(w, "Validation failed: "+err.Error(), http.StatusBadRequest)
		return
	}
	section := &model.Section{CourseID: courseID, Title: req.Title, Position: req.Position}
	created, err := h.sectionService.CreateSection(r.Context(), section)
	if err != nil {
		if errors.Is(err, service.ErrCourseNotFound) {
			http.Error(w, "Course not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to create section: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(created)
}

// enroll godoc
// @Summary Enroll in a course
// @Description Enrolls the caller in a published course. Enrolling twice is a
// @Description no-op.
// @Tags enrollments
// @Produce json
// @Param courseId path int true "Course ID"
// @Success 201 {object} model.Enrollment
// @Failure 404 {string} string "Course not found"
// @Failure 422 {string} string "Course is not open for enrollment"
// @Failure 500 {string} string "Failed to enroll"
// @Router /courses/{courseId}/enroll [post]
func (h *CourseHandler) enroll(w http.ResponseWriter, r *http.Request, seg string) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	userID, ok := middleware.UserID(r)
	if !ok {
		http.Error(w, "Unauthorized: User ID not found in context", http.StatusUnauthorized)
		return
	}
	courseID, err := parseID(seg)
	if err != nil {
		http.Error(w, "Invalid course id", http.StatusBadRequest)
		return
	}
	enrollment, err := h.enrollmentService.Enroll(r.Context(), userID, courseID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCourseNotFound):
			http.Error(w, "Course not found", http.StatusNotFound)
		case errors.Is(err, service.ErrNotPublished):
			http.Error(w, "Course is not open for enrollment", http.StatusUnprocessableEntity)
		default:
			http.Error(w, "Failed to enroll: "+err.Error(), http.StatusInternalServerError)
		}
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(enrollment)
}

// resolveCourse loads a course by numeric id or slug, writing the 404 itself.
func (h *CourseHandler) resolveCourse(w http.ResponseWriter, r *http.Request, idOrSlug string) (*model.Course, error) {
	var course *model.Course
	var err error
	if id, perr := parseID(idOrSlug); perr == nil {
		course, err = h.courseService.GetCourseByID(r.Context(), id)
	} else {
		course, err = h.courseService.GetCourseBySlug(r.Context(), idOrSlug)
	}
	if err != nil {
		http.Error(w, "Failed to retrieve course: "+err.Error(), http.StatusInternalServerError)
		return nil, err
	}
	if course == nil {
		http.Error(w, "Course not found", http.StatusNotFound)
		return nil, nil
	}
	if middleware.Role(r) != model.RoleAdmin && course.Status != model.CoursePublished {
		http.Error(w, "Course not found", http.StatusNotFound)
		return nil, nil
	}
	return course, nil
}
