package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"lms/internal/api/v1/dto"
	"lms/internal/middleware"
	"lms/internal/model"
	"lms/internal/service"

	"github.com/go-playground/validator/v10"
)

// SectionHandler handles section endpoints and the section-scoped lesson list
type SectionHandler struct {
	sectionService service.SectionService
	lessonService  service.LessonService
	validate       *validator.Validate
}

// NewSectionHandler creates a new SectionHandler
func NewSectionHandler(sectionService service.SectionService, lessonService service.LessonService, validate *validator.Validate) *SectionHandler {
	return &SectionHandler{sectionService: sectionService, lessonService: lessonService, validate: validate}
}

// RegisterRoutes mounts section routes
func (h *SectionHandler) RegisterRoutes(mux *http.ServeMux, authMw func(http.Handler) http.Handler) {
	mux.Handle("/sections/", authMw(http.HandlerFunc(h.handleSection)))
}

func (h *SectionHandler) handleSection(w http.ResponseWriter, r *http.Request) {
	seg, rest := shiftPath(strings.TrimPrefix(r.URL.Path, "/sections/"))
	sectionID, err := parseID(seg)
	if err != nil {
		http.Error(w, "Invalid section id", http.StatusBadRequest)
		return
	}
	switch rest {
	case "":
		switch r.Method {
		case http.MethodPatch:
			h.renameSection(w, r, sectionID)
		case http.MethodDelete:
			h.deleteSection(w, r, sectionID)
		default:
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		}
	case "lessons":
		switch r.Method {
		case http.MethodGet:
			h.listLessons(w, r, sectionID)
		case http.MethodPost:
			h.createLesson(w, r, sectionID)
		default:
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		}
	default:
		http.NotFound(w, r)
	}
}

// renameSection godoc
// @Summary Rename a section
// @Description Updates a section's title.
// @Tags sections
// @Accept json
// @Param sectionId path int true "Section ID"
// @Param section body dto.SectionUpdateDTO true "Section rename request"
// @Success 204 {string} string "No Content"
// @Failure 400 {string} string "Invalid JSON payload or validation failed"
// @Failure 403 {string} string "Forbidden: admin role required"
// @Failure 404 {string} string "Section not found"
// @Failure 500 {string} string "Failed to rename section"
// @Router /sections/{sectionId} [patch]
func (h *SectionHandler) renameSection(w http.ResponseWriter, r *http.Request, sectionID int64) {
	if middleware.Role(r) != model.RoleAdmin {
		http.Error(w, "Forbidden: admin role required", http.StatusForbidden)
		return
	}
	var req dto.SectionUpdateDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON payload: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		http.Error(w, "Validation failed: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.sectionService.RenameSection(r.Context(), sectionID, req.Title); err != nil {
		if errors.Is(err, service.ErrSectionNotFound) {
			http.Error(w, "Section not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to rename section: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// deleteSection godoc
// @Summary Delete a section
// @Description Deletes a section and all of its lessons.
// @Tags sections
// @Param sectionId path int true "Section ID"
// @Success 204 {string} string "No Content"
// @Failure 403 {string} string "Forbidden: admin role required"
// @Failure 404 {string} string "Section not found"
// @Failure 500 {string} string "Failed to delete section"
// @Router /sections/{sectionId} [delete]
func (h *SectionHandler) deleteSection(w http.ResponseWriter, r *http.Request, sectionID int64) {
	if middleware.Role(r) != model.RoleAdmin {
		http.Error(w, "Forbidden: admin role required", http.StatusForbidden)
		return
	}
	if err := h.sectionService.DeleteSection(r.Context(), sectionID); err != nil {
		if errors.Is(err, service.ErrSectionNotFound) {
			http.Error(w, "Section not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to delete section: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// listLessons godoc
// @Summary List a section's lessons
// @Description Returns the section's lessons in position order. Used by the
// @Description authoring UI to expand a collapsed section on demand.
// @Tags lessons
// @Produce json
// @Param sectionId path int true "Section ID"
// @Success 200 {array} model.Lesson
// @Failure 500 {string} string "Failed to list lessons"
// @Router /sections/{sectionId}/lessons [get]
func (h *SectionHandler) listLessons(w http.ResponseWriter, r *http.Request, sectionID int64) {
	lessons, err := h.lessonService.ListLessonsBySection(r.Context(), sectionID)
	if err != nil {
		http.Error(w, "Failed to list lessons: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(lessons)
}

// createLesson godoc
// @Summary Create a lesson
// @Description Appends a lesson to a section. The content fields must match
// @Description the lesson type.
// @Tags lessons
// @Accept json
// @Produce json
// @Param sectionId path int true "Section ID"
// @Param lesson body dto.LessonDTO true "Lesson creation request"
// @Success 201 {object} model.Lesson
// @Failure 400 {string} string "Invalid JSON payload or validation failed"
// @Failure 403 {string} string "Forbidden: admin role required"
// @Failure 404 {string} string "Section not found"
// @Failure 422 {string} string "Lesson content does not match its type"
// @Failure 500 {string} string "Failed to create lesson"
// @Router /sections/{sectionId}/lessons [post]
func (h *SectionHandler) createLesson(w http.ResponseWriter, r *http.Request, sectionID int64) {
	if middleware.Role(r) != model.RoleAdmin {
		http.Error(w, "Forbidden: admin role required", http.StatusForbidden)
		return
	}
	var req dto.LessonDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON payload: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		http.Error(w, "Validation failed: "+err.Error(), http.StatusBadRequest)
		return
	}
	lesson := lessonFromDTO(req)
	lesson.SectionID = sectionID
	created, err := h.lessonService.CreateLesson(r.Context(), lesson)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSectionNotFound):
			http.Error(w, "Section not found", http.StatusNotFound)
		case errors.Is(err, service.ErrInvalidContent):
			http.Error(w, "Lesson content does not match its type", http.StatusUnprocessableEntity)
		default:
			http.Error(w, "Failed to create lesson: "+err.Error(), http.StatusInternalServerError)
		}
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(created)
}

func lessonFromDTO(req dto.LessonDTO) *model.Lesson {
	return &model.Lesson{
		Title:          req.Title,
		Type:           req.Type,
		ContentSource:  req.ContentSource,
		ContentURL:     req.ContentURL,
		ContentPath:    req.ContentPath,
		ContentText:    req.ContentText,
		PassingGrade:   req.PassingGrade,
		DurationMin:    req.DurationMin,
		EvaluationDesc: req.EvaluationDesc,
		Position:       req.Position,
	}
}
