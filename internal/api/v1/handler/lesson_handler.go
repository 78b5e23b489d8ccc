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
	"lms/internal/quiz"
	"lms/internal/service"

	"github.com/go-playground/validator/v10"
)

// LessonHandler handles lesson endpoints and their subresources: learner
// progress, the media upload flow, quiz authoring and quiz attempts
type LessonHandler struct {
	lessonService     service.LessonService
	enrollmentService service.EnrollmentService
	quizService       service.QuizService
	attemptService    service.AttemptService
	validate          *validator.Validate
}

// NewLessonHandler creates a new LessonHandler
func NewLessonHandler(
	lessonService service.LessonService,
	enrollmentService service.EnrollmentService,
	quizService service.QuizService,
	attemptService service.AttemptService,
	validate *validator.Validate,
) *LessonHandler {
	return &LessonHandler{
		lessonService:     lessonService,
		enrollmentService: enrollmentService,
		quizService:       quizService,
		attemptService:    attemptService,
		validate:          validate,
	}
}

// RegisterRoutes mounts lesson routes
func (h *LessonHandler) RegisterRoutes(mux *http.ServeMux, authMw func(http.Handler) http.Handler) {
	mux.Handle("/lessons/", authMw(http.HandlerFunc(h.handleLesson)))
}

func (h *LessonHandler) handleLesson(w http.ResponseWriter, r *http.Request) {
	seg, rest := shiftPath(strings.TrimPrefix(r.URL.Path, "/lessons/"))
	lessonID, err := parseID(seg)
	if err != nil {
		http.Error(w, "Invalid lesson id", http.StatusBadRequest)
		return
	}
	switch rest {
	case "":
		switch r.Method {
		case http.MethodGet:
			h.getLesson(w, r, lessonID)
		case http.MethodPut:
			h.updateLesson(w, r, lessonID)
		case http.MethodDelete:
			h.deleteLesson(w, r, lessonID)
		default:
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		}
	case "complete":
		h.completeLesson(w, r, lessonID)
	case "upload":
		h.initiateUpload(w, r, lessonID)
	case "upload/complete":
		h.completeUpload(w, r, lessonID)
	case "playback":
		h.playbackURL(w, r, lessonID)
	case "questions":
		switch r.Method {
		case http.MethodGet:
			h.listQuestions(w, r, lessonID)
		case http.MethodPost:
			h.createQuestion(w, r, lessonID)
		default:
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		}
	case "questions/reorder":
		h.reorderQuestions(w, r, lessonID)
	case "attempt/question":
		h.attemptQuestion(w, r, lessonID)
	case "attempts":
		h.submitAttempt(w, r, lessonID)
	default:
		http.NotFound(w, r)
	}
}

// getLesson godoc
// @Summary Get a lesson
// @Description Retrieves a lesson by its ID.
// @Tags lessons
// @Produce json
// @Param lessonId path int true "Lesson ID"
// @Success 200 {object} model.Lesson
// @Failure 404 {string} string "Lesson not found"
// @Failure 500 {string} string "Failed to retrieve lesson"
// @Router /lessons/{lessonId} [get]
func (h *LessonHandler) getLesson(w http.ResponseWriter, r *http.Request, lessonID int64) {
	lesson, err := h.lessonService.GetLessonByID(r.Context(), lessonID)
	if err != nil {
		http.Error(w, "Failed to retrieve lesson: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if lesson == nil {
		http.Error(w, "Lesson not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(lesson)
}

// updateLesson godoc
// @Summary Update a lesson
// @Description Replaces a lesson's fields. The content fields must match the
// @Description lesson type.
// @Tags lessons
// @Accept json
// @Produce json
// @Param lessonId path int true "Lesson ID"
// @Param lesson body dto.LessonDTO true "Lesson update request"
// @Success 200 {object} model.Lesson
// @Failure 400 {string} string "Invalid JSON payload or validation failed"
// @Failure 403 {string} string "Forbidden: admin role required"
// @Failure 404 {string} string "Lesson not found"
// @Failure 422 {string} string "Lesson content does not match its type"
// @Failure 500 {string} string "Failed to update lesson"
// @Router /lessons/{lessonId} [put]
func (h *LessonHandler) updateLesson(w http.ResponseWriter, r *http.Request, lessonID int64) {
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
	lesson.ID = lessonID
	updated, err := h.lessonService.UpdateLesson(r.Context(), lesson)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrLessonNotFound):
			http.Error(w, "Lesson not found", http.StatusNotFound)
		case errors.Is(err, service.ErrInvalidContent):
			http.Error(w, "Lesson content does not match its type", http.StatusUnprocessableEntity)
		default:
			http.Error(w, "Failed to update lesson: "+err.Error(), http.StatusInternalServerError)
		}
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(updated)
}

// deleteLesson godoc
// @Summary Delete a lesson
// @Description Deletes a lesson and, for quiz lessons, its questions.
// @Tags lessons
// @Param lessonId path int true "Lesson ID"
// @Success 204 {string} string "No Content"
// @Failure 403 {string} string "Forbidden: admin role required"
// @Failure 404 {string} string "Lesson not found"
// @Failure 500 {string} string "Failed to delete lesson"
// @Router /lessons/{lessonId} [delete]
func (h *LessonHandler) deleteLesson(w http.ResponseWriter, r *http.Request, lessonID int64) {
	if middleware.Role(r) != model.RoleAdmin {
		http.Error(w, "Forbidden: admin role required", http.StatusForbidden)
		return
	}
	if err := h.lessonService.DeleteLesson(r.Context(), lessonID); err != nil {
		if errors.Is(err, service.ErrLessonNotFound) {
			http.Error(w, "Lesson not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to delete lesson: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// completeLesson godoc
// @Summary Mark a lesson complete
// @Description Records the lesson as finished for the caller. Repeat calls
// @Description are no-ops.
// @Tags enrollments
// @Param lessonId path int true "Lesson ID"
// @Success 204 {string} string "No Content"
// @Failure 404 {string} string "Lesson not found"
// @Failure 422 {string} string "User is not enrolled in this course"
// @Failure 500 {string} string "Failed to complete lesson"
// @Router /lessons/{lessonId}/complete [post]
func (h *LessonHandler) completeLesson(w http.ResponseWriter, r *http.Request, lessonID int64) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	userID, ok := middleware.UserID(r)
	if !ok {
		http.Error(w, "Unauthorized: User ID not found in context", http.StatusUnauthorized)
		return
	}
	if err := h.enrollmentService.CompleteLesson(r.Context(), userID, lessonID); err != nil {
		switch {
		case errors.Is(err, service.ErrLessonNotFound), errors.Is(err, service.ErrSectionNotFound):
			http.Error(w, "Lesson not found", http.StatusNotFound)
		case errors.Is(err, service.ErrNotEnrolled):
			http.Error(w, "User is not enrolled in this course", http.StatusUnprocessableEntity)
		default:
			http.Error(w, "Failed to complete lesson: "+err.Error(), http.StatusInternalServerError)
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// initiateUpload godoc
// @Summary Initiate a media upload
// @Description Stages an upload for a video or document lesson and returns a
// @Description presigned PUT URL. The client uploads the file directly to
// @Description storage and then calls the completion endpoint.
// @Tags lessons
// @Accept json
// @Produce json
// @Param lessonId path int true "Lesson ID"
// @Param upload body dto.UploadInitiateDTO true "Upload initiation request"
// @Success 200 {object} dto.UploadURLResponseDTO
// @Failure 400 {string} string "Invalid JSON payload or validation failed"
// @Failure 403 {string} string "Forbidden: admin role required"
// @Failure 404 {string} string "Lesson not found"
// @Failure 422 {string} string "Lesson does not use uploaded content"
// @Failure 500 {string} string "Failed to initiate upload"
// @Router /lessons/{lessonId}/upload [post]
func (h *LessonHandler) initiateUpload(w http.ResponseWriter, r *http.Request, lessonID int64) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	if middleware.Role(r) != model.RoleAdmin {
		http.Error(w, "Forbidden: admin role required", http.StatusForbidden)
		return
	}
	var req dto.UploadInitiateDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON payload: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		http.Error(w, "Validation failed: "+err.Error(), http.StatusBadRequest)
		return
	}
	url, err := h.lessonService.InitiateUpload(r.Context(), lessonID, req.Filename)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrLessonNotFound):
			http.Error(w, "Lesson not found", http.StatusNotFound)
		case errors.Is(err, service.ErrNotUploadLesson):
			http.Error(w, "Lesson does not use uploaded content", http.StatusUnprocessableEntity)
		default:
			http.Error(w, "Failed to initiate upload: "+err.Error(), http.StatusInternalServerError)
		}
		return
	}
	resp := dto.UploadURLResponseDTO{UploadURL: url, Method: http.MethodPut}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// completeUpload godoc
// @Summary Complete a media upload
// @Description Verifies the uploaded object exists and queues it for media
// @Description processing.
// @Tags lessons
// @Produce json
// @Param lessonId path int true "Lesson ID"
// @Success 200 {object} model.Lesson
// @Failure 403 {string} string "Forbidden: admin role required"
// @Failure 404 {string} string "Lesson not found"
// @Failure 422 {string} string "Lesson does not use uploaded content"
// @Failure 500 {string} string "Failed to complete upload"
// @Router /lessons/{lessonId}/upload/complete [post]
func (h *LessonHandler) completeUpload(w http.ResponseWriter, r *http.Request, lessonID int64) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	if middleware.Role(r) != model.RoleAdmin {
		http.Error(w, "Forbidden: admin role required", http.StatusForbidden)
		return
	}
	lesson, err := h.lessonService.CompleteUpload(r.Context(), lessonID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrLessonNotFound):
			http.Error(w, "Lesson not found", http.StatusNotFound)
		case errors.Is(err, service.ErrNotUploadLesson):
			http.Error(w, "Lesson does not use uploaded content", http.StatusUnprocessableEntity)
		default:
			http.Error(w, "Failed to complete upload: "+err.Error(), http.StatusInternalServerError)
		}
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(lesson)
}

// playbackURL godoc
// @Summary Get a playback URL
// @Description Returns a short-lived presigned GET URL for uploaded lesson
// @Description content.
// @Tags lessons
// @Produce json
// @Param lessonId path int true "Lesson ID"
// @Success 200 {object} dto.UploadURLResponseDTO
// @Failure 404 {string} string "Lesson not found"
// @Failure 422 {string} string "Lesson does not use uploaded content"
// @Failure 500 {string} string "Failed to generate playback URL"
// @Router /lessons/{lessonId}/playback [get]
func (h *LessonHandler) playbackURL(w http.ResponseWriter, r *http.Request, lessonID int64) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	url, err := h.lessonService.PlaybackURL(r.Context(), lessonID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrLessonNotFound):
			http.Error(w, "Lesson not found", http.StatusNotFound)
		case errors.Is(err, service.ErrNotUploadLesson):
			http.Error(w, "Lesson does not use uploaded content", http.StatusUnprocessableEntity)
		default:
			http.Error(w, "Failed to generate playback URL: "+err.Error(), http.StatusInternalServerError)
		}
		return
	}
	resp := dto.UploadURLResponseDTO{UploadURL: url, Method: http.MethodGet}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// listQuestions godoc
// @Summary List quiz questions
// @Description Returns a quiz lesson's questions with options and correctness
// @Description flags. Authoring view only.
// @Tags quiz
// @Produce json
// @Param lessonId path int true "Lesson ID"
// @Success 200 {array} model.Question
// @Failure 403 {string} string "Forbidden: admin role required"
// @Failure 404 {string} string "Lesson not found"
// @Failure 422 {string} string "Lesson is not a quiz"
// @Failure 500 {string} string "Failed to list questions"
// @Router /lessons/{lessonId}/questions [get]
func (h *LessonHandler) listQuestions(w http.ResponseWriter, r *http.Request, lessonID int64) {
	if middleware.Role(r) != model.RoleAdmin {
		http.Error(w, "Forbidden: admin role required", http.StatusForbidden)
		return
	}
	questions, err := h.quizService.ListQuestions(r.Context(), lessonID)
	if err != nil {
		h.writeQuizError(w, "Failed to list questions", err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(questions)
}

// createQuestion godoc
// @Summary Create a quiz question
// @Description Validates and appends a question to a quiz lesson.
// @Tags quiz
// @Accept json
// @Produce json
// @Param lessonId path int true "Lesson ID"
// @Param question body quiz.QuestionDraft true "Question draft"
// @Success 201 {object} model.Question
// @Failure 400 {string} string "Invalid JSON payload"
// @Failure 403 {string} string "Forbidden: admin role required"
// @Failure 404 {string} string "Lesson not found"
// @Failure 422 {string} string "Question draft failed validation"
// @Failure 500 {string} string "Failed to create question"
// @Router /lessons/{lessonId}/questions [post]
func (h *LessonHandler) createQuestion(w http.ResponseWriter, r *http.Request, lessonID int64) {
	if middleware.Role(r) != model.RoleAdmin {
		http.Error(w, "Forbidden: admin role required", http.StatusForbidden)
		return
	}
	var draft quiz.QuestionDraft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		http.Error(w, "Invalid JSON payload: "+err.Error(), http.StatusBadRequest)
		return
	}
	question, err := h.quizService.CreateQuestion(r.Context(), lessonID, draft)
	if err != nil {
		h.writeQuizError(w, "Failed to create question", err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(question)
}

// reorderQuestions godoc
// @Summary Reorder quiz questions
// @Description Applies a full dense sequence map to a quiz lesson's questions
// @Description in one transaction.
// @Tags quiz
// @Accept json
// @Param lessonId path int true "Lesson ID"
// @Param order body dto.ReorderDTO true "Full question sequence map"
// @Success 204 {string} string "No Content"
// @Failure 400 {string} string "Invalid JSON payload or validation failed"
// @Failure 403 {string} string "Forbidden: admin role required"
// @Failure 422 {string} string "Sequence map is not a dense permutation"
// @Failure 500 {string} string "Failed to reorder questions"
// @Router /lessons/{lessonId}/questions/reorder [post]
func (h *LessonHandler) reorderQuestions(w http.ResponseWriter, r *http.Request, lessonID int64) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	if middleware.Role(r) != model.RoleAdmin {
		http.Error(w, "Forbidden: admin role required", http.StatusForbidden)
		return
	}
	var req dto.ReorderDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON payload: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		http.Error(w, "Validation failed: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.quizService.Reorder(r.Context(), lessonID, req.Sequences); err != nil {
		if errors.Is(err, service.ErrBadSequenceMap) {
			http.Error(w, "Sequence map is not a dense permutation", http.StatusUnprocessableEntity)
			return
		}
		h.writeQuizError(w, "Failed to reorder questions", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// attemptQuestion godoc
// @Summary Get one quiz question for an attempt
// @Description Returns the question at the given 1-based sequence with
// @Description correctness stripped, plus the total question count.
// @Tags quiz
// @Produce json
// @Param lessonId path int true "Lesson ID"
// @Param seq query int true "Question sequence, 1-based"
// @Success 200 {object} dto.AttemptQuestionResponseDTO
// @Failure 400 {string} string "Invalid sequence"
// @Failure 404 {string} string "No question at that sequence"
// @Failure 422 {string} string "Quiz has no questions"
// @Failure 500 {string} string "Failed to retrieve question"
// @Router /lessons/{lessonId}/attempt/question [get]
func (h *LessonHandler) attemptQuestion(w http.ResponseWriter, r *http.Request, lessonID int64) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	seq, err := strconv.Atoi(r.URL.Query().Get("seq"))
	if err != nil || seq < 1 {
		http.Error(w, "Invalid sequence", http.StatusBadRequest)
		return
	}
	question, total, err := h.attemptService.QuestionAt(r.Context(), lessonID, seq)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNoSuchSequence):
			http.Error(w, "No question at that sequence", http.StatusNotFound)
		case errors.Is(err, service.ErrEmptyQuiz):
			http.Error(w, "Quiz has no questions", http.StatusUnprocessableEntity)
		default:
			http.Error(w, "Failed to retrieve question: "+err.Error(), http.StatusInternalServerError)
		}
		return
	}
	resp := dto.AttemptQuestionResponseDTO{Question: *question, Total: total}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// submitAttempt godoc
// @Summary Submit a quiz attempt
// @Description Scores the answer map server-side and records the attempt.
// @Tags quiz
// @Accept json
// @Produce json
// @Param lessonId path int true "Lesson ID"
// @Param answers body dto.AttemptSubmitDTO true "Question id to chosen option id"
// @Success 201 {object} model.Attempt
// @Failure 400 {string} string "Invalid JSON payload or validation failed"
// @Failure 404 {string} string "Lesson not found"
// @Failure 422 {string} string "Lesson is not a quiz or has no questions"
// @Failure 500 {string} string "Failed to submit attempt"
// @Router /lessons/{lessonId}/attempts [post]
func (h *LessonHandler) submitAttempt(w http.ResponseWriter, r *http.Request, lessonID int64) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	userID, ok := middleware.UserID(r)
	if !ok {
		http.Error(w, "Unauthorized: User ID not found in context", http.StatusUnauthorized)
		return
	}
	var req dto.AttemptSubmitDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON payload: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		http.Error(w, "Validation failed: "+err.Error(), http.StatusBadRequest)
		return
	}
	attempt, err := h.attemptService.Submit(r.Context(), userID, lessonID, req.Answers)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrLessonNotFound):
			http.Error(w, "Lesson not found", http.StatusNotFound)
		case errors.Is(err, service.ErrNotQuizLesson), errors.Is(err, service.ErrEmptyQuiz):
			http.Error(w, "Lesson is not a quiz or has no questions", http.StatusUnprocessableEntity)
		default:
			http.Error(w, "Failed to submit attempt: "+err.Error(), http.StatusInternalServerError)
		}
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(attempt)
}

// writeQuizError maps quiz authoring errors onto HTTP statuses.
func (h *LessonHandler) writeQuizError(w http.ResponseWriter, msg string, err error) {
	switch {
	case errors.Is(err, service.ErrLessonNotFound):
		http.Error(w, "Lesson not found", http.StatusNotFound)
	case errors.Is(err, service.ErrNotQuizLesson):
		http.Error(w, "Lesson is not a quiz", http.StatusUnprocessableEntity)
	case errors.Is(err, quiz.ErrNoPrompt), errors.Is(err, quiz.ErrTooFewOptions), errors.Is(err, quiz.ErrNoCorrectOption):
		http.Error(w, "Question draft failed validation: "+err.Error(), http.StatusUnprocessableEntity)
	default:
		http.Error(w, msg+": "+err.Error(), http.StatusInternalServerError)
	}
}
