package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"lms/internal/middleware"
	"lms/internal/model"
	"lms/internal/quiz"
	"lms/internal/service"
)

// QuestionHandler handles flat question and attempt endpoints
type QuestionHandler struct {
	quizService    service.QuizService
	attemptService service.AttemptService
}

// NewQuestionHandler creates a new QuestionHandler
func NewQuestionHandler(quizService service.QuizService, attemptService service.AttemptService) *QuestionHandler {
	return &QuestionHandler{quizService: quizService, attemptService: attemptService}
}

// RegisterRoutes mounts question and attempt routes
func (h *QuestionHandler) RegisterRoutes(mux *http.ServeMux, authMw func(http.Handler) http.Handler) {
	mux.Handle("/questions/", authMw(http.HandlerFunc(h.handleQuestion)))
	mux.Handle("/attempts/", authMw(http.HandlerFunc(h.handleAttempt)))
}

func (h *QuestionHandler) handleQuestion(w http.ResponseWriter, r *http.Request) {
	seg, rest := shiftPath(strings.TrimPrefix(r.URL.Path, "/questions/"))
	questionID, err := parseID(seg)
	if err != nil || rest != "" {
		http.NotFound(w, r)
		return
	}
	if middleware.Role(r) != model.RoleAdmin {
		http.Error(w, "Forbidden: admin role required", http.StatusForbidden)
		return
	}
	switch r.Method {
	case http.MethodPut:
		h.updateQuestion(w, r, questionID)
	case http.MethodDelete:
		h.deleteQuestion(w, r, questionID)
	default:
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
	}
}

// updateQuestion godoc
// @Summary Update a quiz question
// @Description Validates and rewrites a question, replacing its options.
// @Tags quiz
// @Accept json
// @Produce json
// @Param questionId path int true "Question ID"
// @Param question body quiz.QuestionDraft true "Question draft"
// @Success 200 {object} model.Question
// @Failure 400 {string} string "Invalid JSON payload"
// @Failure 403 {string} string "Forbidden: admin role required"
// @Failure 404 {string} string "Question not found"
// @Failure 422 {string} string "Question draft failed validation"
// @Failure 500 {string} string "Failed to update question"
// @Router /questions/{questionId} [put]
func (h *QuestionHandler) updateQuestion(w http.ResponseWriter, r *http.Request, questionID int64) {
	var draft quiz.QuestionDraft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		http.Error(w, "Invalid JSON payload: "+err.Error(), http.StatusBadRequest)
		return
	}
	question, err := h.quizService.UpdateQuestion(r.Context(), questionID, draft)
	if err != nil {
		h.writeError(w, "Failed to update question", err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(question)
}

// deleteQuestion godoc
// @Summary Delete a quiz question
// @Description Deletes a question, closing the sequence gap.
// @Tags quiz
// @Param questionId path int true "Question ID"
// @Success 204 {string} string "No Content"
// @Failure 403 {string} string "Forbidden: admin role required"
// @Failure 404 {string} string "Question not found"
// @Failure 500 {string} string "Failed to delete question"
// @Router /questions/{questionId} [delete]
func (h *QuestionHandler) deleteQuestion(w http.ResponseWriter, r *http.Request, questionID int64) {
	if err := h.quizService.DeleteQuestion(r.Context(), questionID); err != nil {
		h.writeError(w, "Failed to delete question", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *QuestionHandler) handleAttempt(w http.ResponseWriter, r *http.Request) {
	seg, rest := shiftPath(strings.TrimPrefix(r.URL.Path, "/attempts/"))
	attemptID, err := parseID(seg)
	if err != nil || rest != "review" || r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	h.review(w, r, attemptID)
}

// review godoc
// @Summary Review a quiz attempt
// @Description Returns the scored per-question breakdown for an attempt the
// @Description caller owns. The correct answer text is only revealed for
// @Description questions answered wrong.
// @Tags quiz
// @Produce json
// @Param attemptId path int true "Attempt ID"
// @Success 200 {object} model.AttemptReview
// @Failure 404 {string} string "Attempt not found"
// @Failure 500 {string} string "Failed to retrieve review"
// @Router /attempts/{attemptId}/review [get]
func (h *QuestionHandler) review(w http.ResponseWriter, r *http.Request, attemptID int64) {
	userID, ok := middleware.UserID(r)
	if !ok {
		http.Error(w, "Unauthorized: User ID not found in context", http.StatusUnauthorized)
		return
	}
	review, err := h.attemptService.Review(r.Context(), userID, attemptID)
	if err != nil {
		if errors.Is(err, service.ErrAttemptNotFound) {
			http.Error(w, "Attempt not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to retrieve review: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(review)
}

func (h *QuestionHandler) writeError(w http.ResponseWriter, msg string, err error) {
	switch {
	case errors.Is(err, service.ErrQuestionNotFound):
		http.Error(w, "Question not found", http.StatusNotFound)
	case errors.Is(err, quiz.ErrNoPrompt), errors.Is(err, quiz.ErrTooFewOptions), errors.Is(err, quiz.ErrNoCorrectOption):
		http.Error(w, "Question draft failed validation: "+err.Error(), http.StatusUnprocessableEntity)
	default:
		http.Error(w, msg+": "+err.Error(), http.StatusInternalServerError)
	}
}
