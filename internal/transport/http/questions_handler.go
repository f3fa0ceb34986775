package http

import (
	"errors"
	"net/http"

	"survey-service/internal/app"
	"survey-service/internal/domain"
	"survey-service/internal/log"
	"github.com/go-chi/render"
)

// QuestionsHandler serves the question service contract:
// GET /questions and POST /question/submit.
type QuestionsHandler struct {
	service app.QuestionService
}

func NewQuestionsHandler(service app.QuestionService) *QuestionsHandler {
	return &QuestionsHandler{service: service}
}

func (h *QuestionsHandler) List(w http.ResponseWriter, r *http.Request) {
	questions, err := h.service.FetchQuestions(r.Context())
	if err != nil {
		internalError(w, "questions.list", err)
		return
	}
	render.JSON(w, r, questions)
}

func (h *QuestionsHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var answer domain.Answer
	if err := render.DecodeJSON(r.Body, &answer); err != nil {
		statusError(w, http.StatusBadRequest, "request.parse_body", err)
		return
	}

	err := h.service.SubmitAnswer(r.Context(), answer.QuestionID, answer.Text)
	switch {
	case err == nil:
		render.JSON(w, r, answer)
	case errors.Is(err, domain.ErrBlankAnswer):
		statusError(w, http.StatusBadRequest, "questions.submit", err)
	case errors.Is(err, domain.ErrQuestionNotFound):
		statusError(w, http.StatusNotFound, "questions.submit", err)
	default:
		internalError(w, "questions.submit", err)
	}
}

// internalError logs err and hides it behind the default 500 text.
func internalError(w http.ResponseWriter, code string, err error) {
	log.Errorf("%s: %s", code, err)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func statusError(w http.ResponseWriter, status int, code string, err error) {
	log.Debugf("%s: %s", code, err)
	http.Error(w, err.Error(), status)
}
