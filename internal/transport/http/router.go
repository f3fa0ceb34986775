package http

import (
	"net/http"

	"survey-service/internal/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter wires the question API, the websocket bridge and the operational
// endpoints. metrics may be nil.
func NewRouter(questions *QuestionsHandler, ws *WSHandler, metrics http.Handler) http.Handler {
	root := chi.NewRouter()
	root.Use(
		middleware.RequestID,
		middleware.RequestLogger(&middleware.DefaultLogFormatter{Logger: log.Logger, NoColor: true}),
		middleware.Recoverer,
	)

	root.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	if metrics != nil {
		root.Method(http.MethodGet, "/metrics", metrics)
	}

	root.Get("/questions", questions.List)
	root.Post("/question/submit", questions.Submit)
	root.Get("/ws", ws.ServeWS)
	return root
}
