package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mkadlec/facematch/internal/web/handlers"
)

func (s *Server) setupRoutes() {
	recognizeHandler := handlers.NewRecognizeHandler(s.deps.Recognizer, s.deps.Threshold)
	referencesHandler := handlers.NewReferencesHandler(s.deps.Catalog, s.deps.Searcher)

	s.router.Get("/api/v1/health", handlers.HealthCheck)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Post("/recognize", recognizeHandler.Recognize)
		r.Get("/references", referencesHandler.List)
		r.Post("/references/similar", referencesHandler.Similar)
	})

	s.router.Get("/", s.serveIndex)
}

// serveIndex serves a minimal landing page pointing at the API.
func (s *Server) serveIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`<!DOCTYPE html>
<html>
<head><title>Facematch</title></head>
<body>
    <h1>Facematch API</h1>
    <p>POST an image to <code>/api/v1/recognize</code> to identify faces.</p>
    <p>Health check: <a href="/api/v1/health">/api/v1/health</a></p>
</body>
</html>`))
}
