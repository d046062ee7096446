package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/skyelectric/reglens/pkg/domain/interfaces"
	"github.com/skyelectric/reglens/pkg/domain/types"
	"github.com/skyelectric/reglens/pkg/usecase"
	"github.com/skyelectric/reglens/pkg/utils/logging"
)

type Server struct {
	router   *chi.Mux
	uc       *usecase.UseCases
	renderer interfaces.ReportRenderer
}

type Options func(*Server)

// WithReportRenderer overrides the report output format
func WithReportRenderer(r interfaces.ReportRenderer) Options {
	return func(s *Server) {
		s.renderer = r
	}
}

func New(uc *usecase.UseCases, opts ...Options) *Server {
	r := chi.NewRouter()

	s := &Server{
		router:   r,
		uc:       uc,
		renderer: NewCSVRenderer(),
	}
	for _, opt := range opts {
		opt(s)
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Use(sessionMiddleware)

		r.Post("/documents", s.handleUpload)
		r.Get("/documents", s.handleListDocuments)
		r.Delete("/documents/{id}", s.handleDeleteDocument)
		r.Patch("/documents/{id}/type", s.handleUpdateDocumentType)

		r.Post("/assess", s.handleAssess)
		r.Get("/assessments/{id}/graph", s.handleGraph)
		r.Get("/assessments/{id}/report", s.handleReport)

		r.Post("/chat", s.handleChat)
		r.Post("/reset", s.handleReset)

		r.Get("/debug/namespaces", s.handleNamespaces)
	})

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// sessionMiddleware resolves the caller's session from the X-Session-ID
// header. Requests without one share the default session.
func sessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sid := types.SessionID(r.Header.Get("X-Session-ID")).Normalize()
		ctx := types.WithSessionID(r.Context(), sid)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// accessLogger is a middleware that logs HTTP requests
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			logging.Default().Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
			)
		}()

		next.ServeHTTP(ww, r)
	})
}
