// Package http serves the chat UI, the single-shot coach endpoint and the
// operational endpoints.
package http

import (
	"embed"
	"html/template"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"thrive-chatbot/internal/core"
	"thrive-chatbot/internal/identity"
	"thrive-chatbot/internal/metrics"
)

//go:embed templates/*.html
var templateFS embed.FS

// Server bundles together the dependencies required by HTTP handlers.  It
// implements http.Handler so it can be passed to http.Server.
type Server struct {
	Identity  identity.Provider
	Chat      *core.ChatService
	Ingestor  *core.Ingestor
	Sessions  *SessionRegistry
	Tokens    *identity.TokenIssuer
	Metrics   *metrics.Collector
	Logger    *zap.Logger
	Templates *template.Template

	MaxUploadBytes int64
	SessionTTL     time.Duration
	Dev            bool

	router chi.Router
}

// NewServer constructs a Server and its routes.  Templates are embedded in
// the binary.
func NewServer(provider identity.Provider, chat *core.ChatService, ingestor *core.Ingestor,
	sessions *SessionRegistry, tokens *identity.TokenIssuer, m *metrics.Collector, logger *zap.Logger) (*Server, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		Identity:       provider,
		Chat:           chat,
		Ingestor:       ingestor,
		Sessions:       sessions,
		Tokens:         tokens,
		Metrics:        m,
		Logger:         logger,
		Templates:      tmpl,
		MaxUploadBytes: 10 << 20,
		SessionTTL:     24 * time.Hour,
	}
	s.router = s.routes()
	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(AccessLog(s.Logger, s.Metrics))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/health"))

	if s.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.Metrics.Handler())
	}

	// Stateless single-shot coach.
	r.Get("/api/coach", s.handleCoach)
	r.Post("/api/coach", s.handleCoach)

	r.Group(func(r chi.Router) {
		r.Use(s.withSession)

		r.Get("/", s.handleIndex)
		r.Post("/auth/login", s.handleLogin)
		r.Post("/auth/register", s.handleRegister)
		r.Post("/auth/reset", s.handleReset)
		r.Post("/auth/logout", s.handleLogout)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Post("/documents", s.handleDocument)
			r.Post("/chat", s.handleChat)
			r.Get("/api/history", s.handleHistory)
		})
	})
	return r
}
