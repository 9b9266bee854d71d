package web

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"codegate/internal/usecase"
)

// CodeActivator redeems a presented code into a live session.
type CodeActivator interface {
	ValidateAndActivate(ctx context.Context, code, ip, userAgent string) (*usecase.Session, error)
}

// SessionChecker validates session identities and consumes refresh flags.
type SessionChecker interface {
	Check(ctx context.Context, userID, sessionID string) (*usecase.Status, error)
	ConsumeRefresh(ctx context.Context, userID, sessionID string) (*usecase.RefreshResult, error)
}

// Server is the HTTP surface of the access gate.
type Server struct {
	codes    CodeActivator
	sessions SessionChecker
	auth     *AuthManager
	throttle *Throttle
	log      *zerolog.Logger
}

func NewServer(codes CodeActivator, sessions SessionChecker, auth *AuthManager, throttle *Throttle, logger *zerolog.Logger) *Server {
	return &Server{
		codes:    codes,
		sessions: sessions,
		auth:     auth,
		throttle: throttle,
		log:      logger,
	}
}

// Routes builds the router. The /api namespace is token-style (JSON errors,
// bearer credentials); everything else is cookie-style (redirects).
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(TraceID, s.RequestLog, s.Recover)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/login", s.handleLoginPage)
	r.Post("/login", s.handleLoginForm)

	r.Post("/api/login", s.handleAPILogin)
	r.Get("/api/check_session", s.handleCheckSession)
	r.Post("/api/session_updated", s.handleSessionUpdated)

	r.Group(func(pr chi.Router) {
		pr.Use(s.requireToken)
		pr.Get("/api/session_data", s.handleSessionData)
	})

	r.Group(func(pr chi.Router) {
		pr.Use(s.requireSession)
		pr.Get("/", s.handleDashboard)
		pr.Get("/dashboard", s.handleDashboard)
	})

	return r
}
