package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"codegate/internal/domain"
	"codegate/internal/infra/logging"
	"codegate/internal/infra/metrics"
)

type contextKey string

const identityKey contextKey = "identity"

// Identity is the (user_id, session_id) pair the gate established for a
// request. It references store state and is never trusted standalone.
type Identity struct {
	UserID    string
	SessionID string
}

func identityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}

func withIdentity(ctx context.Context, id Identity) context.Context {
	ctx = context.WithValue(ctx, identityKey, id)
	ctx = logging.WithUserID(ctx, id.UserID)
	return logging.WithSessID(ctx, id.SessionID)
}

// TraceID assigns a trace ID to every request.
func TraceID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := logging.WithTraceID(r.Context(), uuid.NewString())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequestLog logs method, path, status and duration of every request.
func (s *Server) RequestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		l := logging.With(r.Context(), s.log)
		start := time.Now()
		ww := &respWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(ww, r)
		l.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.status).
			Dur("duration", time.Since(start)).
			Msg("http_request")
	})
}

type respWriter struct {
	http.ResponseWriter
	status int
}

func (w *respWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// Recover turns panics into 500s.
func (s *Server) Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				l := logging.With(r.Context(), s.log)
				l.Error().Interface("panic", rec).Msg("panic recovered")
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// requireToken gates token-style operations: a verifiable bearer credential
// is required, and the session it references must still be active.
func (s *Server) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := s.auth.ParseFromRequest(r)
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "authorization required"})
			return
		}
		id := Identity{UserID: claims.UserID, SessionID: claims.SessionID}

		if err := s.ensureActive(r.Context(), id); err != nil {
			switch {
			case errors.Is(err, domain.ErrSessionExpired), errors.Is(err, domain.ErrSessionInvalid):
				writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "session expired"})
			default:
				writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "server error"})
			}
			return
		}
		next.ServeHTTP(w, r.WithContext(withIdentity(r.Context(), id)))
	})
}

// requireSession gates cookie-style (browser) operations. Failures redirect
// to the login page instead of returning a raw error; no_redirect=1 breaks
// redirect loops.
func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("no_redirect") == "1" {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}

		claims, err := s.auth.ParseFromRequest(r)
		if err != nil {
			http.Redirect(w, r, "/login?no_redirect=1", http.StatusFound)
			return
		}
		id := Identity{UserID: claims.UserID, SessionID: claims.SessionID}

		if err := s.ensureActive(r.Context(), id); err != nil {
			switch {
			case errors.Is(err, domain.ErrSessionExpired), errors.Is(err, domain.ErrSessionInvalid):
				s.auth.Clear(w)
				http.Redirect(w, r, "/login?no_redirect=1", http.StatusFound)
			default:
				writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "server error"})
			}
			return
		}
		next.ServeHTTP(w, r.WithContext(withIdentity(r.Context(), id)))
	})
}

// ensureActive re-checks the session against the store, at most once per
// cooldown interval per identity. The cooldown suppresses redundant store
// round-trips only; a miss never substitutes for a failed check.
func (s *Server) ensureActive(ctx context.Context, id Identity) error {
	key := id.UserID + ":" + id.SessionID
	now := time.Now()
	if !s.throttle.ShouldCheck(key, now) {
		metrics.IncThrottleSuppressed()
		return nil
	}
	if _, err := s.sessions.Check(ctx, id.UserID, id.SessionID); err != nil {
		s.throttle.Forget(key)
		return err
	}
	s.throttle.MarkChecked(key, now)
	return nil
}
