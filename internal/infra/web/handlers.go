package web

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"codegate/internal/domain"
	"codegate/internal/infra/logging"
	"codegate/internal/infra/metrics"
)

const checkTimeLayout = "2006-01-02 15:04:05"

// handleLoginPage renders the entry page. An already-valid session skips
// straight to the dashboard unless no_redirect is set.
func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	noStore(w)
	if r.URL.Query().Get("no_redirect") == "" {
		if claims, err := s.auth.ParseFromRequest(r); err == nil {
			if _, err := s.sessions.Check(r.Context(), claims.UserID, claims.SessionID); err == nil {
				http.Redirect(w, r, "/dashboard", http.StatusFound)
				return
			}
		}
	}
	renderLogin(w)
}

// handleLoginForm redeems a code presented by a browser form and
// establishes the cookie session.
func (s *Server) handleLoginForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "malformed form"})
		return
	}
	code := strings.TrimSpace(r.PostFormValue("code"))

	sess, err := s.codes.ValidateAndActivate(r.Context(), code, clientIP(r), r.UserAgent())
	if err != nil {
		s.rejectLogin(w, r, err, false)
		return
	}
	if _, err := s.auth.Mint(w, sess.UserID, sess.SessionID); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "server error"})
		return
	}
	metrics.IncLogin("success")
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// handleAPILogin redeems a code presented as JSON and returns the bearer
// token alongside the cookie.
func (s *Server) handleAPILogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid request body"})
		return
	}
	code := strings.TrimSpace(req.Code)

	sess, err := s.codes.ValidateAndActivate(r.Context(), code, clientIP(r), r.UserAgent())
	if err != nil {
		s.rejectLogin(w, r, err, true)
		return
	}
	token, err := s.auth.Mint(w, sess.UserID, sess.SessionID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "server error"})
		return
	}
	metrics.IncLogin("success")
	writeJSON(w, http.StatusOK, map[string]any{
		"token":      token,
		"expires_at": sess.ExpiresAt,
	})
}

// rejectLogin maps code rejections onto the contractual statuses. All
// rejections are terminal; nothing here is retried.
func (s *Server) rejectLogin(w http.ResponseWriter, r *http.Request, err error, api bool) {
	l := logging.With(r.Context(), s.log)
	var outcome, msg string
	switch {
	case errors.Is(err, domain.ErrCodeFormat):
		outcome, msg = "format", "invalid code format"
	case errors.Is(err, domain.ErrCodeNotFound):
		outcome, msg = "not_found", "invalid code"
	case errors.Is(err, domain.ErrCodeAlreadyUsed):
		outcome, msg = "already_used", "code already activated"
	case errors.Is(err, domain.ErrCodeExpired):
		outcome, msg = "expired", "code expired"
	default:
		metrics.IncLogin("error")
		l.Error().Err(err).Bool("api", api).Msg("login failed on store error")
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "server error"})
		return
	}
	metrics.IncLogin(outcome)
	l.Warn().Str("outcome", outcome).Bool("api", api).Msg("login rejected")
	writeJSON(w, http.StatusUnauthorized, map[string]any{"error": msg})
}

// handleCheckSession reports the session status for a bearer credential or,
// as a weaker fallback, raw X-User-Id / X-Session-Id headers. Either way
// the identity is cross-checked against the store.
func (s *Server) handleCheckSession(w http.ResponseWriter, r *http.Request) {
	noStore(w)
	checkTime := time.Now().Format(checkTimeLayout)

	var userID, sessionID string
	if hdr := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(hdr), "bearer ") {
		claims, err := s.auth.Verify(strings.TrimSpace(hdr[7:]))
		if err != nil {
			metrics.IncSessionCheck("invalid")
			writeJSON(w, http.StatusUnauthorized, map[string]any{"status": "invalid", "reason": "invalid_token"})
			return
		}
		userID, sessionID = claims.UserID, claims.SessionID
	} else {
		userID = r.Header.Get("X-User-Id")
		sessionID = r.Header.Get("X-Session-Id")
	}
	if userID == "" || sessionID == "" {
		metrics.IncSessionCheck("invalid")
		writeJSON(w, http.StatusUnauthorized, map[string]any{"status": "invalid", "reason": "missing_credentials"})
		return
	}

	st, err := s.sessions.Check(r.Context(), userID, sessionID)
	switch {
	case err == nil:
		metrics.IncSessionCheck("active")
		resp := map[string]any{
			"status":            "active",
			"expires_at":        st.ExpiresAt,
			"remaining_seconds": int(st.Remaining.Seconds()),
			"check_time":        checkTime,
		}
		if st.EndingSoon {
			resp["warning"] = "session_ending_soon"
		}
		writeJSON(w, http.StatusOK, resp)
	case errors.Is(err, domain.ErrSessionExpired):
		metrics.IncSessionCheck("expired")
		writeJSON(w, http.StatusUnauthorized, map[string]any{
			"status":     "expired",
			"reason":     "time_expired",
			"check_time": checkTime,
		})
	case errors.Is(err, domain.ErrSessionInvalid):
		metrics.IncSessionCheck("invalid")
		writeJSON(w, http.StatusUnauthorized, map[string]any{"status": "invalid", "reason": "no_active_session"})
	default:
		metrics.IncSessionCheck("error")
		logging.With(r.Context(), s.log).Error().Err(err).Msg("session check failed")
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "server error"})
	}
}

// handleSessionUpdated consumes a pending needs_refresh flag.
func (s *Server) handleSessionUpdated(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID    string `json:"user_id"`
		SessionID string `json:"session_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid request body"})
		return
	}
	res, err := s.sessions.ConsumeRefresh(r.Context(), req.UserID, req.SessionID)
	switch {
	case errors.Is(err, domain.ErrMalformedRequest):
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "missing required fields"})
	case err != nil:
		logging.With(r.Context(), s.log).Error().Err(err).Msg("refresh consume failed")
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "server error"})
	case res.Updated:
		writeJSON(w, http.StatusOK, map[string]any{"status": "updated", "expires_at": res.ExpiresAt})
	default:
		writeJSON(w, http.StatusOK, map[string]any{"status": "no_update_needed"})
	}
}

// handleSessionData echoes the gate-established identity back to the client.
func (s *Server) handleSessionData(w http.ResponseWriter, r *http.Request) {
	noStore(w)
	id, ok := identityFrom(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "no active session"})
		return
	}
	st, err := s.sessions.Check(r.Context(), id.UserID, id.SessionID)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "no active session"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"user_id":    id.UserID,
		"session_id": id.SessionID,
		"expires_at": st.ExpiresAt,
	})
}

// handleDashboard renders the protected page for an identity the gate has
// already established.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	noStore(w)
	id, ok := identityFrom(r.Context())
	if !ok {
		http.Redirect(w, r, "/login?no_redirect=1", http.StatusFound)
		return
	}
	st, err := s.sessions.Check(r.Context(), id.UserID, id.SessionID)
	if err != nil {
		s.auth.Clear(w)
		http.Redirect(w, r, "/login?no_redirect=1", http.StatusFound)
		return
	}
	renderDashboard(w, id.UserID, st.ExpiresAt)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// noStore marks a session-bearing response as uncacheable.
func noStore(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store, must-revalidate")
	w.Header().Set("Pragma", "no-cache")
	w.Header().Set("Expires", "0")
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.IndexByte(fwd, ','); i >= 0 {
			return strings.TrimSpace(fwd[:i])
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
