package web

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"codegate/internal/config"
	"codegate/internal/usecase"
)

func newTestLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

func newTestAuth() *AuthManager {
	return NewAuthManager(config.AuthConfig{
		Secret:     "test-secret-must-not-be-guessable",
		Issuer:     "auth-service",
		TokenTTL:   time.Hour,
		CookieName: "auth_token",
	})
}

// mockActivator scripts the outcome of a code redemption.
type mockActivator struct {
	sess    *usecase.Session
	err     error
	gotCode string
	gotIP   string
	gotUA   string
	calls   int
}

func (m *mockActivator) ValidateAndActivate(ctx context.Context, code, ip, userAgent string) (*usecase.Session, error) {
	m.calls++
	m.gotCode, m.gotIP, m.gotUA = code, ip, userAgent
	if m.err != nil {
		return nil, m.err
	}
	return m.sess, nil
}

// mockChecker scripts session check and refresh outcomes.
type mockChecker struct {
	status     *usecase.Status
	checkErr   error
	refresh    *usecase.RefreshResult
	refreshErr error
	checks     int
}

func (m *mockChecker) Check(ctx context.Context, userID, sessionID string) (*usecase.Status, error) {
	m.checks++
	if m.checkErr != nil {
		return nil, m.checkErr
	}
	return m.status, nil
}

func (m *mockChecker) ConsumeRefresh(ctx context.Context, userID, sessionID string) (*usecase.RefreshResult, error) {
	if m.refreshErr != nil {
		return nil, m.refreshErr
	}
	return m.refresh, nil
}

func newTestServer(codes CodeActivator, sessions SessionChecker) *Server {
	return NewServer(codes, sessions, newTestAuth(), NewThrottle(30*time.Second, 64), newTestLogger())
}
