package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"codegate/internal/domain"
	"codegate/internal/domain/model"
	"codegate/internal/domain/ports/repository"
	"codegate/internal/infra/logging"
)

// Session is the identity established by redeeming a code. ExpiresAt is the
// code's own deadline, unchanged by activation.
type Session struct {
	UserID    string
	SessionID string
	ExpiresAt time.Time
}

// CodeUseCase governs the code lifecycle: validation, one-time redemption
// and the transition into an active session.
type CodeUseCase struct {
	codes repository.CodeRepository
	logs  repository.AccessLogRepository
	log   *zerolog.Logger
	now   func() time.Time
	dev   bool
}

func NewCodeUseCase(codes repository.CodeRepository, logs repository.AccessLogRepository, logger *zerolog.Logger, dev bool) *CodeUseCase {
	return &CodeUseCase{
		codes: codes,
		logs:  logs,
		log:   logger,
		now:   time.Now,
		dev:   dev,
	}
}

// ValidateAndActivate redeems a presented code and returns the session
// derived from it. Rejections map to the domain sentinels: ErrCodeFormat,
// ErrCodeNotFound, ErrCodeAlreadyUsed, ErrCodeExpired. The redemption
// itself is a conditional store update, so two racing calls on the same
// code yield exactly one success.
func (uc *CodeUseCase) ValidateAndActivate(ctx context.Context, code, ip, userAgent string) (*Session, error) {
	// Format rejection happens before any store lookup.
	if len(code) != model.CodeLength {
		uc.log.Warn().Int("length", len(code)).Msg("code format rejected")
		return nil, domain.ErrCodeFormat
	}

	c, err := uc.codes.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			uc.log.Warn().Str("code", logging.Redact(code, uc.dev)).Msg("code not found")
			return nil, domain.ErrCodeNotFound
		}
		return nil, err
	}
	if c.IsUsed {
		return nil, domain.ErrCodeAlreadyUsed
	}
	now := uc.now()
	if c.Expired(now) {
		return nil, domain.ErrCodeExpired
	}

	sessionID, err := newSessionID()
	if err != nil {
		return nil, err
	}
	ok, err := uc.codes.Activate(ctx, code, sessionID, now)
	if err != nil {
		return nil, err
	}
	if !ok {
		// Lost the race against a concurrent activation.
		return nil, domain.ErrCodeAlreadyUsed
	}

	entry := &model.AccessLog{
		UserID:    c.UserID,
		Code:      c.Code,
		IPAddress: ip,
		UserAgent: userAgent,
		LoginTime: now,
		SessionID: sessionID,
	}
	if err := uc.logs.Record(ctx, entry); err != nil {
		// The session is already live; a journal miss is not a login failure.
		uc.log.Error().Err(err).Str("user_id", c.UserID).Msg("access log write failed")
	}

	uc.log.Info().Str("user_id", c.UserID).Time("expires_at", c.ExpiresAt).Msg("code activated")
	return &Session{UserID: c.UserID, SessionID: sessionID, ExpiresAt: c.ExpiresAt}, nil
}
