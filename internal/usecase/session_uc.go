package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"codegate/internal/domain"
	"codegate/internal/domain/ports/repository"
)

// EndingSoonWindow is the advisory threshold below which a session check
// carries the "ending soon" signal.
const EndingSoonWindow = 120 * time.Second

// Status describes an active session at check time.
type Status struct {
	ExpiresAt  time.Time
	Remaining  time.Duration
	EndingSoon bool
}

// RefreshResult reports whether a pending refresh flag was consumed.
type RefreshResult struct {
	Updated   bool
	ExpiresAt time.Time
}

// SessionUseCase confirms that a (user_id, session_id) identity still maps
// to an active, unexpired code row. It is agnostic to where the pair came
// from; callers verify credentials first.
type SessionUseCase struct {
	codes repository.CodeRepository
	logs  repository.AccessLogRepository
	log   *zerolog.Logger
	now   func() time.Time
}

func NewSessionUseCase(codes repository.CodeRepository, logs repository.AccessLogRepository, logger *zerolog.Logger) *SessionUseCase {
	return &SessionUseCase{
		codes: codes,
		logs:  logs,
		log:   logger,
		now:   time.Now,
	}
}

// Check returns the session status, or ErrSessionInvalid when no matching
// active row exists, or ErrSessionExpired when the deadline has passed.
// Expiry is enforced lazily: an expired row is reset here, on the next
// check, rather than by a background sweeper. After the reset the same
// identity yields ErrSessionInvalid.
func (uc *SessionUseCase) Check(ctx context.Context, userID, sessionID string) (*Status, error) {
	if userID == "" || sessionID == "" {
		return nil, domain.ErrSessionInvalid
	}

	c, err := uc.codes.FindActiveSession(ctx, userID, sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrSessionInvalid
		}
		return nil, err
	}

	now := uc.now()
	if c.Expired(now) {
		if err := uc.codes.ClearSession(ctx, userID, sessionID); err != nil {
			return nil, err
		}
		if err := uc.logs.MarkLogout(ctx, sessionID, now); err != nil {
			uc.log.Error().Err(err).Str("user_id", userID).Msg("logout stamp failed")
		}
		uc.log.Info().Str("user_id", userID).Msg("session swept")
		return nil, domain.ErrSessionExpired
	}

	remaining := c.Remaining(now)
	return &Status{
		ExpiresAt:  c.ExpiresAt,
		Remaining:  remaining,
		EndingSoon: remaining < EndingSoonWindow,
	}, nil
}

// ConsumeRefresh clears a pending needs_refresh flag on the active session
// and reports whether there was one to clear.
func (uc *SessionUseCase) ConsumeRefresh(ctx context.Context, userID, sessionID string) (*RefreshResult, error) {
	if userID == "" || sessionID == "" {
		return nil, domain.ErrMalformedRequest
	}

	c, err := uc.codes.FindActiveSession(ctx, userID, sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return &RefreshResult{Updated: false}, nil
		}
		return nil, err
	}
	if !c.NeedsRefresh {
		return &RefreshResult{Updated: false}, nil
	}
	if err := uc.codes.ClearRefresh(ctx, userID, sessionID); err != nil {
		return nil, err
	}
	return &RefreshResult{Updated: true, ExpiresAt: c.ExpiresAt}, nil
}
