package repository

import (
	"context"
	"time"

	"codegate/internal/domain/model"
)

// CodeRepository is the port for access codes and the sessions derived from
// them. Every method touches at most one row; Activate is the only write
// that needs an atomicity contract.
type CodeRepository interface {
	// Save creates or updates a code. Used by seeding, not the gate itself.
	Save(ctx context.Context, code *model.Code) error
	// FindByCode finds a code by byte-exact match on the code string,
	// redeemed or not. Returns domain.ErrNotFound when absent.
	FindByCode(ctx context.Context, code string) (*model.Code, error)
	// Activate atomically redeems an unused code: sets is_used, the new
	// session ID, clears needs_refresh and records the activation time.
	// It reports false when the code was no longer unused, i.e. a
	// concurrent activation won the race.
	Activate(ctx context.Context, code, sessionID string, at time.Time) (bool, error)
	// FindActiveSession finds the redeemed code row backing the
	// (userID, sessionID) pair. Returns domain.ErrNotFound when no such
	// active row exists.
	FindActiveSession(ctx context.Context, userID, sessionID string) (*model.Code, error)
	// ClearSession resets a row to the unredeemed shape
	// (is_used=false, session_id=NULL). Used by the lazy expiry sweep.
	ClearSession(ctx context.Context, userID, sessionID string) error
	// ClearRefresh consumes the needs_refresh flag of an active session.
	ClearRefresh(ctx context.Context, userID, sessionID string) error
}
