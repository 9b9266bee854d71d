package repository

import (
	"context"
	"time"

	"codegate/internal/domain/model"
)

// AccessLogRepository is the port for the append-mostly login journal.
type AccessLogRepository interface {
	// Record appends a login entry. Write-once per login event.
	Record(ctx context.Context, entry *model.AccessLog) error
	// MarkLogout stamps logout_time on the entry for sessionID, at most
	// once. A second call is a no-op.
	MarkLogout(ctx context.Context, sessionID string, at time.Time) error
}
