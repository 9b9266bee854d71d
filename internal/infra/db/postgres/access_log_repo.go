package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4/pgxpool"

	"codegate/internal/domain/model"
	"codegate/internal/domain/ports/repository"
)

var _ repository.AccessLogRepository = (*accessLogRepo)(nil)

type accessLogRepo struct {
	pool *pgxpool.Pool
}

func NewAccessLogRepo(pool *pgxpool.Pool) repository.AccessLogRepository {
	return &accessLogRepo{pool: pool}
}

func (r *accessLogRepo) Record(ctx context.Context, e *model.AccessLog) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	const q = `
INSERT INTO access_logs (id, user_id, code, ip_address, user_agent, login_time, logout_time, session_id)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
`
	_, err := r.pool.Exec(ctx, q,
		e.ID, e.UserID, e.Code, e.IPAddress, e.UserAgent, e.LoginTime, e.LogoutTime, e.SessionID,
	)
	return err
}

// MarkLogout stamps logout_time once; the IS NULL guard keeps later sweeps
// from overwriting the first stamp.
func (r *accessLogRepo) MarkLogout(ctx context.Context, sessionID string, at time.Time) error {
	const q = `
UPDATE access_logs
   SET logout_time = $2
 WHERE session_id = $1 AND logout_time IS NULL;
`
	_, err := r.pool.Exec(ctx, q, sessionID, at)
	return err
}
