package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/oklog/ulid/v2"

	"codegate/internal/domain"
	"codegate/internal/domain/model"
	"codegate/internal/domain/ports/repository"
)

// Ensure implementation satisfies the interface.
var _ repository.CodeRepository = (*codeRepo)(nil)

type codeRepo struct {
	pool *pgxpool.Pool
}

func NewCodeRepo(pool *pgxpool.Pool) repository.CodeRepository {
	return &codeRepo{pool: pool}
}

const codeColumns = `id, user_id, code, expires_at, tariff, is_used, session_id, needs_refresh, last_used_at, created_at`

func (r *codeRepo) Save(ctx context.Context, c *model.Code) error {
	if c.ID == "" {
		c.ID = ulid.Make().String()
	}
	const q = `
INSERT INTO codes (id, user_id, code, expires_at, tariff, is_used, session_id, needs_refresh, last_used_at, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
ON CONFLICT (id) DO UPDATE SET
  expires_at = EXCLUDED.expires_at,
  tariff = EXCLUDED.tariff,
  needs_refresh = EXCLUDED.needs_refresh;
`
	_, err := r.pool.Exec(ctx, q,
		c.ID, c.UserID, c.Code, c.ExpiresAt, c.Tariff, c.IsUsed, c.SessionID, c.NeedsRefresh, c.LastUsedAt, c.CreatedAt,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		// Unique violation on the code value. Callers minting random codes
		// treat this as a retryable collision.
		return domain.ErrDuplicateCode
	}
	return err
}

// FindByCode looks a code up by byte-exact match. TEXT comparison in
// Postgres is already exact, so no case folding happens anywhere.
func (r *codeRepo) FindByCode(ctx context.Context, code string) (*model.Code, error) {
	const q = `SELECT ` + codeColumns + ` FROM codes WHERE code = $1;`
	return r.scanOne(r.pool.QueryRow(ctx, q, code))
}

// Activate redeems an unused code in a single conditional UPDATE. The
// is_used guard in the WHERE clause is what makes two racing activations
// yield exactly one success.
func (r *codeRepo) Activate(ctx context.Context, code, sessionID string, at time.Time) (bool, error) {
	const q = `
UPDATE codes
   SET is_used = TRUE, session_id = $2, needs_refresh = FALSE, last_used_at = $3
 WHERE code = $1 AND is_used = FALSE;
`
	tag, err := r.pool.Exec(ctx, q, code, sessionID, at)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *codeRepo) FindActiveSession(ctx context.Context, userID, sessionID string) (*model.Code, error) {
	const q = `SELECT ` + codeColumns + ` FROM codes WHERE user_id = $1 AND session_id = $2 AND is_used = TRUE;`
	return r.scanOne(r.pool.QueryRow(ctx, q, userID, sessionID))
}

func (r *codeRepo) ClearSession(ctx context.Context, userID, sessionID string) error {
	const q = `
UPDATE codes
   SET is_used = FALSE, session_id = NULL
 WHERE user_id = $1 AND session_id = $2;
`
	_, err := r.pool.Exec(ctx, q, userID, sessionID)
	return err
}

func (r *codeRepo) ClearRefresh(ctx context.Context, userID, sessionID string) error {
	const q = `
UPDATE codes
   SET needs_refresh = FALSE
 WHERE user_id = $1 AND session_id = $2 AND is_used = TRUE;
`
	_, err := r.pool.Exec(ctx, q, userID, sessionID)
	return err
}

func (r *codeRepo) scanOne(row pgx.Row) (*model.Code, error) {
	var c model.Code
	err := row.Scan(
		&c.ID, &c.UserID, &c.Code, &c.ExpiresAt, &c.Tariff, &c.IsUsed, &c.SessionID, &c.NeedsRefresh, &c.LastUsedAt, &c.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}
