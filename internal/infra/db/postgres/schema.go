package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"
)

// InitSchema creates the three tables idempotently at startup.
func InitSchema(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
  id          TEXT PRIMARY KEY,
  telegram_id BIGINT UNIQUE,
  created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
		`CREATE TABLE IF NOT EXISTS codes (
  id            TEXT PRIMARY KEY,
  user_id       TEXT NOT NULL,
  code          TEXT UNIQUE NOT NULL,
  expires_at    TIMESTAMPTZ NOT NULL,
  tariff        TEXT,
  is_used       BOOLEAN NOT NULL DEFAULT FALSE,
  session_id    TEXT,
  needs_refresh BOOLEAN NOT NULL DEFAULT FALSE,
  last_used_at  TIMESTAMPTZ,
  created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
		`CREATE TABLE IF NOT EXISTS access_logs (
  id          TEXT PRIMARY KEY,
  user_id     TEXT NOT NULL,
  code        TEXT NOT NULL,
  ip_address  TEXT NOT NULL,
  user_agent  TEXT,
  login_time  TIMESTAMPTZ NOT NULL,
  logout_time TIMESTAMPTZ,
  session_id  TEXT
);`,
		`CREATE INDEX IF NOT EXISTS idx_codes_session ON codes (user_id, session_id) WHERE is_used;`,
	}
	for _, q := range stmts {
		if _, err := pool.Exec(ctx, q); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}
