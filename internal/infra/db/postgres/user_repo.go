package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"codegate/internal/domain"
	"codegate/internal/domain/model"
	"codegate/internal/domain/ports/repository"
)

var _ repository.UserRepository = (*userRepo)(nil)

type userRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) repository.UserRepository {
	return &userRepo{pool: pool}
}

func (r *userRepo) Save(ctx context.Context, u *model.User) error {
	const q = `
INSERT INTO users (id, telegram_id, created_at)
VALUES ($1, $2, $3)
ON CONFLICT (id) DO UPDATE SET telegram_id = EXCLUDED.telegram_id;
`
	_, err := r.pool.Exec(ctx, q, u.ID, u.TelegramID, u.CreatedAt)
	return err
}

func (r *userRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	const q = `SELECT id, telegram_id, created_at FROM users WHERE id = $1;`
	return r.scanOne(r.pool.QueryRow(ctx, q, id))
}

func (r *userRepo) FindByTelegramID(ctx context.Context, tgID int64) (*model.User, error) {
	const q = `SELECT id, telegram_id, created_at FROM users WHERE telegram_id = $1;`
	return r.scanOne(r.pool.QueryRow(ctx, q, tgID))
}

func (r *userRepo) scanOne(row pgx.Row) (*model.User, error) {
	var u model.User
	if err := row.Scan(&u.ID, &u.TelegramID, &u.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}
