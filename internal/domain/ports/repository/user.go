package repository

import (
	"context"

	"codegate/internal/domain/model"
)

type UserRepository interface {
	Save(ctx context.Context, u *model.User) error
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByTelegramID(ctx context.Context, tgID int64) (*model.User, error)
}
