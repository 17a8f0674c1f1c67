package repository

import (
	"context"

	"tableservice/internal/domain/model"
)

type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (model.User, error)
	Create(ctx context.Context, u model.User) (int64, error)
	UpdateLastLogin(ctx context.Context, userID int64) error
}
