package repository

import (
	"context"

	"tableservice/internal/domain/model"
)

type TableRepository interface {
	FindByID(ctx context.Context, tableID int64) (model.Table, error)

	// 有効なテーブルだけを返す。無効化済みや未知のトークンは ErrNotFound。
	FindByToken(ctx context.Context, token string) (model.Table, error)

	FindByNumber(ctx context.Context, restaurantID int64, number int) (model.Table, error)
	ListByRestaurantID(ctx context.Context, restaurantID int64) ([]model.Table, error)
	Create(ctx context.Context, t model.Table) (int64, error)
	UpdateToken(ctx context.Context, tableID int64, token string) error
	SetActive(ctx context.Context, tableID int64, active bool) error
}
