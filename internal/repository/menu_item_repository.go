package repository

import (
	"context"

	"tableservice/internal/domain/model"
)

type MenuItemRepository interface {
	FindByID(ctx context.Context, itemID int64) (model.MenuItem, error)
	ListByRestaurantID(ctx context.Context, restaurantID int64, activeOnly bool) ([]model.MenuItem, error)
	ListByCategoryID(ctx context.Context, categoryID int64, activeOnly bool) ([]model.MenuItem, error)
	Create(ctx context.Context, m model.MenuItem) (int64, error)
	Update(ctx context.Context, m model.MenuItem) error
	SetActive(ctx context.Context, itemID int64, active bool) error

	// カテゴリ無効化のカスケード用
	DeactivateByCategoryID(ctx context.Context, categoryID int64) error
}
