package repository

import (
	"context"

	"tableservice/internal/domain/model"
)

type MenuCategoryRepository interface {
	FindByID(ctx context.Context, categoryID int64) (model.MenuCategory, error)
	ListByRestaurantID(ctx context.Context, restaurantID int64, activeOnly bool) ([]model.MenuCategory, error)
	Create(ctx context.Context, c model.MenuCategory) (int64, error)
	Update(ctx context.Context, c model.MenuCategory) error
	SetActive(ctx context.Context, categoryID int64, active bool) error
}
