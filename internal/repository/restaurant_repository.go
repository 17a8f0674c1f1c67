package repository

import (
	"context"
	"errors"

	"tableservice/internal/domain/model"
)

var ErrNotFound = errors.New("not found")

type RestaurantRepository interface {
	FindByID(ctx context.Context, restaurantID int64) (model.Restaurant, error)
	FindFirst(ctx context.Context) (model.Restaurant, error)
	Create(ctx context.Context, r model.Restaurant) (int64, error)
	UpdateFlags(ctx context.Context, restaurantID int64, prepaidEnabled bool, postpaidEnabled bool) error
}
