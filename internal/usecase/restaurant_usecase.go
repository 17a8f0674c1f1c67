package usecase

import (
	"context"
	"errors"

	"tableservice/internal/domain/model"
	repo "tableservice/internal/repository"
)

type RestaurantUsecase struct {
	restaurants repo.RestaurantRepository
}

func NewRestaurantUsecase(restaurants repo.RestaurantRepository) *RestaurantUsecase {
	return &RestaurantUsecase{restaurants: restaurants}
}

func (u *RestaurantUsecase) Get(ctx context.Context, restaurantID int64) (model.Restaurant, error) {
	r, err := u.restaurants.FindByID(ctx, restaurantID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Restaurant{}, NewNotFoundError("restaurant not found")
	}
	if err != nil {
		return model.Restaurant{}, NewInternalError()
	}
	return r, nil
}

type PaymentFlagsInput struct {
	PrepaidEnabled  bool `json:"prepaid_enabled"`
	PostpaidEnabled bool `json:"postpaid_enabled"`
}

// 支払いモードのフラグ更新。両方無効は注文手段が無くなるので弾く。
func (u *RestaurantUsecase) UpdatePaymentFlags(ctx context.Context, restaurantID int64, in PaymentFlagsInput) error {
	if !in.PrepaidEnabled && !in.PostpaidEnabled {
		return NewValidationError("at least one payment mode must be enabled")
	}

	err := u.restaurants.UpdateFlags(ctx, restaurantID, in.PrepaidEnabled, in.PostpaidEnabled)
	if errors.Is(err, repo.ErrNotFound) {
		return NewNotFoundError("restaurant not found")
	}
	if err != nil {
		return NewInternalError()
	}
	return nil
}
