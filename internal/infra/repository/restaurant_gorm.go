package repository

import (
	"context"
	"errors"

	"tableservice/internal/domain/model"
	repo "tableservice/internal/repository"

	"gorm.io/gorm"
)

type RestaurantGormRepository struct {
	db *gorm.DB
}

func NewRestaurantGormRepository(db *gorm.DB) *RestaurantGormRepository {
	return &RestaurantGormRepository{db: db}
}

func (r *RestaurantGormRepository) FindByID(ctx context.Context, restaurantID int64) (model.Restaurant, error) {
	var m model.Restaurant
	err := r.db.WithContext(ctx).Where("id = ?", restaurantID).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Restaurant{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Restaurant{}, err
	}
	return m, nil
}

func (r *RestaurantGormRepository) FindFirst(ctx context.Context) (model.Restaurant, error) {
	var m model.Restaurant
	err := r.db.WithContext(ctx).Order("id asc").First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Restaurant{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Restaurant{}, err
	}
	return m, nil
}

func (r *RestaurantGormRepository) Create(ctx context.Context, m model.Restaurant) (int64, error) {
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return 0, err
	}
	return m.ID, nil
}

func (r *RestaurantGormRepository) UpdateFlags(ctx context.Context, restaurantID int64, prepaidEnabled bool, postpaidEnabled bool) error {
	res := r.db.WithContext(ctx).Model(&model.Restaurant{}).
		Where("id = ?", restaurantID).
		Updates(map[string]interface{}{
			"prepaid_enabled":  prepaidEnabled,
			"postpaid_enabled": postpaidEnabled,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
