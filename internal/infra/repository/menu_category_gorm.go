package repository

import (
	"context"
	"errors"

	"tableservice/internal/domain/model"
	repo "tableservice/internal/repository"

	"gorm.io/gorm"
)

type MenuCategoryGormRepository struct {
	db *gorm.DB
}

func NewMenuCategoryGormRepository(db *gorm.DB) *MenuCategoryGormRepository {
	return &MenuCategoryGormRepository{db: db}
}

func (r *MenuCategoryGormRepository) FindByID(ctx context.Context, categoryID int64) (model.MenuCategory, error) {
	var c model.MenuCategory
	err := r.db.WithContext(ctx).Where("id = ?", categoryID).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.MenuCategory{}, repo.ErrNotFound
	}
	if err != nil {
		return model.MenuCategory{}, err
	}
	return c, nil
}

func (r *MenuCategoryGormRepository) ListByRestaurantID(ctx context.Context, restaurantID int64, activeOnly bool) ([]model.MenuCategory, error) {
	q := r.db.WithContext(ctx).Where("restaurant_id = ?", restaurantID)
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}

	var items []model.MenuCategory
	if err := q.Order("sort_order asc, id asc").Find(&items).Error; err != nil {
		return []model.MenuCategory{}, err
	}
	return items, nil
}

func (r *MenuCategoryGormRepository) Create(ctx context.Context, c model.MenuCategory) (int64, error) {
	if err := r.db.WithContext(ctx).Create(&c).Error; err != nil {
		return 0, err
	}
	return c.ID, nil
}

func (r *MenuCategoryGormRepository) Update(ctx context.Context, c model.MenuCategory) error {
	res := r.db.WithContext(ctx).Model(&model.MenuCategory{}).
		Where("id = ?", c.ID).
		Updates(map[string]interface{}{
			"name":        c.Name,
			"description": c.Description,
			"sort_order":  c.SortOrder,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *MenuCategoryGormRepository) SetActive(ctx context.Context, categoryID int64, active bool) error {
	res := r.db.WithContext(ctx).Model(&model.MenuCategory{}).
		Where("id = ?", categoryID).
		Update("is_active", active)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
