package repository

import (
	"context"
	"errors"

	"tableservice/internal/domain/model"
	repo "tableservice/internal/repository"

	"gorm.io/gorm"
)

type MenuItemGormRepository struct {
	db *gorm.DB
}

func NewMenuItemGormRepository(db *gorm.DB) *MenuItemGormRepository {
	return &MenuItemGormRepository{db: db}
}

func (r *MenuItemGormRepository) FindByID(ctx context.Context, itemID int64) (model.MenuItem, error) {
	var m model.MenuItem
	err := r.db.WithContext(ctx).Where("id = ?", itemID).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.MenuItem{}, repo.ErrNotFound
	}
	if err != nil {
		return model.MenuItem{}, err
	}
	return m, nil
}

func (r *MenuItemGormRepository) ListByRestaurantID(ctx context.Context, restaurantID int64, activeOnly bool) ([]model.MenuItem, error) {
	q := r.db.WithContext(ctx).Where("restaurant_id = ?", restaurantID)
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}

	var items []model.MenuItem
	if err := q.Order("sort_order asc, id asc").Find(&items).Error; err != nil {
		return []model.MenuItem{}, err
	}
	return items, nil
}

func (r *MenuItemGormRepository) ListByCategoryID(ctx context.Context, categoryID int64, activeOnly bool) ([]model.MenuItem, error) {
	q := r.db.WithContext(ctx).Where("category_id = ?", categoryID)
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}

	var items []model.MenuItem
	if err := q.Order("sort_order asc, id asc").Find(&items).Error; err != nil {
		return []model.MenuItem{}, err
	}
	return items, nil
}

func (r *MenuItemGormRepository) Create(ctx context.Context, m model.MenuItem) (int64, error) {
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return 0, err
	}
	return m.ID, nil
}

func (r *MenuItemGormRepository) Update(ctx context.Context, m model.MenuItem) error {
	res := r.db.WithContext(ctx).Model(&model.MenuItem{}).
		Where("id = ?", m.ID).
		Updates(map[string]interface{}{
			"name":          m.Name,
			"description":   m.Description,
			"price":         m.Price,
			"is_vegetarian": m.IsVegetarian,
			"sort_order":    m.SortOrder,
			"category_id":   m.CategoryID,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *MenuItemGormRepository) SetActive(ctx context.Context, itemID int64, active bool) error {
	res := r.db.WithContext(ctx).Model(&model.MenuItem{}).
		Where("id = ?", itemID).
		Update("is_active", active)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *MenuItemGormRepository) DeactivateByCategoryID(ctx context.Context, categoryID int64) error {
	// 対象0件でもエラーにしない（空カテゴリの無効化は正当）
	return r.db.WithContext(ctx).Model(&model.MenuItem{}).
		Where("category_id = ?", categoryID).
		Update("is_active", false).Error
}
