package repository

import (
	"context"
	"errors"

	"tableservice/internal/domain/model"
	repo "tableservice/internal/repository"

	"gorm.io/gorm"
)

type TableGormRepository struct {
	db *gorm.DB
}

func NewTableGormRepository(db *gorm.DB) *TableGormRepository {
	return &TableGormRepository{db: db}
}

func (r *TableGormRepository) FindByID(ctx context.Context, tableID int64) (model.Table, error) {
	var t model.Table
	err := r.db.WithContext(ctx).Where("id = ?", tableID).First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Table{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Table{}, err
	}
	return t, nil
}

func (r *TableGormRepository) FindByToken(ctx context.Context, token string) (model.Table, error) {
	var t model.Table
	// ローテーション済みトークンは別の値に置き換わっているので自然に弾かれる
	err := r.db.WithContext(ctx).
		Where("qr_token = ? AND is_active = ?", token, true).
		First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Table{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Table{}, err
	}
	return t, nil
}

func (r *TableGormRepository) FindByNumber(ctx context.Context, restaurantID int64, number int) (model.Table, error) {
	var t model.Table
	err := r.db.WithContext(ctx).
		Where("restaurant_id = ? AND number = ?", restaurantID, number).
		First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Table{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Table{}, err
	}
	return t, nil
}

func (r *TableGormRepository) ListByRestaurantID(ctx context.Context, restaurantID int64) ([]model.Table, error) {
	var items []model.Table
	err := r.db.WithContext(ctx).
		Where("restaurant_id = ?", restaurantID).
		Order("number asc").
		Find(&items).Error
	if err != nil {
		return []model.Table{}, err
	}
	return items, nil
}

func (r *TableGormRepository) Create(ctx context.Context, t model.Table) (int64, error) {
	if err := r.db.WithContext(ctx).Create(&t).Error; err != nil {
		return 0, err
	}
	return t.ID, nil
}

func (r *TableGormRepository) UpdateToken(ctx context.Context, tableID int64, token string) error {
	res := r.db.WithContext(ctx).Model(&model.Table{}).
		Where("id = ?", tableID).
		Update("qr_token", token)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *TableGormRepository) SetActive(ctx context.Context, tableID int64, active bool) error {
	res := r.db.WithContext(ctx).Model(&model.Table{}).
		Where("id = ?", tableID).
		Update("is_active", active)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
