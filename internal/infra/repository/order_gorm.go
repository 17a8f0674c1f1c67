package repository

import (
	"context"
	"errors"
	"time"

	"tableservice/internal/domain/model"
	repo "tableservice/internal/repository"

	"gorm.io/gorm"
)

type OrderGormRepository struct {
	db *gorm.DB
}

func NewOrderGormRepository(db *gorm.DB) *OrderGormRepository {
	return &OrderGormRepository{db: db}
}

func (r *OrderGormRepository) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	var o model.Order
	err := r.db.WithContext(ctx).Where("id = ?", orderID).First(&o).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Order{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Order{}, err
	}
	return o, nil
}

func (r *OrderGormRepository) Create(ctx context.Context, order model.Order) (int64, error) {
	if err := r.db.WithContext(ctx).Create(&order).Error; err != nil {
		return 0, err
	}
	return order.ID, nil
}

func (r *OrderGormRepository) UpdateStatusIfCurrent(ctx context.Context, orderID int64, expected model.OrderStatus, next model.OrderStatus, publicStatus string) (bool, error) {
	// WHEREに期待値を含めた条件付き更新。0行なら競合（失われた更新を黙殺しない）。
	res := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ? AND internal_status = ?", orderID, expected).
		Updates(map[string]interface{}{
			"internal_status": next,
			"public_status":   publicStatus,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *OrderGormRepository) UpdateTotal(ctx context.Context, orderID int64, total int64) error {
	res := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ?", orderID).
		Update("total_amount", total)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *OrderGormRepository) FindLatestOpenByTableID(ctx context.Context, tableID int64) (model.Order, error) {
	var o model.Order
	err := r.db.WithContext(ctx).
		Where("table_id = ? AND payment_mode = ? AND internal_status <> ?",
			tableID, model.PaymentModePostpaid, model.OrderStatusServed).
		Order("id desc").
		First(&o).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Order{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Order{}, err
	}
	return o, nil
}

func (r *OrderGormRepository) ListByRestaurantAndStatuses(ctx context.Context, restaurantID int64, statuses []model.OrderStatus) ([]model.Order, error) {
	var items []model.Order
	err := r.db.WithContext(ctx).
		Where("restaurant_id = ? AND internal_status IN ?", restaurantID, statuses).
		Order("id asc").
		Find(&items).Error
	if err != nil {
		return []model.Order{}, err
	}
	return items, nil
}

func (r *OrderGormRepository) ListAdmin(ctx context.Context, restaurantID int64, f repo.AdminOrderListFilter) ([]model.Order, int64, error) {
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 50
	}

	q := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("restaurant_id = ?", restaurantID)

	if f.Status != "" {
		q = q.Where("internal_status = ?", f.Status)
	}
	if f.From != nil {
		q = q.Where("created_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("created_at <= ?", *f.To)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return []model.Order{}, 0, err
	}

	var items []model.Order
	offset := (f.Page - 1) * f.Limit
	if err := q.Order("id desc").Limit(f.Limit).Offset(offset).Find(&items).Error; err != nil {
		return []model.Order{}, 0, err
	}

	return items, total, nil
}

func (r *OrderGormRepository) ReportDaily(ctx context.Context, restaurantID int64, from time.Time, to time.Time) ([]repo.DailyReportRow, error) {
	// 売上は支払い済みの注文のみ。PREPAIDは存在＝支払い済み、
	// POSTPAIDは検証済みのpaid行が付いたものだけを数える。
	var rows []repo.DailyReportRow
	err := r.db.WithContext(ctx).Model(&model.Order{}).
		Select("date_trunc('day', orders.created_at) AS day, count(*) AS order_count, coalesce(sum(orders.total_amount), 0) AS revenue").
		Where("orders.restaurant_id = ? AND orders.created_at >= ? AND orders.created_at <= ?", restaurantID, from, to).
		Where("orders.payment_mode = ? OR EXISTS (SELECT 1 FROM payments p WHERE p.order_id = orders.id AND p.status = ? AND p.verified)",
			model.PaymentModePrepaid, model.PaymentStatusPaid).
		Group("day").
		Order("day asc").
		Scan(&rows).Error
	if err != nil {
		return []repo.DailyReportRow{}, err
	}
	return rows, nil
}

func (r *OrderGormRepository) ReportStatusCounts(ctx context.Context, restaurantID int64, from time.Time, to time.Time) ([]repo.StatusCountRow, error) {
	var rows []repo.StatusCountRow
	err := r.db.WithContext(ctx).Model(&model.Order{}).
		Select("internal_status AS status, count(*) AS count").
		Where("restaurant_id = ? AND created_at >= ? AND created_at <= ?", restaurantID, from, to).
		Group("internal_status").
		Scan(&rows).Error
	if err != nil {
		return []repo.StatusCountRow{}, err
	}
	return rows, nil
}
