package repository

import (
	"context"
	"time"

	"tableservice/internal/domain/model"
)

type AdminOrderListFilter struct {
	Page   int
	Limit  int
	Status string
	From   *time.Time
	To     *time.Time
}

// 日次レポートの1行（合計はパイサ）
type DailyReportRow struct {
	Day        time.Time
	OrderCount int64
	Revenue    int64
}

type StatusCountRow struct {
	Status model.OrderStatus
	Count  int64
}

type OrderRepository interface {
	FindByID(ctx context.Context, orderID int64) (model.Order, error)
	Create(ctx context.Context, order model.Order) (int64, error)

	// 条件付き更新：internal_statusが期待値のままの行だけを書き換える。
	// 競合で書けなかった場合は false を返す（エラーではない）。
	UpdateStatusIfCurrent(ctx context.Context, orderID int64, expected model.OrderStatus, next model.OrderStatus, publicStatus string) (bool, error)

	UpdateTotal(ctx context.Context, orderID int64, total int64) error

	// テーブルの「現在開いている」POSTPAID注文（未提供のうち最新の1件）。
	// 一意制約ではなくクエリでの読み取り。
	FindLatestOpenByTableID(ctx context.Context, tableID int64) (model.Order, error)

	ListByRestaurantAndStatuses(ctx context.Context, restaurantID int64, statuses []model.OrderStatus) ([]model.Order, error)
	ListAdmin(ctx context.Context, restaurantID int64, f AdminOrderListFilter) ([]model.Order, int64, error)

	ReportDaily(ctx context.Context, restaurantID int64, from time.Time, to time.Time) ([]DailyReportRow, error)
	ReportStatusCounts(ctx context.Context, restaurantID int64, from time.Time, to time.Time) ([]StatusCountRow, error)
}
