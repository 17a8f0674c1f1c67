package model

import "time"

// スタッフ向けの内部ステータス。前進のみ、SERVEDが終端。
type OrderStatus string

const (
	OrderStatusPlaced    OrderStatus = "PLACED"
	OrderStatusPreparing OrderStatus = "PREPARING"
	OrderStatusReady     OrderStatus = "READY"
	OrderStatusServed    OrderStatus = "SERVED"
)

// 支払いモード。注文作成時に固定され、以後変わらない。
type PaymentMode string

const (
	PaymentModePrepaid  PaymentMode = "PREPAID"
	PaymentModePostpaid PaymentMode = "POSTPAID"
)

type Order struct {
	ID           int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	RestaurantID int64 `gorm:"not null;index" json:"restaurant_id"`
	TableID      int64 `gorm:"not null;index" json:"table_id"`

	InternalStatus OrderStatus `gorm:"type:varchar(20);not null;index" json:"internal_status"`

	// 内部ステータスから導出した客向けの表示文字列。常に再導出して保存する。
	PublicStatus string `gorm:"type:varchar(50);not null" json:"public_status"`

	PaymentMode PaymentMode `gorm:"type:varchar(20);not null" json:"payment_mode"`

	// 明細の price_at_order × quantity の合計（パイサ）
	TotalAmount int64 `gorm:"not null" json:"total_amount"`

	Notes string `gorm:"type:text" json:"notes"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
