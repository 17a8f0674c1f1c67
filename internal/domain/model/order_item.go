package model

import "time"

type OrderItem struct {
	ID         int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID    int64 `gorm:"not null;index" json:"order_id"`
	MenuItemID int64 `gorm:"not null;index" json:"menu_item_id"`

	// 注文時点のスナップショット。メニューが後で変わっても書き換えない。
	NameSnapshot  string `gorm:"type:varchar(255);not null" json:"name_snapshot"`
	PriceSnapshot int64  `gorm:"not null" json:"price_snapshot"`

	Quantity int64  `gorm:"not null" json:"quantity"`
	Notes    string `gorm:"type:text" json:"notes"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}
