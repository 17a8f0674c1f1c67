package model

import "time"

type MenuItem struct {
	ID         int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	CategoryID int64 `gorm:"not null;index" json:"category_id"`

	// カテゴリ経由でも辿れるが、店舗単位のクエリ用に非正規化して持つ
	RestaurantID int64 `gorm:"not null;index" json:"restaurant_id"`

	Name        string `gorm:"type:varchar(255);not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`

	// 最小通貨単位（パイサ）。既存注文はスナップショットを持つので変更自由。
	Price int64 `gorm:"not null" json:"price"`

	IsVegetarian bool `gorm:"not null;default:false" json:"is_vegetarian"`
	IsActive     bool `gorm:"not null;default:true" json:"is_active"`
	SortOrder    int  `gorm:"not null;default:0" json:"sort_order"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
