package model

import "time"

type MenuCategory struct {
	ID           int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	RestaurantID int64  `gorm:"not null;index" json:"restaurant_id"`
	Name         string `gorm:"type:varchar(255);not null" json:"name"`
	Description  string `gorm:"type:text" json:"description"`
	SortOrder    int    `gorm:"not null;default:0" json:"sort_order"`

	// 無効化は配下のMenuItemにもカスケードする（usecase側で実施）
	IsActive bool `gorm:"not null;default:true" json:"is_active"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
