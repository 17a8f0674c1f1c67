package model

import "time"

type Table struct {
	ID           int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	RestaurantID int64 `gorm:"not null;index" json:"restaurant_id"`

	// 店内のテーブル番号（同一店舗内で一意）
	Number int `gorm:"not null" json:"number"`

	// QRに埋め込むケイパビリティトークン。ローテーション可能、推測不可。
	QRToken string `gorm:"type:varchar(64);not null;uniqueIndex" json:"-"`

	// 物理削除はしない。無効化のみ。
	IsActive bool `gorm:"not null;default:true" json:"is_active"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
