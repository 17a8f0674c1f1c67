package model

import "time"

type Restaurant struct {
	ID          int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string `gorm:"type:varchar(255);not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`

	// 客が選べる支払いモードのフラグ（独立に切り替え可能）
	PrepaidEnabled  bool `gorm:"not null;default:true" json:"prepaid_enabled"`
	PostpaidEnabled bool `gorm:"not null;default:true" json:"postpaid_enabled"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
