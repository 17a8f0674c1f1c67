package model

import "time"

type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleKitchen Role = "KITCHEN"
	RoleWaiter  Role = "WAITER"
)

// スタッフアカウント。客はアカウントを持たない（テーブルトークンで認可）。
type User struct {
	ID           int64  `gorm:"primaryKey;autoIncrement"`
	RestaurantID int64  `gorm:"not null;index"`
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"column:password_hash;not null"`
	Role         Role   `gorm:"type:varchar(20);not null"`
	IsActive     bool   `gorm:"not null;default:true"`
	LastLoginAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
