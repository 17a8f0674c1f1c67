package model

import "time"

type PaymentStatus string

const (
	PaymentStatusCreated PaymentStatus = "created"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusFailed  PaymentStatus = "failed"

	// 将来の終端状態。現状この状態へ遷移させるフローはない。
	PaymentStatusRefunded PaymentStatus = "refunded"
)

type Payment struct {
	ID           int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	RestaurantID int64 `gorm:"not null;index" json:"restaurant_id"`

	// PREPAIDでは検証成功までOrderが存在しないのでnull許容
	OrderID *int64 `gorm:"index" json:"order_id"`

	// 外部ゲートウェイの参照。mock_ プレフィックスならモックモード。
	GatewayOrderRef   string `gorm:"type:varchar(255);not null;uniqueIndex" json:"gateway_order_ref"`
	GatewayPaymentRef string `gorm:"type:varchar(255)" json:"gateway_payment_ref"`

	// クライアントが提出した署名（監査用に失敗分も残す）
	Signature string `gorm:"type:varchar(512)" json:"-"`

	Amount   int64         `gorm:"not null" json:"amount"`
	Currency string        `gorm:"type:varchar(10);not null" json:"currency"`
	Status   PaymentStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	Verified bool          `gorm:"not null;default:false" json:"verified"`

	Mode PaymentMode `gorm:"type:varchar(20);not null" json:"mode"`

	// PREPAIDの保留中注文スナップショット（JSON）。検証成功時にここから注文を作る。
	PendingOrder string `gorm:"type:text" json:"-"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
