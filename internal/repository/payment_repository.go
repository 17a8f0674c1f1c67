package repository

import (
	"context"

	"tableservice/internal/domain/model"
)

type PaymentRepository interface {
	FindByGatewayOrderRef(ctx context.Context, ref string) (model.Payment, error)
	Create(ctx context.Context, p model.Payment) (int64, error)

	// 検証結果の記録。失敗時も監査用に残す。
	MarkPaid(ctx context.Context, paymentID int64, orderID int64, gatewayPaymentRef string, signature string) error
	MarkFailed(ctx context.Context, paymentID int64, gatewayPaymentRef string, signature string) error

	// 注文に検証済みの支払いが付いているか
	ExistsPaidByOrderID(ctx context.Context, orderID int64) (bool, error)

	// 注文に未決着のインテント（status=created）が開いているか
	ExistsPendingByOrderID(ctx context.Context, orderID int64) (bool, error)
}
