package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"tableservice/internal/domain/model"
	"tableservice/internal/eventbus"
	"tableservice/internal/payment"
	repo "tableservice/internal/repository"
)

type PaymentUsecase struct {
	tx          repo.TransactionManager
	tables      repo.TableRepository
	restaurants repo.RestaurantRepository
	payments    repo.PaymentRepository
	gateway     payment.Gateway
	bus         eventbus.Bus
}

func NewPaymentUsecase(
	tx repo.TransactionManager,
	tables repo.TableRepository,
	restaurants repo.RestaurantRepository,
	payments repo.PaymentRepository,
	gateway payment.Gateway,
	bus eventbus.Bus,
) *PaymentUsecase {
	return &PaymentUsecase{
		tx:          tx,
		tables:      tables,
		restaurants: restaurants,
		payments:    payments,
		gateway:     gateway,
		bus:         bus,
	}
}

const paymentCurrency = "INR"

// PREPAIDの保留中注文。Paymentレコードに明示的に永続化する
// （行の有無から推測しない。インテント作成と検証の間の再起動にも耐える）。
type pendingOrderSnapshot struct {
	TableID int64            `json:"table_id"`
	Notes   string           `json:"notes"`
	Items   []OrderItemInput `json:"items"`
}

type BeginPaymentOutput struct {
	PaymentRef string `json:"payment_ref"`
	Amount     int64  `json:"amount"`
	Currency   string `json:"currency"`
}

type CompletePaymentOutput struct {
	OrderID      int64  `json:"order_id"`
	Verified     bool   `json:"verified"`
	PublicStatus string `json:"public_status,omitempty"`
	TotalAmount  int64  `json:"total_amount,omitempty"`
}

func (u *PaymentUsecase) resolveTable(ctx context.Context, token string) (model.Table, error) {
	if token == "" {
		return model.Table{}, NewValidationError("table token required")
	}
	t, err := u.tables.FindByToken(ctx, token)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Table{}, NewNotFoundError("invalid or expired table")
	}
	if err != nil {
		return model.Table{}, NewInternalError()
	}
	return t, nil
}

// PREPAIDのフェーズ1：合計を計算してインテントを開く。Orderはまだ作らない。
func (u *PaymentUsecase) BeginPrepaidOrder(ctx context.Context, tableToken string, in CreateOrderInput) (BeginPaymentOutput, error) {
	table, err := u.resolveTable(ctx, tableToken)
	if err != nil {
		return BeginPaymentOutput{}, err
	}

	rest, err := u.restaurants.FindByID(ctx, table.RestaurantID)
	if err != nil {
		return BeginPaymentOutput{}, NewInternalError()
	}
	if !rest.PrepaidEnabled {
		return BeginPaymentOutput{}, NewValidationError("pay-first orders are not enabled")
	}

	// 合計はサーバー側で再価格。作成はしない（読みだけ）。
	var total int64
	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		_, t, err := priceOrderItems(ctx, r.MenuItems(), table.RestaurantID, in.Items)
		if err != nil {
			return err
		}
		total = t
		return nil
	})
	if err != nil {
		return BeginPaymentOutput{}, err
	}

	ref, err := u.gateway.CreateIntent(ctx, total, paymentCurrency, map[string]string{
		"table_number": strconv.Itoa(table.Number),
		"mode":         string(model.PaymentModePrepaid),
	})
	if err != nil {
		return BeginPaymentOutput{}, NewInternalError()
	}

	snapshot, err := json.Marshal(pendingOrderSnapshot{
		TableID: table.ID,
		Notes:   in.Notes,
		Items:   in.Items,
	})
	if err != nil {
		return BeginPaymentOutput{}, NewInternalError()
	}

	_, err = u.payments.Create(ctx, model.Payment{
		RestaurantID:    table.RestaurantID,
		GatewayOrderRef: ref,
		Amount:          total,
		Currency:        paymentCurrency,
		Status:          model.PaymentStatusCreated,
		Mode:            model.PaymentModePrepaid,
		PendingOrder:    string(snapshot),
	})
	if err != nil {
		return BeginPaymentOutput{}, NewInternalError()
	}

	return BeginPaymentOutput{PaymentRef: ref, Amount: total, Currency: paymentCurrency}, nil
}

// POSTPAIDの会計開始。注文の保存済み合計に対してインテントを開く
// （明細はもう締まっているので再価格しない）。
func (u *PaymentUsecase) SettleBill(ctx context.Context, tableToken string, orderID int64) (BeginPaymentOutput, error) {
	table, err := u.resolveTable(ctx, tableToken)
	if err != nil {
		return BeginPaymentOutput{}, err
	}

	var order model.Order
	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewNotFoundError("order not found")
		}
		if err != nil {
			return NewInternalError()
		}
		if o.TableID != table.ID {
			return NewNotFoundError("order not found")
		}
		if o.PaymentMode != model.PaymentModePostpaid {
			return NewValidationError("order is not a pay-later order")
		}

		paid, err := r.Payments().ExistsPaidByOrderID(ctx, orderID)
		if err != nil {
			return NewInternalError()
		}
		if paid {
			return NewConflictError("order already paid")
		}

		order = o
		return nil
	})
	if err != nil {
		return BeginPaymentOutput{}, err
	}

	ref, err := u.gateway.CreateIntent(ctx, order.TotalAmount, paymentCurrency, map[string]string{
		"table_number": strconv.Itoa(table.Number),
		"order_id":     strconv.FormatInt(orderID, 10),
		"mode":         string(model.PaymentModePostpaid),
	})
	if err != nil {
		return BeginPaymentOutput{}, NewInternalError()
	}

	_, err = u.payments.Create(ctx, model.Payment{
		RestaurantID:    table.RestaurantID,
		OrderID:         &order.ID,
		GatewayOrderRef: ref,
		Amount:          order.TotalAmount,
		Currency:        paymentCurrency,
		Status:          model.PaymentStatusCreated,
		Mode:            model.PaymentModePostpaid,
	})
	if err != nil {
		return BeginPaymentOutput{}, NewInternalError()
	}

	return BeginPaymentOutput{PaymentRef: ref, Amount: order.TotalAmount, Currency: paymentCurrency}, nil
}

// 検証の入口。保存されたモードで PREPAID完了 / 会計完了 に振り分ける。
func (u *PaymentUsecase) Complete(ctx context.Context, gatewayOrderRef string, gatewayPaymentRef string, proof string) (CompletePaymentOutput, error) {
	p, err := u.payments.FindByGatewayOrderRef(ctx, gatewayOrderRef)
	if errors.Is(err, repo.ErrNotFound) {
		return CompletePaymentOutput{}, NewNotFoundError("payment not found")
	}
	if err != nil {
		return CompletePaymentOutput{}, NewInternalError()
	}

	// 同じ支払いの再提出は保存済みの結果を返す
	if p.Status == model.PaymentStatusPaid && p.Verified && p.OrderID != nil {
		return CompletePaymentOutput{OrderID: *p.OrderID, Verified: true}, nil
	}
	if p.Status == model.PaymentStatusFailed {
		return CompletePaymentOutput{}, NewVerificationFailedError("payment verification failed")
	}

	ok, err := u.gateway.Verify(ctx, gatewayOrderRef, gatewayPaymentRef, proof)
	if err != nil {
		return CompletePaymentOutput{}, NewInternalError()
	}
	if !ok {
		// 失敗も監査のために記録する。Orderは決して作らない。
		if err := u.payments.MarkFailed(ctx, p.ID, gatewayPaymentRef, proof); err != nil {
			return CompletePaymentOutput{}, NewInternalError()
		}
		return CompletePaymentOutput{}, NewVerificationFailedError("payment verification failed")
	}

	if p.Mode == model.PaymentModePrepaid {
		return u.completePrepaid(ctx, p, gatewayPaymentRef, proof)
	}
	return u.completeSettlement(ctx, p, gatewayPaymentRef, proof)
}

// 検証済みPREPAIDの注文作成。ここで初めてOrderが生まれる：
// 未払いのPREPAID注文は決してキッチンに届かない。
func (u *PaymentUsecase) completePrepaid(ctx context.Context, p model.Payment, gatewayPaymentRef string, proof string) (CompletePaymentOutput, error) {
	var snapshot pendingOrderSnapshot
	if err := json.Unmarshal([]byte(p.PendingOrder), &snapshot); err != nil {
		return CompletePaymentOutput{}, NewInternalError()
	}

	var out CompletePaymentOutput
	var ev eventbus.Event

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		table, err := r.Tables().FindByID(ctx, snapshot.TableID)
		if err != nil {
			return NewInternalError()
		}

		// 検証完了時点のライブメニューで再価格
		items, total, err := priceOrderItems(ctx, r.MenuItems(), p.RestaurantID, snapshot.Items)
		if err != nil {
			return err
		}

		now := time.Now()
		orderID, err := r.Orders().Create(ctx, model.Order{
			RestaurantID:   p.RestaurantID,
			TableID:        snapshot.TableID,
			InternalStatus: model.OrderStatusPlaced,
			PublicStatus:   DerivePublicStatus(model.OrderStatusPlaced),
			PaymentMode:    model.PaymentModePrepaid,
			TotalAmount:    total,
			Notes:          snapshot.Notes,
			CreatedAt:      now,
			UpdatedAt:      now,
		})
		if err != nil {
			return NewInternalError()
		}

		if err := r.OrderItems().CreateBulk(ctx, orderID, items); err != nil {
			return NewInternalError()
		}

		// Payment→Orderのリンクバックも同一トランザクションで
		if err := r.Payments().MarkPaid(ctx, p.ID, orderID, gatewayPaymentRef, proof); err != nil {
			return NewInternalError()
		}

		out = CompletePaymentOutput{
			OrderID:      orderID,
			Verified:     true,
			PublicStatus: DerivePublicStatus(model.OrderStatusPlaced),
			TotalAmount:  total,
		}

		evItems := make([]eventbus.EventItem, 0, len(items))
		for _, it := range items {
			evItems = append(evItems, eventbus.EventItem{
				Name:     it.NameSnapshot,
				Quantity: it.Quantity,
				Price:    it.PriceSnapshot,
			})
		}
		ev = eventbus.Event{
			Topic:          eventbus.TopicNewOrder,
			RestaurantID:   p.RestaurantID,
			OrderID:        orderID,
			TableNumber:    table.Number,
			InternalStatus: string(model.OrderStatusPlaced),
			PublicStatus:   DerivePublicStatus(model.OrderStatusPlaced),
			PaymentMode:    string(model.PaymentModePrepaid),
			TotalAmount:    total,
			Notes:          snapshot.Notes,
			Items:          evItems,
		}
		return nil
	})
	if err != nil {
		return CompletePaymentOutput{}, err
	}

	u.bus.Publish(ev)

	return out, nil
}

// 会計の完了。支払いを検証済みにするだけで、注文ステータスには触れない。
func (u *PaymentUsecase) completeSettlement(ctx context.Context, p model.Payment, gatewayPaymentRef string, proof string) (CompletePaymentOutput, error) {
	if p.OrderID == nil {
		return CompletePaymentOutput{}, NewInternalError()
	}
	if err := u.payments.MarkPaid(ctx, p.ID, *p.OrderID, gatewayPaymentRef, proof); err != nil {
		return CompletePaymentOutput{}, NewInternalError()
	}
	return CompletePaymentOutput{OrderID: *p.OrderID, Verified: true}, nil
}
