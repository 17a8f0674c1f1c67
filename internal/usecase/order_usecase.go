package usecase

import (
	"context"
	"errors"
	"time"

	"tableservice/internal/domain/model"
	"tableservice/internal/eventbus"
	repo "tableservice/internal/repository"
)

type OrderUsecase struct {
	tx          repo.TransactionManager
	tables      repo.TableRepository
	restaurants repo.RestaurantRepository
	bus         eventbus.Bus
}

func NewOrderUsecase(
	tx repo.TransactionManager,
	tables repo.TableRepository,
	restaurants repo.RestaurantRepository,
	bus eventbus.Bus,
) *OrderUsecase {
	return &OrderUsecase{tx: tx, tables: tables, restaurants: restaurants, bus: bus}
}

// 客が送ってくる1行。価格はここには無い：サーバー側で必ず再価格する。
type OrderItemInput struct {
	MenuItemID int64  `json:"menu_item_id" validate:"required,gt=0"`
	Quantity   int64  `json:"quantity" validate:"required,gt=0"`
	Notes      string `json:"notes" validate:"max=500"`
}

type CreateOrderInput struct {
	Items []OrderItemInput
	Notes string
}

type OrderItemOutput struct {
	MenuItemID int64  `json:"menu_item_id"`
	Name       string `json:"name"`
	Price      int64  `json:"price"`
	Quantity   int64  `json:"quantity"`
	Notes      string `json:"notes,omitempty"`
}

type OrderOutput struct {
	ID             int64             `json:"id"`
	TableNumber    int               `json:"table_number"`
	InternalStatus string            `json:"internal_status,omitempty"`
	PublicStatus   string            `json:"public_status"`
	PaymentMode    string            `json:"payment_mode"`
	TotalAmount    int64             `json:"total_amount"`
	Notes          string            `json:"notes,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
	Items          []OrderItemOutput `json:"items"`
}

type AddItemsOutput struct {
	OrderID      int64  `json:"order_id"`
	TotalAmount  int64  `json:"total_amount"`
	AddedCount   int    `json:"added_count"`
	PublicStatus string `json:"public_status"`
}

type StatusOutput struct {
	OrderID        int64  `json:"order_id"`
	InternalStatus string `json:"internal_status"`
	PublicStatus   string `json:"public_status"`
}

// トークン→有効テーブル。客には「無効なテーブル」以上の詳細を出さない。
func (u *OrderUsecase) resolveTable(ctx context.Context, token string) (model.Table, error) {
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

// 全行をライブメニューで再価格してスナップショットを作る。
// クライアント提出の価格は一切信用しない。
func priceOrderItems(ctx context.Context, menuItems repo.MenuItemRepository, restaurantID int64, inputs []OrderItemInput) ([]model.OrderItem, int64, error) {
	if len(inputs) == 0 {
		return nil, 0, NewValidationError("order must have at least one item")
	}

	items := make([]model.OrderItem, 0, len(inputs))
	var total int64

	for _, in := range inputs {
		if in.Quantity <= 0 {
			return nil, 0, NewValidationError("quantity must be positive")
		}

		m, err := menuItems.FindByID(ctx, in.MenuItemID)
		if errors.Is(err, repo.ErrNotFound) {
			return nil, 0, NewNotFoundError("menu item not available")
		}
		if err != nil {
			return nil, 0, NewInternalError()
		}
		if !m.IsActive || m.RestaurantID != restaurantID {
			return nil, 0, NewNotFoundError("menu item not available")
		}

		items = append(items, model.OrderItem{
			MenuItemID:    m.ID,
			NameSnapshot:  m.Name,
			PriceSnapshot: m.Price,
			Quantity:      in.Quantity,
			Notes:         in.Notes,
		})
		total += m.Price * in.Quantity
	}

	return items, total, nil
}

// POSTPAID注文の作成。即時に永続化され、キッチンにすぐ見える。
func (u *OrderUsecase) CreatePostpaid(ctx context.Context, tableToken string, in CreateOrderInput) (OrderOutput, error) {
	table, err := u.resolveTable(ctx, tableToken)
	if err != nil {
		return OrderOutput{}, err
	}

	rest, err := u.restaurants.FindByID(ctx, table.RestaurantID)
	if err != nil {
		return OrderOutput{}, NewInternalError()
	}
	if !rest.PostpaidEnabled {
		return OrderOutput{}, NewValidationError("pay-later orders are not enabled")
	}

	var out OrderOutput

	// 注文＋明細はひとつのトランザクションで（片方だけ残さない）
	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		items, total, err := priceOrderItems(ctx, r.MenuItems(), table.RestaurantID, in.Items)
		if err != nil {
			return err
		}

		now := time.Now()
		orderID, err := r.Orders().Create(ctx, model.Order{
			RestaurantID:   table.RestaurantID,
			TableID:        table.ID,
			InternalStatus: model.OrderStatusPlaced,
			PublicStatus:   DerivePublicStatus(model.OrderStatusPlaced),
			PaymentMode:    model.PaymentModePostpaid,
			TotalAmount:    total,
			Notes:          in.Notes,
			CreatedAt:      now,
			UpdatedAt:      now,
		})
		if err != nil {
			return NewInternalError()
		}

		if err := r.OrderItems().CreateBulk(ctx, orderID, items); err != nil {
			return NewInternalError()
		}

		out = OrderOutput{
			ID:             orderID,
			TableNumber:    table.Number,
			InternalStatus: string(model.OrderStatusPlaced),
			PublicStatus:   DerivePublicStatus(model.OrderStatusPlaced),
			PaymentMode:    string(model.PaymentModePostpaid),
			TotalAmount:    total,
			Notes:          in.Notes,
			CreatedAt:      now,
			Items:          toItemOutputs(items),
		}
		return nil
	})
	if err != nil {
		return OrderOutput{}, err
	}

	// commit後に発行（永続化→イベントの順序を守る）
	u.bus.Publish(newOrderEvent(table, out))

	return out, nil
}

// 既存POSTPAID注文への明細追加。SERVED後・会計開始後は不可。
func (u *OrderUsecase) AddItems(ctx context.Context, tableToken string, orderID int64, inputs []OrderItemInput) (AddItemsOutput, error) {
	table, err := u.resolveTable(ctx, tableToken)
	if err != nil {
		return AddItemsOutput{}, err
	}

	var out AddItemsOutput
	var ev eventbus.Event

	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewNotFoundError("order not found")
		}
		if err != nil {
			return NewInternalError()
		}
		// 他テーブルの注文は存在しない扱い
		if o.TableID != table.ID {
			return NewNotFoundError("order not found")
		}
		if o.InternalStatus == model.OrderStatusServed {
			return NewConflictError("order already served")
		}
		// PREPAID注文の合計は検証済み支払い額に紐づく。後からの追加は不可。
		if o.PaymentMode == model.PaymentModePrepaid {
			return NewValidationError("items cannot be added to a pay-first order")
		}
		// 会計のインテントが開いたら注文は締まる（提示額と合計のずれを防ぐ）
		pending, err := r.Payments().ExistsPendingByOrderID(ctx, orderID)
		if err != nil {
			return NewInternalError()
		}
		if pending {
			return NewConflictError("bill already requested")
		}

		items, added, err := priceOrderItems(ctx, r.MenuItems(), table.RestaurantID, inputs)
		if err != nil {
			return err
		}

		if err := r.OrderItems().CreateBulk(ctx, orderID, items); err != nil {
			return NewInternalError()
		}

		newTotal := o.TotalAmount + added
		if err := r.Orders().UpdateTotal(ctx, orderID, newTotal); err != nil {
			return NewInternalError()
		}

		publicStatus := DerivePublicStatus(o.InternalStatus)
		out = AddItemsOutput{
			OrderID:      orderID,
			TotalAmount:  newTotal,
			AddedCount:   len(items),
			PublicStatus: publicStatus,
		}
		// ステータスは変わらないが、合計の更新をライブ画面へ流す
		ev = eventbus.Event{
			Topic:          eventbus.TopicOrderUpdated,
			RestaurantID:   o.RestaurantID,
			OrderID:        orderID,
			TableNumber:    table.Number,
			InternalStatus: string(o.InternalStatus),
			PublicStatus:   publicStatus,
			TotalAmount:    newTotal,
		}
		return nil
	})
	if err != nil {
		return AddItemsOutput{}, err
	}

	u.bus.Publish(ev)

	return out, nil
}

// スタッフによるステータス遷移。未知のターゲットは認可より先に弾く。
func (u *OrderUsecase) AdvanceStatus(ctx context.Context, role model.Role, restaurantID int64, orderID int64, target model.OrderStatus) (StatusOutput, error) {
	if !isValidStatus(target) {
		return StatusOutput{}, NewValidationError("unknown target status")
	}
	if !roleMayTarget(role, target) {
		return StatusOutput{}, NewAuthorizationError("role not permitted for this transition")
	}

	var out StatusOutput
	var ev eventbus.Event

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewNotFoundError("order not found")
		}
		if err != nil {
			return NewInternalError()
		}
		// 別店舗の注文は存在しない扱い
		if o.RestaurantID != restaurantID {
			return NewNotFoundError("order not found")
		}

		publicStatus := DerivePublicStatus(target)
		ok, err := r.Orders().UpdateStatusIfCurrent(ctx, orderID, o.InternalStatus, target, publicStatus)
		if err != nil {
			return NewInternalError()
		}
		if !ok {
			return NewConflictError("order status changed, retry")
		}

		table, err := r.Tables().FindByID(ctx, o.TableID)
		if err != nil {
			return NewInternalError()
		}

		out = StatusOutput{
			OrderID:        orderID,
			InternalStatus: string(target),
			PublicStatus:   publicStatus,
		}
		ev = eventbus.Event{
			Topic:          eventbus.TopicOrderUpdated,
			RestaurantID:   o.RestaurantID,
			OrderID:        orderID,
			TableNumber:    table.Number,
			InternalStatus: string(target),
			PublicStatus:   publicStatus,
			TotalAmount:    o.TotalAmount,
		}
		return nil
	})
	if err != nil {
		return StatusOutput{}, err
	}

	u.bus.Publish(ev)

	return out, nil
}

// 呼び出しイベントのみ。永続化される状態はない。
func (u *OrderUsecase) CallWaiter(ctx context.Context, tableToken string) error {
	table, err := u.resolveTable(ctx, tableToken)
	if err != nil {
		return err
	}

	u.bus.Publish(eventbus.Event{
		Topic:        eventbus.TopicCallWaiter,
		RestaurantID: table.RestaurantID,
		TableNumber:  table.Number,
	})
	return nil
}

// 客向けの注文参照（トークンのテーブルに属する注文だけ）
func (u *OrderUsecase) GetByToken(ctx context.Context, tableToken string, orderID int64) (OrderOutput, error) {
	table, err := u.resolveTable(ctx, tableToken)
	if err != nil {
		return OrderOutput{}, err
	}

	var out OrderOutput
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

		items, err := r.OrderItems().ListByOrderID(ctx, orderID)
		if err != nil {
			return NewInternalError()
		}

		out = toOrderOutput(o, table.Number, items)
		// 客向けなので内部ステータスは出さない
		out.InternalStatus = ""
		return nil
	})
	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

// テーブルの「現在開いている」POSTPAID注文（最新の未提供1件）
func (u *OrderUsecase) GetOpenByToken(ctx context.Context, tableToken string) (OrderOutput, error) {
	table, err := u.resolveTable(ctx, tableToken)
	if err != nil {
		return OrderOutput{}, err
	}

	var out OrderOutput
	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindLatestOpenByTableID(ctx, table.ID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewNotFoundError("no open order")
		}
		if err != nil {
			return NewInternalError()
		}

		items, err := r.OrderItems().ListByOrderID(ctx, o.ID)
		if err != nil {
			return NewInternalError()
		}

		out = toOrderOutput(o, table.Number, items)
		out.InternalStatus = ""
		return nil
	})
	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

// スタッフのキュー表示。kitchen=調理前後、waiter=提供待ち。
func (u *OrderUsecase) ListQueue(ctx context.Context, restaurantID int64, statuses []model.OrderStatus) ([]OrderOutput, error) {
	var outs []OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, err := r.Orders().ListByRestaurantAndStatuses(ctx, restaurantID, statuses)
		if err != nil {
			return NewInternalError()
		}

		outs = make([]OrderOutput, 0, len(orders))
		for _, o := range orders {
			items, err := r.OrderItems().ListByOrderID(ctx, o.ID)
			if err != nil {
				return NewInternalError()
			}
			table, err := r.Tables().FindByID(ctx, o.TableID)
			if err != nil {
				return NewInternalError()
			}
			outs = append(outs, toOrderOutput(o, table.Number, items))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return outs, nil
}

// 管理画面の注文一覧（ステータス・期間で絞り込み）
func (u *OrderUsecase) ListAdmin(ctx context.Context, restaurantID int64, f repo.AdminOrderListFilter) ([]OrderOutput, int64, error) {
	if f.Status != "" && !isValidStatus(model.OrderStatus(f.Status)) {
		return nil, 0, NewValidationError("unknown status filter")
	}

	var outs []OrderOutput
	var total int64

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, n, err := r.Orders().ListAdmin(ctx, restaurantID, f)
		if err != nil {
			return NewInternalError()
		}
		total = n

		outs = make([]OrderOutput, 0, len(orders))
		for _, o := range orders {
			items, err := r.OrderItems().ListByOrderID(ctx, o.ID)
			if err != nil {
				return NewInternalError()
			}
			table, err := r.Tables().FindByID(ctx, o.TableID)
			if err != nil {
				return NewInternalError()
			}
			outs = append(outs, toOrderOutput(o, table.Number, items))
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return outs, total, nil
}

func toItemOutputs(items []model.OrderItem) []OrderItemOutput {
	outs := make([]OrderItemOutput, 0, len(items))
	for _, it := range items {
		outs = append(outs, OrderItemOutput{
			MenuItemID: it.MenuItemID,
			Name:       it.NameSnapshot,
			Price:      it.PriceSnapshot,
			Quantity:   it.Quantity,
			Notes:      it.Notes,
		})
	}
	return outs
}

func toOrderOutput(o model.Order, tableNumber int, items []model.OrderItem) OrderOutput {
	return OrderOutput{
		ID:             o.ID,
		TableNumber:    tableNumber,
		InternalStatus: string(o.InternalStatus),
		PublicStatus:   o.PublicStatus,
		PaymentMode:    string(o.PaymentMode),
		TotalAmount:    o.TotalAmount,
		Notes:          o.Notes,
		CreatedAt:      o.CreatedAt,
		Items:          toItemOutputs(items),
	}
}

func newOrderEvent(table model.Table, out OrderOutput) eventbus.Event {
	evItems := make([]eventbus.EventItem, 0, len(out.Items))
	for _, it := range out.Items {
		evItems = append(evItems, eventbus.EventItem{
			Name:     it.Name,
			Quantity: it.Quantity,
			Price:    it.Price,
		})
	}
	return eventbus.Event{
		Topic:          eventbus.TopicNewOrder,
		RestaurantID:   table.RestaurantID,
		OrderID:        out.ID,
		TableNumber:    table.Number,
		InternalStatus: out.InternalStatus,
		PublicStatus:   out.PublicStatus,
		PaymentMode:    out.PaymentMode,
		TotalAmount:    out.TotalAmount,
		Notes:          out.Notes,
		Items:          evItems,
	}
}
