package usecase

import (
	"context"
	"testing"

	"tableservice/internal/domain/model"
	"tableservice/internal/eventbus"
	repo "tableservice/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type orderTestDeps struct {
	tm          *TxManagerMock
	orders      *OrderRepoMock
	orderItems  *OrderItemRepoMock
	payments    *PaymentRepoMock
	menuItems   *MenuItemRepoMock
	txTables    *TableRepoMock
	tables      *TableRepoMock
	restaurants *RestaurantRepoMock
	bus         *BusSpy
	uc          *OrderUsecase
}

func newOrderTestDeps() *orderTestDeps {
	d := &orderTestDeps{
		orders:      new(OrderRepoMock),
		orderItems:  new(OrderItemRepoMock),
		payments:    new(PaymentRepoMock),
		menuItems:   new(MenuItemRepoMock),
		txTables:    new(TableRepoMock),
		tables:      new(TableRepoMock),
		restaurants: new(RestaurantRepoMock),
		bus:         new(BusSpy),
	}
	d.tm = &TxManagerMock{Repos: &TxReposMock{
		orders:     d.orders,
		orderItems: d.orderItems,
		payments:   d.payments,
		menuItems:  d.menuItems,
		tables:     d.txTables,
	}}
	d.uc = NewOrderUsecase(d.tm, d.tables, d.restaurants, d.bus)
	return d
}

func TestCreatePostpaid_PricesFromLiveMenu(t *testing.T) {
	d := newOrderTestDeps()
	ctx := context.Background()

	d.tables.On("FindByToken", ctx, "tok-5").Return(model.Table{ID: 11, RestaurantID: 1, Number: 5}, nil)
	d.restaurants.On("FindByID", ctx, int64(1)).Return(model.Restaurant{ID: 1, PostpaidEnabled: true}, nil)
	d.tm.On("WithinTx", ctx).Return(nil)
	d.menuItems.On("FindByID", ctx, int64(7)).Return(model.MenuItem{
		ID: 7, RestaurantID: 1, Name: "Paneer Tikka", Price: 24900, IsActive: true,
	}, nil)

	var created model.Order
	d.orders.On("Create", ctx, mock.AnythingOfType("model.Order")).
		Run(func(args mock.Arguments) { created = args.Get(1).(model.Order) }).
		Return(int64(100), nil)
	d.orderItems.On("CreateBulk", ctx, int64(100), mock.AnythingOfType("[]model.OrderItem")).Return(nil)

	out, err := d.uc.CreatePostpaid(ctx, "tok-5", CreateOrderInput{
		Items: []OrderItemInput{{MenuItemID: 7, Quantity: 2}},
	})

	assert.NoError(t, err)
	assert.Equal(t, int64(100), out.ID)
	assert.Equal(t, 5, out.TableNumber)
	// 24900 × 2 は必ずサーバー側の価格から
	assert.Equal(t, int64(49800), out.TotalAmount)
	assert.Equal(t, string(model.OrderStatusPlaced), out.InternalStatus)
	assert.Equal(t, "Order placed", out.PublicStatus)
	assert.Len(t, out.Items, 1)
	assert.Equal(t, int64(24900), out.Items[0].Price)

	assert.Equal(t, int64(49800), created.TotalAmount)
	assert.Equal(t, model.OrderStatusPlaced, created.InternalStatus)
	assert.Equal(t, model.PaymentModePostpaid, created.PaymentMode)

	// commit後の new-order イベントにテーブル番号が入っている
	events := d.bus.ByTopic(eventbus.TopicNewOrder)
	assert.Len(t, events, 1)
	assert.Equal(t, int64(100), events[0].OrderID)
	assert.Equal(t, 5, events[0].TableNumber)
	assert.Equal(t, int64(49800), events[0].TotalAmount)
}

func TestCreatePostpaid_EmptyItems(t *testing.T) {
	d := newOrderTestDeps()
	ctx := context.Background()

	d.tables.On("FindByToken", ctx, "tok-5").Return(model.Table{ID: 11, RestaurantID: 1, Number: 5}, nil)
	d.restaurants.On("FindByID", ctx, int64(1)).Return(model.Restaurant{ID: 1, PostpaidEnabled: true}, nil)
	d.tm.On("WithinTx", ctx).Return(nil)

	_, err := d.uc.CreatePostpaid(ctx, "tok-5", CreateOrderInput{})

	ae, ok := AsAppError(err)
	assert.True(t, ok)
	assert.Equal(t, KindValidation, ae.Kind)
	d.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreatePostpaid_InactiveMenuItem(t *testing.T) {
	d := newOrderTestDeps()
	ctx := context.Background()

	d.tables.On("FindByToken", ctx, "tok-5").Return(model.Table{ID: 11, RestaurantID: 1, Number: 5}, nil)
	d.restaurants.On("FindByID", ctx, int64(1)).Return(model.Restaurant{ID: 1, PostpaidEnabled: true}, nil)
	d.tm.On("WithinTx", ctx).Return(nil)
	d.menuItems.On("FindByID", ctx, int64(7)).Return(model.MenuItem{
		ID: 7, RestaurantID: 1, Price: 24900, IsActive: false,
	}, nil)

	_, err := d.uc.CreatePostpaid(ctx, "tok-5", CreateOrderInput{
		Items: []OrderItemInput{{MenuItemID: 7, Quantity: 1}},
	})

	ae, ok := AsAppError(err)
	assert.True(t, ok)
	assert.Equal(t, KindNotFound, ae.Kind)
	d.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreatePostpaid_PostpaidDisabled(t *testing.T) {
	d := newOrderTestDeps()
	ctx := context.Background()

	d.tables.On("FindByToken", ctx, "tok-5").Return(model.Table{ID: 11, RestaurantID: 1, Number: 5}, nil)
	d.restaurants.On("FindByID", ctx, int64(1)).Return(model.Restaurant{ID: 1, PostpaidEnabled: false, PrepaidEnabled: true}, nil)

	_, err := d.uc.CreatePostpaid(ctx, "tok-5", CreateOrderInput{
		Items: []OrderItemInput{{MenuItemID: 7, Quantity: 1}},
	})

	ae, ok := AsAppError(err)
	assert.True(t, ok)
	assert.Equal(t, KindValidation, ae.Kind)
}

func TestCreatePostpaid_UnknownToken(t *testing.T) {
	d := newOrderTestDeps()
	ctx := context.Background()

	d.tables.On("FindByToken", ctx, "gone").Return(model.Table{}, repo.ErrNotFound)

	_, err := d.uc.CreatePostpaid(ctx, "gone", CreateOrderInput{
		Items: []OrderItemInput{{MenuItemID: 7, Quantity: 1}},
	})

	ae, ok := AsAppError(err)
	assert.True(t, ok)
	assert.Equal(t, KindNotFound, ae.Kind)
}

func TestAddItems_UpdatesTotalAndPublishes(t *testing.T) {
	d := newOrderTestDeps()
	ctx := context.Background()

	d.tables.On("FindByToken", ctx, "tok-5").Return(model.Table{ID: 11, RestaurantID: 1, Number: 5}, nil)
	d.tm.On("WithinTx", ctx).Return(nil)
	d.orders.On("FindByID", ctx, int64(100)).Return(model.Order{
		ID: 100, RestaurantID: 1, TableID: 11,
		InternalStatus: model.OrderStatusPreparing,
		PublicStatus:   "Being prepared",
		PaymentMode:    model.PaymentModePostpaid,
		TotalAmount:    49800,
	}, nil)
	d.payments.On("ExistsPendingByOrderID", ctx, int64(100)).Return(false, nil)
	d.menuItems.On("FindByID", ctx, int64(9)).Return(model.MenuItem{
		ID: 9, RestaurantID: 1, Name: "Lassi", Price: 9900, IsActive: true,
	}, nil)
	d.orderItems.On("CreateBulk", ctx, int64(100), mock.AnythingOfType("[]model.OrderItem")).Return(nil)
	d.orders.On("UpdateTotal", ctx, int64(100), int64(59700)).Return(nil)

	out, err := d.uc.AddItems(ctx, "tok-5", 100, []OrderItemInput{{MenuItemID: 9, Quantity: 1}})

	assert.NoError(t, err)
	assert.Equal(t, int64(59700), out.TotalAmount)
	assert.Equal(t, 1, out.AddedCount)
	// ステータスは動かない
	assert.Equal(t, "Being prepared", out.PublicStatus)

	events := d.bus.ByTopic(eventbus.TopicOrderUpdated)
	assert.Len(t, events, 1)
	assert.Equal(t, int64(59700), events[0].TotalAmount)
}

func TestAddItems_ServedOrderConflicts(t *testing.T) {
	d := newOrderTestDeps()
	ctx := context.Background()

	d.tables.On("FindByToken", ctx, "tok-5").Return(model.Table{ID: 11, RestaurantID: 1, Number: 5}, nil)
	d.tm.On("WithinTx", ctx).Return(nil)
	d.orders.On("FindByID", ctx, int64(100)).Return(model.Order{
		ID: 100, RestaurantID: 1, TableID: 11,
		InternalStatus: model.OrderStatusServed,
		PaymentMode:    model.PaymentModePostpaid,
		TotalAmount:    49800,
	}, nil)

	_, err := d.uc.AddItems(ctx, "tok-5", 100, []OrderItemInput{{MenuItemID: 9, Quantity: 1}})

	ae, ok := AsAppError(err)
	assert.True(t, ok)
	assert.Equal(t, KindConflict, ae.Kind)
	d.orderItems.AssertNotCalled(t, "CreateBulk", mock.Anything, mock.Anything, mock.Anything)
	assert.Empty(t, d.bus.Events)
}

func TestAddItems_PrepaidOrderRejected(t *testing.T) {
	d := newOrderTestDeps()
	ctx := context.Background()

	d.tables.On("FindByToken", ctx, "tok-5").Return(model.Table{ID: 11, RestaurantID: 1, Number: 5}, nil)
	d.tm.On("WithinTx", ctx).Return(nil)
	d.orders.On("FindByID", ctx, int64(100)).Return(model.Order{
		ID: 100, RestaurantID: 1, TableID: 11,
		InternalStatus: model.OrderStatusPlaced,
		PaymentMode:    model.PaymentModePrepaid,
		TotalAmount:    24900,
	}, nil)

	_, err := d.uc.AddItems(ctx, "tok-5", 100, []OrderItemInput{{MenuItemID: 9, Quantity: 1}})

	// 検証済み支払い額を超えて合計が育ってはいけない
	ae, ok := AsAppError(err)
	assert.True(t, ok)
	assert.Equal(t, KindValidation, ae.Kind)
	d.orderItems.AssertNotCalled(t, "CreateBulk", mock.Anything, mock.Anything, mock.Anything)
	d.orders.AssertNotCalled(t, "UpdateTotal", mock.Anything, mock.Anything, mock.Anything)
	assert.Empty(t, d.bus.Events)
}

func TestAddItems_PendingBillConflicts(t *testing.T) {
	d := newOrderTestDeps()
	ctx := context.Background()

	d.tables.On("FindByToken", ctx, "tok-5").Return(model.Table{ID: 11, RestaurantID: 1, Number: 5}, nil)
	d.tm.On("WithinTx", ctx).Return(nil)
	d.orders.On("FindByID", ctx, int64(100)).Return(model.Order{
		ID: 100, RestaurantID: 1, TableID: 11,
		InternalStatus: model.OrderStatusPreparing,
		PaymentMode:    model.PaymentModePostpaid,
		TotalAmount:    49800,
	}, nil)
	// 会計開始済み（status=createdのPaymentが開いている）
	d.payments.On("ExistsPendingByOrderID", ctx, int64(100)).Return(true, nil)

	_, err := d.uc.AddItems(ctx, "tok-5", 100, []OrderItemInput{{MenuItemID: 9, Quantity: 1}})

	// 提示済みの金額と合計がずれないよう、注文は締まっている
	ae, ok := AsAppError(err)
	assert.True(t, ok)
	assert.Equal(t, KindConflict, ae.Kind)
	d.orderItems.AssertNotCalled(t, "CreateBulk", mock.Anything, mock.Anything, mock.Anything)
	d.orders.AssertNotCalled(t, "UpdateTotal", mock.Anything, mock.Anything, mock.Anything)
	assert.Empty(t, d.bus.Events)
}

func TestAddItems_OtherTableOrderLooksMissing(t *testing.T) {
	d := newOrderTestDeps()
	ctx := context.Background()

	d.tables.On("FindByToken", ctx, "tok-5").Return(model.Table{ID: 11, RestaurantID: 1, Number: 5}, nil)
	d.tm.On("WithinTx", ctx).Return(nil)
	d.orders.On("FindByID", ctx, int64(100)).Return(model.Order{
		ID: 100, RestaurantID: 1, TableID: 99,
		InternalStatus: model.OrderStatusPlaced,
	}, nil)

	_, err := d.uc.AddItems(ctx, "tok-5", 100, []OrderItemInput{{MenuItemID: 9, Quantity: 1}})

	ae, ok := AsAppError(err)
	assert.True(t, ok)
	assert.Equal(t, KindNotFound, ae.Kind)
}

func TestAdvanceStatus_KitchenToPreparing(t *testing.T) {
	d := newOrderTestDeps()
	ctx := context.Background()

	d.tm.On("WithinTx", ctx).Return(nil)
	d.orders.On("FindByID", ctx, int64(100)).Return(model.Order{
		ID: 100, RestaurantID: 1, TableID: 11,
		InternalStatus: model.OrderStatusPlaced,
		TotalAmount:    49800,
	}, nil)
	d.orders.On("UpdateStatusIfCurrent", ctx, int64(100),
		model.OrderStatusPlaced, model.OrderStatusPreparing, "Being prepared").Return(true, nil)
	d.txTables.On("FindByID", ctx, int64(11)).Return(model.Table{ID: 11, Number: 5}, nil)

	out, err := d.uc.AdvanceStatus(ctx, model.RoleKitchen, 1, 100, model.OrderStatusPreparing)

	assert.NoError(t, err)
	assert.Equal(t, string(model.OrderStatusPreparing), out.InternalStatus)
	assert.Equal(t, "Being prepared", out.PublicStatus)

	events := d.bus.ByTopic(eventbus.TopicOrderUpdated)
	assert.Len(t, events, 1)
	assert.Equal(t, "Being prepared", events[0].PublicStatus)
	assert.Equal(t, 5, events[0].TableNumber)
}

func TestAdvanceStatus_WaiterCannotTargetPreparing(t *testing.T) {
	d := newOrderTestDeps()
	ctx := context.Background()

	_, err := d.uc.AdvanceStatus(ctx, model.RoleWaiter, 1, 100, model.OrderStatusPreparing)

	ae, ok := AsAppError(err)
	assert.True(t, ok)
	assert.Equal(t, KindAuthorization, ae.Kind)
	// 認可で落ちたらDBには触れない
	d.orders.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	assert.Empty(t, d.bus.Events)
}

func TestAdvanceStatus_UnknownTargetBeatsAuthorization(t *testing.T) {
	d := newOrderTestDeps()
	ctx := context.Background()

	// ウェイターには許可されない遷移でも、未知ステータスの検証が先
	_, err := d.uc.AdvanceStatus(ctx, model.RoleWaiter, 1, 100, model.OrderStatus("BOGUS"))

	ae, ok := AsAppError(err)
	assert.True(t, ok)
	assert.Equal(t, KindValidation, ae.Kind)
}

func TestAdvanceStatus_ConcurrentChangeConflicts(t *testing.T) {
	d := newOrderTestDeps()
	ctx := context.Background()

	d.tm.On("WithinTx", ctx).Return(nil)
	d.orders.On("FindByID", ctx, int64(100)).Return(model.Order{
		ID: 100, RestaurantID: 1, TableID: 11,
		InternalStatus: model.OrderStatusPlaced,
	}, nil)
	// 読み取り後に他の誰かが先に進めた
	d.orders.On("UpdateStatusIfCurrent", ctx, int64(100),
		model.OrderStatusPlaced, model.OrderStatusPreparing, "Being prepared").Return(false, nil)

	_, err := d.uc.AdvanceStatus(ctx, model.RoleKitchen, 1, 100, model.OrderStatusPreparing)

	ae, ok := AsAppError(err)
	assert.True(t, ok)
	assert.Equal(t, KindConflict, ae.Kind)
	assert.Empty(t, d.bus.Events)
}

func TestAdvanceStatus_OtherRestaurantLooksMissing(t *testing.T) {
	d := newOrderTestDeps()
	ctx := context.Background()

	d.tm.On("WithinTx", ctx).Return(nil)
	d.orders.On("FindByID", ctx, int64(100)).Return(model.Order{
		ID: 100, RestaurantID: 2, TableID: 11,
		InternalStatus: model.OrderStatusPlaced,
	}, nil)

	_, err := d.uc.AdvanceStatus(ctx, model.RoleAdmin, 1, 100, model.OrderStatusPreparing)

	ae, ok := AsAppError(err)
	assert.True(t, ok)
	assert.Equal(t, KindNotFound, ae.Kind)
}

func TestRoleTargetMatrix(t *testing.T) {
	// ロール×遷移先の全組み合わせ
	cases := []struct {
		role   model.Role
		target model.OrderStatus
		want   bool
	}{
		{model.RoleAdmin, model.OrderStatusPlaced, true},
		{model.RoleAdmin, model.OrderStatusPreparing, true},
		{model.RoleAdmin, model.OrderStatusReady, true},
		{model.RoleAdmin, model.OrderStatusServed, true},
		{model.RoleKitchen, model.OrderStatusPlaced, false},
		{model.RoleKitchen, model.OrderStatusPreparing, true},
		{model.RoleKitchen, model.OrderStatusReady, true},
		{model.RoleKitchen, model.OrderStatusServed, false},
		{model.RoleWaiter, model.OrderStatusPlaced, false},
		{model.RoleWaiter, model.OrderStatusPreparing, false},
		{model.RoleWaiter, model.OrderStatusReady, false},
		{model.RoleWaiter, model.OrderStatusServed, true},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, roleMayTarget(c.role, c.target),
			"%s -> %s", c.role, c.target)
	}
	// 未知ロールは何もできない
	assert.False(t, roleMayTarget(model.Role("INTERN"), model.OrderStatusServed))
}

func TestAdvanceStatus_KitchenCannotTargetServed(t *testing.T) {
	d := newOrderTestDeps()
	ctx := context.Background()

	_, err := d.uc.AdvanceStatus(ctx, model.RoleKitchen, 1, 100, model.OrderStatusServed)

	ae, ok := AsAppError(err)
	assert.True(t, ok)
	assert.Equal(t, KindAuthorization, ae.Kind)
	d.orders.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}

func TestDerivePublicStatus(t *testing.T) {
	assert.Equal(t, "Order placed", DerivePublicStatus(model.OrderStatusPlaced))
	assert.Equal(t, "Being prepared", DerivePublicStatus(model.OrderStatusPreparing))
	assert.Equal(t, "Almost ready", DerivePublicStatus(model.OrderStatusReady))
	assert.Equal(t, "Served", DerivePublicStatus(model.OrderStatusServed))
	assert.Equal(t, "Order placed", DerivePublicStatus(model.OrderStatus("GARBAGE")))
}

func TestCallWaiter_PublishesWithoutPersisting(t *testing.T) {
	d := newOrderTestDeps()
	ctx := context.Background()

	d.tables.On("FindByToken", ctx, "tok-5").Return(model.Table{ID: 11, RestaurantID: 1, Number: 5}, nil)

	err := d.uc.CallWaiter(ctx, "tok-5")

	assert.NoError(t, err)
	events := d.bus.ByTopic(eventbus.TopicCallWaiter)
	assert.Len(t, events, 1)
	assert.Equal(t, 5, events[0].TableNumber)
	assert.Equal(t, int64(1), events[0].RestaurantID)
	// 永続化は一切しない
	d.tm.AssertNotCalled(t, "WithinTx", mock.Anything)
}

func TestGetByToken_HidesInternalStatus(t *testing.T) {
	d := newOrderTestDeps()
	ctx := context.Background()

	d.tables.On("FindByToken", ctx, "tok-5").Return(model.Table{ID: 11, RestaurantID: 1, Number: 5}, nil)
	d.tm.On("WithinTx", ctx).Return(nil)
	d.orders.On("FindByID", ctx, int64(100)).Return(model.Order{
		ID: 100, RestaurantID: 1, TableID: 11,
		InternalStatus: model.OrderStatusReady,
		PublicStatus:   "Almost ready",
		PaymentMode:    model.PaymentModePostpaid,
		TotalAmount:    49800,
	}, nil)
	d.orderItems.On("ListByOrderID", ctx, int64(100)).Return([]model.OrderItem{
		{MenuItemID: 7, NameSnapshot: "Paneer Tikka", PriceSnapshot: 24900, Quantity: 2},
	}, nil)

	out, err := d.uc.GetByToken(ctx, "tok-5", 100)

	assert.NoError(t, err)
	assert.Empty(t, out.InternalStatus)
	assert.Equal(t, "Almost ready", out.PublicStatus)
	assert.Len(t, out.Items, 1)
}
