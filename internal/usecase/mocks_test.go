package usecase

import (
	"context"
	"sync"
	"time"

	"tableservice/internal/domain/model"
	"tableservice/internal/eventbus"
	repo "tableservice/internal/repository"

	"github.com/stretchr/testify/mock"
)

// =====================
// TxManager / TxRepos mocks
// =====================

// TxManagerMock は WithinTx の中で渡す repos を固定して unit テストを回す
type TxManagerMock struct {
	mock.Mock
	Repos repo.TxRepos
}

func (m *TxManagerMock) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	// 呼ばれた事実だけ記録（ctxの具体値は問わない）
	m.Called(ctx)
	return fn(m.Repos)
}

type TxReposMock struct {
	orders     repo.OrderRepository
	orderItems repo.OrderItemRepository
	payments   repo.PaymentRepository
	menuItems  repo.MenuItemRepository
	tables     repo.TableRepository
}

func (r *TxReposMock) Orders() repo.OrderRepository         { return r.orders }
func (r *TxReposMock) OrderItems() repo.OrderItemRepository { return r.orderItems }
func (r *TxReposMock) Payments() repo.PaymentRepository     { return r.payments }
func (r *TxReposMock) MenuItems() repo.MenuItemRepository   { return r.menuItems }
func (r *TxReposMock) Tables() repo.TableRepository         { return r.tables }

// =====================
// Repository mocks
// =====================

type OrderRepoMock struct{ mock.Mock }

func (m *OrderRepoMock) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	args := m.Called(ctx, orderID)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *OrderRepoMock) Create(ctx context.Context, order model.Order) (int64, error) {
	args := m.Called(ctx, order)
	return args.Get(0).(int64), args.Error(1)
}

func (m *OrderRepoMock) UpdateStatusIfCurrent(ctx context.Context, orderID int64, expected model.OrderStatus, next model.OrderStatus, publicStatus string) (bool, error) {
	args := m.Called(ctx, orderID, expected, next, publicStatus)
	return args.Bool(0), args.Error(1)
}

func (m *OrderRepoMock) UpdateTotal(ctx context.Context, orderID int64, total int64) error {
	args := m.Called(ctx, orderID, total)
	return args.Error(0)
}

func (m *OrderRepoMock) FindLatestOpenByTableID(ctx context.Context, tableID int64) (model.Order, error) {
	args := m.Called(ctx, tableID)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *OrderRepoMock) ListByRestaurantAndStatuses(ctx context.Context, restaurantID int64, statuses []model.OrderStatus) ([]model.Order, error) {
	args := m.Called(ctx, restaurantID, statuses)
	orders, _ := args.Get(0).([]model.Order)
	return orders, args.Error(1)
}

func (m *OrderRepoMock) ListAdmin(ctx context.Context, restaurantID int64, f repo.AdminOrderListFilter) ([]model.Order, int64, error) {
	args := m.Called(ctx, restaurantID, f)
	orders, _ := args.Get(0).([]model.Order)
	return orders, args.Get(1).(int64), args.Error(2)
}

func (m *OrderRepoMock) ReportDaily(ctx context.Context, restaurantID int64, from time.Time, to time.Time) ([]repo.DailyReportRow, error) {
	args := m.Called(ctx, restaurantID, from, to)
	rows, _ := args.Get(0).([]repo.DailyReportRow)
	return rows, args.Error(1)
}

func (m *OrderRepoMock) ReportStatusCounts(ctx context.Context, restaurantID int64, from time.Time, to time.Time) ([]repo.StatusCountRow, error) {
	args := m.Called(ctx, restaurantID, from, to)
	rows, _ := args.Get(0).([]repo.StatusCountRow)
	return rows, args.Error(1)
}

type OrderItemRepoMock struct{ mock.Mock }

func (m *OrderItemRepoMock) CreateBulk(ctx context.Context, orderID int64, items []model.OrderItem) error {
	args := m.Called(ctx, orderID, items)
	return args.Error(0)
}

func (m *OrderItemRepoMock) ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error) {
	args := m.Called(ctx, orderID)
	items, _ := args.Get(0).([]model.OrderItem)
	return items, args.Error(1)
}

type PaymentRepoMock struct{ mock.Mock }

func (m *PaymentRepoMock) FindByGatewayOrderRef(ctx context.Context, ref string) (model.Payment, error) {
	args := m.Called(ctx, ref)
	p, _ := args.Get(0).(model.Payment)
	return p, args.Error(1)
}

func (m *PaymentRepoMock) Create(ctx context.Context, p model.Payment) (int64, error) {
	args := m.Called(ctx, p)
	return args.Get(0).(int64), args.Error(1)
}

func (m *PaymentRepoMock) MarkPaid(ctx context.Context, paymentID int64, orderID int64, gatewayPaymentRef string, signature string) error {
	args := m.Called(ctx, paymentID, orderID, gatewayPaymentRef, signature)
	return args.Error(0)
}

func (m *PaymentRepoMock) MarkFailed(ctx context.Context, paymentID int64, gatewayPaymentRef string, signature string) error {
	args := m.Called(ctx, paymentID, gatewayPaymentRef, signature)
	return args.Error(0)
}

func (m *PaymentRepoMock) ExistsPaidByOrderID(ctx context.Context, orderID int64) (bool, error) {
	args := m.Called(ctx, orderID)
	return args.Bool(0), args.Error(1)
}

func (m *PaymentRepoMock) ExistsPendingByOrderID(ctx context.Context, orderID int64) (bool, error) {
	args := m.Called(ctx, orderID)
	return args.Bool(0), args.Error(1)
}

type MenuItemRepoMock struct{ mock.Mock }

func (m *MenuItemRepoMock) FindByID(ctx context.Context, itemID int64) (model.MenuItem, error) {
	args := m.Called(ctx, itemID)
	mi, _ := args.Get(0).(model.MenuItem)
	return mi, args.Error(1)
}

func (m *MenuItemRepoMock) ListByRestaurantID(ctx context.Context, restaurantID int64, activeOnly bool) ([]model.MenuItem, error) {
	panic("not used in these tests")
}

func (m *MenuItemRepoMock) ListByCategoryID(ctx context.Context, categoryID int64, activeOnly bool) ([]model.MenuItem, error) {
	args := m.Called(ctx, categoryID, activeOnly)
	items, _ := args.Get(0).([]model.MenuItem)
	return items, args.Error(1)
}

func (m *MenuItemRepoMock) Create(ctx context.Context, mi model.MenuItem) (int64, error) {
	args := m.Called(ctx, mi)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MenuItemRepoMock) Update(ctx context.Context, mi model.MenuItem) error {
	args := m.Called(ctx, mi)
	return args.Error(0)
}

func (m *MenuItemRepoMock) SetActive(ctx context.Context, itemID int64, active bool) error {
	args := m.Called(ctx, itemID, active)
	return args.Error(0)
}

func (m *MenuItemRepoMock) DeactivateByCategoryID(ctx context.Context, categoryID int64) error {
	args := m.Called(ctx, categoryID)
	return args.Error(0)
}

type TableRepoMock struct{ mock.Mock }

func (m *TableRepoMock) FindByID(ctx context.Context, tableID int64) (model.Table, error) {
	args := m.Called(ctx, tableID)
	t, _ := args.Get(0).(model.Table)
	return t, args.Error(1)
}

func (m *TableRepoMock) FindByToken(ctx context.Context, token string) (model.Table, error) {
	args := m.Called(ctx, token)
	t, _ := args.Get(0).(model.Table)
	return t, args.Error(1)
}

func (m *TableRepoMock) FindByNumber(ctx context.Context, restaurantID int64, number int) (model.Table, error) {
	args := m.Called(ctx, restaurantID, number)
	t, _ := args.Get(0).(model.Table)
	return t, args.Error(1)
}

func (m *TableRepoMock) ListByRestaurantID(ctx context.Context, restaurantID int64) ([]model.Table, error) {
	args := m.Called(ctx, restaurantID)
	ts, _ := args.Get(0).([]model.Table)
	return ts, args.Error(1)
}

func (m *TableRepoMock) Create(ctx context.Context, t model.Table) (int64, error) {
	args := m.Called(ctx, t)
	return args.Get(0).(int64), args.Error(1)
}

func (m *TableRepoMock) UpdateToken(ctx context.Context, tableID int64, token string) error {
	args := m.Called(ctx, tableID, token)
	return args.Error(0)
}

func (m *TableRepoMock) SetActive(ctx context.Context, tableID int64, active bool) error {
	args := m.Called(ctx, tableID, active)
	return args.Error(0)
}

type RestaurantRepoMock struct{ mock.Mock }

func (m *RestaurantRepoMock) FindByID(ctx context.Context, restaurantID int64) (model.Restaurant, error) {
	args := m.Called(ctx, restaurantID)
	r, _ := args.Get(0).(model.Restaurant)
	return r, args.Error(1)
}

func (m *RestaurantRepoMock) FindFirst(ctx context.Context) (model.Restaurant, error) {
	panic("not used in these tests")
}

func (m *RestaurantRepoMock) Create(ctx context.Context, r model.Restaurant) (int64, error) {
	panic("not used in these tests")
}

func (m *RestaurantRepoMock) UpdateFlags(ctx context.Context, restaurantID int64, prepaidEnabled bool, postpaidEnabled bool) error {
	args := m.Called(ctx, restaurantID, prepaidEnabled, postpaidEnabled)
	return args.Error(0)
}

type UserRepoMock struct{ mock.Mock }

func (m *UserRepoMock) FindByEmail(ctx context.Context, email string) (model.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(model.User)
	return u, args.Error(1)
}

func (m *UserRepoMock) Create(ctx context.Context, u model.User) (int64, error) {
	panic("not used in these tests")
}

func (m *UserRepoMock) UpdateLastLogin(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// =====================
// Bus spy（発行されたイベントを記録するだけ）
// =====================

type BusSpy struct {
	mu     sync.Mutex
	Events []eventbus.Event
}

func (b *BusSpy) Publish(ev eventbus.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Events = append(b.Events, ev)
}

func (b *BusSpy) Subscribe(topic eventbus.Topic, h eventbus.Handler) func() {
	return func() {}
}

func (b *BusSpy) ByTopic(topic eventbus.Topic) []eventbus.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []eventbus.Event
	for _, ev := range b.Events {
		if ev.Topic == topic {
			out = append(out, ev)
		}
	}
	return out
}

// =====================
// Gateway mock
// =====================

type GatewayMock struct{ mock.Mock }

func (m *GatewayMock) CreateIntent(ctx context.Context, amount int64, currency string, metadata map[string]string) (string, error) {
	args := m.Called(ctx, amount, currency, metadata)
	return args.String(0), args.Error(1)
}

func (m *GatewayMock) Verify(ctx context.Context, orderRef string, paymentRef string, proof string) (bool, error) {
	args := m.Called(ctx, orderRef, paymentRef, proof)
	return args.Bool(0), args.Error(1)
}
