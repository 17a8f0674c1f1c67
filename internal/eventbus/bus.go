package eventbus

import "sync"

type Topic string

const (
	TopicNewOrder     Topic = "new-order"
	TopicOrderUpdated Topic = "order-updated"
	TopicCallWaiter   Topic = "call-waiter"
)

type EventItem struct {
	Name     string `json:"name"`
	Quantity int64  `json:"quantity"`
	Price    int64  `json:"price"`
}

// Busを流れるイベント。購読側が追加の検索をせずに済むよう
// テーブル番号などは発行時に非正規化して詰める。
type Event struct {
	Topic          Topic       `json:"-"`
	RestaurantID   int64       `json:"restaurant_id"`
	OrderID        int64       `json:"order_id,omitempty"`
	TableNumber    int         `json:"table_number,omitempty"`
	InternalStatus string      `json:"internal_status,omitempty"`
	PublicStatus   string      `json:"public_status,omitempty"`
	PaymentMode    string      `json:"payment_mode,omitempty"`
	TotalAmount    int64       `json:"total_amount,omitempty"`
	Notes          string      `json:"notes,omitempty"`
	Items          []EventItem `json:"items,omitempty"`
}

type Handler func(ev Event)

// プロセス内のpub/sub。永続化もリプレイもしない。
// Publishは同期ファンアウト：呼び出し時点の購読者へ登録順に配る。
type Bus interface {
	Publish(ev Event)
	Subscribe(topic Topic, h Handler) (unsubscribe func())
}

type subscription struct {
	id int64
	h  Handler
}

type InMemoryBus struct {
	mu     sync.RWMutex
	nextID int64
	subs   map[Topic][]subscription
}

func NewInMemoryBus() *InMemoryBus {
	return &InMemoryBus{subs: make(map[Topic][]subscription)}
}

func (b *InMemoryBus) Publish(ev Event) {
	// 配送中のSubscribe/Unsubscribeと衝突しないようスナップショットを取る
	b.mu.RLock()
	list := make([]subscription, len(b.subs[ev.Topic]))
	copy(list, b.subs[ev.Topic])
	b.mu.RUnlock()

	for _, s := range list {
		s.h(ev)
	}
}

func (b *InMemoryBus) Subscribe(topic Topic, h Handler) func() {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.subs[topic] = append(b.subs[topic], subscription{id: id, h: h})
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			list := b.subs[topic]
			for i, s := range list {
				if s.id == id {
					b.subs[topic] = append(list[:i], list[i+1:]...)
					break
				}
			}
			b.mu.Unlock()
		})
	}
}
