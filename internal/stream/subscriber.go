package stream

import (
	"time"

	"tableservice/internal/eventbus"
)

// 中継プロキシのアイドルタイムアウト対策
const KeepaliveInterval = 30 * time.Second

// 1購読あたりのバッファ。詰まった購読者にはイベントを落とす。
const bufferSize = 32

// SSEで送る1件分
type Message struct {
	Name    string
	Payload interface{}
}

// 客向けに絞った payload。内部ステータス等は載せない。
type CustomerOrderUpdate struct {
	OrderID      int64  `json:"order_id"`
	PublicStatus string `json:"public_status"`
}

// Subscriber は1本のライブ接続に対応する。取得はコンストラクタ、
// 解放は必ず Close（ハンドラ側で defer する）。
type Subscriber struct {
	ch      chan Message
	cancels []func()
}

func (s *Subscriber) Messages() <-chan Message {
	return s.ch
}

// Busから全ハンドラを外す。以後イベントは届かない。
func (s *Subscriber) Close() {
	for _, cancel := range s.cancels {
		cancel()
	}
}

// 送信はベストエフォート。満杯なら落として発行側をブロックしない。
func (s *Subscriber) enqueue(m Message) {
	select {
	case s.ch <- m:
	default:
	}
}

// 店舗スコープのフィルタ。キッチンとウェイターは同じ3トピックを受ける
// （違いは受けた後のクライアント側の扱いだけ）。
func newRestaurantSubscriber(bus eventbus.Bus, restaurantID int64) *Subscriber {
	s := &Subscriber{ch: make(chan Message, bufferSize)}

	for _, topic := range []eventbus.Topic{
		eventbus.TopicNewOrder,
		eventbus.TopicOrderUpdated,
		eventbus.TopicCallWaiter,
	} {
		name := string(topic)
		cancel := bus.Subscribe(topic, func(ev eventbus.Event) {
			if ev.RestaurantID != restaurantID {
				return
			}
			s.enqueue(Message{Name: name, Payload: ev})
		})
		s.cancels = append(s.cancels, cancel)
	}

	return s
}

func NewKitchenSubscriber(bus eventbus.Bus, restaurantID int64) *Subscriber {
	return newRestaurantSubscriber(bus, restaurantID)
}

func NewWaiterSubscriber(bus eventbus.Bus, restaurantID int64) *Subscriber {
	return newRestaurantSubscriber(bus, restaurantID)
}

// 注文スコープのフィルタ。order-updatedのみ、payloadは客向けに射影する。
func NewOrderSubscriber(bus eventbus.Bus, orderID int64) *Subscriber {
	s := &Subscriber{ch: make(chan Message, bufferSize)}

	cancel := bus.Subscribe(eventbus.TopicOrderUpdated, func(ev eventbus.Event) {
		if ev.OrderID != orderID {
			return
		}
		s.enqueue(Message{
			Name: string(eventbus.TopicOrderUpdated),
			Payload: CustomerOrderUpdate{
				OrderID:      ev.OrderID,
				PublicStatus: ev.PublicStatus,
			},
		})
	})
	s.cancels = append(s.cancels, cancel)

	return s
}
