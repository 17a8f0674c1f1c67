package usecase

import "tableservice/internal/domain/model"

// 客向け表示文字列の導出。内部ステータスだけの純関数。
func DerivePublicStatus(s model.OrderStatus) string {
	switch s {
	case model.OrderStatusPlaced:
		return "Order placed"
	case model.OrderStatusPreparing:
		return "Being prepared"
	case model.OrderStatusReady:
		return "Almost ready"
	case model.OrderStatusServed:
		return "Served"
	default:
		// 既知4状態しか保存されない前提。万一でも一貫した表示に寄せる。
		return "Order placed"
	}
}

func isValidStatus(s model.OrderStatus) bool {
	switch s {
	case model.OrderStatusPlaced, model.OrderStatusPreparing,
		model.OrderStatusReady, model.OrderStatusServed:
		return true
	}
	return false
}

// ロール別に許可される遷移先。
//   KITCHEN → PREPARING / READY
//   WAITER  → SERVED
//   ADMIN   → 任意
func roleMayTarget(role model.Role, target model.OrderStatus) bool {
	switch role {
	case model.RoleAdmin:
		return true
	case model.RoleKitchen:
		return target == model.OrderStatusPreparing || target == model.OrderStatusReady
	case model.RoleWaiter:
		return target == model.OrderStatusServed
	}
	return false
}
