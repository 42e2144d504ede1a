package payment

import (
	"github.com/xiebiao/bookstore-checkout/internal/domain/order"
)

// EventKind 驱动状态同步的事件类型
type EventKind int

const (
	// EventOrderStatusChanged 店员修改了订单状态
	EventOrderStatusChanged EventKind = iota + 1
	// EventProviderApproved 支付平台回调: 买家已付款
	EventProviderApproved
	// EventProviderCancelled 支付平台回调: 买家取消
	EventProviderCancelled
)

func (k EventKind) String() string {
	switch k {
	case EventOrderStatusChanged:
		return "order_status_changed"
	case EventProviderApproved:
		return "provider_approved"
	case EventProviderCancelled:
		return "provider_cancelled"
	default:
		return "unknown"
	}
}

// Event 同步事件
type Event struct {
	Kind EventKind
	// OrderStatus EventOrderStatusChanged时为订单的新状态
	OrderStatus order.Status
}

// OrderStatusChanged 构造订单状态变更事件
func OrderStatusChanged(s order.Status) Event {
	return Event{Kind: EventOrderStatusChanged, OrderStatus: s}
}

// Transition 事件处理结果
type Transition struct {
	Payment Status
	// Order 需要同时写入的订单状态,空表示订单状态不由本次同步决定
	Order order.Status
}

// Reconcile 按支付方式分派
func Reconcile(m Method, current Status, ev Event) (Transition, error) {
	switch m {
	case MethodCOD:
		return ReconcileCOD(current, ev)
	case MethodQR:
		return ReconcileQR(current, ev)
	case MethodPayPal:
		return ReconcilePayPal(current, ev)
	}
	return Transition{}, ErrUnsupportedMethod
}

// ReconcileCOD 货到付款: 送达即收款
//
//	PENDING/PROCESSING/SHIPPED -> PENDING
//	DELIVERED                  -> COMPLETED
//	CANCELLED/FAILED           -> FAILED
//	REFUNDED                   -> REFUNDED
func ReconcileCOD(current Status, ev Event) (Transition, error) {
	if ev.Kind != EventOrderStatusChanged {
		return Transition{}, ErrEventNotSupported
	}
	switch ev.OrderStatus {
	case order.StatusPending, order.StatusProcessing, order.StatusShipped:
		return Transition{Payment: StatusPending}, nil
	case order.StatusDelivered:
		return Transition{Payment: StatusCompleted}, nil
	case order.StatusCancelled, order.StatusFailed:
		return Transition{Payment: StatusFailed}, nil
	case order.StatusRefunded:
		return Transition{Payment: StatusRefunded}, nil
	}
	return Transition{}, order.ErrInvalidOrderStatus
}

// ReconcileQR 扫码转账: 钱已到账,发货即视为完成,取消/失败需要退款
//
//	SHIPPED/DELIVERED          -> COMPLETED
//	CANCELLED/FAILED/REFUNDED  -> REFUNDED
//	其它                       -> PENDING
func ReconcileQR(current Status, ev Event) (Transition, error) {
	if ev.Kind != EventOrderStatusChanged {
		return Transition{}, ErrEventNotSupported
	}
	switch ev.OrderStatus {
	case order.StatusShipped, order.StatusDelivered:
		return Transition{Payment: StatusCompleted}, nil
	case order.StatusCancelled, order.StatusFailed, order.StatusRefunded:
		return Transition{Payment: StatusRefunded}, nil
	case order.StatusPending, order.StatusProcessing:
		return Transition{Payment: StatusPending}, nil
	}
	return Transition{}, order.ErrInvalidOrderStatus
}

// ReconcilePayPal 支付状态只由PayPal回调驱动,订单状态变更不影响支付
func ReconcilePayPal(current Status, ev Event) (Transition, error) {
	switch ev.Kind {
	case EventOrderStatusChanged:
		if !ev.OrderStatus.IsValid() {
			return Transition{}, order.ErrInvalidOrderStatus
		}
		return Transition{Payment: current}, nil
	case EventProviderApproved:
		return Transition{Payment: StatusCompleted, Order: order.StatusProcessing}, nil
	case EventProviderCancelled:
		return Transition{Payment: StatusFailed, Order: order.StatusFailed}, nil
	}
	return Transition{}, ErrEventNotSupported
}
