package order

import (
	"context"

	"go.uber.org/zap"

	"github.com/xiebiao/bookstore-checkout/internal/domain/order"
	"github.com/xiebiao/bookstore-checkout/internal/domain/payment"
	"github.com/xiebiao/bookstore-checkout/pkg/logger"
	"github.com/xiebiao/bookstore-checkout/pkg/metrics"
)

// UpdateOrderUseCase 店员修改订单状态/收货信息,支付状态按同步规则跟随
type UpdateOrderUseCase struct {
	orders    order.Repository
	payments  payment.Repository
	txManager TxManager
}

// NewUpdateOrderUseCase 创建修改订单用例
func NewUpdateOrderUseCase(orders order.Repository, payments payment.Repository, txManager TxManager) *UpdateOrderUseCase {
	return &UpdateOrderUseCase{orders: orders, payments: payments, txManager: txManager}
}

// UpdateOrderRequest Status为空表示不改状态,Shipping只覆盖非空字段
type UpdateOrderRequest struct {
	OrderID  uint
	Status   string
	Shipping order.Shipping
}

// Execute 订单和支付在同一事务中加锁更新
func (uc *UpdateOrderUseCase) Execute(ctx context.Context, req UpdateOrderRequest) (*order.Order, *payment.Payment, error) {
	var (
		o    *order.Order
		p    *payment.Payment
		from payment.Status
	)
	err := uc.txManager.Transaction(ctx, func(ctx context.Context) error {
		var err error
		if o, err = uc.orders.LockByID(ctx, req.OrderID); err != nil {
			return err
		}

		if err := o.UpdateShipping(req.Shipping); err != nil {
			return err
		}

		// 只改收货信息时不触发支付同步
		if req.Status == "" {
			if p, err = uc.payments.FindByOrderID(ctx, o.ID); err != nil {
				return err
			}
			from = p.Status
			return uc.orders.Update(ctx, o)
		}

		next, err := order.ParseStatus(req.Status)
		if err != nil {
			return err
		}
		if err := o.SetStatus(next); err != nil {
			return err
		}

		if p, err = uc.payments.LockByOrderID(ctx, o.ID); err != nil {
			return err
		}
		from = p.Status
		tr, err := payment.Reconcile(p.Method, p.Status, payment.OrderStatusChanged(o.Status))
		if err != nil {
			return err
		}
		p.SetStatus(tr.Payment)

		if err := uc.orders.Update(ctx, o); err != nil {
			return err
		}
		return uc.payments.Update(ctx, p)
	})
	if err != nil {
		return nil, nil, err
	}

	if from != p.Status {
		metrics.RecordPaymentTransition(string(p.Method), string(from), string(p.Status))
	}
	logger.FromContext(ctx).Info("订单已更新",
		zap.String("order_no", o.OrderNo),
		zap.String("status", string(o.Status)),
		zap.String("payment_status", string(p.Status)),
	)
	return o, p, nil
}
