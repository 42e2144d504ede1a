package order

import (
	"context"

	"go.uber.org/zap"

	"github.com/xiebiao/bookstore-checkout/internal/domain/order"
	"github.com/xiebiao/bookstore-checkout/internal/domain/user"
	"github.com/xiebiao/bookstore-checkout/pkg/logger"
)

// CancelOrderUseCase 取消订单
// 只改订单状态,支付记录保持不变;需要同步支付时由店员走UpdateOrderUseCase
type CancelOrderUseCase struct {
	orders    order.Repository
	users     user.Repository
	txManager TxManager
}

// NewCancelOrderUseCase 创建取消订单用例
func NewCancelOrderUseCase(orders order.Repository, users user.Repository, txManager TxManager) *CancelOrderUseCase {
	return &CancelOrderUseCase{orders: orders, users: users, txManager: txManager}
}

// Execute 订单所属用户或店员可以取消
func (uc *CancelOrderUseCase) Execute(ctx context.Context, orderID, operatorID uint) (*order.Order, error) {
	var o *order.Order
	err := uc.txManager.Transaction(ctx, func(ctx context.Context) error {
		var err error
		if o, err = uc.orders.LockByID(ctx, orderID); err != nil {
			return err
		}
		if err := authorize(ctx, uc.users, o, operatorID); err != nil {
			return err
		}
		if err := o.SetStatus(order.StatusCancelled); err != nil {
			return err
		}
		return uc.orders.Update(ctx, o)
	})
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info("订单已取消", zap.String("order_no", o.OrderNo), zap.Uint("operator_id", operatorID))
	return o, nil
}
