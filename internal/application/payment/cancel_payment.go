package payment

import (
	"context"

	"go.uber.org/zap"

	"github.com/xiebiao/bookstore-checkout/internal/domain/notification"
	"github.com/xiebiao/bookstore-checkout/internal/domain/order"
	"github.com/xiebiao/bookstore-checkout/internal/domain/payment"
	"github.com/xiebiao/bookstore-checkout/internal/domain/user"
	"github.com/xiebiao/bookstore-checkout/pkg/logger"
)

// CancelPaymentUseCase 买家在支付平台取消
type CancelPaymentUseCase struct {
	deps
}

// NewCancelPaymentUseCase 创建取消支付用例
func NewCancelPaymentUseCase(
	orders order.Repository,
	payments payment.Repository,
	users user.Repository,
	registry *payment.Registry,
	lock CallbackLock,
	notifier notification.Notifier,
	txManager TxManager,
) *CancelPaymentUseCase {
	return &CancelPaymentUseCase{deps{
		orders:    orders,
		payments:  payments,
		users:     users,
		registry:  registry,
		lock:      lock,
		notifier:  notifier,
		txManager: txManager,
	}}
}

// Execute 支付和订单都置为FAILED;已完成的支付不能取消
func (uc *CancelPaymentUseCase) Execute(ctx context.Context, transactionID string) (*Result, error) {
	p, err := uc.payments.FindByTransactionID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if p.IsCompleted() {
		return nil, payment.ErrInvalidPaymentStatus.WithMessage("支付已完成,不能取消")
	}

	release, err := uc.lock.Acquire(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	defer release()

	if p, err = uc.payments.FindByTransactionID(ctx, transactionID); err != nil {
		return nil, err
	}
	if p.IsCompleted() {
		return nil, payment.ErrInvalidPaymentStatus.WithMessage("支付已完成,不能取消")
	}

	strategy, err := uc.registry.Select(p.Method)
	if err != nil {
		return nil, err
	}
	tr, err := strategy.Reconcile(p.Status, payment.Event{Kind: payment.EventProviderCancelled})
	if err != nil {
		return nil, err
	}

	o, p, err := uc.settle(ctx, p.OrderID, tr)
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info("支付已取消",
		zap.String("order_no", o.OrderNo),
		zap.String("transaction_id", transactionID),
	)
	uc.notify(ctx, notification.KindPaymentCancelled, o.ID, p, notification.PaymentCancelledEmail)
	return &Result{Order: o, Payment: p}, nil
}
