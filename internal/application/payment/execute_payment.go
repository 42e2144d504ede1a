package payment

import (
	"context"

	"go.uber.org/zap"

	"github.com/xiebiao/bookstore-checkout/internal/domain/notification"
	"github.com/xiebiao/bookstore-checkout/internal/domain/order"
	"github.com/xiebiao/bookstore-checkout/internal/domain/payment"
	"github.com/xiebiao/bookstore-checkout/internal/domain/user"
	"github.com/xiebiao/bookstore-checkout/pkg/logger"
	"github.com/xiebiao/bookstore-checkout/pkg/tracing"
)

// ExecutePaymentUseCase 买家授权后扣款
type ExecutePaymentUseCase struct {
	deps
}

// NewExecutePaymentUseCase 创建扣款用例
func NewExecutePaymentUseCase(
	orders order.Repository,
	payments payment.Repository,
	users user.Repository,
	registry *payment.Registry,
	lock CallbackLock,
	notifier notification.Notifier,
	txManager TxManager,
) *ExecutePaymentUseCase {
	return &ExecutePaymentUseCase{deps{
		orders:    orders,
		payments:  payments,
		users:     users,
		registry:  registry,
		lock:      lock,
		notifier:  notifier,
		txManager: txManager,
	}}
}

// Execute 已完成的支付直接返回,不会重复扣款
func (uc *ExecutePaymentUseCase) Execute(ctx context.Context, transactionID, payerID string) (res *Result, err error) {
	ctx, span := tracing.StartSpan(ctx, "payment.execute")
	defer func() { tracing.EndSpan(span, err) }()

	p, err := uc.payments.FindByTransactionID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if p.IsCompleted() {
		return uc.replay(ctx, p)
	}

	release, err := uc.lock.Acquire(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	defer release()

	// 等锁期间可能已被另一个回调处理完
	if p, err = uc.payments.FindByTransactionID(ctx, transactionID); err != nil {
		return nil, err
	}
	if p.IsCompleted() {
		return uc.replay(ctx, p)
	}

	strategy, err := uc.registry.Select(p.Method)
	if err != nil {
		return nil, err
	}
	tr, err := strategy.Reconcile(p.Status, payment.Event{Kind: payment.EventProviderApproved})
	if err != nil {
		return nil, err
	}
	if err := strategy.Capture(ctx, transactionID, payerID); err != nil {
		return nil, err
	}

	o, p, err := uc.settle(ctx, p.OrderID, tr)
	if err != nil {
		// 钱已扣但状态没写入,需要对账
		logger.FromContext(ctx).Error("扣款成功但更新支付状态失败",
			zap.String("transaction_id", transactionID), zap.Error(err))
		return nil, err
	}

	logger.FromContext(ctx).Info("支付完成",
		zap.String("order_no", o.OrderNo),
		zap.String("transaction_id", transactionID),
	)
	uc.notify(ctx, notification.KindPaymentSuccess, o.ID, p, notification.PaymentSuccessEmail)
	return &Result{Order: o, Payment: p}, nil
}

func (uc *ExecutePaymentUseCase) replay(ctx context.Context, p *payment.Payment) (*Result, error) {
	o, err := uc.orders.FindByID(ctx, p.OrderID)
	if err != nil {
		return nil, err
	}
	return &Result{Order: o, Payment: p, Replayed: true}, nil
}
