// Package payment 支付平台回调
//
// 买家在PayPal授权或取消后跳回站点,这里完成扣款并同步订单状态。
// 同一交易号的回调可能重复到达: 先看支付状态,再取Redis锁,拿到锁后重新读取一次。
package payment

import (
	"context"

	"go.uber.org/zap"

	"github.com/xiebiao/bookstore-checkout/internal/application/notify"
	"github.com/xiebiao/bookstore-checkout/internal/domain/notification"
	"github.com/xiebiao/bookstore-checkout/internal/domain/order"
	"github.com/xiebiao/bookstore-checkout/internal/domain/payment"
	"github.com/xiebiao/bookstore-checkout/internal/domain/user"
	"github.com/xiebiao/bookstore-checkout/pkg/logger"
	"github.com/xiebiao/bookstore-checkout/pkg/metrics"
)

// TxManager 事务边界,由mysql.TxManager实现
type TxManager interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// CallbackLock 由redis.CallbackLock实现
type CallbackLock interface {
	Acquire(ctx context.Context, transactionID string) (release func(), err error)
}

// Result 回调处理结果
type Result struct {
	Order   *order.Order
	Payment *payment.Payment
	// Replayed 支付在本次回调之前已经完成
	Replayed bool
}

// deps 两个回调用例共用的依赖
type deps struct {
	orders    order.Repository
	payments  payment.Repository
	users     user.Repository
	registry  *payment.Registry
	lock      CallbackLock
	notifier  notification.Notifier
	txManager TxManager
}

// settle 在一个事务里按Reconcile结果写入支付和订单状态
func (d *deps) settle(ctx context.Context, orderID uint, tr payment.Transition) (*order.Order, *payment.Payment, error) {
	var (
		o    *order.Order
		p    *payment.Payment
		from payment.Status
	)
	err := d.txManager.Transaction(ctx, func(ctx context.Context) error {
		var err error
		if o, err = d.orders.LockByID(ctx, orderID); err != nil {
			return err
		}
		if p, err = d.payments.LockByOrderID(ctx, orderID); err != nil {
			return err
		}
		from = p.Status
		p.SetStatus(tr.Payment)
		if tr.Order != "" {
			if err := o.SetStatus(tr.Order); err != nil {
				return err
			}
		}
		if err := d.payments.Update(ctx, p); err != nil {
			return err
		}
		return d.orders.Update(ctx, o)
	})
	if err != nil {
		return nil, nil, err
	}
	metrics.RecordPaymentTransition(string(p.Method), string(from), string(p.Status))
	return o, p, nil
}

// notify 邮件需要订单明细和用户昵称,失败只记日志
func (d *deps) notify(ctx context.Context, kind notification.Kind, orderID uint, p *payment.Payment,
	build func(notification.OrderSummary) (*notification.Email, error)) {
	log := logger.FromContext(ctx)
	o, err := d.orders.FindByID(ctx, orderID)
	if err != nil {
		log.Warn("读取订单失败,跳过邮件", zap.Uint("order_id", orderID), zap.Error(err))
		return
	}
	u, err := d.users.FindByID(ctx, o.UserID)
	if err != nil {
		log.Warn("读取用户失败,跳过邮件", zap.Uint("user_id", o.UserID), zap.Error(err))
		return
	}
	summary := notify.Summary(o, p, u.Nickname)
	notify.BestEffort(ctx, d.notifier, kind, u.Email,
		func() (*notification.Email, error) { return build(summary) },
		zap.String("order_no", o.OrderNo))
}
