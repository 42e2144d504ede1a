// Package notify 用例中的邮件发送
//
// 下单和支付回调的邮件都是尽力而为: 失败只记日志和指标,不影响已提交的业务结果。
package notify

import (
	"context"

	"go.uber.org/zap"

	"github.com/xiebiao/bookstore-checkout/internal/domain/notification"
	"github.com/xiebiao/bookstore-checkout/internal/domain/order"
	"github.com/xiebiao/bookstore-checkout/internal/domain/payment"
	"github.com/xiebiao/bookstore-checkout/pkg/logger"
	"github.com/xiebiao/bookstore-checkout/pkg/metrics"
)

// Send 渲染并发送,返回发送错误;调用方决定是否忽略
func Send(ctx context.Context, n notification.Notifier, kind notification.Kind, to string, build func() (*notification.Email, error)) error {
	email, err := build()
	if err == nil {
		err = notification.Deliver(ctx, n, to, email)
	}
	metrics.RecordNotification(string(kind), err)
	return err
}

// BestEffort 失败时记录Warn日志
func BestEffort(ctx context.Context, n notification.Notifier, kind notification.Kind, to string, build func() (*notification.Email, error), fields ...zap.Field) {
	if err := Send(ctx, n, kind, to, build); err != nil {
		fields = append(fields, zap.String("kind", string(kind)), zap.String("to", to), zap.Error(err))
		logger.FromContext(ctx).Warn("邮件发送失败,已忽略", fields...)
	}
}

// Summary 订单邮件数据
func Summary(o *order.Order, p *payment.Payment, nickname string) notification.OrderSummary {
	lines := make([]notification.OrderLine, len(o.Items))
	for i, it := range o.Items {
		lines[i] = notification.OrderLine{Title: it.Title, Quantity: it.Quantity, UnitPrice: it.UnitPrice}
	}
	s := notification.OrderSummary{
		Nickname: nickname,
		OrderNo:  o.OrderNo,
		Total:    o.Total,
		Currency: o.Currency,
		Lines:    lines,
		Address:  o.Shipping.Address,
		City:     o.Shipping.City,
		Phone:    o.Shipping.Phone,
	}
	if p != nil {
		s.Method = string(p.Method)
		s.RedirectURL = p.RedirectURL
	}
	return s
}
