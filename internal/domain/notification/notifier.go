// Package notification 邮件通知
//
// 发送方只关心Notifier接口;生产环境投递到RabbitMQ由cmd/notifier异步发出,
// 开发环境只写日志。
package notification

import (
	"context"
)

// Notifier 发送一封HTML邮件
type Notifier interface {
	Send(ctx context.Context, to, subject, html string) error
}

// Kind 邮件类型,用于指标和日志
type Kind string

const (
	KindOrderCreated     Kind = "order_created"
	KindPaymentSuccess   Kind = "payment_success"
	KindPaymentCancelled Kind = "payment_cancelled"
	KindActivation       Kind = "activation"
)

// Email 渲染好的邮件
type Email struct {
	Kind    Kind
	Subject string
	HTML    string
}

// Deliver 渲染并发送
func Deliver(ctx context.Context, n Notifier, to string, e *Email) error {
	return n.Send(ctx, to, e.Subject, e.HTML)
}
