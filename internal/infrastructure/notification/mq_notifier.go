package notification

import (
	"context"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/xiebiao/bookstore-checkout/pkg/errors"
)

// Publisher *mq.Publisher实现
type Publisher interface {
	Publish(ctx context.Context, routingKey string, message interface{}) error
}

// MQNotifier 发布成功即视为发送成功,不等待SMTP结果
type MQNotifier struct {
	pub        Publisher
	routingKey string
}

// NewMQNotifier 创建MQNotifier
func NewMQNotifier(pub Publisher, routingKey string) *MQNotifier {
	return &MQNotifier{pub: pub, routingKey: routingKey}
}

func (n *MQNotifier) Send(ctx context.Context, to, subject, html string) error {
	msg := EmailMessage{
		ID:        uuid.NewString(),
		To:        to,
		Subject:   subject,
		HTML:      html,
		CreatedAt: time.Now(),
	}
	if err := n.pub.Publish(ctx, n.routingKey, msg); err != nil {
		return apperrors.ErrNotificationError.WithCause(err)
	}
	return nil
}
