// Package notification Notifier的实现
//
// mq: 发布EmailMessage到RabbitMQ,由cmd/notifier消费并通过SMTP发送
// log: 只写日志,用于本地开发
package notification

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	domain "github.com/xiebiao/bookstore-checkout/internal/domain/notification"
	"github.com/xiebiao/bookstore-checkout/internal/infrastructure/config"
	"github.com/xiebiao/bookstore-checkout/pkg/mq"
)

// EmailMessage 队列中的邮件消息
type EmailMessage struct {
	ID        string    `json:"id"`
	To        string    `json:"to"`
	Subject   string    `json:"subject"`
	HTML      string    `json:"html"`
	CreatedAt time.Time `json:"created_at"`
}

// New 按notification.driver创建Notifier,返回的close在进程退出时调用
func New(cfg config.NotificationConfig, log *zap.Logger) (domain.Notifier, func() error, error) {
	switch cfg.Driver {
	case "mq":
		pub, err := mq.NewPublisher(cfg.MQURL, cfg.Exchange, "topic")
		if err != nil {
			return nil, nil, fmt.Errorf("创建邮件发布者失败: %w", err)
		}
		return NewMQNotifier(pub, cfg.RoutingKey), pub.Close, nil
	case "log", "":
		return NewLogNotifier(log), func() error { return nil }, nil
	default:
		return nil, nil, fmt.Errorf("未知的notification.driver: %s", cfg.Driver)
	}
}
