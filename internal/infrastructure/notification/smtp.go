package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/wneessen/go-mail"
	"go.uber.org/zap"

	"github.com/xiebiao/bookstore-checkout/internal/infrastructure/config"
	"github.com/xiebiao/bookstore-checkout/pkg/logger"
	"github.com/xiebiao/bookstore-checkout/pkg/mq"
)

// Sender 真正把邮件发出去
type Sender interface {
	SendMail(ctx context.Context, msg EmailMessage) error
}

// SMTPSender 基于go-mail,服务器支持时自动STARTTLS
type SMTPSender struct {
	cfg  config.SMTPConfig
	send func(ctx context.Context, m *mail.Msg) error
}

// NewSMTPSender 创建SMTP发送者
func NewSMTPSender(cfg config.SMTPConfig) *SMTPSender {
	s := &SMTPSender{cfg: cfg}
	s.send = s.dialAndSend
	return s
}

func (s *SMTPSender) SendMail(ctx context.Context, msg EmailMessage) error {
	m, err := buildMessage(s.cfg.From, msg)
	if err != nil {
		return mq.Permanent(err)
	}
	return s.send(ctx, m)
}

func (s *SMTPSender) dialAndSend(ctx context.Context, m *mail.Msg) error {
	opts := []mail.Option{
		mail.WithPort(s.cfg.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if s.cfg.Timeout > 0 {
		opts = append(opts, mail.WithTimeout(s.cfg.Timeout))
	}
	if s.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.cfg.Username),
			mail.WithPassword(s.cfg.Password),
		)
	}
	c, err := mail.NewClient(s.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("创建SMTP客户端失败: %w", err)
	}
	return c.DialAndSendWithContext(ctx, m)
}

// buildMessage HTML邮件,头部编码交给go-mail(越南语/中文主题)
func buildMessage(from string, msg EmailMessage) (*mail.Msg, error) {
	m := mail.NewMsg()
	if err := m.From(from); err != nil {
		return nil, fmt.Errorf("发件人%q无效: %w", from, err)
	}
	if err := m.To(msg.To); err != nil {
		return nil, fmt.Errorf("收件人%q无效: %w", msg.To, err)
	}
	m.Subject(msg.Subject)
	if !msg.CreatedAt.IsZero() {
		m.SetDateWithValue(msg.CreatedAt)
	}
	if msg.ID != "" {
		m.SetMessageIDWithValue(msg.ID + "@bookstore-checkout")
	}
	m.SetBodyString(mail.TypeTextHTML, msg.HTML)
	return m, nil
}

// EmailHandler cmd/notifier的消息处理函数
// 消息体无法解析时丢弃;SMTP失败交给mq决定是否重投
func EmailHandler(sender Sender) mq.Handler {
	return func(ctx context.Context, routingKey string, body []byte) error {
		var msg EmailMessage
		if err := json.Unmarshal(body, &msg); err != nil {
			return mq.Permanent(fmt.Errorf("解析邮件消息失败: %w", err))
		}
		if msg.To == "" {
			return mq.Permanent(fmt.Errorf("邮件消息%s缺少收件人", msg.ID))
		}

		if err := sender.SendMail(ctx, msg); err != nil {
			return fmt.Errorf("发送邮件%s失败: %w", msg.ID, err)
		}
		logger.FromContext(ctx).Info("邮件已发送",
			zap.String("id", msg.ID),
			zap.String("to", msg.To),
			zap.String("routing_key", routingKey),
		)
		return nil
	}
}
