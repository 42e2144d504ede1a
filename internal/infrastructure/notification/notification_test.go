package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/wneessen/go-mail"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/xiebiao/bookstore-checkout/internal/infrastructure/config"
	apperrors "github.com/xiebiao/bookstore-checkout/pkg/errors"
	"github.com/xiebiao/bookstore-checkout/pkg/mq"
)

type mockPublisher struct{ mock.Mock }

func (m *mockPublisher) Publish(ctx context.Context, routingKey string, message interface{}) error {
	return m.Called(ctx, routingKey, message).Error(0)
}

type mockSender struct{ mock.Mock }

func (m *mockSender) SendMail(ctx context.Context, msg EmailMessage) error {
	return m.Called(ctx, msg).Error(0)
}

func TestMQNotifier(t *testing.T) {
	ctx := context.Background()

	t.Run("发布邮件消息", func(t *testing.T) {
		pub := new(mockPublisher)
		pub.On("Publish", ctx, "email.send", mock.MatchedBy(func(m EmailMessage) bool {
			return m.To == "reader@example.com" && m.Subject == "Đặt hàng thành công" && m.ID != ""
		})).Return(nil)

		require.NoError(t, NewMQNotifier(pub, "email.send").Send(ctx, "reader@example.com", "Đặt hàng thành công", "<p>hi</p>"))
		pub.AssertExpectations(t)
	})

	t.Run("发布失败", func(t *testing.T) {
		pub := new(mockPublisher)
		pub.On("Publish", ctx, "email.send", mock.Anything).Return(errors.New("channel closed"))

		err := NewMQNotifier(pub, "email.send").Send(ctx, "a@b.c", "s", "h")
		assert.ErrorIs(t, err, apperrors.ErrNotificationError)
	})
}

func TestLogNotifier(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	n := NewLogNotifier(zap.New(core))

	require.NoError(t, n.Send(context.Background(), "reader@example.com", "Kích hoạt tài khoản", "<a>link</a>"))
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "reader@example.com", logs.All()[0].ContextMap()["to"])
}

func TestNew(t *testing.T) {
	n, closeFn, err := New(config.NotificationConfig{Driver: "log"}, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &LogNotifier{}, n)
	assert.NoError(t, closeFn())

	_, _, err = New(config.NotificationConfig{Driver: "sms"}, zap.NewNop())
	assert.Error(t, err)
}

func TestSMTPSender(t *testing.T) {
	ctx := context.Background()
	var got *mail.Msg
	s := NewSMTPSender(config.SMTPConfig{Host: "smtp.example.com", Port: 587, Username: "u", Password: "p", From: "shop@example.com", Timeout: time.Second})
	s.send = func(_ context.Context, m *mail.Msg) error {
		got = m
		return nil
	}

	msg := EmailMessage{ID: "m1", To: "reader@example.com", Subject: "Thanh toán thành công!", HTML: "<h2>Xin chào</h2>", CreatedAt: time.Now()}
	require.NoError(t, s.SendMail(ctx, msg))
	require.NotNil(t, got)

	rcpts, err := got.GetRecipients()
	require.NoError(t, err)
	assert.Equal(t, []string{"reader@example.com"}, rcpts)
	assert.Equal(t, []string{"Thanh toán thành công!"}, got.GetGenHeader(mail.HeaderSubject))

	var raw bytes.Buffer
	_, err = got.WriteTo(&raw)
	require.NoError(t, err)
	assert.Contains(t, raw.String(), "text/html")
	assert.Contains(t, raw.String(), "<m1@bookstore-checkout>")

	t.Run("收件人无效不重试", func(t *testing.T) {
		got = nil
		err := s.SendMail(ctx, EmailMessage{ID: "m2", To: "not an address", Subject: "s", HTML: "h"})
		assert.ErrorIs(t, err, mq.ErrPermanent)
		assert.Nil(t, got)
	})

	t.Run("发送失败透传", func(t *testing.T) {
		s.send = func(context.Context, *mail.Msg) error { return errors.New("421 try again") }
		err := s.SendMail(ctx, msg)
		require.Error(t, err)
		assert.NotErrorIs(t, err, mq.ErrPermanent)
	})
}

func TestEmailHandler(t *testing.T) {
	ctx := context.Background()

	t.Run("正常发送", func(t *testing.T) {
		sender := new(mockSender)
		sender.On("SendMail", ctx, mock.MatchedBy(func(m EmailMessage) bool { return m.To == "reader@example.com" })).Return(nil)

		body, _ := json.Marshal(EmailMessage{ID: "1", To: "reader@example.com", Subject: "s", HTML: "h"})
		assert.NoError(t, EmailHandler(sender)(ctx, "email.send", body))
		sender.AssertExpectations(t)
	})

	t.Run("消息体损坏不重试", func(t *testing.T) {
		err := EmailHandler(new(mockSender))(ctx, "email.send", []byte("{"))
		assert.ErrorIs(t, err, mq.ErrPermanent)
	})

	t.Run("SMTP失败可重试", func(t *testing.T) {
		sender := new(mockSender)
		sender.On("SendMail", ctx, mock.Anything).Return(errors.New("421 try again"))

		body, _ := json.Marshal(EmailMessage{ID: "1", To: "reader@example.com"})
		err := EmailHandler(sender)(ctx, "email.send", body)
		require.Error(t, err)
		assert.NotErrorIs(t, err, mq.ErrPermanent)
	})
}
