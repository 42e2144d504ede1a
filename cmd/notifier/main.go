// notifier 消费邮件队列并通过SMTP发送
//
// API进程以notification.driver=mq运行时,下单、支付、注册邮件都经由这里发出。
package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/xiebiao/bookstore-checkout/internal/infrastructure/config"
	"github.com/xiebiao/bookstore-checkout/internal/infrastructure/notification"
	"github.com/xiebiao/bookstore-checkout/pkg/logger"
	"github.com/xiebiao/bookstore-checkout/pkg/mq"
)

// 同时处理的邮件数
const prefetch = 4

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}
	zlog, err := logger.New(logger.Options{
		Level:        cfg.Log.Level,
		Format:       cfg.Log.Format,
		Output:       cfg.Log.Output,
		EnableCaller: cfg.Log.EnableCaller,
		Service:      "bookstore-notifier",
	})
	if err != nil {
		log.Fatalf("初始化日志失败: %v", err)
	}
	defer func() { _ = zlog.Sync() }()
	zap.ReplaceGlobals(zlog)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = logger.WithContext(ctx, zlog)

	n := cfg.Notification
	consumer, err := mq.NewConsumer(n.MQURL, n.Exchange, "topic", n.Queue, []string{n.RoutingKey})
	if err != nil {
		zlog.Fatal("连接RabbitMQ失败", zap.Error(err))
	}
	defer func() { _ = consumer.Close() }()

	zlog.Info("邮件消费者启动",
		zap.String("queue", n.Queue),
		zap.String("routing_key", n.RoutingKey),
		zap.String("smtp", n.SMTP.Addr()),
	)
	handler := notification.EmailHandler(notification.NewSMTPSender(n.SMTP))
	if err := consumer.Consume(ctx, prefetch, handler); err != nil && !errors.Is(err, context.Canceled) {
		zlog.Error("消费中断", zap.Error(err))
		return
	}
	zlog.Info("邮件消费者已退出")
}
