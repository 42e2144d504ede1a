// Package mq 基于RabbitMQ的消息发布/订阅
//
// 下单与支付相关的邮件通过topic exchange异步投递,由cmd/notifier消费发送。
// 消息持久化(DeliveryMode=Persistent),消费端手动Ack。
package mq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/xiebiao/bookstore-checkout/pkg/logger"
	"github.com/xiebiao/bookstore-checkout/pkg/metrics"
)

// ErrPermanent handler返回包装了它的错误时,消息不再重新入队
// (比如消息体无法解析,重试也不会成功)
var ErrPermanent = errors.New("permanent message failure")

// Permanent 把err标记为不可重试
func Permanent(err error) error {
	return fmt.Errorf("%w: %w", ErrPermanent, err)
}

// Publisher 消息发布者
// amqp.Channel不是并发安全的,Publish内部串行化
type Publisher struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
}

// NewPublisher 连接RabbitMQ并声明exchange
// exchangeType: direct | topic | fanout
func NewPublisher(url, exchange, exchangeType string) (*Publisher, error) {
	conn, channel, err := dialAndDeclare(url, exchange, exchangeType)
	if err != nil {
		return nil, err
	}

	zap.L().Info("消息发布者已创建",
		zap.String("exchange", exchange),
		zap.String("type", exchangeType),
	)

	return &Publisher{
		conn:     conn,
		channel:  channel,
		exchange: exchange,
	}, nil
}

// Publish 把message序列化为JSON并发布
func (p *Publisher) Publish(ctx context.Context, routingKey string, message interface{}) error {
	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("消息序列化失败: %w", err)
	}

	p.mu.Lock()
	err = p.channel.PublishWithContext(ctx,
		p.exchange,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		},
	)
	p.mu.Unlock()
	if err != nil {
		return fmt.Errorf("发布消息失败: %w", err)
	}

	metrics.RecordPublished(p.exchange, routingKey)
	logger.FromContext(ctx).Debug("消息已发布",
		zap.String("exchange", p.exchange),
		zap.String("routing_key", routingKey),
		zap.Int("bytes", len(body)),
	)
	return nil
}

// Close 关闭发布者
func (p *Publisher) Close() error {
	return closeAll(p.channel, p.conn)
}

// Handler 消息处理函数
type Handler func(ctx context.Context, routingKey string, body []byte) error

// Consumer 消息消费者
type Consumer struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   string
}

// NewConsumer 声明exchange和持久化队列,并按routingKeys绑定
// topic exchange下routingKey支持通配符: * 匹配一个单词,# 匹配零个或多个
func NewConsumer(url, exchange, exchangeType, queue string, routingKeys []string) (*Consumer, error) {
	conn, channel, err := dialAndDeclare(url, exchange, exchangeType)
	if err != nil {
		return nil, err
	}

	q, err := channel.QueueDeclare(
		queue,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	)
	if err != nil {
		closeAll(channel, conn)
		return nil, fmt.Errorf("声明Queue失败: %w", err)
	}

	for _, key := range routingKeys {
		if err := channel.QueueBind(q.Name, key, exchange, false, nil); err != nil {
			closeAll(channel, conn)
			return nil, fmt.Errorf("绑定Queue失败(%s): %w", key, err)
		}
	}

	zap.L().Info("消息消费者已创建",
		zap.String("queue", q.Name),
		zap.Strings("routing_keys", routingKeys),
	)

	return &Consumer{
		conn:    conn,
		channel: channel,
		queue:   q.Name,
	}, nil
}

// Consume 阻塞消费直到ctx取消或连接断开
// handler成功则Ack;返回Permanent错误则Nack丢弃;其它错误Nack并重新入队
func (c *Consumer) Consume(ctx context.Context, prefetch int, handler Handler) error {
	if prefetch <= 0 {
		prefetch = 1
	}
	if err := c.channel.Qos(prefetch, 0, false); err != nil {
		return fmt.Errorf("设置Qos失败: %w", err)
	}

	msgs, err := c.channel.Consume(
		c.queue,
		"",    // consumer tag
		false, // autoAck
		false, // exclusive
		false, // noLocal
		false, // noWait
		nil,
	)
	if err != nil {
		return fmt.Errorf("开始消费失败: %w", err)
	}

	log := zap.L().With(zap.String("queue", c.queue))
	log.Info("开始消费消息")

	for {
		select {
		case <-ctx.Done():
			log.Info("消费者退出")
			return nil

		case msg, ok := <-msgs:
			if !ok {
				return errors.New("消息Channel已关闭")
			}
			c.dispatch(ctx, log, msg, handler)
		}
	}
}

func (c *Consumer) dispatch(ctx context.Context, log *zap.Logger, msg amqp.Delivery, handler Handler) {
	err := handler(ctx, msg.RoutingKey, msg.Body)
	metrics.RecordConsumed(c.queue, err)

	if err == nil {
		if ackErr := msg.Ack(false); ackErr != nil {
			log.Warn("Ack失败", zap.Error(ackErr))
		}
		return
	}

	requeue := shouldRequeue(err, msg.Redelivered)
	log.Warn("消息处理失败",
		zap.String("routing_key", msg.RoutingKey),
		zap.Bool("requeue", requeue),
		zap.Error(err),
	)
	if nackErr := msg.Nack(false, requeue); nackErr != nil {
		log.Warn("Nack失败", zap.Error(nackErr))
	}
}

// 永久失败直接丢弃;临时失败只重新入队一次,避免毒消息占满队列
func shouldRequeue(err error, redelivered bool) bool {
	if errors.Is(err, ErrPermanent) {
		return false
	}
	return !redelivered
}

// Close 关闭消费者
func (c *Consumer) Close() error {
	return closeAll(c.channel, c.conn)
}

func dialAndDeclare(url, exchange, exchangeType string) (*amqp.Connection, *amqp.Channel, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, fmt.Errorf("连接RabbitMQ失败: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("创建Channel失败: %w", err)
	}

	err = channel.ExchangeDeclare(
		exchange,
		exchangeType,
		true,  // durable
		false, // autoDelete
		false, // internal
		false, // noWait
		nil,
	)
	if err != nil {
		closeAll(channel, conn)
		return nil, nil, fmt.Errorf("声明Exchange失败: %w", err)
	}
	return conn, channel, nil
}

func closeAll(channel *amqp.Channel, conn *amqp.Connection) error {
	var errs []error
	if channel != nil {
		if err := channel.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
			errs = append(errs, err)
		}
	}
	if conn != nil {
		if err := conn.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
