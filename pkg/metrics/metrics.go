// Package metrics Prometheus指标
//
// 所有指标在InitMetrics中通过promauto注册到默认Registry,
// 业务代码只调用本包的Record*/Observe*函数,不直接持有指标对象。
// 没有调用InitMetrics(metrics.enabled=false)时这些函数什么都不做。
// 标签只使用有限取值(支付方式、状态、结果),不要放user_id、order_id。
package metrics

import (
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	once    sync.Once
	enabled atomic.Bool

	// HTTP
	HTTPRequestsTotal      *prometheus.CounterVec
	HTTPRequestDuration    *prometheus.HistogramVec
	HTTPRequestsInProgress prometheus.Gauge

	// 下单
	OrdersCreatedTotal    *prometheus.CounterVec // method
	OrdersFailedTotal     *prometheus.CounterVec // method, code
	OrderCreationDuration prometheus.Histogram

	// 支付
	PaymentTransitionsTotal *prometheus.CounterVec // method, from, to
	ProviderCallsTotal      *prometheus.CounterVec // provider, operation, result
	ProviderCallDuration    *prometheus.HistogramVec

	// 熔断器 0=CLOSED 1=OPEN 2=HALF_OPEN
	CircuitBreakerState *prometheus.GaugeVec

	// 补偿
	SagaCompensationsTotal *prometheus.CounterVec // step

	// 通知与消息
	NotificationsTotal     *prometheus.CounterVec // kind, result
	MessagesPublishedTotal *prometheus.CounterVec // exchange, routing_key
	MessagesConsumedTotal  *prometheus.CounterVec // queue, result
)

// InitMetrics 注册全部指标并开始记录,可重复调用
func InitMetrics() {
	once.Do(register)
	enabled.Store(true)
}

// Enabled 是否已经InitMetrics
func Enabled() bool {
	return enabled.Load()
}

func register() {
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "HTTP请求总数",
	}, []string{"method", "path", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP请求耗时(秒)",
		Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 10},
	}, []string{"method", "path"})

	HTTPRequestsInProgress = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "http_requests_in_progress",
		Help: "正在处理的HTTP请求数",
	})

	OrdersCreatedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_created_total",
		Help: "订单创建成功总数",
	}, []string{"method"})

	OrdersFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_failed_total",
		Help: "订单创建失败总数",
	}, []string{"method", "code"})

	// 下单包含一次可能的PayPal远程调用
	OrderCreationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "order_creation_duration_seconds",
		Help:    "订单创建耗时(秒)",
		Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10},
	})

	PaymentTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_status_transitions_total",
		Help: "支付状态变更次数",
	}, []string{"method", "from", "to"})

	ProviderCallsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_provider_calls_total",
		Help: "第三方支付调用次数",
	}, []string{"provider", "operation", "result"})

	ProviderCallDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "payment_provider_call_duration_seconds",
		Help:    "第三方支付调用耗时(秒)",
		Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5, 10},
	}, []string{"provider", "operation"})

	CircuitBreakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "circuit_breaker_state",
		Help: "熔断器状态(0=CLOSED, 1=OPEN, 2=HALF_OPEN)",
	}, []string{"name"})

	SagaCompensationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "saga_compensations_total",
		Help: "补偿操作执行次数",
	}, []string{"step", "result"})

	NotificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "notifications_total",
		Help: "通知发送次数",
	}, []string{"kind", "result"})

	MessagesPublishedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "messages_published_total",
		Help: "消息发布总数",
	}, []string{"exchange", "routing_key"})

	MessagesConsumedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "messages_consumed_total",
		Help: "消息消费总数",
	}, []string{"queue", "result"})
}

func result(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}

// ObserveHTTPRequest 记录一次HTTP请求
func ObserveHTTPRequest(method, path string, status int, elapsed time.Duration) {
	if !enabled.Load() {
		return
	}
	HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(elapsed.Seconds())
}

// RecordOrderCreated 记录下单结果,code为失败时的业务错误码
func RecordOrderCreated(method string, code int, elapsed time.Duration) {
	if !enabled.Load() {
		return
	}
	OrderCreationDuration.Observe(elapsed.Seconds())
	if code == 0 {
		OrdersCreatedTotal.WithLabelValues(method).Inc()
		return
	}
	OrdersFailedTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
}

// RecordPaymentTransition 记录支付状态变化(from==to不记录)
func RecordPaymentTransition(method, from, to string) {
	if from == to || !enabled.Load() {
		return
	}
	PaymentTransitionsTotal.WithLabelValues(method, from, to).Inc()
}

// RecordProviderCall 记录第三方支付调用
func RecordProviderCall(provider, operation string, elapsed time.Duration, err error) {
	if !enabled.Load() {
		return
	}
	ProviderCallsTotal.WithLabelValues(provider, operation, result(err)).Inc()
	ProviderCallDuration.WithLabelValues(provider, operation).Observe(elapsed.Seconds())
}

// SetCircuitBreakerState 更新熔断器状态
func SetCircuitBreakerState(name string, state int) {
	if !enabled.Load() {
		return
	}
	CircuitBreakerState.WithLabelValues(name).Set(float64(state))
}

// RecordCompensation 记录一次补偿
func RecordCompensation(step string, err error) {
	if !enabled.Load() {
		return
	}
	SagaCompensationsTotal.WithLabelValues(step, result(err)).Inc()
}

// RecordNotification 记录通知发送
func RecordNotification(kind string, err error) {
	if !enabled.Load() {
		return
	}
	NotificationsTotal.WithLabelValues(kind, result(err)).Inc()
}

// RecordPublished 记录消息发布
func RecordPublished(exchange, routingKey string) {
	if !enabled.Load() {
		return
	}
	MessagesPublishedTotal.WithLabelValues(exchange, routingKey).Inc()
}

// RecordConsumed 记录消息消费
func RecordConsumed(queue string, err error) {
	if !enabled.Load() {
		return
	}
	MessagesConsumedTotal.WithLabelValues(queue, result(err)).Inc()
}
