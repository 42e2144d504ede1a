package strategy

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/xiebiao/bookstore-checkout/internal/domain/order"
	"github.com/xiebiao/bookstore-checkout/internal/domain/payment"
	"github.com/xiebiao/bookstore-checkout/internal/infrastructure/config"
	"github.com/xiebiao/bookstore-checkout/internal/infrastructure/payment/paypal"
	"github.com/xiebiao/bookstore-checkout/internal/infrastructure/payment/sepay"
	"github.com/xiebiao/bookstore-checkout/pkg/circuitbreaker"
	apperrors "github.com/xiebiao/bookstore-checkout/pkg/errors"
	"github.com/xiebiao/bookstore-checkout/pkg/logger"
	"github.com/xiebiao/bookstore-checkout/pkg/metrics"
	"github.com/xiebiao/bookstore-checkout/pkg/tracing"
)

const providerPayPal = "paypal"

// PayPalGateway *paypal.Client实现
type PayPalGateway interface {
	CreateIntent(ctx context.Context, amount decimal.Decimal, currency, description, cancelURL, returnURL string) (*paypal.Intent, error)
	Execute(ctx context.Context, transactionID, payerID string) error
	Cancel(ctx context.Context, transactionID string) error
}

// PayPal 远程支付
// 所有远程调用都经过熔断器并带超时;支付记录先以FAILED落库,回调成功后才变为COMPLETED
type PayPal struct {
	gw      PayPalGateway
	cfg     config.PayPalConfig
	breaker *circuitbreaker.CircuitBreaker
}

// NewPayPal 创建PayPal策略
func NewPayPal(gw PayPalGateway, cfg config.PayPalConfig, bc config.BreakerConfig) *PayPal {
	var trip func(circuitbreaker.Counts) bool
	if bc.FailureThreshold > 0 {
		trip = circuitbreaker.ConsecutiveFailures(bc.FailureThreshold)
	}
	breaker := circuitbreaker.New(providerPayPal, circuitbreaker.Config{
		MaxRequests: bc.MaxRequests,
		Interval:    bc.Interval,
		Timeout:     bc.Timeout,
		ReadyToTrip: trip,
		OnStateChange: func(name string, from, to circuitbreaker.State) {
			metrics.SetCircuitBreakerState(name, int(to))
			zap.L().Warn("熔断器状态变化",
				zap.String("name", name),
				zap.Stringer("from", from),
				zap.Stringer("to", to),
			)
		},
	})
	return &PayPal{gw: gw, cfg: cfg, breaker: breaker}
}

func (s *PayPal) Method() payment.Method           { return payment.MethodPayPal }
func (s *PayPal) SettlementCurrency() string       { return strings.ToUpper(s.cfg.Currency) }
func (s *PayPal) InitialOrderStatus() order.Status { return order.StatusPending }
func (s *PayPal) NotifyOnCreate() bool             { return false }

// CreatePayment 忽略调用方指定的支付状态
func (s *PayPal) CreatePayment(ctx context.Context, in payment.Intent) (*payment.Draft, error) {
	var intent *paypal.Intent
	err := s.call(ctx, "create_intent", func(ctx context.Context) error {
		var err error
		intent, err = s.gw.CreateIntent(ctx, in.Amount, in.Currency, sepay.Description(in.OrderNo), s.cfg.CancelURL, s.cfg.ReturnURL)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &payment.Draft{
		Status:        payment.StatusFailed,
		TransactionID: intent.TransactionID,
		RedirectURL:   intent.ApprovalURL,
	}, nil
}

func (s *PayPal) Capture(ctx context.Context, transactionID, payerID string) error {
	return s.call(ctx, "capture", func(ctx context.Context) error {
		return s.gw.Execute(ctx, transactionID, payerID)
	})
}

// Void 不经过熔断器;未授权的订单无法远程取消,交给PayPal自动过期
func (s *PayPal) Void(ctx context.Context, transactionID string) error {
	return s.gw.Cancel(ctx, transactionID)
}

func (s *PayPal) Reconcile(current payment.Status, ev payment.Event) (payment.Transition, error) {
	return payment.ReconcilePayPal(current, ev)
}

// call 熔断 + 超时 + 指标 + span
func (s *PayPal) call(ctx context.Context, op string, fn func(ctx context.Context) error) (err error) {
	ctx, span := tracing.StartSpan(ctx, "paypal."+op)
	defer func() { tracing.EndSpan(span, err) }()

	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	start := time.Now()
	err = s.breaker.Execute(ctx, fn)
	metrics.RecordProviderCall(providerPayPal, op, time.Since(start), err)

	switch {
	case err == nil:
		return nil
	case errors.Is(err, circuitbreaker.ErrOpenState):
		return apperrors.ErrProviderOpen.WithCause(err)
	case apperrors.IsAppError(err):
		logger.FromContext(ctx).Warn("PayPal调用失败", zap.String("op", op), zap.Error(err))
		return err
	default:
		logger.FromContext(ctx).Warn("PayPal调用失败", zap.String("op", op), zap.Error(err))
		return apperrors.ErrProviderError.WithCause(err)
	}
}
