// Package strategy 三种支付方式的payment.Strategy实现及注册
package strategy

import (
	"context"

	"github.com/google/uuid"

	"github.com/xiebiao/bookstore-checkout/internal/domain/order"
	"github.com/xiebiao/bookstore-checkout/internal/domain/payment"
)

// COD 货到付款,不调用外部服务
type COD struct {
	defaultStatus payment.Status
}

// NewCOD defaultStatus为调用方未指定时的初始支付状态
func NewCOD(defaultStatus payment.Status) *COD {
	if defaultStatus == "" {
		defaultStatus = payment.StatusPending
	}
	return &COD{defaultStatus: defaultStatus}
}

func (s *COD) Method() payment.Method           { return payment.MethodCOD }
func (s *COD) SettlementCurrency() string       { return "" }
func (s *COD) InitialOrderStatus() order.Status { return order.StatusPending }
func (s *COD) NotifyOnCreate() bool             { return true }

func (s *COD) CreatePayment(_ context.Context, in payment.Intent) (*payment.Draft, error) {
	return &payment.Draft{
		Status:        statusOr(in.RequestedStatus, s.defaultStatus),
		TransactionID: uuid.NewString(),
	}, nil
}

func (s *COD) Capture(context.Context, string, string) error { return payment.ErrEventNotSupported }

func (s *COD) Void(context.Context, string) error { return nil }

func (s *COD) Reconcile(current payment.Status, ev payment.Event) (payment.Transition, error) {
	return payment.ReconcileCOD(current, ev)
}

func statusOr(requested, def payment.Status) payment.Status {
	if requested != "" {
		return requested
	}
	return def
}
