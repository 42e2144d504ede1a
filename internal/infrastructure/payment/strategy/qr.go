package strategy

import (
	"context"

	"github.com/google/uuid"

	"github.com/xiebiao/bookstore-checkout/internal/domain/order"
	"github.com/xiebiao/bookstore-checkout/internal/domain/payment"
	"github.com/xiebiao/bookstore-checkout/internal/infrastructure/config"
	"github.com/xiebiao/bookstore-checkout/internal/infrastructure/payment/sepay"
)

// QR SePay扫码转账
// 买家扫码即视为已付款,订单直接进入PROCESSING
type QR struct {
	account       config.SePayConfig
	defaultStatus payment.Status
}

// NewQR defaultStatus为空时为COMPLETED
func NewQR(account config.SePayConfig, defaultStatus payment.Status) *QR {
	if defaultStatus == "" {
		defaultStatus = payment.StatusCompleted
	}
	return &QR{account: account, defaultStatus: defaultStatus}
}

func (s *QR) Method() payment.Method           { return payment.MethodQR }
func (s *QR) SettlementCurrency() string       { return "" }
func (s *QR) InitialOrderStatus() order.Status { return order.StatusProcessing }
func (s *QR) NotifyOnCreate() bool             { return true }

func (s *QR) CreatePayment(_ context.Context, in payment.Intent) (*payment.Draft, error) {
	return &payment.Draft{
		Status:        statusOr(in.RequestedStatus, s.defaultStatus),
		TransactionID: uuid.NewString(),
		RedirectURL: sepay.BuildQRURL(s.account.Bank, s.account.Account, s.account.Template,
			in.Amount, sepay.Description(in.OrderNo)),
	}, nil
}

func (s *QR) Capture(context.Context, string, string) error { return payment.ErrEventNotSupported }

func (s *QR) Void(context.Context, string) error { return nil }

func (s *QR) Reconcile(current payment.Status, ev payment.Event) (payment.Transition, error) {
	return payment.ReconcileQR(current, ev)
}
