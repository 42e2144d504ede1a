package payment

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/xiebiao/bookstore-checkout/internal/domain/order"
)

// Intent 创建支付所需的订单信息
type Intent struct {
	OrderID  uint
	OrderNo  string
	Amount   decimal.Decimal // 已换算到结算币种
	Currency string
	// RequestedStatus 调用方指定的初始支付状态,空表示使用默认值;PayPal忽略
	RequestedStatus Status
}

// Draft 策略生成的支付草稿,由调用方落库
type Draft struct {
	Status        Status
	TransactionID string
	RedirectURL   string
}

// Strategy 一种支付方式
type Strategy interface {
	Method() Method

	// SettlementCurrency 结算币种,空串表示目录币种
	SettlementCurrency() string

	// InitialOrderStatus 支付创建成功后订单的初始状态
	InitialOrderStatus() order.Status

	// NotifyOnCreate 下单成功后是否立即发确认邮件
	NotifyOnCreate() bool

	// CreatePayment 生成支付草稿;远程支付会在这里创建支付意图
	CreatePayment(ctx context.Context, in Intent) (*Draft, error)

	// Capture 买家授权后完成扣款,不支持的方式返回ErrEventNotSupported
	Capture(ctx context.Context, transactionID, payerID string) error

	// Void 撤销CreatePayment的远程副作用(下单事务回滚时调用)
	Void(ctx context.Context, transactionID string) error

	// Reconcile 计算事件发生后的支付/订单状态
	Reconcile(current Status, ev Event) (Transition, error)
}

// Registry 按支付方式选择策略
type Registry struct {
	strategies map[Method]Strategy
}

// NewRegistry 同一支付方式重复注册时后者覆盖前者
func NewRegistry(strategies ...Strategy) *Registry {
	r := &Registry{strategies: make(map[Method]Strategy, len(strategies))}
	for _, s := range strategies {
		r.strategies[s.Method()] = s
	}
	return r
}

// Select 未注册的支付方式返回ErrUnsupportedMethod
func (r *Registry) Select(m Method) (Strategy, error) {
	s, ok := r.strategies[m]
	if !ok {
		return nil, ErrUnsupportedMethod.WithMessage("未启用的支付方式: %s", m)
	}
	return s, nil
}
