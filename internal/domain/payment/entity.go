package payment

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Method 支付方式
type Method string

const (
	MethodCOD    Method = "COD"    // 货到付款
	MethodQR     Method = "QR"     // SePay扫码转账
	MethodPayPal Method = "PAYPAL" // PayPal
)

// ParseMethod 大小写不敏感
func ParseMethod(raw string) (Method, error) {
	m := Method(strings.ToUpper(strings.TrimSpace(raw)))
	switch m {
	case MethodCOD, MethodQR, MethodPayPal:
		return m, nil
	}
	return "", ErrUnsupportedMethod.WithMessage("不支持的支付方式: %q", raw)
}

// Status 支付状态
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusCompleted Status = "COMPLETED"
	StatusFailed    Status = "FAILED"
	StatusRefunded  Status = "REFUNDED"
)

// ParseStatus 大小写不敏感,空串返回("", nil)表示未指定
func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToUpper(strings.TrimSpace(raw)))
	switch s {
	case "", StatusPending, StatusCompleted, StatusFailed, StatusRefunded:
		return s, nil
	}
	return "", ErrInvalidPaymentStatus.WithMessage("支付状态非法: %q", raw)
}

// Payment 支付记录,与订单一对一,和订单在同一事务中创建
type Payment struct {
	ID            uint
	OrderID       uint
	Amount        decimal.Decimal
	Currency      string
	Method        Method
	Status        Status
	TransactionID string // COD/QR为UUID,PayPal为PayPal订单ID
	RedirectURL   string // PayPal approve链接或SePay二维码图片
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewPayment 由策略返回的Draft生成支付记录
func NewPayment(orderID uint, amount decimal.Decimal, currency string, method Method, d *Draft) *Payment {
	now := time.Now()
	return &Payment{
		OrderID:       orderID,
		Amount:        amount,
		Currency:      currency,
		Method:        method,
		Status:        d.Status,
		TransactionID: d.TransactionID,
		RedirectURL:   d.RedirectURL,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// SetStatus 只应由状态同步和支付回调调用
func (p *Payment) SetStatus(s Status) {
	if p.Status == s {
		return
	}
	p.Status = s
	p.UpdatedAt = time.Now()
}

// IsCompleted 已完成的支付不再接受回调
func (p *Payment) IsCompleted() bool {
	return p.Status == StatusCompleted
}
