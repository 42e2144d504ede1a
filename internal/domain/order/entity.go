package order

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Order 订单(聚合根)
// 创建后只有状态和收货信息可以通过显式更新修改,金额与明细不可变
type Order struct {
	ID        uint
	OrderNo   string
	UserID    uint
	Total     decimal.Decimal // 结算币种金额
	Currency  string
	Status    Status
	Shipping  Shipping
	Items     []OrderItem
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Shipping 收货信息
type Shipping struct {
	Address string
	City    string
	Phone   string
}

// OrderItem 订单明细
// Title和UnitPrice是下单时的快照,之后不再从图书表读取
type OrderItem struct {
	ID        uint
	OrderID   uint
	BookID    uint
	Title     string
	Quantity  int
	UnitPrice decimal.Decimal // 目录币种单价
}

// Amount 明细金额
func (i OrderItem) Amount() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// NewOrder 创建订单(工厂方法)
func NewOrder(orderNo string, userID uint, items []OrderItem, total decimal.Decimal, currency string, status Status, shipping Shipping) (*Order, error) {
	if len(items) == 0 {
		return nil, ErrInvalidOrderItems
	}
	for _, it := range items {
		if it.Quantity < 1 {
			return nil, ErrInvalidQuantity
		}
	}
	if !total.IsPositive() {
		return nil, ErrInvalidTotal
	}
	if !status.IsValid() {
		return nil, ErrInvalidOrderStatus
	}
	if err := shipping.Validate(); err != nil {
		return nil, err
	}

	now := time.Now()
	return &Order{
		OrderNo:   orderNo,
		UserID:    userID,
		Total:     total,
		Currency:  currency,
		Status:    status,
		Shipping:  shipping,
		Items:     items,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// SetStatus 设置状态
// 店员可以把订单改到任意已定义状态,支付状态由同步规则跟随
func (o *Order) SetStatus(s Status) error {
	if !s.IsValid() {
		return ErrInvalidOrderStatus
	}
	o.Status = s
	o.UpdatedAt = time.Now()
	return nil
}

// UpdateShipping 只覆盖非空字段,覆盖后的结果需要通过校验
func (o *Order) UpdateShipping(patch Shipping) error {
	next := o.Shipping
	if v := strings.TrimSpace(patch.Address); v != "" {
		next.Address = v
	}
	if v := strings.TrimSpace(patch.City); v != "" {
		next.City = v
	}
	if v := strings.TrimSpace(patch.Phone); v != "" {
		next.Phone = v
	}
	if err := next.Validate(); err != nil {
		return err
	}
	o.Shipping = next
	o.UpdatedAt = time.Now()
	return nil
}

// IsOwnedBy 检查订单是否属于指定用户
func (o *Order) IsOwnedBy(userID uint) bool {
	return o.UserID == userID
}

var phonePattern = regexp.MustCompile(`^\+?[0-9]{9,15}$`)

// Validate 地址、城市必填;电话9-15位数字,可带前导+
func (s Shipping) Validate() error {
	if strings.TrimSpace(s.Address) == "" {
		return ErrInvalidShipping.WithMessage("收货地址不能为空")
	}
	if strings.TrimSpace(s.City) == "" {
		return ErrInvalidShipping.WithMessage("城市不能为空")
	}
	if !phonePattern.MatchString(strings.TrimSpace(s.Phone)) {
		return ErrInvalidShipping.WithMessage("电话号码格式不正确")
	}
	return nil
}
