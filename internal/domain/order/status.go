package order

import (
	"strings"
)

// Status 订单状态
type Status string

const (
	StatusPending    Status = "PENDING"    // 待处理(COD、PayPal待支付)
	StatusProcessing Status = "PROCESSING" // 处理中(已付款/已扫码)
	StatusShipped    Status = "SHIPPED"
	StatusDelivered  Status = "DELIVERED"
	StatusCancelled  Status = "CANCELLED"
	StatusFailed     Status = "FAILED"
	StatusRefunded   Status = "REFUNDED"
)

// AllStatuses 全部订单状态,按生命周期排列
var AllStatuses = []Status{
	StatusPending,
	StatusProcessing,
	StatusShipped,
	StatusDelivered,
	StatusCancelled,
	StatusFailed,
	StatusRefunded,
}

func (s Status) String() string { return string(s) }

// IsValid 是否为已定义的状态
func (s Status) IsValid() bool {
	for _, v := range AllStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// ParseStatus 严格解析,大小写不敏感,两端空白会被去掉
// 不认识的值返回ErrInvalidOrderStatus
func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToUpper(strings.TrimSpace(raw)))
	if !s.IsValid() {
		return "", ErrInvalidOrderStatus.WithMessage("订单状态非法: %q", raw)
	}
	return s, nil
}
