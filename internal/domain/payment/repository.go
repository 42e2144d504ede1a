package payment

import (
	"context"
)

// Repository 支付仓储接口
type Repository interface {
	// Create order_id和transaction_id都有唯一索引
	Create(ctx context.Context, p *Payment) error

	FindByOrderID(ctx context.Context, orderID uint) (*Payment, error)

	FindByTransactionID(ctx context.Context, transactionID string) (*Payment, error)

	// LockByOrderID SELECT ... FOR UPDATE
	LockByOrderID(ctx context.Context, orderID uint) (*Payment, error)

	// Update 只更新状态
	Update(ctx context.Context, p *Payment) error
}
