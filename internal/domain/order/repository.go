package order

import (
	"context"
)

// Repository 订单仓储接口
// 事务通过context传递,订单和明细在同一事务中写入
type Repository interface {
	// Create 写入订单及明细,回填ID
	Create(ctx context.Context, order *Order) error

	// FindByID 含明细
	FindByID(ctx context.Context, id uint) (*Order, error)

	FindByOrderNo(ctx context.Context, orderNo string) (*Order, error)

	// LockByID SELECT ... FOR UPDATE,不加载明细
	LockByID(ctx context.Context, id uint) (*Order, error)

	// Update 只更新状态和收货信息
	Update(ctx context.Context, order *Order) error

	// List 全部订单(店员),按创建时间倒序
	List(ctx context.Context, page, pageSize int) ([]*Order, int64, error)

	ListByUserID(ctx context.Context, userID uint, page, pageSize int) ([]*Order, int64, error)
}
