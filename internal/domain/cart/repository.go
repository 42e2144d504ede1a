package cart

import (
	"context"
)

// Repository 购物车仓储接口
type Repository interface {
	// GetOrCreate 并发安全: INSERT ... ON CONFLICT(user_id) DO NOTHING 后重新读取
	GetOrCreate(ctx context.Context, userID uint) (*Cart, error)

	// FindByUserID 含购物车行,不存在返回ErrCartNotFound
	FindByUserID(ctx context.Context, userID uint) (*Cart, error)

	// FindItem 不存在返回ErrCartItemNotFound
	FindItem(ctx context.Context, cartID, bookID uint) (*CartItem, error)

	// AddQuantity 不存在则插入,存在则 quantity = quantity + qty
	AddQuantity(ctx context.Context, cartID, bookID uint, qty int) error

	// SetQuantity 不存在则插入,存在则覆盖(后写者胜)
	SetQuantity(ctx context.Context, cartID, bookID uint, qty int) error

	// DeleteItem 返回删除的行数
	DeleteItem(ctx context.Context, cartID, bookID uint) (int64, error)

	// FindItemsByIDs 只返回属于cartID的行
	FindItemsByIDs(ctx context.Context, cartID uint, ids []uint) ([]*CartItem, error)

	// DeleteItemsByIDs 下单后删除被消费的行
	DeleteItemsByIDs(ctx context.Context, cartID uint, ids []uint) error
}
