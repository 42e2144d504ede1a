package book

import (
	"context"
)

// Repository 图书仓储接口
// 事务由context携带(见mysql.TxManager),实现方从ctx中取tx
type Repository interface {
	Create(ctx context.Context, book *Book) error

	// FindByID 已下架的图书也会返回,由调用方判断IsAvailable
	FindByID(ctx context.Context, id uint) (*Book, error)

	FindByISBN(ctx context.Context, isbn string) (*Book, error)

	Update(ctx context.Context, book *Book) error

	// Delete 下架(is_deleted=true),历史订单仍引用这本书
	Delete(ctx context.Context, id uint) error

	// List 分页查询(不含已下架)
	List(ctx context.Context, params ListParams) ([]*Book, int64, error)

	// LockByID SELECT ... FOR UPDATE
	LockByID(ctx context.Context, id uint) (*Book, error)

	// IncrSold 原子累加销量: UPDATE books SET sold = sold + ? WHERE id = ?
	IncrSold(ctx context.Context, id uint, qty int) error
}

// ListParams 列表查询参数
type ListParams struct {
	Page     int
	PageSize int
	Keyword  string // 匹配书名、作者、出版社
	SortBy   string // price_asc | price_desc | sold_desc | created_at_desc(默认)
}
