// Package inventory 库存账本
//
// 加购物车时做软预留校验(购物车数量+新增数量不超过库存),
// 下单时只原子累加销量,不扣减库存。
package inventory

import (
	"context"

	"github.com/xiebiao/bookstore-checkout/internal/domain/book"
	apperrors "github.com/xiebiao/bookstore-checkout/pkg/errors"
)

var (
	// ErrInsufficientStock 库存不足
	ErrInsufficientStock = apperrors.ErrInsufficientStock

	// ErrInvalidQuantity 数量必须大于0
	ErrInvalidQuantity = apperrors.New(apperrors.ErrCodeInvalidParams, "数量必须大于0")
)

// SoldCounter 累加销量的能力,由book.Repository实现
type SoldCounter interface {
	IncrSold(ctx context.Context, id uint, qty int) error
}

// Ledger 库存账本
type Ledger struct {
	books SoldCounter
}

// NewLedger 创建库存账本
func NewLedger(books SoldCounter) *Ledger {
	return &Ledger{books: books}
}

// Reserve 软预留校验: inCart+qty不能超过库存
// 不落库,并发下的超额由下单时的行锁和业务容忍兜底
func (l *Ledger) Reserve(b *book.Book, inCart, qty int) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	return CheckAvailable(b, inCart+qty)
}

// CheckAvailable 校验购物车中某本书的目标数量
func CheckAvailable(b *book.Book, want int) error {
	if want > b.Stock {
		return ErrInsufficientStock.WithMessage("库存不足: 《%s》仅剩%d本", b.Title, b.Stock)
	}
	return nil
}

// Commit 下单时累加销量
func (l *Ledger) Commit(ctx context.Context, bookID uint, qty int) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	return l.books.IncrSold(ctx, bookID, qty)
}
