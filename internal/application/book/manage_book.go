package book

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/xiebiao/bookstore-checkout/internal/domain/book"
)

// ManageBookUseCase 发布者维护自己上架的图书
type ManageBookUseCase struct {
	bookService book.Service
}

// NewManageBookUseCase 创建图书维护用例
func NewManageBookUseCase(bookService book.Service) *ManageBookUseCase {
	return &ManageBookUseCase{bookService: bookService}
}

// UpdatePrice 修改价格,已下单的订单明细保留下单时的快照价
func (uc *ManageBookUseCase) UpdatePrice(ctx context.Context, id, userID uint, original decimal.Decimal, discount decimal.NullDecimal) (*BookDetail, error) {
	if err := uc.bookService.UpdateBookPrice(ctx, id, userID, original, discount); err != nil {
		return nil, err
	}
	return uc.reload(ctx, id)
}

// UpdateStock 调整库存
func (uc *ManageBookUseCase) UpdateStock(ctx context.Context, id, userID uint, stock int) (*BookDetail, error) {
	if err := uc.bookService.UpdateBookStock(ctx, id, userID, stock); err != nil {
		return nil, err
	}
	return uc.reload(ctx, id)
}

// Delete 下架
func (uc *ManageBookUseCase) Delete(ctx context.Context, id, userID uint) error {
	return uc.bookService.DeleteBook(ctx, id, userID)
}

func (uc *ManageBookUseCase) reload(ctx context.Context, id uint) (*BookDetail, error) {
	b, err := uc.bookService.GetBookByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toDetail(b), nil
}
