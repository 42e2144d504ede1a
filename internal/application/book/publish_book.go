package book

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/xiebiao/bookstore-checkout/internal/domain/book"
	"github.com/xiebiao/bookstore-checkout/pkg/logger"
)

// PublishBookUseCase 图书上架
// 校验(ISBN格式、原价/折扣价、库存)都在领域服务里完成
type PublishBookUseCase struct {
	bookService book.Service
}

// NewPublishBookUseCase 创建上架用例
func NewPublishBookUseCase(bookService book.Service) *PublishBookUseCase {
	return &PublishBookUseCase{bookService: bookService}
}

// PublishBookRequest 上架请求
type PublishBookRequest struct {
	ISBN          string
	Title         string
	Author        string
	Publisher     string
	OriginalPrice decimal.Decimal
	DiscountPrice decimal.NullDecimal
	Stock         int
	CoverURL      string
	Description   string
	PublisherID   uint // 从认证中间件获取
}

// Execute 执行上架
func (uc *PublishBookUseCase) Execute(ctx context.Context, req PublishBookRequest) (*BookDetail, error) {
	b, err := uc.bookService.PublishBook(ctx, book.PublishParams{
		ISBN:          req.ISBN,
		Title:         req.Title,
		Author:        req.Author,
		Publisher:     req.Publisher,
		OriginalPrice: req.OriginalPrice,
		DiscountPrice: req.DiscountPrice,
		Stock:         req.Stock,
		CoverURL:      req.CoverURL,
		Description:   req.Description,
		PublisherID:   req.PublisherID,
	})
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info("图书已上架", zap.Uint("book_id", b.ID), zap.String("isbn", b.ISBN))
	return toDetail(b), nil
}

// BookDetail 图书详情
type BookDetail struct {
	BookListItem
	Description string `json:"description"`
	PublisherID uint   `json:"publisher_id"`
}

func toDetail(b *book.Book) *BookDetail {
	return &BookDetail{
		BookListItem: toListItem(b),
		Description:  b.Description,
		PublisherID:  b.PublisherID,
	}
}
