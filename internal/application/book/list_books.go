package book

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/xiebiao/bookstore-checkout/internal/domain/book"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// ListBooksUseCase 图书列表,不含已下架
type ListBooksUseCase struct {
	bookService book.Service
}

// NewListBooksUseCase 创建列表查询用例
func NewListBooksUseCase(bookService book.Service) *ListBooksUseCase {
	return &ListBooksUseCase{bookService: bookService}
}

// ListBooksRequest 列表查询请求
type ListBooksRequest struct {
	Page     int
	PageSize int
	Keyword  string // 匹配书名、作者、出版社
	SortBy   string // price_asc | price_desc | sold_desc | created_at_desc
}

// BookListItem 列表项(不含description)
type BookListItem struct {
	ID            uint                `json:"id"`
	ISBN          string              `json:"isbn"`
	Title         string              `json:"title"`
	Author        string              `json:"author"`
	Publisher     string              `json:"publisher"`
	OriginalPrice decimal.Decimal     `json:"original_price"`
	DiscountPrice decimal.NullDecimal `json:"discount_price"`
	Price         decimal.Decimal     `json:"price"` // 实际售价
	Stock         int                 `json:"stock"`
	Sold          int                 `json:"sold"`
	CoverURL      string              `json:"cover_url"`
	CreatedAt     string              `json:"created_at"`
}

// ListBooksResponse 列表查询响应
type ListBooksResponse struct {
	List       []BookListItem `json:"list"`
	Total      int64          `json:"total"`
	Page       int            `json:"page"`
	PageSize   int            `json:"page_size"`
	TotalPages int            `json:"total_pages"`
}

// Execute page默认1,pageSize默认20、最大100
func (uc *ListBooksUseCase) Execute(ctx context.Context, req ListBooksRequest) (*ListBooksResponse, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.PageSize < 1 {
		req.PageSize = defaultPageSize
	}
	if req.PageSize > maxPageSize {
		req.PageSize = maxPageSize
	}

	books, total, err := uc.bookService.ListBooks(ctx, book.ListParams{
		Page:     req.Page,
		PageSize: req.PageSize,
		Keyword:  req.Keyword,
		SortBy:   req.SortBy,
	})
	if err != nil {
		return nil, err
	}

	list := make([]BookListItem, len(books))
	for i, b := range books {
		list[i] = toListItem(b)
	}

	return &ListBooksResponse{
		List:       list,
		Total:      total,
		Page:       req.Page,
		PageSize:   req.PageSize,
		TotalPages: int((total + int64(req.PageSize) - 1) / int64(req.PageSize)),
	}, nil
}

// GetBookUseCase 图书详情
type GetBookUseCase struct {
	bookService book.Service
}

// NewGetBookUseCase 创建详情查询用例
func NewGetBookUseCase(bookService book.Service) *GetBookUseCase {
	return &GetBookUseCase{bookService: bookService}
}

// Execute 已下架返回ErrBookNotFound
func (uc *GetBookUseCase) Execute(ctx context.Context, id uint) (*BookDetail, error) {
	b, err := uc.bookService.GetBookByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toDetail(b), nil
}

func toListItem(b *book.Book) BookListItem {
	return BookListItem{
		ID:            b.ID,
		ISBN:          b.ISBN,
		Title:         b.Title,
		Author:        b.Author,
		Publisher:     b.Publisher,
		OriginalPrice: b.OriginalPrice,
		DiscountPrice: b.DiscountPrice,
		Price:         b.FinalPrice(),
		Stock:         b.Stock,
		Sold:          b.Sold,
		CoverURL:      b.CoverURL,
		CreatedAt:     b.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}
