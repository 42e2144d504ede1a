package book

import (
	"context"
	"errors"
	"regexp"

	"github.com/shopspring/decimal"
)

// Service 图书领域服务
type Service interface {
	// PublishBook 上架: ISBN格式、价格、库存校验,ISBN不能重复
	PublishBook(ctx context.Context, p PublishParams) (*Book, error)

	// GetBookByID 已下架的图书返回ErrBookNotFound
	GetBookByID(ctx context.Context, id uint) (*Book, error)

	// UpdateBookPrice 只有发布者本人可以修改
	UpdateBookPrice(ctx context.Context, id, userID uint, original decimal.Decimal, discount decimal.NullDecimal) error

	// UpdateBookStock 补货或调整上架数量,只有发布者本人可以修改
	UpdateBookStock(ctx context.Context, id, userID uint, stock int) error

	// DeleteBook 下架,只有发布者本人可以操作
	DeleteBook(ctx context.Context, id, userID uint) error

	ListBooks(ctx context.Context, params ListParams) ([]*Book, int64, error)
}

// PublishParams 上架参数
type PublishParams struct {
	ISBN          string
	Title         string
	Author        string
	Publisher     string
	OriginalPrice decimal.Decimal
	DiscountPrice decimal.NullDecimal
	Stock         int
	CoverURL      string
	Description   string
	PublisherID   uint
}

type service struct {
	repo Repository
}

// NewService 创建图书领域服务
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) PublishBook(ctx context.Context, p PublishParams) (*Book, error) {
	if !isValidISBN(p.ISBN) {
		return nil, ErrInvalidISBN
	}
	if err := ValidatePrice(p.OriginalPrice, p.DiscountPrice); err != nil {
		return nil, err
	}
	if p.Stock < 0 {
		return nil, ErrInvalidStock
	}

	// 唯一索引兜底并发,这里提前给出友好错误
	existing, err := s.repo.FindByISBN(ctx, p.ISBN)
	if err == nil && existing != nil {
		return nil, ErrISBNDuplicate
	}
	if err != nil && !errors.Is(err, ErrBookNotFound) {
		return nil, err
	}

	book := NewBook(p)
	if err := s.repo.Create(ctx, book); err != nil {
		return nil, err
	}
	return book, nil
}

func (s *service) GetBookByID(ctx context.Context, id uint) (*Book, error) {
	book, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !book.IsAvailable() {
		return nil, ErrBookNotFound
	}
	return book, nil
}

func (s *service) UpdateBookPrice(ctx context.Context, id, userID uint, original decimal.Decimal, discount decimal.NullDecimal) error {
	book, err := s.ownedBook(ctx, id, userID)
	if err != nil {
		return err
	}
	if err := book.UpdatePrice(original, discount); err != nil {
		return err
	}
	return s.repo.Update(ctx, book)
}

func (s *service) UpdateBookStock(ctx context.Context, id, userID uint, stock int) error {
	book, err := s.ownedBook(ctx, id, userID)
	if err != nil {
		return err
	}
	if err := book.UpdateStock(stock); err != nil {
		return err
	}
	return s.repo.Update(ctx, book)
}

func (s *service) DeleteBook(ctx context.Context, id, userID uint) error {
	if _, err := s.ownedBook(ctx, id, userID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func (s *service) ListBooks(ctx context.Context, params ListParams) ([]*Book, int64, error) {
	return s.repo.List(ctx, params)
}

func (s *service) ownedBook(ctx context.Context, id, userID uint) (*Book, error) {
	book, err := s.GetBookByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !book.IsOwnedBy(userID) {
		return nil, ErrUnauthorized
	}
	return book, nil
}

var nonDigit = regexp.MustCompile(`[^0-9]`)

// isValidISBN 去掉分隔符后为10位或13位数字(不校验校验位)
func isValidISBN(isbn string) bool {
	clean := nonDigit.ReplaceAllString(isbn, "")
	return len(clean) == 10 || len(clean) == 13
}
