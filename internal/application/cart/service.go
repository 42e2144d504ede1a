// Package cart 购物车用例
//
// 加购和改数量时做库存软预留校验,数量写入都是单条upsert。
// 加购在事务内锁定图书行,同一本书的并发加购串行执行。
package cart

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/xiebiao/bookstore-checkout/internal/domain/book"
	"github.com/xiebiao/bookstore-checkout/internal/domain/cart"
	"github.com/xiebiao/bookstore-checkout/internal/domain/inventory"
	"github.com/xiebiao/bookstore-checkout/internal/domain/pricing"
)

// TxManager 事务边界,由mysql.TxManager实现
type TxManager interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service 购物车用例集合
type Service struct {
	carts     cart.Repository
	books     book.Repository
	ledger    *inventory.Ledger
	pricing   *pricing.Engine
	txManager TxManager
}

// NewService 创建购物车用例
func NewService(carts cart.Repository, books book.Repository, ledger *inventory.Ledger, engine *pricing.Engine, txManager TxManager) *Service {
	return &Service{
		carts:     carts,
		books:     books,
		ledger:    ledger,
		pricing:   engine,
		txManager: txManager,
	}
}

// LineView 购物车行
type LineView struct {
	ItemID    uint            `json:"item_id"`
	BookID    uint            `json:"book_id"`
	Title     string          `json:"title"`
	CoverURL  string          `json:"cover_url"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	Amount    decimal.Decimal `json:"amount"`
	Stock     int             `json:"stock"`
	// Available 图书已下架时为false,不计入合计
	Available bool `json:"available"`
}

// View 购物车及合计(目录币种)
type View struct {
	ID        uint            `json:"id"`
	Items     []LineView      `json:"items"`
	Total     decimal.Decimal `json:"total"`
	Currency  string          `json:"currency"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// GetOrCreate 首次访问时创建购物车
func (s *Service) GetOrCreate(ctx context.Context, userID uint) (*cart.Cart, error) {
	return s.carts.GetOrCreate(ctx, userID)
}

// Get 购物车详情
func (s *Service) Get(ctx context.Context, userID uint) (*View, error) {
	c, err := s.carts.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, c)
}

// Add 加购,与已有行合并
func (s *Service) Add(ctx context.Context, userID, bookID uint, qty int) (*View, error) {
	if qty <= 0 {
		return nil, cart.ErrInvalidQuantity
	}
	err := s.txManager.Transaction(ctx, func(ctx context.Context) error {
		return s.add(ctx, userID, bookID, qty)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, userID)
}

func (s *Service) add(ctx context.Context, userID, bookID uint, qty int) error {
	b, err := s.books.LockByID(ctx, bookID)
	if err != nil {
		return err
	}
	if !b.IsAvailable() {
		return book.ErrBookNotFound
	}

	c, err := s.carts.GetOrCreate(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.ledger.Reserve(b, c.QuantityOf(bookID), qty); err != nil {
		return err
	}
	return s.carts.AddQuantity(ctx, c.ID, bookID, qty)
}

// UpdateQuantity 设置数量,<=0时删除该行
func (s *Service) UpdateQuantity(ctx context.Context, userID, bookID uint, qty int) (*View, error) {
	c, err := s.carts.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	b, err := s.books.FindByID(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if !b.IsAvailable() {
		return nil, book.ErrBookNotFound
	}

	if qty <= 0 {
		if _, err := s.carts.DeleteItem(ctx, c.ID, bookID); err != nil {
			return nil, err
		}
	} else {
		if err := inventory.CheckAvailable(b, qty); err != nil {
			return nil, err
		}
		if err := s.carts.SetQuantity(ctx, c.ID, bookID, qty); err != nil {
			return nil, err
		}
	}
	return s.Get(ctx, userID)
}

// Remove 删除一行
func (s *Service) Remove(ctx context.Context, userID, bookID uint) error {
	c, err := s.carts.FindByUserID(ctx, userID)
	if err != nil {
		return err
	}
	n, err := s.carts.DeleteItem(ctx, c.ID, bookID)
	if err != nil {
		return err
	}
	if n == 0 {
		return cart.ErrCartItemNotFound
	}
	return nil
}

// Merge 登录后合并本地购物车,全部成功或全部回滚
// 图书不存在或数量<=0的行跳过
func (s *Service) Merge(ctx context.Context, userID uint, items []cart.GuestItem) (*View, error) {
	err := s.txManager.Transaction(ctx, func(ctx context.Context) error {
		for _, it := range items {
			if it.Quantity <= 0 {
				continue
			}
			err := s.add(ctx, userID, it.BookID, it.Quantity)
			if errors.Is(err, book.ErrBookNotFound) {
				continue
			}
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, userID)
}

func (s *Service) view(ctx context.Context, c *cart.Cart) (*View, error) {
	v := &View{
		ID:        c.ID,
		Items:     make([]LineView, 0, len(c.Items)),
		Currency:  s.pricing.CatalogCurrency(),
		UpdatedAt: c.UpdatedAt,
	}

	var lines []pricing.Line
	for _, it := range c.Items {
		b, err := s.books.FindByID(ctx, it.BookID)
		if err != nil {
			return nil, err
		}
		price := b.FinalPrice()
		v.Items = append(v.Items, LineView{
			ItemID:    it.ID,
			BookID:    b.ID,
			Title:     b.Title,
			CoverURL:  b.CoverURL,
			UnitPrice: price,
			Quantity:  it.Quantity,
			Amount:    s.pricing.LineAmount(price, it.Quantity),
			Stock:     b.Stock,
			Available: b.IsAvailable(),
		})
		if b.IsAvailable() {
			lines = append(lines, pricing.Line{UnitPrice: price, Quantity: it.Quantity})
		}
	}
	v.Total = s.pricing.Total(lines)
	return v, nil
}
