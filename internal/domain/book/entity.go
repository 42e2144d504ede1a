package book

import (
	"time"

	"github.com/shopspring/decimal"
)

// Book 图书实体(聚合根)
// 价格以目录币种(VND)计,用decimal保存,避免浮点误差。
// Stock是上架数量,Sold是累计售出;下单只累加Sold,不扣减Stock。
type Book struct {
	ID            uint
	ISBN          string
	Title         string
	Author        string
	Publisher     string
	OriginalPrice decimal.Decimal
	DiscountPrice decimal.NullDecimal // 可选,设置时必须小于原价
	Stock         int
	Sold          int
	CoverURL      string
	Description   string
	PublisherID   uint
	IsDeleted     bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewBook 创建新图书(工厂方法),价格需调用方先用ValidatePrice校验
func NewBook(p PublishParams) *Book {
	now := time.Now()
	return &Book{
		ISBN:          p.ISBN,
		Title:         p.Title,
		Author:        p.Author,
		Publisher:     p.Publisher,
		OriginalPrice: p.OriginalPrice,
		DiscountPrice: p.DiscountPrice,
		Stock:         p.Stock,
		CoverURL:      p.CoverURL,
		Description:   p.Description,
		PublisherID:   p.PublisherID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// FinalPrice 实际售价: 有折扣价且>0时取折扣价,否则取原价
func (b *Book) FinalPrice() decimal.Decimal {
	if b.DiscountPrice.Valid && b.DiscountPrice.Decimal.IsPositive() {
		return b.DiscountPrice.Decimal
	}
	return b.OriginalPrice
}

// IsAvailable 未下架的图书才能加入购物车和下单
func (b *Book) IsAvailable() bool {
	return !b.IsDeleted
}

// UpdatePrice 更新价格(领域行为)
func (b *Book) UpdatePrice(original decimal.Decimal, discount decimal.NullDecimal) error {
	if err := ValidatePrice(original, discount); err != nil {
		return err
	}
	b.OriginalPrice = original
	b.DiscountPrice = discount
	b.UpdatedAt = time.Now()
	return nil
}

// UpdateStock 更新库存
// 业务规则:库存不能为负数
func (b *Book) UpdateStock(newStock int) error {
	if newStock < 0 {
		return ErrInvalidStock
	}
	b.Stock = newStock
	b.UpdatedAt = time.Now()
	return nil
}

// IsOwnedBy 检查图书是否由指定用户发布
func (b *Book) IsOwnedBy(userID uint) bool {
	return b.PublisherID == userID
}

// ValidatePrice 原价必须>0;折扣价设置时必须>0且小于原价
func ValidatePrice(original decimal.Decimal, discount decimal.NullDecimal) error {
	if !original.IsPositive() {
		return ErrInvalidPrice
	}
	if discount.Valid {
		if !discount.Decimal.IsPositive() || !discount.Decimal.LessThan(original) {
			return ErrInvalidDiscount
		}
	}
	return nil
}
