package mysql

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xiebiao/bookstore-checkout/internal/domain/cart"
	apperrors "github.com/xiebiao/bookstore-checkout/pkg/errors"
)

// cartRepository 购物车仓储实现
// 数量变更都是单条upsert语句,并发加购不会丢失更新
type cartRepository struct {
	db *gorm.DB
}

// NewCartRepository 创建购物车仓储
func NewCartRepository(db *gorm.DB) cart.Repository {
	return &cartRepository{db: db}
}

func (r *cartRepository) GetOrCreate(ctx context.Context, userID uint) (*cart.Cart, error) {
	db := dbFrom(ctx, r.db)
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoNothing: true,
	}).Create(&CartModel{UserID: userID}).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "创建购物车失败")
	}
	return r.FindByUserID(ctx, userID)
}

func (r *cartRepository) FindByUserID(ctx context.Context, userID uint) (*cart.Cart, error) {
	var model CartModel
	err := dbFrom(ctx, r.db).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Where("user_id = ?", userID).
		First(&model).Error
	if err != nil {
		if isNotFound(err) {
			return nil, cart.ErrCartNotFound
		}
		return nil, apperrors.Wrap(err, "查询购物车失败")
	}
	return toCartEntity(&model), nil
}

func (r *cartRepository) FindItem(ctx context.Context, cartID, bookID uint) (*cart.CartItem, error) {
	var model CartItemModel
	err := dbFrom(ctx, r.db).Where("cart_id = ? AND book_id = ?", cartID, bookID).First(&model).Error
	if err != nil {
		if isNotFound(err) {
			return nil, cart.ErrCartItemNotFound
		}
		return nil, apperrors.Wrap(err, "查询购物车商品失败")
	}
	item := toCartItemEntity(&model)
	return &item, nil
}

func (r *cartRepository) AddQuantity(ctx context.Context, cartID, bookID uint, qty int) error {
	return r.upsert(ctx, cartID, bookID, qty, gorm.Expr("quantity + ?", qty))
}

func (r *cartRepository) SetQuantity(ctx context.Context, cartID, bookID uint, qty int) error {
	return r.upsert(ctx, cartID, bookID, qty, qty)
}

// upsert INSERT ... ON DUPLICATE KEY UPDATE quantity = <onConflict>
func (r *cartRepository) upsert(ctx context.Context, cartID, bookID uint, qty int, onConflict interface{}) error {
	err := dbFrom(ctx, r.db).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "cart_id"}, {Name: "book_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"quantity":   onConflict,
			"updated_at": time.Now(),
		}),
	}).Create(&CartItemModel{CartID: cartID, BookID: bookID, Quantity: qty}).Error
	if err != nil {
		return apperrors.Wrap(err, "更新购物车失败")
	}
	return nil
}

func (r *cartRepository) DeleteItem(ctx context.Context, cartID, bookID uint) (int64, error) {
	result := dbFrom(ctx, r.db).Where("cart_id = ? AND book_id = ?", cartID, bookID).Delete(&CartItemModel{})
	if result.Error != nil {
		return 0, apperrors.Wrap(result.Error, "删除购物车商品失败")
	}
	return result.RowsAffected, nil
}

func (r *cartRepository) FindItemsByIDs(ctx context.Context, cartID uint, ids []uint) ([]*cart.CartItem, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var models []CartItemModel
	err := dbFrom(ctx, r.db).
		Where("cart_id = ? AND id IN ?", cartID, ids).
		Order("id ASC").
		Find(&models).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "查询购物车商品失败")
	}
	items := make([]*cart.CartItem, len(models))
	for i := range models {
		item := toCartItemEntity(&models[i])
		items[i] = &item
	}
	return items, nil
}

func (r *cartRepository) DeleteItemsByIDs(ctx context.Context, cartID uint, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	err := dbFrom(ctx, r.db).Where("cart_id = ? AND id IN ?", cartID, ids).Delete(&CartItemModel{}).Error
	if err != nil {
		return apperrors.Wrap(err, "清理购物车失败")
	}
	return nil
}

func toCartEntity(m *CartModel) *cart.Cart {
	items := make([]cart.CartItem, len(m.Items))
	for i := range m.Items {
		items[i] = toCartItemEntity(&m.Items[i])
	}
	return &cart.Cart{
		ID:        m.ID,
		UserID:    m.UserID,
		Items:     items,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func toCartItemEntity(m *CartItemModel) cart.CartItem {
	return cart.CartItem{
		ID:        m.ID,
		CartID:    m.CartID,
		BookID:    m.BookID,
		Quantity:  m.Quantity,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}
