package mysql

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xiebiao/bookstore-checkout/internal/domain/order"
	apperrors "github.com/xiebiao/bookstore-checkout/pkg/errors"
)

// orderRepository 订单仓储实现(MySQL)
// 订单与明细是一个聚合,一起写入;查询时Preload明细避免N+1
type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓储
func NewOrderRepository(db *gorm.DB) order.Repository {
	return &orderRepository{db: db}
}

// Create gorm按外键关联一并插入Items
func (r *orderRepository) Create(ctx context.Context, o *order.Order) error {
	model := toOrderModel(o)
	if err := dbFrom(ctx, r.db).Create(model).Error; err != nil {
		return apperrors.Wrap(err, "创建订单失败")
	}

	o.ID = model.ID
	o.CreatedAt = model.CreatedAt
	o.UpdatedAt = model.UpdatedAt
	for i := range o.Items {
		o.Items[i].ID = model.Items[i].ID
		o.Items[i].OrderID = model.ID
	}
	return nil
}

func (r *orderRepository) FindByID(ctx context.Context, id uint) (*order.Order, error) {
	var model OrderModel
	if err := dbFrom(ctx, r.db).Preload("Items").First(&model, id).Error; err != nil {
		if isNotFound(err) {
			return nil, order.ErrOrderNotFound
		}
		return nil, apperrors.Wrap(err, "查询订单失败")
	}
	return toOrderEntity(&model), nil
}

func (r *orderRepository) FindByOrderNo(ctx context.Context, orderNo string) (*order.Order, error) {
	var model OrderModel
	if err := dbFrom(ctx, r.db).Preload("Items").Where("order_no = ?", orderNo).First(&model).Error; err != nil {
		if isNotFound(err) {
			return nil, order.ErrOrderNotFound
		}
		return nil, apperrors.Wrap(err, "查询订单失败")
	}
	return toOrderEntity(&model), nil
}

func (r *orderRepository) LockByID(ctx context.Context, id uint) (*order.Order, error) {
	var model OrderModel
	err := dbFrom(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"}).First(&model, id).Error
	if err != nil {
		if isNotFound(err) {
			return nil, order.ErrOrderNotFound
		}
		return nil, apperrors.Wrapf(err, "锁定订单%d失败", id)
	}
	return toOrderEntity(&model), nil
}

func (r *orderRepository) Update(ctx context.Context, o *order.Order) error {
	err := dbFrom(ctx, r.db).Model(&OrderModel{ID: o.ID}).Updates(map[string]interface{}{
		"status":           string(o.Status),
		"shipping_address": o.Shipping.Address,
		"shipping_city":    o.Shipping.City,
		"shipping_phone":   o.Shipping.Phone,
	}).Error
	if err != nil {
		return apperrors.Wrap(err, "更新订单失败")
	}
	return nil
}

func (r *orderRepository) List(ctx context.Context, page, pageSize int) ([]*order.Order, int64, error) {
	return r.list(dbFrom(ctx, r.db).Model(&OrderModel{}), page, pageSize)
}

func (r *orderRepository) ListByUserID(ctx context.Context, userID uint, page, pageSize int) ([]*order.Order, int64, error) {
	return r.list(dbFrom(ctx, r.db).Model(&OrderModel{}).Where("user_id = ?", userID), page, pageSize)
}

func (r *orderRepository) list(query *gorm.DB, page, pageSize int) ([]*order.Order, int64, error) {
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "查询订单总数失败")
	}

	var models []OrderModel
	err := query.Preload("Items").
		Order("created_at DESC").Order("id DESC").
		Limit(pageSize).Offset(pageOffset(page, pageSize)).
		Find(&models).Error
	if err != nil {
		return nil, 0, apperrors.Wrap(err, "查询订单列表失败")
	}

	orders := make([]*order.Order, len(models))
	for i := range models {
		orders[i] = toOrderEntity(&models[i])
	}
	return orders, total, nil
}

func toOrderModel(o *order.Order) *OrderModel {
	items := make([]OrderItemModel, len(o.Items))
	for i, it := range o.Items {
		items[i] = OrderItemModel{
			BookID:    it.BookID,
			Title:     it.Title,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
		}
	}
	return &OrderModel{
		ID:              o.ID,
		OrderNo:         o.OrderNo,
		UserID:          o.UserID,
		TotalPrice:      o.Total,
		Currency:        o.Currency,
		Status:          string(o.Status),
		ShippingAddress: o.Shipping.Address,
		ShippingCity:    o.Shipping.City,
		ShippingPhone:   o.Shipping.Phone,
		Items:           items,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}

func toOrderEntity(m *OrderModel) *order.Order {
	items := make([]order.OrderItem, len(m.Items))
	for i, it := range m.Items {
		items[i] = order.OrderItem{
			ID:        it.ID,
			OrderID:   it.OrderID,
			BookID:    it.BookID,
			Title:     it.Title,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
		}
	}
	return &order.Order{
		ID:       m.ID,
		OrderNo:  m.OrderNo,
		UserID:   m.UserID,
		Total:    m.TotalPrice,
		Currency: m.Currency,
		Status:   order.Status(m.Status),
		Shipping: order.Shipping{
			Address: m.ShippingAddress,
			City:    m.ShippingCity,
			Phone:   m.ShippingPhone,
		},
		Items:     items,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}
