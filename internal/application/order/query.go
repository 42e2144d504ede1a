package order

import (
	"context"

	"github.com/xiebiao/bookstore-checkout/internal/domain/order"
	"github.com/xiebiao/bookstore-checkout/internal/domain/payment"
	"github.com/xiebiao/bookstore-checkout/internal/domain/user"
	apperrors "github.com/xiebiao/bookstore-checkout/pkg/errors"
)

// QueryService 订单查询
type QueryService struct {
	orders   order.Repository
	payments payment.Repository
	users    user.Repository
}

// NewQueryService 创建订单查询
func NewQueryService(orders order.Repository, payments payment.Repository, users user.Repository) *QueryService {
	return &QueryService{orders: orders, payments: payments, users: users}
}

// Detail 订单及其支付
type Detail struct {
	Order   *order.Order
	Payment *payment.Payment
}

// Get 订单详情,只有订单所属用户和店员可见
func (s *QueryService) Get(ctx context.Context, orderID, viewerID uint) (*Detail, error) {
	o, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := authorize(ctx, s.users, o, viewerID); err != nil {
		return nil, err
	}
	p, err := s.payments.FindByOrderID(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	return &Detail{Order: o, Payment: p}, nil
}

// ListMine 当前用户的订单
func (s *QueryService) ListMine(ctx context.Context, userID uint, page, pageSize int) ([]*order.Order, int64, error) {
	return s.orders.ListByUserID(ctx, userID, page, pageSize)
}

// ListAll 全部订单,仅店员
func (s *QueryService) ListAll(ctx context.Context, viewerID uint, page, pageSize int) ([]*order.Order, int64, error) {
	u, err := s.users.FindByID(ctx, viewerID)
	if err != nil {
		return nil, 0, err
	}
	if !u.IsStaff() {
		return nil, 0, apperrors.ErrForbidden
	}
	return s.orders.List(ctx, page, pageSize)
}

func authorize(ctx context.Context, users user.Repository, o *order.Order, operatorID uint) error {
	if o.IsOwnedBy(operatorID) {
		return nil
	}
	u, err := users.FindByID(ctx, operatorID)
	if err != nil {
		return err
	}
	if !u.IsStaff() {
		return apperrors.ErrForbidden
	}
	return nil
}
