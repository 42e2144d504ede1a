package order

import (
	apperrors "github.com/xiebiao/bookstore-checkout/pkg/errors"
)

// 订单领域错误定义
var (
	ErrOrderNotFound      = apperrors.ErrOrderNotFound
	ErrInvalidOrderStatus = apperrors.ErrInvalidOrderStatus

	ErrInvalidOrderItems = apperrors.New(apperrors.ErrCodeInvalidParams, "订单明细不能为空")
	ErrInvalidQuantity   = apperrors.New(apperrors.ErrCodeInvalidParams, "购买数量必须大于0")
	ErrInvalidTotal      = apperrors.New(apperrors.ErrCodeInvalidParams, "订单金额必须大于0")
	ErrInvalidShipping   = apperrors.New(apperrors.ErrCodeInvalidParams, "收货信息不完整")
)
