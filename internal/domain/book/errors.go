package book

import (
	apperrors "github.com/xiebiao/bookstore-checkout/pkg/errors"
)

// 图书领域错误定义
var (
	// ErrBookNotFound 图书不存在(含已下架)
	ErrBookNotFound = apperrors.ErrBookNotFound

	// ErrISBNDuplicate ISBN已存在
	ErrISBNDuplicate = apperrors.ErrISBNDuplicate

	ErrInvalidPrice    = apperrors.New(apperrors.ErrCodeInvalidParams, "价格必须大于0")
	ErrInvalidDiscount = apperrors.New(apperrors.ErrCodeInvalidParams, "折扣价必须大于0且低于原价")
	ErrInvalidStock    = apperrors.New(apperrors.ErrCodeInvalidParams, "库存不能为负数")
	ErrInvalidISBN     = apperrors.New(apperrors.ErrCodeInvalidParams, "ISBN格式不正确")

	// ErrUnauthorized 无权操作此图书
	ErrUnauthorized = apperrors.New(apperrors.ErrCodeForbidden, "无权操作此图书")
)
