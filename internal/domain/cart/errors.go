package cart

import (
	apperrors "github.com/xiebiao/bookstore-checkout/pkg/errors"
)

var (
	ErrCartNotFound     = apperrors.ErrCartNotFound
	ErrCartItemNotFound = apperrors.ErrCartItemNotFound
	ErrQuantityMismatch = apperrors.ErrQuantityMismatch

	ErrInvalidQuantity = apperrors.New(apperrors.ErrCodeInvalidParams, "数量必须大于0")
)
