package payment

import (
	apperrors "github.com/xiebiao/bookstore-checkout/pkg/errors"
)

var (
	ErrPaymentNotFound    = apperrors.ErrPaymentNotFound
	ErrProviderError      = apperrors.ErrProviderError
	ErrCallbackInProgress = apperrors.ErrCallbackInProgress

	ErrUnsupportedMethod    = apperrors.New(apperrors.ErrCodeInvalidParams, "不支持的支付方式")
	ErrInvalidPaymentStatus = apperrors.New(apperrors.ErrCodeInvalidParams, "支付状态非法")

	// ErrEventNotSupported 支付方式不接受该事件,如对货到付款发起PayPal回调
	ErrEventNotSupported = apperrors.New(apperrors.ErrCodeBusinessError, "该支付方式不支持此操作")
)
