package user

import (
	apperrors "github.com/xiebiao/bookstore-checkout/pkg/errors"
)

var (
	ErrUserNotFound    = apperrors.ErrUserNotFound
	ErrEmailDuplicate  = apperrors.ErrEmailDuplicate
	ErrInvalidEmail    = apperrors.New(apperrors.ErrCodeInvalidParams, "邮箱格式不正确")
	ErrInvalidNickname = apperrors.New(apperrors.ErrCodeInvalidParams, "昵称长度应为2-50个字符")
)
