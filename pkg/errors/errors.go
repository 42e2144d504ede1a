package errors

import (
	"errors"
	"fmt"
)

// AppError 应用错误
// Code给客户端判断错误类型,Message给用户看,Err只进日志不下发
type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`

	origin *AppError // WithCause/WithMessage派生时指向预定义错误
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap 支持errors.Is和errors.As
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is 派生自同一个预定义错误,或错误码和提示都相同,视为同一错误
// 预定义错误被WithCause/WithMessage复制后仍然可以用errors.Is匹配
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	if e.root() == t.root() {
		return true
	}
	return e.Code == t.Code && e.Message == t.Message
}

func (e *AppError) root() *AppError {
	if e.origin != nil {
		return e.origin
	}
	return e
}

// WithCause 基于预定义错误附加底层原因,不修改原变量
func (e *AppError) WithCause(err error) *AppError {
	return &AppError{Code: e.Code, Message: e.Message, Err: err, origin: e.root()}
}

// WithMessage 基于预定义错误替换提示信息(错误码不变)
func (e *AppError) WithMessage(format string, args ...interface{}) *AppError {
	return &AppError{Code: e.Code, Message: fmt.Sprintf(format, args...), Err: e.Err, origin: e.root()}
}

// New 创建新的AppError
func New(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap 把底层错误(数据库、网络)包装成内部错误,隐藏实现细节
func Wrap(err error, message string) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: message,
		Err:     err,
	}
}

// Wrapf 格式化包装错误
func Wrapf(err error, format string, args ...interface{}) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: fmt.Sprintf(format, args...),
		Err:     err,
	}
}

// =========================================
// 错误码定义
// =========================================
// - 4xxxx: 客户端错误(参数错误、业务规则校验失败)
// - 5xxxx: 服务端错误(数据库异常、外部服务调用失败)

const (
	// 系统级错误码(50000-50099)
	ErrCodeInternal      = 50000
	ErrCodeDatabaseError = 50001
	ErrCodeRedisError    = 50002

	// 外部依赖错误(50200-50299)
	ErrCodeProviderError     = 50210 // 第三方支付调用失败
	ErrCodeProviderOpen      = 50211 // 支付通道熔断中
	ErrCodeNotificationError = 50220 // 通知发送失败

	// 认证授权错误(40100-40199)
	ErrCodeUnauthorized    = 40100
	ErrCodeInvalidToken    = 40101
	ErrCodeTokenExpired    = 40102
	ErrCodeInvalidPassword = 40103
	ErrCodeForbidden       = 40104

	// 资源错误(40400-40499)
	ErrCodeNotFound         = 40400
	ErrCodeUserNotFound     = 40401
	ErrCodeBookNotFound     = 40402
	ErrCodeOrderNotFound    = 40403
	ErrCodeCartNotFound     = 40404
	ErrCodePaymentNotFound  = 40405
	ErrCodeCartItemNotFound = 40406

	// 业务规则错误(40000-40099)
	ErrCodeBusinessError      = 40000
	ErrCodeInsufficientStock  = 40001
	ErrCodeEmailDuplicate     = 40003
	ErrCodeISBNDuplicate      = 40004
	ErrCodeWeakPassword       = 40005
	ErrCodeQuantityMismatch   = 40006 // 路径与请求体中的图书ID不一致
	ErrCodeCallbackInProgress = 40007 // 同一笔支付回调正在处理
	ErrCodeDuplicateEntry     = 40009

	// 参数错误(40900-40999)
	ErrCodeInvalidParams = 40900
	ErrCodeBindError     = 40901
)

// =========================================
// 预定义错误
// =========================================

var (
	ErrInternal      = New(ErrCodeInternal, "系统内部错误")
	ErrDatabaseError = New(ErrCodeDatabaseError, "数据库错误")
	ErrRedisError    = New(ErrCodeRedisError, "缓存服务错误")

	ErrProviderError     = New(ErrCodeProviderError, "支付服务调用失败")
	ErrProviderOpen      = New(ErrCodeProviderOpen, "支付通道暂时不可用,请稍后重试")
	ErrNotificationError = New(ErrCodeNotificationError, "通知发送失败")

	ErrUnauthorized    = New(ErrCodeUnauthorized, "请先登录")
	ErrInvalidToken    = New(ErrCodeInvalidToken, "无效的Token")
	ErrTokenExpired    = New(ErrCodeTokenExpired, "Token已过期")
	ErrInvalidPassword = New(ErrCodeInvalidPassword, "密码错误")
	ErrForbidden       = New(ErrCodeForbidden, "无权限访问")

	ErrUserNotFound  = New(ErrCodeUserNotFound, "用户不存在")
	ErrBookNotFound  = New(ErrCodeBookNotFound, "图书不存在")
	ErrOrderNotFound = New(ErrCodeOrderNotFound, "订单不存在")

	ErrCartNotFound     = New(ErrCodeCartNotFound, "购物车不存在")
	ErrCartItemNotFound = New(ErrCodeCartItemNotFound, "购物车中没有该商品")
	ErrPaymentNotFound  = New(ErrCodePaymentNotFound, "支付记录不存在")

	ErrInsufficientStock  = New(ErrCodeInsufficientStock, "库存不足")
	ErrInvalidOrderStatus = New(ErrCodeInvalidParams, "订单状态非法")
	ErrEmailDuplicate     = New(ErrCodeEmailDuplicate, "邮箱已被注册")
	ErrISBNDuplicate      = New(ErrCodeISBNDuplicate, "ISBN号已存在")
	ErrWeakPassword       = New(ErrCodeWeakPassword, "密码强度不足(需8-20位,包含字母和数字)")
	ErrQuantityMismatch   = New(ErrCodeQuantityMismatch, "请求中的图书ID不一致")
	ErrCallbackInProgress = New(ErrCodeCallbackInProgress, "支付回调正在处理中")
	ErrDuplicateEntry     = New(ErrCodeDuplicateEntry, "记录已存在")

	ErrInvalidParams = New(ErrCodeInvalidParams, "参数错误")
	ErrBindError     = New(ErrCodeBindError, "参数格式错误")
)

// =========================================
// 辅助函数
// =========================================

// IsAppError 判断是否为AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError 提取AppError(不是AppError则包装成Internal错误)
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Wrap(err, "系统内部错误")
}

// CodeOf 返回错误码,非AppError返回ErrCodeInternal
func CodeOf(err error) int {
	if err == nil {
		return 0
	}
	return GetAppError(err).Code
}
