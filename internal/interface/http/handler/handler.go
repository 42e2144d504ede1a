// Package handler HTTP处理器
//
// Handler只负责解析请求、调用应用层、组装响应,业务错误统一交给response.Error。
package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "github.com/xiebiao/bookstore-checkout/pkg/errors"
	"github.com/xiebiao/bookstore-checkout/pkg/response"
)

// bindFailed 参数绑定或校验失败
func bindFailed(c *gin.Context, err error) {
	response.ErrorWithCode(c, apperrors.ErrCodeInvalidParams, "参数错误: "+err.Error())
}

// pathID 解析路径中的正整数ID
func pathID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		response.ErrorWithCode(c, apperrors.ErrCodeInvalidParams, "参数错误: 无效的"+name)
		return 0, false
	}
	return uint(id), true
}
