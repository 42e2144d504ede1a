package handler

import (
	"github.com/gin-gonic/gin"

	apppayment "github.com/xiebiao/bookstore-checkout/internal/application/payment"
	"github.com/xiebiao/bookstore-checkout/internal/interface/http/dto"
	apperrors "github.com/xiebiao/bookstore-checkout/pkg/errors"
	"github.com/xiebiao/bookstore-checkout/pkg/response"
)

// PaymentHandler PayPal回跳处理器
// PayPal把用户重定向回return_url/cancel_url,查询参数token即PayPal订单ID
type PaymentHandler struct {
	executeUseCase *apppayment.ExecutePaymentUseCase
	cancelUseCase  *apppayment.CancelPaymentUseCase
}

// NewPaymentHandler 创建支付回跳处理器
func NewPaymentHandler(executeUseCase *apppayment.ExecutePaymentUseCase, cancelUseCase *apppayment.CancelPaymentUseCase) *PaymentHandler {
	return &PaymentHandler{
		executeUseCase: executeUseCase,
		cancelUseCase:  cancelUseCase,
	}
}

// PayPalSuccess 用户在PayPal确认付款后回跳,扣款并把订单置为PROCESSING
// @Summary      PayPal支付成功回跳
// @Tags         支付
// @Produce      json
// @Param        token   query string true  "PayPal订单ID"
// @Param        PayerID query string false "付款人ID"
// @Success      200 {object} response.Response{data=dto.OrderResponse}
// @Failure      200 {object} response.Response "40405支付记录不存在 / 40007回调处理中"
// @Router       /api/v1/payments/paypal/success [get]
func (h *PaymentHandler) PayPalSuccess(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Error(c, apperrors.ErrInvalidParams.WithMessage("缺少token参数"))
		return
	}

	result, err := h.executeUseCase.Execute(c.Request.Context(), token, c.Query("PayerID"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.NewOrderResponse(result.Order, result.Payment))
}

// PayPalCancel 用户在PayPal取消付款后回跳
// @Summary      PayPal支付取消回跳
// @Tags         支付
// @Produce      json
// @Param        token query string true "PayPal订单ID"
// @Success      200 {object} response.Response{data=dto.OrderResponse}
// @Router       /api/v1/payments/paypal/cancel [get]
func (h *PaymentHandler) PayPalCancel(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Error(c, apperrors.ErrInvalidParams.WithMessage("缺少token参数"))
		return
	}

	result, err := h.cancelUseCase.Execute(c.Request.Context(), token)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.NewOrderResponse(result.Order, result.Payment))
}
