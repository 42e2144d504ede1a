package handler

import (
	"github.com/gin-gonic/gin"

	apporder "github.com/xiebiao/bookstore-checkout/internal/application/order"
	"github.com/xiebiao/bookstore-checkout/internal/domain/order"
	"github.com/xiebiao/bookstore-checkout/internal/interface/http/dto"
	"github.com/xiebiao/bookstore-checkout/internal/interface/http/middleware"
	"github.com/xiebiao/bookstore-checkout/pkg/response"
)

// OrderHandler 订单HTTP处理器
type OrderHandler struct {
	createUseCase *apporder.CreateOrderUseCase
	updateUseCase *apporder.UpdateOrderUseCase
	cancelUseCase *apporder.CancelOrderUseCase
	query         *apporder.QueryService
}

// NewOrderHandler 创建订单处理器
func NewOrderHandler(
	createUseCase *apporder.CreateOrderUseCase,
	updateUseCase *apporder.UpdateOrderUseCase,
	cancelUseCase *apporder.CancelOrderUseCase,
	query *apporder.QueryService,
) *OrderHandler {
	return &OrderHandler{
		createUseCase: createUseCase,
		updateUseCase: updateUseCase,
		cancelUseCase: cancelUseCase,
		query:         query,
	}
}

// CreateOrder 结算
// @Summary      创建订单
// @Description  把选中的购物车行转成订单并按支付方式创建支付记录。PayPal/QR会返回redirect_url
// @Tags         订单
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.CreateOrderRequest true "购物车行、收货信息和支付方式"
// @Success      200 {object} response.Response{data=dto.OrderResponse} "下单成功"
// @Failure      200 {object} response.Response "40406购物车行不存在 / 50210支付服务调用失败"
// @Router       /api/v1/orders [post]
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req dto.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	result, err := h.createUseCase.Execute(c.Request.Context(), apporder.CreateOrderRequest{
		UserID:      middleware.MustGetUserID(c),
		CartItemIDs: req.CartItemIDs,
		Shipping: order.Shipping{
			Address: req.Address,
			City:    req.City,
			Phone:   req.Phone,
		},
		Method:        req.PaymentMethod,
		PaymentStatus: req.PaymentStatus,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.NewOrderResponse(result.Order, result.Payment))
}

// GetOrder 订单详情,本人或店员可见
// @Summary      订单详情
// @Tags         订单
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "订单ID"
// @Success      200 {object} response.Response{data=dto.OrderResponse}
// @Failure      200 {object} response.Response "40403订单不存在 / 40104无权限"
// @Router       /api/v1/orders/{id} [get]
func (h *OrderHandler) GetOrder(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	detail, err := h.query.Get(c.Request.Context(), id, middleware.MustGetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.NewOrderResponse(detail.Order, detail.Payment))
}

// ListMyOrders 我的订单
// @Summary      我的订单
// @Tags         订单
// @Produce      json
// @Security     BearerAuth
// @Param        page      query int false "页码"
// @Param        page_size query int false "每页数量"
// @Success      200 {object} response.Response{data=response.PageData}
// @Router       /api/v1/orders [get]
func (h *OrderHandler) ListMyOrders(c *gin.Context) {
	var req dto.ListOrdersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}
	req.Normalize()

	orders, total, err := h.query.ListMine(c.Request.Context(), middleware.MustGetUserID(c), req.Page, req.PageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithPage(c, toOrderList(orders), total, req.Page, req.PageSize)
}

// ListAllOrders 全部订单,仅店员
// @Summary      全部订单
// @Tags         订单管理
// @Produce      json
// @Security     BearerAuth
// @Param        page      query int false "页码"
// @Param        page_size query int false "每页数量"
// @Success      200 {object} response.Response{data=response.PageData}
// @Router       /api/v1/admin/orders [get]
func (h *OrderHandler) ListAllOrders(c *gin.Context) {
	var req dto.ListOrdersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}
	req.Normalize()

	orders, total, err := h.query.ListAll(c.Request.Context(), middleware.MustGetUserID(c), req.Page, req.PageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithPage(c, toOrderList(orders), total, req.Page, req.PageSize)
}

// UpdateOrder 店员修改订单状态或收货信息,支付状态随之同步
// @Summary      修改订单
// @Tags         订单管理
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "订单ID"
// @Param        request body dto.UpdateOrderRequest true "新状态和收货信息"
// @Success      200 {object} response.Response{data=dto.OrderResponse}
// @Failure      200 {object} response.Response "40900订单状态非法"
// @Router       /api/v1/admin/orders/{id} [put]
func (h *OrderHandler) UpdateOrder(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	o, p, err := h.updateUseCase.Execute(c.Request.Context(), apporder.UpdateOrderRequest{
		OrderID: id,
		Status:  req.Status,
		Shipping: order.Shipping{
			Address: req.Address,
			City:    req.City,
			Phone:   req.Phone,
		},
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.NewOrderResponse(o, p))
}

// CancelOrder 取消订单
// @Summary      取消订单
// @Tags         订单
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "订单ID"
// @Success      200 {object} response.Response{data=dto.OrderResponse}
// @Router       /api/v1/orders/{id}/cancel [post]
func (h *OrderHandler) CancelOrder(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	o, err := h.cancelUseCase.Execute(c.Request.Context(), id, middleware.MustGetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.NewOrderResponse(o, nil))
}

func toOrderList(orders []*order.Order) []*dto.OrderResponse {
	list := make([]*dto.OrderResponse, len(orders))
	for i, o := range orders {
		list[i] = dto.NewOrderResponse(o, nil)
	}
	return list
}
