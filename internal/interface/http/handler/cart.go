package handler

import (
	"github.com/gin-gonic/gin"

	appcart "github.com/xiebiao/bookstore-checkout/internal/application/cart"
	"github.com/xiebiao/bookstore-checkout/internal/domain/cart"
	"github.com/xiebiao/bookstore-checkout/internal/interface/http/dto"
	"github.com/xiebiao/bookstore-checkout/internal/interface/http/middleware"
	"github.com/xiebiao/bookstore-checkout/pkg/response"
)

// CartHandler 购物车HTTP处理器
type CartHandler struct {
	service *appcart.Service
}

// NewCartHandler 创建购物车处理器
func NewCartHandler(service *appcart.Service) *CartHandler {
	return &CartHandler{service: service}
}

// GetCart 当前用户的购物车
// @Summary      查看购物车
// @Tags         购物车
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response{data=appcart.View}
// @Router       /api/v1/cart [get]
func (h *CartHandler) GetCart(c *gin.Context) {
	view, err := h.service.Get(c.Request.Context(), middleware.MustGetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, view)
}

// AddItem 加入购物车
// @Summary      加入购物车
// @Description  购物车已有数量+新增数量不能超过库存
// @Tags         购物车
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.AddCartItemRequest true "图书和数量"
// @Success      200 {object} response.Response{data=appcart.View}
// @Failure      200 {object} response.Response "40001库存不足"
// @Router       /api/v1/cart/items [post]
func (h *CartHandler) AddItem(c *gin.Context) {
	var req dto.AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}
	view, err := h.service.Add(c.Request.Context(), middleware.MustGetUserID(c), req.BookID, req.Quantity)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, view)
}

// UpdateItem 修改数量
// @Summary      修改购物车数量
// @Description  数量为0时删除该行;请求体中的book_id必须与路径一致
// @Tags         购物车
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        book_id path int true "图书ID"
// @Param        request body dto.UpdateCartItemRequest true "数量"
// @Success      200 {object} response.Response{data=appcart.View}
// @Failure      200 {object} response.Response "40006图书ID不一致"
// @Router       /api/v1/cart/items/{book_id} [put]
func (h *CartHandler) UpdateItem(c *gin.Context) {
	bookID, ok := pathID(c, "book_id")
	if !ok {
		return
	}
	var req dto.UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}
	if req.BookID != bookID {
		response.Error(c, cart.ErrQuantityMismatch)
		return
	}

	view, err := h.service.UpdateQuantity(c.Request.Context(), middleware.MustGetUserID(c), bookID, req.Quantity)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, view)
}

// RemoveItem 删除一行
// @Summary      删除购物车商品
// @Tags         购物车
// @Produce      json
// @Security     BearerAuth
// @Param        book_id path int true "图书ID"
// @Success      200 {object} response.Response
// @Failure      200 {object} response.Response "40406购物车中没有该商品"
// @Router       /api/v1/cart/items/{book_id} [delete]
func (h *CartHandler) RemoveItem(c *gin.Context) {
	bookID, ok := pathID(c, "book_id")
	if !ok {
		return
	}
	if err := h.service.Remove(c.Request.Context(), middleware.MustGetUserID(c), bookID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// Merge 合并本地购物车
// @Summary      合并本地购物车
// @Tags         购物车
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.MergeCartRequest true "本地购物车"
// @Success      200 {object} response.Response{data=appcart.View}
// @Router       /api/v1/cart/merge [post]
func (h *CartHandler) Merge(c *gin.Context) {
	var req dto.MergeCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}
	items := make([]cart.GuestItem, len(req.Items))
	for i, it := range req.Items {
		items[i] = cart.GuestItem{BookID: it.BookID, Quantity: it.Quantity}
	}

	view, err := h.service.Merge(c.Request.Context(), middleware.MustGetUserID(c), items)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, view)
}
