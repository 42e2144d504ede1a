package handler

import (
	"github.com/gin-gonic/gin"

	appbook "github.com/xiebiao/bookstore-checkout/internal/application/book"
	"github.com/xiebiao/bookstore-checkout/internal/interface/http/dto"
	"github.com/xiebiao/bookstore-checkout/internal/interface/http/middleware"
	"github.com/xiebiao/bookstore-checkout/pkg/response"
)

// BookHandler 图书HTTP处理器
type BookHandler struct {
	publishUseCase *appbook.PublishBookUseCase
	listUseCase    *appbook.ListBooksUseCase
	getUseCase     *appbook.GetBookUseCase
	manageUseCase  *appbook.ManageBookUseCase
}

// NewBookHandler 创建图书处理器
func NewBookHandler(
	publishUseCase *appbook.PublishBookUseCase,
	listUseCase *appbook.ListBooksUseCase,
	getUseCase *appbook.GetBookUseCase,
	manageUseCase *appbook.ManageBookUseCase,
) *BookHandler {
	return &BookHandler{
		publishUseCase: publishUseCase,
		listUseCase:    listUseCase,
		getUseCase:     getUseCase,
		manageUseCase:  manageUseCase,
	}
}

// PublishBook 发布图书
// @Summary      发布图书
// @Description  店员上架图书,折扣价必须低于原价
// @Tags         图书
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.PublishBookRequest true "图书信息"
// @Success      200 {object} response.Response{data=appbook.BookDetail}
// @Failure      200 {object} response.Response "40004 ISBN已存在"
// @Router       /api/v1/books [post]
func (h *BookHandler) PublishBook(c *gin.Context) {
	var req dto.PublishBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	detail, err := h.publishUseCase.Execute(c.Request.Context(), appbook.PublishBookRequest{
		ISBN:          req.ISBN,
		Title:         req.Title,
		Author:        req.Author,
		Publisher:     req.Publisher,
		OriginalPrice: req.OriginalPrice,
		DiscountPrice: req.Discount(),
		Stock:         req.Stock,
		CoverURL:      req.CoverURL,
		Description:   req.Description,
		PublisherID:   middleware.MustGetUserID(c),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, detail)
}

// ListBooks 图书列表
// @Summary      图书列表
// @Tags         图书
// @Produce      json
// @Param        page      query int    false "页码"
// @Param        page_size query int    false "每页数量"
// @Param        keyword   query string false "书名/作者/出版社"
// @Param        sort_by   query string false "price_asc | price_desc | sold_desc | created_at_desc"
// @Success      200 {object} response.Response{data=appbook.ListBooksResponse}
// @Router       /api/v1/books [get]
func (h *BookHandler) ListBooks(c *gin.Context) {
	var req dto.ListBooksRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}

	result, err := h.listUseCase.Execute(c.Request.Context(), appbook.ListBooksRequest{
		Page:     req.Page,
		PageSize: req.PageSize,
		Keyword:  req.Keyword,
		SortBy:   req.SortBy,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// GetBook 图书详情
// @Summary      图书详情
// @Tags         图书
// @Produce      json
// @Param        id path int true "图书ID"
// @Success      200 {object} response.Response{data=appbook.BookDetail}
// @Failure      200 {object} response.Response "40402图书不存在"
// @Router       /api/v1/books/{id} [get]
func (h *BookHandler) GetBook(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	detail, err := h.getUseCase.Execute(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, detail)
}

// UpdatePrice 修改价格
// @Summary      修改价格
// @Description  只有发布者本人可以修改,已下单的订单不受影响
// @Tags         图书
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path int                    true "图书ID"
// @Param        request body dto.UpdatePriceRequest true "新价格"
// @Success      200 {object} response.Response{data=appbook.BookDetail}
// @Failure      200 {object} response.Response "40104无权操作此图书"
// @Router       /api/v1/books/{id}/price [put]
func (h *BookHandler) UpdatePrice(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdatePriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	detail, err := h.manageUseCase.UpdatePrice(c.Request.Context(), id, middleware.MustGetUserID(c), req.OriginalPrice, req.Discount())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, detail)
}

// UpdateStock 调整库存
// @Summary      调整库存
// @Tags         图书
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path int                    true "图书ID"
// @Param        request body dto.UpdateStockRequest true "库存"
// @Success      200 {object} response.Response{data=appbook.BookDetail}
// @Router       /api/v1/books/{id}/stock [put]
func (h *BookHandler) UpdateStock(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	detail, err := h.manageUseCase.UpdateStock(c.Request.Context(), id, middleware.MustGetUserID(c), *req.Stock)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, detail)
}

// DeleteBook 下架图书
// @Summary      下架图书
// @Tags         图书
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "图书ID"
// @Success      200 {object} response.Response
// @Router       /api/v1/books/{id} [delete]
func (h *BookHandler) DeleteBook(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.manageUseCase.Delete(c.Request.Context(), id, middleware.MustGetUserID(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}
