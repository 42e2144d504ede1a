package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/xiebiao/bookstore-checkout/internal/domain/order"
	"github.com/xiebiao/bookstore-checkout/internal/domain/payment"
)

// CreateOrderRequest 结算选中的购物车行
type CreateOrderRequest struct {
	CartItemIDs   []uint `json:"cart_item_ids" binding:"required,min=1" example:"1,2"`
	Address       string `json:"address" binding:"required" example:"12 Lê Lợi"`
	City          string `json:"city" binding:"required" example:"Hồ Chí Minh"`
	Phone         string `json:"phone" binding:"required" example:"0901234567"`
	PaymentMethod string `json:"payment_method" binding:"required" example:"COD"`
	// PaymentStatus 可选,只对COD/QR生效
	PaymentStatus string `json:"payment_status" example:""`
}

// UpdateOrderRequest 店员修改订单,空字段保持不变
type UpdateOrderRequest struct {
	Status  string `json:"status" example:"SHIPPED"`
	Address string `json:"address"`
	City    string `json:"city"`
	Phone   string `json:"phone"`
}

// ListOrdersRequest 分页参数
type ListOrdersRequest struct {
	Page     int `form:"page" binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// Normalize 默认第1页、每页20条
func (r *ListOrdersRequest) Normalize() {
	if r.Page < 1 {
		r.Page = 1
	}
	if r.PageSize < 1 {
		r.PageSize = 20
	}
}

// OrderItemResponse 订单明细
type OrderItemResponse struct {
	BookID    uint            `json:"book_id"`
	Title     string          `json:"title"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price" swaggertype:"string"`
}

// PaymentResponse 支付信息
type PaymentResponse struct {
	Method        string          `json:"method" example:"PAYPAL"`
	Status        string          `json:"status" example:"FAILED"`
	Amount        decimal.Decimal `json:"amount" swaggertype:"string"`
	Currency      string          `json:"currency" example:"USD"`
	TransactionID string          `json:"transaction_id"`
	RedirectURL   string          `json:"redirect_url,omitempty"`
}

// OrderResponse 订单
type OrderResponse struct {
	ID        uint                `json:"id"`
	OrderNo   string              `json:"order_no" example:"ORD1699248000123456"`
	Status    string              `json:"status" example:"PENDING"`
	Total     decimal.Decimal     `json:"total" swaggertype:"string" example:"200000"`
	Currency  string              `json:"currency" example:"VND"`
	Address   string              `json:"address"`
	City      string              `json:"city"`
	Phone     string              `json:"phone"`
	Items     []OrderItemResponse `json:"items,omitempty"`
	Payment   *PaymentResponse    `json:"payment,omitempty"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}

// NewOrderResponse p可以为nil
func NewOrderResponse(o *order.Order, p *payment.Payment) *OrderResponse {
	resp := &OrderResponse{
		ID:        o.ID,
		OrderNo:   o.OrderNo,
		Status:    string(o.Status),
		Total:     o.Total,
		Currency:  o.Currency,
		Address:   o.Shipping.Address,
		City:      o.Shipping.City,
		Phone:     o.Shipping.Phone,
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}
	for _, it := range o.Items {
		resp.Items = append(resp.Items, OrderItemResponse{
			BookID:    it.BookID,
			Title:     it.Title,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
		})
	}
	if p != nil {
		resp.Payment = &PaymentResponse{
			Method:        string(p.Method),
			Status:        string(p.Status),
			Amount:        p.Amount,
			Currency:      p.Currency,
			TransactionID: p.TransactionID,
			RedirectURL:   p.RedirectURL,
		}
	}
	return resp
}
