package dto

import "github.com/shopspring/decimal"

// PublishBookRequest 上架请求,价格为目录币种(VND)
type PublishBookRequest struct {
	ISBN          string           `json:"isbn" binding:"required" example:"9786041000001"`
	Title         string           `json:"title" binding:"required,max=200" example:"Nhà giả kim"`
	Author        string           `json:"author" binding:"required,max=100" example:"Paulo Coelho"`
	Publisher     string           `json:"publisher" binding:"required,max=100" example:"NXB Hội Nhà Văn"`
	OriginalPrice decimal.Decimal  `json:"original_price" swaggertype:"string" example:"120000"`
	DiscountPrice *decimal.Decimal `json:"discount_price,omitempty" swaggertype:"string" example:"99000"`
	Stock         int              `json:"stock" binding:"min=0" example:"100"`
	CoverURL      string           `json:"cover_url" binding:"omitempty,url,max=500" example:"https://example.com/cover.jpg"`
	Description   string           `json:"description" binding:"max=5000"`
}

// Discount 未传折扣价时为无效的NullDecimal
func (r PublishBookRequest) Discount() decimal.NullDecimal {
	if r.DiscountPrice == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(*r.DiscountPrice)
}

// ListBooksRequest 图书列表查询参数
type ListBooksRequest struct {
	Page     int    `form:"page" binding:"omitempty,min=1" example:"1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100" example:"20"`
	Keyword  string `form:"keyword" binding:"omitempty,max=100"`
	SortBy   string `form:"sort_by" binding:"omitempty,oneof=price_asc price_desc sold_desc created_at_desc" example:"created_at_desc"`
}

// UpdatePriceRequest 调价请求,不传折扣价表示取消折扣
type UpdatePriceRequest struct {
	OriginalPrice decimal.Decimal  `json:"original_price" swaggertype:"string" example:"120000"`
	DiscountPrice *decimal.Decimal `json:"discount_price,omitempty" swaggertype:"string" example:"99000"`
}

// Discount 同PublishBookRequest.Discount
func (r UpdatePriceRequest) Discount() decimal.NullDecimal {
	if r.DiscountPrice == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(*r.DiscountPrice)
}

// UpdateStockRequest 调整库存
type UpdateStockRequest struct {
	Stock *int `json:"stock" binding:"required,min=0" example:"50"`
}
