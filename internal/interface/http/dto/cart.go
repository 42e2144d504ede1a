package dto

// AddCartItemRequest 加入购物车
type AddCartItemRequest struct {
	BookID   uint `json:"book_id" binding:"required" example:"1"`
	Quantity int  `json:"quantity" binding:"required,min=1,max=999" example:"2"`
}

// UpdateCartItemRequest 修改数量,BookID必须与路径中的一致;数量为0表示删除
type UpdateCartItemRequest struct {
	BookID   uint `json:"book_id" binding:"required" example:"1"`
	Quantity int  `json:"quantity" binding:"min=0,max=999" example:"3"`
}

// MergeCartRequest 登录后合并本地购物车
type MergeCartRequest struct {
	Items []AddCartItemRequest `json:"items" binding:"dive"`
}
