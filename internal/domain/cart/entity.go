package cart

import (
	"time"
)

// Cart 购物车,每个用户一个,首次使用时创建
type Cart struct {
	ID        uint
	UserID    uint
	Items     []CartItem
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CartItem 购物车行,同一购物车中每本书最多一行
// 数量减到0或被下单消费后删除
type CartItem struct {
	ID        uint
	CartID    uint
	BookID    uint
	Quantity  int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// QuantityOf 购物车中某本书的数量,没有则为0
func (c *Cart) QuantityOf(bookID uint) int {
	for _, it := range c.Items {
		if it.BookID == bookID {
			return it.Quantity
		}
	}
	return 0
}

// GuestItem 未登录时本地保存的购物车行,登录后合并
type GuestItem struct {
	BookID   uint
	Quantity int
}
