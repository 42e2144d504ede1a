package mysql

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// 以下是gorm数据模型,领域实体不带gorm tag,由各Repository负责转换
// 金额统一decimal(15,2)

// UserModel 用户
type UserModel struct {
	ID        uint           `gorm:"primaryKey"`
	Email     string         `gorm:"uniqueIndex;size:100;not null;comment:邮箱"`
	Password  string         `gorm:"size:255;not null;comment:密码(bcrypt)"`
	Nickname  string         `gorm:"size:50;not null;comment:昵称"`
	Role      string         `gorm:"size:20;not null;default:customer;comment:角色"`
	CreatedAt time.Time      `gorm:"comment:创建时间"`
	UpdatedAt time.Time      `gorm:"comment:更新时间"`
	DeletedAt gorm.DeletedAt `gorm:"index;comment:删除时间(软删除)"`
}

func (UserModel) TableName() string { return "users" }

// BookModel 图书
// 下架用is_deleted标记,历史订单明细仍然引用这一行
type BookModel struct {
	ID            uint                `gorm:"primaryKey"`
	ISBN          string              `gorm:"uniqueIndex;size:20;not null;comment:ISBN号"`
	Title         string              `gorm:"index:idx_search;size:200;not null;comment:书名"`
	Author        string              `gorm:"index:idx_search;size:100;not null;comment:作者"`
	Publisher     string              `gorm:"size:100;not null;comment:出版社"`
	OriginalPrice decimal.Decimal     `gorm:"type:decimal(15,2);not null;comment:原价"`
	DiscountPrice decimal.NullDecimal `gorm:"type:decimal(15,2);comment:折扣价"`
	Stock         int                 `gorm:"not null;default:0;comment:库存"`
	Sold          int                 `gorm:"not null;default:0;comment:累计销量"`
	CoverURL      string              `gorm:"size:500;comment:封面图片URL"`
	Description   string              `gorm:"type:text;comment:图书描述"`
	PublisherID   uint                `gorm:"index;not null;comment:发布者用户ID"`
	IsDeleted     bool                `gorm:"index;not null;default:false;comment:是否下架"`
	CreatedAt     time.Time           `gorm:"index;comment:创建时间"`
	UpdatedAt     time.Time           `gorm:"comment:更新时间"`
}

func (BookModel) TableName() string { return "books" }

// CartModel 购物车,每个用户一行
type CartModel struct {
	ID        uint            `gorm:"primaryKey"`
	UserID    uint            `gorm:"uniqueIndex;not null;comment:用户ID"`
	Items     []CartItemModel `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (CartModel) TableName() string { return "carts" }

// CartItemModel 购物车行,(cart_id, book_id)唯一
type CartItemModel struct {
	ID        uint `gorm:"primaryKey"`
	CartID    uint `gorm:"uniqueIndex:uk_cart_book;not null;comment:购物车ID"`
	BookID    uint `gorm:"uniqueIndex:uk_cart_book;index;not null;comment:图书ID"`
	Quantity  int  `gorm:"not null;comment:数量"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (CartItemModel) TableName() string { return "cart_items" }

// OrderModel 订单
type OrderModel struct {
	ID              uint             `gorm:"primaryKey"`
	OrderNo         string           `gorm:"uniqueIndex;size:32;not null;comment:订单号"`
	UserID          uint             `gorm:"index;not null;comment:买家用户ID"`
	TotalPrice      decimal.Decimal  `gorm:"type:decimal(15,2);not null;comment:订单金额(结算币种)"`
	Currency        string           `gorm:"size:3;not null;comment:结算币种"`
	Status          string           `gorm:"index;size:20;not null;comment:订单状态"`
	ShippingAddress string           `gorm:"size:255;not null;comment:收货地址"`
	ShippingCity    string           `gorm:"size:100;not null;comment:城市"`
	ShippingPhone   string           `gorm:"size:20;not null;comment:电话"`
	Items           []OrderItemModel `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time        `gorm:"index;comment:创建时间"`
	UpdatedAt       time.Time        `gorm:"comment:更新时间"`
}

func (OrderModel) TableName() string { return "orders" }

// OrderItemModel 订单明细,标题和单价是下单时的快照
type OrderItemModel struct {
	ID        uint            `gorm:"primaryKey"`
	OrderID   uint            `gorm:"index;not null;comment:订单ID"`
	BookID    uint            `gorm:"index;not null;comment:图书ID"`
	Title     string          `gorm:"size:200;not null;comment:书名快照"`
	Quantity  int             `gorm:"not null;comment:购买数量"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(15,2);not null;comment:下单时单价"`
}

func (OrderItemModel) TableName() string { return "order_items" }

// PaymentModel 支付记录,与订单一对一
type PaymentModel struct {
	ID            uint            `gorm:"primaryKey"`
	OrderID       uint            `gorm:"uniqueIndex;not null;comment:订单ID"`
	Amount        decimal.Decimal `gorm:"type:decimal(15,2);not null;comment:金额"`
	Currency      string          `gorm:"size:3;not null;comment:币种"`
	Method        string          `gorm:"size:10;not null;comment:支付方式"`
	Status        string          `gorm:"index;size:20;not null;comment:支付状态"`
	TransactionID string          `gorm:"uniqueIndex;size:64;not null;comment:交易号"`
	RedirectURL   string          `gorm:"size:1024;comment:支付跳转/二维码地址"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (PaymentModel) TableName() string { return "payments" }

// allModels AutoMigrate的顺序(被引用的表在前)
func allModels() []interface{} {
	return []interface{}{
		&UserModel{},
		&BookModel{},
		&CartModel{},
		&CartItemModel{},
		&OrderModel{},
		&OrderItemModel{},
		&PaymentModel{},
	}
}
