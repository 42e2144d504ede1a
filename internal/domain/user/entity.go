package user

import (
	"time"
)

// 角色
const (
	RoleCustomer = "customer"
	RoleStaff    = "staff" // 可以维护订单状态、查看全部订单
)

// User 用户实体(聚合根)
// Password是bcrypt哈希,不对外暴露
type User struct {
	ID        uint
	Email     string
	Password  string
	Nickname  string
	Role      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewUser 创建新用户,hashedPassword必须是bcrypt结果
func NewUser(email, hashedPassword, nickname string) *User {
	now := time.Now()
	return &User{
		Email:     email,
		Password:  hashedPassword,
		Nickname:  nickname,
		Role:      RoleCustomer,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsStaff 是否店员
func (u *User) IsStaff() bool {
	return u.Role == RoleStaff
}

// UpdateNickname 更新昵称
func (u *User) UpdateNickname(nickname string) {
	u.Nickname = nickname
	u.UpdatedAt = time.Now()
}
