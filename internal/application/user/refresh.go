package user

import (
	"context"

	"github.com/xiebiao/bookstore-checkout/internal/domain/user"
	"github.com/xiebiao/bookstore-checkout/pkg/jwt"
)

// RefreshTokenUseCase 用Refresh Token换新的Access Token
// 身份信息从仓储重新加载,角色变更在刷新后生效
type RefreshTokenUseCase struct {
	users      user.Repository
	jwtManager *jwt.Manager
}

// NewRefreshTokenUseCase 创建刷新用例
func NewRefreshTokenUseCase(users user.Repository, jwtManager *jwt.Manager) *RefreshTokenUseCase {
	return &RefreshTokenUseCase{users: users, jwtManager: jwtManager}
}

// Execute 用户已被删除时返回ErrUserNotFound
func (uc *RefreshTokenUseCase) Execute(ctx context.Context, refreshToken string) (*RefreshResponse, error) {
	token, err := uc.jwtManager.RefreshAccessToken(refreshToken, func(userID uint) (jwt.Identity, error) {
		u, err := uc.users.FindByID(ctx, userID)
		if err != nil {
			return jwt.Identity{}, err
		}
		return jwt.Identity{UserID: u.ID, Email: u.Email, Nickname: u.Nickname, Role: u.Role}, nil
	})
	if err != nil {
		return nil, err
	}
	return &RefreshResponse{AccessToken: token}, nil
}

// RefreshResponse 新的Access Token
type RefreshResponse struct {
	AccessToken string `json:"access_token"`
}
