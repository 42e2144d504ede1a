package user

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xiebiao/bookstore-checkout/internal/application/notify"
	"github.com/xiebiao/bookstore-checkout/internal/domain/notification"
	"github.com/xiebiao/bookstore-checkout/internal/domain/user"
	"github.com/xiebiao/bookstore-checkout/pkg/logger"
)

// TxManager 事务边界,由mysql.TxManager实现
type TxManager interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// RegisterUseCase 用户注册
// 激活邮件和用户写入在同一事务中: 邮件发不出去时注册失败,用户行回滚
type RegisterUseCase struct {
	userService user.Service
	notifier    notification.Notifier
	txManager   TxManager
	publicURL   string
}

// NewRegisterUseCase publicURL用于拼接激活链接
func NewRegisterUseCase(userService user.Service, notifier notification.Notifier, txManager TxManager, publicURL string) *RegisterUseCase {
	return &RegisterUseCase{
		userService: userService,
		notifier:    notifier,
		txManager:   txManager,
		publicURL:   strings.TrimRight(publicURL, "/"),
	}
}

// Execute 执行注册
func (uc *RegisterUseCase) Execute(ctx context.Context, req RegisterRequest) (*RegisterResponse, error) {
	var u *user.User
	err := uc.txManager.Transaction(ctx, func(ctx context.Context) error {
		var err error
		if u, err = uc.userService.Register(ctx, req.Email, req.Password, req.Nickname); err != nil {
			return err
		}
		link := uc.publicURL + "/activate/" + uuid.NewString()
		return notify.Send(ctx, uc.notifier, notification.KindActivation, u.Email, func() (*notification.Email, error) {
			return notification.ActivationEmail(u.Nickname, link)
		})
	})
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info("用户注册成功", zap.Uint("user_id", u.ID), zap.String("email", u.Email))
	return &RegisterResponse{
		ID:       u.ID,
		Email:    u.Email,
		Nickname: u.Nickname,
	}, nil
}

// RegisterRequest 注册请求
type RegisterRequest struct {
	Email    string
	Password string
	Nickname string
}

// RegisterResponse 不含密码
type RegisterResponse struct {
	ID       uint   `json:"id"`
	Email    string `json:"email"`
	Nickname string `json:"nickname"`
}
