package mysql

import (
	"context"

	"gorm.io/gorm"

	"github.com/xiebiao/bookstore-checkout/internal/domain/user"
	apperrors "github.com/xiebiao/bookstore-checkout/pkg/errors"
)

// userRepository 用户仓储实现(MySQL)
// 邮箱唯一性由UNIQUE索引保证,不做先查后插
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository 返回domain层接口
func NewUserRepository(db *gorm.DB) user.Repository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, u *user.User) error {
	model := &UserModel{
		Email:    u.Email,
		Password: u.Password,
		Nickname: u.Nickname,
		Role:     u.Role,
	}
	if model.Role == "" {
		model.Role = user.RoleCustomer
	}

	if err := dbFrom(ctx, r.db).Create(model).Error; err != nil {
		if isDuplicateError(err) {
			return apperrors.ErrEmailDuplicate
		}
		return apperrors.Wrap(err, "创建用户失败")
	}

	u.ID = model.ID
	u.Role = model.Role
	u.CreatedAt = model.CreatedAt
	u.UpdatedAt = model.UpdatedAt
	return nil
}

func (r *userRepository) FindByID(ctx context.Context, id uint) (*user.User, error) {
	var model UserModel
	if err := dbFrom(ctx, r.db).First(&model, id).Error; err != nil {
		if isNotFound(err) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(err, "查询用户失败")
	}
	return toUserEntity(&model), nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	var model UserModel
	if err := dbFrom(ctx, r.db).Where("email = ?", email).First(&model).Error; err != nil {
		if isNotFound(err) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(err, "查询用户失败")
	}
	return toUserEntity(&model), nil
}

func (r *userRepository) Update(ctx context.Context, u *user.User) error {
	err := dbFrom(ctx, r.db).Model(&UserModel{ID: u.ID}).Updates(map[string]interface{}{
		"password": u.Password,
		"nickname": u.Nickname,
		"role":     u.Role,
	}).Error
	if err != nil {
		return apperrors.Wrap(err, "更新用户失败")
	}
	return nil
}

// Delete 软删除(gorm.DeletedAt),后续查询自动过滤
func (r *userRepository) Delete(ctx context.Context, id uint) error {
	result := dbFrom(ctx, r.db).Delete(&UserModel{}, id)
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "删除用户失败")
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

func toUserEntity(m *UserModel) *user.User {
	return &user.User{
		ID:        m.ID,
		Email:     m.Email,
		Password:  m.Password,
		Nickname:  m.Nickname,
		Role:      m.Role,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}
