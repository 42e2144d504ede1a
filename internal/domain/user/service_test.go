package user

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/xiebiao/bookstore-checkout/pkg/errors"
)

type mockRepo struct{ mock.Mock }

func (m *mockRepo) Create(ctx context.Context, u *User) error { return m.Called(ctx, u).Error(0) }
func (m *mockRepo) Update(ctx context.Context, u *User) error { return m.Called(ctx, u).Error(0) }
func (m *mockRepo) Delete(ctx context.Context, id uint) error { return m.Called(ctx, id).Error(0) }

func (m *mockRepo) FindByID(ctx context.Context, id uint) (*User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*User)
	return u, args.Error(1)
}

func (m *mockRepo) FindByEmail(ctx context.Context, email string) (*User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*User)
	return u, args.Error(1)
}

func TestService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("注册成功并加密密码", func(t *testing.T) {
		repo := new(mockRepo)
		repo.On("Create", ctx, mock.AnythingOfType("*user.User")).Return(nil)

		u, err := NewService(repo, bcrypt.MinCost).Register(ctx, " Lan@Example.com ", "secret123", "Lan")
		require.NoError(t, err)
		assert.Equal(t, "lan@example.com", u.Email)
		assert.Equal(t, RoleCustomer, u.Role)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.Password), []byte("secret123")))
	})

	cases := []struct {
		name                      string
		email, password, nickname string
		want                      error
	}{
		{"邮箱格式错误", "lan.example.com", "secret123", "Lan", ErrInvalidEmail},
		{"密码没有数字", "lan@example.com", "secretpwd", "Lan", apperrors.ErrWeakPassword},
		{"密码太短", "lan@example.com", "s3", "Lan", apperrors.ErrWeakPassword},
		{"昵称太短", "lan@example.com", "secret123", "L", ErrInvalidNickname},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewService(new(mockRepo), bcrypt.MinCost).Register(ctx, tc.email, tc.password, tc.nickname)
			assert.ErrorIs(t, err, tc.want)
		})
	}

	t.Run("邮箱重复", func(t *testing.T) {
		repo := new(mockRepo)
		repo.On("Create", ctx, mock.Anything).Return(ErrEmailDuplicate)
		_, err := NewService(repo, bcrypt.MinCost).Register(ctx, "lan@example.com", "secret123", "Lan")
		assert.ErrorIs(t, err, ErrEmailDuplicate)
	})
}

func TestService_Login(t *testing.T) {
	ctx := context.Background()
	hashed, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)

	repo := new(mockRepo)
	repo.On("FindByEmail", ctx, "lan@example.com").Return(&User{ID: 1, Password: string(hashed)}, nil)
	repo.On("FindByEmail", ctx, "nobody@example.com").Return(nil, ErrUserNotFound)
	svc := NewService(repo, bcrypt.MinCost)

	u, err := svc.Login(ctx, "LAN@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, uint(1), u.ID)

	_, err = svc.Login(ctx, "lan@example.com", "wrong1234")
	assert.ErrorIs(t, err, apperrors.ErrInvalidPassword)

	_, err = svc.Login(ctx, "nobody@example.com", "secret123")
	assert.ErrorIs(t, err, ErrUserNotFound)
}
