package book

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockRepo struct{ mock.Mock }

func (m *mockRepo) Create(ctx context.Context, b *Book) error {
	args := m.Called(ctx, b)
	b.ID = 1
	return args.Error(0)
}

func (m *mockRepo) FindByID(ctx context.Context, id uint) (*Book, error) {
	args := m.Called(ctx, id)
	b, _ := args.Get(0).(*Book)
	return b, args.Error(1)
}

func (m *mockRepo) FindByISBN(ctx context.Context, isbn string) (*Book, error) {
	args := m.Called(ctx, isbn)
	b, _ := args.Get(0).(*Book)
	return b, args.Error(1)
}

func (m *mockRepo) Update(ctx context.Context, b *Book) error { return m.Called(ctx, b).Error(0) }
func (m *mockRepo) Delete(ctx context.Context, id uint) error { return m.Called(ctx, id).Error(0) }

func (m *mockRepo) List(ctx context.Context, p ListParams) ([]*Book, int64, error) {
	args := m.Called(ctx, p)
	return args.Get(0).([]*Book), args.Get(1).(int64), args.Error(2)
}

func (m *mockRepo) LockByID(ctx context.Context, id uint) (*Book, error) {
	args := m.Called(ctx, id)
	b, _ := args.Get(0).(*Book)
	return b, args.Error(1)
}

func (m *mockRepo) IncrSold(ctx context.Context, id uint, qty int) error {
	return m.Called(ctx, id, qty).Error(0)
}

func vnd(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func discount(s string) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: vnd(s), Valid: true}
}

func TestBook_FinalPrice(t *testing.T) {
	b := &Book{OriginalPrice: vnd("120000")}
	assert.True(t, b.FinalPrice().Equal(vnd("120000")), "无折扣取原价")

	b.DiscountPrice = discount("99000")
	assert.True(t, b.FinalPrice().Equal(vnd("99000")), "有折扣取折扣价")

	b.DiscountPrice = discount("0")
	assert.True(t, b.FinalPrice().Equal(vnd("120000")), "折扣价为0视为未设置")
}

func TestValidatePrice(t *testing.T) {
	assert.ErrorIs(t, ValidatePrice(vnd("0"), decimal.NullDecimal{}), ErrInvalidPrice)
	assert.ErrorIs(t, ValidatePrice(vnd("100"), discount("100")), ErrInvalidDiscount)
	assert.ErrorIs(t, ValidatePrice(vnd("100"), discount("-1")), ErrInvalidDiscount)
	assert.NoError(t, ValidatePrice(vnd("100"), discount("99.5")))
}

func TestService_PublishBook(t *testing.T) {
	ctx := context.Background()
	params := PublishParams{
		ISBN:          "978-7-115-42802-8",
		Title:         "Go语言编程",
		OriginalPrice: vnd("150000"),
		DiscountPrice: discount("120000"),
		Stock:         10,
		PublisherID:   3,
	}

	t.Run("上架成功", func(t *testing.T) {
		repo := new(mockRepo)
		repo.On("FindByISBN", ctx, params.ISBN).Return(nil, ErrBookNotFound)
		repo.On("Create", ctx, mock.AnythingOfType("*book.Book")).Return(nil)

		b, err := NewService(repo).PublishBook(ctx, params)
		require.NoError(t, err)
		assert.Equal(t, uint(1), b.ID)
		assert.Equal(t, 0, b.Sold)
		repo.AssertExpectations(t)
	})

	t.Run("ISBN重复", func(t *testing.T) {
		repo := new(mockRepo)
		repo.On("FindByISBN", ctx, params.ISBN).Return(&Book{ID: 9}, nil)

		_, err := NewService(repo).PublishBook(ctx, params)
		assert.ErrorIs(t, err, ErrISBNDuplicate)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("折扣价不低于原价", func(t *testing.T) {
		p := params
		p.DiscountPrice = discount("150000")
		_, err := NewService(new(mockRepo)).PublishBook(ctx, p)
		assert.ErrorIs(t, err, ErrInvalidDiscount)
	})

	t.Run("ISBN格式错误", func(t *testing.T) {
		p := params
		p.ISBN = "12345"
		_, err := NewService(new(mockRepo)).PublishBook(ctx, p)
		assert.ErrorIs(t, err, ErrInvalidISBN)
	})
}

func TestService_GetBookByID(t *testing.T) {
	ctx := context.Background()
	repo := new(mockRepo)
	repo.On("FindByID", ctx, uint(1)).Return(&Book{ID: 1, IsDeleted: true}, nil)
	repo.On("FindByID", ctx, uint(2)).Return(&Book{ID: 2, PublisherID: 3}, nil)
	svc := NewService(repo)

	_, err := svc.GetBookByID(ctx, 1)
	assert.ErrorIs(t, err, ErrBookNotFound, "已下架视为不存在")

	t.Run("非发布者不能修改库存", func(t *testing.T) {
		err := svc.UpdateBookStock(ctx, 2, 99, 5)
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("发布者修改库存", func(t *testing.T) {
		repo.On("Update", ctx, mock.MatchedBy(func(b *Book) bool { return b.Stock == 5 })).Return(nil).Once()
		require.NoError(t, svc.UpdateBookStock(ctx, 2, 3, 5))
	})
}
