package order

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validShipping() Shipping {
	return Shipping{Address: "12 Nguyen Hue", City: "Ho Chi Minh", Phone: "+84901234567"}
}

func TestParseStatus(t *testing.T) {
	t.Run("大小写不敏感", func(t *testing.T) {
		for _, raw := range []string{"delivered", "Delivered", " DELIVERED "} {
			s, err := ParseStatus(raw)
			require.NoError(t, err, raw)
			assert.Equal(t, StatusDelivered, s)
		}
	})

	t.Run("全部状态可解析", func(t *testing.T) {
		for _, s := range AllStatuses {
			got, err := ParseStatus(strings.ToLower(string(s)))
			require.NoError(t, err)
			assert.Equal(t, s, got)
		}
	})

	t.Run("非法状态", func(t *testing.T) {
		for _, raw := range []string{"", "PAID", "deliver", "完成"} {
			_, err := ParseStatus(raw)
			assert.ErrorIs(t, err, ErrInvalidOrderStatus, raw)
		}
	})
}

func TestNewOrder(t *testing.T) {
	items := []OrderItem{{BookID: 1, Title: "BookA", Quantity: 2, UnitPrice: decimal.NewFromInt(50000)}}

	t.Run("创建成功", func(t *testing.T) {
		o, err := NewOrder("ORD1", 7, items, decimal.NewFromInt(100000), "VND", StatusPending, validShipping())
		require.NoError(t, err)
		assert.Equal(t, StatusPending, o.Status)
		assert.True(t, o.Items[0].Amount().Equal(decimal.NewFromInt(100000)))
	})

	t.Run("金额必须为正", func(t *testing.T) {
		_, err := NewOrder("ORD1", 7, items, decimal.Zero, "VND", StatusPending, validShipping())
		assert.ErrorIs(t, err, ErrInvalidTotal)
	})

	t.Run("明细不能为空", func(t *testing.T) {
		_, err := NewOrder("ORD1", 7, nil, decimal.NewFromInt(1), "VND", StatusPending, validShipping())
		assert.ErrorIs(t, err, ErrInvalidOrderItems)
	})
}

func TestShipping_Validate(t *testing.T) {
	cases := []struct {
		name  string
		phone string
		ok    bool
	}{
		{"国内号码", "0901234567", true},
		{"带国家码", "+84901234567", true},
		{"9位", "123456789", true},
		{"15位", "123456789012345", true},
		{"8位太短", "12345678", false},
		{"16位太长", "1234567890123456", false},
		{"含字母", "09012abc67", false},
		{"中间有加号", "0901+234567", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := validShipping()
			s.Phone = tc.phone
			err := s.Validate()
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidShipping)
			}
		})
	}
}

func TestOrder_UpdateShipping(t *testing.T) {
	o := &Order{Shipping: validShipping()}

	t.Run("只覆盖非空字段", func(t *testing.T) {
		require.NoError(t, o.UpdateShipping(Shipping{City: "Ha Noi"}))
		assert.Equal(t, "12 Nguyen Hue", o.Shipping.Address)
		assert.Equal(t, "Ha Noi", o.Shipping.City)
	})

	t.Run("非法电话不修改", func(t *testing.T) {
		err := o.UpdateShipping(Shipping{Address: "new", Phone: "abc"})
		assert.ErrorIs(t, err, ErrInvalidShipping)
		assert.Equal(t, "12 Nguyen Hue", o.Shipping.Address)
	})
}

func TestGenerateOrderNo(t *testing.T) {
	no := GenerateOrderNo()
	assert.True(t, strings.HasPrefix(no, "ORD"))
	assert.Len(t, no, 3+10+6)
}
