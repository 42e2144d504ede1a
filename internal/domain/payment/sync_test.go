package payment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/bookstore-checkout/internal/domain/order"
)

// 每种支付方式 × 每个订单状态 的期望支付状态
var syncTable = map[Method]map[order.Status]Status{
	MethodCOD: {
		order.StatusPending:    StatusPending,
		order.StatusProcessing: StatusPending,
		order.StatusShipped:    StatusPending,
		order.StatusDelivered:  StatusCompleted,
		order.StatusCancelled:  StatusFailed,
		order.StatusFailed:     StatusFailed,
		order.StatusRefunded:   StatusRefunded,
	},
	MethodQR: {
		order.StatusPending:    StatusPending,
		order.StatusProcessing: StatusPending,
		order.StatusShipped:    StatusCompleted,
		order.StatusDelivered:  StatusCompleted,
		order.StatusCancelled:  StatusRefunded,
		order.StatusFailed:     StatusRefunded,
		order.StatusRefunded:   StatusRefunded,
	},
}

func TestReconcile_OrderStatusChanged(t *testing.T) {
	for method, table := range syncTable {
		require.Len(t, table, len(order.AllStatuses), "%s的同步表必须覆盖全部订单状态", method)

		for _, os := range order.AllStatuses {
			want := table[os]
			t.Run(string(method)+"/"+string(os), func(t *testing.T) {
				for _, current := range []Status{StatusPending, StatusCompleted, StatusFailed, StatusRefunded} {
					tr, err := Reconcile(method, current, OrderStatusChanged(os))
					require.NoError(t, err)
					assert.Equal(t, want, tr.Payment, "当前支付状态%s", current)
					assert.Empty(t, tr.Order, "订单状态由调用方设置")
				}
			})
		}
	}

	t.Run("PAYPAL不随订单状态变化", func(t *testing.T) {
		for _, os := range order.AllStatuses {
			for _, current := range []Status{StatusPending, StatusCompleted, StatusFailed, StatusRefunded} {
				tr, err := Reconcile(MethodPayPal, current, OrderStatusChanged(os))
				require.NoError(t, err)
				assert.Equal(t, current, tr.Payment)
			}
		}
	})

	t.Run("非法订单状态", func(t *testing.T) {
		for _, m := range []Method{MethodCOD, MethodQR, MethodPayPal} {
			_, err := Reconcile(m, StatusPending, OrderStatusChanged("PAID"))
			assert.ErrorIs(t, err, order.ErrInvalidOrderStatus, m)
		}
	})
}

func TestReconcile_ProviderEvents(t *testing.T) {
	t.Run("PayPal付款成功", func(t *testing.T) {
		tr, err := Reconcile(MethodPayPal, StatusFailed, Event{Kind: EventProviderApproved})
		require.NoError(t, err)
		assert.Equal(t, StatusCompleted, tr.Payment)
		assert.Equal(t, order.StatusProcessing, tr.Order)
	})

	t.Run("PayPal买家取消", func(t *testing.T) {
		tr, err := Reconcile(MethodPayPal, StatusFailed, Event{Kind: EventProviderCancelled})
		require.NoError(t, err)
		assert.Equal(t, StatusFailed, tr.Payment)
		assert.Equal(t, order.StatusFailed, tr.Order)
	})

	t.Run("COD和QR不接受支付平台事件", func(t *testing.T) {
		for _, m := range []Method{MethodCOD, MethodQR} {
			for _, k := range []EventKind{EventProviderApproved, EventProviderCancelled} {
				_, err := Reconcile(m, StatusPending, Event{Kind: k})
				assert.ErrorIs(t, err, ErrEventNotSupported, "%s/%s", m, k)
			}
		}
	})

	t.Run("未知支付方式", func(t *testing.T) {
		_, err := Reconcile("BITCOIN", StatusPending, OrderStatusChanged(order.StatusPending))
		assert.ErrorIs(t, err, ErrUnsupportedMethod)
	})
}

func TestParseMethod(t *testing.T) {
	for raw, want := range map[string]Method{"cod": MethodCOD, "QR": MethodQR, " PayPal ": MethodPayPal} {
		got, err := ParseMethod(raw)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseMethod("card")
	assert.ErrorIs(t, err, ErrUnsupportedMethod)
}

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus("completed")
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, s)

	s, err = ParseStatus("")
	require.NoError(t, err)
	assert.Empty(t, s)

	_, err = ParseStatus("PAID")
	assert.ErrorIs(t, err, ErrInvalidPaymentStatus)
}

type stubStrategy struct {
	Strategy
	method Method
}

func (s stubStrategy) Method() Method { return s.method }

func TestRegistry_Select(t *testing.T) {
	r := NewRegistry(stubStrategy{method: MethodCOD}, stubStrategy{method: MethodQR})

	s, err := r.Select(MethodCOD)
	require.NoError(t, err)
	assert.Equal(t, MethodCOD, s.Method())

	_, err = r.Select(MethodPayPal)
	assert.ErrorIs(t, err, ErrUnsupportedMethod)
}
