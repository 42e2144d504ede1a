package notification

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func summary() OrderSummary {
	return OrderSummary{
		Nickname: "Lan",
		OrderNo:  "ORD1700000000123456",
		Total:    decimal.RequireFromString("12.51"),
		Currency: "USD",
		Method:   "PAYPAL",
		Lines: []OrderLine{
			{Title: "Go <Programming>", Quantity: 2, UnitPrice: decimal.NewFromInt(120000)},
		},
		Address: "12 Nguyen Hue",
		City:    "Ho Chi Minh",
		Phone:   "0901234567",
	}
}

func TestOrderCreatedEmail(t *testing.T) {
	e, err := OrderCreatedEmail(summary())
	require.NoError(t, err)

	assert.Equal(t, KindOrderCreated, e.Kind)
	assert.Contains(t, e.Subject, "ORD1700000000123456")
	assert.Contains(t, e.HTML, "12.51 USD")
	assert.Contains(t, e.HTML, "120000 ₫")
	assert.Contains(t, e.HTML, "Go &lt;Programming&gt;", "书名需要转义")
	assert.NotContains(t, e.HTML, "<img", "没有二维码时不输出图片")
}

func TestOrderCreatedEmail_WithQR(t *testing.T) {
	s := summary()
	s.Currency = "VND"
	s.Total = decimal.NewFromInt(240000)
	s.RedirectURL = "https://qr.sepay.vn/img?bank=MB&acc=0123"

	e, err := OrderCreatedEmail(s)
	require.NoError(t, err)
	assert.Contains(t, e.HTML, "240000 ₫")
	assert.Contains(t, e.HTML, `<img src="https://qr.sepay.vn/img?bank=MB&amp;acc=0123"`)
}

func TestOtherEmails(t *testing.T) {
	ok, err := PaymentSuccessEmail(summary())
	require.NoError(t, err)
	assert.Equal(t, KindPaymentSuccess, ok.Kind)

	cancelled, err := PaymentCancelledEmail(summary())
	require.NoError(t, err)
	assert.Contains(t, cancelled.Subject, "hủy")

	act, err := ActivationEmail("Lan", "https://bookstore.vn/activate?token=abc")
	require.NoError(t, err)
	assert.Contains(t, act.HTML, `href="https://bookstore.vn/activate?token=abc"`)
}

type captureNotifier struct{ to, subject, html string }

func (c *captureNotifier) Send(_ context.Context, to, subject, html string) error {
	c.to, c.subject, c.html = to, subject, html
	return nil
}

func TestDeliver(t *testing.T) {
	e, err := PaymentCancelledEmail(summary())
	require.NoError(t, err)

	n := &captureNotifier{}
	require.NoError(t, Deliver(context.Background(), n, "lan@example.com", e))
	assert.Equal(t, "lan@example.com", n.to)
	assert.Equal(t, e.Subject, n.subject)
}
